package lsbsteg

// CapacityBits is the number of payload bits a height x width x channels grid
// can carry at k bits per channel sample.
func CapacityBits(height, width, channels, k int) int {
	return height * width * channels * k
}

// CheckFits returns a *CapacityExceededError when needed exceeds available.
func CheckFits(needed, available int) error {
	if needed > available {
		return &CapacityExceededError{Needed: needed, Available: available}
	}
	return nil
}

// Plan describes how a payload maps onto a carrier.
type Plan struct {
	// MessageBits is the body length L.
	MessageBits int
	// PayloadBits is header plus body.
	PayloadBits int
	// CapacityBits is H*W*C*k of the carrier.
	CapacityBits int
	// PixelsNeeded is how many leading pixels the payload reaches.
	PixelsNeeded int
}

// Plan computes the layout of p on g and gates it against capacity. It is
// the only check Embed runs before writing, so an error here means nothing
// was written.
func (c *Codec) Plan(g *Grid, p *Payload) (Plan, error) {
	if err := g.validate(); err != nil {
		return Plan{}, err
	}
	if p == nil {
		return Plan{}, ErrNilPayload
	}
	plan := Plan{
		MessageBits:  p.BodyBits(),
		PayloadBits:  p.Len(),
		CapacityBits: c.Capacity(g),
	}
	if perPixel := g.Channels * c.cfg.BitsPerChannel; perPixel > 0 {
		plan.PixelsNeeded = (plan.PayloadBits + perPixel - 1) / perPixel
	}
	if err := CheckFits(plan.PayloadBits, plan.CapacityBits); err != nil {
		return plan, err
	}
	return plan, nil
}

// Capacity is the bit capacity of g under c's bits-per-channel setting.
func (c *Codec) Capacity(g *Grid) int {
	return CapacityBits(g.Height, g.Width, g.Channels, c.cfg.BitsPerChannel)
}

// MaxMessageBytes is the longest message, in bytes, that fits in g.
func (c *Codec) MaxMessageBytes(g *Grid) int {
	free := c.Capacity(g) - c.cfg.HeaderBits
	if free < 0 {
		return 0
	}
	return free / 8
}
