// Package lsbsteg hides text in the least-significant bits of image channel
// samples and measures how visible the change is.
//
// The embedded bit sequence, written into the k lowest bits of every sample
// in row, column, channel order (bit position 0 first), is
//
//	[32-bit big-endian length L][L bits: UTF-8 bytes, msb-first per byte]
//
// The codec works on Grid values only; reading and writing image files is
// left to the caller, which must use a lossless container.
package lsbsteg

import (
	"fmt"
	"io"
	"log/slog"
)

const (
	// DefaultHeaderBits is the width of the length header of the wire format.
	DefaultHeaderBits = 32
	// DefaultBitsPerChannel is the number of low bits used per sample.
	DefaultBitsPerChannel = 1

	minHeaderBits     = 8
	maxHeaderBits     = 64
	maxBitsPerChannel = 2
)

// Config fixes the parameters shared by one embed/extract pair.
type Config struct {
	// BitsPerChannel is how many low-order bits of each sample carry payload (1 or 2).
	BitsPerChannel int `yaml:"bits_per_channel"`
	// HeaderBits is the width of the length header. 32 unless both sides agree otherwise.
	HeaderBits int `yaml:"header_bits"`
}

// DefaultConfig returns the interoperable configuration: 1 bit per channel, 32-bit header.
func DefaultConfig() Config {
	return Config{BitsPerChannel: DefaultBitsPerChannel, HeaderBits: DefaultHeaderBits}
}

// Validate checks the ranges of c.
func (c Config) Validate() error {
	if c.BitsPerChannel < 1 || c.BitsPerChannel > maxBitsPerChannel {
		return fmt.Errorf("%w: bits per channel must be 1 or 2, got %d", ErrInvalidConfig, c.BitsPerChannel)
	}
	if c.HeaderBits < minHeaderBits || c.HeaderBits > maxHeaderBits {
		return fmt.Errorf("%w: header bits must be in [%d..%d], got %d", ErrInvalidConfig, minHeaderBits, maxHeaderBits, c.HeaderBits)
	}
	return nil
}

// Codec embeds and extracts framed payloads. It holds no mutable state and
// is safe for concurrent use on distinct grids.
type Codec struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a codec for cfg.
func New(cfg Config, opts ...Option) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Codec{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the codec configuration.
func (c *Codec) Config() Config { return c.cfg }

// Frame frames message behind a header of the codec's width.
func (c *Codec) Frame(message string) (*Payload, error) {
	return frameBytes([]byte(message), uint8(c.cfg.HeaderBits))
}

// FrameBytes frames raw bytes behind a header of the codec's width.
func (c *Codec) FrameBytes(body []byte) (*Payload, error) {
	return frameBytes(body, uint8(c.cfg.HeaderBits))
}

// Embed writes p into the low bits of a copy of g and returns the copy.
// g itself is never modified. Samples past the last payload bit are left
// untouched. If p does not fit, Embed returns a *CapacityExceededError and
// writes nothing.
func (c *Codec) Embed(g *Grid, p *Payload) (*Grid, error) {
	if p == nil {
		return nil, ErrNilPayload
	}
	if p.HeaderBits() != c.cfg.HeaderBits {
		return nil, fmt.Errorf("%w: payload header is %d bits, codec expects %d", ErrInvalidConfig, p.HeaderBits(), c.cfg.HeaderBits)
	}
	plan, err := c.Plan(g, p)
	if err != nil {
		return nil, err
	}

	out := g.Clone()
	k := uint(c.cfg.BitsPerChannel)
	bits := p.Bits()
	out.traverse(func(offset int) bool {
		v := out.Samples[offset]
		for pos := uint(0); pos < k; pos++ {
			bit, err := bits.ReadBit()
			if err != nil {
				out.Samples[offset] = v
				return false
			}
			v = v&^(1<<pos) | bit<<pos
		}
		out.Samples[offset] = v
		return bits.Remaining() > 0
	})

	c.logger.Debug("embedded payload",
		"message_bits", plan.MessageBits,
		"payload_bits", plan.PayloadBits,
		"capacity_bits", plan.CapacityBits,
		"bits_per_channel", k,
	)
	return out, nil
}

// EmbedMessage frames message and embeds it into a copy of g.
func (c *Codec) EmbedMessage(g *Grid, message string) (*Grid, error) {
	p, err := c.Frame(message)
	if err != nil {
		return nil, err
	}
	return c.Embed(g, p)
}

// readFramed collects header plus declared body bits from g into a stream.
// The declared length is checked against what g can hold before any body
// bit is read.
func (c *Codec) readFramed(g *Grid) (*BitStream, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	h := c.cfg.HeaderBits
	capacity := c.Capacity(g)
	if capacity < h {
		return nil, fmt.Errorf("%w: carrier holds %d bits, header needs %d", ErrTruncatedPayload, capacity, h)
	}

	k := uint(c.cfg.BitsPerChannel)
	bw := newBitWriter(h)
	want := h
	var length uint64
	var err error
	g.traverse(func(offset int) bool {
		v := g.Samples[offset]
		for pos := uint(0); pos < k; pos++ {
			bit := (v >> pos) & 1
			bw.writeBit(bit)
			if bw.bits <= h {
				length = length<<1 | uint64(bit)
			}
			if bw.bits == h {
				if length > uint64(capacity-h) {
					err = fmt.Errorf("%w: header declares %d bits, carrier holds %d after header", ErrTruncatedPayload, length, capacity-h)
					return false
				}
				want = h + int(length)
			}
			if bw.bits == want {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("read framed payload", "header_bits", h, "message_bits", length)
	return bw.stream(), nil
}

// ExtractBytes reads the framed body from g.
func (c *Codec) ExtractBytes(g *Grid) ([]byte, error) {
	s, err := c.readFramed(g)
	if err != nil {
		return nil, err
	}
	return unframeBytes(s, uint8(c.cfg.HeaderBits))
}

// Extract reads the framed message from g. A grid that never had a payload
// embedded yields arbitrary text or ErrTruncatedPayload, depending on what
// its header bits happen to say.
func (c *Codec) Extract(g *Grid) (string, error) {
	body, err := c.ExtractBytes(g)
	if err != nil {
		return "", err
	}
	return decodeText(body), nil
}

// defaultCodec backs the package-level helpers.
var defaultCodec, _ = New(DefaultConfig())

// Embed embeds message into a copy of g with the default configuration at
// k bits per channel.
func Embed(g *Grid, message string, k int) (*Grid, error) {
	c, err := codecFor(k)
	if err != nil {
		return nil, err
	}
	return c.EmbedMessage(g, message)
}

// Extract reads a message embedded by Embed with the same k.
func Extract(g *Grid, k int) (string, error) {
	c, err := codecFor(k)
	if err != nil {
		return "", err
	}
	return c.Extract(g)
}

func codecFor(k int) (*Codec, error) {
	if k == DefaultBitsPerChannel {
		return defaultCodec, nil
	}
	return New(Config{BitsPerChannel: k, HeaderBits: DefaultHeaderBits})
}
