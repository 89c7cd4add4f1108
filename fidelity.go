package lsbsteg

import (
	"fmt"
	"math"
)

// MaxSample is the peak sample value used by PSNR.
const MaxSample = 255.0

// Fidelity summarises how far a modified grid deviates from its original.
type Fidelity struct {
	MSE           float64
	PSNR          float64 // +Inf when the grids are identical
	ChangedPixels int
	TotalPixels   int
}

// ChangedRatio is the fraction of pixel positions that differ.
func (f Fidelity) ChangedRatio() float64 {
	if f.TotalPixels == 0 {
		return 0
	}
	return float64(f.ChangedPixels) / float64(f.TotalPixels)
}

func checkShapes(a, b *Grid) error {
	if err := a.validate(); err != nil {
		return err
	}
	if err := b.validate(); err != nil {
		return err
	}
	if !a.SameShape(b) {
		return fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrShapeMismatch,
			a.Height, a.Width, a.Channels, b.Height, b.Width, b.Channels)
	}
	return nil
}

// MSE is the mean of squared per-sample differences between a and b.
// Empty grids have an MSE of 0.
func MSE(a, b *Grid) (float64, error) {
	if err := checkShapes(a, b); err != nil {
		return 0, err
	}
	return mse(a, b), nil
}

func mse(a, b *Grid) float64 {
	if len(a.Samples) == 0 {
		return 0
	}
	var sum uint64
	for i, v := range a.Samples {
		d := int64(v) - int64(b.Samples[i])
		sum += uint64(d * d)
	}
	return float64(sum) / float64(len(a.Samples))
}

// PSNR is 20*log10(255/sqrt(MSE)) in decibels; identical grids give +Inf.
func PSNR(a, b *Grid) (float64, error) {
	m, err := MSE(a, b)
	if err != nil {
		return 0, err
	}
	return psnrFromMSE(m), nil
}

func psnrFromMSE(m float64) float64 {
	if m == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(MaxSample/math.Sqrt(m))
}

// ChangedPixelCount is the number of pixel positions where any channel differs.
func ChangedPixelCount(a, b *Grid) (int, error) {
	if err := checkShapes(a, b); err != nil {
		return 0, err
	}
	return changedPixels(a, b), nil
}

func changedPixels(a, b *Grid) int {
	n := 0
	c := a.Channels
	if c == 0 {
		return 0
	}
	for p := 0; p+c <= len(a.Samples); p += c {
		for ch := 0; ch < c; ch++ {
			if a.Samples[p+ch] != b.Samples[p+ch] {
				n++
				break
			}
		}
	}
	return n
}

// Compare computes MSE, PSNR and the changed pixel count of a and b.
func Compare(a, b *Grid) (Fidelity, error) {
	if err := checkShapes(a, b); err != nil {
		return Fidelity{}, err
	}
	m := mse(a, b)
	return Fidelity{
		MSE:           m,
		PSNR:          psnrFromMSE(m),
		ChangedPixels: changedPixels(a, b),
		TotalPixels:   a.Pixels(),
	}, nil
}
