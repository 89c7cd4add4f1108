package lsbsteg

import (
	"errors"
	"math"
	"testing"
)

func TestFidelity_Identity(t *testing.T) {
	g := makeTestGrid(32, 24)

	m, err := MSE(g, g.Clone())
	if err != nil || m != 0 {
		t.Fatalf("MSE: got %v, %v", m, err)
	}
	p, err := PSNR(g, g.Clone())
	if err != nil || !math.IsInf(p, 1) {
		t.Fatalf("PSNR: got %v, %v", p, err)
	}
	n, err := ChangedPixelCount(g, g.Clone())
	if err != nil || n != 0 {
		t.Fatalf("ChangedPixelCount: got %v, %v", n, err)
	}
}

func TestFidelity_KnownValues(t *testing.T) {
	a := NewGrid(1, 2, 3)
	b := a.Clone()
	b.Set(0, 1, 2, 3) // one sample off by 3

	m, err := MSE(a, b)
	if err != nil {
		t.Fatalf("MSE: %v", err)
	}
	if m != 1.5 {
		t.Fatalf("MSE: got %v want 1.5", m)
	}
	p, err := PSNR(a, b)
	if err != nil {
		t.Fatalf("PSNR: %v", err)
	}
	want := 20 * math.Log10(255/math.Sqrt(1.5))
	if math.Abs(p-want) > 1e-9 {
		t.Fatalf("PSNR: got %v want %v", p, want)
	}

	f, err := Compare(a, b)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if f.ChangedPixels != 1 || f.TotalPixels != 2 || f.ChangedRatio() != 0.5 {
		t.Fatalf("Compare: got %+v", f)
	}
}

func TestFidelity_ChangedPixelsCountsPositions(t *testing.T) {
	a := NewGrid(2, 2, 3)
	b := a.Clone()
	b.Set(0, 0, 0, 1)
	b.Set(0, 0, 1, 1) // same pixel
	b.Set(1, 1, 2, 9)
	n, err := ChangedPixelCount(a, b)
	if err != nil {
		t.Fatalf("ChangedPixelCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d want 2", n)
	}
}

func TestFidelity_ShapeMismatch(t *testing.T) {
	a := NewGrid(4, 4, 3)
	for _, b := range []*Grid{NewGrid(4, 5, 3), NewGrid(5, 4, 3), NewGrid(4, 4, 1)} {
		if _, err := MSE(a, b); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("MSE: expected ErrShapeMismatch, got %v", err)
		}
		if _, err := PSNR(a, b); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("PSNR: expected ErrShapeMismatch, got %v", err)
		}
		if _, err := ChangedPixelCount(a, b); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("ChangedPixelCount: expected ErrShapeMismatch, got %v", err)
		}
		if _, err := Compare(a, b); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("Compare: expected ErrShapeMismatch, got %v", err)
		}
	}
}

func TestFidelity_AfterEmbed(t *testing.T) {
	g := makeTestGrid(64, 64)
	for _, k := range []int{1, 2} {
		stego, err := mustCodec(t, k).EmbedMessage(g, "fidelity check")
		if err != nil {
			t.Fatalf("EmbedMessage: %v", err)
		}
		f, err := Compare(g, stego)
		if err != nil {
			t.Fatalf("Compare: %v", err)
		}
		maxDelta := float64(int(1)<<k - 1)
		if f.MSE > maxDelta*maxDelta {
			t.Fatalf("k=%d: MSE %v exceeds %v", k, f.MSE, maxDelta*maxDelta)
		}
		// 144 payload bits touch at most ceil(144/(3k)) pixels.
		if limit := (144 + 3*k - 1) / (3 * k); f.ChangedPixels > limit {
			t.Fatalf("k=%d: %d pixels changed, limit %d", k, f.ChangedPixels, limit)
		}
		if f.PSNR < 40 {
			t.Fatalf("k=%d: PSNR %v too low", k, f.PSNR)
		}
	}
}
