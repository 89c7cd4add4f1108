package lsbsteg

import (
	"fmt"
	"image"
	"image/color"
)

// RGBChannels is the number of channel samples per pixel of grids built from images.
const RGBChannels = 3

// Grid is a rectangular grid of 8-bit channel samples.
//
// Samples are stored row-major, then column, then channel. That order is the
// traversal order of the wire format: embedding and extraction both walk the
// grid through Offset, so they can never disagree on it.
type Grid struct {
	Height   int
	Width    int
	Channels int
	Samples  []uint8
}

// NewGrid returns a zeroed grid of the given shape.
func NewGrid(height, width, channels int) *Grid {
	if height < 0 || width < 0 || channels < 0 {
		panic(fmt.Sprintf("lsbsteg: negative grid shape %dx%dx%d", height, width, channels))
	}
	return &Grid{
		Height:   height,
		Width:    width,
		Channels: channels,
		Samples:  make([]uint8, height*width*channels),
	}
}

// Offset maps (row, col, channel) to the index of the sample in Samples.
func (g *Grid) Offset(row, col, channel int) int {
	return (row*g.Width+col)*g.Channels + channel
}

// At returns the sample at (row, col, channel).
func (g *Grid) At(row, col, channel int) uint8 {
	return g.Samples[g.Offset(row, col, channel)]
}

// Set stores v at (row, col, channel).
func (g *Grid) Set(row, col, channel int, v uint8) {
	g.Samples[g.Offset(row, col, channel)] = v
}

// Len is the number of samples, H*W*C.
func (g *Grid) Len() int {
	return g.Height * g.Width * g.Channels
}

// Pixels is the number of pixel positions, H*W.
func (g *Grid) Pixels() int {
	return g.Height * g.Width
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	dst := &Grid{
		Height:   g.Height,
		Width:    g.Width,
		Channels: g.Channels,
		Samples:  make([]uint8, len(g.Samples)),
	}
	copy(dst.Samples, g.Samples)
	return dst
}

// SameShape reports whether g and o have identical height, width and channel count.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Height == o.Height && g.Width == o.Width && g.Channels == o.Channels
}

// validate checks that the sample slice matches the declared shape.
func (g *Grid) validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	if g.Height < 0 || g.Width < 0 || g.Channels <= 0 {
		return fmt.Errorf("%w: shape %dx%dx%d", ErrInvalidGrid, g.Height, g.Width, g.Channels)
	}
	if len(g.Samples) != g.Len() {
		return fmt.Errorf("%w: %d samples for shape %dx%dx%d", ErrInvalidGrid, len(g.Samples), g.Height, g.Width, g.Channels)
	}
	return nil
}

// traverse visits every sample offset in wire order until fn returns false.
func (g *Grid) traverse(fn func(offset int) bool) {
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			for ch := 0; ch < g.Channels; ch++ {
				if !fn(g.Offset(row, col, ch)) {
					return
				}
			}
		}
	}
}

// FromImage copies the RGB channels of img into a new grid; alpha is dropped.
//
// For *image.RGBA and *image.NRGBA we read Pix directly instead of going
// through img.At. Any other image type is converted with color.NRGBAModel.
// Samples are always the non-premultiplied color.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	g := NewGrid(h, w, RGBChannels)

	switch src := img.(type) {
	case *image.RGBA:
		copyPix(g, src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), true)
	case *image.NRGBA:
		copyPix(g, src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), false)
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				o := g.Offset(y, x, 0)
				g.Samples[o] = c.R
				g.Samples[o+1] = c.G
				g.Samples[o+2] = c.B
			}
		}
	}
	return g
}

// copyPix copies R, G and B from 4-byte Pix rows. Premultiplied pixels that
// are not fully opaque are converted the same way the generic path does, so
// a color gives the same samples whatever the image type.
func copyPix(g *Grid, pix []byte, stride, start int, premultiplied bool) {
	for y := 0; y < g.Height; y++ {
		row := pix[start+y*stride:]
		for x := 0; x < g.Width; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			o := g.Offset(y, x, 0)
			if premultiplied && p[3] != 0xff {
				c := color.NRGBAModel.Convert(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}).(color.NRGBA)
				g.Samples[o], g.Samples[o+1], g.Samples[o+2] = c.R, c.G, c.B
				continue
			}
			g.Samples[o] = p[0]
			g.Samples[o+1] = p[1]
			g.Samples[o+2] = p[2]
		}
	}
}

// Image renders g as an opaque *image.NRGBA with bounds starting at (0,0).
// Grids with fewer than three channels are rendered as gray.
func (g *Grid) Image() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			i := dst.PixOffset(x, y)
			o := g.Offset(y, x, 0)
			if g.Channels >= 3 {
				dst.Pix[i] = g.Samples[o]
				dst.Pix[i+1] = g.Samples[o+1]
				dst.Pix[i+2] = g.Samples[o+2]
			} else if g.Channels > 0 {
				v := g.Samples[o]
				dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = v, v, v
			}
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}
