// Package imageio moves pixel grids in and out of image files.
//
// Any format registered with the image package can be read as a carrier:
// PNG, JPEG and GIF from the standard library, BMP, TIFF and WebP from
// golang.org/x/image. Stego output is written only to lossless containers
// (PNG, BMP, TIFF), because a lossy encoder would destroy the low-order bits
// that carry the payload.
package imageio

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"lsbsteg"
)

var (
	ErrLossyContainer    = errors.New("imageio: lossy container cannot carry a payload")
	ErrUnsupportedFormat = errors.New("imageio: unsupported output format")
	ErrEmptyImage        = errors.New("imageio: image has no pixels")
)

// Format is a lossless output container.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// FormatFromPath picks the output container from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".jpg", ".jpeg", ".gif", ".webp":
		return "", fmt.Errorf("%w: %s", ErrLossyContainer, ext)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Info describes an image file that was read or written.
type Info struct {
	Path   string
	Format string
	Width  int
	Height int
	Size   int64
	// Digest is the hex BLAKE3-256 of the file bytes.
	Digest string
}

// Decode reads an image in any registered format and converts it to a grid.
func Decode(r io.Reader) (*lsbsteg.Grid, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	if img.Bounds().Empty() {
		return nil, format, ErrEmptyImage
	}
	return lsbsteg.FromImage(img), format, nil
}

// Load reads the image at path into a grid.
func Load(path string) (*lsbsteg.Grid, Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, err
	}

	g, format, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode %s: %w", path, err)
	}

	sum := blake3.Sum256(data)
	return g, Info{
		Path:   path,
		Format: format,
		Width:  g.Width,
		Height: g.Height,
		Size:   int64(len(data)),
		Digest: hex.EncodeToString(sum[:]),
	}, nil
}

// Encode writes g to w in format f.
func Encode(w io.Writer, g *lsbsteg.Grid, f Format) error {
	img := g.Image()
	switch f {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Save writes g to path in the container named by its extension.
func Save(path string, g *lsbsteg.Grid) (Info, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Info{}, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, g, f); err != nil {
		return Info{}, fmt.Errorf("encode %s: %w", path, err)
	}

	out, err := os.Create(path)
	if err != nil {
		return Info{}, err
	}
	defer out.Close()

	if _, err := out.Write(buf.Bytes()); err != nil {
		return Info{}, err
	}
	if err := out.Close(); err != nil {
		return Info{}, err
	}

	sum := blake3.Sum256(buf.Bytes())
	return Info{
		Path:   path,
		Format: string(f),
		Width:  g.Width,
		Height: g.Height,
		Size:   int64(buf.Len()),
		Digest: hex.EncodeToString(sum[:]),
	}, nil
}
