package lsbsteg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how a message body is packed before framing.
//
// A packed body is [1 byte method][data]. The length header still counts the
// bits of the whole packed body, so the wire format is unchanged; only a
// reader that knows to Unpack can recover the text.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

var (
	ErrUnknownCompression = errors.New("lsbsteg: unknown compression")
	ErrEmptyPacked        = errors.New("lsbsteg: packed body is empty")
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression parses "none", "zstd" or "lz4". The empty string is "none".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
}

// Pack compresses body with method and prefixes the method byte.
func Pack(body []byte, method Compression) ([]byte, error) {
	out := []byte{byte(method)}
	switch method {
	case CompressionNone:
		return append(out, body...), nil
	case CompressionZstd:
		return compressZstdInto(out, body), nil
	case CompressionLZ4:
		data, err := compressLZ4(body)
		if err != nil {
			return nil, err
		}
		return append(out, data...), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(method))
}

// Unpack reverses Pack.
func Unpack(packed []byte) ([]byte, error) {
	if len(packed) == 0 {
		return nil, ErrEmptyPacked
	}
	method, data := Compression(packed[0]), packed[1:]
	switch method {
	case CompressionNone:
		return append([]byte(nil), data...), nil
	case CompressionZstd:
		out, err := decompressZstd(data)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := decompressLZ4(data)
		if err != nil {
			return nil, fmt.Errorf("lz4 decode: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(method))
}

// EmbedPacked packs message with method and embeds the packed body into a copy of g.
func (c *Codec) EmbedPacked(g *Grid, message string, method Compression) (*Grid, error) {
	packed, err := Pack([]byte(message), method)
	if err != nil {
		return nil, err
	}
	p, err := c.FrameBytes(packed)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("packed message", "method", method, "raw_bytes", len(message), "packed_bytes", len(packed))
	return c.Embed(g, p)
}

// ExtractPacked reads a body embedded by EmbedPacked and unpacks it as text.
func (c *Codec) ExtractPacked(g *Grid) (string, error) {
	packed, err := c.ExtractBytes(g)
	if err != nil {
		return "", err
	}
	body, err := Unpack(packed)
	if err != nil {
		return "", err
	}
	return decodeText(body), nil
}

// --- ZSTD helpers ---

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

// compressZstdInto appends the zstd frame of data to dst. Pack passes the
// method byte as dst, so the packed body is built in one allocation.
func compressZstdInto(dst []byte, data []byte) []byte {
	if len(data) == 0 {
		return dst
	}

	enc := zstdEncPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, dst)
	zstdEncPool.Put(enc)
	return out
}

func decompressZstd(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	dec := zstdDecPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, nil)
	zstdDecPool.Put(dec)
	return out, err
}

// --- LZ4 helpers ---

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}
