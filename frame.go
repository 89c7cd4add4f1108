package lsbsteg

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Payload is a framed message: a big-endian length header of headerBits bits
// followed by the body bits, msb-first per byte.
type Payload struct {
	headerBits uint8
	bodyBits   uint64
	body       []byte
}

// HeaderBits is the width of the length header.
func (p *Payload) HeaderBits() int { return int(p.headerBits) }

// BodyBits is the bit length L declared in the header.
func (p *Payload) BodyBits() int { return int(p.bodyBits) }

// Len is the total number of framed bits, header included.
func (p *Payload) Len() int { return int(p.headerBits) + int(p.bodyBits) }

// Body returns the body bytes. The slice must not be modified.
func (p *Payload) Body() []byte { return p.body }

// Bits returns a fresh stream over the framed bits.
func (p *Payload) Bits() *BitStream {
	bw := newBitWriter(p.Len())
	bw.writeBits(p.bodyBits, p.headerBits)
	bw.writeBytes(p.body)
	return bw.stream()
}

// maxBodyBits is the largest L a header of width h can carry.
func maxBodyBits(h uint8) uint64 {
	if h >= 64 {
		return ^uint64(0)
	}
	return 1<<h - 1
}

// frameBytes frames body behind a length header of width h.
func frameBytes(body []byte, h uint8) (*Payload, error) {
	n := uint64(len(body)) * 8
	if n > maxBodyBits(h) || n/8 != uint64(len(body)) {
		return nil, fmt.Errorf("%w: %d bytes with a %d-bit header", ErrMessageTooLong, len(body), h)
	}
	return &Payload{headerBits: h, bodyBits: n, body: body}, nil
}

// unframeBytes reads a header of width h and the body it declares.
// Trailing body bits that do not complete a byte are dropped.
func unframeBytes(s *BitStream, h uint8) ([]byte, error) {
	l, err := s.ReadBits(h)
	if err != nil {
		return nil, fmt.Errorf("%w: need %d header bits, have %d", ErrTruncatedPayload, h, s.Remaining())
	}
	if l > uint64(s.Remaining()) {
		return nil, fmt.Errorf("%w: header declares %d bits, %d available", ErrTruncatedPayload, l, s.Remaining())
	}
	body, err := s.ReadBytes(int(l / 8))
	if err != nil {
		return nil, err
	}
	s.Skip(int(l % 8))
	return body, nil
}

// Frame encodes message as UTF-8 behind a 32-bit big-endian length header.
func Frame(message string) (*Payload, error) {
	return frameBytes([]byte(message), DefaultHeaderBits)
}

// FrameBytes frames raw bytes behind a 32-bit big-endian length header.
func FrameBytes(body []byte) (*Payload, error) {
	return frameBytes(body, DefaultHeaderBits)
}

// Unframe reads a 32-bit framed payload from s and decodes it as UTF-8.
// Invalid sequences are replaced with U+FFFD.
func Unframe(s *BitStream) (string, error) {
	body, err := unframeBytes(s, DefaultHeaderBits)
	if err != nil {
		return "", err
	}
	return decodeText(body), nil
}

// UnframeBytes reads a 32-bit framed payload from s and returns the raw body.
func UnframeBytes(s *BitStream) ([]byte, error) {
	return unframeBytes(s, DefaultHeaderBits)
}

// decodeText decodes body as UTF-8. Each maximal ill-formed subsequence
// becomes one U+FFFD, so "a\xff\xfeb" decodes to "a\uFFFD\uFFFDb".
func decodeText(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), string(utf8.RuneError))
	}
	return string(out)
}
