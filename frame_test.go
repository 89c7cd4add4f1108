package lsbsteg

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestFrame_Layout(t *testing.T) {
	p, err := Frame("Hi")
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if p.HeaderBits() != 32 || p.BodyBits() != 16 || p.Len() != 48 {
		t.Fatalf("got header=%d body=%d len=%d", p.HeaderBits(), p.BodyBits(), p.Len())
	}

	s := p.Bits()
	if s.Len() != 48 {
		t.Fatalf("stream length: got %d want 48", s.Len())
	}
	header, err := s.ReadBits(32)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if header != 16 {
		t.Fatalf("header: got %d want 16", header)
	}
	// 'H' = 0x48 = 01001000, msb first.
	for i, want := range []uint8{0, 1, 0, 0, 1, 0, 0, 0} {
		bit, err := s.ReadBit()
		if err != nil {
			t.Fatalf("ReadBit: %v", err)
		}
		if bit != want {
			t.Fatalf("bit %d of 'H': got %d want %d", i, bit, want)
		}
	}
	rest, err := s.ReadBytes(1)
	if err != nil || string(rest) != "i" {
		t.Fatalf("ReadBytes: got %q, %v", rest, err)
	}
	if _, err := s.ReadBit(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestFrame_BigEndianHeader(t *testing.T) {
	p, err := FrameBytes(make([]byte, 0x0102))
	if err != nil {
		t.Fatalf("FrameBytes: %v", err)
	}
	// 0x0102 bytes = 0x0810 bits -> header bytes 00 00 08 10.
	head, err := p.Bits().ReadBytes(4)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if string(head) != "\x00\x00\x08\x10" {
		t.Fatalf("header bytes: got % x", head)
	}
}

func TestUnframe_RoundTrip(t *testing.T) {
	for _, message := range []string{"", "a", "Hello 世界 🌍", strings.Repeat("xyz", 1000)} {
		p, err := Frame(message)
		if err != nil {
			t.Fatalf("Frame: %v", err)
		}
		got, err := Unframe(p.Bits())
		if err != nil {
			t.Fatalf("Unframe: %v", err)
		}
		if got != message {
			t.Fatalf("got %q want %q", got, message)
		}
	}
}

func TestUnframe_Truncated(t *testing.T) {
	p, err := Frame("truncate me")
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	full := p.Bits()
	short := NewBitStream(full.data, full.Len()-1)
	if _, err := Unframe(short); !errors.Is(err, ErrTruncatedPayload) {
		t.Fatalf("expected ErrTruncatedPayload, got %v", err)
	}
	if _, err := UnframeBytes(NewBitStream([]byte{0, 0}, 16)); !errors.Is(err, ErrTruncatedPayload) {
		t.Fatalf("short header: expected ErrTruncatedPayload, got %v", err)
	}
}

func TestUnframe_PartialTrailingByte(t *testing.T) {
	bw := newBitWriter(0)
	bw.writeBits(13, 32)
	bw.writeBytes([]byte("Z"))
	bw.writeBits(0b10101, 5)
	got, err := Unframe(bw.stream())
	if err != nil {
		t.Fatalf("Unframe: %v", err)
	}
	if got != "Z" {
		t.Fatalf("got %q want %q", got, "Z")
	}
}

func TestFrame_MessageTooLong(t *testing.T) {
	c, err := New(Config{BitsPerChannel: 1, HeaderBits: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// An 8-bit header can declare at most 255 bits, so 31 bytes.
	if _, err := c.Frame(strings.Repeat("a", 31)); err != nil {
		t.Fatalf("31 bytes: %v", err)
	}
	if _, err := c.Frame(strings.Repeat("a", 32)); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("32 bytes: expected ErrMessageTooLong, got %v", err)
	}
}

func TestBitWriter_Unaligned(t *testing.T) {
	bw := newBitWriter(0)
	bw.writeBit(1)
	bw.writeBytes([]byte{0xA5, 0x0F})
	s := bw.stream()
	if s.Len() != 17 {
		t.Fatalf("length: got %d want 17", s.Len())
	}
	if bit, _ := s.ReadBit(); bit != 1 {
		t.Fatalf("first bit: got %d", bit)
	}
	got, err := s.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if got[0] != 0xA5 || got[1] != 0x0F {
		t.Fatalf("got % x", got)
	}
	if _, err := s.ReadBits(1); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestNewBitStream_Clips(t *testing.T) {
	s := NewBitStream([]byte{0xff}, 100)
	if s.Len() != 8 {
		t.Fatalf("got %d want 8", s.Len())
	}
	s.Skip(3)
	if s.Remaining() != 5 {
		t.Fatalf("remaining: got %d want 5", s.Remaining())
	}
}
