package lsbsteg

import (
	"fmt"
	"io"
)

// bitWriter packs bits msb-first into a growing byte slice.
type bitWriter struct {
	buf  []byte
	acc  byte
	n    uint8 // bits pending in acc (0..7)
	bits int   // total bits written
}

func newBitWriter(sizeHint int) *bitWriter {
	return &bitWriter{buf: make([]byte, 0, (sizeHint+7)/8)}
}

// writeBit appends the low bit of bit.
func (bw *bitWriter) writeBit(bit uint8) {
	bw.acc = bw.acc<<1 | bit&1
	bw.n++
	bw.bits++
	if bw.n == 8 {
		bw.buf = append(bw.buf, bw.acc)
		bw.acc = 0
		bw.n = 0
	}
}

// writeBits writes the low n bits of v, msb-first.
// For example, if n=4 and v=0b1011, this writes: 1,0,1,1.
func (bw *bitWriter) writeBits(v uint64, n uint8) {
	for n > 0 {
		n--
		bw.writeBit(uint8(v >> n))
	}
}

// writeBytes writes every bit of p, msb-first per byte.
func (bw *bitWriter) writeBytes(p []byte) {
	if bw.n == 0 {
		bw.buf = append(bw.buf, p...)
		bw.bits += 8 * len(p)
		return
	}
	for _, b := range p {
		bw.writeBits(uint64(b), 8)
	}
}

// stream flushes the pending tail (left-aligned, zero padded) and returns
// the written bits as a BitStream.
func (bw *bitWriter) stream() *BitStream {
	data := bw.buf
	if bw.n > 0 {
		data = append(data, bw.acc<<(8-bw.n))
	}
	return &BitStream{data: data, n: bw.bits}
}

// BitStream is a finite sequence of bits packed msb-first. Reads consume it;
// it cannot be rewound.
type BitStream struct {
	data []byte
	n    int // total bits
	pos  int // bits consumed
}

// NewBitStream wraps the first nbits bits of data. nbits is clipped to 8*len(data).
func NewBitStream(data []byte, nbits int) *BitStream {
	if nbits < 0 {
		nbits = 0
	}
	if nbits > 8*len(data) {
		nbits = 8 * len(data)
	}
	return &BitStream{data: data, n: nbits}
}

// Len is the total number of bits in the stream.
func (s *BitStream) Len() int { return s.n }

// Remaining is the number of bits not yet consumed.
func (s *BitStream) Remaining() int { return s.n - s.pos }

// ReadBit returns the next bit, or io.EOF once the stream is exhausted.
func (s *BitStream) ReadBit() (uint8, error) {
	if s.pos >= s.n {
		return 0, io.EOF
	}
	b := s.data[s.pos>>3]
	bit := (b >> (7 - uint(s.pos&7))) & 1
	s.pos++
	return bit, nil
}

// ReadBits reads n bits (0..64) and returns them in the low n bits of the
// result, msb-first. It fails with io.ErrUnexpectedEOF without consuming
// anything when fewer than n bits remain.
func (s *BitStream) ReadBits(n uint8) (uint64, error) {
	if n > 64 {
		return 0, fmt.Errorf("lsbsteg: invalid bit count %d", n)
	}
	if s.Remaining() < int(n) {
		return 0, io.ErrUnexpectedEOF
	}
	var v uint64
	for i := uint8(0); i < n; i++ {
		bit, _ := s.ReadBit()
		v = v<<1 | uint64(bit)
	}
	return v, nil
}

// ReadBytes reads nbytes whole bytes, msb-first per byte.
func (s *BitStream) ReadBytes(nbytes int) ([]byte, error) {
	if nbytes < 0 || s.Remaining() < 8*nbytes {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, nbytes)
	if s.pos&7 == 0 {
		start := s.pos >> 3
		copy(out, s.data[start:start+nbytes])
		s.pos += 8 * nbytes
		return out, nil
	}
	for i := range out {
		v, _ := s.ReadBits(8)
		out[i] = byte(v)
	}
	return out, nil
}

// Skip discards up to n bits.
func (s *BitStream) Skip(n int) {
	s.pos = min(s.pos+n, s.n)
}
