package lsbsteg

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("lsbsteg: payload exceeds carrier capacity")
	ErrTruncatedPayload = errors.New("lsbsteg: truncated payload")
	ErrShapeMismatch    = errors.New("lsbsteg: grid shapes differ")
	ErrInvalidConfig    = errors.New("lsbsteg: invalid config")
	ErrInvalidGrid      = errors.New("lsbsteg: invalid grid")
	ErrMessageTooLong   = errors.New("lsbsteg: message too long for length header")
	ErrNilPayload       = errors.New("lsbsteg: nil payload")
)

// CapacityExceededError reports how many bits a payload needed and how many
// the carrier could hold. It matches ErrCapacityExceeded with errors.Is.
type CapacityExceededError struct {
	Needed    int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("lsbsteg: payload needs %d bits, capacity is %d bits", e.Needed, e.Available)
}

func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
