package hashing

import (
	"encoding/binary"
)

// Encoder accumulates the canonical byte layout of a value. Integers are
// written big endian in 8 bytes and byte strings are prefixed with their
// length so adjacent fields can't bleed into each other.
type Encoder struct {
	buf []byte
}

// PutUint64 appends an unsigned integer.
func (e *Encoder) PutUint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

// PutBytes appends a length prefixed byte string.
func (e *Encoder) PutBytes(b []byte) {
	e.PutUint64(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// PutString appends a length prefixed string.
func (e *Encoder) PutString(s string) {
	e.PutUint64(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// PutValue appends the encoding of a nested value in place.
func (e *Encoder) PutValue(v Canonical) error {
	return v.EncodeCanonical(e)
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}
