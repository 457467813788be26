// Package hashing provides the content hash used to identify transactions
// and blocks. Values are hashed over a canonical binary encoding with a fixed
// field order so the same logical value always produces the same digest.
package hashing

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrSerialization is returned when a value can't be canonically encoded.
var ErrSerialization = errors.New("value can't be canonically serialized")

// Set of supported hash strategies.
const (
	MD5       = "md5"
	SHA256    = "sha256"
	Keccak256 = "keccak256"
)

// =============================================================================

// Digest represents the output of the hasher. The width is fixed by the
// strategy the hasher was constructed with.
type Digest []byte

// Hex returns the 0x prefixed hex representation of the digest.
func (d Digest) Hex() string {
	return hexutil.Encode(d)
}

// HexDigits returns the lowercase hex representation without the prefix.
func (d Digest) HexDigits() string {
	return d.Hex()[2:]
}

// String implements the fmt.Stringer interface.
func (d Digest) String() string {
	return d.Hex()
}

// Equal reports whether both digests hold the same bytes.
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d, other)
}

// HasLeadingZeros reports whether the first n hex characters of the digest
// are all '0'. The check is done on the characters and not on the numeric
// value of the digest.
func (d Digest) HasLeadingZeros(n uint) bool {
	digits := d.HexDigits()
	if uint(len(digits)) < n {
		return false
	}

	for i := uint(0); i < n; i++ {
		if digits[i] != '0' {
			return false
		}
	}

	return true
}

// IsZero reports whether every byte of the digest is zero.
func (d Digest) IsZero() bool {
	for _, b := range d {
		if b != 0 {
			return false
		}
	}
	return true
}

// MarshalText implements the encoding.TextMarshaler interface.
func (d Digest) MarshalText() ([]byte, error) {
	return hexutil.Bytes(d).MarshalText()
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Digest) UnmarshalText(input []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalText(input); err != nil {
		return err
	}
	*d = Digest(b)
	return nil
}

// =============================================================================

// Canonical represents the behavior a value must exhibit to be hashed. The
// value writes its fields into the encoder in a fixed order.
type Canonical interface {
	EncodeCanonical(enc *Encoder) error
}

// Hasher produces digests using a single hash strategy.
type Hasher struct {
	strategy string
	newHash  func() hash.Hash
}

// New constructs a hasher for the specified strategy.
func New(strategy string) (Hasher, error) {
	switch strategy {
	case MD5:
		return Hasher{strategy: MD5, newHash: md5.New}, nil
	case SHA256:
		return Hasher{strategy: SHA256, newHash: sha256.New}, nil
	case Keccak256:
		return Hasher{strategy: Keccak256, newHash: func() hash.Hash { return crypto.NewKeccakState() }}, nil
	}

	return Hasher{}, fmt.Errorf("unknown hash strategy %q", strategy)
}

// Strategy returns the name of the hash strategy in use.
func (h Hasher) Strategy() string {
	return h.strategy
}

// Size returns the width in bytes of the digests this hasher produces.
func (h Hasher) Size() int {
	return h.newHash().Size()
}

// NewHash returns a fresh hash.Hash for the strategy. It matches the
// signature expected by the merkle package.
func (h Hasher) NewHash() hash.Hash {
	return h.newHash()
}

// Zero returns a digest of the correct width with every byte set to zero.
func (h Hasher) Zero() Digest {
	return make(Digest, h.Size())
}

// Sum hashes the concatenation of the specified byte slices.
func (h Hasher) Sum(data ...[]byte) Digest {
	hh := h.newHash()
	for _, d := range data {
		hh.Write(d)
	}
	return hh.Sum(nil)
}

// Hash returns the digest of the value's canonical encoding. Raw digests and
// byte slices are hashed as is.
func (h Hasher) Hash(value any) (Digest, error) {
	switch v := value.(type) {
	case Canonical:
		var enc Encoder
		if err := v.EncodeCanonical(&enc); err != nil {
			return nil, fmt.Errorf("encode %T: %w", value, err)
		}
		return h.Sum(enc.Bytes()), nil

	case Digest:
		return h.Sum(v), nil

	case []byte:
		return h.Sum(v), nil
	}

	return nil, fmt.Errorf("hash %T: %w", value, ErrSerialization)
}
