package database

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
	"github.com/google/uuid"
)

// Tx represents a coinbase transaction rewarding the miner of the block
// that contains it.
type Tx struct {
	TxHash hashing.Digest `json:"hash"`  // Digest of the transaction excluding this field.
	TxID   string         `json:"txid"`  // Unique id built from the creation time and random bits.
	Value  uint64         `json:"value"` // Reward credited by this transaction.
}

// EncodeCanonical implements the hashing.Canonical interface. The hash field
// is not part of the encoding.
func (tx Tx) EncodeCanonical(enc *hashing.Encoder) error {
	enc.PutString(tx.TxID)
	enc.PutUint64(tx.Value)
	return nil
}

// Hash implements the merkle Hashable interface.
func (tx Tx) Hash() ([]byte, error) {
	return tx.TxHash, nil
}

// Equals implements the merkle Hashable interface.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx.TxID == otherTx.TxID && bytes.Equal(tx.TxHash, otherTx.TxHash)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%d", tx.TxID, tx.Value)
}

// =============================================================================

// TxFactory creates coinbase transactions.
type TxFactory struct {
	Reward uint64
	Hasher hashing.Hasher

	// NewID overrides the id generator. The default is a UUIDv7 which
	// carries the unix millisecond time of creation and random bits.
	NewID func() (string, error)
}

// Create constructs a new coinbase transaction with a fresh id.
func (f TxFactory) Create() (Tx, error) {
	newID := f.NewID
	if newID == nil {
		newID = newTxID
	}

	id, err := newID()
	if err != nil {
		return Tx{}, fmt.Errorf("generate txid: %w", err)
	}

	tx := Tx{
		TxID:  id,
		Value: f.Reward,
	}

	hash, err := f.Hasher.Hash(tx)
	if err != nil {
		return Tx{}, err
	}
	tx.TxHash = hash

	return tx, nil
}

// newTxID returns a time ordered unique id.
func newTxID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
