// Package pow implements the proof of work nonce search. Every call to
// Attempt tries a single nonce against a candidate block, leaving the
// scheduling of attempts to the caller.
package pow

import (
	"crypto/rand"
	"math/big"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
)

// MaxNonceSeed is the exclusive upper bound of a freshly seeded nonce.
const MaxNonceSeed = 200_000

// HashFunc computes the hash of a block. It exists so tests can force the
// digest a block produces.
type HashFunc func(block database.Block) (hashing.Digest, error)

// SeedFunc returns the starting point of a nonce search.
type SeedFunc func() (uint64, error)

// RandomSeed chooses a random starting point for the nonce in the range
// [0, MaxNonceSeed).
func RandomSeed() (uint64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxNonceSeed))
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// FixedSeed returns a seed function that always starts at the specified nonce.
func FixedSeed(nonce uint64) SeedFunc {
	return func() (uint64, error) {
		return nonce, nil
	}
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// The first difficulty hex characters must be '0'.
func IsHashSolved(difficulty uint, hash hashing.Digest) bool {
	return hash.HasLeadingZeros(difficulty)
}

// =============================================================================

// Config represents the settings for a miner.
type Config struct {
	Difficulty uint
	Hash       HashFunc
	Seed       SeedFunc
}

// Result describes the outcome of a single attempt.
type Result struct {
	Solved bool
	Nonce  uint64
	Hash   hashing.Digest
}

// Miner holds the nonce shared across attempts.
type Miner struct {
	difficulty uint
	hash       HashFunc
	seed       SeedFunc
	nonce      uint64
}

// New constructs a miner and seeds the first nonce.
func New(cfg Config) (*Miner, error) {
	seed := cfg.Seed
	if seed == nil {
		seed = RandomSeed
	}

	nonce, err := seed()
	if err != nil {
		return nil, err
	}

	m := Miner{
		difficulty: cfg.Difficulty,
		hash:       cfg.Hash,
		seed:       seed,
		nonce:      nonce,
	}

	return &m, nil
}

// Nonce returns the nonce the next attempt will use.
func (m *Miner) Nonce() uint64 {
	return m.nonce
}

// Difficulty returns the number of leading zeros required.
func (m *Miner) Difficulty() uint {
	return m.difficulty
}

// Attempt sets the current nonce on the block and checks if the block hash
// solves the puzzle. On success the nonce is reseeded for the next block,
// otherwise it moves to the next value. Pointer semantics are being used
// since the nonce is written into the block.
func (m *Miner) Attempt(block *database.Block) (Result, error) {
	block.Header.Nonce = m.nonce

	hash, err := m.hash(*block)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Solved: IsHashSolved(m.difficulty, hash),
		Nonce:  m.nonce,
		Hash:   hash,
	}

	if !res.Solved {
		m.nonce++
		return res, nil
	}

	nonce, err := m.seed()
	if err != nil {
		return Result{}, err
	}
	m.nonce = nonce

	return res, nil
}
