// Package genesis maintains the protocol parameters the chain is started
// with. These values are fixed for the lifetime of the process.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
	"github.com/ardanlabs/simpleminer/foundation/validate"
)

// Set of default protocol values.
const (
	DefaultMiningReward = 10
	DefaultDifficulty   = 2
)

// Genesis represents the protocol configuration of the chain.
type Genesis struct {
	Date time.Time `json:"date"`

	// Reward credited by every coinbase transaction.
	MiningReward uint64 `json:"mining_reward" validate:"gt=0"`

	// Number of leading hex 0's a block hash needs.
	Difficulty uint `json:"difficulty" validate:"lte=64"`

	// Hash function for blocks, transactions and merkle roots.
	HashStrategy string `json:"hash_strategy" validate:"required,oneof=md5 sha256 keccak256"`
}

// Default returns the protocol configuration used when nothing is configured.
func Default() Genesis {
	return Genesis{
		Date:         time.Now().UTC(),
		MiningReward: DefaultMiningReward,
		Difficulty:   DefaultDifficulty,
		HashStrategy: hashing.MD5,
	}
}

// New constructs and validates a protocol configuration.
func New(reward uint64, difficulty uint, strategy string) (Genesis, error) {
	gen := Genesis{
		Date:         time.Now().UTC(),
		MiningReward: reward,
		Difficulty:   difficulty,
		HashStrategy: strategy,
	}

	if err := gen.Validate(); err != nil {
		return Genesis{}, err
	}

	return gen, nil
}

// Load opens and consumes a genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var gen Genesis
	if err := json.Unmarshal(content, &gen); err != nil {
		return Genesis{}, err
	}

	if err := gen.Validate(); err != nil {
		return Genesis{}, err
	}

	return gen, nil
}

// Validate checks the configuration is usable. The difficulty can't ask for
// more zeros than the hash strategy has hex digits.
func (g Genesis) Validate() error {
	if err := validate.Check(g); err != nil {
		return fmt.Errorf("validate genesis: %w", err)
	}

	hasher, err := hashing.New(g.HashStrategy)
	if err != nil {
		return err
	}

	if digits := uint(hasher.Size() * 2); g.Difficulty > digits {
		return fmt.Errorf("difficulty %d exceeds the %d hex digits of %s", g.Difficulty, digits, g.HashStrategy)
	}

	return nil
}

// Hasher returns the hasher for the configured strategy.
func (g Genesis) Hasher() (hashing.Hasher, error) {
	return hashing.New(g.HashStrategy)
}
