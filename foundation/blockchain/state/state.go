// Package state is the core API for the miner. It owns the chain, the nonce
// search and the mining statistics so multiple engines can run side by side.
package state

import (
	"sync"
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/genesis"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/pow"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/storage/memory"
)

// EventHandler defines a function that is called when events
// occur in the processing of mining blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the engine.
type Config struct {
	Genesis genesis.Genesis
	Storage database.Storage

	// ReuseCandidate keeps the same candidate block across attempts until it
	// is mined. By default a fresh candidate is built for every attempt.
	ReuseCandidate bool

	// Optional overrides for the nonce seed, the block hash, the txid
	// generator and the clock.
	Seed    pow.SeedFunc
	Hash    pow.HashFunc
	NewTxID func() (string, error)
	Now     func() time.Time

	EvHandler EventHandler
}

// State manages the mining engine.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	hasher    hashing.Hasher
	evHandler EventHandler
	now       func() time.Time
	reuse     bool

	db        *database.Database
	factory   database.BlockFactory
	miner     *pow.Miner
	candidate *database.Block

	started   time.Time
	mineStart time.Time
	durations []time.Duration
	attempts  uint64
}

// New constructs a new engine seeded with the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	hasher, err := cfg.Genesis.Hasher()
	if err != nil {
		return nil, err
	}

	strg := cfg.Storage
	if strg == nil {
		strg = memory.New()
	}

	db, err := database.New(hasher, strg)
	if err != nil {
		return nil, err
	}

	hash := cfg.Hash
	if hash == nil {
		hash = func(block database.Block) (hashing.Digest, error) {
			return block.Hash(hasher)
		}
	}

	miner, err := pow.New(pow.Config{
		Difficulty: cfg.Genesis.Difficulty,
		Hash:       hash,
		Seed:       cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	factory := database.BlockFactory{
		Hasher: hasher,
		Tx: database.TxFactory{
			Reward: cfg.Genesis.MiningReward,
			Hasher: hasher,
			NewID:  cfg.NewTxID,
		},
		Now: now,
	}

	start := now()

	s := State{
		genesis:   cfg.Genesis,
		hasher:    hasher,
		evHandler: ev,
		now:       now,
		reuse:     cfg.ReuseCandidate,

		db:      db,
		factory: factory,
		miner:   miner,

		started:   start,
		mineStart: start,
	}

	ev("state: New: difficulty[%d]: reward[%d]: hash[%s]: nonce[%d]", cfg.Genesis.Difficulty, cfg.Genesis.MiningReward, hasher.Strategy(), miner.Nonce())

	return &s, nil
}

// Reset drops every mined block and the statistics, returning the chain to
// the genesis block.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Reset(); err != nil {
		return err
	}

	s.candidate = nil
	s.durations = nil
	s.attempts = 0
	s.mineStart = s.now()

	s.evHandler("state: Reset: chain reset to genesis")

	return nil
}
