package state

import (
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/genesis"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
)

// Stats represents the timing of the mined blocks. A duration runs from the
// previous mined block, or the start of the engine, to the next mined block.
type Stats struct {
	LastMineDuration    time.Duration
	AverageMineDuration time.Duration
	BlocksMined         int
	Attempts            uint64
	Uptime              time.Duration
}

// LastMineDurationMs returns the last duration in milliseconds.
func (st Stats) LastMineDurationMs() int64 {
	return st.LastMineDuration.Milliseconds()
}

// AverageMineDurationMs returns the mean duration in milliseconds.
func (st Stats) AverageMineDurationMs() int64 {
	return st.AverageMineDuration.Milliseconds()
}

// =============================================================================

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveHasher returns the hasher the engine links blocks with.
func (s *State) RetrieveHasher() hashing.Hasher {
	return s.hasher
}

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.Tip()
}

// RetrieveBlock returns the block at the specified position in the chain.
func (s *State) RetrieveBlock(num uint64) (database.Block, error) {
	return s.db.GetBlock(num)
}

// RetrieveChain returns a copy of the chain starting with genesis.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Blocks()
}

// RetrieveChainData returns the chain in its presentation form.
func (s *State) RetrieveChainData() ([]database.BlockData, error) {
	blocks := s.db.Blocks()

	out := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		bd, err := database.NewBlockData(block, s.hasher)
		if err != nil {
			return nil, err
		}
		out[i] = bd
	}

	return out, nil
}

// RetrieveStats returns the mining statistics. The average is the mean of
// every duration recorded since the engine started.
func (s *State) RetrieveStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		BlocksMined: len(s.durations),
		Attempts:    s.attempts,
		Uptime:      s.now().Sub(s.started),
	}

	if len(s.durations) == 0 {
		return st
	}

	var total time.Duration
	for _, d := range s.durations {
		total += d
	}

	st.LastMineDuration = s.durations[len(s.durations)-1]
	st.AverageMineDuration = total / time.Duration(len(s.durations))

	return st
}

// ValidateChain checks every mined block against its parent and the
// difficulty of the chain.
func (s *State) ValidateChain() error {
	return s.db.ValidateChain(s.genesis.Difficulty)
}
