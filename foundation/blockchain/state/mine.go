package state

import (
	"fmt"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
)

// attemptsReport is the number of failed attempts between progress events.
const attemptsReport = 1_000

// Kind identifies the result of a call to Mine.
type Kind int

// Set of mining outcomes.
const (
	NoOp Kind = iota
	Pending
	Mined
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case NoOp:
		return "noop"
	case Pending:
		return "pending"
	case Mined:
		return "mined"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Outcome represents the result of one scheduling tick. Block is only set
// when Kind is Mined.
type Outcome struct {
	Kind  Kind
	Block database.Block
}

// =============================================================================

// Mine performs a single unit of mining work. When paused nothing happens.
// Otherwise a candidate block is built on the chain tip and one nonce is
// tried against it. A solved block is appended to the chain.
func (s *State) Mine(paused bool) (Outcome, error) {
	if paused {
		return Outcome{Kind: NoOp}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.candidate == nil || !s.reuse {
		block, err := s.factory.Create(s.db.Tip())
		if err != nil {
			return Outcome{}, fmt.Errorf("create candidate: %w", err)
		}
		s.candidate = &block
	}

	res, err := s.miner.Attempt(s.candidate)
	if err != nil {
		return Outcome{}, fmt.Errorf("attempt: %w", err)
	}
	s.attempts++

	if !res.Solved {
		if s.attempts%attemptsReport == 0 {
			s.evHandler("state: Mine: MINING: attempts[%d]: nonce[%d]: hash[%s]", s.attempts, res.Nonce, res.Hash)
		}
		return Outcome{Kind: Pending}, nil
	}

	block := *s.candidate
	s.candidate = nil

	if err := s.db.Append(block); err != nil {
		return Outcome{}, fmt.Errorf("append: %w", err)
	}

	now := s.now()
	duration := now.Sub(s.mineStart)
	s.durations = append(s.durations, duration)
	s.mineStart = now

	s.evHandler("state: Mine: MINING: SOLVED: blk[%d]: nonce[%d]: hash[%s]: duration[%v]", s.db.Length()-1, res.Nonce, res.Hash, duration)

	return Outcome{Kind: Mined, Block: block}, nil
}
