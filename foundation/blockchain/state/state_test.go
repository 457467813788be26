package state_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/genesis"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/pow"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newGenesis(t *testing.T, difficulty uint) genesis.Genesis {
	gen, err := genesis.New(10, difficulty, hashing.MD5)
	ifErrFailNow(t, err)
	return gen
}

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// =============================================================================

func Test_MineZeroDifficulty(t *testing.T) {
	s, err := state.New(state.Config{
		Genesis: newGenesis(t, 0),
		EvHandler: func(v string, args ...any) {
			t.Logf(v, args...)
		},
	})
	ifErrFailNow(t, err)

	t.Log("Given a difficulty of zero.")
	{
		if l := len(s.RetrieveChain()); l != 1 {
			t.Fatalf("\t%s\tShould start with the genesis block only, got %d.", failed, l)
		}
		t.Logf("\t%s\tShould start with the genesis block only.", success)

		out, err := s.Mine(false)
		ifErrFailNow(t, err)

		if out.Kind != state.Mined {
			t.Fatalf("\t%s\tShould mine on the first attempt, got %s.", failed, out.Kind)
		}
		t.Logf("\t%s\tShould mine on the first attempt.", success)

		chain := s.RetrieveChain()
		if len(chain) != 2 {
			t.Fatalf("\t%s\tShould grow the chain to 2 blocks, got %d.", failed, len(chain))
		}
		t.Logf("\t%s\tShould grow the chain to 2 blocks.", success)

		hasher := s.RetrieveHasher()
		h1, _ := chain[1].Hash(hasher)
		h2, _ := out.Block.Hash(hasher)
		if !h1.Equal(h2) {
			t.Fatalf("\t%s\tShould return the appended block.", failed)
		}
		t.Logf("\t%s\tShould return the appended block.", success)

		trans := chain[1].Transactions()
		if len(trans) != 1 || trans[0].Value != 10 {
			t.Fatalf("\t%s\tShould hold one coinbase transaction with the reward.", failed)
		}
		t.Logf("\t%s\tShould hold one coinbase transaction with the reward.", success)
	}
}

func Test_MineNonceSequence(t *testing.T) {
	const solveAt = 37

	// The digest is chosen by the nonce alone. Before solveAt the hash has a
	// single leading zero, which isn't enough for a difficulty of 2.
	hash := func(block database.Block) (hashing.Digest, error) {
		if block.Header.Nonce == solveAt {
			return hashing.Digest{0x00, 0x4e, 0x21}, nil
		}
		return hashing.Digest{0x0f, 0x4e, byte(block.Header.Nonce)}, nil
	}

	s, err := state.New(state.Config{
		Genesis: newGenesis(t, 2),
		Seed:    pow.FixedSeed(0),
		Hash:    hash,
	})
	ifErrFailNow(t, err)

	t.Log("Given a difficulty of 2 and a nonce seeded at 0.")
	{
		for tick := 0; tick < solveAt; tick++ {
			out, err := s.Mine(false)
			ifErrFailNow(t, err)

			if out.Kind != state.Pending {
				t.Fatalf("\t%s\tShould be pending at tick %d, got %s.", failed, tick, out.Kind)
			}
		}
		t.Logf("\t%s\tShould be pending for nonces 0 through %d.", success, solveAt-1)

		out, err := s.Mine(false)
		ifErrFailNow(t, err)

		if out.Kind != state.Mined || out.Block.Header.Nonce != solveAt {
			t.Fatalf("\t%s\tShould mine at nonce %d, got %s at %d.", failed, solveAt, out.Kind, out.Block.Header.Nonce)
		}
		t.Logf("\t%s\tShould mine at nonce %d.", success, solveAt)

		st := s.RetrieveStats()
		if st.Attempts != solveAt+1 || st.BlocksMined != 1 {
			t.Fatalf("\t%s\tShould count %d attempts and 1 block, got %d and %d.", failed, solveAt+1, st.Attempts, st.BlocksMined)
		}
		t.Logf("\t%s\tShould count the attempts.", success)

		// The nonce is reseeded to 0 so the next block solves at the same nonce.
		for tick := 0; tick < solveAt; tick++ {
			s.Mine(false)
		}
		out, _ = s.Mine(false)
		if out.Kind != state.Mined || len(s.RetrieveChain()) != 3 {
			t.Fatalf("\t%s\tShould mine again after reseeding.", failed)
		}
		t.Logf("\t%s\tShould mine again after reseeding.", success)
	}
}

func Test_MinePaused(t *testing.T) {
	var seen []uint64
	hash := func(block database.Block) (hashing.Digest, error) {
		seen = append(seen, block.Header.Nonce)
		return hashing.Digest{0xff}, nil
	}

	s, err := state.New(state.Config{
		Genesis: newGenesis(t, 1),
		Seed:    pow.FixedSeed(100),
		Hash:    hash,
	})
	ifErrFailNow(t, err)

	t.Log("Given mining is paused between attempts.")
	{
		s.Mine(false)
		s.Mine(false)

		for i := 0; i < 5; i++ {
			out, err := s.Mine(true)
			ifErrFailNow(t, err)
			if out.Kind != state.NoOp {
				t.Fatalf("\t%s\tShould do nothing while paused, got %s.", failed, out.Kind)
			}
		}
		t.Logf("\t%s\tShould do nothing while paused.", success)

		s.Mine(false)

		exp := []uint64{100, 101, 102}
		if fmt.Sprint(seen) != fmt.Sprint(exp) {
			t.Fatalf("\t%s\tShould resume with the preserved nonce, got %v.", failed, seen)
		}
		t.Logf("\t%s\tShould resume with the preserved nonce.", success)
	}
}

func Test_Stats(t *testing.T) {
	clk := clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	s, err := state.New(state.Config{
		Genesis: newGenesis(t, 0),
		Now:     clk.Now,
	})
	ifErrFailNow(t, err)

	t.Log("Given two mined blocks with known durations.")
	{
		st := s.RetrieveStats()
		if st.BlocksMined != 0 || st.AverageMineDurationMs() != 0 {
			t.Fatalf("\t%s\tShould start with empty stats.", failed)
		}
		t.Logf("\t%s\tShould start with empty stats.", success)

		clk.Advance(100 * time.Millisecond)
		s.Mine(false)

		st = s.RetrieveStats()
		if st.LastMineDurationMs() != 100 || st.AverageMineDurationMs() != 100 {
			t.Fatalf("\t%s\tShould record 100ms, got %d %d.", failed, st.LastMineDurationMs(), st.AverageMineDurationMs())
		}
		t.Logf("\t%s\tShould record the first duration.", success)

		clk.Advance(300 * time.Millisecond)
		s.Mine(false)

		st = s.RetrieveStats()
		if st.LastMineDurationMs() != 300 {
			t.Fatalf("\t%s\tShould record 300ms as the last duration, got %d.", failed, st.LastMineDurationMs())
		}
		if st.AverageMineDurationMs() != 200 {
			t.Fatalf("\t%s\tShould average to 200ms, got %d.", failed, st.AverageMineDurationMs())
		}
		if st.Uptime != 400*time.Millisecond {
			t.Fatalf("\t%s\tShould report the uptime, got %v.", failed, st.Uptime)
		}
		t.Logf("\t%s\tShould report the arithmetic mean of the durations.", success)
	}
}

func Test_Candidate(t *testing.T) {
	type table struct {
		name  string
		reuse bool
		ids   int
	}

	tt := []table{
		{name: "rebuild", reuse: false, ids: 5},
		{name: "reuse", reuse: true, ids: 1},
	}

	t.Log("Given the need to control how candidates are built.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				ids := make(map[string]bool)
				hash := func(block database.Block) (hashing.Digest, error) {
					for _, tx := range block.Transactions() {
						ids[tx.TxID] = true
					}
					return hashing.Digest{0xff}, nil
				}

				var n int
				s, err := state.New(state.Config{
					Genesis:        newGenesis(t, 1),
					Hash:           hash,
					ReuseCandidate: tst.reuse,
					NewTxID: func() (string, error) {
						n++
						return fmt.Sprintf("tx-%d", n), nil
					},
				})
				ifErrFailNow(t, err)

				for i := 0; i < 5; i++ {
					s.Mine(false)
				}

				if len(ids) != tst.ids {
					t.Fatalf("\t%s\tTest %d:\tShould see %d candidates, got %d.", failed, testID, tst.ids, len(ids))
				}
				t.Logf("\t%s\tTest %d:\tShould see %d candidates.", success, testID, tst.ids)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ChainInvariant(t *testing.T) {
	s, err := state.New(state.Config{
		Genesis: newGenesis(t, 1),
	})
	ifErrFailNow(t, err)

	t.Log("Given a chain mined with real hashes.")
	{
		for mined := 0; mined < 5; {
			out, err := s.Mine(false)
			ifErrFailNow(t, err)
			if out.Kind == state.Mined {
				mined++
			}
		}

		chain := s.RetrieveChain()
		hasher := s.RetrieveHasher()
		for i := 1; i < len(chain); i++ {
			prev, _ := chain[i-1].Hash(hasher)
			if !chain[i].Header.PrevBlockHash.Equal(prev) {
				t.Fatalf("\t%s\tShould link block %d to its parent.", failed, i)
			}

			hash, _ := chain[i].Hash(hasher)
			if hash.HexDigits()[0] != '0' {
				t.Fatalf("\t%s\tShould only hold solved blocks, got %s.", failed, hash)
			}
		}
		t.Logf("\t%s\tShould link every block to its parent.", success)

		if err := s.ValidateChain(); err != nil {
			t.Fatalf("\t%s\tShould validate the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the chain.", success)

		data, err := s.RetrieveChainData()
		ifErrFailNow(t, err)
		if len(data) != 6 || !data[0].Hash.Equal(data[1].Header.PrevBlockHash) {
			t.Fatalf("\t%s\tShould present the chain with hashes.", failed)
		}
		t.Logf("\t%s\tShould present the chain with hashes.", success)

		ifErrFailNow(t, s.Reset())
		if len(s.RetrieveChain()) != 1 || s.RetrieveStats().BlocksMined != 0 {
			t.Fatalf("\t%s\tShould reset to genesis.", failed)
		}
		t.Logf("\t%s\tShould reset to genesis.", success)
	}
}

func Test_IndependentEngines(t *testing.T) {
	s1, err := state.New(state.Config{Genesis: newGenesis(t, 0)})
	ifErrFailNow(t, err)

	s2, err := state.New(state.Config{Genesis: newGenesis(t, 0)})
	ifErrFailNow(t, err)

	s1.Mine(false)
	s1.Mine(false)

	if len(s1.RetrieveChain()) != 3 || len(s2.RetrieveChain()) != 1 {
		t.Fatalf("\t%s\tShould keep engines isolated.", failed)
	}
	t.Logf("\t%s\tShould keep engines isolated.", success)
}
