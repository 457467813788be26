package pow_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// forced returns a hash function that ignores the block content and returns
// the digest mapped to the block's nonce.
func forced(digests map[uint64]hashing.Digest, fallback hashing.Digest) pow.HashFunc {
	return func(block database.Block) (hashing.Digest, error) {
		if d, exists := digests[block.Header.Nonce]; exists {
			return d, nil
		}
		return fallback, nil
	}
}

// =============================================================================

func Test_IsHashSolved(t *testing.T) {
	type table struct {
		name       string
		difficulty uint
		hash       hashing.Digest
		solved     bool
	}

	tt := []table{
		{name: "zero-difficulty", difficulty: 0, hash: hashing.Digest{0xff, 0xff}, solved: true},
		{name: "one-zero", difficulty: 1, hash: hashing.Digest{0x0f, 0xff}, solved: true},
		{name: "one-miss", difficulty: 1, hash: hashing.Digest{0xf0, 0x00}, solved: false},
		{name: "two-zeros", difficulty: 2, hash: hashing.Digest{0x00, 0x85}, solved: true},
		{name: "two-miss", difficulty: 2, hash: hashing.Digest{0x05, 0x85}, solved: false},
		{name: "three-zeros", difficulty: 3, hash: hashing.Digest{0x00, 0x08}, solved: true},
		{name: "odd-nibble-miss", difficulty: 3, hash: hashing.Digest{0x00, 0x10}, solved: false},
		{name: "all-zero", difficulty: 4, hash: hashing.Digest{0x00, 0x00}, solved: true},
		{name: "beyond-width", difficulty: 5, hash: hashing.Digest{0x00, 0x00}, solved: false},
	}

	t.Log("Given the need to check hashes against a difficulty.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				got := pow.IsHashSolved(tst.difficulty, tst.hash)
				if got != tst.solved {
					t.Fatalf("\t%s\tTest %d:\tShould get %t for %s at difficulty %d.", failed, testID, tst.solved, tst.hash, tst.difficulty)
				}
				t.Logf("\t%s\tTest %d:\tShould get %t for %s at difficulty %d.", success, testID, tst.solved, tst.hash, tst.difficulty)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_AttemptRejectAndAccept(t *testing.T) {
	digests := map[uint64]hashing.Digest{
		7: {0x00, 0xab, 0xcd},
	}

	m, err := pow.New(pow.Config{
		Difficulty: 2,
		Hash:       forced(digests, hashing.Digest{0x1a, 0xbc, 0xde}),
		Seed:       pow.FixedSeed(5),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a miner: %v", failed, err)
	}

	var block database.Block

	t.Log("Given a nonce whose hash doesn't meet the difficulty.")
	{
		res, err := m.Attempt(&block)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to attempt: %v", failed, err)
		}
		if res.Solved || res.Nonce != 5 || block.Header.Nonce != 5 {
			t.Fatalf("\t%s\tShould fail at nonce 5, got %+v.", failed, res)
		}
		t.Logf("\t%s\tShould fail and write the nonce into the block.", success)

		if m.Nonce() != 6 {
			t.Fatalf("\t%s\tShould move to the next nonce, got %d.", failed, m.Nonce())
		}
		t.Logf("\t%s\tShould move to the next nonce.", success)
	}

	t.Log("Given a nonce whose hash meets the difficulty.")
	{
		m.Attempt(&block)

		res, err := m.Attempt(&block)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to attempt: %v", failed, err)
		}
		if !res.Solved || res.Nonce != 7 || block.Header.Nonce != 7 {
			t.Fatalf("\t%s\tShould solve at nonce 7, got %+v.", failed, res)
		}
		t.Logf("\t%s\tShould solve at nonce 7.", success)

		if m.Nonce() != 5 {
			t.Fatalf("\t%s\tShould reseed the nonce after solving, got %d.", failed, m.Nonce())
		}
		t.Logf("\t%s\tShould reseed the nonce after solving.", success)
	}
}

func Test_AttemptRealHash(t *testing.T) {
	hasher, _ := hashing.New(hashing.MD5)

	m, err := pow.New(pow.Config{
		Difficulty: 1,
		Hash:       func(b database.Block) (hashing.Digest, error) { return b.Hash(hasher) },
		Seed:       pow.FixedSeed(0),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a miner: %v", failed, err)
	}

	block := database.GenesisBlock(hasher)

	// A single leading hex zero shows up about once every 16 nonces.
	for i := 0; i < 10_000; i++ {
		res, err := m.Attempt(&block)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to attempt: %v", failed, err)
		}
		if !res.Solved {
			continue
		}

		hash, _ := block.Hash(hasher)
		if !hash.Equal(res.Hash) || hash.HexDigits()[0] != '0' {
			t.Fatalf("\t%s\tShould report the hash of the solved block.", failed)
		}
		t.Logf("\t%s\tShould solve the block at nonce %d: %s", success, res.Nonce, res.Hash)
		return
	}

	t.Fatalf("\t%s\tShould solve the block within 10000 attempts.", failed)
}

func Test_RandomSeed(t *testing.T) {
	for i := 0; i < 100; i++ {
		n, err := pow.RandomSeed()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to seed: %v", failed, err)
		}
		if n >= pow.MaxNonceSeed {
			t.Fatalf("\t%s\tShould seed below %d, got %d.", failed, pow.MaxNonceSeed, n)
		}
	}
	t.Logf("\t%s\tShould seed within range.", success)

	_, err := pow.New(pow.Config{
		Seed: func() (uint64, error) { return 0, errors.New("no entropy") },
	})
	if err == nil {
		t.Fatalf("\t%s\tShould return the seed error.", failed)
	}
	t.Logf("\t%s\tShould return the seed error.", success)
}
