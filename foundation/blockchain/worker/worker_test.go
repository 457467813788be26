package worker_test

import (
	"testing"
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/genesis"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/hashing"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/state"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newState(t *testing.T) *state.State {
	gen, err := genesis.New(10, 0, hashing.MD5)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build the genesis: %v", failed, err)
	}

	st, err := state.New(state.Config{Genesis: gen})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build the engine: %v", failed, err)
	}

	return st
}

func waitMined(t *testing.T, ch <-chan database.Block) {
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("\t%s\tShould mine a block within 5 seconds.", failed)
	}
}

// =============================================================================

func Test_Run(t *testing.T) {
	st := newState(t)
	mined := make(chan database.Block, 100)

	w := worker.Run(st, worker.Config{
		Interval: time.Millisecond,
		OnMined:  func(block database.Block) { mined <- block },
	}, nil)

	t.Log("Given a running worker with a difficulty of zero.")
	{
		for i := 0; i < 3; i++ {
			waitMined(t, mined)
		}
		t.Logf("\t%s\tShould mine blocks on every tick.", success)

		w.Shutdown()

		if l := len(st.RetrieveChain()); l < 4 {
			t.Fatalf("\t%s\tShould have at least 4 blocks, got %d.", failed, l)
		}
		t.Logf("\t%s\tShould append the mined blocks to the chain.", success)

		if err := st.ValidateChain(); err != nil {
			t.Fatalf("\t%s\tShould build a valid chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould build a valid chain.", success)
	}
}

func Test_PauseResume(t *testing.T) {
	st := newState(t)
	mined := make(chan database.Block, 100)

	w := worker.Run(st, worker.Config{
		Interval:    time.Millisecond,
		StartPaused: true,
		PauseOnMine: true,
		OnMined:     func(block database.Block) { mined <- block },
	}, nil)
	defer w.Shutdown()

	t.Log("Given a worker that starts paused and pauses after each block.")
	{
		time.Sleep(20 * time.Millisecond)
		if l := len(st.RetrieveChain()); l != 1 || !w.IsPaused() {
			t.Fatalf("\t%s\tShould not mine while paused, got %d blocks.", failed, l)
		}
		t.Logf("\t%s\tShould not mine while paused.", success)

		w.SignalResume()
		waitMined(t, mined)

		// The pause happens right after the callback, give it a moment.
		deadline := time.Now().Add(time.Second)
		for !w.IsPaused() && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if !w.IsPaused() {
			t.Fatalf("\t%s\tShould pause after mining a block.", failed)
		}
		t.Logf("\t%s\tShould pause after mining a block.", success)

		time.Sleep(20 * time.Millisecond)
		if l := len(st.RetrieveChain()); l != 2 {
			t.Fatalf("\t%s\tShould hold the chain at 2 blocks while paused, got %d.", failed, l)
		}
		t.Logf("\t%s\tShould hold the chain while paused.", success)

		w.SignalResume()
		waitMined(t, mined)
		t.Logf("\t%s\tShould mine again after resuming.", success)
	}
}

func Test_MaxBlocks(t *testing.T) {
	st := newState(t)
	mined := make(chan database.Block, 100)

	w := worker.Run(st, worker.Config{
		Interval:  time.Millisecond,
		MaxBlocks: 3,
		OnMined:   func(block database.Block) { mined <- block },
	}, nil)
	defer w.Shutdown()

	t.Log("Given a worker limited to 3 blocks.")
	{
		for i := 0; i < 3; i++ {
			waitMined(t, mined)
		}

		time.Sleep(20 * time.Millisecond)

		if l := len(st.RetrieveChain()); l != 4 {
			t.Fatalf("\t%s\tShould stop at 3 mined blocks, got a chain of %d.", failed, l)
		}
		if !w.IsPaused() {
			t.Fatalf("\t%s\tShould pause once the limit is reached.", failed)
		}
		t.Logf("\t%s\tShould pause once the limit is reached.", success)
	}
}
