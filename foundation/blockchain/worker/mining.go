package worker

import (
	"github.com/ardanlabs/simpleminer/foundation/blockchain/state"
)

// miningOperations handles mining, one attempt per tick.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation performs a single mining attempt against the engine.
func (w *Worker) runMiningOperation() {
	out, err := w.state.Mine(w.paused.Load())
	if err != nil {

		// These errors come from values that can't be hashed or stored and
		// won't go away by trying again.
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		w.SignalPause()
		return
	}

	if out.Kind != state.Mined {
		return
	}

	w.mined++
	w.evHandler("worker: runMiningOperation: MINING: block mined: count[%d]: nonce[%d]", w.mined, out.Block.Header.Nonce)

	if w.onMined != nil {
		w.onMined(out.Block)
	}

	if w.pauseOnMine || (w.maxBlocks > 0 && w.mined >= w.maxBlocks) {
		w.SignalPause()
	}
}
