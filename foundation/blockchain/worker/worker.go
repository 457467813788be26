// Package worker implements the scheduling of mining for the engine. A single
// goroutine performs one mining attempt per tick, so pausing and resuming
// take effect on the next tick.
package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/state"
)

// DefaultInterval is the time between two mining attempts.
const DefaultInterval = 5 * time.Millisecond

// Config represents the settings for the mining worker.
type Config struct {
	Interval    time.Duration
	StartPaused bool
	PauseOnMine bool

	// MaxBlocks pauses mining once this many blocks are mined. Zero means
	// no limit.
	MaxBlocks int

	// OnMined is called from the mining goroutine for every mined block.
	OnMined func(block database.Block)
}

// Worker manages the mining workflow for the engine.
type Worker struct {
	state       *state.State
	wg          sync.WaitGroup
	ticker      *time.Ticker
	shut        chan struct{}
	shutOnce    sync.Once
	paused      atomic.Bool
	pauseOnMine bool
	maxBlocks   int
	mined       int
	onMined     func(block database.Block)
	evHandler   state.EventHandler
}

// Run creates a worker and starts the mining goroutine.
func Run(st *state.State, cfg Config, evHandler state.EventHandler) *Worker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	w := Worker{
		state:       st,
		ticker:      time.NewTicker(interval),
		shut:        make(chan struct{}),
		pauseOnMine: cfg.PauseOnMine,
		maxBlocks:   cfg.MaxBlocks,
		onMined:     cfg.OnMined,
		evHandler:   ev,
	}
	w.paused.Store(cfg.StartPaused)

	w.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.miningOperations()
	}()

	<-hasStarted

	return &w
}

// Shutdown terminates the goroutine performing work. Calling it more than
// once is safe.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: stop ticker")
		w.ticker.Stop()

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.wg.Wait()
	})
}

// SignalPause stops ticks from doing any work. The nonce search keeps its
// position.
func (w *Worker) SignalPause() {
	if !w.paused.Swap(true) {
		w.evHandler("worker: SignalPause: mining paused")
	}
}

// SignalResume lets ticks mine again.
func (w *Worker) SignalResume() {
	if w.paused.Swap(false) {
		w.evHandler("worker: SignalResume: mining resumed")
	}
}

// IsPaused reports whether mining is paused.
func (w *Worker) IsPaused() bool {
	return w.paused.Load()
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
