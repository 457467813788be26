// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/simpleminer/business/web/errs"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/state"
	"github.com/ardanlabs/simpleminer/foundation/events"
	"github.com/ardanlabs/simpleminer/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Controller represents the behavior required to pause and resume mining.
type Controller interface {
	SignalPause()
	SignalResume()
	IsPaused() bool
}

// Handlers manages the set of miner endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	State  *state.State
	Worker Controller
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Genesis returns the protocol configuration of the chain.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()

	resp := protocol{
		Date:         gen.Date,
		MiningReward: gen.MiningReward,
		Difficulty:   gen.Difficulty,
		HashStrategy: gen.HashStrategy,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns every block of the chain starting with genesis.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.State.RetrieveChainData()
	if err != nil {
		return err
	}

	resp := chain{
		Length: len(blocks),
		Blocks: blocks,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Block returns a single block by its position in the chain. The value
// "latest" returns the tip.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.block(web.Param(r, "num"))
	if err != nil {
		return err
	}

	bd, err := database.NewBlockData(block, h.State.RetrieveHasher())
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, bd, http.StatusOK)
}

// Proof returns the merkle inclusion proof of a transaction in a block.
func (h Handlers) Proof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.block(web.Param(r, "num"))
	if err != nil {
		return err
	}

	txp, err := block.Proof(web.Param(r, "txid"))
	if err != nil {
		if errors.Is(err, database.ErrTxNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, txp, http.StatusOK)
}

// block looks up a block by position or by the value "latest".
func (h Handlers) block(num string) (database.Block, error) {
	if num == "latest" {
		return h.State.RetrieveLatestBlock(), nil
	}

	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return database.Block{}, errs.NewTrusted(err, http.StatusBadRequest)
	}

	block, err := h.State.RetrieveBlock(n)
	if err != nil {
		if errors.Is(err, database.ErrBlockNotFound) {
			return database.Block{}, errs.NewTrusted(err, http.StatusNotFound)
		}
		return database.Block{}, err
	}

	return block, nil
}

// Stats returns the mining statistics.
func (h Handlers) Stats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := toStats(h.State.RetrieveStats(), h.Worker.IsPaused())
	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pause stops mining. The nonce search resumes where it left off.
func (h Handlers) Pause(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.Worker.SignalPause()

	resp := mining{
		Status: "mining paused",
		Paused: h.Worker.IsPaused(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Resume starts mining again.
func (h Handlers) Resume(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.Worker.SignalResume()

	resp := mining{
		Status: "mining resumed",
		Paused: h.Worker.IsPaused(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Reset drops every mined block and the statistics.
func (h Handlers) Reset(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.Reset(); err != nil {
		return err
	}

	resp := mining{
		Status: "chain reset to genesis",
		Paused: h.Worker.IsPaused(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
