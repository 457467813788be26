// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/simpleminer/app/services/miner/handlers/v1/public"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/state"
	"github.com/ardanlabs/simpleminer/foundation/events"
	"github.com/ardanlabs/simpleminer/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	State  *state.State
	Worker public.Controller
	Evts   *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:    cfg.Log,
		State:  cfg.State,
		Worker: cfg.Worker,
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/chain/:num", pbl.Block)
	app.Handle(http.MethodGet, version, "/chain/:num/proof/:txid", pbl.Proof)
	app.Handle(http.MethodGet, version, "/stats", pbl.Stats)
	app.Handle(http.MethodPost, version, "/mining/pause", pbl.Pause)
	app.Handle(http.MethodPost, version, "/mining/resume", pbl.Resume)
	app.Handle(http.MethodPost, version, "/mining/reset", pbl.Reset)
}
