// Package viewer serves the browser page that follows the miner.
package viewer

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/ardanlabs/simpleminer/foundation/web"
)

//go:embed assets/index.html
var index []byte

// Index returns the page. It reads the chain and stats from the v1 api and
// listens to /v1/events for mining progress.
func Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	web.SetStatusCode(ctx, http.StatusOK)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(index)
	return err
}
