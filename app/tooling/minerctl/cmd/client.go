package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/simpleminer/business/web/errs"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
)

var client = http.Client{
	Timeout: 10 * time.Second,
}

type chain struct {
	Length int                  `json:"length"`
	Blocks []database.BlockData `json:"blocks"`
}

type stats struct {
	LastMineDurationMs    int64  `json:"last_mine_duration_ms"`
	AverageMineDurationMs int64  `json:"average_mine_duration_ms"`
	BlocksMined           int    `json:"blocks_mined"`
	Attempts              uint64 `json:"attempts"`
	UptimeMs              int64  `json:"uptime_ms"`
	Paused                bool   `json:"paused"`
}

type mining struct {
	Status string `json:"status"`
	Paused bool   `json:"paused"`
}

type protocol struct {
	MiningReward uint64 `json:"mining_reward"`
	Difficulty   uint   `json:"difficulty"`
	HashStrategy string `json:"hash_strategy"`
}

// call performs the request against the miner service and decodes the
// response into resp.
func call(method string, path string, resp any) error {
	req, err := http.NewRequest(method, url+path, nil)
	if err != nil {
		return err
	}

	r, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		var er errs.Response
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil || er.Error == "" {
			return fmt.Errorf("%s %s: status %d", method, path, r.StatusCode)
		}
		return errors.New(er.Error)
	}

	if err := json.NewDecoder(r.Body).Decode(resp); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}
