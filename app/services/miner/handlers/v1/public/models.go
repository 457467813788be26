package public

import (
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/state"
)

type stats struct {
	LastMineDurationMs    int64  `json:"last_mine_duration_ms"`
	AverageMineDurationMs int64  `json:"average_mine_duration_ms"`
	BlocksMined           int    `json:"blocks_mined"`
	Attempts              uint64 `json:"attempts"`
	UptimeMs              int64  `json:"uptime_ms"`
	Paused                bool   `json:"paused"`
}

func toStats(st state.Stats, paused bool) stats {
	return stats{
		LastMineDurationMs:    st.LastMineDurationMs(),
		AverageMineDurationMs: st.AverageMineDurationMs(),
		BlocksMined:           st.BlocksMined,
		Attempts:              st.Attempts,
		UptimeMs:              st.Uptime.Milliseconds(),
		Paused:                paused,
	}
}

type chain struct {
	Length int                  `json:"length"`
	Blocks []database.BlockData `json:"blocks"`
}

type mining struct {
	Status string `json:"status"`
	Paused bool   `json:"paused"`
}

type protocol struct {
	Date         time.Time `json:"date"`
	MiningReward uint64    `json:"mining_reward"`
	Difficulty   uint      `json:"difficulty"`
	HashStrategy string    `json:"hash_strategy"`
}
