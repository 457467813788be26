package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/genesis"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/state"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/worker"
	"github.com/ardanlabs/simpleminer/foundation/logger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Run a local engine until the requested number of blocks is mined.",
	RunE:  mineRun,
}

var (
	mineBlocks     int
	mineReward     uint64
	mineDifficulty uint
	mineHash       string
	mineInterval   time.Duration
	mineReuse      bool
	mineVerbose    bool
)

func init() {
	def := genesis.Default()

	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().IntVarP(&mineBlocks, "blocks", "b", 3, "Number of blocks to mine.")
	mineCmd.Flags().Uint64VarP(&mineReward, "reward", "r", def.MiningReward, "Mining reward per block.")
	mineCmd.Flags().UintVarP(&mineDifficulty, "difficulty", "d", def.Difficulty, "Leading hex zeros required.")
	mineCmd.Flags().StringVar(&mineHash, "hash", def.HashStrategy, "Hash strategy: md5, sha256 or keccak256.")
	mineCmd.Flags().DurationVarP(&mineInterval, "interval", "i", worker.DefaultInterval, "Time between mining attempts.")
	mineCmd.Flags().BoolVar(&mineReuse, "reuse", false, "Keep the candidate block until it is mined.")
	mineCmd.Flags().BoolVarP(&mineVerbose, "verbose", "v", false, "Log engine events.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	if mineBlocks <= 0 {
		return fmt.Errorf("blocks must be positive, got %d", mineBlocks)
	}

	gen, err := genesis.New(mineReward, mineDifficulty, mineHash)
	if err != nil {
		return err
	}

	var ev state.EventHandler
	if mineVerbose {
		log, err := logger.New("MINERCTL", "stderr")
		if err != nil {
			return err
		}
		defer log.Sync()

		ev = func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...))
		}
	}

	st, err := state.New(state.Config{
		Genesis:        gen,
		ReuseCandidate: mineReuse,
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mined := make(chan database.Block, mineBlocks)
	wrk := worker.Run(st, worker.Config{
		Interval:  mineInterval,
		MaxBlocks: mineBlocks,
		OnMined:   func(block database.Block) {
			select {
			case mined <- block:
			default:
			}
		},
	}, ev)
	defer wrk.Shutdown()

	spinner, err := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining %d blocks at difficulty %d", mineBlocks, mineDifficulty))
	if err != nil {
		return err
	}

	if err := waitBlocks(ctx, mined, mineBlocks, func(n int) {
		stats := st.RetrieveStats()
		spinner.UpdateText(fmt.Sprintf("Mined %d/%d blocks, last %s, average %s", n, mineBlocks, formatMs(stats.LastMineDurationMs()), formatMs(stats.AverageMineDurationMs())))
	}); err != nil {
		spinner.Fail(err.Error())
		return err
	}

	wrk.Shutdown()
	spinner.Success(fmt.Sprintf("Mined %d blocks", mineBlocks))

	blocks, err := st.RetrieveChainData()
	if err != nil {
		return err
	}

	if err := renderChain(blocks); err != nil {
		return err
	}

	stats := st.RetrieveStats()
	return renderStats(statsFrom(stats, wrk.IsPaused()))
}

// waitBlocks blocks until n blocks are received or the context is done.
func waitBlocks(ctx context.Context, mined <-chan database.Block, n int, progress func(n int)) error {
	for i := 1; i <= n; i++ {
		select {
		case <-mined:
			progress(i)

		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func statsFrom(st state.Stats, paused bool) stats {
	return stats{
		LastMineDurationMs:    st.LastMineDurationMs(),
		AverageMineDurationMs: st.AverageMineDurationMs(),
		BlocksMined:           st.BlocksMined,
		Attempts:              st.Attempts,
		UptimeMs:              st.Uptime.Milliseconds(),
		Paused:                paused,
	}
}
