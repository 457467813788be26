package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/simpleminer/foundation/blockchain/database"
	"github.com/ardanlabs/simpleminer/foundation/blockchain/genesis"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ErrHashMismatch is returned when the hash reported for a block does not
// match the hash of its contents.
var ErrHashMismatch = errors.New("reported hash does not match the block")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fetch the chain and check every block against its parent.",
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func verifyRun(cmd *cobra.Command, args []string) error {
	var proto protocol
	if err := call(http.MethodGet, "/v1/genesis", &proto); err != nil {
		return err
	}

	gen, err := genesis.New(proto.MiningReward, proto.Difficulty, proto.HashStrategy)
	if err != nil {
		return err
	}

	var ch chain
	if err := call(http.MethodGet, "/v1/chain", &ch); err != nil {
		return err
	}

	if err := verifyChain(gen, ch.Blocks); err != nil {
		return err
	}

	pterm.Success.Printfln("chain of %d blocks is valid", len(ch.Blocks))

	return nil
}

// verifyChain rebuilds every block from its presentation form and checks
// the reported hash, the link to the parent, the difficulty and the merkle
// root.
func verifyChain(gen genesis.Genesis, blocks []database.BlockData) error {
	hasher, err := gen.Hasher()
	if err != nil {
		return err
	}

	var prev database.Block
	for i, bd := range blocks {
		block, err := database.ToBlock(bd, hasher)
		if err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}

		hash, err := block.Hash(hasher)
		if err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}

		if !hash.Equal(bd.Hash) {
			return fmt.Errorf("block[%d]: %w", i, ErrHashMismatch)
		}

		if i > 0 {
			if err := block.ValidateBlock(prev, hasher, gen.Difficulty); err != nil {
				return fmt.Errorf("block[%d]: %w", i, err)
			}
		}

		prev = block
	}

	return nil
}
