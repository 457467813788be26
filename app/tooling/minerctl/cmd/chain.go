package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain held by the miner.",
	RunE:  chainRun,
}

var latest bool

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().BoolVarP(&latest, "latest", "l", false, "Only print the latest block.")
}

func chainRun(cmd *cobra.Command, args []string) error {
	var ch chain
	if err := call(http.MethodGet, "/v1/chain", &ch); err != nil {
		return err
	}

	if latest && len(ch.Blocks) > 0 {
		return renderBlock(len(ch.Blocks)-1, ch.Blocks[len(ch.Blocks)-1])
	}

	return renderChain(ch.Blocks)
}
