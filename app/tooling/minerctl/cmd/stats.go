package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the mining statistics.",
	RunE:  statsRun,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func statsRun(cmd *cobra.Command, args []string) error {
	var st stats
	if err := call(http.MethodGet, "/v1/stats", &st); err != nil {
		return err
	}

	return renderStats(st)
}
