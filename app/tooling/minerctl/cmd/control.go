package cmd

import (
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause mining on the miner service.",
	RunE:  controlRun("/v1/mining/pause"),
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume mining on the miner service.",
	RunE:  controlRun("/v1/mining/resume"),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every mined block and go back to genesis.",
	RunE:  controlRun("/v1/mining/reset"),
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(resetCmd)
}

func controlRun(path string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var resp mining
		if err := call(http.MethodPost, path, &resp); err != nil {
			return err
		}

		pterm.Success.Printfln("%s (paused=%t)", resp.Status, resp.Paused)

		return nil
	}
}
