package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sidecoach",
	Short: "Arbitrated coaching advice for live multiplayer sessions",
	Long: `sidecoach turns noisy session snapshots into a small number of
prioritized, confidence-qualified recommendations, throttled to respect
the operator's attention.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
