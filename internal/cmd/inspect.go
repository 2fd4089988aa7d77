package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sidecoach/internal/config"
	"sidecoach/internal/ledger"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print recent arbitration decisions and deliveries from the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := ledger.NewStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		decisions, err := store.RecentDecisions(inspectLimit)
		if err != nil {
			return err
		}
		fmt.Printf("Decisions (%d):\n", len(decisions))
		for _, d := range decisions {
			fmt.Printf("  %s  %-8s %-8s %-8s conf=%.2f  %s\n",
				d.CreatedAt.Format("15:04:05"), d.Action, d.Priority, d.Category, d.Confidence, d.Reason)
		}

		deliveries, err := store.RecentDeliveries(inspectLimit)
		if err != nil {
			return err
		}
		fmt.Printf("\nDeliveries (%d):\n", len(deliveries))
		for _, d := range deliveries {
			status := "sent"
			if !d.Delivered {
				status = "failed"
			}
			fmt.Printf("  %s  %-6s [%s] %s\n",
				d.CreatedAt.Format("15:04:05"), status, d.Priority, d.Text)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 20, "rows to show per table")
	rootCmd.AddCommand(inspectCmd)
}
