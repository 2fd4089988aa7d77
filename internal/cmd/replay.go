package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sidecoach/internal/config"
	"sidecoach/internal/ledger"
	"sidecoach/internal/pipeline"
	"sidecoach/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded snapshot stream through the pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fix, err := replay.LoadFixture(args[0])
		if err != nil {
			return err
		}

		result, err := replay.Replay(fix, pipeline.DefaultConfig())
		if err != nil {
			return err
		}

		fmt.Printf("Replayed %d snapshots: %s\n", len(result.Ticks), fix.Description)
		for _, tick := range result.Ticks {
			r := tick.Report
			fmt.Printf("  tick %3d: candidates=%d delivered=%d suppressed=%d queued=%d dropped=%d graded=%d\n",
				tick.Index, r.Candidates, len(r.Delivered), r.Suppressed, r.Queued, r.Dropped, r.Graded)
		}

		fmt.Println("\nMessages:")
		for _, msg := range result.Messages {
			fmt.Printf("  %s\n", msg)
		}

		fmt.Println("\nSession report:")
		for _, rec := range result.Summary.Recommendations {
			fmt.Printf("  %s\n", rec)
		}

		if mismatches := replay.Verify(fix, result); len(mismatches) > 0 {
			for _, m := range mismatches {
				fmt.Printf("MISMATCH %s\n", m)
			}
			return fmt.Errorf("%d expectation mismatches", len(mismatches))
		}
		return nil
	},
}

var replayExportCmd = &cobra.Command{
	Use:   "export <session-id> <fixture.json>",
	Short: "Write a fixture skeleton for a recorded session",
	Long: `Writes a fixture file pre-filled with the session's ID and report.
The snapshot stream is not persisted by the audit log, so the snapshots
array is left empty for the recording to be pasted in by hand.`,
	Args: cobra.ExactArgs(2),
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

		sessionID := args[0]
		summary, err := store.SessionSummary(sessionID)
		if err != nil {
			return err
		}

		fix := &replay.Fixture{
			Description: fmt.Sprintf("exported from session %s (%d ledger events)",
				sessionID, summary.TotalEvents),
			SessionID: sessionID,
		}
		if err := replay.WriteFixture(args[1], fix); err != nil {
			return err
		}
		fmt.Printf("Wrote fixture skeleton to %s\n", args[1])
		return nil
	},
}

func init() {
	replayCmd.AddCommand(replayExportCmd)
	rootCmd.AddCommand(replayCmd)
}
