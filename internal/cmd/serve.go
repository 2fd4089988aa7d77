package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sidecoach/internal/config"
	"sidecoach/internal/delivery"
	"sidecoach/internal/ingest"
	"sidecoach/internal/ledger"
	"sidecoach/internal/pipeline"
	"sidecoach/internal/rules"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the snapshot listener and decision loop",
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

		catalog, err := rules.Load(cfg.RulesPath)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}

		pipeCfg := pipeline.DefaultConfig()
		pipeCfg.Limiter = cfg.LimiterConfig()
		pipe := pipeline.New(catalog, delivery.LogChannel{}, store, pipeCfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return ingest.NewServer(cfg.ListenAddr, pipe).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
