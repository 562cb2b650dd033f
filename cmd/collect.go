package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"hackerbrief/internal/contentstore"
	"hackerbrief/internal/database"
	"hackerbrief/internal/redisclient"

	"github.com/spf13/cobra"
)

// collectCmd runs one collection pass and exits. Useful for cron-less
// environments and for backfilling after downtime.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run a single collection pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		setupLogging(cfg.App.LogLevel)

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := contentstore.NewRedisStore(rdb)

		ctx := context.Background()
		db, err := database.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
		postRepo := database.NewPostRepository(db)

		collector, err := buildCollector(cfg, store, postRepo)
		if err != nil {
			return err
		}

		res, err := collector.TryRun(ctx)
		if err != nil {
			return err
		}
		for _, ie := range res.Errors {
			slog.Warn("collect: item error", "source_id", ie.SourceID, "stage", ie.Stage, "error", ie.Err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fetched=%d persisted=%d extracted=%d errors=%d\n",
			res.Fetched, res.Persisted, res.Extracted, len(res.Errors))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
