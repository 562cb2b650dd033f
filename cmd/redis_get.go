package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"hackerbrief/internal/contentstore"
	"hackerbrief/internal/model"
	"hackerbrief/internal/redisclient"

	"github.com/spf13/cobra"
)

// getCmd prints one stored content record, for poking at the store.
var getCmd = &cobra.Command{
	Use:   "get <source_id> <html|text|markdown>",
	Short: "Print a stored content record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		sourceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source id %q: %w", args[0], err)
		}
		kind, err := model.ParseContentKind(args[1])
		if err != nil {
			return err
		}

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := contentstore.NewRedisStore(rdb)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := store.Get(ctx, sourceID, kind)
		if err != nil {
			return err
		}
		_, _ = cmd.OutOrStdout().Write(payload)
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	redisCmd.AddCommand(getCmd)
}
