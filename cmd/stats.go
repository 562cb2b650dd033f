package cmd

import (
	"context"
	"fmt"
	"time"

	"hackerbrief/internal/contentstore"
	"hackerbrief/internal/model"
	"hackerbrief/internal/redisclient"

	"github.com/spf13/cobra"
)

// statsCmd prints content store record counts per kind.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print content store record counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := contentstore.NewRedisStore(rdb)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		st, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		for _, k := range model.Kinds() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", k, st.PerKind[k])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", "total", st.TotalKeys)
		return nil
	},
}

func init() {
	redisCmd.AddCommand(statsCmd)
}
