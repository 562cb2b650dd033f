package cmd

import (
	"context"
	"fmt"
	"strconv"

	"hackerbrief/internal/database"
	"hackerbrief/internal/model"
	"hackerbrief/internal/window"

	"github.com/spf13/cobra"
)

var windowPromptType string

// windowCmd computes the eligible post window for one user and prints it.
// Read-only: no summaries are created, so the watermark does not move.
var windowCmd = &cobra.Command{
	Use:   "window <user_id>",
	Short: "Show the posts currently eligible for a user's digest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		setupLogging(cfg.App.LogLevel)

		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}
		pt, err := model.ParsePromptType(windowPromptType)
		if err != nil {
			return err
		}
		winCfg, err := windowConfig(cfg.Window)
		if err != nil {
			return err
		}

		ctx := context.Background()
		db, err := database.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		postRepo := database.NewPostRepository(db)
		summaryRepo := database.NewSummaryRepository(db)
		userRepo := database.NewUserRepository(db)

		eng := window.NewEngine(postRepo, summaryRepo, userRepo, winCfg)
		posts, err := eng.PostsForUser(ctx, userID, pt)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no eligible posts")
			return nil
		}
		for _, p := range posts {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\n", p.ID, p.Score, p.Title)
		}
		return nil
	},
}

func init() {
	windowCmd.Flags().StringVar(&windowPromptType, "prompt-type", string(model.PromptConcise), "prompt type (concise|detailed|zen)")
	rootCmd.AddCommand(windowCmd)
}
