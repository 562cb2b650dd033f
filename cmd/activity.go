package cmd

import (
	"context"
	"fmt"
	"strconv"

	"hackerbrief/internal/database"
	"hackerbrief/internal/model"

	"github.com/spf13/cobra"
)

// activityCmd groups activity-log subcommands.
var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Record and inspect user activity",
}

var activityAddCmd = &cobra.Command{
	Use:   "add <user_id> <post_id> <rate_up|rate_down|save>",
	Short: "Record a user action against a post",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}
		postID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post id %q: %w", args[1], err)
		}
		action, err := model.ParseActivityAction(args[2])
		if err != nil {
			return err
		}

		ctx := context.Background()
		db, err := database.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		entry := model.ActivityLog{UserID: userID, PostID: postID, Action: action}
		if err := database.NewActivityLogRepository(db).Append(ctx, &entry); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded #%d at %s\n", entry.ID, entry.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var activityListLimit int

var activityListCmd = &cobra.Command{
	Use:   "list <user_id>",
	Short: "List a user's recent actions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}

		ctx := context.Background()
		db, err := database.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := database.NewActivityLogRepository(db).ListByUser(ctx, userID, activityListLimit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%-9s\tpost=%d\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.PostID)
		}
		return nil
	},
}

func init() {
	activityListCmd.Flags().IntVar(&activityListLimit, "limit", 50, "max entries to print")
	activityCmd.AddCommand(activityAddCmd, activityListCmd)
	rootCmd.AddCommand(activityCmd)
}
