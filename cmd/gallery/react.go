package main

import (
	"context"
	"fmt"

	"group-gallery-client/internal/models"
	"group-gallery-client/internal/reactions"

	"github.com/spf13/cobra"
)

var (
	reactPost  string
	reactItem  string
	reactEmoji string
)

var reactCmd = &cobra.Command{
	Use:   "react [group]",
	Short: "Toggle a reaction on a post or media item",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := loadApp()
		if err != nil {
			return err
		}

		groupID := cfg.Feed.Group
		if len(args) > 0 {
			groupID = args[0]
		}
		if groupID == "" {
			return fmt.Errorf("no group configured or given")
		}
		if (reactPost == "") == (reactItem == "") {
			return fmt.Errorf("exactly one of --post or --item is required")
		}

		emoji := reactEmoji
		if emoji == "" {
			emoji = cfg.Feed.QuickReactEmoji
		}
		user := models.User{ID: cfg.Identity.UserID, Name: cfg.Identity.Name}

		var sync *reactions.Synchronizer
		if reactPost != "" {
			sync = reactions.NewSynchronizer(func(ctx context.Context, userID, emoji string) error {
				return client.ReactToPost(ctx, groupID, reactPost, userID, emoji)
			})
		} else {
			sync = reactions.NewSynchronizer(func(ctx context.Context, userID, emoji string) error {
				return client.ReactToItem(ctx, groupID, reactItem, userID, emoji)
			})
		}
		sync.OnPop(func(emoji string) {
			fmt.Printf("%s\n", emoji)
		})

		if err := sync.Toggle(context.Background(), user, emoji); err != nil {
			// Reactions fail silently in the UI; the toggle already rolled
			// back and logged, so just report the exit status.
			return fmt.Errorf("reaction not confirmed: %w", err)
		}
		return nil
	},
}

func init() {
	reactCmd.Flags().StringVar(&reactPost, "post", "", "post id to react to")
	reactCmd.Flags().StringVar(&reactItem, "item", "", "media item filename to react to")
	reactCmd.Flags().StringVar(&reactEmoji, "emoji", "", "emoji to toggle (default: quick-react emoji)")
	rootCmd.AddCommand(reactCmd)
}
