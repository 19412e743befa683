package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"group-gallery-client/internal/api"
	"group-gallery-client/internal/comments"
	"group-gallery-client/internal/models"

	"github.com/spf13/cobra"
)

var (
	commentPost  string
	commentItem  string
	commentMedia string
)

var commentCmd = &cobra.Command{
	Use:   "comment [group] [text]",
	Short: "Add a comment to a post or media item, optionally with a photo or video",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := loadApp()
		if err != nil {
			return err
		}

		groupID := cfg.Feed.Group
		text := args[0]
		if len(args) > 1 {
			groupID = args[0]
			text = args[1]
		}
		if groupID == "" {
			return fmt.Errorf("no group configured or given")
		}
		if (commentPost == "") == (commentItem == "") {
			return fmt.Errorf("exactly one of --post or --item is required")
		}

		ctx := context.Background()
		user := models.User{ID: cfg.Identity.UserID, Name: cfg.Identity.Name}

		// Item comments use the legacy endpoint directly; posts go through
		// the composer so media upload and confirmation behave like the UI.
		if commentItem != "" {
			if commentMedia != "" {
				return fmt.Errorf("media attachments require a post comment")
			}
			return client.CommentOnItem(ctx, groupID, commentItem, api.CommentRequest{
				UserID:  user.ID,
				Comment: text,
			})
		}

		composer := comments.NewComposer(client, groupID, commentPost, user)

		var attachment *comments.Attachment
		if commentMedia != "" {
			attachment, err = readAttachment(commentMedia)
			if err != nil {
				return err
			}
		}

		if err := composer.Submit(ctx, text, attachment); err != nil {
			// Comment failures are surfaced to the user, unlike reactions.
			fmt.Fprintf(os.Stderr, "comment failed: %v\n", err)
			return err
		}
		return nil
	},
}

func readAttachment(path string) (*comments.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	mediaType := models.MediaTypeImage
	switch filepath.Ext(path) {
	case ".mp4", ".mov", ".webm":
		mediaType = models.MediaTypeVideo
	}

	return &comments.Attachment{
		Filename:  filepath.Base(path),
		MediaType: mediaType,
		Data:      data,
		LocalURL:  "file://" + path,
	}, nil
}

func init() {
	commentCmd.Flags().StringVar(&commentPost, "post", "", "post id to comment on")
	commentCmd.Flags().StringVar(&commentItem, "item", "", "media item id to comment on (legacy)")
	commentCmd.Flags().StringVar(&commentMedia, "media", "", "path to a photo or video to attach")
	rootCmd.AddCommand(commentCmd)
}
