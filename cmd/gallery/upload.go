package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"group-gallery-client/internal/api"
	"group-gallery-client/internal/feed"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var uploadGroup string

var uploadCmd = &cobra.Command{
	Use:   "upload file...",
	Short: "Upload photos or videos to the group and refresh the feed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := loadApp()
		if err != nil {
			return err
		}

		groupID := cfg.Feed.Group
		if uploadGroup != "" {
			groupID = uploadGroup
		}
		if groupID == "" {
			return fmt.Errorf("no group configured or given")
		}

		var files []api.Upload
		for _, p := range args {
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", p, err)
			}
			files = append(files, api.Upload{
				Filename: filepath.Base(p),
				Data:     data,
			})
		}

		ctx := context.Background()
		if err := client.UploadMedia(ctx, groupID, cfg.Identity.UserID, files); err != nil {
			fmt.Fprintf(os.Stderr, "upload failed: %v\n", err)
			return err
		}

		log.Info().Int("files", len(files)).Str("group", groupID).Msg("Upload complete")

		// The upload response is opaque; a refresh picks up the new items.
		pager := feed.NewPager(client)
		if err := pager.Load(ctx, groupID); err != nil {
			return err
		}
		printPage(pager.Snapshot())
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadGroup, "group", "", "group to upload to (default: configured group)")
	rootCmd.AddCommand(uploadCmd)
}
