package main

import (
	"context"
	"fmt"

	"group-gallery-client/internal/feed"

	"github.com/spf13/cobra"
)

var feedPages int

var feedCmd = &cobra.Command{
	Use:   "feed [group]",
	Short: "Load the group feed and walk through its pages",
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

		ctx := context.Background()
		if err := client.CheckReachable(ctx); err != nil {
			return err
		}

		pager := feed.NewPager(client)
		if err := pager.Load(ctx, groupID); err != nil {
			return err
		}
		printPage(pager.Snapshot())

		// Each extra page is requested the way the UI does it: arm a
		// sentinel on the last rendered item and report it visible.
		for i := 1; i < feedPages; i++ {
			snap := pager.Snapshot()
			if !snap.HasMore {
				break
			}
			var loadErr error
			sentinel := pager.ArmSentinel(func() {
				_, loadErr = pager.LoadMore(ctx, groupID)
			})
			sentinel.Visible()
			if loadErr != nil {
				return loadErr
			}
			printPage(pager.Snapshot())
		}

		return nil
	},
}

func printPage(snap feed.Snapshot) {
	fmt.Printf("page %d (%d items, more=%v)\n", snap.Page, len(snap.Items), snap.HasMore)
	for _, item := range snap.Items {
		fmt.Printf("  %s  %s  by %s  (%d reactions, %d comments)\n",
			item.Metadata.UploadDate.Format("2006-01-02 15:04"),
			item.Filename,
			item.Uploader.Name,
			len(item.Reactions),
			len(item.Comments),
		)
	}
}

func init() {
	feedCmd.Flags().IntVar(&feedPages, "pages", 1, "number of pages to load")
	rootCmd.AddCommand(feedCmd)
}
