package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"group-gallery-client/internal/feed"
	"group-gallery-client/internal/live"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [group]",
	Short: "Follow the group feed, refreshing when new media is uploaded",
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
		if cfg.API.WebsocketURL == "" {
			return fmt.Errorf("no websocket_url configured")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-quit
			cancel()
		}()

		pager := feed.NewPager(client)
		if err := pager.Load(ctx, groupID); err != nil {
			return err
		}
		printPage(pager.Snapshot())

		listener := live.NewListener(cfg.API.WebsocketURL, groupID, func(ev live.Event) {
			if ev.Type != "media_uploaded" {
				return
			}
			if err := pager.Refresh(ctx, groupID); err != nil {
				log.Error().Err(err).Msg("Refresh after upload event failed")
				return
			}
			printPage(pager.Snapshot())
		})

		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
