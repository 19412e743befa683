package main

import (
	"fmt"
	"net/http"
	"time"

	"group-gallery-client/internal/stubapi"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	stubAddr     string
	stubPageSize int
	stubLegacy   bool
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run the in-memory stub service for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger("debug")

		opts := []stubapi.Option{stubapi.WithPageSize(stubPageSize)}
		if stubLegacy {
			opts = append(opts, stubapi.WithLegacyPages())
		}
		server := stubapi.New(opts...)

		srv := &http.Server{
			Addr:         stubAddr,
			Handler:      server.Router(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		log.Info().Str("addr", stubAddr).Msg("Starting stub service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("stub service failed: %w", err)
		}
		return nil
	},
}

func init() {
	stubCmd.Flags().StringVar(&stubAddr, "addr", "127.0.0.1:8080", "listen address")
	stubCmd.Flags().IntVar(&stubPageSize, "page-size", 20, "items per feed page")
	stubCmd.Flags().BoolVar(&stubLegacy, "legacy-pages", false, "serve the legacy bare-array page shape")
	rootCmd.AddCommand(stubCmd)
}
