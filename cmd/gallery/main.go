package main

import (
	"os"

	"group-gallery-client/internal/api"
	"group-gallery-client/internal/auth"
	"group-gallery-client/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Client for the group media-sharing service",
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadApp reads the config, sets up logging, and builds the API client
func loadApp() (*config.Config, *api.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	setupLogger(cfg.Log.Level)
	auth.WarnIfExpired(cfg.API.Token)

	return cfg, api.New(cfg.API.BaseURL, cfg.API.Token), nil
}

// setupLogger configures zerolog
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
