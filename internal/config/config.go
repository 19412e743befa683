package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the client
type Config struct {
	API      APIConfig      `yaml:"api"`
	Identity IdentityConfig `yaml:"identity"`
	Feed     FeedConfig     `yaml:"feed"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig holds connection settings for the media service
type APIConfig struct {
	BaseURL      string `yaml:"base_url"`
	Token        string `yaml:"token"`
	WebsocketURL string `yaml:"websocket_url"`
}

// IdentityConfig holds the local user's identity
type IdentityConfig struct {
	UserID string `yaml:"user_id"`
	Name   string `yaml:"name"`
}

// FeedConfig holds feed behavior settings
type FeedConfig struct {
	Group           string `yaml:"group"`
	QuickReactEmoji string `yaml:"quick_react_emoji"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Feed.QuickReactEmoji == "" {
		cfg.Feed.QuickReactEmoji = "❤️"
	}

	return &cfg, nil
}
