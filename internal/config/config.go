package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	ServerPort    int    `envconfig:"SERVER_PORT" default:"8080"`
	DBPath        string `envconfig:"DB_PATH" default:"data/library.db"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	ChatModel    string `envconfig:"CHAT_MODEL" default:"gemini-2.0-flash"`
	EmbedModel   string `envconfig:"EMBED_MODEL" default:"gemini-embedding-001"`

	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead, so a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: DB_PATH", ErrMissingRequired)
	}
	if c.ChatModel == "" {
		return fmt.Errorf("%w: CHAT_MODEL", ErrMissingRequired)
	}
	if c.EmbedModel == "" {
		return fmt.Errorf("%w: EMBED_MODEL", ErrMissingRequired)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: SERVER_PORT", ErrMissingRequired)
	}
	return nil
}
