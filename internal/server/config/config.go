// Package config assembles server settings from an optional TOML file and
// the environment. The secret key only ever comes from the environment.
package config

import (
	"encoding/hex"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/charadev96/corkboard/internal/server/token"
)

type Config struct {
	WebAddr   string `toml:"web_addr" env:"CORKBOARD_WEB_ADDR"`
	AdminAddr string `toml:"admin_addr" env:"CORKBOARD_ADMIN_ADDR"`
	BaseURL   string `toml:"base_url" env:"CORKBOARD_BASE_URL"`
	DBPath    string `toml:"db_path" env:"CORKBOARD_DB_PATH"`

	SecretKey string `toml:"-" env:"CORKBOARD_SECRET_KEY"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		WebAddr:   ":8080",
		AdminAddr: "127.0.0.1:8081",
		BaseURL:   "http://localhost:8080",
		DBPath:    "corkboard.db",
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Key decodes the hex-encoded secret key for the token codec.
func (c Config) Key() ([]byte, error) {
	if c.SecretKey == "" {
		return nil, fmt.Errorf("CORKBOARD_SECRET_KEY is not set")
	}
	key, err := hex.DecodeString(c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("secret key must be hex encoded: %w", err)
	}
	if len(key) != token.KeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", token.KeySize, len(key))
	}
	return key, nil
}
