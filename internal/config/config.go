// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the auth token goes to the OS
// keyring. Environment variables override file values so the tool works in
// CI and scripted contexts without a config file.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"grove/cli/internal/xdg"
)

// DefaultTimeoutMillis is the engine-side query timeout injected into a
// payload that does not carry one.
const DefaultTimeoutMillis = 300_000

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel      string       `json:"log_level"`
	Endpoint      string       `json:"endpoint"`
	AuthEnabled   bool         `json:"auth_enabled"`
	AuthTokenType string       `json:"auth_token_type"`
	TimeoutMillis int64        `json:"timeout_millis"`
	Tunnel        TunnelConfig `json:"tunnel"`
}

// TunnelConfig holds SSH tunnel settings for engines that are only reachable
// through an intermediate host.
type TunnelConfig struct {
	Enabled      bool   `json:"enabled"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	IdentityFile string `json:"identity_file"`
}

// overrides are environment settings that take precedence over the file.
type overrides struct {
	Endpoint      string `env:"GROVE_ENDPOINT"`
	LogLevel      string `env:"GROVE_LOG_LEVEL"`
	TimeoutMillis int64  `env:"GROVE_TIMEOUT_MS"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults. Environment
// variables (GROVE_ENDPOINT, GROVE_LOG_LEVEL, GROVE_TIMEOUT_MS) override
// whatever the file contains.
func Load() (Config, error) {
	c := defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults; endpoint comes from env or `grove connect`
	default:
		return c, err
	}

	var o overrides
	if err := env.Parse(&o); err != nil {
		return c, err
	}
	if o.Endpoint != "" {
		c.Endpoint = o.Endpoint
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.TimeoutMillis > 0 {
		c.TimeoutMillis = o.TimeoutMillis
	}
	return c, nil
}

func defaults() Config {
	return Config{
		LogLevel:      "info",
		AuthTokenType: "Bearer",
		TimeoutMillis: DefaultTimeoutMillis,
	}
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
