// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/go-kit/log"

	"grove/cli/internal/config"
	"grove/cli/internal/druid"
	"grove/cli/internal/logging"
	"grove/cli/internal/secrets"
	"grove/cli/internal/tunnel"
)

// runtime bundles the wired query client and its connection details for one
// command invocation.
type runtime struct {
	cfg    config.Config
	logger log.Logger
	client *druid.Client
	conn   *druid.ConnectionDetails
}

// newRuntime loads configuration and wires the query client: keyring-backed
// secret resolution, SSH tunneling when configured, and a logfmt logger on
// stderr.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.NewDefault(cfg.LogLevel)

	var spec *druid.TunnelSpec
	if cfg.Tunnel.Enabled {
		spec = &druid.TunnelSpec{
			Host:         cfg.Tunnel.Host,
			Port:         cfg.Tunnel.Port,
			User:         cfg.Tunnel.User,
			IdentityFile: cfg.Tunnel.IdentityFile,
		}
	}
	conn := &druid.ConnectionDetails{
		Endpoint:      cfg.Endpoint,
		AuthEnabled:   cfg.AuthEnabled,
		AuthTokenType: cfg.AuthTokenType,
		AuthTokenRef:  secrets.KeyAuthToken,
		Tunnel:        spec,
	}

	client := druid.NewClient(logger, secrets.Source{}, tunnel.New(logger), nil, cfg.TimeoutMillis)
	return &runtime{cfg: cfg, logger: logger, client: client, conn: conn}, nil
}
