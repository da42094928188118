// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package druid

import (
	"context"
	"net/http"
)

// EngineStatus is the engine's health/version document.
type EngineStatus struct {
	Version string `json:"version"`
}

// Status probes the engine's status endpoint. Used by `grove ping` and the
// connection verification in `grove connect`.
func (c *Client) Status(ctx context.Context, conn *ConnectionDetails) (*EngineStatus, error) {
	var st EngineStatus
	err := c.tunnel.With(ctx, conn, func(tc *ConnectionDetails) error {
		u, err := ResolveURL(tc.Endpoint, StatusPath)
		if err != nil {
			return err
		}
		return c.exec.Do(ctx, tc, http.MethodGet, u, nil, &st)
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Datasources lists the engine's queryable datasources.
func (c *Client) Datasources(ctx context.Context, conn *ConnectionDetails) ([]string, error) {
	var names []string
	err := c.tunnel.With(ctx, conn, func(tc *ConnectionDetails) error {
		u, err := ResolveURL(tc.Endpoint, DatasourcesPath)
		if err != nil {
			return err
		}
		return c.exec.Do(ctx, tc, http.MethodGet, u, nil, &names)
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
