// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package druid

import (
	"context"
	"errors"
	"net/http"
)

// CancelQuery asks the engine to abort the query with the given id, using the
// same auth settings as the original submission. The engine's response body,
// if any, is ignored; a non-success status surfaces as a remote request
// error. The caller decides whether that failure matters: the coordinator
// treats it as best-effort, the `grove cancel` command reports it.
func (c *Client) CancelQuery(ctx context.Context, conn *ConnectionDetails, queryID string) error {
	if queryID == "" {
		return errors.New("query id is required")
	}
	return c.tunnel.With(ctx, conn, func(tc *ConnectionDetails) error {
		u, err := ResolveURL(tc.Endpoint, CancelPathPrefix+queryID)
		if err != nil {
			return err
		}
		return c.exec.Do(ctx, tc, http.MethodDelete, u, nil, nil)
	})
}
