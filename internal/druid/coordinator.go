// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package druid

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	groveerr "grove/cli/internal/errors"
)

// cancelNotifyTimeout bounds the best-effort remote cancel so RunCancellable
// still returns promptly after an interruption.
const cancelNotifyTimeout = 5 * time.Second

// Client executes queries against one engine and coordinates their
// cancellation. A single Client is safe for concurrent use; each call gets
// its own execution goroutine and its own at-most-once cancel action.
type Client struct {
	exec          *Executor
	tunnel        Tunneler
	logger        log.Logger
	metrics       *Metrics
	timeoutMillis int64
}

// NewClient wires an engine client. tunnel may be nil for direct
// connections, logger may be nil for silence, metrics may be nil to skip
// counting. timeoutMillis is injected into payloads that carry no engine-side
// timeout of their own.
func NewClient(logger log.Logger, secrets SecretSource, tunnel Tunneler, metrics *Metrics, timeoutMillis int64) *Client {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if tunnel == nil {
		tunnel = NoTunnel{}
	}
	return &Client{
		exec:          NewExecutor(logger, secrets),
		tunnel:        tunnel,
		logger:        logger,
		metrics:       metrics,
		timeoutMillis: timeoutMillis,
	}
}

// outcome carries the execution goroutine's result across the concurrency
// boundary; failures are delivered here, never thrown.
type outcome struct {
	rows QueryResponse
	err  error
}

// RunCancellable submits the payload and waits for either the engine's
// answer or the cancellation signal, whichever comes first.
//
// The cancel channel is a one-shot signal: closing it (or sending once)
// requests cancellation. When it fires before the engine answers, the local
// request is interrupted, the engine is notified once via DELETE (best
// effort, failures logged and swallowed), and the call returns an
// interrupted error. The remote notification has always completed, one way
// or the other, by the time this function returns.
//
// An interruption that reaches the waiting side through the outcome instead
// (the caller's ctx was cancelled or timed out mid-request) triggers the same
// one-shot notification. A query that completes first wins the race and the
// signal is ignored thereafter. Once cancellation has been observed, a
// success result is never returned.
func (c *Client) RunCancellable(ctx context.Context, conn *ConnectionDetails, payload *QueryPayload, cancel <-chan struct{}) (QueryResponse, error) {
	queryID := payload.QueryID()
	payload.EnsureTimeout(c.timeoutMillis)

	runCtx, interrupt := context.WithCancel(ctx)
	defer interrupt()

	results := make(chan outcome, 1) // buffered: the goroutine never blocks on delivery
	go func() {
		var rows QueryResponse
		err := c.tunnel.With(runCtx, conn, func(tc *ConnectionDetails) error {
			u, err := ResolveURL(tc.Endpoint, QueryPath)
			if err != nil {
				return err
			}
			return c.exec.Do(runCtx, tc, http.MethodPost, u, payload, &rows)
		})
		results <- outcome{rows: rows, err: err}
	}()

	// The remote cancel must run at most once per execution, no matter which
	// path requests it or how often the signal fires.
	var once sync.Once
	notifyRemote := func() {
		once.Do(func() { c.notifyCancel(conn, queryID) })
	}

	select {
	case out := <-results:
		if out.err == nil {
			c.metrics.query("success")
			return out.rows, nil
		}
		if isInterruption(out.err) {
			// Interruption observed on the waiting side: same cancel
			// notification as the signal path, then fail as interrupted.
			notifyRemote()
			c.metrics.query("interrupted")
			return nil, &groveerr.E{Kind: groveerr.Interrupted, Message: "query execution interrupted", Err: out.err}
		}
		c.metrics.query("error")
		return nil, out.err
	case <-cancel:
		level.Debug(c.logger).Log("msg", "cancellation signal received", "queryId", queryID)
	case <-ctx.Done():
		level.Debug(c.logger).Log("msg", "context finished before query completion", "queryId", queryID)
	}

	// Cancellation observed: interrupt the execution goroutine, notify the
	// engine, and only then return. The buffered channel lets the goroutine
	// finish on its own.
	interrupt()
	notifyRemote()
	c.metrics.query("interrupted")
	return nil, groveerr.New(groveerr.Interrupted, "query cancelled")
}

// notifyCancel issues the best-effort DELETE for queryID. Failures are logged
// at warning severity and never propagated: the interrupted outcome the
// caller already holds stays authoritative.
func (c *Client) notifyCancel(conn *ConnectionDetails, queryID string) {
	if queryID == "" {
		level.Warn(c.logger).Log("msg", "cancellation requested but query has no queryId, skipping remote cancel")
		c.metrics.remoteCancel("skipped")
		return
	}

	// The run context is already cancelled at this point; the notification
	// gets its own bounded context.
	ctx, done := context.WithTimeout(context.Background(), cancelNotifyTimeout)
	defer done()

	if err := c.CancelQuery(ctx, conn, queryID); err != nil {
		level.Warn(c.logger).Log("msg", "remote cancel failed", "queryId", queryID, "err", err)
		c.metrics.remoteCancel("failed")
		return
	}
	level.Debug(c.logger).Log("msg", "remote cancel delivered", "queryId", queryID)
	c.metrics.remoteCancel("sent")
}

// isInterruption reports whether err stems from the local execution being
// interrupted rather than from the request itself failing.
func isInterruption(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
