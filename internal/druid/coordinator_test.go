// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package druid

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	groveerr "grove/cli/internal/errors"
)

// fakeEngine is a call-counting stand-in for the remote engine.
type fakeEngine struct {
	mu           sync.Mutex
	deletes      []string // query ids seen on the cancel path
	queryBodies  [][]byte
	blockQueries bool // hold POSTs until the client goes away
	cancelStatus int  // status for DELETEs, default 200
	queryStatus  int  // status for POSTs, default 200
	queryRows    string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		cancelStatus: http.StatusOK,
		queryStatus:  http.StatusOK,
		queryRows:    `[{"timestamp":"2024-01-01T00:00:00Z","result":{"rows":7}}]`,
	}
}

func (f *fakeEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, CancelPathPrefix):
		f.mu.Lock()
		f.deletes = append(f.deletes, strings.TrimPrefix(r.URL.Path, CancelPathPrefix))
		status := f.cancelStatus
		f.mu.Unlock()
		w.WriteHeader(status)
	case r.Method == http.MethodPost && r.URL.Path == QueryPath:
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.queryBodies = append(f.queryBodies, body)
		block := f.blockQueries
		f.mu.Unlock()
		if block {
			<-r.Context().Done()
			return
		}
		if f.queryStatus != http.StatusOK {
			w.WriteHeader(f.queryStatus)
		}
		w.Write([]byte(f.queryRows))
	case r.Method == http.MethodGet && r.URL.Path == StatusPath:
		w.Write([]byte(`{"version":"28.0.0"}`))
	case r.Method == http.MethodGet && r.URL.Path == DatasourcesPath:
		w.Write([]byte(`["wikipedia","metrics"]`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeEngine) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func (f *fakeEngine) lastQueryBody(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.queryBodies)
	var m map[string]any
	require.NoError(t, json.Unmarshal(f.queryBodies[len(f.queryBodies)-1], &m))
	return m
}

func newTestClient(logger log.Logger, timeoutMillis int64) *Client {
	return NewClient(logger, staticSecrets{"token": "s3cret"}, nil, nil, timeoutMillis)
}

func payloadWithID(id string) *QueryPayload {
	p := &QueryPayload{QueryType: "timeseries", DataSource: "wikipedia"}
	if id != "" {
		p.SetQueryID(id)
	}
	return p
}

func TestRunCancellableSuccess(t *testing.T) {
	engine := newFakeEngine()
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c := newTestClient(nil, 12345)
	conn := &ConnectionDetails{Endpoint: srv.URL}
	cancel := make(chan struct{})

	rows, err := c.RunCancellable(context.Background(), conn, payloadWithID("q-1"), cancel)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-01T00:00:00Z", rows[0]["timestamp"])

	// No cancel was requested, so no DELETE may reach the engine even after
	// the signal fires late.
	close(cancel)
	assert.Empty(t, engine.deleted())

	// The engine-side timeout was injected into the submitted payload.
	body := engine.lastQueryBody(t)
	qctx, ok := body["context"].(map[string]any)
	require.True(t, ok, "payload context missing: %v", body)
	assert.Equal(t, float64(12345), qctx["timeout"])
	assert.Equal(t, "q-1", qctx["queryId"])
}

func TestRunCancellableSignalFires(t *testing.T) {
	engine := newFakeEngine()
	engine.blockQueries = true
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c := newTestClient(nil, 0)
	conn := &ConnectionDetails{Endpoint: srv.URL}

	cancel := make(chan struct{})
	time.AfterFunc(50*time.Millisecond, func() { close(cancel) })

	start := time.Now()
	rows, err := c.RunCancellable(context.Background(), conn, payloadWithID("q-cancel-me"), cancel)
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.Equal(t, groveerr.Interrupted, groveerr.KindOf(err))
	assert.Less(t, time.Since(start), 3*time.Second, "must return promptly after cancellation")

	// Exactly one DELETE, already delivered by the time the call returned.
	assert.Equal(t, []string{"q-cancel-me"}, engine.deleted())
}

func TestRunCancellableNoQueryID(t *testing.T) {
	engine := newFakeEngine()
	engine.blockQueries = true
	srv := httptest.NewServer(engine)
	defer srv.Close()

	var logs bytes.Buffer
	c := newTestClient(log.NewLogfmtLogger(&logs), 0)
	conn := &ConnectionDetails{Endpoint: srv.URL}

	cancel := make(chan struct{})
	time.AfterFunc(50*time.Millisecond, func() { close(cancel) })

	_, err := c.RunCancellable(context.Background(), conn, payloadWithID(""), cancel)
	require.Error(t, err)
	assert.Equal(t, groveerr.Interrupted, groveerr.KindOf(err))
	assert.Empty(t, engine.deleted(), "no queryId, nothing to address remotely")
	assert.Contains(t, logs.String(), "skipping remote cancel")
}

func TestRunCancellableCancelDeleteFailureSwallowed(t *testing.T) {
	engine := newFakeEngine()
	engine.blockQueries = true
	engine.cancelStatus = http.StatusInternalServerError
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c := newTestClient(nil, 0)
	conn := &ConnectionDetails{Endpoint: srv.URL}

	cancel := make(chan struct{})
	time.AfterFunc(50*time.Millisecond, func() { close(cancel) })

	_, err := c.RunCancellable(context.Background(), conn, payloadWithID("q-3"), cancel)
	require.Error(t, err)
	assert.Equal(t, groveerr.Interrupted, groveerr.KindOf(err), "cancel-notify failure must not replace the interrupted outcome")
	assert.NotContains(t, err.Error(), "remote cancel")
	assert.Equal(t, []string{"q-3"}, engine.deleted())
}

func TestRunCancellableWaitingSideInterruption(t *testing.T) {
	engine := newFakeEngine()
	engine.blockQueries = true
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c := newTestClient(nil, 0)
	conn := &ConnectionDetails{Endpoint: srv.URL}

	// The cancellation signal never fires; the caller's deadline interrupts
	// the wait instead. The remote cancel must still go out exactly once.
	ctx, done := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer done()

	_, err := c.RunCancellable(ctx, conn, payloadWithID("q-deadline"), make(chan struct{}))
	require.Error(t, err)
	assert.Equal(t, groveerr.Interrupted, groveerr.KindOf(err))
	assert.Equal(t, []string{"q-deadline"}, engine.deleted())
}

func TestRunCancellableRepeatedFiringSendsOneDelete(t *testing.T) {
	engine := newFakeEngine()
	engine.blockQueries = true
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c := newTestClient(nil, 0)
	conn := &ConnectionDetails{Endpoint: srv.URL}

	// Fire the signal several times; the cancel action must stay single-shot.
	cancel := make(chan struct{}, 3)
	go func() {
		cancel <- struct{}{}
		cancel <- struct{}{}
		cancel <- struct{}{}
	}()

	_, err := c.RunCancellable(context.Background(), conn, payloadWithID("q-multi"), cancel)
	require.Error(t, err)
	assert.Equal(t, []string{"q-multi"}, engine.deleted())
}

func TestRunCancellableRemoteFailurePassesThrough(t *testing.T) {
	engine := newFakeEngine()
	engine.queryStatus = http.StatusBadRequest
	engine.queryRows = `{"errorMessage":"bad query"}`
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c := newTestClient(nil, 0)
	conn := &ConnectionDetails{Endpoint: srv.URL}

	_, err := c.RunCancellable(context.Background(), conn, payloadWithID("q-4"), make(chan struct{}))
	require.Error(t, err)

	var ee *groveerr.E
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, groveerr.RemoteRequest, ee.Kind)
	assert.Equal(t, "bad query", ee.Message)
	assert.Empty(t, engine.deleted())
}

func TestStatusAndDatasources(t *testing.T) {
	engine := newFakeEngine()
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c := newTestClient(nil, 0)
	conn := &ConnectionDetails{Endpoint: srv.URL}

	st, err := c.Status(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, "28.0.0", st.Version)

	names, err := c.Datasources(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"wikipedia", "metrics"}, names)
}

func TestCancelQueryDirect(t *testing.T) {
	engine := newFakeEngine()
	srv := httptest.NewServer(engine)
	defer srv.Close()

	c := newTestClient(nil, 0)
	conn := &ConnectionDetails{Endpoint: srv.URL}

	require.Error(t, c.CancelQuery(context.Background(), conn, ""), "empty id is a precondition violation")

	require.NoError(t, c.CancelQuery(context.Background(), conn, "q-direct"))
	assert.Equal(t, []string{"q-direct"}, engine.deleted())
}
