// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package druid

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	groveerr "grove/cli/internal/errors"
	"grove/cli/internal/httperrors"
	"grove/cli/internal/logging"
)

// contentTypeJSON is sent on every request.
const contentTypeJSON = "application/json;charset=UTF-8"

// Executor performs one authenticated HTTP round trip against the engine and
// normalizes every failure path into the shared error taxonomy.
type Executor struct {
	client  *http.Client
	secrets SecretSource
	logger  log.Logger
}

// NewExecutor builds an executor. secrets may be nil when no connection uses
// auth; logger may be nil for silence.
func NewExecutor(logger log.Logger, secrets SecretSource) *Executor {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Executor{
		// No client-level timeout: deadlines arrive via the request context,
		// so a long-running query is interruptible but not silently capped.
		client:  &http.Client{},
		secrets: secrets,
		logger:  logger,
	}
}

// Do sends method+url with the optional JSON body and decodes the response
// into out (skipped when out is nil). The returned error is always a
// taxonomy error:
//
//   - request_encode_failed: body could not be serialized (caller bug)
//   - secret_unavailable: auth enabled but the token could not be resolved
//   - transport_failed: connection-level failure before any status code
//   - remote_request_failed: status other than 200, raw body attached
//   - response_decode_failed: 200 with a body that is not the expected JSON
func (e *Executor) Do(ctx context.Context, conn *ConnectionDetails, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return groveerr.Wrap(groveerr.RequestEncode, "cannot serialize request body", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &groveerr.E{Kind: groveerr.Transport, Message: "cannot build request", URL: url, Err: err}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	if conn.AuthEnabled {
		token, err := e.secrets.Resolve(conn.AuthTokenRef)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", conn.AuthTokenType+" "+token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return &groveerr.E{Kind: groveerr.Transport, Message: httperrors.Describe(err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &groveerr.E{Kind: groveerr.Transport, Message: "reading response body failed", URL: url, Err: err}
	}

	level.Debug(e.logger).Log(
		"msg", "engine response",
		"method", method,
		"url", logging.Mask(url),
		"status", resp.StatusCode,
		"body", logging.Mask(string(raw)),
	)

	if resp.StatusCode != http.StatusOK {
		msg := remoteErrorMessage(raw)
		if msg == "" {
			msg = "engine returned non-success status"
		}
		return &groveerr.E{
			Kind:    groveerr.RemoteRequest,
			Message: msg,
			Status:  resp.StatusCode,
			URL:     url,
			RawBody: raw,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &groveerr.E{
			Kind:    groveerr.ResponseDecode,
			Message: "engine response is not valid JSON",
			Status:  resp.StatusCode,
			URL:     url,
			RawBody: raw,
			Err:     err,
		}
	}
	return nil
}

// engineError is the error document a Druid-compatible engine attaches to
// failed requests.
type engineError struct {
	Error        string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
	ErrorClass   string `json:"errorClass"`
	Host         string `json:"host"`
}

// remoteErrorMessage extracts the engine's own error vocabulary from a
// response body, preferring errorMessage over the generic error code.
// Returns "" when the body carries neither.
func remoteErrorMessage(raw []byte) string {
	var ee engineError
	if err := json.Unmarshal(raw, &ee); err != nil {
		return ""
	}
	if ee.ErrorMessage != "" {
		return ee.ErrorMessage
	}
	return ee.Error
}
