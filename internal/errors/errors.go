// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure the query client can surface is normalized into one of a small
// set of machine-readable kinds, so callers can branch on the category while
// still receiving a human-friendly message plus the structured context (HTTP
// status, request URL, raw response body) needed to diagnose a failure without
// inspecting logs.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Transport indicates a connection-level failure (refused, timed out,
	// reset, DNS) before any status code was received.
	Transport Kind = "transport_failed"
	// RemoteRequest indicates the engine answered with a non-success status.
	RemoteRequest Kind = "remote_request_failed"
	// ResponseDecode indicates a success status whose body was not valid JSON.
	ResponseDecode Kind = "response_decode_failed"
	// RequestEncode indicates the query payload could not be serialized.
	// This is a programming error on the caller's side, never swallowed.
	RequestEncode Kind = "request_encode_failed"
	// Interrupted indicates the local execution was interrupted, typically
	// because the query was cancelled.
	Interrupted Kind = "interrupted"
	// SecretUnavailable indicates a credential could not be resolved from
	// secure storage.
	SecretUnavailable Kind = "secret_unavailable"
	// TunnelFailed indicates the tunnel to the engine endpoint could not be
	// established.
	TunnelFailed Kind = "tunnel_failed"
)

// E wraps an error with kind and human-friendly message. Status, URL and
// RawBody are populated when the failure happened at the HTTP boundary.
type E struct {
	Kind    Kind
	Message string
	Status  int
	URL     string
	RawBody []byte
	Err     error
}

func (e *E) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d): %v", e.Kind, e.Message, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of err, or "" when err carries no kind.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err (or anything it wraps) has the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
