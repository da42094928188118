// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package druid is a client for Apache-Druid-compatible analytics engines.
// It submits native JSON queries over HTTP and supports cooperative
// cancellation of a query already in flight: a caller-controlled one-shot
// signal interrupts the local request and triggers a best-effort DELETE that
// asks the engine to abort the query server-side.
package druid

import "context"

// ConnectionDetails describes how to reach one engine. Values are read-only
// for the duration of a call and may be shared freely across goroutines.
type ConnectionDetails struct {
	// Endpoint is the base URL of the engine broker, e.g.
	// "http://localhost:8082". Paths are appended verbatim.
	Endpoint string
	// AuthEnabled adds an Authorization header to every request.
	AuthEnabled bool
	// AuthTokenType is the authorization scheme, usually "Bearer".
	AuthTokenType string
	// AuthTokenRef names the credential in the secret store; the token value
	// itself is never held here.
	AuthTokenRef string
	// Tunnel, when non-nil, routes all engine traffic through an SSH hop.
	Tunnel *TunnelSpec
}

// TunnelSpec configures the intermediate SSH hop for engines that are not
// directly reachable.
type TunnelSpec struct {
	Host         string
	Port         int
	User         string
	IdentityFile string
}

// SecretSource resolves an opaque credential reference to its value.
// Implementations may consult the OS keyring, the environment, or a test
// fixture; resolution failures surface as secret_unavailable errors.
type SecretSource interface {
	Resolve(ref string) (string, error)
}

// Tunneler scopes a function to a (possibly rewritten) set of connection
// details. All network calls against the engine must happen inside fn, and
// the rewritten endpoint must not be retained beyond it.
type Tunneler interface {
	With(ctx context.Context, conn *ConnectionDetails, fn func(*ConnectionDetails) error) error
}

// NoTunnel is the direct-connection Tunneler: fn runs against the original
// connection details unchanged.
type NoTunnel struct{}

func (NoTunnel) With(_ context.Context, conn *ConnectionDetails, fn func(*ConnectionDetails) error) error {
	return fn(conn)
}
