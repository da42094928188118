// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package druid

import "errors"

// Native API paths of a Druid-compatible engine. Segments passed to
// ResolveURL carry their own leading separator.
const (
	// QueryPath accepts native JSON queries via POST.
	QueryPath = "/druid/v2"
	// CancelPathPrefix followed by a query id addresses a running query
	// for DELETE.
	CancelPathPrefix = "/druid/v2/"
	// DatasourcesPath lists queryable datasources.
	DatasourcesPath = "/druid/v2/datasources"
	// StatusPath reports broker health and version.
	StatusPath = "/status"
)

// ErrNoEndpoint is returned when connection details carry no endpoint.
var ErrNoEndpoint = errors.New("connection endpoint is not set")

// ResolveURL joins the base endpoint with the given path segments by plain
// concatenation. No separators are inserted; each segment must already carry
// its leading "/". An empty base is a precondition violation.
func ResolveURL(base string, segments ...string) (string, error) {
	if base == "" {
		return "", ErrNoEndpoint
	}
	u := base
	for _, s := range segments {
		u += s
	}
	return u, nil
}
