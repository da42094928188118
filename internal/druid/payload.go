// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package druid

import (
	jsoniter "github.com/json-iterator/go"

	groveerr "grove/cli/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// QueryContext is the engine-facing context block of a native query. The
// queryId addresses the running query for cancellation; the timeout is
// honored by the engine itself and is independent of local cancellation.
type QueryContext struct {
	QueryID       string `json:"queryId,omitempty"`
	TimeoutMillis int64  `json:"timeout,omitempty"`
	Priority      int    `json:"priority,omitempty"`
}

// QueryPayload is a native JSON query. The common fields are typed; anything
// engine-specific (filters, aggregations of exotic types, tuning flags)
// passes through Extra untouched. A payload is mutable until submitted and
// treated as immutable afterwards.
type QueryPayload struct {
	QueryType    string           `json:"queryType,omitempty"`
	DataSource   string           `json:"dataSource,omitempty"`
	Intervals    []string         `json:"intervals,omitempty"`
	Dimensions   []string         `json:"dimensions,omitempty"`
	Metrics      []string         `json:"metrics,omitempty"`
	Granularity  any              `json:"granularity,omitempty"`
	Aggregations []map[string]any `json:"aggregations,omitempty"`
	Context      *QueryContext    `json:"context,omitempty"`

	// Extra holds fields outside the typed set. Typed fields win on conflict.
	Extra map[string]any `json:"-"`
}

// payloadAlias avoids MarshalJSON recursion.
type payloadAlias QueryPayload

var typedPayloadKeys = []string{
	"queryType", "dataSource", "intervals", "dimensions", "metrics",
	"granularity", "aggregations", "context",
}

// MarshalJSON renders the typed fields and merges Extra alongside them.
func (p *QueryPayload) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal((*payloadAlias)(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return b, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, taken := m[k]; !taken {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON fills the typed fields and routes unknown ones into Extra.
func (p *QueryPayload) UnmarshalJSON(data []byte) error {
	var a payloadAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for _, k := range typedPayloadKeys {
		delete(m, k)
	}
	*p = QueryPayload(a)
	if len(m) > 0 {
		p.Extra = m
	}
	return nil
}

// ParsePayload decodes a native query document. Invalid JSON is reported as a
// request encoding error carrying the offending input.
func ParsePayload(data []byte) (*QueryPayload, error) {
	var p QueryPayload
	if err := json.Unmarshal(data, &p); err != nil {
		e := groveerr.Wrap(groveerr.RequestEncode, "query is not valid JSON", err)
		e.RawBody = data
		return nil, e
	}
	return &p, nil
}

// QueryID returns the query identifier, or "" when none was assigned.
func (p *QueryPayload) QueryID() string {
	if p.Context == nil {
		return ""
	}
	return p.Context.QueryID
}

// SetQueryID assigns the query identifier, allocating the context block when
// needed.
func (p *QueryPayload) SetQueryID(id string) {
	if p.Context == nil {
		p.Context = &QueryContext{}
	}
	p.Context.QueryID = id
}

// EnsureTimeout injects the engine-side timeout when the payload does not
// already carry one.
func (p *QueryPayload) EnsureTimeout(millis int64) {
	if millis <= 0 {
		return
	}
	if p.Context == nil {
		p.Context = &QueryContext{}
	}
	if p.Context.TimeoutMillis == 0 {
		p.Context.TimeoutMillis = millis
	}
}

// MarshalIndent renders a value with the same JSON configuration used for the
// wire format.
func MarshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Row is one element of a native query result.
type Row map[string]any

// QueryResponse is the decoded result of a successful query submission. The
// engine answers native queries with a JSON array.
type QueryResponse []Row
