// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package schema reshapes the engine's segment-metadata documents into typed
// table descriptions. It is a pure transformation: remote type names map onto
// a fixed local column-kind enum, and missing or conflicting per-segment
// information degrades to the unknown kind instead of failing.
package schema

import (
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TimeColumn is the engine's designated event-time column.
const TimeColumn = "__time"

// ColumnKind is the local type enum for engine columns.
type ColumnKind int

const (
	KindUnknown ColumnKind = iota
	KindString
	KindLong
	KindFloat
	KindDouble
	KindTimestamp
	KindComplex
)

func (k ColumnKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindTimestamp:
		return "timestamp"
	case KindComplex:
		return "complex"
	}
	return "unknown"
}

// MapType maps an engine type name onto the local enum. Parameterized
// complex types ("COMPLEX<hyperUnique>") collapse to KindComplex.
func MapType(native string) ColumnKind {
	t := strings.ToUpper(strings.TrimSpace(native))
	switch {
	case t == "STRING":
		return KindString
	case t == "LONG":
		return KindLong
	case t == "FLOAT":
		return KindFloat
	case t == "DOUBLE":
		return KindDouble
	case strings.HasPrefix(t, "COMPLEX"):
		return KindComplex
	}
	return KindUnknown
}

// ColumnAnalysis is one column's slice of a segment-metadata result.
type ColumnAnalysis struct {
	Type              string `json:"type"`
	HasMultipleValues bool   `json:"hasMultipleValues"`
	Size              int64  `json:"size"`
	Cardinality       int64  `json:"cardinality"`
	ErrorMessage      string `json:"errorMessage"`
}

// SegmentAnalysis is one element of a segmentMetadata query response.
type SegmentAnalysis struct {
	ID      string                    `json:"id"`
	Columns map[string]ColumnAnalysis `json:"columns"`
	NumRows int64                     `json:"numRows"`
}

// Column describes one column of a datasource in local terms.
type Column struct {
	Name       string
	Kind       ColumnKind
	NativeType string
}

// Table is the reshaped schema of one datasource.
type Table struct {
	Name    string
	Columns []Column
}

// BuildTable merges the per-segment analyses into a single table description.
// The time column sorts first; the remainder is alphabetical. When segments
// disagree on a column's type, the first seen wins.
func BuildTable(name string, analyses []SegmentAnalysis) Table {
	seen := map[string]Column{}
	for _, a := range analyses {
		for colName, col := range a.Columns {
			if _, ok := seen[colName]; ok {
				continue
			}
			kind := MapType(col.Type)
			if colName == TimeColumn {
				kind = KindTimestamp
			}
			seen[colName] = Column{Name: colName, Kind: kind, NativeType: col.Type}
		}
	}

	cols := make([]Column, 0, len(seen))
	for _, c := range seen {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].Name == TimeColumn {
			return true
		}
		if cols[j].Name == TimeColumn {
			return false
		}
		return cols[i].Name < cols[j].Name
	})
	return Table{Name: name, Columns: cols}
}

// FromRows re-decodes generically decoded result rows into segment analyses.
func FromRows(rows []map[string]any) ([]SegmentAnalysis, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	var out []SegmentAnalysis
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
