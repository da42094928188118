// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grove/cli/internal/druid"
)

func TestReadQueryDocumentFromArg(t *testing.T) {
	doc, err := readQueryDocument([]string{`{"queryType":"timeseries"}`})
	require.NoError(t, err)
	assert.JSONEq(t, `{"queryType":"timeseries"}`, string(doc))
}

func TestReadQueryDocumentFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "q.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"queryType":"scan"}`), 0o600))

	queryFile = p
	t.Cleanup(func() { queryFile = "" })

	doc, err := readQueryDocument(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"queryType":"scan"}`, string(doc))
}

func TestReadQueryDocumentRequiresSource(t *testing.T) {
	_, err := readQueryDocument(nil)
	assert.Error(t, err)
}

func TestTabulateFlatRows(t *testing.T) {
	rows := druid.QueryResponse{
		{"country": "NL", "count": float64(3)},
		{"country": "DE"},
	}

	data, ok := tabulate(rows)
	require.True(t, ok)
	require.Len(t, data, 3)
	assert.Equal(t, []string{"count", "country"}, data[0])
	assert.Equal(t, []string{"3", "NL"}, data[1])
	assert.Equal(t, []string{"", "DE"}, data[2])
}

func TestTabulateRejectsNestedValues(t *testing.T) {
	rows := druid.QueryResponse{
		{"result": map[string]any{"count": 3}},
	}

	_, ok := tabulate(rows)
	assert.False(t, ok)
}
