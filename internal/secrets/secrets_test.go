// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package secrets

import (
	"testing"

	"github.com/99designs/keyring"

	groveerr "grove/cli/internal/errors"
)

func newTestManager(items ...keyring.Item) *Manager {
	return &Manager{ring: keyring.NewArrayKeyring(items)}
}

func TestResolveFromRing(t *testing.T) {
	t.Setenv(EnvAuthToken, "")
	m := newTestManager(keyring.Item{Key: KeyAuthToken, Data: []byte("s3cret")})

	got, err := m.Resolve(KeyAuthToken)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "s3cret" {
		t.Errorf("Resolve() = %q, want s3cret", got)
	}
}

func TestResolveEnvWins(t *testing.T) {
	t.Setenv(EnvAuthToken, "from-env")
	m := newTestManager(keyring.Item{Key: KeyAuthToken, Data: []byte("from-ring")})

	got, err := m.Resolve(KeyAuthToken)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "from-env" {
		t.Errorf("Resolve() = %q, want from-env", got)
	}
}

func TestResolveMissing(t *testing.T) {
	t.Setenv(EnvAuthToken, "")
	m := newTestManager()

	_, err := m.Resolve(KeyAuthToken)
	if err == nil {
		t.Fatal("Resolve() error = nil, want SecretUnavailable")
	}
	if !groveerr.IsKind(err, groveerr.SecretUnavailable) {
		t.Errorf("Resolve() error kind = %q, want %q", groveerr.KindOf(err), groveerr.SecretUnavailable)
	}
}

func TestSaveAndClear(t *testing.T) {
	t.Setenv(EnvAuthToken, "")
	m := newTestManager()

	if err := m.SaveAuthToken("tok"); err != nil {
		t.Fatalf("SaveAuthToken() error = %v", err)
	}
	if got, err := m.Resolve(KeyAuthToken); err != nil || got != "tok" {
		t.Fatalf("Resolve() = %q, %v after save", got, err)
	}
	if err := m.ClearAuthToken(); err != nil {
		t.Fatalf("ClearAuthToken() error = %v", err)
	}
	if _, err := m.Resolve(KeyAuthToken); err == nil {
		t.Error("Resolve() after clear succeeded, want error")
	}
	// Clearing twice stays silent
	if err := m.ClearAuthToken(); err != nil {
		t.Errorf("second ClearAuthToken() error = %v", err)
	}
}
