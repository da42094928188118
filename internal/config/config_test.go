package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GROVE_ENDPOINT", "")
	t.Setenv("GROVE_LOG_LEVEL", "")
	t.Setenv("GROVE_TIMEOUT_MS", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", c.LogLevel)
	}
	if c.AuthTokenType != "Bearer" {
		t.Errorf("AuthTokenType = %q, want Bearer", c.AuthTokenType)
	}
	if c.TimeoutMillis != DefaultTimeoutMillis {
		t.Errorf("TimeoutMillis = %d, want %d", c.TimeoutMillis, DefaultTimeoutMillis)
	}
	if c.Endpoint != "" {
		t.Errorf("Endpoint = %q, want empty", c.Endpoint)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	saved := defaults()
	saved.Endpoint = "http://druid.internal:8082"
	saved.LogLevel = "warn"
	if err := Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Setenv("GROVE_ENDPOINT", "http://localhost:8888")
	t.Setenv("GROVE_TIMEOUT_MS", "15000")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Endpoint != "http://localhost:8888" {
		t.Errorf("Endpoint = %q, want env override", c.Endpoint)
	}
	if c.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want file value warn", c.LogLevel)
	}
	if c.TimeoutMillis != 15000 {
		t.Errorf("TimeoutMillis = %d, want 15000", c.TimeoutMillis)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GROVE_ENDPOINT", "")
	t.Setenv("GROVE_LOG_LEVEL", "")
	t.Setenv("GROVE_TIMEOUT_MS", "")

	c := defaults()
	c.Endpoint = "https://druid.example.com"
	c.AuthEnabled = true
	c.Tunnel = TunnelConfig{Enabled: true, Host: "bastion", Port: 22, User: "ops"}
	if err := Save(c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Endpoint != c.Endpoint || !got.AuthEnabled || got.Tunnel.Host != "bastion" {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}
