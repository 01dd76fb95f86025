package ssh

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempKey(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id_test")
	if err := os.WriteFile(path, []byte("not a real key"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("host.example.com", "alice")

	if cfg.Port != 22 {
		t.Errorf("Port = %d, want 22", cfg.Port)
	}
	if cfg.AuthMethod != AuthMethodKey {
		t.Errorf("AuthMethod = %q, want key", cfg.AuthMethod)
	}
	if cfg.ConnectTimeout != 30*time.Second || cfg.CommandTimeout != 10*time.Minute {
		t.Errorf("timeouts = %v/%v", cfg.ConnectTimeout, cfg.CommandTimeout)
	}
}

func TestValidateKeyAuth(t *testing.T) {
	cfg := DefaultConfig("host.example.com", "alice")
	cfg.PrivateKeyPath = writeTempKey(t)

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	cfg.PrivateKeyPath = filepath.Join(t.TempDir(), "missing")
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil error for a missing key file")
	}
}

func TestValidatePasswordAuth(t *testing.T) {
	cfg := DefaultConfig("host.example.com", "alice")
	cfg.AuthMethod = AuthMethodPassword

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil error without a password")
	}

	cfg.Password = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
}

func TestValidateRejectsBadFields(t *testing.T) {
	key := writeTempKey(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.Host = "" }},
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"empty user", func(c *Config) { c.User = "" }},
		{"unknown auth method", func(c *Config) { c.AuthMethod = "kerberos" }},
		{"zero connect timeout", func(c *Config) { c.ConnectTimeout = 0 }},
		{"zero command timeout", func(c *Config) { c.CommandTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("host.example.com", "alice")
			cfg.PrivateKeyPath = key
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil error")
			}
		})
	}
}

func TestAddress(t *testing.T) {
	cfg := DefaultConfig("host.example.com", "alice")
	if got := cfg.Address(); got != "host.example.com:22" {
		t.Errorf("Address() = %q", got)
	}

	cfg.Host = "::1"
	cfg.Port = 2222
	if got := cfg.Address(); got != "[::1]:2222" {
		t.Errorf("Address() = %q, want bracketed IPv6", got)
	}
}
