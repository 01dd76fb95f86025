// Package config defines the dockstrap options file: package lists,
// repository paths, service settings and journal location. All fields
// have working defaults; the file is optional and only overrides them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "5m", which yaml.v3 does not handle natively.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root of the dockstrap options file.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Trace   TraceConfig   `yaml:"trace"`
	Repo    RepoConfig    `yaml:"repo"`
	Pkgs    PackageConfig `yaml:"packages"`
	Service ServiceConfig `yaml:"service"`
	Verify  VerifyConfig  `yaml:"verify"`
	Access  AccessConfig  `yaml:"access"`
	Journal JournalConfig `yaml:"journal"`
	SSH     SSHConfig     `yaml:"ssh"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// TraceConfig controls trace span export.
type TraceConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter" validate:"omitempty,oneof=stdout otlp"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// RepoConfig describes the vendor package repository.
type RepoConfig struct {
	// VendorURL is the base of the vendor's apt tree; the distribution
	// ID and "gpg" are appended to form the key URL.
	VendorURL string `yaml:"vendor_url" validate:"required,url"`

	// PingHost is the host probed by the connectivity check.
	PingHost string `yaml:"ping_host" validate:"required,hostname"`

	// KeyringDir is the trusted-keys directory.
	KeyringDir string `yaml:"keyring_dir" validate:"required"`

	// KeyPath is where the dearmored signing key is written.
	KeyPath string `yaml:"key_path" validate:"required"`

	// ListPath is the apt source-list file to write.
	ListPath string `yaml:"list_path" validate:"required"`
}

// PackageConfig names the package sets the pipeline operates on.
type PackageConfig struct {
	// Legacy are known-conflicting packages removed before install.
	Legacy []string `yaml:"legacy" validate:"required,min=1"`

	// Prerequisites are utilities installed before repository setup.
	Prerequisites []string `yaml:"prerequisites" validate:"required,min=1"`

	// Engine are the engine and plugin packages installed together.
	Engine []string `yaml:"engine" validate:"required,min=1"`
}

// ServiceConfig describes the engine's background service.
type ServiceConfig struct {
	Name string `yaml:"name" validate:"required"`

	// WaitTimeout bounds the post-start active poll. Zero means a single
	// instantaneous is-active check.
	WaitTimeout Duration `yaml:"wait_timeout" validate:"min=0"`
}

// VerifyConfig describes the post-install verification.
type VerifyConfig struct {
	// SmokeImage is the disposable reference image run as a smoke test.
	SmokeImage string `yaml:"smoke_image" validate:"required"`

	// ExpectOutput is the substring the smoke test output must contain.
	ExpectOutput string `yaml:"expect_output" validate:"required"`
}

// AccessConfig describes non-privileged engine access.
type AccessConfig struct {
	// Group is the engine's access-control group.
	Group string `yaml:"group" validate:"required"`

	// SocketPath is the engine's control socket, reported for
	// diagnostics after group setup.
	SocketPath string `yaml:"socket_path" validate:"required"`
}

// JournalConfig controls the local run journal.
type JournalConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite journal location; empty selects a per-user
	// default under the state directory.
	Path string `yaml:"path"`
}

// SSHConfig carries defaults for remote-target mode.
type SSHConfig struct {
	Port           int      `yaml:"port" validate:"min=0,max=65535"`
	KnownHosts     string   `yaml:"known_hosts"`
	StrictHostKey  bool     `yaml:"strict_host_key"`
	ConnectTimeout Duration `yaml:"connect_timeout" validate:"min=0"`
	CommandTimeout Duration `yaml:"command_timeout" validate:"min=0"`
}

// Default returns the built-in configuration: Docker Engine from
// download.docker.com on a Debian/Ubuntu host.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Trace: TraceConfig{
			Exporter: "stdout",
			Insecure: true,
		},
		Repo: RepoConfig{
			VendorURL:  "https://download.docker.com/linux",
			PingHost:   "download.docker.com",
			KeyringDir: "/etc/apt/keyrings",
			KeyPath:    "/etc/apt/keyrings/docker.gpg",
			ListPath:   "/etc/apt/sources.list.d/docker.list",
		},
		Pkgs: PackageConfig{
			Legacy: []string{
				"docker.io", "docker-doc", "docker-compose",
				"docker-compose-v2", "podman-docker", "containerd", "runc",
			},
			Prerequisites: []string{
				"ca-certificates", "curl", "gnupg", "lsb-release",
			},
			Engine: []string{
				"docker-ce", "docker-ce-cli", "containerd.io",
				"docker-buildx-plugin", "docker-compose-plugin",
			},
		},
		Service: ServiceConfig{
			Name:        "docker",
			WaitTimeout: Duration(15 * time.Second),
		},
		Verify: VerifyConfig{
			SmokeImage:   "hello-world",
			ExpectOutput: "Hello from Docker!",
		},
		Access: AccessConfig{
			Group:      "docker",
			SocketPath: "/var/run/docker.sock",
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		SSH: SSHConfig{
			Port:           22,
			ConnectTimeout: Duration(30 * time.Second),
			CommandTimeout: Duration(10 * time.Minute),
		},
	}
}

// Load reads the options file at path on top of the defaults and
// validates the result. An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// JournalPath resolves the journal location, defaulting to a per-user
// state directory.
func (c *Config) JournalPath() (string, error) {
	if c.Journal.Path != "" {
		return c.Journal.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "dockstrap", "journal.db"), nil
}
