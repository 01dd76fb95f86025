// Package dockerapi probes a freshly installed engine over its API
// socket, going one level deeper than the CLI version check: a daemon
// ping plus the negotiated server version prove the socket, the daemon
// and the API handshake all work.
package dockerapi

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

// Probe is the result of a deep engine check.
type Probe struct {
	Host          string `json:"host"`
	ServerVersion string `json:"server_version"`
	APIVersion    string `json:"api_version"`
	OS            string `json:"os"`
	Arch          string `json:"arch"`
}

// DeepVerify connects to the engine API and queries daemon identity.
// An empty host uses Docker's usual defaults (DOCKER_HOST or the local
// control socket).
func DeepVerify(ctx context.Context, host string) (*Probe, error) {
	opts := []client.Opt{
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	moby, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create engine client: %w", err)
	}
	defer moby.Close()

	if _, err := moby.Ping(ctx); err != nil {
		return nil, fmt.Errorf("engine ping: %w", err)
	}

	version, err := moby.ServerVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine version query: %w", err)
	}

	return &Probe{
		Host:          moby.DaemonHost(),
		ServerVersion: version.Version,
		APIVersion:    version.APIVersion,
		OS:            version.Os,
		Arch:          version.Arch,
	}, nil
}
