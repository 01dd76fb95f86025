package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockstrap/dockstrap/pkg/config"
	"github.com/dockstrap/dockstrap/pkg/runner"
	sshtransport "github.com/dockstrap/dockstrap/pkg/transports/ssh"
)

// targetRunner builds the runner for the selected target: local exec
// for an empty target, an SSH runner for user@host. The returned
// cleanup function closes the SSH connection when one was opened.
func targetRunner(ctx context.Context, cfg *config.Config, target, identity string) (runner.Runner, string, func(), error) {
	if target == "" {
		return runner.NewLocal(), "local", func() {}, nil
	}

	user, host, found := strings.Cut(target, "@")
	if !found || user == "" || host == "" {
		return nil, "", nil, fmt.Errorf("invalid target %q; expected user@host", target)
	}

	sshCfg := sshtransport.DefaultConfig(host, user)
	if cfg.SSH.Port > 0 {
		sshCfg.Port = cfg.SSH.Port
	}
	if cfg.SSH.KnownHosts != "" {
		sshCfg.KnownHostsPath = cfg.SSH.KnownHosts
	}
	sshCfg.StrictHostKeyChecking = cfg.SSH.StrictHostKey
	if cfg.SSH.ConnectTimeout > 0 {
		sshCfg.ConnectTimeout = cfg.SSH.ConnectTimeout.Std()
	}
	if cfg.SSH.CommandTimeout > 0 {
		sshCfg.CommandTimeout = cfg.SSH.CommandTimeout.Std()
	}
	if identity != "" {
		sshCfg.PrivateKeyPath = identity
	}

	client, err := sshtransport.NewClient(sshCfg)
	if err != nil {
		return nil, "", nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, "", nil, fmt.Errorf("connect to %s: %w", target, err)
	}

	cleanup := func() { _ = client.Close() }
	return sshtransport.NewRunner(client), target, cleanup, nil
}
