package ssh

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/pkg/sftp"
	"github.com/rs/zerolog/log"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// WriteFile places content at a path on the remote host. The content is
// uploaded via SFTP to a staging file in /tmp and then moved into place
// with sudo, since repository files live under root-owned directories.
func (r *Runner) WriteFile(ctx context.Context, remotePath string, content []byte, mode uint32) error {
	sshClient, err := r.client.sshClient()
	if err != nil {
		return err
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return &TransportError{Op: "sftp", Err: err, IsTemporary: true}
	}
	defer sftpClient.Close()

	staging := path.Join("/tmp", fmt.Sprintf("dockstrap-%s", uuid.NewString()))

	f, err := sftpClient.Create(staging)
	if err != nil {
		return &TransportError{Op: "upload", Err: err}
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return &TransportError{Op: "upload", Err: err}
	}
	if err := f.Close(); err != nil {
		return &TransportError{Op: "upload", Err: err}
	}

	log.Debug().Str("path", remotePath).Str("staging", staging).Msg("staged remote file")

	move, err := r.Run(ctx, runner.Command{
		Name: "mv",
		Args: []string{staging, remotePath},
		Sudo: true,
	})
	if err != nil {
		return err
	}
	if !move.Ok() {
		return fmt.Errorf("move %s into place: exit %d: %s", remotePath, move.ExitCode, move.Stderr)
	}

	chmod, err := r.Run(ctx, runner.Command{
		Name: "chmod",
		Args: []string{fmt.Sprintf("%o", mode), remotePath},
		Sudo: true,
	})
	if err != nil {
		return err
	}
	if !chmod.Ok() {
		return fmt.Errorf("chmod %s: exit %d: %s", remotePath, chmod.ExitCode, chmod.Stderr)
	}
	return nil
}
