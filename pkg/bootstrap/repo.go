package bootstrap

import (
	"context"
	"fmt"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// configureRepository registers the vendor's signing key and apt source.
// There is no rollback on partial failure; the pipeline halts and leaves
// whatever was registered in place.
func configureRepository(ctx context.Context, env *Env) Result {
	repo := env.Cfg.Repo
	host := env.Facts
	if host == nil {
		return Fatalf("host facts unavailable; validation stage did not run")
	}
	if host.Arch == "" {
		return Fatalf("could not determine package architecture")
	}
	if host.Codename == "" {
		return Fatalf("could not determine release codename")
	}

	mkdir, err := env.Runner.Run(ctx, runner.Command{
		Name: "install",
		Args: []string{"-m", "0755", "-d", repo.KeyringDir},
		Sudo: true,
	})
	if err != nil {
		return Fatal(fmt.Errorf("create keyring directory: %w", err))
	}
	if !mkdir.Ok() {
		return Fatalf("create keyring directory %s: exit %d: %s", repo.KeyringDir, mkdir.ExitCode, mkdir.Stderr)
	}

	keyURL := fmt.Sprintf("%s/%s/gpg", repo.VendorURL, host.ID)
	fetch, err := env.Runner.Run(ctx, runner.Command{
		Name: "sh",
		Args: []string{"-c", fmt.Sprintf("curl -fsSL %s | gpg --dearmor --yes -o %s", keyURL, repo.KeyPath)},
		Sudo: true,
	})
	if err != nil {
		return Fatal(fmt.Errorf("download signing key: %w", err))
	}
	if !fetch.Ok() {
		return Fatalf("download signing key from %s: exit %d: %s", keyURL, fetch.ExitCode, fetch.Stderr)
	}

	chmod, err := env.Runner.Run(ctx, runner.Command{
		Name: "chmod",
		Args: []string{"a+r", repo.KeyPath},
		Sudo: true,
	})
	if err != nil {
		return Fatal(fmt.Errorf("mark signing key readable: %w", err))
	}
	if !chmod.Ok() {
		return Fatalf("mark signing key readable: exit %d: %s", chmod.ExitCode, chmod.Stderr)
	}

	line := SourceLine(repo.VendorURL, host.ID, host.Arch, host.Codename, repo.KeyPath)
	if err := env.Runner.WriteFile(ctx, repo.ListPath, []byte(line+"\n"), 0o644); err != nil {
		return Fatal(fmt.Errorf("write repository definition: %w", err))
	}
	env.Logger.Info().Str("path", repo.ListPath).Str("source", line).Msg("repository registered")

	// The fresh repository must resolve; a failed refresh here means the
	// engine packages cannot be found.
	refresh, err := env.Apt.Update(ctx)
	if err != nil {
		return Fatal(fmt.Errorf("refresh package index: %w", err))
	}
	if !refresh.Ok() {
		return Fatalf("package index refresh failed after adding repository (exit %d)", refresh.ExitCode)
	}

	return Success("vendor repository configured")
}

// SourceLine renders the single-line apt source definition referencing
// the signing key, package architecture and release codename.
func SourceLine(vendorURL, distroID, arch, codename, keyPath string) string {
	return fmt.Sprintf("deb [arch=%s signed-by=%s] %s/%s %s stable",
		arch, keyPath, vendorURL, distroID, codename)
}
