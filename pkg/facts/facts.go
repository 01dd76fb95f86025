// Package facts collects identity facts about the target host: the
// os-release record, package architecture, release codename and kernel.
package facts

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// osReleasePath is the well-known host identity file.
const osReleasePath = "/etc/os-release"

// Host contains the identity facts the pipeline depends on.
type Host struct {
	// ID is the os-release ID field (e.g. "ubuntu", "debian").
	ID string `json:"id"`

	// PrettyName is the os-release PRETTY_NAME field.
	PrettyName string `json:"pretty_name"`

	// VersionID is the os-release VERSION_ID field.
	VersionID string `json:"version_id"`

	// Codename is the release codename used in apt source lines
	// (VERSION_CODENAME, e.g. "noble", "bookworm").
	Codename string `json:"codename"`

	// Arch is the dpkg package architecture (e.g. "amd64", "arm64").
	Arch string `json:"arch"`

	// Kernel is the running kernel release.
	Kernel string `json:"kernel"`

	// Hostname is the host's name.
	Hostname string `json:"hostname"`
}

// Collect gathers host facts through the given runner.
func Collect(ctx context.Context, r runner.Runner) (*Host, error) {
	release, err := r.Run(ctx, runner.Command{Name: "cat", Args: []string{osReleasePath}})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", osReleasePath, err)
	}
	if !release.Ok() {
		return nil, fmt.Errorf("read %s: exit %d: %s", osReleasePath, release.ExitCode, release.Stderr)
	}

	host := &Host{}
	fields := ParseOSRelease(release.Stdout)
	host.ID = fields["ID"]
	host.PrettyName = fields["PRETTY_NAME"]
	host.VersionID = fields["VERSION_ID"]
	host.Codename = fields["VERSION_CODENAME"]
	if host.Codename == "" {
		// Older releases carry the codename only inside VERSION, e.g.
		// VERSION="20.04.6 LTS (Focal Fossa)".
		host.Codename = codenameFromVersion(fields["VERSION"])
	}

	if arch, err := r.Run(ctx, runner.Command{Name: "dpkg", Args: []string{"--print-architecture"}}); err == nil && arch.Ok() {
		host.Arch = strings.TrimSpace(arch.Stdout)
	}
	if kernel, err := r.Run(ctx, runner.Command{Name: "uname", Args: []string{"-r"}}); err == nil && kernel.Ok() {
		host.Kernel = strings.TrimSpace(kernel.Stdout)
	}
	if name, err := r.Run(ctx, runner.Command{Name: "hostname", Args: nil}); err == nil && name.Ok() {
		host.Hostname = strings.TrimSpace(name.Stdout)
	}

	return host, nil
}

// ParseOSRelease parses the key=value contents of an os-release file.
// Values may be quoted; blank lines and comments are ignored.
func ParseOSRelease(content string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		fields[strings.TrimSpace(key)] = value
	}
	return fields
}

func codenameFromVersion(version string) string {
	open := strings.LastIndex(version, "(")
	end := strings.LastIndex(version, ")")
	if open < 0 || end <= open+1 {
		return ""
	}
	words := strings.Fields(version[open+1 : end])
	if len(words) == 0 {
		return ""
	}
	return strings.ToLower(words[0])
}
