package facts

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// fakeRunner serves canned stdout keyed by the command name.
type fakeRunner struct {
	stdout map[string]string
}

func (f *fakeRunner) Run(_ context.Context, cmd runner.Command) (*runner.Result, error) {
	out, ok := f.stdout[cmd.Name]
	if !ok {
		return &runner.Result{ExitCode: 1}, nil
	}
	return &runner.Result{ExitCode: 0, Stdout: out}, nil
}

func (f *fakeRunner) WriteFile(context.Context, string, []byte, uint32) error {
	return nil
}

func TestCollect(t *testing.T) {
	r := &fakeRunner{stdout: map[string]string{
		"cat": `PRETTY_NAME="Debian GNU/Linux 12 (bookworm)"
NAME="Debian GNU/Linux"
VERSION_ID="12"
VERSION="12 (bookworm)"
VERSION_CODENAME=bookworm
ID=debian
`,
		"dpkg":     "arm64\n",
		"uname":    "6.1.0-25-arm64\n",
		"hostname": "pi\n",
	}}

	host, err := Collect(context.Background(), r)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	if host.ID != "debian" {
		t.Errorf("ID = %q, want debian", host.ID)
	}
	if host.Codename != "bookworm" {
		t.Errorf("Codename = %q, want bookworm", host.Codename)
	}
	if host.Arch != "arm64" {
		t.Errorf("Arch = %q, want arm64", host.Arch)
	}
	if host.Kernel != "6.1.0-25-arm64" || host.Hostname != "pi" {
		t.Errorf("kernel/hostname = %q/%q", host.Kernel, host.Hostname)
	}
}

func TestCollectCodenameFallback(t *testing.T) {
	// Ubuntu 20.04 and older do not carry VERSION_CODENAME.
	r := &fakeRunner{stdout: map[string]string{
		"cat": `NAME="Ubuntu"
VERSION="20.04.6 LTS (Focal Fossa)"
ID=ubuntu
VERSION_ID="20.04"
PRETTY_NAME="Ubuntu 20.04.6 LTS"
`,
	}}

	host, err := Collect(context.Background(), r)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if host.Codename != "focal" {
		t.Errorf("Codename = %q, want focal", host.Codename)
	}
}

func TestCollectUnreadableOSRelease(t *testing.T) {
	r := &fakeRunner{stdout: map[string]string{}}
	if _, err := Collect(context.Background(), r); err == nil {
		t.Fatal("Collect() = nil error with unreadable os-release")
	}
}

func TestParseOSRelease(t *testing.T) {
	fields := ParseOSRelease(`# comment
ID=ubuntu
PRETTY_NAME="Ubuntu 24.04.1 LTS"
EMPTY=
QUOTED='single'

not-a-pair
`)

	want := map[string]string{
		"ID":          "ubuntu",
		"PRETTY_NAME": "Ubuntu 24.04.1 LTS",
		"EMPTY":       "",
		"QUOTED":      "single",
	}
	for key, value := range want {
		if fields[key] != value {
			t.Errorf("fields[%q] = %q, want %q", key, fields[key], value)
		}
	}
	if _, ok := fields["not-a-pair"]; ok {
		t.Error("malformed line produced a field")
	}
}

func TestCodenameFromVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"20.04.6 LTS (Focal Fossa)", "focal"},
		{"12 (bookworm)", "bookworm"},
		{"22.04.4 LTS (Jammy Jellyfish)", "jammy"},
		{"no parentheses", ""},
		{"empty ()", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := codenameFromVersion(tt.version); got != tt.want {
			t.Errorf("codenameFromVersion(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestHostJSONFieldNames(t *testing.T) {
	// The facts command serializes this struct; keep the wire names
	// stable.
	host := Host{ID: "ubuntu", Codename: "noble"}
	data, err := json.Marshal(host)
	if err != nil {
		t.Fatalf("marshal host: %v", err)
	}
	for _, want := range []string{`"id"`, `"codename"`, `"pretty_name"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("serialized host missing %s field", want)
		}
	}
}
