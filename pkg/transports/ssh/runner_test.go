package ssh

import (
	"strings"
	"testing"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

func TestBuildCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		cmd      runner.Command
		password string
		want     string
	}{
		{
			name: "plain command",
			cmd:  runner.Command{Name: "hostname"},
			want: "hostname",
		},
		{
			name: "arguments quoted when needed",
			cmd:  runner.Command{Name: "sh", Args: []string{"-c", "echo hi"}},
			want: "sh -c 'echo hi'",
		},
		{
			name: "sudo wraps the whole line",
			cmd:  runner.Command{Name: "apt-get", Args: []string{"update"}, Sudo: true},
			want: "sudo apt-get update",
		},
		{
			name: "env survives the sudo boundary",
			cmd: runner.Command{
				Name: "apt-get",
				Args: []string{"install", "-y", "curl"},
				Env:  []string{"DEBIAN_FRONTEND=noninteractive"},
				Sudo: true,
			},
			want: "sudo env DEBIAN_FRONTEND=noninteractive apt-get install -y curl",
		},
		{
			name:     "password fed to sudo -S",
			cmd:      runner.Command{Name: "systemctl", Args: []string{"start", "docker"}, Sudo: true},
			password: "hunter2",
			want:     "echo hunter2 | sudo -S systemctl start docker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildCommandLine(tt.cmd, tt.password); got != tt.want {
				t.Errorf("buildCommandLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCommandLinePasswordQuoting(t *testing.T) {
	cmd := runner.Command{Name: "true", Sudo: true}
	line := buildCommandLine(cmd, "pa ss'word")
	if !strings.HasPrefix(line, "echo 'pa ss'\\''word' | sudo -S") {
		t.Errorf("password not quoted: %q", line)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", "''"},
		{"has space", "'has space'"},
		{"semi;colon", "'semi;colon'"},
		{"dollar$var", "'dollar$var'"},
		{"single'quote", `'single'\''quote'`},
		{"/etc/apt/keyrings/docker.gpg", "/etc/apt/keyrings/docker.gpg"},
		{"-f=${Status}", "'-f=${Status}'"},
	}

	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
