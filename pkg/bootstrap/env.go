package bootstrap

import (
	"github.com/rs/zerolog"

	"github.com/dockstrap/dockstrap/pkg/apt"
	"github.com/dockstrap/dockstrap/pkg/config"
	"github.com/dockstrap/dockstrap/pkg/facts"
	"github.com/dockstrap/dockstrap/pkg/prompt"
	"github.com/dockstrap/dockstrap/pkg/runner"
	"github.com/dockstrap/dockstrap/pkg/stores"
	"github.com/dockstrap/dockstrap/pkg/systemd"
	"github.com/dockstrap/dockstrap/pkg/telemetry"
)

// Env carries the shared dependencies and accumulated state the stages
// operate on. Stages mutate only the Facts field; everything else is
// wired once by the caller.
type Env struct {
	Cfg      *config.Config
	Runner   runner.Runner
	Apt      *apt.Manager
	Systemd  *systemd.Manager
	Prompter prompt.Prompter
	Logger   zerolog.Logger
	Tracer   *telemetry.Tracer

	// Journal is optional; nil disables run recording.
	Journal stores.Journal

	// Target names the host being bootstrapped, "local" or user@host.
	Target string

	// Facts is populated by the environment validation stage.
	Facts *facts.Host
}

// NewEnv wires an Env from its dependencies, constructing the package
// and service managers on top of the runner.
func NewEnv(cfg *config.Config, r runner.Runner, p prompt.Prompter, logger zerolog.Logger, tracer *telemetry.Tracer) *Env {
	return &Env{
		Cfg:      cfg,
		Runner:   r,
		Apt:      apt.NewManager(r),
		Systemd:  systemd.NewManager(r),
		Prompter: p,
		Logger:   logger,
		Tracer:   tracer,
		Target:   "local",
	}
}
