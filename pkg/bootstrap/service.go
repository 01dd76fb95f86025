package bootstrap

import (
	"context"
	"fmt"
)

// activateService enables the engine's service at boot, starts it, and
// verifies it reports active. The active check polls with backoff up to
// the configured timeout; a zero timeout keeps the single instantaneous
// check.
func activateService(ctx context.Context, env *Env) Result {
	unit := env.Cfg.Service.Name

	if err := env.Systemd.Enable(ctx, unit); err != nil {
		return Fatal(fmt.Errorf("enable service: %w", err))
	}
	if err := env.Systemd.Start(ctx, unit); err != nil {
		return Fatal(fmt.Errorf("start service: %w", err))
	}
	if err := env.Systemd.WaitActive(ctx, unit, env.Cfg.Service.WaitTimeout.Std()); err != nil {
		return Fatal(fmt.Errorf("service did not become active: %w", err))
	}

	return Success(fmt.Sprintf("service %s enabled and active", unit))
}
