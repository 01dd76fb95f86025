// Package bootstrap implements the ordered installation pipeline: ten
// named stages executed strictly in sequence, each returning a typed
// result, with the driver halting on the first fatal outcome.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dockstrap/dockstrap/pkg/stores"
	"github.com/dockstrap/dockstrap/pkg/telemetry"
)

// ErrDeclined is returned when the operator voluntarily aborts the
// pipeline; callers translate it to exit code 0.
var ErrDeclined = errors.New("operator declined to proceed")

// Stage is one named step of the pipeline.
type Stage struct {
	Name string
	Run  func(ctx context.Context, env *Env) Result
}

// Pipeline executes stages in order against a shared Env.
type Pipeline struct {
	stages []Stage
	env    *Env
}

// New builds the full ten-stage installation pipeline.
func New(env *Env) *Pipeline {
	return &Pipeline{
		env: env,
		stages: []Stage{
			{Name: "validate-environment", Run: validateEnvironment},
			{Name: "check-connectivity", Run: checkConnectivity},
			{Name: "clean-legacy-packages", Run: cleanLegacyPackages},
			{Name: "update-system", Run: updateSystem},
			{Name: "install-prerequisites", Run: installPrerequisites},
			{Name: "configure-repository", Run: configureRepository},
			{Name: "install-engine", Run: installEngine},
			{Name: "activate-service", Run: activateService},
			{Name: "verify-installation", Run: verifyInstallation},
			{Name: "configure-permissions", Run: configurePermissions},
		},
	}
}

// NewWithStages builds a pipeline over an explicit stage list. Used by
// the verify command and by tests.
func NewWithStages(env *Env, stages []Stage) *Pipeline {
	return &Pipeline{env: env, stages: stages}
}

// VerifyStages returns only the verification stage, for re-checking an
// existing installation.
func VerifyStages() []Stage {
	return []Stage{{Name: "verify-installation", Run: verifyInstallation}}
}

// Execute runs the stages in order. It returns nil on full completion,
// ErrDeclined when the operator aborts voluntarily, and the fatal
// stage's error otherwise.
func (p *Pipeline) Execute(ctx context.Context) error {
	env := p.env
	runID := uuid.NewString()

	var runSpanEnd func(error)
	if env.Tracer != nil {
		spanCtx, span := env.Tracer.StartRunSpan(ctx, runID)
		ctx = spanCtx
		runSpanEnd = func(err error) {
			if err != nil {
				telemetry.RecordError(span, err)
			} else {
				telemetry.RecordSuccess(span)
			}
			span.End()
		}
	}

	if env.Journal != nil {
		err := env.Journal.BeginRun(ctx, &stores.Run{
			ID:        runID,
			Target:    env.Target,
			Status:    stores.RunStatusRunning,
			StartedAt: time.Now(),
		})
		if err != nil {
			env.Logger.Warn().Err(err).Msg("journal unavailable; continuing without run recording")
			env.Journal = nil
		}
	}

	env.Logger.Info().
		Str("run_id", runID).
		Str("target", env.Target).
		Int("stages", len(p.stages)).
		Msg("starting bootstrap pipeline")

	for i, stage := range p.stages {
		result, err := p.runStage(ctx, runID, i, stage)
		if err != nil {
			p.finishRun(ctx, runID, stores.RunStatusFailed, err)
			if runSpanEnd != nil {
				runSpanEnd(err)
			}
			return err
		}
		if result.Status == StatusCleanExit {
			env.Logger.Info().Str("stage", stage.Name).Msg(result.Message)
			p.finishRun(ctx, runID, stores.RunStatusAborted, nil)
			if runSpanEnd != nil {
				runSpanEnd(nil)
			}
			return ErrDeclined
		}
	}

	p.finishRun(ctx, runID, stores.RunStatusCompleted, nil)
	if runSpanEnd != nil {
		runSpanEnd(nil)
	}

	env.Logger.Info().Str("run_id", runID).Msg("bootstrap pipeline completed")
	return nil
}

// runStage executes one stage, logging its result and recording it to
// the journal. A fatal result is converted to an error.
func (p *Pipeline) runStage(ctx context.Context, runID string, position int, stage Stage) (Result, error) {
	env := p.env

	stageCtx := ctx
	var spanEnd func(error)
	if env.Tracer != nil {
		spanCtx, span := env.Tracer.StartStageSpan(ctx, runID, stage.Name)
		stageCtx = spanCtx
		spanEnd = func(err error) {
			if err != nil {
				telemetry.RecordError(span, err)
			} else {
				telemetry.RecordSuccess(span)
			}
			span.End()
		}
	}

	env.Logger.Info().
		Int("step", position+1).
		Int("of", len(p.stages)).
		Str("stage", stage.Name).
		Msg("stage starting")

	start := time.Now()
	result := stage.Run(stageCtx, env)
	duration := time.Since(start)

	var stageErr error
	switch result.Status {
	case StatusSuccess:
		env.Logger.Info().Str("stage", stage.Name).Dur("duration", duration).Msg(result.Message)
	case StatusSkipped:
		env.Logger.Info().Str("stage", stage.Name).Msgf("skipped: %s", result.Message)
	case StatusWarning:
		env.Logger.Warn().Str("stage", stage.Name).Msg(result.Message)
	case StatusCleanExit:
		// Logged by the driver.
	case StatusFatal:
		stageErr = fmt.Errorf("stage %s: %w", stage.Name, result.Err)
		env.Logger.Error().Str("stage", stage.Name).Err(result.Err).Msg("stage failed")
	}

	if spanEnd != nil {
		spanEnd(stageErr)
	}
	p.recordStage(ctx, runID, position, stage.Name, result, duration)

	return result, stageErr
}

func (p *Pipeline) recordStage(ctx context.Context, runID string, position int, name string, result Result, duration time.Duration) {
	if p.env.Journal == nil {
		return
	}

	status := stores.StageStatusCompleted
	message := result.Message
	switch result.Status {
	case StatusSkipped, StatusCleanExit:
		status = stores.StageStatusSkipped
	case StatusWarning:
		status = stores.StageStatusWarning
	case StatusFatal:
		status = stores.StageStatusFailed
		if result.Err != nil {
			message = result.Err.Error()
		}
	}

	err := p.env.Journal.RecordStage(ctx, &stores.StageRecord{
		RunID:    runID,
		Position: position,
		Stage:    name,
		Status:   status,
		Message:  message,
		Duration: duration,
	})
	if err != nil {
		p.env.Logger.Warn().Err(err).Str("stage", name).Msg("failed to journal stage result")
	}
}

func (p *Pipeline) finishRun(ctx context.Context, runID string, status stores.RunStatus, runErr error) {
	if p.env.Journal == nil {
		return
	}
	if err := p.env.Journal.FinishRun(ctx, runID, status, runErr); err != nil {
		p.env.Logger.Warn().Err(err).Msg("failed to journal run completion")
	}
}
