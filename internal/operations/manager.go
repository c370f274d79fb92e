package operations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"gdpetl/internal/infrastructure"
)

// Manager sequences the pipeline steps of one run. Execution is
// strictly sequential: each step consumes the previous step's artifacts
// from the shared run state, and the first failure aborts the run
// before any later step touches storage.
type Manager struct {
	steps  []Step
	logger *slog.Logger
}

// NewManager creates a manager for the given ordered steps.
func NewManager(logger *slog.Logger, steps ...Step) *Manager {
	return &Manager{
		steps:  steps,
		logger: logger,
	}
}

// Execute runs every registered step in order against a fresh run
// state. Paired <step>-start / <step>-end events are logged at each
// phase boundary; they are observational only and never affect control
// flow. The run state is returned for both success and failure.
func (m *Manager) Execute(ctx context.Context) (*RunState, error) {
	state := NewRunState(uuid.New().String())
	ctx = infrastructure.WithRunID(ctx, state.ID)

	logger := m.logger.With(slog.String("run_id", state.ID))
	state.Start()
	logger.Info("pipeline run starting", slog.Int("steps", len(m.steps)))

	for i, step := range m.steps {
		stepState := state.GetStep(step.ID(), step.Name())

		if err := ctx.Err(); err != nil {
			stepState.Skip()
			state.Fail(err)
			return state, err
		}

		stepState.Start()
		logger.Info(step.ID() + "-start")

		if err := step.Execute(ctx, state); err != nil {
			stepState.Fail(err)
			logger.Error(step.ID()+"-failed",
				slog.String("error", err.Error()),
				slog.Duration("duration", stepState.Duration()))

			for _, remaining := range m.steps[i+1:] {
				state.GetStep(remaining.ID(), remaining.Name()).Skip()
			}
			state.Fail(err)
			return state, fmt.Errorf("step %s failed: %w", describe(step), err)
		}

		stepState.Complete()
		logger.Info(step.ID()+"-end",
			slog.Duration("duration", stepState.Duration()))
	}

	state.Complete()
	logger.Info("pipeline run completed",
		slog.String("output", state.OutputPath()))
	return state, nil
}
