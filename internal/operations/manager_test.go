package operations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdpetl/internal/shared/testutil"
)

// stubStep is a minimal Step for driving the manager.
type stubStep struct {
	id   string
	err  error
	runs *[]string
}

func (s *stubStep) ID() string   { return s.id }
func (s *stubStep) Name() string { return s.id }

func (s *stubStep) Execute(_ context.Context, _ *RunState) error {
	*s.runs = append(*s.runs, s.id)
	return s.err
}

func TestManager_Execute_Sequential(t *testing.T) {
	var runs []string
	capture := testutil.NewCaptureHandler()

	manager := NewManager(capture.Logger(),
		&stubStep{id: "extract", runs: &runs},
		&stubStep{id: "transform", runs: &runs},
		&stubStep{id: "load", runs: &runs},
	)

	state, err := manager.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"extract", "transform", "load"}, runs)
	assert.Equal(t, RunStatusCompleted, state.Status)
	require.NotEmpty(t, state.ID)

	// Phase boundary events arrive paired and ordered.
	messages := capture.Messages()
	want := []string{
		"extract-start", "extract-end",
		"transform-start", "transform-end",
		"load-start", "load-end",
	}
	var phases []string
	for _, msg := range messages {
		for _, w := range want {
			if msg == w {
				phases = append(phases, msg)
			}
		}
	}
	assert.Equal(t, want, phases)
}

func TestManager_Execute_FailureAborts(t *testing.T) {
	var runs []string
	capture := testutil.NewCaptureHandler()

	manager := NewManager(capture.Logger(),
		&stubStep{id: "extract", runs: &runs},
		&stubStep{id: "transform", runs: &runs, err: fmt.Errorf("rate feed down")},
		&stubStep{id: "load", runs: &runs},
	)

	state, err := manager.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "transform")

	// Load never ran; its step state records the skip.
	assert.Equal(t, []string{"extract", "transform"}, runs)
	assert.Equal(t, RunStatusFailed, state.Status)
	assert.Equal(t, StepStatusCompleted, state.Steps["extract"].Status)
	assert.Equal(t, StepStatusFailed, state.Steps["transform"].Status)
	assert.Equal(t, StepStatusSkipped, state.Steps["load"].Status)

	// Boundary events stop at the failing phase.
	assert.Contains(t, capture.Messages(), "transform-failed")
	assert.NotContains(t, capture.Messages(), "load-start")
}

func TestManager_Execute_CancelledContext(t *testing.T) {
	var runs []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	manager := NewManager(testutil.NewCaptureHandler().Logger(),
		&stubStep{id: "extract", runs: &runs})

	state, err := manager.Execute(ctx)
	require.Error(t, err)
	assert.Empty(t, runs)
	assert.Equal(t, RunStatusFailed, state.Status)
}

func TestStepState_Transitions(t *testing.T) {
	step := NewStepState("extract", "Table Extraction")
	assert.Equal(t, StepStatusPending, step.Status)
	assert.Zero(t, step.Duration())

	step.Start()
	assert.Equal(t, StepStatusActive, step.Status)

	step.Complete()
	assert.Equal(t, StepStatusCompleted, step.Status)
	require.NotNil(t, step.EndTime)
	assert.GreaterOrEqual(t, step.Duration(), time.Duration(0))
}

func TestRunState_Artifacts(t *testing.T) {
	state := NewRunState("run-1")

	assert.Nil(t, state.RawTable())
	assert.Nil(t, state.Result())
	assert.Empty(t, state.OutputPath())

	state.SetOutputPath("/tmp/gdps_gbp.csv")
	assert.Equal(t, "/tmp/gdps_gbp.csv", state.OutputPath())
}
