package operations

import (
	"sync"
	"time"

	"gdpetl/pkg/contracts/domain"
)

// RunStatus represents the overall pipeline run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState is the shared state of one pipeline run. Each step consumes
// the artifacts of the previous step and deposits its own; the state is
// threaded explicitly through step execution, never held as process
// globals, so steps stay independently testable.
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	Error error `json:"error,omitempty"`

	// Stage artifacts, immutable once set.
	rawTable   *domain.RawTable
	rates      domain.RateTable
	result     *domain.ConvertedTable
	outputPath string
}

// NewRunState creates a new pending run state
func NewRunState(id string) *RunState {
	return &RunState{
		ID:     id,
		Status: RunStatusPending,
		Steps:  make(map[string]*StepState),
	}
}

// Start marks the run as running
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusFailed
	s.Error = err
}

// GetStep returns the state for a step ID, creating it if needed
func (s *RunState) GetStep(id, name string) *StepState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step, ok := s.Steps[id]; ok {
		return step
	}
	step := NewStepState(id, name)
	s.Steps[id] = step
	return step
}

// SetRawTable deposits the collected raw table
func (s *RunState) SetRawTable(raw *domain.RawTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawTable = raw
}

// RawTable returns the collected raw table, nil before extraction
func (s *RunState) RawTable() *domain.RawTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawTable
}

// SetRates deposits the normalized rate table
func (s *RunState) SetRates(rates domain.RateTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = rates
}

// Rates returns the normalized rate table
func (s *RunState) Rates() domain.RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates
}

// SetResult deposits the converted table
func (s *RunState) SetResult(result *domain.ConvertedTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

// Result returns the converted table, nil before transformation
func (s *RunState) Result() *domain.ConvertedTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// SetOutputPath records where the load step wrote the output file
func (s *RunState) SetOutputPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputPath = path
}

// OutputPath returns the written output file path, empty before load
func (s *RunState) OutputPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outputPath
}
