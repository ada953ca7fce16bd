package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunState represents the position of a pipeline run in its lifecycle
type RunState string

const (
	RunStatePending        RunState = "pending"
	RunStateAnalyzing      RunState = "analyzing"
	RunStateAnalysisFailed RunState = "analysis_failed" // terminal
	RunStateAnalyzed       RunState = "analyzed"
	RunStatePersisting     RunState = "persisting"
	RunStatePersistFailed  RunState = "persist_failed" // terminal, report kept in memory
	RunStateDone           RunState = "done"           // terminal
)

var runTransitions = map[RunState][]RunState{
	RunStatePending:    {RunStateAnalyzing},
	RunStateAnalyzing:  {RunStateAnalyzed, RunStateAnalysisFailed},
	RunStateAnalyzed:   {RunStatePersisting},
	RunStatePersisting: {RunStateDone, RunStatePersistFailed},
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s RunState) CanTransitionTo(next RunState) bool {
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s RunState) IsTerminal() bool {
	return len(runTransitions[s]) == 0
}

// PipelineRun tracks a single transcript-to-report run
type PipelineRun struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   string     `json:"session_id,omitempty"`
	MeetingID   string     `json:"meeting_id"`
	State       RunState   `json:"state"`
	FailedStage Stage      `json:"failed_stage,omitempty"`
	LastError   *string    `json:"last_error,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewPipelineRun creates a run in the pending state
func NewPipelineRun(id uuid.UUID, sessionID, meetingID string) *PipelineRun {
	now := time.Now()
	return &PipelineRun{
		ID:        id,
		SessionID: sessionID,
		MeetingID: meetingID,
		State:     RunStatePending,
		StartedAt: now,
		UpdatedAt: now,
	}
}

func (r *PipelineRun) transition(next RunState) error {
	if !r.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.State, next)
	}
	r.State = next
	now := time.Now()
	r.UpdatedAt = now
	if next.IsTerminal() {
		r.CompletedAt = &now
	}
	return nil
}

// MarkAsAnalyzing marks the run as running the analysis stage
func (r *PipelineRun) MarkAsAnalyzing() error {
	return r.transition(RunStateAnalyzing)
}

// MarkAsAnalyzed marks the analysis stage as successful
func (r *PipelineRun) MarkAsAnalyzed() error {
	return r.transition(RunStateAnalyzed)
}

// MarkAsAnalysisFailed records an analysis failure
func (r *PipelineRun) MarkAsAnalysisFailed(errMsg string) error {
	if err := r.transition(RunStateAnalysisFailed); err != nil {
		return err
	}
	r.FailedStage = StageAnalysis
	r.LastError = &errMsg
	return nil
}

// MarkAsPersisting marks the run as running the persistence stage
func (r *PipelineRun) MarkAsPersisting() error {
	return r.transition(RunStatePersisting)
}

// MarkAsPersistFailed records a persistence failure
func (r *PipelineRun) MarkAsPersistFailed(errMsg string) error {
	if err := r.transition(RunStatePersistFailed); err != nil {
		return err
	}
	r.FailedStage = StagePersistence
	r.LastError = &errMsg
	return nil
}

// MarkAsDone records the storage location of the report
func (r *PipelineRun) MarkAsDone(location string) error {
	if err := r.transition(RunStateDone); err != nil {
		return err
	}
	r.Location = location
	return nil
}

// Snapshot returns an independent copy of the run
func (r *PipelineRun) Snapshot() PipelineRun {
	out := *r
	if r.LastError != nil {
		v := *r.LastError
		out.LastError = &v
	}
	if r.CompletedAt != nil {
		v := *r.CompletedAt
		out.CompletedAt = &v
	}
	return out
}
