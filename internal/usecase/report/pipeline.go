package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/domain/repositories"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-reporter/pkg/runcontext"
)

// Analyzer is the analysis step of a run
type Analyzer interface {
	Analyze(ctx context.Context, in AnalysisInput) (entities.MeetingReport, error)
}

// Persister is the persistence step of a run
type Persister interface {
	Persist(ctx context.Context, meetingID string, report entities.MeetingReport) PersistResult
}

// Input is one pipeline invocation
type Input struct {
	MeetingID  string
	SessionID  string
	Transcript string
	Title      string
	Attendees  []string
}

// Result describes how a run ended
type Result struct {
	RunID       uuid.UUID               `json:"run_id"`
	MeetingID   string                  `json:"meeting_id"`
	State       entities.RunState       `json:"state"`
	Report      *entities.MeetingReport `json:"report,omitempty"`
	Location    string                  `json:"location,omitempty"`
	Message     string                  `json:"message"`
	FailedStage entities.Stage          `json:"failed_stage,omitempty"`
}

// Pipeline runs analysis then persistence, strictly in that order.
// It never retries a stage and never persists after a failed analysis.
type Pipeline struct {
	analyzer  Analyzer
	persister Persister
	runs      repositories.RunRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewPipeline creates an orchestrator. runs and m may be nil.
func NewPipeline(analyzer Analyzer, persister Persister, runs repositories.RunRepository, m *metrics.Metrics, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		analyzer:  analyzer,
		persister: persister,
		runs:      runs,
		metrics:   m,
		logger:    logger,
	}
}

// Run executes one pipeline run. On failure the returned error is a
// *entities.StageError and the Result still describes the run.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	runID := uuid.New()
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = runcontext.GetSessionID(ctx)
	}

	ctx, cancel := runcontext.RunBegin(ctx, runID, in.MeetingID, 0)
	defer cancel()

	log := p.logger.With(
		zap.String("run_id", runID.String()),
		zap.String("meeting_id", in.MeetingID),
		zap.String("session_id", sessionID),
	)

	run := entities.NewPipelineRun(runID, sessionID, in.MeetingID)
	result := &Result{RunID: runID, MeetingID: in.MeetingID}
	p.record(ctx, log, run)

	log.Info("🚀 Pipeline run started")

	// Analysis
	p.advance(ctx, log, run, run.MarkAsAnalyzing)
	started := time.Now()
	report, err := p.analyzer.Analyze(ctx, AnalysisInput{
		Transcript: in.Transcript,
		Title:      in.Title,
		Attendees:  in.Attendees,
	})
	p.metrics.ObserveStage(entities.StageAnalysis, err == nil, time.Since(started))
	if err != nil {
		if !errors.Is(err, entities.ErrMalformedOutput) {
			err = fmt.Errorf("%w: %w", entities.ErrMalformedOutput, err)
		}
		p.advance(ctx, log, run, func() error { return run.MarkAsAnalysisFailed(err.Error()) })
		return p.fail(log, run, result, entities.StageAnalysis, err)
	}
	p.advance(ctx, log, run, run.MarkAsAnalyzed)
	result.Report = &report

	// Persistence
	p.advance(ctx, log, run, run.MarkAsPersisting)
	started = time.Now()
	saved := p.persister.Persist(ctx, in.MeetingID, report)
	p.metrics.ObserveStage(entities.StagePersistence, saved.OK(), time.Since(started))
	if !saved.OK() {
		cause := saved.Err
		if cause == nil {
			cause = errors.New(saved.Message)
		}
		err := fmt.Errorf("%w: %w", entities.ErrPersistenceFailure, cause)
		p.advance(ctx, log, run, func() error { return run.MarkAsPersistFailed(saved.Message) })
		return p.fail(log, run, result, entities.StagePersistence, err)
	}
	p.advance(ctx, log, run, func() error { return run.MarkAsDone(saved.Location) })

	result.State = run.State
	result.Location = saved.Location
	result.Message = saved.Message
	p.metrics.RunFinished(run.State)

	log.Info("✅ Pipeline run completed",
		zap.String("location", saved.Location),
		zap.Duration("elapsed", time.Since(run.StartedAt)),
	)
	return result, nil
}

func (p *Pipeline) fail(log *zap.Logger, run *entities.PipelineRun, result *Result, stage entities.Stage, err error) (*Result, error) {
	result.State = run.State
	result.FailedStage = stage
	result.Message = err.Error()
	p.metrics.RunFinished(run.State)

	log.Error("❌ Pipeline run failed",
		zap.String("stage", string(stage)),
		zap.Error(err),
	)
	return result, &entities.StageError{Stage: stage, Err: err}
}

// advance applies a state transition and records the new snapshot
func (p *Pipeline) advance(ctx context.Context, log *zap.Logger, run *entities.PipelineRun, mark func() error) {
	if err := mark(); err != nil {
		log.Error("❌ Run state transition rejected",
			zap.String("state", string(run.State)),
			zap.Error(err),
		)
		return
	}
	p.record(ctx, log, run)
}

// record saves the run snapshot. Tracking failures never fail the run.
func (p *Pipeline) record(ctx context.Context, log *zap.Logger, run *entities.PipelineRun) {
	if p.runs == nil {
		return
	}
	snapshot := run.Snapshot()
	if err := p.runs.Save(context.WithoutCancel(ctx), &snapshot); err != nil {
		log.Warn("⚠️ Failed to record run state",
			zap.String("state", string(run.State)),
			zap.Error(err),
		)
	}
}
