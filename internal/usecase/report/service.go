package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/domain/repositories"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/metrics"
)

// Service errors
var (
	ErrUnsupportedAudio = errors.New("unsupported audio format")
	ErrNotConfigured    = errors.New("feature not configured")
	ErrNoRecipients     = errors.New("at least one recipient is required")
)

// SupportedAudioExtensions lists accepted upload formats
var SupportedAudioExtensions = []string{"wav", "mp3", "m4a", "ogg"}

// Transcriber converts recorded audio into a transcript
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (*entities.Transcript, error)
}

// Notifier delivers a report to recipients
type Notifier interface {
	Send(ctx context.Context, meetingID string, report entities.MeetingReport, recipients []string) (*entities.NotifyResult, error)
}

// AudioRequest asks for a report from an audio recording
type AudioRequest struct {
	MeetingID string
	SessionID string
	Filename  string
	Audio     io.Reader
	Title     string
	Attendees []string
}

// TranscriptRequest asks for a report from transcript text
type TranscriptRequest struct {
	MeetingID  string
	SessionID  string
	Transcript string
	Title      string
	Attendees  []string
}

// StoredReport is a persisted report read back from the store
type StoredReport struct {
	MeetingID string                 `json:"meeting_id"`
	Report    entities.MeetingReport `json:"report"`
}

// Dependencies wires a Service. Transcriber, Index, Runs, Notifier and
// Metrics are optional.
type Dependencies struct {
	Pipeline    *Pipeline
	Transcriber Transcriber
	Store       repositories.ReportStore
	Index       repositories.ReportIndex
	Runs        repositories.RunRepository
	Notifier    Notifier
	Metrics     *metrics.Metrics
	Prefix      string
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Service is the entry point used by the HTTP API and the CLI
type Service struct {
	pipeline    *Pipeline
	transcriber Transcriber
	store       repositories.ReportStore
	index       repositories.ReportIndex
	runs        repositories.RunRepository
	notifier    Notifier
	metrics     *metrics.Metrics
	prefix      string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewService constructs the report service
func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pipeline:    deps.Pipeline,
		transcriber: deps.Transcriber,
		store:       deps.Store,
		index:       deps.Index,
		runs:        deps.Runs,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		prefix:      deps.Prefix,
		timeout:     deps.Timeout,
		logger:      logger,
	}
}

// IsSupportedAudio reports whether filename has an accepted extension
func IsSupportedAudio(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, allowed := range SupportedAudioExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Transcribe converts audio to a transcript without running the pipeline
func (s *Service) Transcribe(ctx context.Context, filename string, audio io.Reader) (*entities.Transcript, error) {
	if s.transcriber == nil {
		return nil, fmt.Errorf("transcription: %w", ErrNotConfigured)
	}
	if !IsSupportedAudio(filename) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedAudio, filename, strings.Join(SupportedAudioExtensions, ", "))
	}

	started := time.Now()
	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err == nil && transcript.IsEmpty() {
		err = errors.New("transcript is empty")
	}
	s.metrics.ObserveStage(entities.StageTranscription, err == nil, time.Since(started))
	if err != nil {
		s.logger.Error("❌ Transcription failed", zap.String("filename", filename), zap.Error(err))
		return nil, &entities.StageError{
			Stage: entities.StageTranscription,
			Err:   fmt.Errorf("%w: %w", entities.ErrTranscriptionFailure, err),
		}
	}

	s.logger.Info("📝 Audio transcribed",
		zap.String("filename", filename),
		zap.Int("utterances", len(transcript.Utterances)),
		zap.Int64("duration_ms", transcript.DurationMs),
	)
	return transcript, nil
}

// ProcessAudio transcribes the recording and runs the pipeline on it
func (s *Service) ProcessAudio(ctx context.Context, req AudioRequest) (*Result, error) {
	meetingID, err := s.meetingID(req.MeetingID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	transcript, err := s.Transcribe(ctx, req.Filename, req.Audio)
	if err != nil {
		return nil, err
	}

	return s.pipeline.Run(ctx, Input{
		MeetingID:  meetingID,
		SessionID:  req.SessionID,
		Transcript: transcript.Content(),
		Title:      req.Title,
		Attendees:  req.Attendees,
	})
}

// ProcessTranscript runs the pipeline on transcript text
func (s *Service) ProcessTranscript(ctx context.Context, req TranscriptRequest) (*Result, error) {
	meetingID, err := s.meetingID(req.MeetingID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.pipeline.Run(ctx, Input{
		MeetingID:  meetingID,
		SessionID:  req.SessionID,
		Transcript: req.Transcript,
		Title:      req.Title,
		Attendees:  req.Attendees,
	})
}

// GetReport reads a persisted report
func (s *Service) GetReport(ctx context.Context, meetingID string) (*StoredReport, error) {
	data, err := s.DownloadReport(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	report, err := entities.ParseMeetingReport(data)
	if err != nil {
		return nil, fmt.Errorf("stored report %s is invalid: %w", meetingID, err)
	}
	return &StoredReport{MeetingID: meetingID, Report: report}, nil
}

// DownloadReport returns the persisted record exactly as stored
func (s *Service) DownloadReport(ctx context.Context, meetingID string) ([]byte, error) {
	if err := ValidateMeetingID(meetingID); err != nil {
		return nil, err
	}
	return s.store.Read(ctx, ReportKey(s.prefix, meetingID))
}

// ListRecent lists stored reports, most recent first
func (s *Service) ListRecent(ctx context.Context, limit int) ([]entities.ReportSummary, error) {
	if s.index != nil {
		entries, err := s.index.ListRecent(ctx, limit)
		if err == nil {
			out := make([]entities.ReportSummary, 0, len(entries))
			for _, e := range entries {
				out = append(out, entities.ReportSummary{
					MeetingID: e.MeetingID,
					Title:     e.Title,
					Location:  e.Location,
					UpdatedAt: e.UpdatedAt,
				})
			}
			return out, nil
		}
		s.logger.Warn("⚠️ Report index unavailable, listing from store", zap.Error(err))
	}

	objects, err := s.store.ListRecent(ctx, s.prefix, limit)
	if err != nil {
		return nil, err
	}
	out := make([]entities.ReportSummary, 0, len(objects))
	for _, obj := range objects {
		name := path.Base(obj.Key)
		meetingID := strings.TrimSuffix(name, ".json")
		if meetingID == name || ValidateMeetingID(meetingID) != nil {
			continue
		}
		summary := entities.ReportSummary{
			MeetingID: meetingID,
			Location:  obj.Location,
			UpdatedAt: obj.ModifiedAt,
		}
		if data, err := s.store.Read(ctx, obj.Key); err == nil {
			if r, err := entities.ParseMeetingReport(data); err == nil {
				summary.Title = r.MeetingTitle
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

// LatestReport returns the most recently stored report
func (s *Service) LatestReport(ctx context.Context) (*StoredReport, error) {
	recent, err := s.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, fmt.Errorf("%w: no reports stored yet", entities.ErrReportNotFound)
	}
	return s.GetReport(ctx, recent[0].MeetingID)
}

// SendReport emails a stored report. It is only ever called on request.
func (s *Service) SendReport(ctx context.Context, meetingID string, recipients []string) (*entities.NotifyResult, error) {
	if s.notifier == nil {
		return nil, fmt.Errorf("email: %w", ErrNotConfigured)
	}
	cleaned := cleanAttendees(recipients)
	if len(cleaned) == 0 {
		return nil, ErrNoRecipients
	}

	stored, err := s.GetReport(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	res, err := s.notifier.Send(ctx, meetingID, stored.Report, cleaned)
	if err != nil {
		s.logger.Error("❌ Failed to send report",
			zap.String("meeting_id", meetingID),
			zap.Strings("recipients", cleaned),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("📧 Report sent",
		zap.String("meeting_id", meetingID),
		zap.Int("recipients", len(cleaned)),
	)
	return res, nil
}

// GetRun returns the tracked state of a run
func (s *Service) GetRun(ctx context.Context, runID uuid.UUID) (*entities.PipelineRun, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run tracking: %w", ErrNotConfigured)
	}
	return s.runs.Get(ctx, runID)
}

// ListSessionRuns returns the runs started by a session, newest first
func (s *Service) ListSessionRuns(ctx context.Context, sessionID string, limit int) ([]*entities.PipelineRun, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run tracking: %w", ErrNotConfigured)
	}
	return s.runs.ListBySession(ctx, sessionID, limit)
}

func (s *Service) meetingID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.NewString(), nil
	}
	if err := ValidateMeetingID(id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
