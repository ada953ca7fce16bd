package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
)

// Hints are optional facts supplied by the caller. They win over inference.
type Hints struct {
	Title     string
	Attendees []string
}

// ExtractionRequest is what an Extractor turns into a report
type ExtractionRequest struct {
	// Text is the assembled analysis context (hints + transcript)
	Text       string
	Transcript string
	Hints      Hints
}

// Extractor produces a candidate meeting report from a transcript
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (entities.MeetingReport, error)
}

// AnalysisInput is the input of a single analysis
type AnalysisInput struct {
	Transcript string
	Title      string
	Attendees  []string
}

// AnalysisStage turns transcript text into a validated MeetingReport.
// It has no access to storage or notification.
type AnalysisStage struct {
	extractor Extractor
	logger    *zap.Logger
}

// NewAnalysisStage creates an analysis stage backed by extractor
func NewAnalysisStage(extractor Extractor, logger *zap.Logger) *AnalysisStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisStage{extractor: extractor, logger: logger}
}

// Analyze returns a report that satisfies the schema, or an error wrapping
// entities.ErrMalformedOutput. No partial report is ever returned.
func (a *AnalysisStage) Analyze(ctx context.Context, in AnalysisInput) (entities.MeetingReport, error) {
	transcript := strings.TrimSpace(in.Transcript)
	if transcript == "" {
		return entities.MeetingReport{}, fmt.Errorf("%w: transcript is empty", entities.ErrMalformedOutput)
	}
	if err := ctx.Err(); err != nil {
		return entities.MeetingReport{}, fmt.Errorf("%w: %w", entities.ErrMalformedOutput, err)
	}

	hints := Hints{Title: strings.TrimSpace(in.Title), Attendees: cleanAttendees(in.Attendees)}
	req := ExtractionRequest{
		Text:       BuildAnalysisText(transcript, hints),
		Transcript: transcript,
		Hints:      hints,
	}

	report, err := a.extractor.Extract(ctx, req)
	if err != nil {
		a.logger.Warn("⚠️ Extraction failed", zap.Error(err))
		return entities.MeetingReport{}, fmt.Errorf("%w: %w", entities.ErrMalformedOutput, err)
	}
	if err := report.Validate(); err != nil {
		a.logger.Warn("⚠️ Extracted report failed validation", zap.Error(err))
		return entities.MeetingReport{}, fmt.Errorf("%w: %w", entities.ErrMalformedOutput, err)
	}

	a.logger.Info("✅ Report extracted",
		zap.String("meeting_title", report.MeetingTitle),
		zap.Int("action_items", len(report.ActionItems)),
		zap.Int("decisions", len(report.DecisionsMade)),
	)
	return report.Clone(), nil
}

// BuildAnalysisText assembles the text handed to extractors
func BuildAnalysisText(transcript string, hints Hints) string {
	var parts []string
	if hints.Title != "" {
		parts = append(parts, "Meeting Title: "+hints.Title)
	}
	if len(hints.Attendees) > 0 {
		parts = append(parts, "Attendees: "+strings.Join(hints.Attendees, ", "))
	}
	parts = append(parts, "Transcript:\n"+transcript)
	return strings.Join(parts, "\n\n")
}

func cleanAttendees(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
