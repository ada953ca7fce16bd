package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
)

func TestAnalysisStage_Success(t *testing.T) {
	extractor := &fakeExtractor{report: sampleReport()}
	stage := NewAnalysisStage(extractor, nil)

	report, err := stage.Analyze(context.Background(), AnalysisInput{
		Transcript: "  Alice: hello  ",
		Title:      "Launch sync",
		Attendees:  []string{"Alice", " ", "Bob", "Alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, sampleReport(), report)

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, "Alice: hello", extractor.last.Transcript)
	assert.Equal(t, []string{"Alice", "Bob"}, extractor.last.Hints.Attendees)
	assert.Equal(t, "Meeting Title: Launch sync\n\nAttendees: Alice, Bob\n\nTranscript:\nAlice: hello", extractor.last.Text)
}

func TestAnalysisStage_ReturnsIndependentCopy(t *testing.T) {
	extractor := &fakeExtractor{report: sampleReport()}
	stage := NewAnalysisStage(extractor, nil)

	report, err := stage.Analyze(context.Background(), AnalysisInput{Transcript: "x"})
	require.NoError(t, err)

	report.Attendees[0] = "Mallory"
	*report.ActionItems[0].Assignee = "Mallory"
	assert.Equal(t, "Alice", extractor.report.Attendees[0])
	assert.Equal(t, "Bob", *extractor.report.ActionItems[0].Assignee)
}

func TestAnalysisStage_EmptyTranscript(t *testing.T) {
	for _, transcript := range []string{"", "   ", "\n\t"} {
		extractor := &fakeExtractor{report: sampleReport()}
		stage := NewAnalysisStage(extractor, nil)

		_, err := stage.Analyze(context.Background(), AnalysisInput{Transcript: transcript})
		assert.ErrorIs(t, err, entities.ErrMalformedOutput)
		assert.Equal(t, 0, extractor.calls)
	}
}

func TestAnalysisStage_ExtractorError(t *testing.T) {
	cause := errors.New("model unavailable")
	stage := NewAnalysisStage(&fakeExtractor{err: cause}, nil)

	_, err := stage.Analyze(context.Background(), AnalysisInput{Transcript: "x"})
	assert.ErrorIs(t, err, entities.ErrMalformedOutput)
	assert.ErrorIs(t, err, cause)
}

func TestAnalysisStage_SchemaViolation(t *testing.T) {
	bad := sampleReport()
	bad.ActionItems[0].Priority = "urgent"
	stage := NewAnalysisStage(&fakeExtractor{report: bad}, nil)

	report, err := stage.Analyze(context.Background(), AnalysisInput{Transcript: "x"})
	assert.ErrorIs(t, err, entities.ErrMalformedOutput)
	assert.ErrorIs(t, err, entities.ErrValidationFailure)
	assert.Equal(t, entities.MeetingReport{}, report)
}

func TestBuildAnalysisText(t *testing.T) {
	assert.Equal(t, "Transcript:\nhello", BuildAnalysisText("hello", Hints{}))
	assert.Equal(t, "Meeting Title: Sync\n\nTranscript:\nhello", BuildAnalysisText("hello", Hints{Title: "Sync"}))
}
