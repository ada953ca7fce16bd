package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/storage"
)

type serviceFixture struct {
	svc         *Service
	store       *storage.LocalStore
	transcriber *fakeTranscriber
	notifier    *fakeNotifier
	extractor   *fakeExtractor
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	runs := newRunRepo(t)
	extractor := &fakeExtractor{report: sampleReport()}
	transcriber := &fakeTranscriber{transcript: &entities.Transcript{
		Utterances: []entities.Utterance{
			{Speaker: "A", Text: "Let's ship by Friday."},
			{Speaker: "B", Text: "I'll draft the email."},
		},
	}}
	notifier := &fakeNotifier{}

	pipeline := NewPipeline(
		NewAnalysisStage(extractor, nil),
		NewPersistenceStage(store, nil, "reports", nil),
		runs, nil, nil,
	)
	svc := NewService(Dependencies{
		Pipeline:    pipeline,
		Transcriber: transcriber,
		Store:       store,
		Runs:        runs,
		Notifier:    notifier,
		Prefix:      "reports",
		Timeout:     time.Minute,
	})
	return &serviceFixture{svc: svc, store: store, transcriber: transcriber, notifier: notifier, extractor: extractor}
}

func TestService_ProcessAudio(t *testing.T) {
	f := newServiceFixture(t)

	res, err := f.svc.ProcessAudio(context.Background(), AudioRequest{
		MeetingID: "m-1",
		Filename:  "standup.MP3",
		Audio:     strings.NewReader("fake audio"),
		Title:     "Standup",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.RunStateDone, res.State)
	assert.Equal(t, 1, f.transcriber.calls)
	assert.Equal(t, "Speaker A: Let's ship by Friday.\nSpeaker B: I'll draft the email.", f.extractor.last.Transcript)
	assert.Equal(t, "Standup", f.extractor.last.Hints.Title)
}

func TestService_ProcessAudio_UnsupportedFormat(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.ProcessAudio(context.Background(), AudioRequest{
		Filename: "notes.txt",
		Audio:    strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, ErrUnsupportedAudio)
	assert.Equal(t, 0, f.transcriber.calls)
}

func TestService_ProcessAudio_TranscriptionFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.transcriber.err = errors.New("upload rejected")

	res, err := f.svc.ProcessAudio(context.Background(), AudioRequest{
		Filename: "call.wav",
		Audio:    strings.NewReader("x"),
	})
	assert.Nil(t, res)

	stage, ok := entities.FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, entities.StageTranscription, stage)
	assert.ErrorIs(t, err, entities.ErrTranscriptionFailure)
	assert.Contains(t, err.Error(), "upload rejected")
	assert.Equal(t, 0, f.extractor.calls)
}

func TestService_ProcessAudio_EmptyTranscript(t *testing.T) {
	f := newServiceFixture(t)
	f.transcriber.transcript = &entities.Transcript{Text: "   "}

	_, err := f.svc.ProcessAudio(context.Background(), AudioRequest{
		Filename: "silence.ogg",
		Audio:    strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, entities.ErrTranscriptionFailure)
	assert.Equal(t, 0, f.extractor.calls)
}

func TestService_ProcessAudio_NoTranscriber(t *testing.T) {
	svc := NewService(Dependencies{})
	_, err := svc.ProcessAudio(context.Background(), AudioRequest{Filename: "a.wav", Audio: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestService_ProcessTranscript_GeneratesMeetingID(t *testing.T) {
	f := newServiceFixture(t)

	res, err := f.svc.ProcessTranscript(context.Background(), TranscriptRequest{Transcript: "Alice: hi"})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(res.MeetingID)
	assert.NoError(t, parseErr)
	_, statErr := os.Stat(filepath.Join(f.store.Root(), "reports", res.MeetingID+".json"))
	assert.NoError(t, statErr)
}

func TestService_ProcessTranscript_InvalidMeetingID(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.ProcessTranscript(context.Background(), TranscriptRequest{MeetingID: "../etc", Transcript: "x"})
	assert.ErrorIs(t, err, entities.ErrInvalidMeetingID)
	assert.Equal(t, 0, f.extractor.calls)
}

func TestService_ReadBack(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.ProcessTranscript(ctx, TranscriptRequest{MeetingID: "older", Transcript: "x"})
	require.NoError(t, err)
	// mtime resolution on some filesystems is coarse
	older := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(f.store.Root(), "reports", "older.json"), older, older))
	_, err = f.svc.ProcessTranscript(ctx, TranscriptRequest{MeetingID: "newer", Transcript: "x"})
	require.NoError(t, err)

	stored, err := f.svc.GetReport(ctx, "older")
	require.NoError(t, err)
	assert.Equal(t, sampleReport(), stored.Report)

	raw, err := f.svc.DownloadReport(ctx, "older")
	require.NoError(t, err)
	want, err := sampleReport().MarshalRecord()
	require.NoError(t, err)
	assert.Equal(t, want, raw)

	recent, err := f.svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "newer", recent[0].MeetingID)
	assert.Equal(t, "older", recent[1].MeetingID)
	assert.Equal(t, "Launch sync", recent[0].Title)

	latest, err := f.svc.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", latest.MeetingID)

	_, err = f.svc.GetReport(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrReportNotFound)
}

func TestService_LatestReport_IgnoresStrayFiles(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.ProcessTranscript(ctx, TranscriptRequest{MeetingID: "m1", Transcript: "x"})
	require.NoError(t, err)
	older := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(f.store.Root(), "reports", "m1.json"), older, older))
	require.NoError(t, os.WriteFile(filepath.Join(f.store.Root(), "reports", "README.md"), []byte("notes"), 0o644))

	latest, err := f.svc.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", latest.MeetingID)

	recent, err := f.svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestService_LatestReport_Empty(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.LatestReport(context.Background())
	assert.ErrorIs(t, err, entities.ErrReportNotFound)
}

func TestService_ListRecent_UsesIndex(t *testing.T) {
	index := newFakeIndex()
	require.NoError(t, index.Upsert(context.Background(), &entities.ReportIndexEntry{
		MeetingID: "indexed",
		Title:     "From index",
		Location:  "s3://bucket/reports/indexed.json",
	}))
	svc := NewService(Dependencies{Store: failingStore{err: errors.New("store down")}, Index: index, Prefix: "reports"})

	recent, err := svc.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "From index", recent[0].Title)
}

func TestService_SendReport(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.ProcessTranscript(ctx, TranscriptRequest{MeetingID: "m-1", Transcript: "x"})
	require.NoError(t, err)
	// the pipeline never notifies on its own
	assert.Equal(t, 0, f.notifier.calls)

	res, err := f.svc.SendReport(ctx, "m-1", []string{" alice@example.com ", "", "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.calls)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, f.notifier.recipients)
	assert.Equal(t, "Launch sync", f.notifier.report.MeetingTitle)
	assert.Equal(t, 202, res.StatusCode)

	_, err = f.svc.SendReport(ctx, "m-1", nil)
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = f.svc.SendReport(ctx, "missing", []string{"a@example.com"})
	assert.ErrorIs(t, err, entities.ErrReportNotFound)
}

func TestService_SendReport_NotConfigured(t *testing.T) {
	svc := NewService(Dependencies{})
	_, err := svc.SendReport(context.Background(), "m-1", []string{"a@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestService_Runs(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	res, err := f.svc.ProcessTranscript(ctx, TranscriptRequest{MeetingID: "m-1", SessionID: "sess-9", Transcript: "x"})
	require.NoError(t, err)

	run, err := f.svc.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, entities.RunStateDone, run.State)

	runs, err := f.svc.ListSessionRuns(ctx, "sess-9", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	_, err = f.svc.GetRun(ctx, uuid.New())
	assert.ErrorIs(t, err, entities.ErrRunNotFound)
}

func TestIsSupportedAudio(t *testing.T) {
	for _, name := range []string{"a.wav", "b.MP3", "c.m4a", "d.ogg"} {
		assert.True(t, IsSupportedAudio(name), name)
	}
	for _, name := range []string{"a.flac", "b", "c.txt", "wav"} {
		assert.False(t, IsSupportedAudio(name), name)
	}
}
