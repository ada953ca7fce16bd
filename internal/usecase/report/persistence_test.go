package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/storage"
)

func newLocalStage(t *testing.T) (*PersistenceStage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	return NewPersistenceStage(store, nil, "reports", nil), dir
}

func TestPersistenceStage_Success(t *testing.T) {
	stage, dir := newLocalStage(t)
	report := sampleReport()

	res := stage.Persist(context.Background(), "m-1", report)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "Report saved successfully to reports/m-1.json", res.Message)
	assert.Equal(t, filepath.Join(dir, "reports", "m-1.json"), res.Location)

	data, err := os.ReadFile(res.Location)
	require.NoError(t, err)
	want, err := report.MarshalRecord()
	require.NoError(t, err)
	assert.Equal(t, want, data)

	parsed, err := entities.ParseMeetingReport(data)
	require.NoError(t, err)
	assert.Equal(t, report, parsed)
}

func TestPersistenceStage_Idempotent(t *testing.T) {
	stage, _ := newLocalStage(t)
	report := sampleReport()

	first := stage.Persist(context.Background(), "m-1", report)
	require.True(t, first.OK())
	before, err := os.ReadFile(first.Location)
	require.NoError(t, err)

	second := stage.Persist(context.Background(), "m-1", report)
	require.True(t, second.OK())
	after, err := os.ReadFile(second.Location)
	require.NoError(t, err)

	assert.Equal(t, first.Location, second.Location)
	assert.Equal(t, before, after)
}

func TestPersistenceStage_Overwrite(t *testing.T) {
	stage, _ := newLocalStage(t)

	first := sampleReport()
	require.True(t, stage.Persist(context.Background(), "m-1", first).OK())

	second := sampleReport()
	second.Summary = "Revised summary."
	res := stage.Persist(context.Background(), "m-1", second)
	require.True(t, res.OK())

	data, err := os.ReadFile(res.Location)
	require.NoError(t, err)
	parsed, err := entities.ParseMeetingReport(data)
	require.NoError(t, err)
	assert.Equal(t, "Revised summary.", parsed.Summary)
}

func TestPersistenceStage_InvalidMeetingID(t *testing.T) {
	stage, dir := newLocalStage(t)

	for _, id := range []string{"", "../escape", "a/b", ".hidden", "has space"} {
		res := stage.Persist(context.Background(), id, sampleReport())
		assert.Equal(t, StatusError, res.Status, id)
		assert.ErrorIs(t, res.Err, entities.ErrInvalidMeetingID, id)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPersistenceStage_InvalidReport(t *testing.T) {
	stage, dir := newLocalStage(t)
	bad := sampleReport()
	bad.MeetingTitle = "  "

	res := stage.Persist(context.Background(), "m-1", bad)
	assert.Equal(t, StatusError, res.Status)
	assert.ErrorIs(t, res.Err, entities.ErrValidationFailure)
	assert.Contains(t, res.Message, "meeting_title")

	_, err := os.Stat(filepath.Join(dir, "reports", "m-1.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestPersistenceStage_StoreFailure(t *testing.T) {
	stage := NewPersistenceStage(failingStore{err: errors.New("disk full")}, nil, "reports", nil)

	res := stage.Persist(context.Background(), "m-1", sampleReport())
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "disk full", res.Message)
	assert.Empty(t, res.Location)
}

func TestPersistenceStage_Index(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	index := newFakeIndex()
	stage := NewPersistenceStage(store, index, "reports", nil)

	res := stage.Persist(context.Background(), "m-1", sampleReport())
	require.True(t, res.OK())

	entry, err := index.Get(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, "Launch sync", entry.Title)
	assert.Equal(t, res.Location, entry.Location)
	assert.Equal(t, 1, entry.ActionItemCount)
}

func TestPersistenceStage_IndexFailureIgnored(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	index := newFakeIndex()
	index.err = errors.New("db down")
	stage := NewPersistenceStage(store, index, "reports", nil)

	res := stage.Persist(context.Background(), "m-1", sampleReport())
	assert.True(t, res.OK())
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "reports/m-1.json", ReportKey("reports", "m-1"))
	assert.Equal(t, "m-1.json", ReportKey("", "m-1"))
}
