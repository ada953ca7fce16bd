package report

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/domain/repositories"
	pkgai "github.com/johnquangdev/meeting-reporter/pkg/ai"
)

func sampleReport() entities.MeetingReport {
	item := entities.NewActionItem("Draft the launch email")
	item.Assignee = entities.StringPtr("Bob")
	item.Deadline = entities.StringPtr("Tuesday")
	item.Priority = entities.PriorityHigh

	return entities.MeetingReport{
		MeetingTitle:  "Launch sync",
		Date:          "2024-05-01",
		Attendees:     []string{"Alice", "Bob"},
		Summary:       "The team agreed on the launch plan.",
		KeyTopics:     []string{"launch", "email"},
		ActionItems:   []entities.ActionItem{item},
		DecisionsMade: []string{"Ship on Friday"},
	}
}

type fakeExtractor struct {
	report entities.MeetingReport
	err    error
	calls  int
	last   ExtractionRequest
}

func (f *fakeExtractor) Extract(_ context.Context, req ExtractionRequest) (entities.MeetingReport, error) {
	f.calls++
	f.last = req
	return f.report, f.err
}

type fakeCompleter struct {
	responses []string
	errs      []error
	calls     int
	messages  []pkgai.Message
	jsonMode  bool
}

func (f *fakeCompleter) Complete(_ context.Context, messages []pkgai.Message, jsonMode bool) (string, error) {
	i := f.calls
	f.calls++
	f.messages = messages
	f.jsonMode = jsonMode
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

type fakePersister struct {
	result PersistResult
	calls  int
}

func (f *fakePersister) Persist(_ context.Context, meetingID string, _ entities.MeetingReport) PersistResult {
	f.calls++
	return f.result
}

type failingStore struct {
	err error
}

func (s failingStore) Write(context.Context, string, []byte) (string, error) {
	return "", s.err
}

func (s failingStore) Read(context.Context, string) ([]byte, error) {
	return nil, s.err
}

func (s failingStore) ListRecent(context.Context, string, int) ([]repositories.ReportObject, error) {
	return nil, s.err
}

type fakeIndex struct {
	mu      sync.Mutex
	entries map[string]*entities.ReportIndexEntry
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: map[string]*entities.ReportIndexEntry{}}
}

func (f *fakeIndex) Upsert(_ context.Context, entry *entities.ReportIndexEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries[entry.MeetingID] = entry
	return nil
}

func (f *fakeIndex) Get(_ context.Context, meetingID string) (*entities.ReportIndexEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[meetingID]; ok {
		return e, nil
	}
	return nil, entities.ErrReportNotFound
}

func (f *fakeIndex) ListRecent(context.Context, int) ([]*entities.ReportIndexEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*entities.ReportIndexEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

type fakeTranscriber struct {
	transcript *entities.Transcript
	err        error
	calls      int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio io.Reader) (*entities.Transcript, error) {
	f.calls++
	if _, err := io.ReadAll(audio); err != nil {
		return nil, err
	}
	return f.transcript, f.err
}

type fakeNotifier struct {
	calls      int
	recipients []string
	report     entities.MeetingReport
}

func (f *fakeNotifier) Send(_ context.Context, meetingID string, report entities.MeetingReport, recipients []string) (*entities.NotifyResult, error) {
	f.calls++
	f.recipients = recipients
	f.report = report
	if len(recipients) == 0 {
		return nil, errors.New("no recipients")
	}
	return &entities.NotifyResult{MeetingID: meetingID, Recipients: recipients, StatusCode: 202}, nil
}
