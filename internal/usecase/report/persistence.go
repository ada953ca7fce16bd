package report

import (
	"context"
	"fmt"
	"path"
	"regexp"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/domain/repositories"
)

// Persist result statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var meetingIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// PersistResult is the outcome of one persistence attempt
type PersistResult struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	// Err is the cause of an error result
	Err error `json:"-"`
}

// OK reports whether the record was written
func (r PersistResult) OK() bool {
	return r.Status == StatusSuccess
}

// ValidateMeetingID checks that id maps to exactly one storage key
func ValidateMeetingID(id string) error {
	if !meetingIDRe.MatchString(id) {
		return fmt.Errorf("%w: %q", entities.ErrInvalidMeetingID, id)
	}
	return nil
}

// ReportKey returns the storage key of a meeting's record
func ReportKey(prefix, meetingID string) string {
	return path.Join(prefix, meetingID+".json")
}

// PersistenceStage writes validated reports to the report store and,
// when configured, to the searchable index
type PersistenceStage struct {
	store  repositories.ReportStore
	index  repositories.ReportIndex
	prefix string
	logger *zap.Logger
}

// NewPersistenceStage creates a persistence stage. index may be nil.
func NewPersistenceStage(store repositories.ReportStore, index repositories.ReportIndex, prefix string, logger *zap.Logger) *PersistenceStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersistenceStage{store: store, index: index, prefix: prefix, logger: logger}
}

// Persist stores the report under meetingID. Every failure is reported
// through the result; the call never panics.
func (p *PersistenceStage) Persist(ctx context.Context, meetingID string, report entities.MeetingReport) PersistResult {
	if err := ValidateMeetingID(meetingID); err != nil {
		return errorResult(err)
	}
	if err := report.Validate(); err != nil {
		return errorResult(err)
	}

	data, err := report.MarshalRecord()
	if err != nil {
		return errorResult(fmt.Errorf("failed to serialize report: %w", err))
	}

	key := ReportKey(p.prefix, meetingID)
	location, err := p.store.Write(ctx, key, data)
	if err != nil {
		p.logger.Error("❌ Failed to write report",
			zap.String("meeting_id", meetingID),
			zap.String("key", key),
			zap.Error(err),
		)
		return errorResult(err)
	}

	p.updateIndex(ctx, meetingID, location, report)

	p.logger.Info("✅ Report saved",
		zap.String("meeting_id", meetingID),
		zap.String("location", location),
		zap.Int("bytes", len(data)),
	)
	return PersistResult{
		Status:   StatusSuccess,
		Message:  "Report saved successfully to " + key,
		Location: location,
	}
}

func (p *PersistenceStage) updateIndex(ctx context.Context, meetingID, location string, report entities.MeetingReport) {
	if p.index == nil {
		return
	}
	entry, err := entities.NewReportIndexEntry(meetingID, location, report)
	if err == nil {
		err = p.index.Upsert(ctx, entry)
	}
	if err != nil {
		p.logger.Warn("⚠️ Failed to update report index",
			zap.String("meeting_id", meetingID),
			zap.Error(err),
		)
	}
}

func errorResult(err error) PersistResult {
	return PersistResult{Status: StatusError, Message: err.Error(), Err: err}
}
