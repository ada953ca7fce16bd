package repositories

import (
	"context"
	"time"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
)

// ReportObject describes a stored report record
type ReportObject struct {
	Key        string
	Location   string
	ModifiedAt time.Time
}

// ReportStore is durable storage for serialized report records.
// Writes to the same key replace the previous record atomically.
type ReportStore interface {
	// Write stores data under key, creating containers as needed, and
	// returns the location of the record.
	Write(ctx context.Context, key string, data []byte) (string, error)

	// Read returns the record at key or entities.ErrReportNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// ListRecent returns up to limit records under prefix, most recent first.
	ListRecent(ctx context.Context, prefix string, limit int) ([]ReportObject, error)
}

// ReportIndex is an optional searchable index of stored reports
type ReportIndex interface {
	Upsert(ctx context.Context, entry *entities.ReportIndexEntry) error
	Get(ctx context.Context, meetingID string) (*entities.ReportIndexEntry, error)
	ListRecent(ctx context.Context, limit int) ([]*entities.ReportIndexEntry, error)
}
