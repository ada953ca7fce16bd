package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
)

// ReportIndexRepository handles report index rows
type ReportIndexRepository struct {
	db *gorm.DB
}

// NewReportIndexRepository creates a new report index repository
func NewReportIndexRepository(db *gorm.DB) *ReportIndexRepository {
	return &ReportIndexRepository{db: db}
}

// Upsert inserts the row or replaces the one with the same meeting id
func (r *ReportIndexRepository) Upsert(ctx context.Context, entry *entities.ReportIndexEntry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "date", "location", "attendee_count", "action_item_count", "report", "updated_at"}),
		}).
		Create(entry).Error
}

// Get retrieves the row for a meeting
func (r *ReportIndexRepository) Get(ctx context.Context, meetingID string) (*entities.ReportIndexEntry, error) {
	var entry entities.ReportIndexEntry
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", entities.ErrReportNotFound, meetingID)
		}
		return nil, err
	}
	return &entry, nil
}

// ListRecent retrieves the most recently updated rows
func (r *ReportIndexRepository) ListRecent(ctx context.Context, limit int) ([]*entities.ReportIndexEntry, error) {
	var entries []*entities.ReportIndexEntry
	query := r.db.WithContext(ctx).Order("updated_at DESC").Order("meeting_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
