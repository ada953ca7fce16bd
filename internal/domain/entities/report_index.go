package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ReportIndexEntry is the searchable row kept for every stored report
type ReportIndexEntry struct {
	MeetingID       string         `json:"meeting_id" gorm:"type:varchar(128);primary_key"`
	Title           string         `json:"meeting_title" gorm:"type:text;not null"`
	Date            string         `json:"date" gorm:"type:varchar(100)"`
	Location        string         `json:"location" gorm:"type:text;not null"`
	AttendeeCount   int            `json:"attendee_count" gorm:"type:integer;default:0"`
	ActionItemCount int            `json:"action_item_count" gorm:"type:integer;default:0"`
	Report          datatypes.JSON `json:"report" gorm:"type:jsonb"`
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"autoUpdateTime;index"`
}

// TableName specifies the table name for GORM
func (ReportIndexEntry) TableName() string {
	return "report_index"
}

// NewReportIndexEntry builds the index row for a stored report
func NewReportIndexEntry(meetingID, location string, report MeetingReport) (*ReportIndexEntry, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	return &ReportIndexEntry{
		MeetingID:       meetingID,
		Title:           report.MeetingTitle,
		Date:            report.Date,
		Location:        location,
		AttendeeCount:   len(report.Attendees),
		ActionItemCount: len(report.ActionItems),
		Report:          datatypes.JSON(body),
	}, nil
}

// ReportSummary is a listing entry for a stored report
type ReportSummary struct {
	MeetingID string    `json:"meeting_id"`
	Title     string    `json:"meeting_title,omitempty"`
	Location  string    `json:"location"`
	UpdatedAt time.Time `json:"updated_at"`
}
