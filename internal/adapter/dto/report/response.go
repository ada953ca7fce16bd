package report

import "time"

// SessionResponse is returned when a session is issued
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ActionItemResponse is an action item prepared for display
type ActionItemResponse struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	Deadline string `json:"deadline,omitempty"`
	Priority string `json:"priority"`
	Badge    string `json:"badge"`
}

// ReportStats summarises a report
type ReportStats struct {
	Attendees   int            `json:"attendees"`
	KeyTopics   int            `json:"key_topics"`
	ActionItems int            `json:"action_items"`
	Decisions   int            `json:"decisions"`
	ByPriority  map[string]int `json:"by_priority"`
}

// ReportResponse is the report view shown after a run
type ReportResponse struct {
	MeetingID     string               `json:"meeting_id,omitempty"`
	MeetingTitle  string               `json:"meeting_title"`
	Date          string               `json:"date"`
	Attendees     []string             `json:"attendees"`
	Summary       string               `json:"summary"`
	KeyTopics     []string             `json:"key_topics"`
	ActionItems   []ActionItemResponse `json:"action_items"`
	DecisionsMade []string             `json:"decisions_made"`
	Stats         ReportStats          `json:"stats"`
}

// RunResponse describes a finished pipeline run
type RunResponse struct {
	RunID       string          `json:"run_id"`
	MeetingID   string          `json:"meeting_id"`
	State       string          `json:"state"`
	Location    string          `json:"location,omitempty"`
	Message     string          `json:"message,omitempty"`
	FailedStage string          `json:"failed_stage,omitempty"`
	Report      *ReportResponse `json:"report,omitempty"`
}

// RunStatusResponse is the tracked state of a run
type RunStatusResponse struct {
	RunID       string     `json:"run_id"`
	MeetingID   string     `json:"meeting_id"`
	State       string     `json:"state"`
	FailedStage string     `json:"failed_stage,omitempty"`
	LastError   *string    `json:"last_error,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ReportListItem is one entry of GET /v1/reports
type ReportListItem struct {
	MeetingID    string    `json:"meeting_id"`
	MeetingTitle string    `json:"meeting_title,omitempty"`
	Location     string    `json:"location"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SendReportResponse confirms an email delivery
type SendReportResponse struct {
	MeetingID  string    `json:"meeting_id"`
	Recipients []string  `json:"recipients"`
	MessageID  string    `json:"message_id,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}
