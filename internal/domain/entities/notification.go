package entities

import "time"

// NotifyResult describes an email delivery of a report
type NotifyResult struct {
	MeetingID  string    `json:"meeting_id"`
	Recipients []string  `json:"recipients"`
	StatusCode int       `json:"status_code"`
	MessageID  string    `json:"message_id,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}
