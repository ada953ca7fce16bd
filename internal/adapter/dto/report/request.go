package report

// AnalyzeRequest is the body of POST /v1/meetings/analyze
type AnalyzeRequest struct {
	MeetingID  string   `json:"meeting_id" validate:"omitempty,max=128"`
	Transcript string   `json:"transcript" validate:"required"`
	Title      string   `json:"title" validate:"omitempty,max=200"`
	Attendees  []string `json:"attendees" validate:"omitempty,max=100"`
}

// SendReportRequest is the body of POST /v1/reports/:id/send
type SendReportRequest struct {
	Recipients []string `json:"recipients" validate:"required,min=1,max=50,dive,email"`
}

// ListQuery holds the paging parameters of list endpoints
type ListQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
