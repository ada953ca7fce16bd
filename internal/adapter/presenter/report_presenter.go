package presenter

import (
	"github.com/johnquangdev/meeting-reporter/internal/adapter/dto/report"
	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	reportuc "github.com/johnquangdev/meeting-reporter/internal/usecase/report"
)

var priorityBadges = map[entities.Priority]string{
	entities.PriorityHigh:   "🔴 High",
	entities.PriorityMedium: "🟡 Medium",
	entities.PriorityLow:    "🟢 Low",
}

// PriorityBadge returns the display badge of a priority
func PriorityBadge(p entities.Priority) string {
	if badge, ok := priorityBadges[p]; ok {
		return badge
	}
	return string(p)
}

// ToReportResponse converts a MeetingReport to its display form
func ToReportResponse(meetingID string, r entities.MeetingReport) *report.ReportResponse {
	items := make([]report.ActionItemResponse, 0, len(r.ActionItems))
	for _, item := range r.ActionItems {
		view := report.ActionItemResponse{
			Task:     item.Task,
			Assignee: item.AssigneeOr("Unassigned"),
			Priority: string(item.Priority),
			Badge:    PriorityBadge(item.Priority),
		}
		if item.Deadline != nil {
			view.Deadline = *item.Deadline
		}
		items = append(items, view)
	}

	byPriority := make(map[string]int, 3)
	for p, n := range r.PriorityCounts() {
		byPriority[string(p)] = n
	}

	r = r.Clone()
	return &report.ReportResponse{
		MeetingID:     meetingID,
		MeetingTitle:  r.MeetingTitle,
		Date:          r.Date,
		Attendees:     r.Attendees,
		Summary:       r.Summary,
		KeyTopics:     r.KeyTopics,
		ActionItems:   items,
		DecisionsMade: r.DecisionsMade,
		Stats: report.ReportStats{
			Attendees:   len(r.Attendees),
			KeyTopics:   len(r.KeyTopics),
			ActionItems: len(r.ActionItems),
			Decisions:   len(r.DecisionsMade),
			ByPriority:  byPriority,
		},
	}
}

// ToRunResponse converts a pipeline result. A report is only attached
// when analysis produced a complete one.
func ToRunResponse(res *reportuc.Result) *report.RunResponse {
	if res == nil {
		return nil
	}
	out := &report.RunResponse{
		RunID:       res.RunID.String(),
		MeetingID:   res.MeetingID,
		State:       string(res.State),
		Location:    res.Location,
		Message:     res.Message,
		FailedStage: string(res.FailedStage),
	}
	if res.Report != nil {
		out.Report = ToReportResponse(res.MeetingID, *res.Report)
	}
	return out
}

// ToRunStatusResponse converts a tracked run
func ToRunStatusResponse(run *entities.PipelineRun) *report.RunStatusResponse {
	if run == nil {
		return nil
	}
	return &report.RunStatusResponse{
		RunID:       run.ID.String(),
		MeetingID:   run.MeetingID,
		State:       string(run.State),
		FailedStage: string(run.FailedStage),
		LastError:   run.LastError,
		Location:    run.Location,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
}

// ToRunStatusResponses converts a list of tracked runs
func ToRunStatusResponses(runs []*entities.PipelineRun) []*report.RunStatusResponse {
	out := make([]*report.RunStatusResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, ToRunStatusResponse(run))
	}
	return out
}

// ToReportListItems converts stored report summaries
func ToReportListItems(summaries []entities.ReportSummary) []report.ReportListItem {
	out := make([]report.ReportListItem, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, report.ReportListItem{
			MeetingID:    s.MeetingID,
			MeetingTitle: s.Title,
			Location:     s.Location,
			UpdatedAt:    s.UpdatedAt,
		})
	}
	return out
}
