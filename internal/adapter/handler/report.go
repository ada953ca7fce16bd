package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/errors"
	"github.com/johnquangdev/meeting-reporter/internal/adapter/dto/report"
	"github.com/johnquangdev/meeting-reporter/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/http/middleware"
	reportuc "github.com/johnquangdev/meeting-reporter/internal/usecase/report"
)

const defaultListLimit = 20

// ReportService is what the report handler needs from the use case layer
type ReportService interface {
	ProcessAudio(ctx context.Context, req reportuc.AudioRequest) (*reportuc.Result, error)
	ProcessTranscript(ctx context.Context, req reportuc.TranscriptRequest) (*reportuc.Result, error)
	GetReport(ctx context.Context, meetingID string) (*reportuc.StoredReport, error)
	DownloadReport(ctx context.Context, meetingID string) ([]byte, error)
	ListRecent(ctx context.Context, limit int) ([]entities.ReportSummary, error)
	LatestReport(ctx context.Context) (*reportuc.StoredReport, error)
	SendReport(ctx context.Context, meetingID string, recipients []string) (*entities.NotifyResult, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*entities.PipelineRun, error)
	ListSessionRuns(ctx context.Context, sessionID string, limit int) ([]*entities.PipelineRun, error)
}

// Report handles meeting processing and report HTTP requests
type Report struct {
	service ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, logger *zap.Logger) *Report {
	return &Report{
		service: service,
		logger:  logger,
	}
}

// Process handles POST /meetings/process
// @Summary      Process a meeting recording
// @Description  Transcribes an uploaded recording, analyzes it and saves the report
// @Tags         Meetings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        audio       formData  file    true   "Recording (wav, mp3, m4a, ogg)"
// @Param        title       formData  string  false  "Meeting title"
// @Param        attendees   formData  string  false  "Attendees, one per line"
// @Param        meeting_id  formData  string  false  "Meeting id"
// @Success      200  {object}  report.RunResponse
// @Failure      400  {object}  map[string]interface{}  "Unsupported audio or invalid meeting id"
// @Failure      422  {object}  map[string]interface{}  "Analysis failed"
// @Failure      502  {object}  map[string]interface{}  "Transcription failed"
// @Router       /meetings/process [post]
func (h *Report) Process(c echo.Context) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("audio file is required"))
	}
	c.Set(ctxUploadFilename, file.Filename)

	meetingID := strings.TrimSpace(c.FormValue("meeting_id"))
	c.Set(ctxMeetingID, meetingID)

	if !reportuc.IsSupportedAudio(file.Filename) {
		return HandleError(h.logger, c, fmt.Errorf("%w: %q", reportuc.ErrUnsupportedAudio, file.Filename))
	}

	src, err := file.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("unable to read uploaded file"))
	}
	defer src.Close()

	res, err := h.service.ProcessAudio(c.Request().Context(), reportuc.AudioRequest{
		MeetingID: meetingID,
		SessionID: middleware.GetSessionID(c),
		Filename:  file.Filename,
		Audio:     src,
		Title:     strings.TrimSpace(c.FormValue("title")),
		Attendees: splitLines(c.FormValue("attendees")),
	})
	return h.respondRun(c, res, err)
}

// Analyze handles POST /meetings/analyze
// @Summary      Analyze a transcript
// @Description  Runs the report pipeline on transcript text
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      report.AnalyzeRequest  true  "Transcript and hints"
// @Success      200      {object}  report.RunResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid request"
// @Failure      422      {object}  map[string]interface{}  "Analysis failed"
// @Failure      500      {object}  map[string]interface{}  "Failed to save report"
// @Router       /meetings/analyze [post]
func (h *Report) Analyze(c echo.Context) error {
	var req report.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	c.Set(ctxMeetingID, req.MeetingID)

	res, err := h.service.ProcessTranscript(c.Request().Context(), reportuc.TranscriptRequest{
		MeetingID:  req.MeetingID,
		SessionID:  middleware.GetSessionID(c),
		Transcript: req.Transcript,
		Title:      req.Title,
		Attendees:  req.Attendees,
	})
	return h.respondRun(c, res, err)
}

// respondRun reports a pipeline outcome. A failed run still returns its
// state and, after a persistence failure, the report it produced.
func (h *Report) respondRun(c echo.Context, res *reportuc.Result, err error) error {
	if err != nil {
		if res == nil {
			return HandleError(h.logger, c, err)
		}
		return HandleErrorWithData(h.logger, c, err, presenter.ToRunResponse(res))
	}
	return HandleSuccess(h.logger, c, presenter.ToRunResponse(res))
}

// List handles GET /reports
// @Summary      List reports
// @Tags         Reports
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of reports (1-100)"
// @Success      200    {array}   report.ReportListItem
// @Router       /reports [get]
func (h *Report) List(c echo.Context) error {
	var q report.ListQuery
	if err := c.Bind(&q); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&q); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}

	summaries, err := h.service.ListRecent(c.Request().Context(), q.Limit)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToReportListItems(summaries))
}

// Latest handles GET /reports/latest
// @Summary      Most recent report
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  report.ReportResponse
// @Failure      404  {object}  map[string]interface{}  "No reports stored yet"
// @Router       /reports/latest [get]
func (h *Report) Latest(c echo.Context) error {
	stored, err := h.service.LatestReport(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToReportResponse(stored.MeetingID, stored.Report))
}

// Get handles GET /reports/:id
// @Summary      Get a report
// @Tags         Reports
// @Produce      json
// @Param        id   path      string  true  "Meeting id"
// @Success      200  {object}  report.ReportResponse
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting id"
// @Failure      404  {object}  map[string]interface{}  "Report not found"
// @Router       /reports/{id} [get]
func (h *Report) Get(c echo.Context) error {
	stored, err := h.service.GetReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToReportResponse(stored.MeetingID, stored.Report))
}

// Download handles GET /reports/:id/download
// @Summary      Download a report
// @Description  Returns the persisted JSON record as an attachment
// @Tags         Reports
// @Produce      application/json
// @Param        id   path  string  true  "Meeting id"
// @Success      200  {file}  file
// @Router       /reports/{id}/download [get]
func (h *Report) Download(c echo.Context) error {
	meetingID := c.Param("id")
	data, err := h.service.DownloadReport(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", meetingID+".json"))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// Send handles POST /reports/:id/send
// @Summary      Email a report
// @Tags         Reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Meeting id"
// @Param        request  body      report.SendReportRequest  true  "Recipients"
// @Success      200      {object}  report.SendReportResponse
// @Failure      503      {object}  map[string]interface{}  "Email is not configured"
// @Router       /reports/{id}/send [post]
func (h *Report) Send(c echo.Context) error {
	var req report.SendReportRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	res, err := h.service.SendReport(c.Request().Context(), c.Param("id"), req.Recipients)
	if err != nil {
		if mapError(c, err).Code == errors.ErrorCode_INTERNAL {
			err = errors.ErrReportSendFailed(err)
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report.SendReportResponse{
		MeetingID:  res.MeetingID,
		Recipients: res.Recipients,
		MessageID:  res.MessageID,
		SentAt:     res.SentAt,
	})
}

// GetRun handles GET /runs/:id
// @Summary      Pipeline run status
// @Tags         Runs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Run id (UUID)"
// @Success      200  {object}  report.RunStatusResponse
// @Failure      404  {object}  map[string]interface{}  "Run not found"
// @Router       /runs/{id} [get]
func (h *Report) GetRun(c echo.Context) error {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("run id must be a UUID"))
	}

	run, err := h.service.GetRun(c.Request().Context(), runID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	// Runs are only visible to the session that started them.
	if run.SessionID != middleware.GetSessionID(c) {
		return HandleError(h.logger, c, errors.ErrRunNotFound(runID.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToRunStatusResponse(run))
}

// SessionRuns handles GET /sessions/runs
// @Summary      Runs of the current session
// @Tags         Runs
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query    int  false  "Maximum number of runs (1-100)"
// @Success      200    {array}  report.RunStatusResponse
// @Router       /sessions/runs [get]
func (h *Report) SessionRuns(c echo.Context) error {
	var q report.ListQuery
	if err := c.Bind(&q); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&q); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}

	runs, err := h.service.ListSessionRuns(c.Request().Context(), middleware.GetSessionID(c), q.Limit)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToRunStatusResponses(runs))
}

// splitLines splits a newline separated form field, dropping blank lines
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
