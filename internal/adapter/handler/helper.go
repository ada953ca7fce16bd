package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-reporter/errors"
	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	reportuc "github.com/johnquangdev/meeting-reporter/internal/usecase/report"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Info    string      `json:"info,omitempty"`
	Stage   string      `json:"stage,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	ctxMeetingID      = "meeting_id"
	ctxUploadFilename = "upload_filename"
)

// meetingIDOf returns the meeting id a request refers to, from the path or
// from the body when the handler recorded one
func meetingIDOf(c echo.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	id, _ := c.Get(ctxMeetingID).(string)
	return id
}

func uploadFilename(c echo.Context) string {
	name, _ := c.Get(ctxUploadFilename).(string)
	return name
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return HandleSuccessStatus(logger, c, http.StatusOK, data)
}

// HandleSuccessStatus is HandleSuccess with an explicit status code
func HandleSuccessStatus(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	return HandleErrorWithData(logger, c, err, nil)
}

// HandleErrorWithData is HandleError that also returns data describing the
// failure, such as the outcome of a failed pipeline run
func HandleErrorWithData(logger *zap.Logger, c echo.Context, err error, data interface{}) error {
	appErr := mapError(c, err)

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := errs{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Stage:   appErr.Details["stage"],
		Data:    data,
	}
	return c.JSON(appErr.HTTPCode, body)
}

// mapError converts domain errors to AppErrors
func mapError(c echo.Context, err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	if stage, ok := entities.FailedStage(err); ok {
		switch stage {
		case entities.StageTranscription:
			return errors.ErrTranscriptionFailed(err)
		case entities.StageAnalysis:
			return errors.ErrMalformedOutput(err)
		case entities.StagePersistence:
			return errors.ErrPersistenceFailed(err)
		}
	}

	switch {
	case stdErrors.Is(err, reportuc.ErrUnsupportedAudio):
		e := errors.ErrUnsupportedAudio(uploadFilename(c))
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrInvalidMeetingID):
		e := errors.ErrInvalidMeetingID(meetingIDOf(c))
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrReportNotFound):
		e := errors.ErrReportNotFound(meetingIDOf(c))
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrRunNotFound):
		return errors.ErrRunNotFound(c.Param("id"))
	case stdErrors.Is(err, reportuc.ErrNotConfigured):
		e := errors.ErrReportNotAvailable("Feature")
		e.Raw = err
		return e
	case stdErrors.Is(err, reportuc.ErrNoRecipients):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, entities.ErrValidationFailure):
		return errors.ErrValidationFailed(err)
	}
	return errors.ErrInternal(err)
}
