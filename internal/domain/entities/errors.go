package entities

import (
	"errors"
	"fmt"
)

// Pipeline errors
var (
	ErrTranscriptionFailure = errors.New("transcription failure")
	ErrMalformedOutput      = errors.New("malformed output")
	ErrPersistenceFailure   = errors.New("persistence failure")
	ErrValidationFailure    = errors.New("validation failure")
)

// Lookup errors
var (
	ErrReportNotFound   = errors.New("report not found")
	ErrRunNotFound      = errors.New("pipeline run not found")
	ErrInvalidMeetingID = errors.New("invalid meeting id")
)

// Run errors
var (
	ErrIllegalTransition = errors.New("illegal run state transition")
)

// Stage identifies a step of report generation
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageAnalysis      Stage = "analysis"
	StagePersistence   Stage = "persistence"
)

// StageError records which stage of a run failed
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage carried by err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
