package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MeetingReport is the structured summary produced from a transcript.
// Once produced it is treated as immutable; use Clone before handing it out.
type MeetingReport struct {
	MeetingTitle  string       `json:"meeting_title" validate:"nonblank"`
	Date          string       `json:"date" validate:"nonblank"`
	Attendees     []string     `json:"attendees"`
	Summary       string       `json:"summary" validate:"nonblank"`
	KeyTopics     []string     `json:"key_topics"`
	ActionItems   []ActionItem `json:"action_items" validate:"dive"`
	DecisionsMade []string     `json:"decisions_made"`
}

// requiredReportKeys must be present (and non-null) in a parsed document.
// decisions_made is optional and defaults to an empty list.
var requiredReportKeys = []string{
	"meeting_title",
	"date",
	"attendees",
	"summary",
	"key_topics",
	"action_items",
}

var reportValidator = newReportValidator()

func newReportValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ParseMeetingReport decodes and validates a report document.
// Missing required keys, wrong types and out-of-range values all fail with
// ErrValidationFailure; defaults are applied before value validation.
func ParseMeetingReport(data []byte) (MeetingReport, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return MeetingReport{}, fmt.Errorf("%w: %v", ErrValidationFailure, err)
	}
	if raw == nil {
		return MeetingReport{}, fmt.Errorf("%w: document is not an object", ErrValidationFailure)
	}

	var missing []string
	for _, key := range requiredReportKeys {
		if isAbsent(raw[key]) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return MeetingReport{}, fmt.Errorf("%w: missing required field(s): %s",
			ErrValidationFailure, strings.Join(missing, ", "))
	}

	if err := checkActionItemKeys(raw["action_items"]); err != nil {
		return MeetingReport{}, err
	}

	var report MeetingReport
	if err := json.Unmarshal(data, &report); err != nil {
		return MeetingReport{}, fmt.Errorf("%w: %v", ErrValidationFailure, err)
	}

	if err := report.Validate(); err != nil {
		return MeetingReport{}, err
	}
	return report, nil
}

func checkActionItemKeys(data json.RawMessage) error {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%w: action_items: %v", ErrValidationFailure, err)
	}
	for i, item := range items {
		if isAbsent(item["task"]) {
			return fmt.Errorf("%w: missing required field: action_items[%d].task", ErrValidationFailure, i)
		}
	}
	return nil
}

func isAbsent(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// Validate checks field values against the schema.
func (r MeetingReport) Validate() error {
	err := reportValidator.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailure, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "MeetingReport.")
		switch fe.Tag() {
		case "nonblank":
			msgs = append(msgs, field+" must not be empty")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidationFailure, strings.Join(msgs, "; "))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// UnmarshalJSON fills decisions_made with an empty list when absent.
func (r *MeetingReport) UnmarshalJSON(data []byte) error {
	type alias MeetingReport
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = MeetingReport(aux).normalized()
	return nil
}

// MarshalJSON always emits [] instead of null for list fields.
func (r MeetingReport) MarshalJSON() ([]byte, error) {
	type alias MeetingReport
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(alias(r.normalized())); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (r MeetingReport) normalized() MeetingReport {
	if r.Attendees == nil {
		r.Attendees = []string{}
	}
	if r.KeyTopics == nil {
		r.KeyTopics = []string{}
	}
	if r.ActionItems == nil {
		r.ActionItems = []ActionItem{}
	}
	if r.DecisionsMade == nil {
		r.DecisionsMade = []string{}
	}
	return r
}

// Clone returns a deep copy of the report.
func (r MeetingReport) Clone() MeetingReport {
	out := r
	out.Attendees = append([]string(nil), r.Attendees...)
	out.KeyTopics = append([]string(nil), r.KeyTopics...)
	out.DecisionsMade = append([]string(nil), r.DecisionsMade...)
	if r.ActionItems != nil {
		out.ActionItems = make([]ActionItem, len(r.ActionItems))
		for i, item := range r.ActionItems {
			out.ActionItems[i] = item.clone()
		}
	}
	return out.normalized()
}

// PriorityCounts tallies action items per priority.
func (r MeetingReport) PriorityCounts() map[Priority]int {
	counts := map[Priority]int{
		PriorityHigh:   0,
		PriorityMedium: 0,
		PriorityLow:    0,
	}
	for _, item := range r.ActionItems {
		counts[item.Priority]++
	}
	return counts
}

// MarshalRecord renders the on-disk form: 2-space indented UTF-8 JSON.
// Identical reports always produce identical bytes.
func (r MeetingReport) MarshalRecord() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
