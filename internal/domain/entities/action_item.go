package entities

import "encoding/json"

// Priority represents the urgency of an action item
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether p is one of the known priorities
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ActionItem is a task committed to during a meeting
type ActionItem struct {
	Task     string   `json:"task" validate:"nonblank"`
	Assignee *string  `json:"assignee"`
	Deadline *string  `json:"deadline"` // free text, e.g. "by Friday"; never parsed
	Priority Priority `json:"priority" validate:"oneof=high medium low"`
}

// NewActionItem builds an item with the default priority
func NewActionItem(task string) ActionItem {
	return ActionItem{Task: task, Priority: PriorityMedium}
}

// UnmarshalJSON applies the medium default when priority is absent or null.
func (a *ActionItem) UnmarshalJSON(data []byte) error {
	type alias ActionItem
	aux := struct {
		*alias
		Priority *Priority `json:"priority"`
	}{alias: (*alias)(a)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Priority == nil {
		a.Priority = PriorityMedium
	} else {
		a.Priority = *aux.Priority
	}
	return nil
}

// AssigneeOr returns the assignee or fallback when unassigned
func (a ActionItem) AssigneeOr(fallback string) string {
	if a.Assignee == nil || *a.Assignee == "" {
		return fallback
	}
	return *a.Assignee
}

func (a ActionItem) clone() ActionItem {
	out := a
	if a.Assignee != nil {
		v := *a.Assignee
		out.Assignee = &v
	}
	if a.Deadline != nil {
		v := *a.Deadline
		out.Deadline = &v
	}
	return out
}

// StringPtr is a small helper for optional fields
func StringPtr(s string) *string {
	return &s
}
