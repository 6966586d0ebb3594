package models

import (
	"encoding/json"
	"strings"
)

type GoalStatus string

const (
	GoalToDo       GoalStatus = "To Do"
	GoalInProgress GoalStatus = "In Progress"
	GoalCompleted  GoalStatus = "Completed"
	GoalCancelled  GoalStatus = "Cancelled"

	// GoalStatusUnknown is shown for stored statuses outside the known set.
	GoalStatusUnknown GoalStatus = "Unknown"
)

// GoalStatuses lists the known statuses in precedence order.
var GoalStatuses = []GoalStatus{GoalToDo, GoalInProgress, GoalCompleted, GoalCancelled}

// ParseGoalStatus maps free-form input ("to do", "in_progress", "DONE") onto a known status.
func ParseGoalStatus(s string) (GoalStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	switch key {
	case "todo":
		return GoalToDo, true
	case "inprogress":
		return GoalInProgress, true
	case "completed", "complete", "done":
		return GoalCompleted, true
	case "cancelled", "canceled":
		return GoalCancelled, true
	}
	return GoalStatus(s), false
}

func (s GoalStatus) Valid() bool {
	for _, known := range GoalStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Rank orders statuses To Do < In Progress < Completed < Cancelled, unknown last.
func (s GoalStatus) Rank() int {
	for i, known := range GoalStatuses {
		if s == known {
			return i
		}
	}
	return 99
}

// Display returns the status label, or "Unknown" for unrecognized values.
func (s GoalStatus) Display() string {
	if s.Valid() {
		return string(s)
	}
	return string(GoalStatusUnknown)
}

type Goal struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"notblank"`
	Description string     `json:"description"`
	DueDate     *string    `json:"due_date" validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD format
	Status      GoalStatus `json:"status" validate:"goal_status"`

	raw string
}

// UnmarshalJSON canonicalizes the spelling of known statuses. Unrecognized
// statuses are kept verbatim so they survive a save.
func (g *Goal) UnmarshalJSON(data []byte) error {
	type goalAlias Goal
	var raw goalAlias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if status, ok := ParseGoalStatus(string(raw.Status)); ok {
		raw.Status = status
	}
	if raw.DueDate != nil && *raw.DueDate == "" {
		raw.DueDate = nil
	}
	*g = Goal(raw)
	return nil
}

func (g Goal) MarshalJSON() ([]byte, error) {
	if g.raw != "" {
		return []byte(g.raw), nil
	}
	type goalAlias Goal
	return json.Marshal(goalAlias(g))
}

// HasDueDate reports whether the goal carries a due date.
func (g Goal) HasDueDate() bool {
	return g.DueDate != nil && *g.DueDate != ""
}

func (g Goal) Validate() error {
	return validate.Struct(g)
}

// ValidateExceptStatus checks every field but the status, for goals that
// keep a status from an older or newer version.
func (g Goal) ValidateExceptStatus() error {
	return validate.StructExcept(g, "Status")
}
