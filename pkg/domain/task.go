package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a card on the board.
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`   // "todo", "doing", "done"
	Priority     string     `json:"priority"` // "low", "normal", "high"
	CreatorID    int64      `json:"creator_id"`
	CreatorName  string     `json:"creator_name,omitempty"`
	AssigneeID   *int64     `json:"assignee_id,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Valid task statuses, in board column order.
var ValidStatuses = []string{
	"todo",
	"doing",
	"done",
}

// Valid task priorities, lowest first.
var ValidPriorities = []string{
	"low",
	"normal",
	"high",
}

// ValidStatus reports whether s is a recognized task status.
func ValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is a recognized task priority.
func ValidPriority(p string) bool {
	for _, v := range ValidPriorities {
		if v == p {
			return true
		}
	}
	return false
}

// NextStatus returns the status following s in board order.
// "done" and unknown statuses map to "todo".
func NextStatus(s string) string {
	for i, v := range ValidStatuses {
		if v == s && i+1 < len(ValidStatuses) {
			return ValidStatuses[i+1]
		}
	}
	return ValidStatuses[0]
}

// Assigned reports whether the task has an assignee.
func (t *Task) Assigned() bool {
	return t.AssigneeID != nil
}

// AssignedTo reports whether the task is assigned to the given user ID.
func (t *Task) AssignedTo(userID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
