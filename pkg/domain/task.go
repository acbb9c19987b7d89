package domain

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// Task is a flat task row as persisted by a store.
// ID and ParentID are dotted-decimal identifiers; ParentID is empty for root tasks.
// Everything else is payload the hierarchy engine never inspects.
type Task struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	Title  string `json:"title" yaml:"title"`
	Status Status `json:"status,omitempty" yaml:"status,omitempty"`
	Body   string `json:"body,omitempty" yaml:"body,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// IsRoot reports whether the task declares no parent.
func (t Task) IsRoot() bool {
	return t.ParentID == ""
}

// Dependency is an edge stating that TaskID cannot start before DependsOnID is done.
// Both ends are task ids, so edges must follow every id rewrite.
type Dependency struct {
	TaskID      string `json:"task_id" yaml:"task_id"`
	DependsOnID string `json:"depends_on_id" yaml:"depends_on_id"`
}
