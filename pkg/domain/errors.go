package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when an identifier is not a dotted-decimal path of positive integers.
	ErrInvalidID = errors.New("invalid task id")

	// ErrNotFound is returned when the target of an operation is absent from the task set.
	ErrNotFound = errors.New("task not found")

	// ErrIDCollision is returned when a planned rewrite would duplicate an existing id.
	ErrIDCollision = errors.New("task id collision")

	// ErrCycleDetected is returned when a parent walk revisits a task.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrInvalidMove is returned when a task would be moved under itself or one of its descendants.
	ErrInvalidMove = errors.New("invalid move")

	// ErrTaskExists is returned by stores when inserting a task whose id is already taken.
	ErrTaskExists = errors.New("task already exists")

	// ErrInvalidStatus is returned for a status outside the known workflow states.
	ErrInvalidStatus = errors.New("invalid status")
)

// TreeError carries the offending id alongside one of the sentinel errors above.
type TreeError struct {
	Kind error
	ID   string
	Msg  string
}

func (e *TreeError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.ID == "" && e.Msg == "":
		return e.Kind.Error()
	case e.Msg == "":
		return fmt.Sprintf("%s: %q", e.Kind.Error(), e.ID)
	case e.ID == "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	}
	return fmt.Sprintf("%s: %q: %s", e.Kind.Error(), e.ID, e.Msg)
}

func (e *TreeError) Unwrap() error { return e.Kind }

// NewTreeError builds a TreeError with a formatted message.
func NewTreeError(kind error, id string, format string, args ...any) error {
	return &TreeError{Kind: kind, ID: id, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports that id is not part of the supplied task set.
func NotFound(id string) error {
	return &TreeError{Kind: ErrNotFound, ID: id}
}
