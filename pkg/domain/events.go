package domain

import (
	"context"
	"time"
)

// MutationKind names the structural operation that produced a plan.
type MutationKind string

const (
	MutationInsertChild MutationKind = "insert_child"
	MutationInsertAfter MutationKind = "insert_after"
	MutationDelete      MutationKind = "delete"
	MutationMove        MutationKind = "move"
	MutationRenumber    MutationKind = "renumber"
	MutationUpdate      MutationKind = "update"
	MutationImport      MutationKind = "import"
)

// MutationEvent describes a planned or committed mutation.
type MutationEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Kind      MutationKind  `json:"kind"`
	TaskID    string        `json:"task_id"`
	Rewrites  int           `json:"rewrites"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// MutationHooks defines callbacks for engine observability.
type MutationHooks struct {
	OnPlan    func(context.Context, *MutationEvent)
	OnWarning func(context.Context, Warning)
	OnCommit  func(context.Context, *MutationEvent)
}
