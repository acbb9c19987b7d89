package arbor

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/tree"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// Version is overridden at build time with -ldflags "-X github.com/aretw0/arbor.Version=...".
var Version = "dev"

// Engine is the high-level entry point for the Arbor library.
// Every operation is a pure function of the flat task set it is given:
// the Engine keeps no task state between calls and performs no persistence.
type Engine struct {
	hooks  domain.MutationHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMutationHooks registers observability hooks.
func WithMutationHooks(hooks domain.MutationHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source used to stamp new tasks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New initializes a new Arbor Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.now == nil {
		eng.now = time.Now
	}
	return eng
}

// InsertResult is the outcome of InsertChild and InsertAfter.
type InsertResult struct {
	NewID string
	Task  domain.Task
	// Plan shifts the siblings that make room for the new task. It is always
	// empty for InsertChild.
	Plan domain.Plan
}

// ChangeSet returns what a store must commit for the insert.
func (r InsertResult) ChangeSet() domain.ChangeSet {
	return domain.ChangeSet{Rewrites: r.Plan.Rewrites, Upserts: []domain.Task{r.Task}}
}

// DeleteResult is the outcome of DeleteTask.
type DeleteResult struct {
	RemovedID string
	Plan      domain.Plan
}

// ChangeSet returns what a store must commit for the deletion.
func (r DeleteResult) ChangeSet() domain.ChangeSet {
	return domain.ChangeSet{Removed: []string{r.RemovedID}, Rewrites: r.Plan.Rewrites}
}

// MoveResult is the outcome of Move.
type MoveResult struct {
	TaskID string
	NewID  string
	Plan   domain.Plan
}

// ChangeSet returns what a store must commit for the move.
func (r MoveResult) ChangeSet() domain.ChangeSet {
	return domain.ChangeSet{Rewrites: r.Plan.Rewrites}
}

// RenumberResult is the outcome of Renumber.
type RenumberResult struct {
	Plan     domain.Plan
	Warnings []domain.Warning
}

// ChangeSet returns what a store must commit for the repair.
func (r RenumberResult) ChangeSet() domain.ChangeSet {
	return domain.ChangeSet{Rewrites: r.Plan.Rewrites}
}

// InsertChild places payload as the last child of parentID, or at the end of
// the root level when parentID is empty.
func (e *Engine) InsertChild(ctx context.Context, tasks []domain.Task, parentID string, payload domain.Task) (InsertResult, error) {
	start := time.Now()
	newID, err := tree.PlanInsertChild(tasks, parentID)
	e.emitPlan(ctx, domain.MutationInsertChild, parentID, domain.Plan{}, start, err)
	if err != nil {
		return InsertResult{}, err
	}
	return InsertResult{NewID: newID, Task: e.stamp(payload, newID)}, nil
}

// InsertAfter places payload right after siblingID and returns the shift plan
// that moves every later sibling, and its subtree, one position up.
func (e *Engine) InsertAfter(ctx context.Context, tasks []domain.Task, siblingID string, payload domain.Task) (InsertResult, error) {
	start := time.Now()
	newID, plan, err := tree.PlanInsertAfter(tasks, siblingID)
	e.emitPlan(ctx, domain.MutationInsertAfter, siblingID, plan, start, err)
	if err != nil {
		return InsertResult{}, err
	}
	return InsertResult{NewID: newID, Task: e.stamp(payload, newID), Plan: plan}, nil
}

// DeleteTask removes id. Its children are promoted to its former parent and
// the affected sibling group is renumbered, cascading into every subtree.
func (e *Engine) DeleteTask(ctx context.Context, tasks []domain.Task, id string) (DeleteResult, error) {
	start := time.Now()
	plan, err := tree.PlanDelete(tasks, id)
	e.emitPlan(ctx, domain.MutationDelete, id, plan, start, err)
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{RemovedID: id, Plan: plan}, nil
}

// Move re-parents id, with its whole subtree, as the last child of
// newParentID ("" for the root level).
func (e *Engine) Move(ctx context.Context, tasks []domain.Task, id, newParentID string) (MoveResult, error) {
	start := time.Now()
	plan, err := tree.PlanMove(tasks, id, newParentID)
	e.emitPlan(ctx, domain.MutationMove, id, plan, start, err)
	if err != nil {
		return MoveResult{}, err
	}
	return MoveResult{TaskID: id, NewID: plan.Resolve(id), Plan: plan}, nil
}

// Renumber computes the plan that restores every hierarchy invariant from
// the parent pointers alone. Orphans become roots.
func (e *Engine) Renumber(ctx context.Context, tasks []domain.Task) (RenumberResult, error) {
	start := time.Now()
	plan, warnings, err := tree.PlanRenumber(tasks)
	e.emitWarnings(ctx, warnings)
	e.emitPlan(ctx, domain.MutationRenumber, "", plan, start, err)
	if err != nil {
		return RenumberResult{}, err
	}
	return RenumberResult{Plan: plan, Warnings: warnings}, nil
}

// GetDescendants returns every task below id, in pre-order.
func (e *Engine) GetDescendants(tasks []domain.Task, id string) ([]domain.Task, error) {
	return tree.DescendantsOf(id, tasks)
}

// GetAncestorChain returns the ancestors of id from the root down to its parent.
func (e *Engine) GetAncestorChain(tasks []domain.Task, id string) ([]domain.Task, error) {
	return tree.AncestorChain(id, tasks)
}

// GetSubtree assembles id and everything below it by parent pointers into a
// forest with id as its only root. A parent loop under id fails with
// ErrCycleDetected instead of being promoted the way BuildForest does.
func (e *Engine) GetSubtree(ctx context.Context, tasks []domain.Task, id string) (domain.Forest, []domain.Warning, error) {
	sub, err := tree.Subtree(id, tasks)
	if err != nil {
		return nil, nil, err
	}
	for i := range sub {
		if sub[i].ID == id {
			sub[i].ParentID = ""
		}
	}
	forest, warnings := e.BuildForest(ctx, sub)
	return forest, warnings, nil
}

// BuildForest assembles the task set into ordered trees. It never fails:
// inconsistencies come back as warnings.
func (e *Engine) BuildForest(ctx context.Context, tasks []domain.Task) (domain.Forest, []domain.Warning) {
	forest, warnings := tree.Build(tasks)
	e.emitWarnings(ctx, warnings)
	return forest, warnings
}

// Check reports every hierarchy invariant the task set breaks.
func (e *Engine) Check(tasks []domain.Task) []domain.Violation {
	return tree.Check(tasks)
}

func (e *Engine) stamp(payload domain.Task, id string) domain.Task {
	payload.ID = id
	payload.ParentID = taskid.ParentOf(id)
	if payload.Status == "" {
		payload.Status = domain.StatusPending
	}
	now := e.now().UTC()
	if payload.CreatedAt.IsZero() {
		payload.CreatedAt = now
	}
	payload.UpdatedAt = now
	return payload
}

func (e *Engine) emitPlan(ctx context.Context, kind domain.MutationKind, id string, plan domain.Plan, start time.Time, err error) {
	event := &domain.MutationEvent{
		Timestamp: e.now(),
		Kind:      kind,
		TaskID:    id,
		Rewrites:  len(plan.Rewrites),
		Duration:  time.Since(start),
		Err:       err,
	}
	if err != nil {
		e.logger.DebugContext(ctx, "Plan rejected", "kind", kind, "task_id", id, "err", err)
	} else {
		e.logger.DebugContext(ctx, "Plan computed", "kind", kind, "task_id", id, "rewrites", event.Rewrites)
	}
	if e.hooks.OnPlan != nil {
		e.hooks.OnPlan(ctx, event)
	}
}

func (e *Engine) emitWarnings(ctx context.Context, warnings []domain.Warning) {
	for _, w := range warnings {
		e.logger.WarnContext(ctx, "Inconsistent task set", "kind", w.Kind, "task_id", w.TaskID, "ref", w.Ref)
		if e.hooks.OnWarning != nil {
			e.hooks.OnWarning(ctx, w)
		}
	}
}
