package domain

// Rewrite renames one task id. Applying a Rewrite also moves the task under
// the parent encoded by NewID.
type Rewrite struct {
	OldID string `json:"old_id" yaml:"old_id"`
	NewID string `json:"new_id" yaml:"new_id"`
}

// Plan is the complete, validated set of rewrites produced by one mutation.
// Rewrites form a simultaneous mapping: they must be applied as a single unit,
// never one after another, because a NewID may equal another entry's OldID.
type Plan struct {
	Rewrites []Rewrite `json:"rewrites" yaml:"rewrites"`
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Rewrites) == 0
}

// Map returns the rewrites keyed by old id.
func (p Plan) Map() map[string]string {
	m := make(map[string]string, len(p.Rewrites))
	for _, r := range p.Rewrites {
		m[r.OldID] = r.NewID
	}
	return m
}

// Resolve returns the id that oldID becomes after the plan is applied.
func (p Plan) Resolve(oldID string) string {
	for _, r := range p.Rewrites {
		if r.OldID == oldID {
			return r.NewID
		}
	}
	return oldID
}

// ChangeSet is everything a store commits for one mutation.
// Stores apply it all-or-nothing: Removed first, then Rewrites, then Upserts.
// Dependency edges are rewritten with the same map and edges touching a
// removed id are dropped.
type ChangeSet struct {
	Removed  []string  `json:"removed,omitempty"`
	Rewrites []Rewrite `json:"rewrites,omitempty"`
	Upserts  []Task    `json:"upserts,omitempty"`
}

// WarningKind classifies a non-fatal finding raised while deriving the tree.
type WarningKind string

const (
	// WarnOrphanReference marks a task whose parent id resolves to no known task.
	WarnOrphanReference WarningKind = "orphan_reference"
	// WarnDuplicateID marks a task whose id was already seen; the later row is ignored.
	WarnDuplicateID WarningKind = "duplicate_id"
	// WarnCycle marks a task whose parent chain loops; it is promoted to a root.
	WarnCycle WarningKind = "cycle"
)

// Warning is reported by the tree builder instead of failing the build.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	TaskID string      `json:"task_id"`
	Ref    string      `json:"ref,omitempty"`
}

// ViolationKind classifies a broken hierarchy invariant.
type ViolationKind string

const (
	ViolationInvalidID      ViolationKind = "invalid_id"
	ViolationDuplicateID    ViolationKind = "duplicate_id"
	ViolationPrefixMismatch ViolationKind = "prefix_mismatch"
	ViolationSiblingGap     ViolationKind = "sibling_gap"
	ViolationOrphan         ViolationKind = "orphan"
)

// Violation describes one invariant breach found by a consistency check.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	TaskID  string        `json:"task_id"`
	Message string        `json:"message"`
}
