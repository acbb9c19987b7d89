/*
Package arbor keeps a hierarchy of tasks consistent when the hierarchy is encoded in the task ids themselves.

Every task carries a dotted-decimal id ("3", "3.2", "3.2.1") that spells out its path from the root. Arbor assigns, compares and renumbers those ids so that three invariants always hold: ids are unique, a child's id is its parent's id plus one trailing segment, and every sibling group is numbered 1..N without gaps.

# Concept

The flat task set is the only source of truth. Trees, adjacency maps and children lists are rebuilt from it on demand and thrown away. Mutations never touch storage: each one returns a plan, a simultaneous map of old id to new id, that the caller must apply as a single atomic unit together with any id-keyed reference such as dependency edges.

# Key Features

  - Cascading renumbering: shifting or closing a sibling position rewrites the whole subtree below it.
  - Total tree building: orphans, duplicate ids and parent loops become warnings, never failures.
  - Pure engine: every operation takes the task set as a parameter, so it is trivially testable.
  - Pluggable persistence: file, SQLite, Redis and in-memory stores commit plans all-or-nothing.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/domain"
	)

	func main() {
		ctx := context.Background()
		eng := arbor.New()

		tasks := []domain.Task{
			{ID: "1", Title: "Plan"},
			{ID: "1.1", ParentID: "1", Title: "Draft"},
			{ID: "1.2", ParentID: "1", Title: "Review"},
		}

		res, err := eng.InsertAfter(ctx, tasks, "1.1", domain.Task{Title: "Edit"})
		if err != nil {
			log.Fatal(err)
		}
		tasks, _, err = res.ChangeSet().Apply(tasks, nil)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.NewID, res.Plan.Rewrites) // 1.2 [{1.2 1.3}]
	}

Most applications use a workspace.Manager instead, which serializes mutations and commits them to a ports.TaskStore.
*/
package arbor
