/*
Package tree implements the hierarchy engine behind arbor's dotted task ids.

Every function is pure: it receives the flat task set as an explicit argument,
derives whatever view it needs (forest, adjacency, id index) and returns a
result without retaining state. Mutations never touch the input; they return
a validated domain.Plan which the caller applies atomically.

Two structural readings of a task set coexist:

  - parent pointers (Task.ParentID), used by Build, BuildAdjacency and AncestorChain;
  - id prefixes (taskid), used by the allocator and the renumbering planner.

For consistent input they describe the same tree; Check reports where they diverge.
*/
package tree
