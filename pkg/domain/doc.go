/*
Package domain contains the core domain models of the arbor task tracker.

It defines the flat task records handed over by the persistence layer, the derived
tree view built from them, and the rewrite plans produced by structural mutations.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Task: A flat task row. Its ID and ParentID are the only structural truth.
  - Node: A Task placed in the derived hierarchy, owning its ordered children.
  - Plan: The ordered list of id rewrites a mutation requires.
  - ChangeSet: Everything a store must apply, atomically, to commit a mutation.
  - Warning: A non-fatal finding (e.g. an orphan reference) raised while building the tree.
*/
package domain
