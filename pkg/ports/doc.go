/*
Package ports defines the driven ports (interfaces) for Arbor.

These interfaces decouple the hierarchy engine and the workspace manager from
concrete storage backends and from the locking strategy used across processes.

# Key Interfaces

  - TaskStore: Persists flat task rows and commits ChangeSets all-or-nothing.
  - DependencyStore: Persists id-keyed dependency edges that follow every commit.
  - TaskSource: A read-only origin of tasks (e.g. a Loam markdown directory) used for imports.
  - DistributedLocker: Provides distributed locking for serializing mutations across replicas.
*/
package ports
