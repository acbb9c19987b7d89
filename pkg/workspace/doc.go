/*
Package workspace implements the single-writer critical section around a task store.

The hierarchy engine is pure: it turns a snapshot of the task set into a plan.
A Manager supplies the other half of the contract. It serializes every
structural mutation (a process mutex, plus an optional ports.DistributedLocker
shared between processes), re-reads the snapshot inside the lock, asks the
engine for a plan, and commits the resulting ChangeSet to the store in one
atomic unit before the next mutation may start.

Read-only queries take no lock.
*/
package workspace
