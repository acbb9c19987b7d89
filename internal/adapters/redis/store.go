package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// maxCommitAttempts bounds optimistic retries when another writer touches the
// workspace between WATCH and EXEC.
const maxCommitAttempts = 8

// Store implements ports.Store using Redis.
//
// Tasks live in one hash (id → JSON row) and dependency edges in one set, so
// a ChangeSet is committed with a single WATCH/MULTI/EXEC transaction.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for the workspace.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "arbor:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) tasksKey() string {
	return s.prefix + "tasks"
}

func (s *Store) depsKey() string {
	return s.prefix + "deps"
}

// Snapshot returns every row.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Task, error) {
	raw, err := s.client.HGetAll(ctx, s.tasksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks from redis: %w", err)
	}
	return decodeTasks(raw)
}

// Get retrieves one task.
func (s *Store) Get(ctx context.Context, id string) (domain.Task, error) {
	val, err := s.client.HGet(ctx, s.tasksKey(), id).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.Task{}, domain.NotFound(id)
		}
		return domain.Task{}, fmt.Errorf("failed to get task from redis: %w", err)
	}
	var t domain.Task
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return domain.Task{}, fmt.Errorf("failed to unmarshal task %s: %w", id, err)
	}
	return t, nil
}

// Commit applies cs in one MULTI/EXEC, retrying when a concurrent writer
// invalidates the WATCH.
func (s *Store) Commit(ctx context.Context, cs domain.ChangeSet) error {
	return s.transact(ctx, func(tx *backend.Tx) error {
		raw, err := tx.HGetAll(ctx, s.tasksKey()).Result()
		if err != nil {
			return fmt.Errorf("failed to read tasks from redis: %w", err)
		}
		tasks, err := decodeTasks(raw)
		if err != nil {
			return err
		}
		members, err := tx.SMembers(ctx, s.depsKey()).Result()
		if err != nil {
			return fmt.Errorf("failed to read dependencies from redis: %w", err)
		}
		deps := decodeDeps(members)

		nextTasks, nextDeps, err := cs.Apply(tasks, deps)
		if err != nil {
			return err
		}

		next := make(map[string]any, len(nextTasks))
		for _, t := range nextTasks {
			data, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("failed to marshal task %s: %w", t.ID, err)
			}
			if raw[t.ID] != string(data) {
				next[t.ID] = data
			}
		}
		keep := make(map[string]bool, len(nextTasks))
		for _, t := range nextTasks {
			keep[t.ID] = true
		}
		var stale []string
		for id := range raw {
			if !keep[id] {
				stale = append(stale, id)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			if len(stale) > 0 {
				pipe.HDel(ctx, s.tasksKey(), stale...)
			}
			if len(next) > 0 {
				pipe.HSet(ctx, s.tasksKey(), next)
			}
			pipe.Del(ctx, s.depsKey())
			if len(nextDeps) > 0 {
				pipe.SAdd(ctx, s.depsKey(), encodeDeps(nextDeps)...)
			}
			return nil
		})
		return err
	}, s.tasksKey(), s.depsKey())
}

// AddDependency records an edge between two known tasks.
func (s *Store) AddDependency(ctx context.Context, dep domain.Dependency) error {
	return s.transact(ctx, func(tx *backend.Tx) error {
		for _, id := range []string{dep.TaskID, dep.DependsOnID} {
			ok, err := tx.HExists(ctx, s.tasksKey(), id).Result()
			if err != nil {
				return fmt.Errorf("failed to check task in redis: %w", err)
			}
			if !ok {
				return domain.NotFound(id)
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.SAdd(ctx, s.depsKey(), encodeDep(dep))
			return nil
		})
		return err
	}, s.tasksKey())
}

// RemoveDependency deletes an edge if present.
func (s *Store) RemoveDependency(ctx context.Context, dep domain.Dependency) error {
	if err := s.client.SRem(ctx, s.depsKey(), encodeDep(dep)).Err(); err != nil {
		return fmt.Errorf("failed to remove dependency from redis: %w", err)
	}
	return nil
}

// Dependencies returns every edge.
func (s *Store) Dependencies(ctx context.Context) ([]domain.Dependency, error) {
	members, err := s.client.SMembers(ctx, s.depsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dependencies from redis: %w", err)
	}
	deps := decodeDeps(members)
	ports.SortDependencies(deps)
	return deps, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) transact(ctx context.Context, fn func(tx *backend.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis transaction kept conflicting after %d attempts", maxCommitAttempts)
}

func decodeTasks(raw map[string]string) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0, len(raw))
	for id, val := range raw {
		var t domain.Task
		if err := json.Unmarshal([]byte(val), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task %s: %w", id, err)
		}
		tasks = append(tasks, t)
	}
	ports.SortTasks(tasks)
	return tasks, nil
}

// Edges are stored as "task depends_on"; ids never contain spaces.
func encodeDep(d domain.Dependency) string {
	return d.TaskID + " " + d.DependsOnID
}

func encodeDeps(deps []domain.Dependency) []any {
	out := make([]any, 0, len(deps))
	for _, d := range deps {
		out = append(out, encodeDep(d))
	}
	return out
}

func decodeDeps(members []string) []domain.Dependency {
	deps := make([]domain.Dependency, 0, len(members))
	for _, m := range members {
		task, dependsOn, ok := strings.Cut(m, " ")
		if !ok {
			continue
		}
		deps = append(deps, domain.Dependency{TaskID: task, DependsOnID: dependsOn})
	}
	return deps
}
