package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/adapters/sqlite"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

func newStore(t *testing.T) *sqlite.Store {
	s, err := sqlite.New(filepath.Join(t.TempDir(), "arbor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunStoreContract(t, func(t *testing.T) ports.Store {
		return newStore(t)
	})
}

func TestSQLiteStore_RoundTripsPayload(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)

	task := domain.Task{
		ID:        "1",
		Title:     "Write",
		Status:    domain.StatusInProgress,
		Body:      "# Notes\nsome *markdown*",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
	require.NoError(t, s.Commit(ctx, domain.ChangeSet{Upserts: []domain.Task{task}}))

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "arbor.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx, domain.ChangeSet{Upserts: []domain.Task{{ID: "1"}, {ID: "2"}}}))
	require.NoError(t, s.AddDependency(ctx, domain.Dependency{TaskID: "2", DependsOnID: "1"}))
	require.NoError(t, s.Close())

	s, err = sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()

	tasks, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	deps, err := s.Dependencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Dependency{{TaskID: "2", DependsOnID: "1"}}, deps)
}
