package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStoreContract(t, func(t *testing.T) ports.Store {
		return file.New(filepath.Join(t.TempDir(), "tasks.json"))
	})
}

func TestFileStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")

	s := file.New(path)
	require.NoError(t, s.Commit(ctx, domain.ChangeSet{Upserts: []domain.Task{{ID: "2", Title: "b"}, {ID: "1", Title: "a"}}}))

	// A second instance sees the same document.
	tasks, err := file.New(path).Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := file.New(path).Snapshot(context.Background())
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "tasks": []}`), 0644))
	_, err = file.New(path).Snapshot(context.Background())
	assert.ErrorContains(t, err, "newer than supported")
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".arbor", "tasks.json"), file.New("").Path)
}
