package loam_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/domain"
)

func TestSource_Tasks(t *testing.T) {
	_, repo := testutils.SetupTaskRepo(t)
	testutils.WriteTaskDoc(t, repo, "ship.md", map[string]string{"id": "2", "title": "Ship"}, "Release it.")
	testutils.WriteTaskDoc(t, repo, "schema.md", map[string]string{"id": "1.1", "status": "done"}, "# Design the schema\n\nTables first.")
	testutils.WriteTaskDoc(t, repo, "epic.md", map[string]string{"id": "1", "title": "Epic", "created": "2024-03-01"}, "")

	tasks, err := loam.New(repo).Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, "Epic", tasks[0].Title)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), tasks[0].CreatedAt)

	assert.Equal(t, "1.1", tasks[1].ID)
	assert.Equal(t, "1", tasks[1].ParentID)
	assert.Equal(t, "Design the schema", tasks[1].Title)
	assert.Equal(t, domain.StatusDone, tasks[1].Status)
	assert.Contains(t, tasks[1].Body, "Tables first.")

	assert.Equal(t, "2", tasks[2].ID)
	assert.Equal(t, "Release it.", tasks[2].Body)
}

func TestSource_ExplicitParent(t *testing.T) {
	_, repo := testutils.SetupTaskRepo(t)
	testutils.WriteTaskDoc(t, repo, "a.md", map[string]string{"id": "1", "title": "a"}, "")
	testutils.WriteTaskDoc(t, repo, "b.md", map[string]string{"id": "7", "parent": "1", "title": "b"}, "")

	tasks, err := loam.New(repo).Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[1].ParentID)
}

func TestSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields []map[string]string
		want   error
	}{
		{
			name:   "duplicate id",
			fields: []map[string]string{{"id": "1"}, {"id": "1"}},
			want:   domain.ErrTaskExists,
		},
		{
			name:   "invalid id",
			fields: []map[string]string{{"id": "1.x"}},
			want:   domain.ErrInvalidID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, repo := testutils.SetupTaskRepo(t)
			for i, f := range tt.fields {
				testutils.WriteTaskDoc(t, repo, []string{"a.md", "b.md"}[i], f, "")
			}
			_, err := loam.New(repo).Tasks(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSource_UnknownStatus(t *testing.T) {
	_, repo := testutils.SetupTaskRepo(t)
	testutils.WriteTaskDoc(t, repo, "a.md", map[string]string{"id": "1", "status": "archived"}, "")

	_, err := loam.New(repo).Tasks(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
