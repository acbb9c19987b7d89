package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/memory"
)

func TestSource(t *testing.T) {
	src, err := memory.NewSource(map[string]string{
		"1.1": `{"parent_id": "1", "title": "child"}`,
		"1":   `{"id": "1", "title": "root"}`,
	})
	require.NoError(t, err)

	tasks, err := src.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, "1.1", tasks[1].ID)
	assert.Equal(t, "child", tasks[1].Title)

	_, err = memory.NewSource(map[string]string{"1": `{`})
	assert.Error(t, err)
}
