package testutils

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTaskRepo creates a temporary directory and initializes an unversioned
// Loam repository in it. It fails the test immediately on error.
func SetupTaskRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	opts = append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteTaskDoc saves a markdown task document with the given frontmatter
// fields. Values are quoted so that ids like 1.2 stay strings.
func WriteTaskDoc(t *testing.T, repo core.Repository, name string, fields map[string]string, body string) {
	t.Helper()

	var b strings.Builder
	b.WriteString("---\n")
	for _, key := range []string{"id", "parent", "title", "status", "created"} {
		if v, ok := fields[key]; ok {
			fmt.Fprintf(&b, "%s: %q\n", key, v)
		}
	}
	b.WriteString("---\n")
	b.WriteString(body)

	err := repo.Save(context.Background(), core.Document{ID: name, Content: b.String()})
	require.NoError(t, err, "Failed to save %s", name)
}
