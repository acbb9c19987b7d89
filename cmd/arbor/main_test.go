package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/domain"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI against dir and returns its stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, "arbor %v: %s", args, out)
	return out
}

func TestCLI_Workflow(t *testing.T) {
	dir := t.TempDir()

	assert.Contains(t, mustRun(t, dir, "init"), "Initialized arbor workspace")
	assert.Contains(t, mustRun(t, dir, "add", "Plan", "trip"), "Added 1 Plan trip")
	assert.Contains(t, mustRun(t, dir, "add", "--parent", "1", "Book flights"), "Added 1.1 Book flights")
	assert.Contains(t, mustRun(t, dir, "add", "-p", "1", "Book hotel"), "Added 1.2 Book hotel")

	out := mustRun(t, dir, "insert", "1.1", "Renew passport")
	assert.Contains(t, out, "Inserted 1.2 Renew passport")
	assert.Contains(t, out, "1.2 -> 1.3")

	mustRun(t, dir, "set", "1.2", "--status", "done")
	mustRun(t, dir, "dep", "add", "1.3", "1.1")

	tree := mustRun(t, dir, "tree")
	assert.Equal(t, "[ ] 1 Plan trip\n"+
		"├── [ ] 1.1 Book flights\n"+
		"├── [x] 1.2 Renew passport\n"+
		"└── [ ] 1.3 Book hotel (waiting)\n", tree)

	assert.Contains(t, mustRun(t, dir, "dep", "ls"), "1.3 -> 1.1")

	out = mustRun(t, dir, "rm", "1.1")
	assert.Contains(t, out, "Deleted 1.1")
	assert.Contains(t, out, "1.3 -> 1.2")
	assert.Empty(t, mustRun(t, dir, "dep", "ls"), "dependency on a deleted task is dropped")

	assert.Contains(t, mustRun(t, dir, "mv", "1.2"), "Moved 1.2 -> 2")
	assert.Contains(t, mustRun(t, dir, "validate"), "Tree is valid")

	var doc exportDocument
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dir, "export")), &doc))
	var ids []string
	for _, task := range doc.Tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"1", "1.1", "2"}, ids)
	assert.Equal(t, domain.StatusDone, doc.Tasks[1].Status)

	assert.Contains(t, mustRun(t, dir, "graph", "--format", "dot"), "digraph arbor {")
	assert.Contains(t, mustRun(t, dir, "graph"), "graph TD")
	assert.Contains(t, mustRun(t, dir, "ancestors", "1.1"), "1 Plan trip")
	assert.Contains(t, mustRun(t, dir, "descendants", "1"), "1.1 Renew passport")
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")

	_, err := run(t, dir, "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, dir, "rm", "9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = run(t, dir, "add", "--status", "someday", "Task")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = run(t, dir, "ls", "--status", "finished")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = run(t, dir, "set", "1")
	assert.ErrorContains(t, err, "nothing to change")

	_, err = run(t, dir, "graph", "--format", "png")
	assert.ErrorContains(t, err, "unknown format")
}

func TestCLI_TreeSubtree(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")
	mustRun(t, dir, "add", "Root")
	mustRun(t, dir, "add", "-p", "1", "Child")
	mustRun(t, dir, "add", "-p", "1.1", "Grandchild")
	mustRun(t, dir, "add", "Other")

	assert.Equal(t, "[ ] 1.1 Child\n"+
		"└── [ ] 1.1.1 Grandchild\n", mustRun(t, dir, "tree", "1.1"))

	_, err := run(t, dir, "tree", "7")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Contains(t, mustRun(t, dir, "ls", "--status", "pending"), "2 Other")
}

func TestCLI_TreeReportsParentLoop(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")
	doc := `{"version":1,"tasks":[
		{"id":"1","title":"Root"},
		{"id":"1.1","parent_id":"1.2","title":"A"},
		{"id":"1.2","parent_id":"1.1","title":"B"}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".arbor", "tasks.json"), []byte(doc), 0o644))

	_, err := run(t, dir, "tree", "1.1")
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	assert.Contains(t, mustRun(t, dir, "tree", "1"), "1 Root")
}

func TestCLI_ShowRendersBody(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init", "--driver", "sqlite")
	mustRun(t, dir, "add", "Root")
	mustRun(t, dir, "add", "--parent", "1", "--body", "# Notes\n\nPack light.", "Child")
	mustRun(t, dir, "add", "Other")
	mustRun(t, dir, "dep", "add", "1.1", "2")

	out := mustRun(t, dir, "show", "1.1")
	assert.Contains(t, out, "[ ] 1.1 Child")
	assert.Contains(t, out, "in 1 Root")
	assert.Contains(t, out, "waiting on 2 Other [pending]")
	assert.Contains(t, out, "Pack light.")
}

func TestCLI_Version(t *testing.T) {
	assert.Contains(t, mustRun(t, t.TempDir(), "version"), "arbor version dev")
}
