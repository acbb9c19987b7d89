package cli

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/domain"
)

func newApp(t *testing.T, dir string, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	app, err := New(Options{Dir: dir, Quiet: true}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestOpen_FileDriverDefaultsUnderWorkspace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.Save(filepath.Join(dir, config.DefaultPath), config.Default()))

	app, err := Open(Options{Dir: dir, Quiet: true})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Manager.AddChild(context.Background(), "", domain.Task{Title: "Root"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".arbor", "tasks.json"))
}

func TestOpen_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: mongo\n"), 0o644))

	_, err := Open(Options{Dir: dir})
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestNew_SQLiteRelativePath(t *testing.T) {
	dir := t.TempDir()
	app := newApp(t, dir, func(c *config.Config) {
		c.Store.Driver = config.DriverSQLite
		c.Store.Path = "data/tasks.db"
	})

	ctx := context.Background()
	_, err := app.Manager.AddChild(ctx, "", domain.Task{Title: "Root"})
	require.NoError(t, err)
	_, err = app.Manager.AddChild(ctx, "1", domain.Task{Title: "Child"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "data", "tasks.db"))
	tasks, err := app.Manager.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1.1", tasks[1].ID)
}

func TestNew_RedisDriverUsesDistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	app := newApp(t, t.TempDir(), func(c *config.Config) {
		c.Store.Driver = config.DriverRedis
		c.Store.RedisAddr = mr.Addr()
		c.Store.Prefix = "proj:"
	})

	_, err := app.Manager.AddChild(context.Background(), "", domain.Task{Title: "Root"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("proj:tasks"))
	assert.False(t, mr.Exists("proj:lock:tasks"), "lock must be released after the commit")
}

func TestNew_EncryptionAtRest(t *testing.T) {
	dir := t.TempDir()
	key := hex.EncodeToString([]byte(strings.Repeat("k", 32)))
	app := newApp(t, dir, func(c *config.Config) { c.EncryptionKey = key })

	ctx := context.Background()
	_, err := app.Manager.AddChild(ctx, "", domain.Task{Title: "Root", Body: "launch codes"})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, ".arbor", "tasks.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "launch codes")

	got, err := app.Manager.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "launch codes", got.Body)
}

func TestNew_Redaction(t *testing.T) {
	app := newApp(t, t.TempDir(), func(c *config.Config) {
		c.Store.Driver = config.DriverMemory
		c.RedactPatterns = []string{`\d{3}-\d{4}`}
	})

	ctx := context.Background()
	_, err := app.Manager.AddChild(ctx, "", domain.Task{Title: "Call 555-1234"})
	require.NoError(t, err)

	got, err := app.Manager.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Call ***", got.Title)
}

func TestNew_CommitsReachMetricsAndStreams(t *testing.T) {
	app := newApp(t, t.TempDir(), func(c *config.Config) { c.Store.Driver = config.DriverMemory })
	events, cancel := app.Streams.Subscribe("*")
	defer cancel()

	_, err := app.Manager.AddChild(context.Background(), "", domain.Task{Title: "Root"})
	require.NoError(t, err)

	select {
	case msg := <-events:
		assert.Contains(t, msg, `"kind":"insert_child"`)
	default:
		t.Fatal("expected a commit message on the stream")
	}

	families, err := app.Metrics.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() == "arbor_commits_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDecodeKey(t *testing.T) {
	raw := []byte(strings.Repeat("a", 32))

	key, err := decodeKey(hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, key)

	key, err = decodeKey("YWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWE=")
	require.NoError(t, err)
	assert.Equal(t, raw, key)

	_, err = decodeKey("short")
	assert.Error(t, err)
}

func TestCreateLogger_UnknownLevel(t *testing.T) {
	_, err := createLogger("loud", false, false)
	assert.Error(t, err)
}
