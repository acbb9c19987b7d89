package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/workspace"
)

func call(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.MCPServer().GetTool(name)
	require.NotNil(t, tool, "tool %s not registered", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func structured[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, "%+v", res.Content)
	var v T
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestServer_Tools(t *testing.T) {
	mgr := workspace.NewManager(memory.NewStore())
	s := NewServer(mgr)

	added := structured[MutationResult](t, call(t, s, "add_task", map[string]any{"title": "Epic"}))
	assert.Equal(t, "1", added.ID)

	structured[MutationResult](t, call(t, s, "add_task", map[string]any{"parent_id": "1", "title": "Story"}))
	structured[MutationResult](t, call(t, s, "add_task", map[string]any{"parent_id": "1", "title": "Spike"}))

	inserted := structured[MutationResult](t, call(t, s, "insert_after", map[string]any{"sibling_id": "1.1", "title": "Review"}))
	assert.Equal(t, "1.2", inserted.ID)
	assert.Equal(t, []domain.Rewrite{{OldID: "1.2", NewID: "1.3"}}, inserted.Rewrites)

	list := structured[TaskList](t, call(t, s, "list_tasks", nil))
	require.Len(t, list.Tasks, 4)
	assert.Equal(t, "Spike", list.Tasks[3].Title)

	moved := structured[MutationResult](t, call(t, s, "move_task", map[string]any{"id": "1.3"}))
	assert.Equal(t, "2", moved.ID)

	deleted := structured[MutationResult](t, call(t, s, "delete_task", map[string]any{"id": "1.1"}))
	assert.Equal(t, []domain.Rewrite{{OldID: "1.2", NewID: "1.1"}}, deleted.Rewrites)

	updated := structured[domain.Task](t, call(t, s, "update_task", map[string]any{"id": "2", "status": "done"}))
	assert.Equal(t, domain.StatusDone, updated.Status)

	got := structured[domain.Task](t, call(t, s, "get_task", map[string]any{"id": "1.1"}))
	assert.Equal(t, "Review", got.Title)

	structured[domain.Dependency](t, call(t, s, "add_dependency", map[string]any{"task_id": "1", "depends_on_id": "2"}))

	blockers := structured[TaskList](t, call(t, s, "list_blockers", map[string]any{"id": "1"}))
	assert.Empty(t, blockers.Tasks, "2 is done")

	structured[domain.Task](t, call(t, s, "update_task", map[string]any{"id": "2", "status": "in_progress"}))
	blockers = structured[TaskList](t, call(t, s, "list_blockers", map[string]any{"id": "1"}))
	require.Len(t, blockers.Tasks, 1)
	assert.Equal(t, "2", blockers.Tasks[0].ID)

	check := structured[CheckResult](t, call(t, s, "check_tree", nil))
	assert.Empty(t, check.Violations)
}

func TestServer_ToolErrors(t *testing.T) {
	s := NewServer(workspace.NewManager(memory.NewStore()))

	res := call(t, s, "delete_task", map[string]any{"id": "4"})
	assert.True(t, res.IsError)

	res = call(t, s, "get_task", map[string]any{"id": "x.1"})
	assert.True(t, res.IsError)
}

func TestServer_ForestResource(t *testing.T) {
	ctx := context.Background()
	mgr := workspace.NewManager(memory.NewStore())
	_, err := mgr.AddChild(ctx, "", domain.Task{Title: "root"})
	require.NoError(t, err)
	_, err = mgr.AddChild(ctx, "1", domain.Task{Title: "leaf"})
	require.NoError(t, err)

	s := NewServer(mgr)
	msg := s.MCPServer().HandleMessage(ctx, json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"arbor://forest"}}`,
	))

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Contents []struct {
				URI  string `json:"uri"`
				Text string `json:"text"`
			} `json:"contents"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &resp), string(data))
	require.Len(t, resp.Result.Contents, 1)
	assert.Equal(t, ForestURI, resp.Result.Contents[0].URI)

	var body struct {
		Forest domain.Forest `json:"forest"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Contents[0].Text), &body))
	require.Len(t, body.Forest, 1)
	require.Len(t, body.Forest[0].Children, 1)
	assert.Equal(t, "leaf", body.Forest[0].Children[0].Task.Title)
}
