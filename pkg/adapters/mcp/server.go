package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
)

// ForestURI is the resource holding the current hierarchy.
const ForestURI = "arbor://forest"

// TaskList is the structured output of list-shaped tools.
type TaskList struct {
	Tasks []domain.Task `json:"tasks" jsonschema_description:"Tasks in hierarchy order"`
}

// MutationResult is the structured output of structural tools.
type MutationResult struct {
	ID       string           `json:"id,omitempty" jsonschema_description:"The id the task has after the mutation"`
	Rewrites []domain.Rewrite `json:"rewrites" jsonschema_description:"Every id that changed, old to new"`
}

// CheckResult is the structured output of check_tree.
type CheckResult struct {
	Violations []domain.Violation `json:"violations"`
}

// AddTaskArgs are the arguments of add_task.
type AddTaskArgs struct {
	ParentID string `json:"parent_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// InsertAfterArgs are the arguments of insert_after.
type InsertAfterArgs struct {
	SiblingID string `json:"sibling_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// TaskArgs identify one task.
type TaskArgs struct {
	ID string `json:"id"`
}

// MoveArgs are the arguments of move_task.
type MoveArgs struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
}

// UpdateArgs are the arguments of update_task. Empty fields are left alone.
type UpdateArgs struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Status string `json:"status"`
}

// DependencyArgs are the arguments of add_dependency.
type DependencyArgs struct {
	TaskID      string `json:"task_id"`
	DependsOnID string `json:"depends_on_id"`
}

// Server wraps a task workspace and exposes it as an MCP Server.
type Server struct {
	svc       arborhttp.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(svc arborhttp.Service) *Server {
	s := &Server{
		svc: svc,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List every task in hierarchy order (1, 1.1, 1.1.1, 1.2, 2, ...)."),
		mcp.WithOutputSchema[TaskList](),
	), mcp.NewStructuredToolHandler(s.handleListTasks))

	s.mcpServer.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get one task with its body."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Dotted task id, e.g. 1.2")),
	), mcp.NewStructuredToolHandler(s.handleGetTask))

	s.mcpServer.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task as the last child of parent_id, or at the end of the root level when parent_id is empty."),
		mcp.WithString("parent_id", mcp.Description("Parent task id (optional)")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("body", mcp.Description("Markdown body (optional)")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleAddTask))

	s.mcpServer.AddTool(mcp.NewTool("insert_after",
		mcp.WithDescription("Insert a task right after sibling_id. Later siblings and their subtrees are renumbered."),
		mcp.WithString("sibling_id", mcp.Required(), mcp.Description("Task the new one follows")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("body", mcp.Description("Markdown body (optional)")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleInsertAfter))

	s.mcpServer.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. Its children are promoted to its parent and the group is renumbered."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task to delete")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleDeleteTask))

	s.mcpServer.AddTool(mcp.NewTool("move_task",
		mcp.WithDescription("Move a task and its subtree to the end of parent_id's children (root level when empty)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task to move")),
		mcp.WithString("parent_id", mcp.Description("New parent id (optional)")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleMoveTask))

	s.mcpServer.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Change the title, body or status of a task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task to update")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("body", mcp.Description("New markdown body")),
		mcp.WithString("status", mcp.Description("New status"), mcp.Enum(
			string(domain.StatusPending), string(domain.StatusInProgress),
			string(domain.StatusBlocked), string(domain.StatusDone),
		)),
	), mcp.NewStructuredToolHandler(s.handleUpdateTask))

	s.mcpServer.AddTool(mcp.NewTool("add_dependency",
		mcp.WithDescription("Record that task_id cannot start before depends_on_id is done."),
		mcp.WithString("task_id", mcp.Required()),
		mcp.WithString("depends_on_id", mcp.Required()),
	), mcp.NewStructuredToolHandler(s.handleAddDependency))

	s.mcpServer.AddTool(mcp.NewTool("list_blockers",
		mcp.WithDescription("List the dependencies of a task that are not done yet."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task to inspect")),
		mcp.WithOutputSchema[TaskList](),
	), mcp.NewStructuredToolHandler(s.handleListBlockers))

	s.mcpServer.AddTool(mcp.NewTool("check_tree",
		mcp.WithDescription("Report every numbering invariant the stored tasks break."),
		mcp.WithOutputSchema[CheckResult](),
	), mcp.NewStructuredToolHandler(s.handleCheck))
}

// Handler methods for structured tools

func (s *Server) handleListTasks(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (TaskList, error) {
	tasks, err := s.svc.Tasks(ctx)
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return TaskList{Tasks: tasks}, err
}

func (s *Server) handleListBlockers(ctx context.Context, _ mcp.CallToolRequest, args TaskArgs) (TaskList, error) {
	tasks, err := s.svc.Blockers(ctx, args.ID)
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return TaskList{Tasks: tasks}, err
}

func (s *Server) handleGetTask(ctx context.Context, _ mcp.CallToolRequest, args TaskArgs) (domain.Task, error) {
	return s.svc.Get(ctx, args.ID)
}

func (s *Server) handleAddTask(ctx context.Context, _ mcp.CallToolRequest, args AddTaskArgs) (MutationResult, error) {
	res, err := s.svc.AddChild(ctx, args.ParentID, domain.Task{Title: args.Title, Body: args.Body})
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{ID: res.NewID, Rewrites: rewrites(res.Plan)}, nil
}

func (s *Server) handleInsertAfter(ctx context.Context, _ mcp.CallToolRequest, args InsertAfterArgs) (MutationResult, error) {
	res, err := s.svc.InsertAfter(ctx, args.SiblingID, domain.Task{Title: args.Title, Body: args.Body})
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{ID: res.NewID, Rewrites: rewrites(res.Plan)}, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, _ mcp.CallToolRequest, args TaskArgs) (MutationResult, error) {
	res, err := s.svc.Delete(ctx, args.ID)
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Rewrites: rewrites(res.Plan)}, nil
}

func (s *Server) handleMoveTask(ctx context.Context, _ mcp.CallToolRequest, args MoveArgs) (MutationResult, error) {
	res, err := s.svc.Move(ctx, args.ID, args.ParentID)
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{ID: res.NewID, Rewrites: rewrites(res.Plan)}, nil
}

func (s *Server) handleUpdateTask(ctx context.Context, _ mcp.CallToolRequest, args UpdateArgs) (domain.Task, error) {
	return s.svc.Update(ctx, args.ID, func(t *domain.Task) error {
		if args.Title != "" {
			t.Title = args.Title
		}
		if args.Body != "" {
			t.Body = args.Body
		}
		if args.Status != "" {
			t.Status = domain.Status(args.Status)
		}
		return nil
	})
}

func (s *Server) handleAddDependency(ctx context.Context, _ mcp.CallToolRequest, args DependencyArgs) (domain.Dependency, error) {
	dep := domain.Dependency{TaskID: args.TaskID, DependsOnID: args.DependsOnID}
	return dep, s.svc.AddDependency(ctx, dep.TaskID, dep.DependsOnID)
}

func (s *Server) handleCheck(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (CheckResult, error) {
	violations, err := s.svc.Check(ctx)
	if violations == nil {
		violations = []domain.Violation{}
	}
	return CheckResult{Violations: violations}, err
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ForestURI, "Task Hierarchy",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		forest, warnings, err := s.svc.Forest(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to build forest: %w", err)
		}
		jsonBytes, err := json.Marshal(struct {
			Forest   domain.Forest    `json:"forest"`
			Warnings []domain.Warning `json:"warnings,omitempty"`
		}{forest, warnings})
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ForestURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func rewrites(p domain.Plan) []domain.Rewrite {
	if p.Rewrites == nil {
		return []domain.Rewrite{}
	}
	return p.Rewrites
}
