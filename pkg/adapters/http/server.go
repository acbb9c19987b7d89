package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// Service is the part of workspace.Manager the API serves.
type Service interface {
	Tasks(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id string) (domain.Task, error)
	Forest(ctx context.Context) (domain.Forest, []domain.Warning, error)
	Descendants(ctx context.Context, id string) ([]domain.Task, error)
	Ancestors(ctx context.Context, id string) ([]domain.Task, error)
	Check(ctx context.Context) ([]domain.Violation, error)
	AddChild(ctx context.Context, parentID string, payload domain.Task) (arbor.InsertResult, error)
	InsertAfter(ctx context.Context, siblingID string, payload domain.Task) (arbor.InsertResult, error)
	Delete(ctx context.Context, id string) (arbor.DeleteResult, error)
	Move(ctx context.Context, id, newParentID string) (arbor.MoveResult, error)
	Renumber(ctx context.Context) (arbor.RenumberResult, error)
	Update(ctx context.Context, id string, fn func(t *domain.Task) error) (domain.Task, error)
	AddDependency(ctx context.Context, taskID, dependsOnID string) error
	RemoveDependency(ctx context.Context, taskID, dependsOnID string) error
	Dependencies(ctx context.Context) ([]domain.Dependency, error)
	Blockers(ctx context.Context, id string) ([]domain.Task, error)
}

// Server serves the task API over a Service.
type Server struct {
	Service Service
	Streams *StreamManager
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*options)

type options struct {
	metrics http.Handler
	streams *StreamManager
	logger  *slog.Logger
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(o *options) { o.metrics = h }
}

// WithStreams shares a StreamManager, typically one fed by CommitHooks.
func WithStreams(sm *StreamManager) Option {
	return func(o *options) { o.streams = sm }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// NewHandler creates the HTTP handler for the task API.
func NewHandler(svc Service, opts ...Option) http.Handler {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.streams == nil {
		o.streams = NewStreamManager()
	}
	s := &Server{Service: svc, Streams: o.streams, logger: o.logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.logger.Error("Failed to load OpenAPI spec", "error", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	if o.metrics != nil {
		r.Handle("/metrics", o.metrics)
	}
	return enableCORS(HandlerFromMux(s, r))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Arbor API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// CommitHooks returns mutation hooks that publish every commit to sm as an
// SSE message under the committed task id.
func CommitHooks(sm *StreamManager) domain.MutationHooks {
	return domain.MutationHooks{
		OnCommit: func(_ context.Context, e *domain.MutationEvent) {
			msg := commitMessage{Kind: e.Kind, TaskID: e.TaskID, Rewrites: e.Rewrites}
			if e.Err != nil {
				msg.Error = e.Err.Error()
			}
			data, err := json.Marshal(msg)
			if err != nil {
				return
			}
			sm.Broadcast(e.TaskID, string(data))
		},
	}
}

type commitMessage struct {
	Kind     domain.MutationKind `json:"kind"`
	TaskID   string              `json:"task_id,omitempty"`
	Rewrites int                 `json:"rewrites"`
	Error    string              `json:"error,omitempty"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Health{Status: "ok", Version: arbor.Version})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	s.writeJSON(w, http.StatusOK, Info{App: "arbor-http", Version: arbor.Version, ApiVersion: apiVersion})
}

// ListTasks handles GET /tasks.
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.Service.Tasks(r.Context())
	s.respond(w, mapTasksFromDomain(tasks), err)
}

// GetTask handles GET /tasks/{id}.
func (s *Server) GetTask(w http.ResponseWriter, r *http.Request, id string) {
	task, err := s.Service.Get(r.Context(), id)
	s.respond(w, mapTaskFromDomain(task), err)
}

// GetDescendants handles GET /tasks/{id}/descendants.
func (s *Server) GetDescendants(w http.ResponseWriter, r *http.Request, id string) {
	tasks, err := s.Service.Descendants(r.Context(), id)
	s.respond(w, mapTasksFromDomain(tasks), err)
}

// GetAncestors handles GET /tasks/{id}/ancestors.
func (s *Server) GetAncestors(w http.ResponseWriter, r *http.Request, id string) {
	tasks, err := s.Service.Ancestors(r.Context(), id)
	s.respond(w, mapTasksFromDomain(tasks), err)
}

// GetBlockers handles GET /tasks/{id}/blockers: dependencies that are not done yet.
func (s *Server) GetBlockers(w http.ResponseWriter, r *http.Request, id string) {
	tasks, err := s.Service.Blockers(r.Context(), id)
	s.respond(w, mapTasksFromDomain(tasks), err)
}

// GetForest handles GET /forest.
func (s *Server) GetForest(w http.ResponseWriter, r *http.Request) {
	forest, warnings, err := s.Service.Forest(r.Context())
	resp := ForestResponse{Forest: mapNodesFromDomain(forest)}
	if len(warnings) > 0 {
		resp.Warnings = ptr(mapWarningsFromDomain(warnings))
	}
	s.respond(w, resp, err)
}

// GetCheck handles GET /check.
func (s *Server) GetCheck(w http.ResponseWriter, r *http.Request) {
	violations, err := s.Service.Check(r.Context())
	resp := make([]Violation, len(violations))
	for i, v := range violations {
		resp[i] = Violation{Kind: string(v.Kind), TaskId: v.TaskID, Message: v.Message}
	}
	s.respond(w, resp, err)
}

// CreateTask handles POST /tasks: the new task becomes the last child of parent_id.
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	var body CreateTaskJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.Service.AddChild(r.Context(), deref(body.ParentId), mapTaskRequestToDomain(body))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, mutationResponse(res.NewID, &res.Task, res.Plan.Rewrites))
}

// InsertAfter handles POST /tasks/{id}/after.
func (s *Server) InsertAfter(w http.ResponseWriter, r *http.Request, id string) {
	var body InsertAfterJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.Service.InsertAfter(r.Context(), id, mapTaskRequestToDomain(body))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, mutationResponse(res.NewID, &res.Task, res.Plan.Rewrites))
}

// UpdateTask handles PATCH /tasks/{id}. Only payload fields may change.
func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request, id string) {
	var body UpdateTaskJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	if deref(body.ParentId) != "" {
		s.fail(w, domain.NewTreeError(domain.ErrInvalidMove, id, "use POST /tasks/{id}/move"))
		return
	}
	task, err := s.Service.Update(r.Context(), id, func(t *domain.Task) error {
		applyTaskRequest(body, t)
		return nil
	})
	s.respond(w, mapTaskFromDomain(task), err)
}

// DeleteTask handles DELETE /tasks/{id}.
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request, id string) {
	res, err := s.Service.Delete(r.Context(), id)
	s.respond(w, mutationResponse(res.RemovedID, nil, res.Plan.Rewrites), err)
}

// MoveTask handles POST /tasks/{id}/move.
func (s *Server) MoveTask(w http.ResponseWriter, r *http.Request, id string) {
	var body MoveTaskJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.Service.Move(r.Context(), id, deref(body.ParentId))
	s.respond(w, mutationResponse(res.NewID, nil, res.Plan.Rewrites), err)
}

// PostRenumber handles POST /renumber.
func (s *Server) PostRenumber(w http.ResponseWriter, r *http.Request) {
	res, err := s.Service.Renumber(r.Context())
	s.respond(w, mutationResponse("", nil, res.Plan.Rewrites), err)
}

// ListDependencies handles GET /dependencies.
func (s *Server) ListDependencies(w http.ResponseWriter, r *http.Request) {
	deps, err := s.Service.Dependencies(r.Context())
	resp := make([]Dependency, len(deps))
	for i, d := range deps {
		resp[i] = Dependency{TaskId: d.TaskID, DependsOnId: d.DependsOnID}
	}
	s.respond(w, resp, err)
}

// AddDependency handles POST /dependencies.
func (s *Server) AddDependency(w http.ResponseWriter, r *http.Request) {
	var body AddDependencyJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.Service.AddDependency(r.Context(), body.TaskId, body.DependsOnId); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, body)
}

// RemoveDependency handles DELETE /dependencies.
func (s *Server) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	var body RemoveDependencyJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.Service.RemoveDependency(r.Context(), body.TaskId, body.DependsOnId); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /events (SSE). ?task=ID limits the stream to
// commits that name that task; without it every commit is sent.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	topic := deref(params.Task)
	if topic == "" {
		topic = allTopics
	}
	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: commit\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	resp := ErrorResponse{Error: err.Error()}
	if kind != "" {
		resp.Kind = &kind
	}
	s.writeJSON(w, status, resp)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "invalid_id"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status"
	case errors.Is(err, domain.ErrInvalidMove):
		return http.StatusUnprocessableEntity, "invalid_move"
	case errors.Is(err, domain.ErrIDCollision):
		return http.StatusConflict, "id_collision"
	case errors.Is(err, domain.ErrCycleDetected):
		return http.StatusConflict, "cycle"
	case errors.Is(err, domain.ErrTaskExists):
		return http.StatusConflict, "exists"
	default:
		return http.StatusInternalServerError, ""
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mapTaskRequestToDomain(req TaskRequest) domain.Task {
	var t domain.Task
	applyTaskRequest(req, &t)
	return t
}

func applyTaskRequest(req TaskRequest, t *domain.Task) {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Body != nil {
		t.Body = *req.Body
	}
	if req.Status != nil {
		t.Status = domain.Status(*req.Status)
	}
}

func mapTaskFromDomain(d domain.Task) Task {
	t := Task{
		Id:       d.ID,
		ParentId: optional(d.ParentID),
		Title:    d.Title,
		Body:     optional(d.Body),
	}
	if d.Status != "" {
		t.Status = ptr(TaskStatus(d.Status))
	}
	if !d.CreatedAt.IsZero() {
		t.CreatedAt = ptr(d.CreatedAt)
	}
	if !d.UpdatedAt.IsZero() {
		t.UpdatedAt = ptr(d.UpdatedAt)
	}
	return t
}

func mapTasksFromDomain(tasks []domain.Task) []Task {
	res := make([]Task, len(tasks))
	for i, t := range tasks {
		res[i] = mapTaskFromDomain(t)
	}
	return res
}

func mapNodesFromDomain(nodes []*domain.Node) []Node {
	res := make([]Node, len(nodes))
	for i, n := range nodes {
		res[i] = Node{Task: mapTaskFromDomain(n.Task)}
		if len(n.Children) > 0 {
			res[i].Children = ptr(mapNodesFromDomain(n.Children))
		}
	}
	return res
}

func mapWarningsFromDomain(warnings []domain.Warning) []Warning {
	res := make([]Warning, len(warnings))
	for i, w := range warnings {
		res[i] = Warning{Kind: string(w.Kind), TaskId: w.TaskID, Ref: optional(w.Ref)}
	}
	return res
}

func mutationResponse(id string, task *domain.Task, rewrites []domain.Rewrite) MutationResponse {
	resp := MutationResponse{Id: optional(id), Rewrites: make([]Rewrite, len(rewrites))}
	if task != nil {
		resp.Task = ptr(mapTaskFromDomain(*task))
	}
	for i, rw := range rewrites {
		resp.Rewrites[i] = Rewrite{OldId: rw.OldID, NewId: rw.NewID}
	}
	return resp
}
