package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

const documentVersion = 1

// document is the on-disk layout of a workspace.
type document struct {
	Version      int                 `json:"version"`
	Tasks        []domain.Task       `json:"tasks"`
	Dependencies []domain.Dependency `json:"dependencies,omitempty"`
}

// Store implements ports.Store using a single JSON file.
// Every commit rewrites the whole document atomically, so readers never see
// a half-applied ChangeSet.
type Store struct {
	Path string
	mu   sync.Mutex
}

// New creates a new Store backed by path.
// If path is empty, it defaults to ".arbor/tasks.json".
func New(path string) *Store {
	if path == "" {
		path = filepath.Join(".arbor", "tasks.json")
	}
	return &Store{Path: path}
}

// Snapshot returns every row in the document.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

// Get retrieves one task.
func (s *Store) Get(ctx context.Context, id string) (domain.Task, error) {
	tasks, err := s.Snapshot(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, domain.NotFound(id)
}

// Commit applies cs to the document and replaces the file in one rename.
func (s *Store) Commit(ctx context.Context, cs domain.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	tasks, deps, err := cs.Apply(doc.Tasks, doc.Dependencies)
	if err != nil {
		return err
	}
	doc.Tasks, doc.Dependencies = tasks, deps
	return s.write(doc)
}

// AddDependency records an edge between two known tasks.
func (s *Store) AddDependency(ctx context.Context, dep domain.Dependency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(doc.Tasks))
	for _, t := range doc.Tasks {
		known[t.ID] = true
	}
	for _, id := range []string{dep.TaskID, dep.DependsOnID} {
		if !known[id] {
			return domain.NotFound(id)
		}
	}
	for _, d := range doc.Dependencies {
		if d == dep {
			return nil
		}
	}
	doc.Dependencies = append(doc.Dependencies, dep)
	return s.write(doc)
}

// RemoveDependency deletes an edge if present.
func (s *Store) RemoveDependency(ctx context.Context, dep domain.Dependency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	kept := make([]domain.Dependency, 0, len(doc.Dependencies))
	for _, d := range doc.Dependencies {
		if d != dep {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(doc.Dependencies) {
		return nil
	}
	doc.Dependencies = kept
	return s.write(doc)
}

// Dependencies returns every edge.
func (s *Store) Dependencies(ctx context.Context) ([]domain.Dependency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	ports.SortDependencies(doc.Dependencies)
	return doc.Dependencies, nil
}

// read loads the document. A missing file is an empty workspace.
func (s *Store) read() (*document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Version: documentVersion}, nil
		}
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task file: %w", err)
	}
	if doc.Version > documentVersion {
		return nil, fmt.Errorf("task file version %d is newer than supported version %d", doc.Version, documentVersion)
	}
	return &doc, nil
}

// write persists the document to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) write(doc *document) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure task directory: %w", err)
	}

	doc.Version = documentVersion
	ports.SortTasks(doc.Tasks)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(s.Path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to rename temp file to task file: %w", err)
	}
	return nil
}
