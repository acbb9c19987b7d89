package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// Source reads tasks from a directory of markdown documents with YAML
// frontmatter, one task per document. The document body becomes the task
// body. It implements ports.TaskSource and never writes.
//
// A document without an id takes its file name (so "1.2.md" is task 1.2);
// a document without a parent takes the one its id encodes.
type Source struct {
	Repo *loam.TypedRepository[TaskMetadata]
}

// New wraps an initialized Loam repository.
func New(repo core.Repository) *Source {
	return &Source{Repo: loam.NewTypedRepository[TaskMetadata](repo)}
}

// Open initializes a Loam repository rooted at dir, without versioning.
func Open(dir string) (*Source, error) {
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to open task directory %s: %w", dir, err)
	}
	return New(repo), nil
}

// Tasks returns every document as a task, in hierarchy order.
func (s *Source) Tasks(ctx context.Context) ([]domain.Task, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	tasks := make([]domain.Task, 0, len(docs))
	for _, doc := range docs {
		meta := doc.Data

		id := meta.ID
		if id == "" {
			id = path.Base(trimExtension(doc.ID))
		}
		if !taskid.Valid(id) {
			return nil, domain.NewTreeError(domain.ErrInvalidID, id, "in document %s", doc.ID)
		}
		if other, ok := seen[id]; ok {
			return nil, domain.NewTreeError(domain.ErrTaskExists, id, "defined in both %s and %s", other, doc.ID)
		}
		seen[id] = doc.ID

		status := domain.Status(meta.Status)
		if status != "" && !status.Valid() {
			return nil, domain.NewTreeError(domain.ErrInvalidStatus, id, "unknown status %q in document %s", meta.Status, doc.ID)
		}

		parent := meta.Parent
		if parent == "" {
			parent = taskid.ParentOf(id)
		}

		title := meta.Title
		if title == "" {
			title = firstHeading(doc.Content)
		}

		created, err := parseCreated(meta.Created)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}

		tasks = append(tasks, domain.Task{
			ID:        id,
			ParentID:  parent,
			Title:     title,
			Status:    status,
			Body:      strings.TrimSpace(doc.Content),
			CreatedAt: created,
		})
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return taskid.CompareStrings(tasks[i].ID, tasks[j].ID) < 0
	})
	return tasks, nil
}

func parseCreated(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid created date %q", raw)
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
		if line != "" {
			return line
		}
	}
	return ""
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	// Task ids contain dots; only strip real file extensions.
	if ext == "" || taskid.Valid(strings.TrimPrefix(ext, ".")) {
		return filepath.ToSlash(id)
	}
	return filepath.ToSlash(strings.TrimSuffix(id, ext))
}
