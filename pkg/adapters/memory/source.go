package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Source implements ports.TaskSource over a fixed set of rows.
type Source struct {
	tasks []domain.Task
}

// NewSource creates a Source from raw JSON task documents keyed by id.
// A document without an id takes its key.
func NewSource(data map[string]string) (*Source, error) {
	tasks := make([]domain.Task, 0, len(data))
	for key, raw := range data {
		var t domain.Task
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("failed to decode task %s: %w", key, err)
		}
		if t.ID == "" {
			t.ID = key
		}
		tasks = append(tasks, t)
	}
	ports.SortTasks(tasks)
	return &Source{tasks: tasks}, nil
}

// NewSourceFromTasks creates a Source from domain objects.
func NewSourceFromTasks(tasks ...domain.Task) *Source {
	return &Source{tasks: append([]domain.Task(nil), tasks...)}
}

// Tasks returns a copy of the rows.
func (s *Source) Tasks(ctx context.Context) ([]domain.Task, error) {
	return append([]domain.Task(nil), s.tasks...), nil
}
