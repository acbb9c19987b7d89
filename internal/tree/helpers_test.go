package tree_test

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// tasksOf builds a consistent task set whose parents follow the ids.
func tasksOf(ids ...string) []domain.Task {
	out := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Task{ID: id, ParentID: taskid.ParentOf(id), Title: "task " + id})
	}
	return out
}

func idsOf(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func parse(ids ...string) []taskid.ID {
	out := make([]taskid.ID, 0, len(ids))
	for _, id := range ids {
		out = append(out, taskid.MustParse(id))
	}
	return out
}

func rw(pairs ...string) []domain.Rewrite {
	out := make([]domain.Rewrite, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Rewrite{OldID: pairs[i], NewID: pairs[i+1]})
	}
	return out
}
