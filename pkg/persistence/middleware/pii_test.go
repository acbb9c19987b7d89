package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewPIIMiddleware([]string{`[\w.]+@[\w.]+`, `\d{3}-\d{2}-\d{4}`})
	secureStore := middleware.Chain(underlyingStore, mw)

	ctx := context.Background()
	tasks := []domain.Task{{
		ID:    "1",
		Title: "Email jdoe@example.com",
		Body:  "SSN 999-99-9999, call back",
	}}

	if err := secureStore.Commit(ctx, domain.ChangeSet{Upserts: tasks}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if tasks[0].Title != "Email jdoe@example.com" {
		t.Error("Middleware modified the caller's rows!")
	}

	stored, err := underlyingStore.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if stored.Title != "Email ***" {
		t.Errorf("Email should be masked, got: %q", stored.Title)
	}
	if stored.Body != "SSN ***, call back" {
		t.Errorf("SSN should be masked, got: %q", stored.Body)
	}
}
