package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	key := generateKey(t)
	ports.RunStoreContract(t, func(t *testing.T) ports.Store {
		return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(memory.NewStore())
	})
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlyingStore)

	ctx := context.Background()
	task := domain.Task{ID: "1", Title: "Rotate credentials", Body: "my-secret-sauce"}

	if err := secureStore.Commit(ctx, domain.ChangeSet{Upserts: []domain.Task{task}}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	stored, err := underlyingStore.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if strings.Contains(stored.Body, "my-secret-sauce") {
		t.Fatalf("Expected body to be hidden, found: %v", stored.Body)
	}
	if !strings.HasPrefix(stored.Body, "enc:v1:") {
		t.Fatalf("Expected envelope prefix, got %q", stored.Body)
	}
	if stored.Title != "Rotate credentials" {
		t.Errorf("Title should stay readable, got %q", stored.Title)
	}

	loaded, err := secureStore.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	if loaded.Body != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", loaded.Body)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	if err := secureStoreOld.Commit(ctx, domain.ChangeSet{Upserts: []domain.Task{{ID: "1", Body: "encrypted-with-old-key"}}}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	tasks, err := secureStoreNew.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot with rotated key failed: %v", err)
	}
	if tasks[0].Body != "encrypted-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	tasks[0].Body = "encrypted-with-new-key"
	if err := secureStoreNew.Commit(ctx, domain.ChangeSet{Upserts: tasks}); err != nil {
		t.Fatalf("Commit with new key failed: %v", err)
	}

	if _, err := secureStoreOld.Get(ctx, "1"); err == nil {
		t.Error("Expected failure when reading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainBodies(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	if err := underlyingStore.Commit(ctx, domain.ChangeSet{Upserts: []domain.Task{{ID: "1", Body: "plain"}}}); err != nil {
		t.Fatal(err)
	}

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Snapshot(ctx); err == nil {
		t.Error("Expected plain body to be rejected")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}
