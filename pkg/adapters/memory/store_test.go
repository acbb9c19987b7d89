package memory_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStoreContract(t, func(t *testing.T) ports.Store {
		return memory.NewStore()
	})
}
