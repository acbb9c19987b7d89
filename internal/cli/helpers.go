package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/arbor/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

func debugHooks(logger *slog.Logger) domain.MutationHooks {
	return domain.MutationHooks{
		OnPlan: func(ctx context.Context, e *domain.MutationEvent) {
			if e.Err != nil {
				logger.Debug("Plan Rejected", "kind", e.Kind, "task_id", e.TaskID, "err", e.Err)
				return
			}
			logger.Debug("Plan", "kind", e.Kind, "task_id", e.TaskID, "rewrites", e.Rewrites)
		},
		OnWarning: func(ctx context.Context, w domain.Warning) {
			logger.Debug("Tree Warning", "kind", w.Kind, "task_id", w.TaskID, "ref", w.Ref)
		},
	}
}
