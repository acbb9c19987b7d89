package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/arbor/pkg/domain"
)

// Metrics holds the arbor collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	plans        *prometheus.CounterVec
	planRewrites *prometheus.HistogramVec
	commits      *prometheus.CounterVec
	commitTime   *prometheus.HistogramVec
	warnings     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registry.
// A nil registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_plans_total",
				Help: "Structural mutations planned, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		planRewrites: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_plan_rewrites",
				Help:    "Number of id rewrites in accepted plans",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
			},
			[]string{"kind"},
		),
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_commits_total",
				Help: "Change sets committed to the store, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		commitTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_commit_duration_seconds",
				Help:    "Time from snapshot to committed change set",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_tree_warnings_total",
				Help: "Inconsistencies found while deriving the hierarchy",
			},
			[]string{"kind"},
		),
	}
	registry.MustRegister(m.plans, m.planRewrites, m.commits, m.commitTime, m.warnings)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns mutation hooks that record into m.
func (m *Metrics) Hooks() domain.MutationHooks {
	return domain.MutationHooks{
		OnPlan: func(_ context.Context, e *domain.MutationEvent) {
			m.plans.WithLabelValues(string(e.Kind), outcome(e.Err)).Inc()
			if e.Err == nil {
				m.planRewrites.WithLabelValues(string(e.Kind)).Observe(float64(e.Rewrites))
			}
		},
		OnWarning: func(_ context.Context, w domain.Warning) {
			m.warnings.WithLabelValues(string(w.Kind)).Inc()
		},
		OnCommit: func(_ context.Context, e *domain.MutationEvent) {
			m.commits.WithLabelValues(string(e.Kind), outcome(e.Err)).Inc()
			if e.Err == nil {
				m.commitTime.WithLabelValues(string(e.Kind)).Observe(e.Duration.Seconds())
			}
		},
	}
}

// Combine merges several hook sets into one that calls each in order.
func Combine(sets ...domain.MutationHooks) domain.MutationHooks {
	var out domain.MutationHooks
	for _, h := range sets {
		h := h
		if h.OnPlan != nil {
			prev := out.OnPlan
			out.OnPlan = func(ctx context.Context, e *domain.MutationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnPlan(ctx, e)
			}
		}
		if h.OnWarning != nil {
			prev := out.OnWarning
			out.OnWarning = func(ctx context.Context, w domain.Warning) {
				if prev != nil {
					prev(ctx, w)
				}
				h.OnWarning(ctx, w)
			}
		}
		if h.OnCommit != nil {
			prev := out.OnCommit
			out.OnCommit = func(ctx context.Context, e *domain.MutationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnCommit(ctx, e)
			}
		}
	}
	return out
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrIDCollision):
		return "collision"
	case errors.Is(err, domain.ErrInvalidMove), errors.Is(err, domain.ErrInvalidID):
		return "rejected"
	default:
		return "error"
	}
}
