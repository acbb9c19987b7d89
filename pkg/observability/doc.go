/*
Package observability exports arbor mutation activity as Prometheus metrics.

Metrics are fed exclusively from domain.MutationHooks, so any Engine or
workspace.Manager can be instrumented without changes:

	m := observability.NewMetrics(prometheus.NewRegistry())
	mgr := workspace.NewManager(store, workspace.WithMutationHooks(m.Hooks()))
	http.Handle("/metrics", m.Handler())
*/
package observability
