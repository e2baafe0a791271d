/*
Package observability exposes the engine's activity to operators.

Metrics publishes Prometheus counters and histograms for step transitions,
suspensions, terminations and action calls. It plugs into the engine as a set
of lifecycle hooks and into the action compiler as an Observer:

	m := observability.NewMetrics(prometheus.NewRegistry())
	compiler := action.NewCompiler(action.WithObserver(m))
	engine := runtime.NewEngine(reg, runtime.WithLifecycleHooks(m.Hooks()))
	http.Handle("/metrics", m.Handler())

LogHooks produces hooks that write one structured log line per event.
*/
package observability
