package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors published by procflow.
type Metrics struct {
	registry *prometheus.Registry

	StepTransitions *prometheus.CounterVec
	Suspensions     prometheus.Counter
	Terminations    *prometheus.CounterVec
	ActionCalls     *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		StepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_step_transitions_total",
			Help: "Steps completed, by step type and node.",
		}, []string{"step_type", "node"}),
		Suspensions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "procflow_suspensions_total",
			Help: "Times a session paused waiting for user input.",
		}),
		Terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_terminations_total",
			Help: "Sessions that ended without a final response, by reason.",
		}, []string{"reason"}),
		ActionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_action_calls_total",
			Help: "Remote action invocations, by action and status.",
		}, []string{"action", "status"}),
		ActionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procflow_action_duration_seconds",
			Help:    "Duration of remote action invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
	}
	reg.MustRegister(m.StepTransitions, m.Suspensions, m.Terminations, m.ActionCalls, m.ActionDuration)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAction implements action.Observer.
func (m *Metrics) ObserveAction(action string, status domain.ActionStatus, elapsed time.Duration) {
	m.ActionCalls.WithLabelValues(action, string(status)).Inc()
	m.ActionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// Hooks returns lifecycle hooks feeding the step counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.StepTransitions.WithLabelValues(string(e.StepType), e.Node).Inc()
		},
		OnSuspend: func(context.Context, *domain.StepEvent) {
			m.Suspensions.Inc()
		},
		OnTerminate: func(_ context.Context, e *domain.StepEvent) {
			reason := "end_of_procedure"
			if e.Err != nil {
				reason = "routing_error"
			}
			m.Terminations.WithLabelValues(reason).Inc()
		},
	}
}
