// Package metrics holds the Prometheus collectors for entropy resolution and tool execution.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agent"

// Metrics groups the counters recorded by the resolver and the runner.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	resolutions    *prometheus.CounterVec
	remoteFailures *prometheus.CounterVec
	toolCalls      *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entropy_resolutions_total",
			Help:      "Entropy resolutions by the source that produced the value.",
		}, []string{"source"}),
		remoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entropy_remote_failures_total",
			Help:      "Failed remote entropy attempts by reason.",
		}, []string{"reason"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.resolutions, m.remoteFailures, m.toolCalls} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveResolution counts one resolved value from source.
func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source).Inc()
}

// ObserveRemoteFailure counts one failed remote attempt.
func (m *Metrics) ObserveRemoteFailure(reason string) {
	if m == nil {
		return
	}
	m.remoteFailures.WithLabelValues(reason).Inc()
}

// ObserveToolCall counts one tool execution. outcome is "ok", "error" or "not_found".
func (m *Metrics) ObserveToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
