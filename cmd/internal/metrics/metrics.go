package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "calendarbot"

// Metrics holds the collectors of the assistant pipeline. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	intents     *prometheus.CounterVec
	toolResults *prometheus.CounterVec
	llmRequests *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
	chatTurns   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Classified chat messages by intent.",
		}, []string{"intent"}),
		toolResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_results_total",
			Help:      "Calendar tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Language model completions by pipeline stage and status.",
		}, []string{"stage", "status"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Language model completion latency by pipeline stage.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"stage"}),
		chatTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Completed chat turns by front end and status.",
		}, []string{"frontend", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.intents,
		m.toolResults,
		m.llmRequests,
		m.llmDuration,
		m.chatTurns,
	)
	return m
}

func (m *Metrics) Intent(intent string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intent).Inc()
}

func (m *Metrics) ToolResult(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolResults.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) LLMRequest(stage, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(stage, status).Inc()
	m.llmDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *Metrics) ChatTurn(frontend, status string) {
	if m == nil {
		return
	}
	m.chatTurns.WithLabelValues(frontend, status).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
