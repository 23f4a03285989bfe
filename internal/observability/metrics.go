package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	TurnsProcessed *prometheus.CounterVec
	Clarifications prometheus.Counter
	ToolCalls      *prometheus.CounterVec
	TurnErrors     prometheus.Counter
	WSMessages     *prometheus.CounterVec
	TurnLatency    prometheus.Histogram

	stageWindow *turnStageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of conversation sessions held in memory.",
		}),
		TurnsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_processed_total",
			Help:      "Processed conversation turns by resolved intent.",
		}, []string{"intent"}),
		Clarifications: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clarifications_total",
			Help:      "Turns answered with a clarification question.",
		}),
		ToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		TurnErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_errors_total",
			Help:      "Turns that fell back to the degraded error response.",
		}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket chat messages by direction and type.",
		}, []string{"direction", "type"}),
		TurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "End-to-end turn processing latency in milliseconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		stageWindow: newTurnStageWindow(256),
	}
}

func (m *Metrics) ObserveTurnLatency(d time.Duration) {
	m.TurnLatency.Observe(float64(d.Microseconds()) / 1000.0)
}

// ObserveTurnStage records one pipeline stage duration in the rolling window.
func (m *Metrics) ObserveTurnStage(stage string, d time.Duration) {
	if m == nil || m.stageWindow == nil {
		return
	}
	m.stageWindow.Observe(stage, float64(d.Microseconds())/1000.0)
}

// ObserveIndicator counts a named per-turn outcome (action label).
func (m *Metrics) ObserveIndicator(name string) {
	if m == nil {
		return
	}
	m.stageWindow.ObserveIndicator(name)
}

func (m *Metrics) SnapshotTurnStages() TurnStageSnapshot {
	if m == nil || m.stageWindow == nil {
		return TurnStageSnapshot{}
	}
	return m.stageWindow.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
