package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for a process. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	passesTotal      prometheus.Counter
	passDuration     prometheus.Histogram
	updatesTotal     *prometheus.CounterVec
	rerendersTotal   *prometheus.CounterVec
	rerenderDuration *prometheus.HistogramVec
	skippedTotal     prometheus.Counter
	hostOpsTotal     *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	sessionFaults    prometheus.Counter
	framesTotal      *prometheus.CounterVec
}

// NewMetrics registers the collectors.
//
// Metrics collected:
//   - patchwork_passes_total: Counter of scheduler passes
//   - patchwork_pass_duration_seconds: Histogram of pass duration
//   - patchwork_updates_total: Counter of applied messages by whether they requested a re-render
//   - patchwork_rerenders_total: Counter of re-renders by component
//   - patchwork_rerender_duration_seconds: Histogram of re-render duration by component
//   - patchwork_skipped_rerenders_total: Counter of re-renders dropped for discarded nodes
//   - patchwork_host_ops_total: Counter of host mutations by op
//   - patchwork_active_sessions: Gauge of open remote sessions
//   - patchwork_session_faults_total: Counter of sessions closed by a runtime fault
//   - patchwork_frames_sent_total: Counter of frames sent to clients by type
func NewMetrics(opts ...Option) *Metrics {
	config := newConfig(opts)
	factory := promauto.With(config.Registry)

	return &Metrics{
		passesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of scheduler passes",
			ConstLabels: config.ConstLabels,
		}),

		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Scheduler pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of messages applied to components",
			ConstLabels: config.ConstLabels,
		}, []string{"rerender"}),

		rerendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rerenders_total",
			Help:        "Total number of component re-renders",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		rerenderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rerender_duration_seconds",
			Help:        "Component re-render duration in seconds, patch included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		skippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "skipped_rerenders_total",
			Help:        "Total number of queued re-renders dropped because the node was discarded",
			ConstLabels: config.ConstLabels,
		}),

		hostOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_ops_total",
			Help:        "Total number of host mutations by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open remote sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionFaults: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "session_faults_total",
			Help:        "Total number of sessions terminated by a runtime fault",
			ConstLabels: config.ConstLabels,
		}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Total number of frames sent to clients by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// RecordPass records a finished scheduler pass.
func (m *Metrics) RecordPass(elapsed time.Duration, skipped int) {
	if m == nil {
		return
	}
	m.passesTotal.Inc()
	m.passDuration.Observe(elapsed.Seconds())
	m.skippedTotal.Add(float64(skipped))
}

// RecordUpdate records an applied message.
func (m *Metrics) RecordUpdate(rerender bool) {
	if m == nil {
		return
	}
	label := "false"
	if rerender {
		label = "true"
	}
	m.updatesTotal.WithLabelValues(label).Inc()
}

// RecordRerender records a component re-render.
func (m *Metrics) RecordRerender(component string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rerendersTotal.WithLabelValues(component).Inc()
	m.rerenderDuration.WithLabelValues(component).Observe(elapsed.Seconds())
}

// RecordHostOp records a host mutation.
func (m *Metrics) RecordHostOp(op string) {
	if m == nil {
		return
	}
	m.hostOpsTotal.WithLabelValues(op).Inc()
}

// RecordSessionOpen records a new remote session.
func (m *Metrics) RecordSessionOpen() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// RecordSessionClose records a closed session. fault marks sessions
// terminated by a runtime fault.
func (m *Metrics) RecordSessionClose(fault bool) {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	if fault {
		m.sessionFaults.Inc()
	}
}

// RecordFrame records a frame sent to a client.
func (m *Metrics) RecordFrame(frameType string) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(frameType).Inc()
}
