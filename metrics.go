package actorloop

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional prometheus-backed sink for runtime observability.
// A nil *Metrics is valid everywhere it's accepted and every recording
// method is a no-op on it, so the core never pays for the domain stack
// when the caller hasn't opted in.
//
// This replaces the upstream eventloop package's P-Square streaming
// percentile estimator (see DESIGN.md): that estimator is tuned for a
// single in-process loop reporting its own latency distribution back to
// callers in-process, whereas this runtime's natural observability surface
// is a multi-context, multi-actor fleet scraped externally, which a
// standard histogram already serves without hand-rolled quantile math.
type Metrics struct {
	reactiveTime  *prometheus.HistogramVec
	queueDepth    *prometheus.GaugeVec
	wakeCoalesced *prometheus.CounterVec
	reactorErrors *prometheus.CounterVec
}

// NewMetrics constructs a Metrics sink and registers its collectors with
// reg. Pass prometheus.DefaultRegisterer to use the global registry, or a
// fresh prometheus.NewRegistry() for isolated tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reactiveTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "actorloop",
			Name:      "reactive_time_seconds",
			Help:      "Time spent inside Stateful.Trigger per scheduler tick.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"context_id"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "actorloop",
			Name:      "actor_queue_depth",
			Help:      "Combined ready+waiting length sampled on every scheduler tick.",
		}, []string{"context_id"}),
		wakeCoalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "actorloop",
			Name:      "wake_coalesced_total",
			Help:      "Count of Send calls that observed the wake handle already pending.",
		}, []string{"context_id"}),
		reactorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "actorloop",
			Name:      "reactor_errors_total",
			Help:      "Count of errors (including recovered panics) raised from React.",
		}, []string{"context_id"}),
	}
	collectors := []prometheus.Collector{m.reactiveTime, m.queueDepth, m.wakeCoalesced, m.reactorErrors}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeReactiveTime(contextID string, d time.Duration) {
	if m == nil {
		return
	}
	m.reactiveTime.WithLabelValues(contextID).Observe(d.Seconds())
}

func (m *Metrics) setQueueDepth(contextID string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(contextID).Set(float64(depth))
}

func (m *Metrics) incWakeCoalesced(contextID string) {
	if m == nil {
		return
	}
	m.wakeCoalesced.WithLabelValues(contextID).Inc()
}

func (m *Metrics) incReactorErrors(contextID string) {
	if m == nil {
		return
	}
	m.reactorErrors.WithLabelValues(contextID).Inc()
}
