package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngagementMetrics exposes counters/histograms for the engagement pipeline.
// It satisfies the observer interfaces of llm, detection, responder and
// engagement, and every method is safe on a nil receiver.
type EngagementMetrics struct {
	messagesTotal    *prometheus.CounterVec
	detectionsTotal  *prometheus.CounterVec
	providerTotal    *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	repliesTotal     *prometheus.CounterVec
	completionsTotal *prometheus.CounterVec
	reportsTotal     *prometheus.CounterVec
	handleLatency    prometheus.Histogram
}

func NewEngagementMetrics(reg prometheus.Registerer) *EngagementMetrics {
	m := &EngagementMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "engagement",
			Name:      "messages_total",
			Help:      "Inbound messages by pipeline outcome",
		}, []string{"outcome"}),
		detectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "detection",
			Name:      "verdicts_total",
			Help:      "Detection verdicts by method",
		}, []string{"method", "is_scam"}),
		providerTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "llm",
			Name:      "provider_calls_total",
			Help:      "Text-generation provider calls by outcome",
		}, []string{"provider", "status"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "honeypot",
			Subsystem: "llm",
			Name:      "provider_latency_seconds",
			Help:      "Latency of text-generation provider calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 12, 20},
		}, []string{"provider"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "responder",
			Name:      "replies_total",
			Help:      "Replies produced by source",
		}, []string{"source", "character_break"}),
		completionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "engagement",
			Name:      "completions_total",
			Help:      "Sessions completed by stopping reason",
		}, []string{"reason"}),
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "report",
			Name:      "deliveries_total",
			Help:      "Final report deliveries by result",
		}, []string{"success"}),
		handleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "honeypot",
			Subsystem: "engagement",
			Name:      "handle_latency_seconds",
			Help:      "Time to process one inbound message, excluding pacing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.messagesTotal, m.detectionsTotal, m.providerTotal, m.providerLatency,
		m.repliesTotal, m.completionsTotal, m.reportsTotal, m.handleLatency,
	)
	return m
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func (m *EngagementMetrics) ObserveMessage(outcome string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

func (m *EngagementMetrics) ObserveDetection(method string, isScam bool) {
	if m == nil {
		return
	}
	m.detectionsTotal.WithLabelValues(method, boolLabel(isScam)).Inc()
}

func (m *EngagementMetrics) ObserveProvider(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.providerTotal.WithLabelValues(provider, status).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *EngagementMetrics) ObserveReply(source string, characterBreak bool) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(source, boolLabel(characterBreak)).Inc()
}

func (m *EngagementMetrics) ObserveCompletion(reason string) {
	if m == nil {
		return
	}
	m.completionsTotal.WithLabelValues(reason).Inc()
}

func (m *EngagementMetrics) ObserveReport(success bool) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(boolLabel(success)).Inc()
}

func (m *EngagementMetrics) ObserveHandleLatency(seconds float64) {
	if m == nil {
		return
	}
	m.handleLatency.Observe(seconds)
}
