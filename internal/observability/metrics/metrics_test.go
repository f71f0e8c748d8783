package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestEngagementMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngagementMetrics(reg)

	m.ObserveMessage("replied")
	m.ObserveMessage("replied")
	m.ObserveDetection("pattern", true)
	m.ObserveProvider("gemini", "timeout", 12)
	m.ObserveProvider("bedrock", "ok", 0.8)
	m.ObserveReply("template", true)
	m.ObserveCompletion("intelligence_extracted")
	m.ObserveReport(false)
	m.ObserveHandleLatency(0.05)

	if got := testutil.ToFloat64(m.messagesTotal.WithLabelValues("replied")); got != 2 {
		t.Fatalf("expected 2 replied messages, got %v", got)
	}
	if got := testutil.ToFloat64(m.providerTotal.WithLabelValues("gemini", "timeout")); got != 1 {
		t.Fatalf("expected 1 gemini timeout, got %v", got)
	}
	if got := testutil.ToFloat64(m.repliesTotal.WithLabelValues("template", "true")); got != 1 {
		t.Fatalf("expected 1 template reply, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var latency *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "honeypot_llm_provider_latency_seconds" {
			latency = f
		}
	}
	if latency == nil {
		t.Fatal("provider latency histogram not registered")
	}
	if n := len(latency.GetMetric()); n != 2 {
		t.Fatalf("expected 2 provider series, got %d", n)
	}
}

func TestEngagementMetricsNilSafe(t *testing.T) {
	var m *EngagementMetrics
	m.ObserveMessage("x")
	m.ObserveDetection("pattern", false)
	m.ObserveProvider("gemini", "ok", 1)
	m.ObserveReply("gemini", false)
	m.ObserveCompletion("max_messages")
	m.ObserveReport(true)
	m.ObserveHandleLatency(1)
}
