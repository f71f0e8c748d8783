package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/engagement"
	"github.com/wolfman30/honeypot-ai/internal/http/handlers"
	"github.com/wolfman30/honeypot-ai/internal/llm"
	"github.com/wolfman30/honeypot-ai/internal/observability/metrics"
	"github.com/wolfman30/honeypot-ai/internal/responder"
	"github.com/wolfman30/honeypot-ai/internal/session"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) Complete(context.Context, llm.Request) (llm.Response, error) {
	return llm.Response{Text: "ok which one", Provider: "echo"}, nil
}

func newTestRouter(t *testing.T, cfg Config) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.NewEngagementMetrics(reg)
	ctrl, err := engagement.NewController(engagement.Deps{
		Registry:  session.NewRegistry(nil),
		Detector:  detection.NewDetector(nil),
		Responder: responder.New(echoProvider{}, responder.NewRand(3), nil),
		Observer:  m,
	})
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	t.Cleanup(ctrl.Wait)

	cfg.Logger = logging.Default()
	cfg.Honeypot = handlers.NewHoneypotHandler(ctrl, cfg.Logger)
	cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return New(&cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, Config{APIKey: "secret"})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterRequiresAPIKey(t *testing.T) {
	router := newTestRouter(t, Config{APIKey: "secret"})
	body := `{"sessionId":"r1","message":{"text":"Your account is blocked, verify now"}}`

	req := httptest.NewRequest(http.MethodPost, "/api/honeypot", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/honeypot", strings.NewReader(body))
	req.Header.Set("x-api-key", "secret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, Config{})
	body := `{"sessionId":"r2","message":{"text":"hello"}}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/honeypot", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "honeypot_") {
		t.Fatalf("expected honeypot metrics in output")
	}
}

func TestRouterRateLimitsInbound(t *testing.T) {
	router := newTestRouter(t, Config{RateLimitRPS: 0.001, RateLimitBurst: 1})
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/honeypot", strings.NewReader(`{"sessionId":"r3","message":{"text":"hi"}}`))
		req.RemoteAddr = "192.0.2.10:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}
