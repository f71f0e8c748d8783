package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/honeypot-ai/internal/api/router"
	appconfig "github.com/wolfman30/honeypot-ai/internal/config"
	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/engagement"
	"github.com/wolfman30/honeypot-ai/internal/http/handlers"
	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/internal/llm"
	"github.com/wolfman30/honeypot-ai/internal/observability/metrics"
	"github.com/wolfman30/honeypot-ai/internal/report"
	"github.com/wolfman30/honeypot-ai/internal/responder"
	"github.com/wolfman30/honeypot-ai/internal/session"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// App is the fully wired service.
type App struct {
	Controller *engagement.Controller
	Handler    http.Handler
	Providers  *Providers

	closers []func()
}

// Close waits for background report work and releases clients.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Controller != nil {
		a.Controller.Wait()
	}
	if a.Providers != nil {
		a.Providers.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build constructs every collaborator once and wires the controller and
// router. reg may be nil to use the default Prometheus registry.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg prometheus.Registerer) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	app := &App{}
	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	m := metrics.NewEngagementMetrics(reg)
	loader := NewAWSLoader(cfg)

	app.Providers = BuildProviders(ctx, cfg, loader, logger)
	replies := llm.NewChain(app.Providers.Clients, cfg.ProviderTimeout, logger, llm.WithObserver(m))

	extractor := intel.New(intel.Options{})
	detectorOpts := []detection.Option{
		detection.WithExtractor(extractor),
		detection.WithObserver(m),
	}
	if clients := classifierClients(cfg, app.Providers, logger); len(clients) > 0 {
		classifierChain := llm.NewChain(clients, cfg.ClassifierTimeout, logger, llm.WithObserver(m))
		detectorOpts = append(detectorOpts, detection.WithClassifier(detection.NewLLMClassifier(classifierChain)))
		logger.Info("semantic classifier enabled", "providers", classifierChain.Len())
	}

	sessions, closeSessions, err := BuildSessionStore(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, closeSessions)

	evidenceStore, closeEvidence, err := BuildEvidenceStore(ctx, cfg, loader, logger)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, closeEvidence)

	deps := engagement.Deps{
		Registry:  session.NewRegistry(sessions),
		Extractor: extractor,
		Detector:  detection.NewDetector(logger, detectorOpts...),
		Responder: responder.New(replies, responder.NewRand(cfg.RandomSeed), logger,
			responder.WithObserver(m),
		),
		Policy:        session.NewStopPolicy(cfg.MaxMessages),
		Evidence:      evidenceStore,
		Observer:      m,
		Logger:        logger,
		Pacing:        cfg.PacingEnabled,
		ReportTimeout: dispatchBudget(cfg),
	}

	if cfg.ReportURL != "" {
		client, err := report.NewClient(report.Config{
			URL:         cfg.ReportURL,
			APIKey:      cfg.ReportAPIKey,
			Timeout:     cfg.ReportTimeout,
			MaxAttempts: cfg.ReportMaxAttempts,
			Backoff:     cfg.ReportBackoff,
		}, logger)
		if err != nil {
			return fail(err)
		}
		deps.Reporter = client
	} else {
		logger.Warn("REPORT_URL not set; final results will not be reported")
	}
	if n := BuildAnalystNotifier(ctx, cfg, loader, logger); n != nil {
		deps.Notifier = n
	}

	ctrl, err := engagement.NewController(deps)
	if err != nil {
		return fail(err)
	}
	app.Controller = ctrl

	metricsHandler := promhttp.Handler()
	if g, ok := reg.(prometheus.Gatherer); ok {
		metricsHandler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	app.Handler = router.New(&router.Config{
		Logger:             logger,
		Honeypot:           handlers.NewHoneypotHandler(ctrl, logger),
		MetricsHandler:     metricsHandler,
		APIKey:             cfg.APIKey,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
	return app, nil
}

// dispatchBudget bounds the background report: every attempt at its full
// timeout plus the doubling backoff between attempts, with a minute spare
// for the analyst e-mail.
func dispatchBudget(cfg *appconfig.Config) time.Duration {
	attempts := cfg.ReportMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	budget := time.Duration(attempts) * cfg.ReportTimeout
	for i := 0; i < attempts-1; i++ {
		budget += cfg.ReportBackoff << i
	}
	return budget + time.Minute
}
