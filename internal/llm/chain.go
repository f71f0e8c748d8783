package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/honeypot-ai/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var chainTracer = otel.Tracer("honeypot.internal.llm.chain")

// Observer receives one observation per provider attempt.
type Observer interface {
	ObserveProvider(provider, status string, seconds float64)
}

// Chain tries providers in order until one returns usable text. Each attempt
// runs under its own timeout; a timeout is handled like any other failure.
type Chain struct {
	providers []Client
	timeout   time.Duration
	logger    *logging.Logger
	observer  Observer
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) ChainOption {
	return func(c *Chain) {
		c.observer = o
	}
}

// NewChain builds an ordered fallback chain. Nil providers are skipped.
func NewChain(providers []Client, timeout time.Duration, logger *logging.Logger, opts ...ChainOption) *Chain {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	c := &Chain{
		timeout: timeout,
		logger:  logger.WithComponent("llm_chain"),
	}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name lists the chain's providers.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Len reports how many providers are configured.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.providers)
}

// Complete returns the first successful completion. When every provider
// fails, the last ProviderError is returned, joined with the earlier ones.
func (c *Chain) Complete(ctx context.Context, req Request) (Response, error) {
	if c == nil || len(c.providers) == 0 {
		return Response{}, ErrNoProviders
	}
	var errs []error
	for i, p := range c.providers {
		resp, err := c.attempt(ctx, p, req)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback provider succeeded", "provider", p.Name(), "position", i+1)
			}
			return resp, nil
		}
		errs = append(errs, err)
		c.logger.Warn("provider failed, trying next",
			"provider", p.Name(),
			"error", err.Error(),
			"remaining", len(c.providers)-i-1,
		)
		if ctx.Err() != nil {
			break
		}
	}
	c.logger.Error("all providers failed", "attempts", len(errs))
	return Response{}, errors.Join(errs...)
}

func (c *Chain) attempt(ctx context.Context, p Client, req Request) (Response, error) {
	ctx, span := chainTracer.Start(ctx, "llm.provider")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.Complete(callCtx, req)
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = ErrEmptyOutput
	}
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	latency := time.Since(start)

	status := "ok"
	if err != nil {
		err = wrapProviderError(p.Name(), err)
		var pe *ProviderError
		if errors.As(err, &pe) {
			status = string(pe.Kind)
		} else {
			status = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}
	span.SetAttributes(
		attribute.String("honeypot.llm.provider", p.Name()),
		attribute.String("honeypot.llm.status", status),
		attribute.Int64("honeypot.llm.latency_ms", latency.Milliseconds()),
	)
	if c.observer != nil {
		c.observer.ObserveProvider(p.Name(), status, latency.Seconds())
	}
	if err != nil {
		return Response{}, err
	}
	resp.Text = strings.TrimSpace(resp.Text)
	if resp.Provider == "" {
		resp.Provider = p.Name()
	}
	return resp, nil
}
