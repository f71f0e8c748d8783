package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/honeypot-ai/internal/config"
	"github.com/wolfman30/honeypot-ai/internal/llm"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// Providers holds the text-generation clients in PROVIDER_ORDER order.
type Providers struct {
	Clients []llm.Client
	closers []func() error
}

// Close releases provider SDK clients.
func (p *Providers) Close() {
	for _, c := range p.closers {
		_ = c()
	}
}

// ByName returns the named provider, if it was built.
func (p *Providers) ByName(name string) (llm.Client, bool) {
	for _, c := range p.Clients {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// BuildProviders constructs each provider named in cfg.ProviderOrder once.
// Providers missing credentials are skipped with a warning; an empty result
// leaves the responder on its template bank.
func BuildProviders(ctx context.Context, cfg *appconfig.Config, loader *AWSLoader, logger *logging.Logger) *Providers {
	out := &Providers{}
	seen := map[string]bool{}
	for _, name := range cfg.ProviderOrder {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				logger.Warn("gemini listed in provider order but GEMINI_API_KEY is empty; skipping")
				continue
			}
			client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				logger.Error("failed to create gemini client", "error", err)
				continue
			}
			out.Clients = append(out.Clients, client)
			out.closers = append(out.closers, client.Close)
		case "bedrock":
			if cfg.BedrockModelID == "" {
				logger.Warn("bedrock listed in provider order but BEDROCK_MODEL_ID is empty; skipping")
				continue
			}
			awsCfg, err := loader.Load(ctx)
			if err != nil {
				logger.Error("bedrock unavailable", "error", err)
				continue
			}
			client, err := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
			if err != nil {
				logger.Error("failed to create bedrock client", "error", err)
				continue
			}
			out.Clients = append(out.Clients, client)
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				logger.Warn("openai listed in provider order but OPENAI_API_KEY is empty; skipping")
				continue
			}
			client, err := llm.NewOpenAIClient(llm.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel})
			if err != nil {
				logger.Error("failed to create openai client", "error", err)
				continue
			}
			out.Clients = append(out.Clients, client)
		default:
			logger.Warn("unknown provider in PROVIDER_ORDER", "provider", name)
			continue
		}
		logger.Info("text provider enabled", "provider", name, "position", len(out.Clients))
	}
	if len(out.Clients) == 0 {
		logger.Warn("no text providers configured; replies will come from the template bank")
	}
	return out
}

// classifierClients picks the providers for the semantic detector: the one
// named by CLASSIFIER_PROVIDER when set, otherwise the reply order.
func classifierClients(cfg *appconfig.Config, p *Providers, logger *logging.Logger) []llm.Client {
	if !cfg.ClassifierEnabled {
		return nil
	}
	if cfg.ClassifierProvider != "" {
		if c, ok := p.ByName(cfg.ClassifierProvider); ok {
			return []llm.Client{c}
		}
		logger.Warn("classifier provider not available, using reply order", "provider", cfg.ClassifierProvider)
	}
	return p.Clients
}
