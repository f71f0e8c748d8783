package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/honeypot-ai/internal/config"
	"github.com/wolfman30/honeypot-ai/internal/evidence"
	"github.com/wolfman30/honeypot-ai/internal/notify"
	"github.com/wolfman30/honeypot-ai/internal/session"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks the session backend. A redis backend that cannot
// be reached is a startup error rather than a silent fallback.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case "", "memory":
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	case "redis":
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, nil, fmt.Errorf("bootstrap: redis session backend unavailable at %s", cfg.RedisAddr)
		}
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL.String())
		return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}

// BuildEvidenceStore picks the evidence backend and tees it into the S3
// archive when a bucket is configured.
func BuildEvidenceStore(ctx context.Context, cfg *appconfig.Config, loader *AWSLoader, logger *logging.Logger) (evidence.Store, func(), error) {
	var (
		primary evidence.Store
		closeFn = func() {}
	)
	switch cfg.EvidenceBackend {
	case "", "memory":
		primary = evidence.NewMemoryStore()
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("bootstrap: DATABASE_URL required for postgres evidence backend")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		primary = evidence.NewPostgresStore(pool)
		closeFn = pool.Close
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown EVIDENCE_BACKEND %q", cfg.EvidenceBackend)
	}
	logger.Info("evidence store ready", "backend", defaultString(cfg.EvidenceBackend, "memory"))

	if cfg.EvidenceArchiveBucket == "" {
		return primary, closeFn, nil
	}
	awsCfg, err := loader.Load(ctx)
	if err != nil {
		logger.Warn("evidence archive disabled", "error", err)
		return primary, closeFn, nil
	}
	archiver := evidence.NewS3Archiver(s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	}), cfg.EvidenceArchiveBucket, logger)
	logger.Info("evidence archive enabled", "bucket", cfg.EvidenceArchiveBucket)
	return evidence.NewTee(primary, archiver), closeFn, nil
}

// BuildAnalystNotifier returns nil when no analyst address or sender is
// configured.
func BuildAnalystNotifier(ctx context.Context, cfg *appconfig.Config, loader *AWSLoader, logger *logging.Logger) *notify.AnalystNotifier {
	if cfg.AnalystEmail == "" {
		return nil
	}
	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "ses":
		awsCfg, err := loader.Load(ctx)
		if err != nil {
			logger.Warn("ses unavailable; analyst emails disabled", "error", err)
			return nil
		}
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			sender = s
		}
	default:
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			sender = s
		}
	}
	if sender == nil {
		logger.Warn("ANALYST_EMAIL set but no email provider configured", "provider", cfg.EmailProvider)
		return nil
	}
	return notify.NewAnalystNotifier(sender, cfg.AnalystEmail, logger)
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
