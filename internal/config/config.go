package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string
	APIKey   string

	// Session storage
	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	SessionTTL     time.Duration

	// Evidence persistence
	EvidenceBackend       string
	DatabaseURL           string
	EvidenceArchiveBucket string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Text-generation providers
	ProviderOrder   []string
	ProviderTimeout time.Duration
	GeminiAPIKey    string
	GeminiModel     string
	BedrockModelID  string
	OpenAIAPIKey    string
	OpenAIModel     string

	// Detection
	ClassifierEnabled  bool
	ClassifierTimeout  time.Duration
	ClassifierProvider string

	// Engagement policy
	MaxMessages   int
	PacingEnabled bool
	RandomSeed    uint64

	// Final result reporting
	ReportURL         string
	ReportAPIKey      string
	ReportTimeout     time.Duration
	ReportMaxAttempts int
	ReportBackoff     time.Duration

	// Analyst notifications (sendgrid|ses)
	EmailProvider     string
	SESFromEmail      string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	AnalystEmail      string

	// Inbound rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		APIKey:   getEnv("API_KEY", ""),

		SessionBackend: strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", "memory"))),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		EvidenceBackend:       strings.ToLower(strings.TrimSpace(getEnv("EVIDENCE_BACKEND", "memory"))),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		EvidenceArchiveBucket: getEnv("EVIDENCE_ARCHIVE_BUCKET", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		ProviderOrder:   getEnvAsList("PROVIDER_ORDER", []string{"gemini", "bedrock"}),
		ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 12*time.Second),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID:  getEnv("BEDROCK_MODEL_ID", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		ClassifierEnabled:  getEnvAsBool("CLASSIFIER_ENABLED", true),
		ClassifierTimeout:  getEnvAsDuration("CLASSIFIER_TIMEOUT", 8*time.Second),
		ClassifierProvider: strings.ToLower(strings.TrimSpace(getEnv("CLASSIFIER_PROVIDER", ""))),

		MaxMessages:   getEnvAsInt("MAX_MESSAGES", 20),
		PacingEnabled: getEnvAsBool("PACING_ENABLED", true),
		RandomSeed:    getEnvAsUint64("RANDOM_SEED", 0),

		ReportURL:         getEnv("REPORT_URL", ""),
		ReportAPIKey:      getEnv("REPORT_API_KEY", ""),
		ReportTimeout:     getEnvAsDuration("REPORT_TIMEOUT", 10*time.Second),
		ReportMaxAttempts: getEnvAsInt("REPORT_MAX_ATTEMPTS", 3),
		ReportBackoff:     getEnvAsDuration("REPORT_BACKOFF", 2*time.Second),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Honeypot Engagement"),
		AnalystEmail:      getEnv("ANALYST_EMAIL", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseUint(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
