package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	appconfig "github.com/wolfman30/honeypot-ai/internal/config"
)

// AWSLoader loads the shared AWS config once, on first use.
type AWSLoader struct {
	cfg  *appconfig.Config
	once sync.Once
	aws  aws.Config
	err  error
}

func NewAWSLoader(cfg *appconfig.Config) *AWSLoader {
	return &AWSLoader{cfg: cfg}
}

func (l *AWSLoader) Load(ctx context.Context) (aws.Config, error) {
	l.once.Do(func() {
		l.aws, l.err = LoadAWSConfig(ctx, l.cfg)
	})
	return l.aws, l.err
}

// LoadAWSConfig builds the AWS config from the region, optional static
// credentials and an optional endpoint override (LocalStack and friends).
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(endpoint))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	return awsCfg, nil
}
