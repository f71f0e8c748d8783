package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// S3API is the subset of the S3 client used by S3Archiver.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes completed sessions as JSON objects. With no bucket
// configured every call is a no-op.
type S3Archiver struct {
	bucket string
	client S3API
	logger *logging.Logger
}

func NewS3Archiver(client S3API, bucket string, logger *logging.Logger) *S3Archiver {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Archiver{bucket: bucket, client: client, logger: logger.WithComponent("evidence_archive")}
}

// Enabled reports whether archival is configured.
func (a *S3Archiver) Enabled() bool {
	return a != nil && a.bucket != "" && a.client != nil
}

// ArchiveKey is the object key for rec.
func ArchiveKey(rec Record) string {
	at := rec.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	return fmt.Sprintf("evidence/v1/by-date/%d/%02d/%02d/%s.json", at.Year(), at.Month(), at.Day(), rec.SessionID)
}

// Archive stores rec if the session is complete; other records are skipped.
func (a *S3Archiver) Archive(ctx context.Context, rec Record) error {
	if !a.Enabled() || !rec.IsComplete {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("evidence: marshal archive record: %w", err)
	}
	key := ArchiveKey(rec)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("evidence: s3 put %s: %w", key, err)
	}
	a.logger.Info("archived evidence to S3",
		"session_id", rec.SessionID,
		"s3_key", key,
		"scam_type", string(rec.ScamType),
		"total_messages", rec.TotalMessages,
	)
	return nil
}
