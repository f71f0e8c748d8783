// Package report delivers the final snapshot of a completed engagement to an
// external callback endpoint.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// Snapshot is the payload sent for a completed session.
type Snapshot struct {
	SessionID     string       `json:"sessionId"`
	ScamDetected  bool         `json:"scamDetected"`
	TotalMessages int          `json:"totalMessagesExchanged"`
	Intelligence  intel.Record `json:"extractedIntelligence"`
	AgentNotes    string       `json:"agentNotes"`
}

// Result describes the outcome of a delivery.
type Result struct {
	Success    bool
	Attempts   int
	StatusCode int
	Err        error
}

// Config configures a Client.
type Config struct {
	URL         string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	HTTPClient  *http.Client
}

// Client posts snapshots with bounded exponential-backoff retries.
type Client struct {
	url         string
	apiKey      string
	maxAttempts int
	backoff     time.Duration
	httpClient  *http.Client
	logger      *logging.Logger
}

// NewClient builds a report client. It returns an error when no URL is set.
func NewClient(cfg Config, logger *logging.Logger) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("report: callback url is required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		url:         url,
		apiKey:      cfg.APIKey,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		httpClient:  httpClient,
		logger:      logger.WithComponent("report"),
	}, nil
}

// Report delivers snap. It never panics and never returns an error; the
// outcome is carried in Result.
func (c *Client) Report(ctx context.Context, snap Snapshot) Result {
	body, err := json.Marshal(snap)
	if err != nil {
		return Result{Err: fmt.Errorf("report: marshal snapshot: %w", err)}
	}

	var res Result
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		res.Attempts = attempt + 1
		status, err := c.post(ctx, body)
		res.StatusCode = status
		if err == nil {
			res.Success = true
			res.Err = nil
			c.logger.Info("report delivered", "session_id", snap.SessionID, "attempts", res.Attempts, "status", status)
			return res
		}
		res.Err = err
		if ctx.Err() != nil || !shouldRetry(status, err) || attempt == c.maxAttempts-1 {
			break
		}
		c.logger.Warn("report retry",
			"session_id", snap.SessionID,
			"attempt", attempt+1,
			"status", status,
			"error", err,
		)
		if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
			res.Err = sleepErr
			break
		}
	}
	c.logger.Error("report delivery failed", "session_id", snap.SessionID, "attempts", res.Attempts, "error", res.Err)
	return res
}

func (c *Client) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("report: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("report: http error: %w", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, fmt.Errorf("report: endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func shouldRetry(status int, err error) bool {
	if status == 0 && err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return true
		}
		return !errors.Is(err, context.Canceled)
	}
	return status >= 500 || status == http.StatusTooManyRequests || status == http.StatusRequestTimeout
}
