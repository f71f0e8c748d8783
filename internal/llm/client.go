// Package llm holds the text-generation provider contract and its Gemini,
// Bedrock and OpenAI implementations.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Role identifies who spoke a turn.
type Role string

const (
	RoleScammer Role = "scammer"
	RoleAgent   Role = "agent"
)

// Turn is one prior message in provider-neutral form.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Request carries one completion call: a system directive, the prior
// conversation and the newest inbound text.
type Request struct {
	System      string
	History     []Turn
	Latest      string
	MaxTokens   int32
	Temperature float32
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Response struct {
	Text       string
	Provider   string
	Usage      TokenUsage
	StopReason string
}

// Client is implemented by every provider.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindAuth      ErrorKind = "auth"
	KindMalformed ErrorKind = "malformed"
	KindUpstream  ErrorKind = "upstream"
)

// ProviderError is returned for any provider failure. Callers fall back to the
// next tier; it never reaches an API consumer.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm: provider %s failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrEmptyOutput marks a provider response with no usable text.
var ErrEmptyOutput = errors.New("llm: empty completion")

// ErrNoProviders is returned by a Chain with nothing configured.
var ErrNoProviders = errors.New("llm: no providers configured")

// wrapProviderError converts err into a ProviderError, inferring the kind
// from context state and error text.
func wrapProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, ErrEmptyOutput) {
		return KindMalformed
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"),
		strings.Contains(msg, "unauthorized"), strings.Contains(msg, "permission"),
		strings.Contains(msg, "api key"), strings.Contains(msg, "accessdenied"):
		return KindAuth
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return KindTimeout
	}
	return KindUpstream
}
