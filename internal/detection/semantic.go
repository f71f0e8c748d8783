package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/honeypot-ai/internal/llm"
)

// Verdict is the semantic stage's opinion of a message.
type Verdict struct {
	IsScam     bool     `json:"isScam"`
	Confidence float64  `json:"confidence"`
	ScamType   ScamType `json:"scamType"`
	Indicators []string `json:"indicators"`
	Reasoning  string   `json:"reasoning"`
}

// Classifier is the slow second stage. Implementations return an error
// wrapping ErrClassifierUnavailable on any failure.
type Classifier interface {
	Classify(ctx context.Context, text string, history []llm.Turn) (Verdict, error)
}

const classifierPrompt = `You review messages sent to a potential fraud victim in India.
Decide whether the LATEST message, read with the prior conversation, is part of a scam.

Scam types:
- upi_fraud: asks for payment to a UPI handle or a UPI PIN
- bank_fraud: impersonates a bank, asks for OTP, card, KYC or account details
- phishing: pushes the reader to open a link or install an app
- lottery: prize, lucky draw or reward that needs a fee to claim
- fake_offer: job, investment, loan or discount that is too good to be true
- other: clearly fraudulent but none of the above
- none: not a scam

Respond with JSON only:
{"isScam": true|false, "confidence": 0.0-1.0, "scamType": "<type>", "indicators": ["..."], "reasoning": "<one sentence>"}`

// LLMClassifier asks a text-generation provider to classify a message.
type LLMClassifier struct {
	client llm.Client
}

// NewLLMClassifier wraps client as a semantic Classifier.
func NewLLMClassifier(client llm.Client) *LLMClassifier {
	return &LLMClassifier{client: client}
}

// Classify implements Classifier.
func (c *LLMClassifier) Classify(ctx context.Context, text string, history []llm.Turn) (Verdict, error) {
	if c == nil || c.client == nil {
		return Verdict{}, ErrClassifierUnavailable
	}
	resp, err := c.client.Complete(ctx, llm.Request{
		System:      classifierPrompt,
		History:     history,
		Latest:      "LATEST MESSAGE: " + text,
		MaxTokens:   300,
		Temperature: 0.1,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	return parseVerdict(resp.Text)
}

// parseVerdict extracts the first JSON object in raw; models sometimes wrap
// it in prose or code fences.
func parseVerdict(raw string) (Verdict, error) {
	content := strings.TrimSpace(raw)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Verdict{}, fmt.Errorf("%w: no json object in output", ErrClassifierUnavailable)
	}
	content = content[start : end+1]

	var payload struct {
		IsScam     *bool    `json:"isScam"`
		Confidence *float64 `json:"confidence"`
		ScamType   string   `json:"scamType"`
		Indicators []string `json:"indicators"`
		Reasoning  string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	if payload.IsScam == nil || payload.Confidence == nil {
		return Verdict{}, fmt.Errorf("%w: missing isScam or confidence", ErrClassifierUnavailable)
	}
	if *payload.Confidence < 0 || *payload.Confidence > 1 {
		return Verdict{}, fmt.Errorf("%w: confidence %v out of range", ErrClassifierUnavailable, *payload.Confidence)
	}

	scamType, _ := ParseScamType(strings.ToLower(strings.TrimSpace(payload.ScamType)))
	if !*payload.IsScam && scamType == ScamTypeOther && payload.ScamType == "" {
		scamType = ScamTypeNone
	}
	return Verdict{
		IsScam:     *payload.IsScam,
		Confidence: *payload.Confidence,
		ScamType:   scamType,
		Indicators: payload.Indicators,
		Reasoning:  strings.TrimSpace(payload.Reasoning),
	}, nil
}
