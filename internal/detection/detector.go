package detection

import (
	"context"
	"errors"

	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/internal/llm"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// Observer is notified of every verdict.
type Observer interface {
	ObserveDetection(method string, isScam bool)
}

// Detector blends the pattern stage with an optional semantic classifier.
type Detector struct {
	extractor  *intel.Extractor
	classifier Classifier
	logger     *logging.Logger
	observer   Observer
}

// Option configures a Detector.
type Option func(*Detector)

// WithClassifier enables the semantic stage.
func WithClassifier(c Classifier) Option {
	return func(d *Detector) { d.classifier = c }
}

// WithExtractor overrides the default extractor.
func WithExtractor(e *intel.Extractor) Option {
	return func(d *Detector) { d.extractor = e }
}

func WithObserver(o Observer) Option {
	return func(d *Detector) { d.observer = o }
}

// NewDetector builds a Detector. Without WithClassifier it runs the pattern
// stage only.
func NewDetector(logger *logging.Logger, opts ...Option) *Detector {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Detector{
		extractor: intel.New(intel.Options{}),
		logger:    logger.WithComponent("detector"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Analyze classifies text given the prior conversation.
func (d *Detector) Analyze(ctx context.Context, text string, history []llm.Turn) Result {
	return d.AnalyzeFindings(ctx, d.extractor.Analyze(text), text, history)
}

// AnalyzeFindings is Analyze for callers that already ran the extractor.
func (d *Detector) AnalyzeFindings(ctx context.Context, f intel.Findings, text string, history []llm.Turn) Result {
	result := d.analyze(ctx, f, text, history)
	if d.observer != nil {
		d.observer.ObserveDetection(string(result.Method), result.IsScam)
	}
	return result
}

func (d *Detector) analyze(ctx context.Context, f intel.Findings, text string, history []llm.Turn) Result {
	pattern := patternVerdict(f)
	if pattern.Confidence >= ShortCircuitConfidence || d.classifier == nil {
		return pattern
	}

	verdict, err := d.classifier.Classify(ctx, text, history)
	if err != nil {
		if !errors.Is(err, ErrClassifierUnavailable) {
			err = errors.Join(ErrClassifierUnavailable, err)
		}
		d.logger.Warn("semantic stage unavailable, using pattern verdict", "error", err.Error())
		return pattern
	}
	return blend(pattern, verdict)
}

func blend(pattern Result, verdict Verdict) Result {
	confidence := clamp01(pattern.Confidence*patternWeight + verdict.Confidence*semanticWeight)
	scamType := pattern.ScamType
	if verdict.IsScam && verdict.ScamType != ScamTypeNone {
		scamType = verdict.ScamType
	}
	reasoning := verdict.Reasoning
	if reasoning == "" {
		reasoning = pattern.Reasoning
	}
	return Result{
		IsScam:     confidence > ScamThreshold || pattern.IsScam || verdict.IsScam,
		Confidence: confidence,
		ScamType:   scamType,
		Indicators: mergeIndicators(pattern.Indicators, verdict.Indicators),
		Reasoning:  reasoning,
		Method:     MethodCombined,
	}
}

func mergeIndicators(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
