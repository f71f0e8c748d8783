// Package engagement runs the per-message pipeline: extract, detect, decide
// whether to stop, reply, persist and report.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/evidence"
	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/internal/notify"
	"github.com/wolfman30/honeypot-ai/internal/report"
	"github.com/wolfman30/honeypot-ai/internal/responder"
	"github.com/wolfman30/honeypot-ai/internal/session"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("honeypot.internal.engagement")

// Reporter delivers the final snapshot of a completed session.
type Reporter interface {
	Report(ctx context.Context, snap report.Snapshot) report.Result
}

// Notifier tells a human that a session completed.
type Notifier interface {
	NotifyCompletion(ctx context.Context, c notify.Completion) error
}

// Observer receives pipeline-level measurements.
type Observer interface {
	ObserveMessage(outcome string)
	ObserveCompletion(reason string)
	ObserveReport(success bool)
	ObserveHandleLatency(seconds float64)
}

const (
	OutcomeNoScam    = "no_scam"
	OutcomeReplied   = "replied"
	OutcomeCompleted = "completed"
	OutcomeAudit     = "audit_only"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Metrics are the engagement counters returned with every result.
type Metrics struct {
	DurationSeconds int64 `json:"engagementDurationSeconds"`
	TotalMessages   int   `json:"totalMessagesExchanged"`
}

// Result is the outcome of one Handle call. A nil Reply means the caller
// should send nothing.
type Result struct {
	SessionID    string
	ScamDetected bool
	Reply        *string
	Metrics      Metrics
	Intelligence intel.Record
	Notes        string
	Complete     bool
	Delay        time.Duration
}

// Deps wires a Controller. Registry, Detector and Responder are required.
type Deps struct {
	Registry  *session.Registry
	Extractor *intel.Extractor
	Detector  *detection.Detector
	Responder *responder.Orchestrator
	Policy    session.StopPolicy
	Evidence  evidence.Store
	Reporter  Reporter
	Notifier  Notifier
	Observer  Observer
	Logger    *logging.Logger

	// Pacing makes Handle wait for the reply's typing delay before returning.
	Pacing bool
	// Sleep replaces the pacing wait, mainly for tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
	// ReportTimeout bounds the background report and notification work.
	ReportTimeout time.Duration
}

// Controller is the top of the pipeline. It is safe for concurrent use;
// messages for one session are serialised, different sessions run in parallel.
type Controller struct {
	registry      *session.Registry
	extractor     *intel.Extractor
	detector      *detection.Detector
	responder     *responder.Orchestrator
	policy        session.StopPolicy
	evidence      evidence.Store
	reporter      Reporter
	notifier      Notifier
	observer      Observer
	logger        *logging.Logger
	pacing        bool
	sleep         func(ctx context.Context, d time.Duration) error
	now           func() time.Time
	reportTimeout time.Duration

	wg sync.WaitGroup
}

func NewController(d Deps) (*Controller, error) {
	if d.Registry == nil {
		return nil, errors.New("engagement: session registry required")
	}
	if d.Detector == nil {
		return nil, errors.New("engagement: detector required")
	}
	if d.Responder == nil {
		return nil, errors.New("engagement: responder required")
	}
	if d.Extractor == nil {
		d.Extractor = intel.New(intel.Options{})
	}
	if d.Policy.MaxMessages <= 0 {
		d.Policy = session.NewStopPolicy(0)
	}
	if d.Evidence == nil {
		d.Evidence = evidence.NewMemoryStore()
	}
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	if d.Sleep == nil {
		d.Sleep = sleepContext
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ReportTimeout <= 0 {
		d.ReportTimeout = 2 * time.Minute
	}
	return &Controller{
		registry:      d.Registry,
		extractor:     d.Extractor,
		detector:      d.Detector,
		responder:     d.Responder,
		policy:        d.Policy,
		evidence:      d.Evidence,
		reporter:      d.Reporter,
		notifier:      d.Notifier,
		observer:      d.Observer,
		logger:        d.Logger.WithComponent("engagement"),
		pacing:        d.Pacing,
		sleep:         d.Sleep,
		now:           d.Now,
		reportTimeout: d.ReportTimeout,
	}, nil
}

// Handle processes one inbound message for sessionID. priorHistory is only
// used to seed a session that has no history yet.
func (c *Controller) Handle(ctx context.Context, sessionID string, msg session.Message, priorHistory []session.Message) (res Result, err error) {
	sessionID = strings.TrimSpace(sessionID)
	if err := validate(sessionID, &msg); err != nil {
		c.observe(OutcomeInvalid)
		return Result{}, err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = c.now()
	}

	ctx, span := tracer.Start(ctx, "engagement.handle")
	defer span.End()
	span.SetAttributes(attribute.String("honeypot.session_id", sessionID))

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("engagement pipeline panic",
				"session_id", sessionID,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			res, err = Result{}, ErrInternal
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "handle failed")
		}
		if c.observer != nil {
			c.observer.ObserveHandleLatency(time.Since(start).Seconds())
		}
	}()

	var out stepOutcome
	err = c.registry.WithSession(ctx, sessionID, func(s *session.Session, created bool) error {
		out = c.step(ctx, s, msg, priorHistory)
		res = c.result(s, out)
		c.persist(ctx, s, res.Notes)
		return nil
	})
	if err != nil {
		c.logger.Error("session update failed", "session_id", sessionID, "error", err)
		c.observe(OutcomeError)
		return Result{}, ErrInternal
	}
	c.observe(out.outcome)
	span.SetAttributes(attribute.String("honeypot.outcome", out.outcome))

	if out.dispatch != nil {
		c.dispatch(out.dispatch, res.Notes)
	}
	if res.Reply != nil && c.pacing && res.Delay > 0 {
		_ = c.sleep(ctx, res.Delay)
	}
	return res, nil
}

type stepOutcome struct {
	outcome  string
	verdict  *detection.Result
	reply    *responder.Reply
	dispatch *session.Session
}

// step runs the pipeline on s under its lock. dispatch is set when the
// session has just become reportable.
func (c *Controller) step(ctx context.Context, s *session.Session, msg session.Message, prior []session.Message) stepOutcome {
	if len(s.ConversationHistory) == 0 && s.State() == session.StateFresh {
		c.seed(s, prior)
	}
	history := session.Turns(s.ConversationHistory)

	s.Append(msg)
	findings := c.extractor.Analyze(msg.Text)
	s.MergeIntelligence(findings.Record)

	if s.IsComplete {
		return stepOutcome{outcome: OutcomeAudit}
	}

	verdict := c.detector.AnalyzeFindings(ctx, findings, msg.Text, history)
	out := stepOutcome{outcome: OutcomeNoScam, verdict: &verdict}
	if s.ObserveDetection(verdict) {
		c.logger.Info("scam detected",
			"session_id", s.ID,
			"scam_type", string(s.ScamType),
			"confidence", verdict.Confidence,
			"method", string(verdict.Method),
		)
	}

	if s.ScamDetected {
		if stop, reason := c.policy.ShouldStop(s); stop {
			if s.Complete(reason) {
				c.logger.Info("engagement complete", "session_id", s.ID, "reason", reason, "messages", s.MessageCount)
				if c.observer != nil {
					c.observer.ObserveCompletion(reason)
				}
			}
			out.outcome = OutcomeCompleted
		} else {
			reply := c.responder.Generate(ctx, s, msg)
			out.reply = &reply
			out.outcome = OutcomeReplied
		}
	}

	if s.IsComplete && s.MarkReportSent() {
		out.dispatch = s.Clone()
	}
	return out
}

// seed copies prior history into an empty session. Scammer messages also
// contribute intelligence so a restarted process regains context.
func (c *Controller) seed(s *session.Session, prior []session.Message) {
	for _, m := range prior {
		m.Text = strings.TrimSpace(m.Text)
		if m.Text == "" || !m.Sender.Valid() {
			continue
		}
		s.Append(m)
		if m.Sender == session.SenderScammer {
			s.MergeIntelligence(c.extractor.Extract(m.Text))
		}
	}
}

func (c *Controller) result(s *session.Session, out stepOutcome) Result {
	res := Result{
		SessionID:    s.ID,
		ScamDetected: s.ScamDetected,
		Metrics: Metrics{
			DurationSeconds: int64(s.Duration(c.now()).Seconds()),
			TotalMessages:   len(s.ConversationHistory),
		},
		Intelligence: intel.NewRecord().Merge(s.ExtractedIntelligence),
		Notes:        agentNotes(s, out.verdict),
		Complete:     s.IsComplete,
	}
	if out.reply != nil {
		text := out.reply.Text
		res.Reply = &text
		res.Delay = out.reply.Delay
	}
	return res
}

func (c *Controller) persist(ctx context.Context, s *session.Session, notes string) {
	if err := c.evidence.Persist(ctx, evidence.FromSession(s, notes, c.now())); err != nil {
		c.logger.Warn("evidence persist failed", "session_id", s.ID, "error", err)
	}
}

// dispatch reports and notifies in the background. It runs at most once per
// session because the caller flipped ReportSent under the session lock.
func (c *Controller) dispatch(snap *session.Session, notes string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("report dispatch panic", "session_id", snap.ID, "panic", fmt.Sprint(r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), c.reportTimeout)
		defer cancel()

		if c.reporter != nil {
			res := c.reporter.Report(ctx, report.Snapshot{
				SessionID:     snap.ID,
				ScamDetected:  snap.ScamDetected,
				TotalMessages: len(snap.ConversationHistory),
				Intelligence:  snap.ExtractedIntelligence,
				AgentNotes:    notes,
			})
			if !res.Success {
				c.logger.Error("final report failed", "session_id", snap.ID, "attempts", res.Attempts, "error", res.Err)
			}
			if c.observer != nil {
				c.observer.ObserveReport(res.Success)
			}
		}

		if c.notifier != nil {
			completion := notify.Completion{
				SessionID:     snap.ID,
				ScamType:      string(snap.ScamType),
				Reason:        snap.CompletionReason,
				TotalMessages: len(snap.ConversationHistory),
				Duration:      snap.Duration(c.now()),
				Intelligence:  snap.ExtractedIntelligence,
				Notes:         notes,
			}
			if snap.Persona != nil {
				completion.Persona = snap.Persona.Name
			}
			if err := c.notifier.NotifyCompletion(ctx, completion); err != nil {
				c.logger.Warn("analyst notification failed", "session_id", snap.ID, "error", err)
			}
		}
	}()
}

// Wait blocks until background report work has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Session returns a read-only copy of one session.
func (c *Controller) Session(ctx context.Context, id string) (*session.Session, error) {
	return c.registry.Get(ctx, id)
}

// Sessions returns read-only copies of every session.
func (c *Controller) Sessions(ctx context.Context) ([]*session.Session, error) {
	return c.registry.List(ctx)
}

// Evidence returns the accumulated evidence store.
func (c *Controller) Evidence(ctx context.Context) ([]evidence.Record, error) {
	return c.evidence.All(ctx)
}

func (c *Controller) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveMessage(outcome)
	}
}

func validate(sessionID string, msg *session.Message) error {
	if sessionID == "" {
		return &ValidationError{Field: "sessionId", Reason: "is required"}
	}
	if len(sessionID) > 256 {
		return &ValidationError{Field: "sessionId", Reason: "exceeds 256 characters"}
	}
	msg.Text = strings.TrimSpace(msg.Text)
	if msg.Text == "" {
		return &ValidationError{Field: "message.text", Reason: "is required"}
	}
	if msg.Sender == "" {
		msg.Sender = session.SenderScammer
	}
	if msg.Sender != session.SenderScammer {
		return &ValidationError{Field: "message.sender", Reason: fmt.Sprintf("must be %q", session.SenderScammer)}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
