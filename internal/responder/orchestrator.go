// Package responder produces in-character replies for engaged sessions.
package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/llm"
	"github.com/wolfman30/honeypot-ai/internal/session"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// SourceTemplate marks a reply drawn from the template bank.
const SourceTemplate = "template"

// Observer is notified of every reply produced.
type Observer interface {
	ObserveReply(source string, characterBreak bool)
}

// Reply is the outcome of one generation step.
type Reply struct {
	Text           string
	Source         string
	Persona        session.Persona
	Delay          time.Duration
	CharacterBreak []string
}

// Orchestrator binds personas, drives the provider chain and post-processes
// the output. Construct once and share; it holds no per-session state.
type Orchestrator struct {
	provider  llm.Client
	rng       *Rand
	humanizer *Humanizer
	pacer     *Pacer
	maxLen    int
	logger    *logging.Logger
	observer  Observer
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithPacing(cfg PacingConfig) Option {
	return func(o *Orchestrator) { o.pacer = NewPacer(cfg, o.rng) }
}

func WithMaxReplyLength(n int) Option {
	return func(o *Orchestrator) { o.maxLen = n }
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an Orchestrator. provider is usually an *llm.Chain; a nil
// provider sends every reply to the template bank.
func New(provider llm.Client, rng *Rand, logger *logging.Logger, opts ...Option) *Orchestrator {
	if rng == nil {
		rng = NewRand(0)
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := &Orchestrator{
		provider:  provider,
		rng:       rng,
		humanizer: NewHumanizer(rng),
		pacer:     NewPacer(DefaultPacing, rng),
		maxLen:    DefaultMaxReplyLength,
		logger:    logger.WithComponent("responder"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate produces the agent's reply to inbound and appends it to the
// session history. inbound must already be the last entry in the history.
// The returned reply is never empty.
func (o *Orchestrator) Generate(ctx context.Context, s *session.Session, inbound session.Message) Reply {
	scamType := s.ScamType
	if scamType == "" {
		scamType = detection.ScamTypeOther
	}
	if s.Persona == nil {
		s.BindPersona(choosePersona(o.rng, scamType))
	}
	persona := *s.Persona

	reply := Reply{Persona: persona}
	text, source, err := o.complete(ctx, s, persona, scamType, inbound)
	switch {
	case err != nil:
		o.logger.Warn("all providers failed, using template", "session_id", s.ID, "error", err.Error())
		reply.Text, reply.Source = pickTemplate(o.rng, scamType), SourceTemplate
	default:
		if reasons := characterBreaks(text); len(reasons) > 0 {
			o.logger.Warn("provider output broke character, using template",
				"session_id", s.ID, "provider", source, "reasons", reasons)
			reply.CharacterBreak = reasons
			reply.Text, reply.Source = pickTemplate(o.rng, scamType), SourceTemplate
		} else {
			reply.Text, reply.Source = o.humanizer.Humanize(text), source
		}
	}

	reply.Text = truncateReply(reply.Text, o.maxLen)
	if reply.Text == "" {
		reply.Text, reply.Source = pickTemplate(o.rng, scamType), SourceTemplate
	}
	reply.Delay = o.pacer.Delay(reply.Text, persona)

	s.Append(session.Message{Sender: session.SenderAgent, Text: reply.Text, Timestamp: o.now()})
	if o.observer != nil {
		o.observer.ObserveReply(reply.Source, len(reply.CharacterBreak) > 0)
	}
	return reply
}

func (o *Orchestrator) complete(ctx context.Context, s *session.Session, persona session.Persona, scamType detection.ScamType, inbound session.Message) (string, string, error) {
	if o.provider == nil {
		return "", "", llm.ErrNoProviders
	}
	history := s.ConversationHistory
	if n := len(history); n > 0 && history[n-1] == inbound {
		history = history[:n-1]
	}
	resp, err := o.provider.Complete(ctx, llm.Request{
		System:      Directive(persona, scamType),
		History:     session.Turns(history),
		Latest:      inbound.Text,
		MaxTokens:   120,
		Temperature: 0.9,
	})
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(resp.Text), resp.Provider, nil
}

// Directive renders the system instruction for persona.
func Directive(persona session.Persona, scamType detection.ScamType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\n", persona.Name, persona.Description)
	if len(persona.Traits) > 0 {
		fmt.Fprintf(&b, "Traits: %s.\n", strings.Join(persona.Traits, ", "))
	}
	if persona.ResponseStyle != "" {
		fmt.Fprintf(&b, "Style: %s.\n", persona.ResponseStyle)
	}
	fmt.Fprintf(&b, "The other person is running a %s scheme on you, but you do not realise it.\n", strings.ReplaceAll(string(scamType), "_", " "))
	b.WriteString(`Rules:
- Stay in character at all times. Never say or hint that you are automated.
- Reply in the same language and register the other person uses.
- Keep each reply to one or two short sentences.
- Never repeat something you already said.
- Act willing but confused; ask for the exact payment details, account numbers, UPI ids, phone numbers or links they want you to use.
- Never warn them, accuse them, or mention scams, fraud or the police.`)
	return b.String()
}
