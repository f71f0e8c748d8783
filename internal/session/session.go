// Package session tracks per-conversation engagement state and decides when
// an engagement must stop.
package session

import (
	"slices"
	"time"

	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/internal/llm"
)

// Sender identifies the author of a Message.
type Sender string

const (
	SenderScammer Sender = "scammer"
	SenderAgent   Sender = "agent"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderScammer || s == SenderAgent
}

// Message is one immutable entry in a conversation.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Persona is the character a session plays once engaged.
type Persona struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Traits        []string `json:"traits"`
	ResponseStyle string   `json:"responseStyle"`
}

// State is the engagement lifecycle position.
type State string

const (
	StateFresh    State = "FRESH"
	StateEngaged  State = "ENGAGED"
	StateComplete State = "COMPLETE"
)

// Session is the mutable record of one conversation. It is not safe for
// concurrent use; callers go through Registry.WithSession.
type Session struct {
	ID                    string             `json:"sessionId"`
	ScamDetected          bool               `json:"scamDetected"`
	ScamType              detection.ScamType `json:"scamType,omitempty"`
	Confidence            float64            `json:"confidence"`
	Indicators            []string           `json:"indicators,omitempty"`
	Persona               *Persona           `json:"persona,omitempty"`
	ConversationHistory   []Message          `json:"conversationHistory"`
	ExtractedIntelligence intel.Record       `json:"extractedIntelligence"`
	StartTime             time.Time          `json:"startTime"`
	LastActivity          time.Time          `json:"lastActivity"`
	MessageCount          int                `json:"messageCount"`
	IsComplete            bool               `json:"isComplete"`
	CompletionReason      string             `json:"completionReason,omitempty"`
	ReportSent            bool               `json:"reportSent"`
}

// New returns a session in the FRESH state.
func New(id string, now time.Time) *Session {
	return &Session{
		ID:                    id,
		ConversationHistory:   []Message{},
		ExtractedIntelligence: intel.NewRecord(),
		StartTime:             now,
		LastActivity:          now,
	}
}

// State derives the lifecycle state from the flags.
func (s *Session) State() State {
	switch {
	case s.IsComplete:
		return StateComplete
	case s.ScamDetected:
		return StateEngaged
	}
	return StateFresh
}

// Append records msg in arrival order. Inbound scammer messages count toward
// the message ceiling.
func (s *Session) Append(msg Message) {
	s.ConversationHistory = append(s.ConversationHistory, msg)
	if msg.Sender == SenderScammer {
		s.MessageCount++
	}
	if msg.Timestamp.After(s.LastActivity) {
		s.LastActivity = msg.Timestamp
	}
}

// MergeIntelligence folds rec into the cumulative record.
func (s *Session) MergeIntelligence(rec intel.Record) {
	s.ExtractedIntelligence = s.ExtractedIntelligence.Merge(rec)
}

// ObserveDetection applies a detection verdict. Only the first positive
// verdict binds ScamDetected and ScamType; it reports whether this call was
// that transition.
func (s *Session) ObserveDetection(r detection.Result) bool {
	for _, ind := range r.Indicators {
		if !slices.Contains(s.Indicators, ind) {
			s.Indicators = append(s.Indicators, ind)
		}
	}
	if r.Confidence > s.Confidence {
		s.Confidence = r.Confidence
	}
	if s.ScamDetected || !r.IsScam {
		return false
	}
	s.ScamDetected = true
	s.ScamType = r.ScamType
	if s.ScamType == "" || s.ScamType == detection.ScamTypeNone {
		s.ScamType = detection.ScamTypeOther
	}
	return true
}

// BindPersona sets the persona if none is bound and returns the bound one.
func (s *Session) BindPersona(p Persona) Persona {
	if s.Persona == nil {
		bound := p
		s.Persona = &bound
	}
	return *s.Persona
}

// Complete marks the session terminal. It returns true only on the first call.
func (s *Session) Complete(reason string) bool {
	if s.IsComplete {
		return false
	}
	s.IsComplete = true
	s.CompletionReason = reason
	return true
}

// MarkReportSent flips the report guard. It returns true only on the first call.
func (s *Session) MarkReportSent() bool {
	if s.ReportSent {
		return false
	}
	s.ReportSent = true
	return true
}

// Duration is the engagement length measured to now.
func (s *Session) Duration(now time.Time) time.Duration {
	if now.Before(s.StartTime) {
		return 0
	}
	return now.Sub(s.StartTime)
}

// Turns converts history into provider turns.
func Turns(history []Message) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history))
	for _, m := range history {
		role := llm.RoleScammer
		if m.Sender == SenderAgent {
			role = llm.RoleAgent
		}
		turns = append(turns, llm.Turn{Role: role, Text: m.Text})
	}
	return turns
}

// Clone returns a deep copy safe to hand to readers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Indicators = slices.Clone(s.Indicators)
	out.ConversationHistory = slices.Clone(s.ConversationHistory)
	if out.ConversationHistory == nil {
		out.ConversationHistory = []Message{}
	}
	out.ExtractedIntelligence = intel.NewRecord().Merge(s.ExtractedIntelligence)
	if s.Persona != nil {
		p := *s.Persona
		p.Traits = slices.Clone(s.Persona.Traits)
		out.Persona = &p
	}
	return &out
}
