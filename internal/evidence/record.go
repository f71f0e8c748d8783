// Package evidence keeps an auditable snapshot of every engaged session and
// optionally archives completed ones to S3.
package evidence

import (
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/internal/session"
)

// Record is the persisted view of a session at one point in time. Records
// are keyed by session id; a newer record replaces an older one.
type Record struct {
	ID               string             `json:"id"`
	SessionID        string             `json:"sessionId"`
	ScamDetected     bool               `json:"scamDetected"`
	ScamType         detection.ScamType `json:"scamType,omitempty"`
	Confidence       float64            `json:"confidence"`
	Persona          string             `json:"persona,omitempty"`
	Intelligence     intel.Record       `json:"extractedIntelligence"`
	History          []session.Message  `json:"conversationHistory"`
	MessageCount     int                `json:"messageCount"`
	TotalMessages    int                `json:"totalMessagesExchanged"`
	IsComplete       bool               `json:"isComplete"`
	CompletionReason string             `json:"completionReason,omitempty"`
	ReportSent       bool               `json:"reportSent"`
	AgentNotes       string             `json:"agentNotes"`
	StartedAt        time.Time          `json:"startedAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

var recordNamespace = uuid.MustParse("6f1c3a52-7d0e-4b8a-9a57-0c1d2e3f4a5b")

// RecordID derives a stable id for a session so repeated upserts keep it.
func RecordID(sessionID string) string {
	return uuid.NewSHA1(recordNamespace, []byte(sessionID)).String()
}

// FromSession snapshots s.
func FromSession(s *session.Session, notes string, now time.Time) Record {
	snap := s.Clone()
	rec := Record{
		ID:               RecordID(snap.ID),
		SessionID:        snap.ID,
		ScamDetected:     snap.ScamDetected,
		ScamType:         snap.ScamType,
		Confidence:       snap.Confidence,
		Intelligence:     snap.ExtractedIntelligence,
		History:          snap.ConversationHistory,
		MessageCount:     snap.MessageCount,
		TotalMessages:    len(snap.ConversationHistory),
		IsComplete:       snap.IsComplete,
		CompletionReason: snap.CompletionReason,
		ReportSent:       snap.ReportSent,
		AgentNotes:       notes,
		StartedAt:        snap.StartTime,
		UpdatedAt:        now.UTC(),
	}
	if snap.Persona != nil {
		rec.Persona = snap.Persona.Name
	}
	return rec
}
