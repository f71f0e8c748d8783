package engagement

import (
	"fmt"
	"strings"

	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/internal/session"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func intelSummary(r intel.Record) string {
	var parts []string
	if n := len(r.UPIIDs); n > 0 {
		parts = append(parts, plural(n, "UPI id", "UPI ids"))
	}
	if n := len(r.BankAccounts); n > 0 {
		parts = append(parts, plural(n, "bank account", "bank accounts"))
	}
	if n := len(r.PhoneNumbers); n > 0 {
		parts = append(parts, plural(n, "phone number", "phone numbers"))
	}
	if n := len(r.PhishingLinks); n > 0 {
		parts = append(parts, plural(n, "phishing link", "phishing links"))
	}
	if len(parts) == 0 {
		return "No actionable intelligence yet"
	}
	return "Extracted " + strings.Join(parts, ", ")
}

// agentNotes summarises the session for analysts and the final report.
func agentNotes(s *session.Session, last *detection.Result) string {
	var sentences []string
	if s.ScamDetected {
		sentences = append(sentences, fmt.Sprintf("Scam type: %s", s.ScamType))
	} else {
		sentences = append(sentences, "No scam detected")
	}
	if s.Persona != nil {
		sentences = append(sentences, "Persona: "+s.Persona.Name)
	}
	sentences = append(sentences, intelSummary(s.ExtractedIntelligence))
	if len(s.Indicators) > 0 {
		sentences = append(sentences, "Indicators: "+strings.Join(s.Indicators, ", "))
	}
	if last != nil && last.Reasoning != "" {
		sentences = append(sentences, fmt.Sprintf("Detector (%s): %s", last.Method, last.Reasoning))
	}
	if s.IsComplete {
		sentences = append(sentences, "Engagement complete ("+s.CompletionReason+")")
	}
	return strings.Join(sentences, ". ") + "."
}
