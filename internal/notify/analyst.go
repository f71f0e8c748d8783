package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// Completion summarises a finished engagement for an analyst.
type Completion struct {
	SessionID     string
	ScamType      string
	Persona       string
	Reason        string
	TotalMessages int
	Duration      time.Duration
	Intelligence  intel.Record
	Notes         string
}

// AnalystNotifier mails a completion summary to one analyst address.
type AnalystNotifier struct {
	sender EmailSender
	to     string
	logger *logging.Logger
}

// NewAnalystNotifier returns nil when either the sender or the address is
// missing, which callers treat as notifications disabled.
func NewAnalystNotifier(sender EmailSender, to string, logger *logging.Logger) *AnalystNotifier {
	if sender == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalystNotifier{sender: sender, to: strings.TrimSpace(to), logger: logger.WithComponent("notify")}
}

// NotifyCompletion sends the summary.
func (n *AnalystNotifier) NotifyCompletion(ctx context.Context, c Completion) error {
	if n == nil {
		return nil
	}
	msg := EmailMessage{
		To:        n.to,
		Subject:   completionSubject(c),
		Body:      completionText(c),
		HTML:      completionHTML(c),
		SessionID: c.SessionID,
		Category:  completionTag,
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: completion for %s: %w", c.SessionID, err)
	}
	return nil
}

func completionSubject(c Completion) string {
	scamType := c.ScamType
	if scamType == "" {
		scamType = "unknown"
	}
	return fmt.Sprintf("[honeypot] %s engagement complete: %s", scamType, c.SessionID)
}

type intelLine struct {
	label  string
	values []string
}

func intelLines(r intel.Record) []intelLine {
	return []intelLine{
		{"UPI IDs", r.UPIIDs},
		{"Bank accounts", r.BankAccounts},
		{"Phone numbers", r.PhoneNumbers},
		{"Phishing links", r.PhishingLinks},
		{"Keywords", r.SuspiciousKeywords},
	}
}

func completionText(c Completion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", c.SessionID)
	fmt.Fprintf(&b, "Scam type: %s\n", c.ScamType)
	fmt.Fprintf(&b, "Persona: %s\n", c.Persona)
	fmt.Fprintf(&b, "Stopped because: %s\n", c.Reason)
	fmt.Fprintf(&b, "Messages exchanged: %d over %s\n\n", c.TotalMessages, c.Duration.Round(time.Second))
	for _, line := range intelLines(c.Intelligence) {
		if len(line.values) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", line.label, strings.Join(line.values, ", "))
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", c.Notes)
	}
	return b.String()
}

func completionHTML(c Completion) string {
	var b strings.Builder
	b.WriteString("<h2>Engagement complete</h2><table>")
	row := func(k, v string) {
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", html.EscapeString(k), html.EscapeString(v))
	}
	row("Session", c.SessionID)
	row("Scam type", c.ScamType)
	row("Persona", c.Persona)
	row("Stopped because", c.Reason)
	row("Messages", fmt.Sprintf("%d", c.TotalMessages))
	for _, line := range intelLines(c.Intelligence) {
		if len(line.values) > 0 {
			row(line.label, strings.Join(line.values, ", "))
		}
	}
	b.WriteString("</table>")
	if c.Notes != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(c.Notes))
	}
	return b.String()
}
