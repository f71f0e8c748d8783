// Package notify e-mails analysts when an engagement completes.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// EmailSender delivers one analyst e-mail.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single analyst e-mail. SessionID and Category travel as
// provider metadata so deliveries can be traced back to an engagement.
type EmailMessage struct {
	To        string
	Subject   string
	Body      string
	HTML      string
	SessionID string
	Category  string
}

const (
	defaultFromName = "Honeypot Intel"
	completionTag   = "engagement-complete"
)

var errSenderUnconfigured = errors.New("notify: sender not configured")

// sender identity shared by every provider.
type fromAddress struct {
	name  string
	email string
}

func newFromAddress(name, email string) fromAddress {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultFromName
	}
	return fromAddress{name: name, email: strings.TrimSpace(email)}
}

func (f fromAddress) String() string {
	return fmt.Sprintf("%s <%s>", f.name, f.email)
}

// SendGridConfig configures SendGridSender.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender posts analyst e-mails to the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   fromAddress
	logger *logging.Logger
}

// NewSendGridSender returns nil without an API key.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   newFromAddress(cfg.FromName, cfg.FromEmail),
		logger: logger.WithComponent("notify.sendgrid"),
	}
}

// Send delivers msg. Any 4xx or 5xx response is an error.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return errSenderUnconfigured
	}
	resp, err := s.client.SendWithContext(ctx, s.build(msg))
	if err != nil {
		s.logger.Error("analyst email failed", "session_id", msg.SessionID, "error", err)
		return fmt.Errorf("notify: sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Error("analyst email rejected", "session_id", msg.SessionID, "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("notify: sendgrid status %d", resp.StatusCode)
	}
	s.logger.Info("analyst email sent", "session_id", msg.SessionID, "status", resp.StatusCode)
	return nil
}

func (s *SendGridSender) build(msg EmailMessage) *mail.SGMailV3 {
	htmlBody := msg.HTML
	if htmlBody == "" {
		htmlBody = msg.Body
	}
	m := mail.NewSingleEmail(
		mail.NewEmail(s.from.name, s.from.email),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.Body,
		htmlBody,
	)
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	if msg.SessionID != "" && len(m.Personalizations) > 0 {
		m.Personalizations[0].SetCustomArg("session_id", msg.SessionID)
	}
	return m
}

var _ EmailSender = (*SendGridSender)(nil)
