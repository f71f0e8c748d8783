package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// SESAPI is the slice of the SES v2 client the sender calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig configures SESSender.
type SESConfig struct {
	FromEmail string
	FromName  string
}

// SESSender delivers analyst e-mails through Amazon SES.
type SESSender struct {
	client SESAPI
	from   fromAddress
	logger *logging.Logger
}

// NewSESSender returns nil without a client.
func NewSESSender(client SESAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	return &SESSender{
		client: client,
		from:   newFromAddress(cfg.FromName, cfg.FromEmail),
		logger: logger.WithComponent("notify.ses"),
	}
}

func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return errSenderUnconfigured
	}
	out, err := s.client.SendEmail(ctx, s.input(msg))
	if err != nil {
		s.logger.Error("analyst email failed", "session_id", msg.SessionID, "error", err)
		return fmt.Errorf("notify: ses: %w", err)
	}
	s.logger.Info("analyst email sent", "session_id", msg.SessionID, "message_id", aws.ToString(out.MessageId))
	return nil
}

func (s *SESSender) input(msg EmailMessage) *sesv2.SendEmailInput {
	body := &types.Body{
		Text: utf8Content(msg.Body),
		Html: utf8Content(msg.HTML),
	}
	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from.String()),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{Subject: utf8Content(msg.Subject), Body: body},
		},
	}
	// SES tag values reject most punctuation, so only well-formed ids are tagged.
	if msg.Category != "" {
		in.EmailTags = append(in.EmailTags, types.MessageTag{Name: aws.String("category"), Value: aws.String(msg.Category)})
	}
	if tagSafe(msg.SessionID) {
		in.EmailTags = append(in.EmailTags, types.MessageTag{Name: aws.String("session_id"), Value: aws.String(msg.SessionID)})
	}
	return in
}

// utf8Content returns nil for empty text so SES omits the part.
func utf8Content(text string) *types.Content {
	if text == "" {
		return nil
	}
	return &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")}
}

func tagSafe(v string) bool {
	if v == "" || len(v) > 256 {
		return false
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

var _ EmailSender = (*SESSender)(nil)
