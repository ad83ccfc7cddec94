// Package notify sends best-effort account emails off the request path.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("notify: message has no recipient")
	}
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	return err
}

// LogSender stands in when no email provider is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info("email not configured, skipping", "subject", msg.Subject, "recipients", len(msg.To))
	return nil
}
