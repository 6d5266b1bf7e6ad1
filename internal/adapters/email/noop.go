package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender stands in when no Resend key is configured: it logs the
// message and reports success without delivering anything.
type NoopSender struct {
	now func() time.Time
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{now: time.Now}
}

// Send logs the email but does not deliver it.
// POST: Returns a synthetic message id
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	now := s.now()
	slog.Info("noop_email_send", "recipients", len(req.To), "subject", req.Subject, "category", req.Category, "attachments", len(req.Attachments))
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", now.UnixNano()),
		SentAt:    now,
	}, nil
}
