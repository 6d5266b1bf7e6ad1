package email

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrNoRecipients is returned when a request has no To addresses.
var ErrNoRecipients = errors.New("email has no recipients")

// ResendSender delivers report mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	now    func() time.Time
}

// NewResendSender builds a sender whose messages default to from.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, now: time.Now}
}

// WithBaseURL points the client at another API host, e.g. a local stub.
func (s *ResendSender) WithBaseURL(raw string) (*ResendSender, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse resend base url: %w", err)
	}
	s.client.BaseURL = u
	return s, nil
}

// params maps a request onto the Resend payload. Category becomes a tag so
// report mail can be filtered in the provider dashboard.
func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	p := &resend.SendEmailRequest{
		From:    cmp.Or(req.From, s.from),
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		ReplyTo: req.ReplyTo,
	}
	if req.Category != "" {
		p.Tags = []resend.Tag{{Name: "category", Value: req.Category}}
	}
	for _, a := range req.Attachments {
		p.Attachments = append(p.Attachments, &resend.Attachment{Filename: a.Filename, Content: a.Content})
	}
	return p
}

// Send submits one message.
// PRE: req.To is non-empty
// POST: Returns the provider message id
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "recipients", len(req.To), "category", req.Category)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}
	slog.Info("resend_sent", "message_id", sent.Id, "recipients", len(req.To), "category", req.Category)
	return SendResult{MessageID: sent.Id, SentAt: s.now()}, nil
}
