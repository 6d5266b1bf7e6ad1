package email

import (
	"context"
	"time"
)

// Attachment is a file sent alongside the message body.
type Attachment struct {
	Filename string
	Content  []byte
}

// SendRequest is one outgoing message.
type SendRequest struct {
	To          []string // Recipient email addresses
	From        string   // Sender address; empty uses the sender's default
	Subject     string
	HTML        string // HTML body
	Text        string // Plain-text alternative
	ReplyTo     string
	Category    string // Provider tag used to group sends, e.g. "report"
	Attachments []Attachment
}

// SendResult is what the provider accepted.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender delivers mail. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
