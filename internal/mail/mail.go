package mail

import (
	"context"
	"log"
)

// Message is a rendered outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the process log instead of delivering them.
type LogSender struct {
	From     string
	WithBody bool
}

// Send logs the envelope and, when enabled, the body.
func (s LogSender) Send(ctx context.Context, msg Message) error {
	if s.WithBody {
		log.Printf("mail: from=%s to=%s subject=%q body=%q", s.From, msg.To, msg.Subject, msg.Body)
		return nil
	}
	log.Printf("mail: from=%s to=%s subject=%q", s.From, msg.To, msg.Subject)
	return nil
}
