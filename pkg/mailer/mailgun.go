package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// EventIDHeader carries EmailJob.EventID so bounces can be traced back to
// the user event that caused the email.
const EventIDHeader = "X-User-Event-ID"

// Mailgun sends rendered emails through the Mailgun API.
type Mailgun struct {
	Sender string
	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

// Message is a rendered email ready to send.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string // optional
	EventID string // optional
	Tag     string // optional, e.g. the template name
}

func (m *Mailgun) Send(ctx context.Context, in Message) (string, error) {
	msg := m.client.NewMessage(m.Sender, in.Subject, in.Text, in.To)
	if in.HTML != "" {
		msg.SetHtml(in.HTML)
	}
	if in.EventID != "" {
		msg.AddHeader(EventIDHeader, in.EventID)
	}
	if in.Tag != "" {
		if err := msg.AddTag(in.Tag); err != nil {
			return "", err
		}
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, id, err := m.client.Send(c, msg)
	return id, err
}
