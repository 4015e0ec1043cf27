package notify

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGrid sends mail through the SendGrid v3 API.
type SendGrid struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGrid creates a SendGrid transport.
func NewSendGrid(apiKey, from, fromName string) *SendGrid {
	return &SendGrid{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (s *SendGrid) Name() string { return "sendgrid" }

// Send posts the message. Any non-2xx status is an error.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	resp, err := s.client.SendWithContext(ctx, s.buildMail(msg))
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *SendGrid) buildMail(msg Message) *mail.SGMailV3 {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if len(msg.Attachment) > 0 {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(msg.Attachment))
		a.SetType("application/json")
		a.SetFilename(msg.AttachmentName)
		a.SetDisposition("attachment")
		m.AddAttachment(a)
	}
	return m
}
