package notify

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTP sends mail through an SMTP relay with STARTTLS.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP creates an SMTP transport. from defaults to user when empty.
func NewSMTP(host string, port int, user, password, from string) *SMTP {
	if from == "" {
		from = user
	}
	return &SMTP{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *SMTP) Name() string { return "smtp" }

// Send dials the relay and sends msg. gomail has no context support, so ctx
// is only checked before dialing.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(s.build(msg)); err != nil {
		return fmt.Errorf("dial and send: %w", err)
	}
	return nil
}

func (s *SMTP) build(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)
	if len(msg.Attachment) > 0 {
		data := msg.Attachment
		m.Attach(msg.AttachmentName,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/json"}}),
		)
	}
	return m
}
