// Package notify delivers the completion email. A Notifier tries its primary
// transport first and falls back to the secondary one when that fails.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dharsanguruparan/CreativeBrief/internal/config"
)

// ErrNoTransport is returned when neither transport is configured.
var ErrNoTransport = errors.New("no email transport configured")

// Message is a rendered email with an optional single attachment.
type Message struct {
	// SessionID ties the message to its submission for status tracking.
	SessionID      string
	To             string
	Subject        string
	HTML           string
	Text           string
	Attachment     []byte
	AttachmentName string
}

// Transport sends a message through one provider.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Notifier holds an ordered pair of transports. Either may be nil.
type Notifier struct {
	primary   Transport
	secondary Transport
}

// NewNotifier wires the transports in fallback order.
func NewNotifier(primary, secondary Transport) *Notifier {
	return &Notifier{primary: primary, secondary: secondary}
}

// Deliver sends msg through the primary transport and, if that fails, through
// the secondary. When both fail only the secondary's error is returned; the
// primary failure is logged.
func (n *Notifier) Deliver(ctx context.Context, msg Message) error {
	if n.primary == nil && n.secondary == nil {
		return ErrNoTransport
	}
	if n.primary != nil {
		err := n.primary.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if n.secondary == nil {
			return fmt.Errorf("%s: %w", n.primary.Name(), err)
		}
		log.Printf("%s delivery to %s failed, trying %s: %v", n.primary.Name(), msg.To, n.secondary.Name(), err)
	}
	if err := n.secondary.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", n.secondary.Name(), err)
	}
	return nil
}

// FromConfig builds a Notifier from the configured transport names. A
// transport without credentials is skipped.
func FromConfig(cfg *config.Config) (*Notifier, error) {
	primary, err := transportByName(cfg, cfg.NotifyPrimary)
	if err != nil {
		return nil, err
	}
	secondary, err := transportByName(cfg, cfg.NotifySecondary)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		primary, secondary = secondary, nil
	}
	return NewNotifier(primary, secondary), nil
}

func transportByName(cfg *config.Config, name string) (Transport, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, nil
		}
		return NewSendGrid(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, nil
		}
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFromEmail), nil
	}
	return nil, fmt.Errorf("unknown email transport %q", name)
}
