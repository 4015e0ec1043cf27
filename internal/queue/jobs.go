package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/CreativeBrief/internal/notify"
)

const (
	// DeliverTask is scheduled each time a questionnaire is completed.
	DeliverTask = "questionnaire:deliver"
)

// DeliveryPayload is serialized into the task payload. It carries the fully
// rendered message so the worker needs nothing but a transport.
type DeliveryPayload struct {
	SessionID      string `json:"session_id"`
	To             string `json:"to"`
	Subject        string `json:"subject"`
	HTML           string `json:"html"`
	Text           string `json:"text"`
	Attachment     []byte `json:"attachment,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
}

// PayloadFromMessage copies msg into a task payload.
func PayloadFromMessage(msg notify.Message) DeliveryPayload {
	return DeliveryPayload{
		SessionID:      msg.SessionID,
		To:             msg.To,
		Subject:        msg.Subject,
		HTML:           msg.HTML,
		Text:           msg.Text,
		Attachment:     msg.Attachment,
		AttachmentName: msg.AttachmentName,
	}
}

// Message converts the payload back into a notify.Message.
func (p DeliveryPayload) Message() notify.Message {
	return notify.Message{
		SessionID:      p.SessionID,
		To:             p.To,
		Subject:        p.Subject,
		HTML:           p.HTML,
		Text:           p.Text,
		Attachment:     p.Attachment,
		AttachmentName: p.AttachmentName,
	}
}

// NewDeliveryTask builds the asynq task for payload.
func NewDeliveryTask(payload DeliveryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(DeliverTask, data, asynq.MaxRetry(5)), nil
}

// EnqueueDelivery enqueues a completion email.
func EnqueueDelivery(ctx context.Context, client *asynq.Client, payload DeliveryPayload) error {
	task, err := NewDeliveryTask(payload)
	if err != nil {
		return err
	}
	if _, err := client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue deliver task: %w", err)
	}
	return nil
}

// Notifier satisfies the controller's notifier by handing messages to the
// worker instead of sending them inline. A nil error means queued, not sent.
type Notifier struct {
	client *asynq.Client
}

// NewNotifier wraps an asynq client.
func NewNotifier(client *asynq.Client) *Notifier {
	return &Notifier{client: client}
}

// Deliver enqueues msg.
func (n *Notifier) Deliver(ctx context.Context, msg notify.Message) error {
	return EnqueueDelivery(ctx, n.client, PayloadFromMessage(msg))
}
