package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/CreativeBrief/internal/notify"
	"github.com/dharsanguruparan/CreativeBrief/internal/queue"
)

// Deliverer sends a rendered message. notify.Notifier satisfies it.
type Deliverer interface {
	Deliver(ctx context.Context, msg notify.Message) error
}

// StatusRecorder tracks delivery on the archived submission.
type StatusRecorder interface {
	MarkSent(ctx context.Context, sessionID string) error
	MarkFailed(ctx context.Context, sessionID, msg string) error
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	deliverer Deliverer
	status    StatusRecorder
}

// NewProcessor constructs a worker processor. status may be nil when no
// archive is configured.
func NewProcessor(deliverer Deliverer, status StatusRecorder) *Processor {
	return &Processor{deliverer: deliverer, status: status}
}

// Handler registers the delivery job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.DeliverTask, p.handleDeliver)
	return mux
}

func (p *Processor) handleDeliver(ctx context.Context, task *asynq.Task) error {
	var payload queue.DeliveryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// A payload that cannot be decoded will never succeed.
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := p.deliverer.Deliver(ctx, payload.Message()); err != nil {
		log.Printf("delivery failed for %s: %v", payload.SessionID, err)
		if p.status != nil {
			if serr := p.status.MarkFailed(ctx, payload.SessionID, err.Error()); serr != nil {
				log.Printf("record delivery failure for %s: %v", payload.SessionID, serr)
			}
		}
		if errors.Is(err, notify.ErrNoTransport) {
			// Retrying cannot help until the worker is reconfigured.
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	if p.status != nil {
		if err := p.status.MarkSent(ctx, payload.SessionID); err != nil {
			log.Printf("record delivery for %s: %v", payload.SessionID, err)
		}
	}
	log.Printf("completion email for %s delivered to %s", payload.SessionID, payload.To)
	return nil
}
