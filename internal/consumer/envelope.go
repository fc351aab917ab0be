package consumer

import (
	"context"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
)

// Envelope carries a parsed click together with its queue acknowledgment
type Envelope struct {
	Click *domain.ClickEvent
	ack   func(context.Context) error
	nack  func(context.Context) error
}

// NewEnvelope creates a new message envelope
func NewEnvelope(click *domain.ClickEvent, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Click: click,
		ack:   ack,
		nack:  nack,
	}
}

// Ack removes the message from the queue
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack leaves the message for redelivery
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}
