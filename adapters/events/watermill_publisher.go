package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/compass-app/gatekeeper/ports"
)

// SessionCreatedEvent is published when a wallet handshake completes and a
// session credential is minted.
type SessionCreatedEvent struct {
	Address string `json:"address"`
}

// PaymentConfirmedEvent is published when the ledger reports a payment mined.
type PaymentConfirmedEvent struct {
	UserID    string `json:"user_id"`
	Reference string `json:"reference"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher    message.Publisher
	sessionTopic string
	paymentTopic string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher:    publisher,
		sessionTopic: "gatekeeper.session.created",
		paymentTopic: "gatekeeper.payment.confirmed",
	}
}

// PublishSessionCreated publishes a session-created event.
func (p *WatermillPublisher) PublishSessionCreated(ctx context.Context, address string) error {
	return p.publish(p.sessionTopic, SessionCreatedEvent{Address: address})
}

// PublishPaymentConfirmed publishes a payment-confirmed event.
func (p *WatermillPublisher) PublishPaymentConfirmed(ctx context.Context, userID, reference string) error {
	return p.publish(p.paymentTopic, PaymentConfirmedEvent{UserID: userID, Reference: reference})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
