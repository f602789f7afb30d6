package ports

import "context"

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishSessionCreated(ctx context.Context, address string) error
	PublishPaymentConfirmed(ctx context.Context, userID, reference string) error
}
