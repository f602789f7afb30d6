package ports

import (
	"context"
	"time"

	"github.com/compass-app/gatekeeper/core"
)

// UserStore is the read/write contract this service needs from the external
// user store. Lookups are by the address exactly as given; callers handle
// case normalization.
type UserStore interface {
	// GetByWalletAddress returns the user for the address, or
	// core.ErrUserNotFound.
	GetByWalletAddress(ctx context.Context, address string) (*core.User, error)

	// ActivateSubscription marks the user as subscribed until the given time.
	ActivateSubscription(ctx context.Context, userID string, until time.Time) error
}

// PaymentStore persists payment records keyed by owning user and reference.
type PaymentStore interface {
	Create(ctx context.Context, payment *core.Payment) error

	// GetByReference returns the payment owned by userID with the given
	// reference, or core.ErrPaymentNotFound.
	GetByReference(ctx context.Context, userID, reference string) (*core.Payment, error)

	SetStatus(ctx context.Context, userID, reference string, status core.PaymentStatus) error
}

// NonceStore holds sign-in nonces keyed by challenge id. Take removes the
// nonce atomically so a challenge can be consumed exactly once.
type NonceStore interface {
	Put(ctx context.Context, id, nonce string, ttl time.Duration) error

	// Take returns and deletes the nonce for id, or core.ErrNonceNotFound.
	Take(ctx context.Context, id string) (string, error)
}
