package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/compass-app/gatekeeper/core"
)

// PostgresStore implements the user and payment store contracts on top of
// database/sql. Wallet addresses are matched exactly as given; canonical
// records are written lower-cased by the registration flow, so callers that
// need case tolerance must retry with the lower-cased address.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres-backed store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetByWalletAddress retrieves a user by wallet address.
func (s *PostgresStore) GetByWalletAddress(ctx context.Context, address string) (*core.User, error) {
	query := `
		SELECT id, user_id, user_uuid, wallet_address, name, email, verified,
		       is_pro, subscription_started_at, subscription_expires_at
		FROM users
		WHERE wallet_address = $1
	`

	var user core.User
	var started, expires sql.NullTime
	err := s.db.QueryRowContext(ctx, query, address).Scan(
		&user.ID,
		&user.UserID,
		&user.UserUUID,
		&user.WalletAddress,
		&user.Name,
		&user.Email,
		&user.Verified,
		&user.IsPro,
		&started,
		&expires,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if started.Valid {
		user.SubscriptionStarted = &started.Time
	}
	if expires.Valid {
		user.SubscriptionExpires = &expires.Time
	}

	return &user, nil
}

// ActivateSubscription marks the user as subscribed until the given time.
func (s *PostgresStore) ActivateSubscription(ctx context.Context, userID string, until time.Time) error {
	query := `
		UPDATE users
		SET is_pro = TRUE, subscription_started_at = NOW(), subscription_expires_at = $2
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, userID, until)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check subscription update: %w", err)
	}
	if rows == 0 {
		return core.ErrUserNotFound
	}

	return nil
}

// Create stores a new payment record.
func (s *PostgresStore) Create(ctx context.Context, payment *core.Payment) error {
	query := `
		INSERT INTO payments (reference, user_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		payment.Reference,
		payment.UserID,
		payment.Amount,
		payment.Status,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// GetByReference retrieves a payment by owning user and reference.
func (s *PostgresStore) GetByReference(ctx context.Context, userID, reference string) (*core.Payment, error) {
	query := `
		SELECT reference, user_id, amount, status, created_at
		FROM payments
		WHERE user_id = $1 AND reference = $2
	`

	var payment core.Payment
	err := s.db.QueryRowContext(ctx, query, userID, reference).Scan(
		&payment.Reference,
		&payment.UserID,
		&payment.Amount,
		&payment.Status,
		&payment.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}

	return &payment, nil
}

// SetStatus updates the status of a payment record.
func (s *PostgresStore) SetStatus(ctx context.Context, userID, reference string, status core.PaymentStatus) error {
	query := `
		UPDATE payments
		SET status = $3
		WHERE user_id = $1 AND reference = $2
	`

	result, err := s.db.ExecContext(ctx, query, userID, reference, status)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check payment update: %w", err)
	}
	if rows == 0 {
		return core.ErrPaymentNotFound
	}

	return nil
}
