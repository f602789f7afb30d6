package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/ports"
)

const (
	// DefaultPollAttempts bounds how many times the ledger is queried for one
	// confirmation call.
	DefaultPollAttempts = 10

	// DefaultPollInterval is the pause between ledger queries.
	DefaultPollInterval = 2 * time.Second

	// DefaultSubscriptionTerm is how long a confirmed payment keeps the
	// subscription active.
	DefaultSubscriptionTerm = 30 * 24 * time.Hour
)

// PaymentService initiates payments and confirms them against the external
// ledger. Confirmation is a bounded synchronous poll; the service never
// mutates the store until the ledger reports a terminal status.
type PaymentService struct {
	users            ports.UserStore
	payments         ports.PaymentStore
	ledger           ports.Ledger
	eventPub         ports.EventPublisher
	pollAttempts     int
	pollInterval     time.Duration
	subscriptionTerm time.Duration
}

// NewPaymentService creates a new payment service.
func NewPaymentService(users ports.UserStore, payments ports.PaymentStore, ledger ports.Ledger, eventPub ports.EventPublisher) *PaymentService {
	return &PaymentService{
		users:            users,
		payments:         payments,
		ledger:           ledger,
		eventPub:         eventPub,
		pollAttempts:     DefaultPollAttempts,
		pollInterval:     DefaultPollInterval,
		subscriptionTerm: DefaultSubscriptionTerm,
	}
}

// Initiate creates a pending payment record with a fresh reference for the
// user. The reference is a uuid with dashes stripped, matched later against
// the ledger's reported reference.
func (s *PaymentService) Initiate(ctx context.Context, userID string, amount decimal.Decimal) (*core.Payment, error) {
	payment := &core.Payment{
		Reference: strings.ReplaceAll(uuid.New().String(), "-", ""),
		UserID:    userID,
		Amount:    amount,
		Status:    core.PaymentPending,
		CreatedAt: time.Now(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// Confirm looks up the caller's payment record, polls the ledger until the
// transaction reaches a terminal status or the attempt ceiling is hit, and on
// confirmation activates the user's subscription for the fixed term.
func (s *PaymentService) Confirm(ctx context.Context, userID, transactionID, reference string) (core.PaymentOutcome, error) {
	payment, err := s.payments.GetByReference(ctx, userID, reference)
	if err != nil {
		return core.PaymentOutcomeIndeterminate, err
	}

	outcome := s.poll(ctx, transactionID, payment.Reference)

	switch outcome {
	case core.PaymentOutcomeConfirmed:
		until := time.Now().Add(s.subscriptionTerm)
		if err := s.users.ActivateSubscription(ctx, userID, until); err != nil {
			return core.PaymentOutcomeConfirmed, err
		}
		if err := s.payments.SetStatus(ctx, userID, payment.Reference, core.PaymentConfirmed); err != nil {
			return core.PaymentOutcomeConfirmed, err
		}
		if s.eventPub != nil {
			if err := s.eventPub.PublishPaymentConfirmed(ctx, userID, payment.Reference); err != nil {
				log.Printf("warning: failed to publish payment event: %v", err)
			}
		}
	case core.PaymentOutcomeFailed:
		if err := s.payments.SetStatus(ctx, userID, payment.Reference, core.PaymentFailed); err != nil {
			return core.PaymentOutcomeFailed, err
		}
	}
	// Indeterminate leaves the record pending; the transaction may still
	// resolve and the client can confirm again.

	return outcome, nil
}

// poll queries the ledger up to the attempt ceiling. A response whose
// reference does not match is ignored and polling continues; only a matching
// mined or failed status terminates early.
func (s *PaymentService) poll(ctx context.Context, transactionID, reference string) core.PaymentOutcome {
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		tx, err := s.ledger.Transaction(ctx, transactionID)
		if err != nil {
			log.Printf("ledger query failed for %s: %v", transactionID, err)
		} else if tx.Reference == reference {
			switch tx.Status {
			case core.LedgerStatusMined:
				return core.PaymentOutcomeConfirmed
			case core.LedgerStatusFailed:
				return core.PaymentOutcomeFailed
			}
		}

		if attempt < s.pollAttempts-1 {
			select {
			case <-ctx.Done():
				return core.PaymentOutcomeIndeterminate
			case <-time.After(s.pollInterval):
			}
		}
	}

	return core.PaymentOutcomeIndeterminate
}
