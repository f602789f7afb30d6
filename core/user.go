package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TemporaryName is the placeholder display name given to a user record at
// wallet sign-in, before the registration form has been completed. A record
// whose name equals this sentinel is not yet registered.
const TemporaryName = "Temporary"

// User is a row in the external user store. Wallet addresses are stored
// lower-cased; there is exactly one record per canonical address.
type User struct {
	ID                  string     // store record id
	UserID              string     // public numeric id
	UserUUID            string     // public uuid
	WalletAddress       string     // canonical (lower-cased) wallet address
	Name                string
	Email               string
	Verified            bool
	IsPro               bool
	SubscriptionStarted *time.Time
	SubscriptionExpires *time.Time
}

// Registered reports whether the user has completed registration. The
// "Temporary" sentinel name is the only signal of registration completeness.
func (u *User) Registered() bool {
	return u.Name != TemporaryName
}

// PaymentStatus is the lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is a row in the external payment store, created at payment
// initiation and resolved by the confirmation poller.
type Payment struct {
	Reference string // uuid with dashes stripped, matched against the ledger
	UserID    string // owning user record id
	Amount    decimal.Decimal
	Status    PaymentStatus
	CreatedAt time.Time
}

// LedgerTransaction is one status response from the external transaction
// ledger.
type LedgerTransaction struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Ledger-reported terminal transaction statuses.
const (
	LedgerStatusMined  = "mined"
	LedgerStatusFailed = "failed"
)

// PaymentOutcome is the three-valued result of a confirmation poll.
// Indeterminate means the attempt ceiling was reached without the ledger
// reporting a terminal status; the transaction may still resolve later.
type PaymentOutcome int

const (
	PaymentOutcomeIndeterminate PaymentOutcome = iota
	PaymentOutcomeConfirmed
	PaymentOutcomeFailed
)

// String returns the wire name of the outcome.
func (o PaymentOutcome) String() string {
	switch o {
	case PaymentOutcomeConfirmed:
		return "confirmed"
	case PaymentOutcomeFailed:
		return "failed"
	default:
		return "indeterminate"
	}
}
