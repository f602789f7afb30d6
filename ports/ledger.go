package ports

import (
	"context"

	"github.com/compass-app/gatekeeper/core"
)

// Ledger is the external transaction-status authority polled during payment
// confirmation.
type Ledger interface {
	Transaction(ctx context.Context, transactionID string) (*core.LedgerTransaction, error)
}
