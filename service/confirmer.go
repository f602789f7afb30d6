package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/compass-app/gatekeeper/core"
)

// JobStatus is the queryable state of a background confirmation job.
type JobStatus string

const (
	JobPending       JobStatus = "pending"
	JobConfirmed     JobStatus = "confirmed"
	JobFailed        JobStatus = "failed"
	JobIndeterminate JobStatus = "indeterminate"
)

// Confirmer runs payment confirmations as background jobs so a request does
// not have to stay open for the full polling window. Jobs are process-local
// and ephemeral; a restart loses them, which is acceptable because the client
// can always re-confirm synchronously.
type Confirmer struct {
	payments *PaymentService

	mu   sync.RWMutex
	jobs map[string]JobStatus
}

// NewConfirmer creates a new background confirmer.
func NewConfirmer(payments *PaymentService) *Confirmer {
	return &Confirmer{
		payments: payments,
		jobs:     make(map[string]JobStatus),
	}
}

// Enqueue starts a confirmation in the background and returns a job id the
// client can poll. The job inherits no deadline from the enqueueing request;
// it is bounded by the poller's own attempt ceiling.
func (c *Confirmer) Enqueue(userID, transactionID, reference string) string {
	jobID := uuid.New().String()

	c.mu.Lock()
	c.jobs[jobID] = JobPending
	c.mu.Unlock()

	go func() {
		outcome, err := c.payments.Confirm(context.Background(), userID, transactionID, reference)

		status := JobIndeterminate
		switch {
		case err != nil && errors.Is(err, core.ErrPaymentNotFound):
			status = JobFailed
		case outcome == core.PaymentOutcomeConfirmed:
			status = JobConfirmed
		case outcome == core.PaymentOutcomeFailed:
			status = JobFailed
		}

		c.mu.Lock()
		c.jobs[jobID] = status
		c.mu.Unlock()
	}()

	return jobID
}

// Status returns the current status of a job.
func (c *Confirmer) Status(jobID string) (JobStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status, ok := c.jobs[jobID]
	return status, ok
}
