package store

import (
	"context"
	"sync"
	"time"

	"github.com/compass-app/gatekeeper/core"
)

// MemoryStore is an in-memory implementation of the user and payment store
// contracts. It is primarily intended for testing; users are keyed by the
// exact address string they were added under, so lookups are case-sensitive
// like the real store.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*core.User
	payments map[string]*core.Payment
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*core.User),
		payments: make(map[string]*core.Payment),
	}
}

// AddUser inserts a user keyed by its stored wallet address.
func (s *MemoryStore) AddUser(user *core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.WalletAddress] = user
}

// GetByWalletAddress returns the user stored under exactly this address.
func (s *MemoryStore) GetByWalletAddress(ctx context.Context, address string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[address]
	if !ok {
		return nil, core.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

// ActivateSubscription marks the user as subscribed until the given time.
func (s *MemoryStore) ActivateSubscription(ctx context.Context, userID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID == userID {
			now := time.Now()
			user.IsPro = true
			user.SubscriptionStarted = &now
			user.SubscriptionExpires = &until
			return nil
		}
	}
	return core.ErrUserNotFound
}

func paymentKey(userID, reference string) string {
	return userID + ":" + reference
}

// Create stores a payment record.
func (s *MemoryStore) Create(ctx context.Context, payment *core.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *payment
	s.payments[paymentKey(payment.UserID, payment.Reference)] = &copied
	return nil
}

// GetByReference returns the payment owned by userID with the given reference.
func (s *MemoryStore) GetByReference(ctx context.Context, userID, reference string) (*core.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[paymentKey(userID, reference)]
	if !ok {
		return nil, core.ErrPaymentNotFound
	}

	copied := *payment
	return &copied, nil
}

// SetStatus updates the status of a stored payment.
func (s *MemoryStore) SetStatus(ctx context.Context, userID, reference string, status core.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[paymentKey(userID, reference)]
	if !ok {
		return core.ErrPaymentNotFound
	}
	payment.Status = status
	return nil
}

// MemoryNonceStore is an in-memory single-use nonce store for tests.
type MemoryNonceStore struct {
	mu     sync.Mutex
	nonces map[string]nonceEntry
}

type nonceEntry struct {
	nonce     string
	expiresAt time.Time
}

// NewMemoryNonceStore creates a new in-memory nonce store.
func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{nonces: make(map[string]nonceEntry)}
}

// Put stores a nonce under the challenge id.
func (s *MemoryNonceStore) Put(ctx context.Context, id, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nonces[id] = nonceEntry{nonce: nonce, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Take returns and deletes the nonce for id. A second Take with the same id
// fails, which is what makes challenges single-use.
func (s *MemoryNonceStore) Take(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.nonces[id]
	if !ok {
		return "", core.ErrNonceNotFound
	}
	delete(s.nonces, id)

	if time.Now().After(entry.expiresAt) {
		return "", core.ErrNonceNotFound
	}
	return entry.nonce, nil
}
