package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/ports"
)

const (
	// DefaultResolveRetries is how many extra lookup rounds are made after
	// the first one comes up empty or fails.
	DefaultResolveRetries = 2

	// DefaultResolveDelay is the pause between lookup rounds. The retries
	// exist to absorb eventual-consistency lag after a just-created record,
	// not to wait out a permanent absence.
	DefaultResolveDelay = 500 * time.Millisecond
)

// Resolver maps a wallet address to a user record, tolerating inconsistently
// cased stored addresses and transient store errors.
type Resolver struct {
	users      ports.UserStore
	maxRetries int
	retryDelay time.Duration
}

// NewResolver creates a resolver with the default retry policy.
func NewResolver(users ports.UserStore) *Resolver {
	return &Resolver{
		users:      users,
		maxRetries: DefaultResolveRetries,
		retryDelay: DefaultResolveDelay,
	}
}

// Resolve looks the address up exactly as given, then lower-cased, retrying
// the whole round up to the configured bound. The returned error is
// core.ErrUserNotFound when every round came up empty without a store error,
// or wraps core.ErrStoreFailure when the store kept failing; both carry the
// requested address.
func (r *Resolver) Resolve(ctx context.Context, address string) (*core.User, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		user, err := r.users.GetByWalletAddress(ctx, address)
		if err == nil {
			return user, nil
		}

		if errors.Is(err, core.ErrUserNotFound) {
			user, err = r.users.GetByWalletAddress(ctx, strings.ToLower(address))
			if err == nil {
				return user, nil
			}
			if !errors.Is(err, core.ErrUserNotFound) {
				lastErr = err
			}
		} else {
			lastErr = err
		}

		if attempt < r.maxRetries {
			log.Printf("user %s not resolved, retrying (attempt %d/%d)", address, attempt+1, r.maxRetries)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("resolve %s: %w", address, ctx.Err())
			case <-time.After(r.retryDelay):
			}
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("resolve %s: %w: %v", address, core.ErrStoreFailure, lastErr)
	}
	return nil, fmt.Errorf("resolve %s: %w", address, core.ErrUserNotFound)
}
