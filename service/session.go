package service

import (
	"context"
	"log"
	"time"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/ports"
)

// DefaultSessionTTL is the credential lifetime. The session cookie lifetime
// matches it.
const DefaultSessionTTL = 24 * time.Hour

// SessionService mints session credentials after a successful handshake and
// verifies them on each request.
type SessionService struct {
	tokenizer  ports.Tokenizer
	resolver   *Resolver
	eventPub   ports.EventPublisher
	sessionTTL time.Duration
}

// NewSessionService creates a new session service.
func NewSessionService(tokenizer ports.Tokenizer, resolver *Resolver, eventPub ports.EventPublisher) *SessionService {
	return &SessionService{
		tokenizer:  tokenizer,
		resolver:   resolver,
		eventPub:   eventPub,
		sessionTTL: DefaultSessionTTL,
	}
}

// CreateSession resolves the wallet address to a user record and mints a
// signed credential embedding the user's profile and derived flags. The
// returned state carries everything the creation response needs.
func (s *SessionService) CreateSession(ctx context.Context, walletAddress string, isSiweVerified bool) (string, *core.SessionState, error) {
	user, err := s.resolver.Resolve(ctx, walletAddress)
	if err != nil {
		return "", emptyState(), err
	}

	isRegistered := user.Registered()
	now := time.Now()
	session := &core.Session{
		Subject:        user.ID,
		WalletAddress:  user.WalletAddress,
		Name:           user.Name,
		Email:          user.Email,
		IsRegistered:   isRegistered,
		IsSiweVerified: isSiweVerified,
		IsVerified:     user.Verified,
		IssuedAt:       now,
		ExpiresAt:      now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", emptyState(), err
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishSessionCreated(ctx, user.WalletAddress); err != nil {
			// The credential is already minted; a lost event must not fail
			// the sign-in.
			log.Printf("warning: failed to publish session event: %v", err)
		}
	}

	return token, stateForUser(user, isSiweVerified), nil
}

// Authenticate verifies a credential and re-resolves the user record so the
// returned flags reflect live data rather than the claims embedded at
// issuance. Every failure path still returns a fully-shaped state with all
// flags false.
func (s *SessionService) Authenticate(ctx context.Context, token string, siweVerified bool) (*core.SessionState, error) {
	if token == "" {
		return emptyState(), core.ErrNoCredential
	}

	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return emptyState(), core.ErrInvalidCredential
	}

	user, err := s.resolver.Resolve(ctx, session.WalletAddress)
	if err != nil {
		state := emptyState()
		state.Address = session.WalletAddress
		return state, err
	}

	return stateForUser(user, siweVerified), nil
}

func emptyState() *core.SessionState {
	return &core.SessionState{}
}

func stateForUser(user *core.User, siweVerified bool) *core.SessionState {
	isRegistered := user.Registered()
	return &core.SessionState{
		Authenticated:     true,
		Registered:        isRegistered,
		Verified:          user.Verified,
		SiweVerified:      siweVerified,
		NeedsRegistration: !isRegistered,
		Address:           user.WalletAddress,
		UserID:            user.UserID,
		UserUUID:          user.UserUUID,
		User:              user,
	}
}
