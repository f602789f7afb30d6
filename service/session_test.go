package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass-app/gatekeeper/adapters/store"
	"github.com/compass-app/gatekeeper/adapters/tokenizer"
	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/ports"
)

func newSessionFixture(t *testing.T) (*SessionService, *store.MemoryStore, ports.Tokenizer) {
	t.Helper()

	tk, err := tokenizer.NewJWTTokenizer([]byte("session-test-secret"))
	require.NoError(t, err)

	mem := store.NewMemoryStore()
	resolver := NewResolver(mem)
	resolver.retryDelay = time.Millisecond

	return NewSessionService(tk, resolver, nil), mem, tk
}

func TestCreateSession_RegisteredUser(t *testing.T) {
	svc, mem, _ := newSessionFixture(t)
	mem.AddUser(&core.User{
		ID:            "rec_alice",
		UserID:        "42",
		UserUUID:      "uuid-alice",
		WalletAddress: "0xabc123",
		Name:          "Alice",
		Email:         "alice@example.com",
		Verified:      true,
	})

	token, state, err := svc.CreateSession(context.Background(), "0xAbC123", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.True(t, state.Authenticated)
	assert.True(t, state.Registered)
	assert.False(t, state.NeedsRegistration)
	assert.True(t, state.Verified)
	assert.True(t, state.SiweVerified)
	assert.Equal(t, "0xabc123", state.Address)
	assert.Equal(t, "42", state.UserID)
}

func TestCreateSession_TemporaryUser(t *testing.T) {
	svc, mem, _ := newSessionFixture(t)
	mem.AddUser(&core.User{
		ID:            "rec_temp",
		WalletAddress: "0xdef456",
		Name:          core.TemporaryName,
	})

	_, state, err := svc.CreateSession(context.Background(), "0xdef456", true)
	require.NoError(t, err)

	assert.False(t, state.Registered)
	assert.True(t, state.NeedsRegistration)
}

func TestCreateSession_UnknownUser(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, state, err := svc.CreateSession(context.Background(), "0xnobody", false)
	assert.ErrorIs(t, err, core.ErrUserNotFound)

	// The failure shape still carries every flag, all false.
	assert.False(t, state.Authenticated)
	assert.False(t, state.Registered)
	assert.False(t, state.Verified)
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	svc, mem, _ := newSessionFixture(t)
	mem.AddUser(&core.User{
		ID:            "rec_alice",
		WalletAddress: "0xabc123",
		Name:          "Alice",
	})

	token, _, err := svc.CreateSession(context.Background(), "0xabc123", true)
	require.NoError(t, err)

	state, err := svc.Authenticate(context.Background(), token, true)
	require.NoError(t, err)
	assert.True(t, state.Authenticated)
	assert.True(t, state.Registered)
	assert.Equal(t, "0xabc123", state.Address)
}

func TestAuthenticate_ReflectsLiveData(t *testing.T) {
	// Flags come from the store at verification time, not from the claims
	// embedded when the credential was minted.
	svc, mem, _ := newSessionFixture(t)
	user := &core.User{
		ID:            "rec_temp",
		WalletAddress: "0xdef456",
		Name:          core.TemporaryName,
	}
	mem.AddUser(user)

	token, state, err := svc.CreateSession(context.Background(), "0xdef456", true)
	require.NoError(t, err)
	assert.True(t, state.NeedsRegistration)

	user.Name = "Dana"
	mem.AddUser(user)

	state, err = svc.Authenticate(context.Background(), token, true)
	require.NoError(t, err)
	assert.True(t, state.Registered)
	assert.False(t, state.NeedsRegistration)
}

func TestAuthenticate_NoCredential(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	state, err := svc.Authenticate(context.Background(), "", false)
	assert.ErrorIs(t, err, core.ErrNoCredential)
	assert.False(t, state.Authenticated)
	assert.False(t, state.Registered)
	assert.False(t, state.Verified)
	assert.False(t, state.SiweVerified)
}

func TestAuthenticate_GarbageCredential(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	state, err := svc.Authenticate(context.Background(), "not.a.token", false)
	assert.ErrorIs(t, err, core.ErrInvalidCredential)
	assert.False(t, state.Authenticated)
}

func TestAuthenticate_UserGone(t *testing.T) {
	svc, _, tk := newSessionFixture(t)

	now := time.Now()
	token, err := tk.SessionToToken(&core.Session{
		Subject:       "rec_ghost",
		WalletAddress: "0xghost",
		IssuedAt:      now,
		ExpiresAt:     now.Add(time.Hour),
	})
	require.NoError(t, err)

	state, err := svc.Authenticate(context.Background(), token, false)
	assert.ErrorIs(t, err, core.ErrUserNotFound)
	assert.False(t, state.Authenticated)

	// The requested address survives for diagnostics.
	assert.Equal(t, "0xghost", state.Address)
}
