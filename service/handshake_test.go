package service

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass-app/gatekeeper/adapters/store"
	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/internal/eth"
)

func signNonce(t *testing.T, key *ecdsa.PrivateKey, nonce string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(eth.SigningMessage(nonce))), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

func newHandshakeFixture(t *testing.T) (*HandshakeService, *ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	return NewHandshakeService(store.NewMemoryNonceStore()), key, address
}

func TestHandshakeVerify(t *testing.T) {
	svc, key, address := newHandshakeFixture(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, challenge.Nonce)

	normalized, err := svc.Verify(ctx, challenge.ID, Statement{
		Address:   address,
		Nonce:     challenge.Nonce,
		Signature: signNonce(t, key, challenge.Nonce),
	})
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(address), normalized)
}

func TestHandshakeVerify_NonceBinding(t *testing.T) {
	svc, key, address := newHandshakeFixture(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)

	// Valid signature over a different nonce than the one issued for this
	// attempt must always be rejected as a nonce mismatch.
	_, err = svc.Verify(ctx, challenge.ID, Statement{
		Address:   address,
		Nonce:     "anothernonce",
		Signature: signNonce(t, key, "anothernonce"),
	})
	assert.ErrorIs(t, err, core.ErrNonceMismatch)
}

func TestHandshakeVerify_SingleUse(t *testing.T) {
	svc, key, address := newHandshakeFixture(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)

	stmt := Statement{
		Address:   address,
		Nonce:     challenge.Nonce,
		Signature: signNonce(t, key, challenge.Nonce),
	}

	_, err = svc.Verify(ctx, challenge.ID, stmt)
	require.NoError(t, err)

	// Replaying the same statement fails; the nonce was consumed.
	_, err = svc.Verify(ctx, challenge.ID, stmt)
	assert.ErrorIs(t, err, core.ErrNonceMismatch)
}

func TestHandshakeVerify_RejectedAttemptConsumesChallenge(t *testing.T) {
	svc, key, address := newHandshakeFixture(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)

	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = svc.Verify(ctx, challenge.ID, Statement{
		Address:   address,
		Nonce:     challenge.Nonce,
		Signature: signNonce(t, otherKey, challenge.Nonce),
	})
	assert.ErrorIs(t, err, core.ErrInvalidSignature)

	// A rejected handshake is terminal; the same nonce cannot be retried.
	_, err = svc.Verify(ctx, challenge.ID, Statement{
		Address:   address,
		Nonce:     challenge.Nonce,
		Signature: signNonce(t, key, challenge.Nonce),
	})
	assert.ErrorIs(t, err, core.ErrNonceMismatch)
}

func TestHandshakeVerify_Malformed(t *testing.T) {
	svc, key, address := newHandshakeFixture(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)

	cases := []struct {
		name string
		stmt Statement
	}{
		{"empty address", Statement{Nonce: challenge.Nonce, Signature: signNonce(t, key, challenge.Nonce)}},
		{"empty nonce", Statement{Address: address, Signature: signNonce(t, key, challenge.Nonce)}},
		{"empty signature", Statement{Address: address, Nonce: challenge.Nonce}},
		{"bad hex signature", Statement{Address: address, Nonce: challenge.Nonce, Signature: "not-hex"}},
		{"bad address", Statement{Address: "bogus", Nonce: challenge.Nonce, Signature: signNonce(t, key, challenge.Nonce)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Verify(ctx, challenge.ID, tc.stmt)
			assert.ErrorIs(t, err, core.ErrMalformedStatement)
		})
	}

	// Malformed statements never consume the challenge; a valid statement
	// still succeeds afterwards.
	_, err = svc.Verify(ctx, challenge.ID, Statement{
		Address:   address,
		Nonce:     challenge.Nonce,
		Signature: signNonce(t, key, challenge.Nonce),
	})
	assert.NoError(t, err)
}
