package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/internal/eth"
	"github.com/compass-app/gatekeeper/ports"
)

// DefaultChallengeTTL is how long an issued nonce stays valid.
const DefaultChallengeTTL = time.Hour

// Statement is what a client submits after signing: the original nonce, the
// claimed wallet address, and the wallet's signature over the signing message.
type Statement struct {
	Address   string
	Nonce     string
	Signature string
}

// HandshakeService issues sign-in challenges and verifies signed statements.
// A rejected handshake consumes the challenge; the client must start over
// with a fresh nonce.
type HandshakeService struct {
	nonces       ports.NonceStore
	challengeTTL time.Duration
}

// NewHandshakeService creates a new handshake service.
func NewHandshakeService(nonces ports.NonceStore) *HandshakeService {
	return &HandshakeService{
		nonces:       nonces,
		challengeTTL: DefaultChallengeTTL,
	}
}

// CreateChallenge generates a new sign-in challenge and stores its nonce for
// single-use consumption.
func (s *HandshakeService) CreateChallenge(ctx context.Context) (*core.Challenge, error) {
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		Nonce:     hex.EncodeToString(nonceBytes),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if err := s.nonces.Put(ctx, challenge.ID, challenge.Nonce, s.challengeTTL); err != nil {
		return nil, fmt.Errorf("failed to store nonce: %w", err)
	}

	return challenge, nil
}

// Verify checks a signed statement against the challenge it was issued for
// and returns the normalized (lower-cased) wallet address on success.
// Failures map to core.ErrMalformedStatement, core.ErrNonceMismatch or
// core.ErrInvalidSignature.
func (s *HandshakeService) Verify(ctx context.Context, challengeID string, stmt Statement) (string, error) {
	if stmt.Address == "" || stmt.Nonce == "" || stmt.Signature == "" {
		return "", core.ErrMalformedStatement
	}
	if !common.IsHexAddress(stmt.Address) {
		return "", core.ErrMalformedStatement
	}
	signature, err := hexutil.Decode(stmt.Signature)
	if err != nil {
		return "", fmt.Errorf("%w: undecodable signature", core.ErrMalformedStatement)
	}

	// Consuming the nonce before signature checking makes the challenge
	// single-use in both directions: a failed attempt cannot be retried.
	issued, err := s.nonces.Take(ctx, challengeID)
	if err != nil {
		return "", core.ErrNonceMismatch
	}
	if issued != stmt.Nonce {
		return "", core.ErrNonceMismatch
	}

	verified, err := eth.VerifySignature(eth.SigningMessage(stmt.Nonce), signature, common.HexToAddress(stmt.Address))
	if err != nil || !verified {
		return "", core.ErrInvalidSignature
	}

	return strings.ToLower(common.HexToAddress(stmt.Address).Hex()), nil
}
