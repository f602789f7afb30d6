package tokenizer

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/ports"
)

// ErrEmptySecret is returned by the constructor when no signing secret is
// configured. This is a startup condition, never a per-request one.
var ErrEmptySecret = errors.New("signing secret must not be empty")

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs under a
// shared secret. The secret is injected here rather than read from ambient
// process state.
type JWTTokenizer struct {
	secret []byte
}

// NewJWTTokenizer creates a new JWT tokenizer.
func NewJWTTokenizer(secret []byte) (ports.Tokenizer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &JWTTokenizer{secret: secret}, nil
}

// SessionToToken converts a Session to a signed JWT string.
func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Subject,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		},
		Address:        session.WalletAddress,
		WalletAddress:  session.WalletAddress,
		Name:           session.Name,
		Email:          session.Email,
		IsRegistered:   session.IsRegistered,
		IsSiweVerified: session.IsSiweVerified,
		IsVerified:     session.IsVerified,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// TokenToSession verifies a JWT string and returns the embedded session.
// Signature, expiry and structural failures all collapse into
// core.ErrInvalidCredential so callers cannot tell why verification failed.
func (j *JWTTokenizer) TokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Pin the algorithm to HMAC; reject anything else outright.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, core.ErrInvalidCredential
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrInvalidCredential
	}

	// A credential without a wallet address is rejected regardless of
	// signature validity.
	if claims.Address == "" {
		return nil, core.ErrInvalidCredential
	}

	session := &core.Session{
		Subject:        claims.Subject,
		WalletAddress:  claims.Address,
		Name:           claims.Name,
		Email:          claims.Email,
		IsRegistered:   claims.IsRegistered,
		IsSiweVerified: claims.IsSiweVerified,
		IsVerified:     claims.IsVerified,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session, nil
}
