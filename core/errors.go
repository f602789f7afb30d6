package core

import "errors"

var (
	// ErrNoCredential is returned when a request carries no session credential.
	ErrNoCredential = errors.New("no session credential")

	// ErrInvalidCredential is returned for any credential that fails
	// verification. Signature, expiry and structural failures are deliberately
	// not distinguished.
	ErrInvalidCredential = errors.New("invalid session credential")

	// ErrInvalidSignature is returned when a handshake signature does not
	// recover to the claimed wallet address.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrNonceMismatch is returned when the nonce inside a signed statement
	// does not match the one issued for the attempt, or the challenge was
	// already consumed.
	ErrNonceMismatch = errors.New("nonce mismatch")

	// ErrMalformedStatement is returned when a handshake statement is missing
	// fields or carries undecodable values.
	ErrMalformedStatement = errors.New("malformed statement")

	// ErrNonceNotFound is returned by a nonce store when no nonce exists for
	// the given challenge id.
	ErrNonceNotFound = errors.New("nonce not found")

	// ErrUserNotFound is returned when no user record exists for an address.
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreFailure is returned when the user store keeps failing after the
	// retry budget is exhausted.
	ErrStoreFailure = errors.New("store operation failed")

	// ErrPaymentNotFound is returned when no payment record matches the
	// caller's reference.
	ErrPaymentNotFound = errors.New("payment not found")
)
