package core

import "time"

// Challenge represents a wallet sign-in challenge. The nonce is stored
// server-side keyed by ID and consumed exactly once during verification.
type Challenge struct {
	ID        string    // identifier handed to the client in a cookie
	Nonce     string    // random value the wallet must sign
	IssuedAt  time.Time // when the challenge was created
	ExpiresAt time.Time // when the challenge expires
}

// Session is the claim set carried by a session credential.
type Session struct {
	Subject        string // user store record id
	WalletAddress  string // canonical wallet address
	Name           string
	Email          string
	IsRegistered   bool
	IsSiweVerified bool
	IsVerified     bool
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// SessionState is the unified response produced by every authentication
// path. All flags are present and default to false on failure so callers
// always see the full shape.
type SessionState struct {
	Authenticated     bool
	Registered        bool
	Verified          bool
	SiweVerified      bool
	NeedsRegistration bool
	Address           string
	UserID            string
	UserUUID          string
	User              *User
}
