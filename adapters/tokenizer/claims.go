package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the profile fields embedded in
// a session credential. Address duplicates WalletAddress; it is the field
// structural validation checks.
type SessionClaims struct {
	jwt.RegisteredClaims
	Address        string `json:"address"`
	WalletAddress  string `json:"walletAddress"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	IsRegistered   bool   `json:"isRegistered"`
	IsSiweVerified bool   `json:"isSiweVerified"`
	IsVerified     bool   `json:"isVerified"`
}
