package eth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SigningMessage returns the statement a wallet is asked to sign for a
// sign-in nonce. The verifier recomputes this exact string, so any change
// here invalidates in-flight challenges.
func SigningMessage(nonce string) string {
	return fmt.Sprintf("Sign in to Compass\n\nNonce: %s", nonce)
}

// VerifySignature checks that signature is a valid EIP-191 personal-sign
// signature over message produced by the key behind expected. The signature
// must be 65 bytes; a V of 27/28 is normalized to 0/1 before recovery.
func VerifySignature(message string, signature []byte, expected common.Address) (bool, error) {
	if len(signature) != crypto.SignatureLength {
		return false, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(signature))
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(message))
	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return false, fmt.Errorf("failed to recover public key: %w", err)
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	return recovered == expected, nil
}
