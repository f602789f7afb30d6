package eth

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	message := SigningMessage("deadbeef")
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	ok, err := VerifySignature(message, sig, address)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifySignature_WalletVOffset(t *testing.T) {
	// Wallets report V as 27/28; recovery expects 0/1.
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)

	message := SigningMessage("deadbeef")
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	ok, err := VerifySignature(message, sig, address)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifySignature_WrongAddress(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	message := SigningMessage("deadbeef")
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	ok, err := VerifySignature(message, sig, crypto.PubkeyToAddress(otherKey.PublicKey))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySignature_BadLength(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = VerifySignature("msg", []byte{0x01, 0x02}, crypto.PubkeyToAddress(key.PublicKey))
	assert.Error(t, err)
}
