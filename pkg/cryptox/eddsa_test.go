package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func parseEd25519(t *testing.T, pemBytes []byte) ed25519.PrivateKey {
	t.Helper()

	block, rest := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Empty(t, rest)
	require.Equal(t, "PRIVATE KEY", block.Type)

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)

	key, ok := parsed.(ed25519.PrivateKey)
	require.True(t, ok, "got %T", parsed)
	return key
}

func TestGenerateEd25519KeySignsAndVerifies(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	key := parseEd25519(t, pemBytes)
	require.Len(t, key, ed25519.PrivateKeySize)

	msg := []byte("session claims")
	sig := ed25519.Sign(key, msg)
	require.True(t, ed25519.Verify(key.Public().(ed25519.PublicKey), msg, sig))
}

func TestGenerateEd25519KeyIsFresh(t *testing.T) {
	a, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	b, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	require.NotEqual(t, parseEd25519(t, a), parseEd25519(t, b))
}
