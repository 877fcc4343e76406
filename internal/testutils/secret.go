package testutils

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewSecret returns a random 16 byte secret, as used to sign session tokens
// and csrf tokens.
func NewSecret(t *testing.T) []byte {
	t.Helper()

	secret := make([]byte, 16)
	_, err := rand.Read(secret)
	require.NoError(t, err)
	return secret
}
