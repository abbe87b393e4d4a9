// internal/utils/crypto_test.go
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveEscrowSubaccountDeterministic(t *testing.T) {
	id := uuid.New().String()

	first := DeriveEscrowSubaccount(id)
	second := DeriveEscrowSubaccount(id)

	assert.Equal(t, first, second)
}

func TestDeriveEscrowSubaccountLayout(t *testing.T) {
	id := "4f5e9a40-9c30-4dfe-8f3e-2f9a1c0d7b61"
	sub := DeriveEscrowSubaccount(id)

	// High 4 bytes are zero padding.
	assert.Equal(t, [4]byte{}, [4]byte(sub[:4]))

	// Low 28 bytes carry the SHA-224 digest of the ID string.
	digest := sha256.Sum224([]byte(id))
	assert.Equal(t, digest[:], sub[4:])
}

func TestDeriveEscrowSubaccountDistinct(t *testing.T) {
	seen := make(map[[SubaccountSize]byte]bool)
	for i := 0; i < 100; i++ {
		sub := DeriveEscrowSubaccount(uuid.New().String())
		assert.False(t, seen[sub])
		seen[sub] = true
	}
}

func TestEscrowSubaccountHex(t *testing.T) {
	id := uuid.New().String()
	encoded := EscrowSubaccountHex(id)

	require.Len(t, encoded, 64)

	decoded, err := hex.DecodeString(encoded)
	require.NoError(t, err)

	sub := DeriveEscrowSubaccount(id)
	assert.Equal(t, sub[:], decoded)
}
