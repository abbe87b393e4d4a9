// internal/utils/crypto.go
package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SubaccountSize is the fixed width of an escrow sub-account.
const SubaccountSize = 32

// DeriveEscrowSubaccount maps a request ID to its deposit sub-account:
// the SHA-224 digest of the UTF-8 bytes in the low 28 bytes of a
// 32-byte buffer, high 4 bytes zero. Deterministic, no domain
// separation, so uniqueness holds only within this key space.
func DeriveEscrowSubaccount(requestID string) [SubaccountSize]byte {
	digest := sha256.Sum224([]byte(requestID))

	var sub [SubaccountSize]byte
	copy(sub[SubaccountSize-sha256.Size224:], digest[:])
	return sub
}

// EscrowSubaccountHex is the hex encoding handed to callers and stored
// on the escrow record.
func EscrowSubaccountHex(requestID string) string {
	sub := DeriveEscrowSubaccount(requestID)
	return hex.EncodeToString(sub[:])
}
