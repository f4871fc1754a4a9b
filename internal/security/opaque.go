package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// opaqueTokenBytes is the entropy of refresh credentials and single-use tokens.
// 32 bytes (256 bits) hex-encodes to a 64-character value.
const opaqueTokenBytes = 32

// NewOpaqueToken returns a cryptographically random hex-encoded secret for
// refresh credentials and password-reset / verification tokens.
func NewOpaqueToken() (string, error) {
	b := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// TokenEqual performs constant-time comparison of two opaque token values.
func TokenEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
