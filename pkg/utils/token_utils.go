package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// sessionTokenBytes gives 256 bits of entropy per guest session token.
const sessionTokenBytes = 32

// GenerateSessionToken returns a cryptographically random, hex-encoded
// token for anonymous guest sessions.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
