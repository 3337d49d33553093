package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

const verificationTokenBytes = 32

// NewVerificationToken returns the raw token that goes into the emailed link
// and the SHA-256 hex digest that is stored. The raw value is never persisted.
func NewVerificationToken() (raw, hash string, err error) {
	b := make([]byte, verificationTokenBytes)
	if _, err = io.ReadFull(rand.Reader, b); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	raw = hex.EncodeToString(b)
	return raw, HashVerificationToken(raw), nil
}

func HashVerificationToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
