package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const opaqueTokenBytes = 32

// NewOpaqueToken generates a high-entropy token for password-reset and
// email-verification flows. It returns the raw token (handed to the account
// holder exactly once, never persisted) and its SHA-256 digest, which is what
// the account document stores for later match-comparison.
func NewOpaqueToken() (raw string, digest string, err error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = hex.EncodeToString(buf)
	return raw, DigestOpaqueToken(raw), nil
}

// DigestOpaqueToken computes the storage digest for a raw opaque token.
// This is a fast content hash, not the slow password hash: opaque tokens
// already carry 256 bits of entropy, so key stretching buys nothing.
func DigestOpaqueToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
