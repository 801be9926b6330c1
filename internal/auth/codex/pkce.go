package codex

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/oauth2"
)

const (
	verifierBytes = 64
	stateBytes    = 32
)

// NewVerifier returns a fresh PKCE code verifier (64 random bytes, base64url).
func NewVerifier() string {
	return randomURLSafe(verifierBytes)
}

// ChallengeFor derives the S256 challenge for a verifier.
func ChallengeFor(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// NewState returns an unguessable state token (32 random bytes, base64url).
func NewState() string {
	return randomURLSafe(stateBytes)
}

func randomURLSafe(n int) string {
	b := make([]byte, n)
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
