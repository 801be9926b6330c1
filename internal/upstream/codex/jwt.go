package codex

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// authClaimPath is the gjson path of the provider-specific claim object.
// Dots in the claim name are escaped.
const authClaimPath = `https://api\.openai\.com/auth`

// JWTClaims represents the claims section of a Codex ID token
type JWTClaims struct {
	Subject  string        `json:"sub"`
	Email    string        `json:"email"`
	Exp      int64         `json:"exp"`
	Iat      int64         `json:"iat"`
	AuthInfo CodexAuthInfo `json:"https://api.openai.com/auth"`
}

// CodexAuthInfo contains ChatGPT account details from JWT claims
type CodexAuthInfo struct {
	ChatgptAccountID string `json:"chatgpt_account_id"`
	AccountID        string `json:"account_id"`
	ChatgptPlanType  string `json:"chatgpt_plan_type"` // plus, pro, team
	ChatgptUserID    string `json:"chatgpt_user_id"`
}

// ParseJWT parses a JWT token string and extracts its claims
// Note: This does NOT verify the signature, only extracts the payload
func ParseJWT(token string) (*JWTClaims, error) {
	data, err := decodePayload(token)
	if err != nil {
		return nil, err
	}

	var claims JWTClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse JWT claims: %w", err)
	}
	return &claims, nil
}

// ExtractAccountID returns the ChatGPT account id from an ID token. It prefers
// chatgpt_account_id, then account_id inside the auth claim, then the
// standard subject. Returns nil when none is present or the token is malformed.
func ExtractAccountID(idToken string) *string {
	data, err := decodePayload(idToken)
	if err != nil || !gjson.ValidBytes(data) {
		return nil
	}

	auth := gjson.GetBytes(data, authClaimPath)
	if auth.IsObject() {
		for _, key := range []string{"chatgpt_account_id", "account_id"} {
			if v := auth.Get(key); v.Type == gjson.String {
				s := v.String()
				return &s
			}
		}
	}
	if sub := gjson.GetBytes(data, "sub"); sub.Type == gjson.String {
		s := sub.String()
		return &s
	}
	return nil
}

// ExtractEmail returns the top-level email claim, or nil.
func ExtractEmail(idToken string) *string {
	data, err := decodePayload(idToken)
	if err != nil || !gjson.ValidBytes(data) {
		return nil
	}
	if v := gjson.GetBytes(data, "email"); v.Type == gjson.String {
		s := v.String()
		return &s
	}
	return nil
}

func decodePayload(token string) ([]byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid JWT format: expected 3 parts, got %d", len(parts))
	}

	// Decode the payload (second part)
	payload := strings.TrimRight(parts[1], "=")
	// Add padding if needed
	switch len(payload) % 4 {
	case 2:
		payload += "=="
	case 3:
		payload += "="
	}

	data, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT payload: %w", err)
	}
	return data, nil
}
