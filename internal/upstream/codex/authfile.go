package codex

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pysugar/codex-accounts/internal/models"
)

// AuthJSON represents the structure of ~/.codex/auth.json
type AuthJSON struct {
	OpenAIAPIKey *string    `json:"OPENAI_API_KEY"`
	Tokens       *TokenData `json:"tokens"`
	LastRefresh  string     `json:"last_refresh"`
}

// TokenData contains the OAuth tokens
type TokenData struct {
	IDToken      string  `json:"id_token"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	AccountID    *string `json:"account_id"`
}

// DefaultAuthPath returns ~/.codex/auth.json.
func DefaultAuthPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("Cannot determine user home directory: %w", err)
	}
	return filepath.Join(home, ".codex", "auth.json"), nil
}

// WriteAuthFile makes the given account the one the Codex CLI and IDE
// extensions pick up. An empty path means DefaultAuthPath.
func WriteAuthFile(path string, tokens models.Tokens, accountID *string) error {
	if path == "" {
		p, err := DefaultAuthPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("Failed to create .codex directory: %w", err)
	}

	auth := AuthJSON{
		Tokens: &TokenData{
			IDToken:      tokens.IDToken,
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			AccountID:    accountID,
		},
		LastRefresh: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return fmt.Errorf("Failed to serialize auth.json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("Failed to write auth.json: %w", err)
	}

	log.Printf("✅ [Auth] Wrote %s", path)
	return nil
}

// ReadAuthFile loads an auth.json written by WriteAuthFile or the Codex CLI.
func ReadAuthFile(path string) (*AuthJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth.json: %w", err)
	}
	var auth AuthJSON
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("failed to parse auth.json: %w", err)
	}
	return &auth, nil
}
