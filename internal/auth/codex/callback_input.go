package codex

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// CallbackParams is the code/state pair carried by a redirect.
type CallbackParams struct {
	Code  string
	State string
	// URL is the input normalized to a full callback URL.
	URL string
}

// ParseCallbackInput accepts what a user might paste from the browser:
// a full redirect URL, a "/auth/callback?..." path, or a bare query string.
func ParseCallbackInput(input string) (CallbackParams, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return CallbackParams{}, errors.New("Callback URL is empty")
	}

	var normalized string
	switch {
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		normalized = raw
	case strings.HasPrefix(raw, CallbackPath):
		normalized = "http://localhost:1455" + raw
	case strings.Contains(raw, "code=") && strings.Contains(raw, "state="):
		normalized = RedirectURI + "?" + strings.TrimLeft(raw, "?")
	default:
		return CallbackParams{}, errors.New("Invalid callback format. Paste full callback URL or query with code/state")
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return CallbackParams{}, fmt.Errorf("Invalid callback URL: %w", err)
	}
	q := u.Query()
	if !q.Has("code") {
		return CallbackParams{}, errors.New("Callback does not contain code")
	}
	if !q.Has("state") {
		return CallbackParams{}, errors.New("Callback does not contain state")
	}

	return CallbackParams{Code: q.Get("code"), State: q.Get("state"), URL: normalized}, nil
}
