package codex

import (
	"net/url"
	"testing"
)

func TestAuthorizationURL(t *testing.T) {
	raw := DefaultClient.AuthorizationURL("st4te", "ch4llenge")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Scheme != "https" || u.Host != "auth.openai.com" || u.Path != "/oauth/authorize" {
		t.Fatalf("unexpected endpoint %s", raw)
	}

	want := map[string]string{
		"response_type":              "code",
		"client_id":                  ClientID,
		"redirect_uri":               RedirectURI,
		"scope":                      "openid profile email offline_access",
		"state":                      "st4te",
		"code_challenge":             "ch4llenge",
		"code_challenge_method":      "S256",
		"id_token_add_organizations": "true",
		"codex_cli_simplified_flow":  "true",
		"originator":                 "codex_cli_rs",
	}
	q := u.Query()
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestNewClient_InvalidIssuerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for relative issuer")
		}
	}()
	NewClient("not a url")
}
