package codex

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// OAuth client parameters used by the Codex CLI. The provider only accepts
// this client id together with the fixed localhost redirect below.
const (
	ClientID     = "app_EMoamEEZ73f0CkXaXp7hrann"
	Issuer       = "https://auth.openai.com"
	Originator   = "codex_cli_rs"
	RedirectURI  = "http://localhost:1455/auth/callback"
	CallbackPath = "/auth/callback"
	// CallbackAddr is where the local listener binds. The redirect uses
	// "localhost" which resolves here.
	CallbackAddr = "127.0.0.1:1455"

	// ExchangeTimeout bounds the code-for-token request.
	ExchangeTimeout = 45 * time.Second
)

// Scopes requested for every login.
var Scopes = []string{"openid", "profile", "email", "offline_access"}

// Client builds authorize URLs and exchanges codes against one issuer.
type Client struct {
	config *oauth2.Config
}

// DefaultClient talks to the production issuer.
var DefaultClient = NewClient(Issuer)

// NewClient returns a client for the given issuer. It panics if the issuer
// is not an absolute URL.
func NewClient(issuer string) *Client {
	return &Client{config: GetOAuthConfig(issuer)}
}

// GetOAuthConfig returns the OAuth2 config for Codex authentication.
func GetOAuthConfig(issuer string) *oauth2.Config {
	u, err := url.Parse(issuer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		panic(fmt.Sprintf("codex: invalid issuer %q", issuer))
	}
	base := strings.TrimRight(issuer, "/")

	return &oauth2.Config{
		ClientID:    ClientID,
		RedirectURL: RedirectURI,
		Scopes:      Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/oauth/authorize",
			TokenURL:  base + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizationURL returns the browser URL that starts a login bound to state.
func (c *Client) AuthorizationURL(state, challenge string) string {
	return c.config.AuthCodeURL(state,
		oauth2.S256ChallengeOption(challenge),
		oauth2.SetAuthURLParam("id_token_add_organizations", "true"),
		oauth2.SetAuthURLParam("codex_cli_simplified_flow", "true"),
		oauth2.SetAuthURLParam("originator", Originator),
	)
}
