package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pysugar/codex-accounts/internal/models"
	upcodex "github.com/pysugar/codex-accounts/internal/upstream/codex"
)

// Credential is a Codex login found on disk.
type Credential struct {
	Source    string        `json:"source"`
	Path      string        `json:"path"`
	Email     *string       `json:"email"`
	AccountID *string       `json:"accountId"`
	PlanType  *string       `json:"planType"`
	ExpiresAt *int64        `json:"expiresAt"` // id token exp, unix seconds
	Tokens    models.Tokens `json:"tokens"`    // masked in API responses
}

// Source defines a configuration source to scan
type Source struct {
	Name        string
	Description string
	ConfigPaths []string // ~ and $VARS are expanded, globs allowed
	Parser      func(path string) (*Credential, error)
}

// expandPath expands ~ and environment variables. It returns "" when a
// referenced variable is unset.
func expandPath(path string) string {
	missing := false
	path = os.Expand(path, func(name string) string {
		v := os.Getenv(name)
		if v == "" {
			missing = true
		}
		return v
	})
	if missing {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Sources defines all known credential sources
var Sources = []Source{
	{
		Name:        "codex-home",
		Description: "Codex CLI ($CODEX_HOME)",
		ConfigPaths: []string{"${CODEX_HOME}/auth.json"},
		Parser:      ParseAuthFile,
	},
	{
		Name:        "codex-cli",
		Description: "Codex CLI and editor extensions",
		ConfigPaths: []string{"~/.codex/auth.json"},
		Parser:      ParseAuthFile,
	},
}

// ParseAuthFile reads a Codex auth.json. Identity comes from the id token;
// the file's account_id is used when the token carries none.
func ParseAuthFile(path string) (*Credential, error) {
	auth, err := upcodex.ReadAuthFile(path)
	if err != nil {
		return nil, err
	}
	if auth.Tokens == nil || auth.Tokens.AccessToken == "" {
		return nil, errors.New("auth.json holds no OAuth tokens")
	}

	accountID := upcodex.ExtractAccountID(auth.Tokens.IDToken)
	if accountID == nil {
		accountID = auth.Tokens.AccountID
	}
	cred := &Credential{
		Source:    "codex-cli",
		Path:      path,
		Email:     upcodex.ExtractEmail(auth.Tokens.IDToken),
		AccountID: accountID,
		Tokens: models.Tokens{
			IDToken:      auth.Tokens.IDToken,
			AccessToken:  auth.Tokens.AccessToken,
			RefreshToken: auth.Tokens.RefreshToken,
		},
	}
	if claims, err := upcodex.ParseJWT(auth.Tokens.IDToken); err == nil {
		cred.PlanType = models.StringPtr(claims.AuthInfo.ChatgptPlanType)
		if claims.Exp > 0 {
			exp := claims.Exp
			cred.ExpiresAt = &exp
		}
	}
	return cred, nil
}
