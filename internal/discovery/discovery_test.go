package discovery

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/pysugar/codex-accounts/internal/models"
	upcodex "github.com/pysugar/codex-accounts/internal/upstream/codex"
)

func idToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." + enc.EncodeToString([]byte(payload)) + ".x"
}

func writeAuth(t *testing.T, path string, tokens models.Tokens, accountID *string) {
	t.Helper()
	if err := upcodex.WriteAuthFile(path, tokens, accountID); err != nil {
		t.Fatalf("WriteAuthFile: %v", err)
	}
}

func TestParseAuthFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	fileAccount := "from-file"
	writeAuth(t, path, models.Tokens{
		IDToken:     idToken(`{"email":"me@x.com","exp":1900000000,"https://api.openai.com/auth":{"chatgpt_account_id":"from-token","chatgpt_plan_type":"pro"}}`),
		AccessToken: "access-token-value",
	}, &fileAccount)

	cred, err := ParseAuthFile(path)
	if err != nil {
		t.Fatalf("ParseAuthFile: %v", err)
	}
	if *cred.Email != "me@x.com" || *cred.AccountID != "from-token" || cred.Tokens.AccessToken != "access-token-value" {
		t.Fatalf("cred = %+v", cred)
	}
	if cred.PlanType == nil || *cred.PlanType != "pro" || cred.ExpiresAt == nil || *cred.ExpiresAt != 1900000000 {
		t.Fatalf("plan/expiry = %v %v", cred.PlanType, cred.ExpiresAt)
	}
}

func TestParseAuthFile_FallsBackToFileAccountID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	fileAccount := "from-file"
	writeAuth(t, path, models.Tokens{IDToken: "not-a-jwt", AccessToken: "a"}, &fileAccount)

	cred, err := ParseAuthFile(path)
	if err != nil {
		t.Fatalf("ParseAuthFile: %v", err)
	}
	if cred.Email != nil || cred.AccountID == nil || *cred.AccountID != "from-file" || cred.PlanType != nil {
		t.Fatalf("cred = %+v", cred)
	}
}

func TestParseAuthFile_APIKeyOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	if err := os.WriteFile(path, []byte(`{"OPENAI_API_KEY":"sk-123","tokens":null}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAuthFile(path); err == nil {
		t.Fatal("expected an error for a file without tokens")
	}
}

func TestScan_DedupesAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good", "auth.json")
	writeAuth(t, good, models.Tokens{AccessToken: "a"}, nil)
	bad := filepath.Join(dir, "bad", "auth.json")
	if err := os.MkdirAll(filepath.Dir(bad), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CODEX_TEST_HOME", filepath.Join(dir, "good"))

	result := scan([]Source{
		{Name: "env", ConfigPaths: []string{"${CODEX_TEST_HOME}/auth.json", "${CODEX_UNSET_VAR}/auth.json"}, Parser: ParseAuthFile},
		{Name: "glob", ConfigPaths: []string{filepath.Join(dir, "*", "auth.json")}, Parser: ParseAuthFile},
	})

	if len(result.Credentials) != 1 || result.Credentials[0].Source != "env" {
		t.Fatalf("credentials = %+v", result.Credentials)
	}
	if len(result.Errors) != 1 || result.Errors[0].Path != bad {
		t.Fatalf("errors = %+v", result.Errors)
	}
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken("short"); got != "***" {
		t.Errorf("MaskToken(short) = %q", got)
	}
	if got := MaskToken("abcdefghijkl"); got != "abcd...ijkl" {
		t.Errorf("MaskToken = %q", got)
	}
	masked := MaskCredential(Credential{Tokens: models.Tokens{AccessToken: "abcdefghijkl"}})
	if masked.Tokens.AccessToken != "abcd...ijkl" || masked.Tokens.RefreshToken != "***" {
		t.Errorf("MaskCredential = %+v", masked.Tokens)
	}
}
