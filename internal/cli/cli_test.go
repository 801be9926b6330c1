package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pysugar/codex-accounts/internal/app"
	"github.com/pysugar/codex-accounts/internal/ide"
	"github.com/pysugar/codex-accounts/internal/models"
	"github.com/pysugar/codex-accounts/internal/store"
	upcodex "github.com/pysugar/codex-accounts/internal/upstream/codex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "codex-accounts", root.Use)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "login", "accounts", "proxy", "ide", "state", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "codex-accounts")
	assert.Contains(t, out, GetVersionInfo().GoVersion)
}

func TestStatePath(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "state", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state.json"), strings.TrimSpace(out))
}

func TestStatePath_SQLite(t *testing.T) {
	t.Setenv("CODEX_ACCOUNTS_STORAGE", "sqlite")
	dir := t.TempDir()
	out, err := runCLI(t, dir, "state", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state.db"), strings.TrimSpace(out))
}

func TestStatePath_ConfigInDataDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage: sqlite\n"), 0o600))
	out, err := runCLI(t, dir, "state", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state.db"), strings.TrimSpace(out))
}

func TestAccountsListEmpty(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts")
}

func TestAccountsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "accounts", "activate", "missing")
	assert.EqualError(t, err, "Account not found")

	out, err := runCLI(t, dir, "accounts", "remove", "missing")
	assert.EqualError(t, err, "Account not found")
	assert.NotContains(t, out, "Removed")

	_, err = runCLI(t, dir, "accounts", "refresh")
	assert.Error(t, err)

	_, err = runCLI(t, dir, "accounts", "refresh", "x", "--all")
	assert.Error(t, err)
}

func TestAccountsCurrent(t *testing.T) {
	dir := t.TempDir()
	authPath := filepath.Join(dir, "codex", "auth.json")
	t.Setenv("CODEX_ACCOUNTS_AUTH_FILE", authPath)

	payload := `{"email":"me@x.com","exp":1900000000,"https://api.openai.com/auth":{"chatgpt_plan_type":"plus"}}`
	idToken := "h." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".s"
	tokens := models.Tokens{IDToken: idToken, AccessToken: "at", RefreshToken: "rt"}
	require.NoError(t, upcodex.WriteAuthFile(authPath, tokens, models.StringPtr("acc-1")))

	out, err := runCLI(t, dir, "accounts", "current")
	require.NoError(t, err)
	assert.Contains(t, out, "me@x.com")
	assert.Contains(t, out, "acc-1")
	assert.Contains(t, out, "plus")
	assert.Contains(t, out, time.Unix(1900000000, 0).Format(time.RFC3339))
	assert.Contains(t, out, "do not match any stored account")
}

func TestProxyCommands(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "proxy", "add", "bad")
	assert.EqualError(t, err, "Proxy must be in login:pass@ip:port format")

	out, err := runCLI(t, dir, "proxy", "add", "user:pw@10.1.2.3:8080")
	require.NoError(t, err)
	assert.Contains(t, out, "10.1.2.3:8080")

	p := store.Open(store.NewJSONFile(filepath.Join(dir, "state.json")))
	data, err := p.Snapshot()
	require.NoError(t, err)
	require.Len(t, data.Proxies, 1)
	id := data.Proxies[0].ID

	_, err = runCLI(t, dir, "proxy", "use", id)
	require.NoError(t, err)

	out, err = runCLI(t, dir, "proxy", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "10.1.2.3")

	out, err = runCLI(t, dir, "state", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "10.1.2.3:8080")

	_, err = runCLI(t, dir, "proxy", "edit", id, "u2:p2@10.9.9.9:3128")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "proxy", "use")
	assert.Error(t, err)
	_, err = runCLI(t, dir, "proxy", "use", "--none")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "proxy", "delete", id)
	require.NoError(t, err)

	out, err = runCLI(t, dir, "proxy", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No proxies")
}

func TestIDESet(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "ide", "set", "Cursor")
	require.NoError(t, err)
	assert.Contains(t, out, "cursor")

	_, err = runCLI(t, dir, "ide", "set", "vim")
	assert.EqualError(t, err, "Invalid IDE target")

	out, err = runCLI(t, dir, "ide", "set", "--none")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")
}

func TestRenderAccounts(t *testing.T) {
	used := 42.0
	reset := int64(1_000_000 + 3600)
	email := "a@b.c"
	plan := "pro"
	lastErr := "Quota request failed (500 Internal Server Error): boom"
	data := models.NewAppData()
	data.Accounts = []models.Account{{
		ID:    "acc-1",
		Email: &email,
		Quota: &models.QuotaInfo{
			PlanType: &plan,
			Primary:  models.QuotaWindow{UsedPercent: &used, ResetAt: &reset},
		},
		LastError: &lastErr,
	}}
	active := "acc-1"
	data.ActiveAccountID = &active

	var out bytes.Buffer
	renderAccounts(&out, data, time.Unix(1_000_000, 0))
	s := out.String()
	assert.Contains(t, s, "acc-1")
	assert.Contains(t, s, "a@b.c")
	assert.Contains(t, s, "pro")
	assert.Contains(t, s, "42% (reset in 1h0m0s)")
	assert.Contains(t, s, "boom")
}

func TestFormatHelpers(t *testing.T) {
	now := time.Unix(1000, 0)
	past := int64(10)
	assert.Equal(t, "-", formatReset(nil, now))
	assert.Equal(t, "now", formatReset(&past, now))
	assert.Equal(t, "-", formatPercent(nil))
	assert.Equal(t, "-", orDash(nil))
	empty := ""
	assert.Equal(t, "-", orDash(&empty))
}

func TestRunLogin_PastedMismatchEndsFlow(t *testing.T) {
	dir := t.TempDir()
	svc := app.New(app.Options{
		Store:        store.Open(store.NewJSONFile(filepath.Join(dir, "state.json"))),
		Reloader:     ide.NoopReloader{},
		AuthFile:     filepath.Join(dir, "auth.json"),
		CallbackAddr: "127.0.0.1:0",
	})
	defer svc.Listener().Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	in := strings.NewReader("\ncode=abc&state=not-the-right-one\n")
	err := runLogin(ctx, svc, in, &out, false)

	require.Error(t, err)
	assert.Equal(t, "State mismatch. Callback belongs to another session.", err.Error())
	assert.Contains(t, out.String(), "State mismatch. Ensure callback belongs to the current login session.")
	assert.Contains(t, out.String(), "code_challenge=")
}
