package codex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pysugar/codex-accounts/internal/models"
	"github.com/pysugar/codex-accounts/internal/util"
	"github.com/tidwall/gjson"
)

const (
	// QuotaTimeout bounds one usage request.
	QuotaTimeout = 30 * time.Second
	// UserAgent is sent on every backend call.
	UserAgent = "codex-cli"
)

// UsageEndpoint resolves the usage URL for a limits base. ChatGPT backends
// expose /wham/usage, plain API hosts /api/codex/usage.
func UsageEndpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.Contains(base, "/backend-api") {
		return base + "/wham/usage"
	}
	return base + "/api/codex/usage"
}

// FetchQuota queries the usage endpoint for one account.
// accountID, when set, is sent as ChatGPT-Account-Id.
func FetchQuota(ctx context.Context, client *http.Client, baseURL string, tokens models.Tokens, accountID *string) (*models.QuotaInfo, error) {
	if strings.TrimSpace(tokens.AccessToken) == "" {
		return nil, errors.New("Missing access_token")
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, UsageEndpoint(baseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("Quota request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	req.Header.Set("User-Agent", UserAgent)
	if accountID != nil && strings.TrimSpace(*accountID) != "" {
		req.Header.Set("ChatGPT-Account-Id", *accountID)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Quota request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Failed to read quota response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("⚠️ [Quota] %s returned %d: %s", req.URL.Path, resp.StatusCode, util.TruncateBytes(body))
		return nil, fmt.Errorf("Quota request failed (%s): %s", resp.Status, util.BodyExcerpt(body))
	}

	return ParseQuota(body, time.Now().Unix())
}

// ParseQuota decodes a usage payload. Only invalid JSON is an error; missing
// objects or fields leave the corresponding values empty.
func ParseQuota(body []byte, now int64) (*models.QuotaInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("Invalid quota payload: malformed JSON")
	}
	payload := gjson.ParseBytes(body)

	info := &models.QuotaInfo{
		Primary:   parseWindow(payload.Get("rate_limit.primary_window"), now),
		Secondary: parseWindow(payload.Get("rate_limit.secondary_window"), now),
		FetchedAt: now,
	}
	if plan := payload.Get("plan_type"); plan.Type == gjson.String {
		s := plan.String()
		info.PlanType = &s
	}
	return info, nil
}

func parseWindow(win gjson.Result, now int64) models.QuotaWindow {
	if !win.Exists() {
		return models.QuotaWindow{}
	}

	w := models.QuotaWindow{FetchedAt: &now}
	if v := win.Get("used_percent"); v.Type == gjson.Number {
		f := v.Float()
		w.UsedPercent = &f
	}
	w.LimitWindowSeconds = intField(win.Get("limit_window_seconds"))
	w.ResetAt = intField(win.Get("reset_at"))
	return w
}

// intField accepts integral JSON numbers only.
func intField(v gjson.Result) *int64 {
	if v.Type != gjson.Number || strings.ContainsAny(v.Raw, ".eE") {
		return nil
	}
	i := v.Int()
	return &i
}
