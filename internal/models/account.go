// Package models holds the persisted aggregate: accounts, proxies and the
// settings that point at them.
package models

// DefaultLimitsBaseURL is the backend used for quota queries unless the user
// configures another one.
const DefaultLimitsBaseURL = "https://chatgpt.com/backend-api"

// Tokens are the OAuth credentials issued for one account.
// They are replaced wholesale on re-authentication.
type Tokens struct {
	IDToken      string `json:"idToken"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// QuotaWindow is one rate-limit window as reported by the backend.
type QuotaWindow struct {
	UsedPercent        *float64 `json:"usedPercent"`
	LimitWindowSeconds *int64   `json:"limitWindowSeconds"`
	ResetAt            *int64   `json:"resetAt"`
	FetchedAt          *int64   `json:"fetchedAt"`
}

// QuotaInfo is a point-in-time usage snapshot. It is always replaced, never merged.
type QuotaInfo struct {
	PlanType  *string     `json:"planType"`
	Primary   QuotaWindow `json:"primary"`
	Secondary QuotaWindow `json:"secondary"`
	FetchedAt int64       `json:"fetchedAt"`
}

// Account is created only by a successful token exchange.
type Account struct {
	ID          string     `json:"id"` // UUID, stable for the account's lifetime
	Email       *string    `json:"email"`
	AccountID   *string    `json:"accountId"` // provider (ChatGPT) account id
	Tokens      Tokens     `json:"tokens"`
	Quota       *QuotaInfo `json:"quota"`
	CreatedAt   int64      `json:"createdAt"`
	LastLoginAt int64      `json:"lastLoginAt"`
	LastError   *string    `json:"lastError"`
}

// EmailOrEmpty returns the account email or "".
func (a *Account) EmailOrEmpty() string {
	if a.Email == nil {
		return ""
	}
	return *a.Email
}

// AccountIDOrEmpty returns the provider account id or "".
func (a *Account) AccountIDOrEmpty() string {
	if a.AccountID == nil {
		return ""
	}
	return *a.AccountID
}

// ApplyQuotaResult attaches a fresh quota snapshot or records the fetch error.
// A failed fetch keeps the previous snapshot.
func (a *Account) ApplyQuotaResult(quota *QuotaInfo, err error) {
	if err != nil {
		msg := err.Error()
		a.LastError = &msg
		return
	}
	a.Quota = quota
	a.LastError = nil
}

// Clone returns a deep copy.
func (a Account) Clone() Account {
	out := a
	out.Email = cloneString(a.Email)
	out.AccountID = cloneString(a.AccountID)
	out.LastError = cloneString(a.LastError)
	if a.Quota != nil {
		q := a.Quota.Clone()
		out.Quota = &q
	}
	return out
}

// Clone returns a deep copy.
func (q QuotaInfo) Clone() QuotaInfo {
	out := q
	out.PlanType = cloneString(q.PlanType)
	out.Primary = q.Primary.Clone()
	out.Secondary = q.Secondary.Clone()
	return out
}

// Clone returns a deep copy.
func (w QuotaWindow) Clone() QuotaWindow {
	out := w
	if w.UsedPercent != nil {
		v := *w.UsedPercent
		out.UsedPercent = &v
	}
	out.LimitWindowSeconds = cloneInt64(w.LimitWindowSeconds)
	out.ResetAt = cloneInt64(w.ResetAt)
	out.FetchedAt = cloneInt64(w.FetchedAt)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

// StringPtr returns nil for "" and a pointer otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
