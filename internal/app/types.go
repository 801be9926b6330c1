package app

import (
	"github.com/pysugar/codex-accounts/internal/auth/flow"
	"github.com/pysugar/codex-accounts/internal/models"
)

// StartResponse is returned when a login flow starts.
type StartResponse struct {
	FlowID           string `json:"flowId"`
	AuthorizationURL string `json:"authorizationUrl"`
	RedirectURI      string `json:"redirectUri"`
}

// FlowResponse describes a flow and, once completed, the resulting account.
type FlowResponse struct {
	FlowID           string          `json:"flowId"`
	AuthorizationURL string          `json:"authorizationUrl"`
	CallbackURL      *string         `json:"callbackUrl"`
	CreatedAt        int64           `json:"createdAt"`
	Status           flow.Status     `json:"status"`
	Error            *string         `json:"error"`
	Account          *models.Account `json:"account"`
}

// SwitchResponse is the result of switching the account an editor uses.
type SwitchResponse struct {
	State    models.AppData `json:"state"`
	IDE      *string        `json:"ide"`
	Reloaded bool           `json:"reloaded"`
	Warning  *string        `json:"warning"`
}

// ProxyTestResult is the outcome of a proxy probe.
type ProxyTestResult struct {
	ProxyID   string  `json:"proxyId"`
	Reachable bool    `json:"reachable"`
	LatencyMs *uint64 `json:"latencyMs"`
	CheckedAt int64   `json:"checkedAt"`
	Error     *string `json:"error"`
}

func flowResponse(f flow.Flow, data *models.AppData) FlowResponse {
	resp := FlowResponse{
		FlowID:           f.ID,
		AuthorizationURL: f.AuthorizationURL,
		CallbackURL:      f.CallbackURL,
		CreatedAt:        f.CreatedAt,
		Status:           f.Status,
	}
	if f.Status == flow.StatusError {
		msg := f.Error
		resp.Error = &msg
	}
	if f.ResultAccountID != nil && data != nil {
		if a := data.FindAccount(*f.ResultAccountID); a != nil {
			cp := a.Clone()
			resp.Account = &cp
		}
	}
	return resp
}
