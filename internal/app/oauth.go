package app

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/pysugar/codex-accounts/internal/apperr"
	"github.com/pysugar/codex-accounts/internal/auth/codex"
	"github.com/pysugar/codex-accounts/internal/auth/flow"
	"github.com/pysugar/codex-accounts/internal/logging"
	"github.com/pysugar/codex-accounts/internal/models"
	upcodex "github.com/pysugar/codex-accounts/internal/upstream/codex"
)

// StartFlow makes sure the callback listener runs and registers a new flow.
func (s *Service) StartFlow() (StartResponse, error) {
	s.listener.EnsureStarted()

	verifier := codex.NewVerifier()
	state := codex.NewState()
	f := flow.Flow{
		ID:               uuid.New().String(),
		State:            state,
		CodeVerifier:     verifier,
		CreatedAt:        s.nowUnix(),
		AuthorizationURL: s.oauth.AuthorizationURL(state, codex.ChallengeFor(verifier)),
	}
	if err := s.flows.Register(f); err != nil {
		return StartResponse{}, err
	}

	s.metrics.RecordFlow("started")
	log.Printf("🔐 [OAuth] Started flow %s", f.ID)
	return StartResponse{
		FlowID:           f.ID,
		AuthorizationURL: f.AuthorizationURL,
		RedirectURI:      codex.RedirectURI,
	}, nil
}

// FlowStatus reports a flow and the account it produced, if any.
func (s *Service) FlowStatus(flowID string) (FlowResponse, error) {
	f, err := s.flows.Get(flowID)
	if err != nil {
		return FlowResponse{}, err
	}
	data, err := s.store.Snapshot()
	if err != nil {
		return FlowResponse{}, err
	}
	return flowResponse(f, &data), nil
}

// CompleteWithCallback finishes a flow from a callback URL the user pasted.
// Exchange failures are reported through the returned flow status.
func (s *Service) CompleteWithCallback(flowID, input string) (FlowResponse, error) {
	params, err := codex.ParseCallbackInput(input)
	if err != nil {
		return FlowResponse{}, apperr.Invalid("callbackUrl", err.Error())
	}

	f, err := s.flows.BeginExchangeFor(flowID, params.State, params.URL)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			s.metrics.RecordFlow("error")
		}
		return FlowResponse{}, err
	}

	ctx := logging.WithRequestID(context.Background(), logging.GenerateRequestID())
	_ = s.CompleteFlow(ctx, f, params.Code)

	return s.FlowStatus(flowID)
}

// CompleteFlow exchanges the code of a flow that is already exchanging,
// stores the resulting account and finishes the flow. On failure the flow
// ends in error and the aggregate is untouched.
func (s *Service) CompleteFlow(ctx context.Context, f flow.Flow, code string) error {
	ctx = context.WithoutCancel(ctx)
	reqID := logging.GetRequestID(ctx)

	account, err := s.exchangeAndStore(ctx, f, code)
	if err != nil {
		log.Printf("❌ [OAuth] [%s] Flow %s failed: %v", reqID, f.ID, err)
		if ferr := s.flows.Fail(f.ID, err.Error()); ferr != nil {
			log.Printf("⚠️ [OAuth] [%s] Could not mark flow %s failed: %v", reqID, f.ID, ferr)
		}
		s.metrics.RecordFlow("error")
		return err
	}

	if err := s.flows.Complete(f.ID, account.ID); err != nil {
		return err
	}
	s.metrics.RecordFlow("completed")
	log.Printf("✅ [OAuth] [%s] Flow %s stored account %s (%s)", reqID, f.ID, account.ID, account.EmailOrEmpty())
	return nil
}

func (s *Service) exchangeAndStore(ctx context.Context, f flow.Flow, code string) (models.Account, error) {
	_, proxy, err := s.upstreamSnapshot()
	if err != nil {
		return models.Account{}, err
	}

	exCtx, cancel := context.WithTimeout(ctx, codex.ExchangeTimeout)
	tokens, err := s.oauth.Exchange(exCtx, s.httpClient(codex.ExchangeTimeout, proxy), code, f.CodeVerifier)
	cancel()
	if err != nil {
		return models.Account{}, err
	}

	accountID := upcodex.ExtractAccountID(tokens.IDToken)
	email := upcodex.ExtractEmail(tokens.IDToken)

	baseURL, proxy, err := s.upstreamSnapshot()
	if err != nil {
		return models.Account{}, err
	}
	quota, quotaErr := s.fetchQuota(ctx, baseURL, proxy, tokens, accountID)

	var stored models.Account
	data, err := s.store.Update(func(d *models.AppData) error {
		a := upsertAccount(d, uuid.New().String(), tokens, email, accountID, s.nowUnix())
		a.ApplyQuotaResult(quota, quotaErr)
		stored = a.Clone()
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}

	s.metrics.SetAccounts(len(data.Accounts))
	s.recordQuota(&stored)
	return stored, nil
}

// upsertAccount replaces the tokens of an account with the same provider
// account id and email, or appends a new one. The first account becomes active.
func upsertAccount(d *models.AppData, newID string, tokens models.Tokens, email, accountID *string, now int64) *models.Account {
	if email != nil && accountID != nil {
		for i := range d.Accounts {
			a := &d.Accounts[i]
			if a.Email != nil && *a.Email == *email && a.AccountID != nil && *a.AccountID == *accountID {
				a.Tokens = tokens
				a.LastLoginAt = now
				a.LastError = nil
				return a
			}
		}
	}

	d.Accounts = append(d.Accounts, models.Account{
		ID:          newID,
		Email:       email,
		AccountID:   accountID,
		Tokens:      tokens,
		CreatedAt:   now,
		LastLoginAt: now,
	})
	a := &d.Accounts[len(d.Accounts)-1]
	if d.ActiveAccountID == nil {
		id := a.ID
		d.ActiveAccountID = &id
	}
	return a
}
