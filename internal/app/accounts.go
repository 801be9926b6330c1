package app

import (
	"context"
	"fmt"
	"log"

	"github.com/pysugar/codex-accounts/internal/apperr"
	"github.com/pysugar/codex-accounts/internal/ide"
	"github.com/pysugar/codex-accounts/internal/models"
	upcodex "github.com/pysugar/codex-accounts/internal/upstream/codex"
	"golang.org/x/sync/errgroup"
)

func accountNotFound(id string) error {
	return apperr.NotFound("Account", id)
}

// fetchQuota runs one usage request with the standard timeout.
func (s *Service) fetchQuota(ctx context.Context, baseURL string, proxy *models.ProxyEntry, tokens models.Tokens, accountID *string) (*models.QuotaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, upcodex.QuotaTimeout)
	defer cancel()

	quota, err := upcodex.FetchQuota(ctx, s.httpClient(upcodex.QuotaTimeout, proxy), baseURL, tokens, accountID)
	s.metrics.RecordQuotaFetch(err)
	return quota, err
}

func (s *Service) recordQuota(a *models.Account) {
	if a.Quota == nil {
		return
	}
	s.metrics.SetQuotaUsed(a.ID, "primary", a.Quota.Primary.UsedPercent)
	s.metrics.SetQuotaUsed(a.ID, "secondary", a.Quota.Secondary.UsedPercent)
}

func (s *Service) findAccount(id string) (models.Account, error) {
	var out models.Account
	err := s.store.View(func(d *models.AppData) error {
		a := d.FindAccount(id)
		if a == nil {
			return accountNotFound(id)
		}
		out = *a
		return nil
	})
	return out, err
}

// RemoveAccount deletes an account. If it was active the first remaining
// account takes over.
func (s *Service) RemoveAccount(id string) (models.AppData, error) {
	data, err := s.store.Update(func(d *models.AppData) error {
		if !d.RemoveAccount(id) {
			return accountNotFound(id)
		}
		return nil
	})
	if err != nil {
		return models.AppData{}, err
	}
	s.metrics.ForgetAccount(id)
	s.metrics.SetAccounts(len(data.Accounts))
	log.Printf("🗑️ [Store] Removed account %s", id)
	return data, nil
}

// SetActiveAccount exports the account's credentials and marks it active.
func (s *Service) SetActiveAccount(id string) (models.AppData, error) {
	account, err := s.findAccount(id)
	if err != nil {
		return models.AppData{}, err
	}
	if err := upcodex.WriteAuthFile(s.authFile, account.Tokens, account.AccountID); err != nil {
		return models.AppData{}, err
	}

	return s.store.Update(func(d *models.AppData) error {
		if d.FindAccount(id) == nil {
			return accountNotFound(id)
		}
		d.ActiveAccountID = &id
		return nil
	})
}

// SetPreferredIDE stores the editor to reload on switch. nil clears it.
func (s *Service) SetPreferredIDE(target *string) (models.AppData, error) {
	normalized, err := ide.NormalizeOptional(target)
	if err != nil {
		return models.AppData{}, err
	}
	return s.store.Update(func(d *models.AppData) error {
		d.PreferredIDE = normalized
		return nil
	})
}

// SwitchAccountForIDE activates an account and asks the editor to reload.
// An explicit target also becomes the preferred one. Reload problems are
// reported as a warning; the switch itself still succeeds.
func (s *Service) SwitchAccountForIDE(id string, target *string) (SwitchResponse, error) {
	requested, err := ide.NormalizeOptional(target)
	if err != nil {
		return SwitchResponse{}, err
	}

	var account models.Account
	var preferred *string
	err = s.store.View(func(d *models.AppData) error {
		a := d.FindAccount(id)
		if a == nil {
			return accountNotFound(id)
		}
		account = *a
		preferred = d.PreferredIDE
		return nil
	})
	if err != nil {
		return SwitchResponse{}, err
	}

	if err := upcodex.WriteAuthFile(s.authFile, account.Tokens, account.AccountID); err != nil {
		return SwitchResponse{}, err
	}

	selected := requested
	if selected == nil {
		selected = preferred
	}

	snapshot, err := s.store.Update(func(d *models.AppData) error {
		if d.FindAccount(id) == nil {
			return accountNotFound(id)
		}
		d.ActiveAccountID = &id
		if requested != nil {
			v := *requested
			d.PreferredIDE = &v
		}
		return nil
	})
	if err != nil {
		return SwitchResponse{}, err
	}

	resp := SwitchResponse{State: snapshot, IDE: selected}
	var warning string
	switch {
	case selected == nil:
		warning = "Account switched. Choose an IDE target to enable auto reload."
	default:
		found, rerr := s.reloader.Reload(*selected)
		switch {
		case rerr != nil:
			warning = fmt.Sprintf("Account switched, but IDE reload failed: %v", rerr)
		case !found:
			warning = fmt.Sprintf("Account switched. No running %s process was found to reload.", *selected)
		default:
			resp.Reloaded = true
		}
	}
	if warning != "" {
		resp.Warning = &warning
	}
	return resp, nil
}

// RefreshAccountQuota refetches usage for one account. A failed fetch is
// recorded on the account, not returned.
func (s *Service) RefreshAccountQuota(id string) (models.Account, error) {
	var account models.Account
	var baseURL string
	var proxy *models.ProxyEntry
	err := s.store.View(func(d *models.AppData) error {
		a := d.FindAccount(id)
		if a == nil {
			return accountNotFound(id)
		}
		account = *a
		baseURL = d.LimitsBaseURL
		proxy = d.ActiveProxy()
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}

	quota, quotaErr := s.fetchQuota(context.Background(), baseURL, proxy, account.Tokens, account.AccountID)

	var updated models.Account
	_, err = s.store.Update(func(d *models.AppData) error {
		a := d.FindAccount(id)
		if a == nil {
			return apperr.Inconsistent("Account disappeared during update")
		}
		a.ApplyQuotaResult(quota, quotaErr)
		updated = a.Clone()
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	s.recordQuota(&updated)
	return updated, nil
}

type quotaResult struct {
	quota *models.QuotaInfo
	err   error
}

// RefreshAllQuotas refetches usage for every account, a few at a time, and
// applies the results in one update. Accounts removed meanwhile are skipped.
func (s *Service) RefreshAllQuotas() (models.AppData, error) {
	var accounts []models.Account
	var baseURL string
	var proxy *models.ProxyEntry
	err := s.store.View(func(d *models.AppData) error {
		accounts = d.Accounts
		baseURL = d.LimitsBaseURL
		proxy = d.ActiveProxy()
		return nil
	})
	if err != nil {
		return models.AppData{}, err
	}

	results := make([]quotaResult, len(accounts))
	var g errgroup.Group
	g.SetLimit(refreshConcurrency)
	for i := range accounts {
		g.Go(func() error {
			a := accounts[i]
			q, qerr := s.fetchQuota(context.Background(), baseURL, proxy, a.Tokens, a.AccountID)
			results[i] = quotaResult{quota: q, err: qerr}
			return nil
		})
	}
	_ = g.Wait()

	byID := make(map[string]quotaResult, len(accounts))
	for i, a := range accounts {
		byID[a.ID] = results[i]
	}

	data, err := s.store.Update(func(d *models.AppData) error {
		for i := range d.Accounts {
			if r, ok := byID[d.Accounts[i].ID]; ok {
				d.Accounts[i].ApplyQuotaResult(r.quota, r.err)
			}
		}
		return nil
	})
	if err != nil {
		return models.AppData{}, err
	}

	for i := range data.Accounts {
		s.recordQuota(&data.Accounts[i])
	}
	log.Printf("📊 [Quota] Refreshed %d account(s)", len(accounts))
	return data, nil
}
