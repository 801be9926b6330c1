package app

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pysugar/codex-accounts/internal/apperr"
	"github.com/pysugar/codex-accounts/internal/discovery"
	"github.com/pysugar/codex-accounts/internal/models"
)

// ImportResult lists the accounts created or updated by an import.
type ImportResult struct {
	State    models.AppData        `json:"state"`
	Imported []models.Account      `json:"imported"`
	Errors   []discovery.ScanError `json:"errors"`
}

// DiscoverCredentials scans the machine for existing Codex logins. Tokens
// are masked.
func (s *Service) DiscoverCredentials() *discovery.ScanResult {
	result := discovery.ScanAll()
	for i := range result.Credentials {
		result.Credentials[i] = discovery.MaskCredential(result.Credentials[i])
	}
	return result
}

// ImportAuthFile imports the login stored in a Codex auth.json. An empty
// path imports every login DiscoverCredentials would find.
func (s *Service) ImportAuthFile(path string) (ImportResult, error) {
	var creds []discovery.Credential
	var scanErrs []discovery.ScanError
	if path != "" {
		cred, err := discovery.ParseAuthFile(path)
		if err != nil {
			return ImportResult{}, apperr.Invalid("path", err.Error())
		}
		creds = append(creds, *cred)
	} else {
		scanned := discovery.ScanAll()
		creds, scanErrs = scanned.Credentials, scanned.Errors
	}

	result := ImportResult{Errors: scanErrs}
	for _, cred := range creds {
		account, err := s.importCredential(cred)
		if err != nil {
			return ImportResult{}, err
		}
		result.Imported = append(result.Imported, account)
	}

	data, err := s.store.Snapshot()
	if err != nil {
		return ImportResult{}, err
	}
	result.State = data
	return result, nil
}

// importCredential stores cred the same way a completed login does.
func (s *Service) importCredential(cred discovery.Credential) (models.Account, error) {
	baseURL, proxy, err := s.upstreamSnapshot()
	if err != nil {
		return models.Account{}, err
	}
	quota, quotaErr := s.fetchQuota(context.Background(), baseURL, proxy, cred.Tokens, cred.AccountID)

	var stored models.Account
	data, err := s.store.Update(func(d *models.AppData) error {
		a := upsertAccount(d, uuid.New().String(), cred.Tokens, cred.Email, cred.AccountID, s.nowUnix())
		a.ApplyQuotaResult(quota, quotaErr)
		stored = a.Clone()
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}

	s.metrics.SetAccounts(len(data.Accounts))
	s.recordQuota(&stored)
	log.Printf("📥 [Store] Imported %s from %s as %s", stored.EmailOrEmpty(), cred.Path, stored.ID)
	return stored, nil
}
