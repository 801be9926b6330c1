// Package discovery finds Codex logins that already exist on this machine
// so they can be imported as accounts.
package discovery

import (
	"log"
	"path/filepath"
)

// ScanResult holds the result of scanning all sources
type ScanResult struct {
	Credentials []Credential `json:"credentials"`
	Errors      []ScanError  `json:"errors,omitempty"`
}

// ScanError represents an error encountered during scanning
type ScanError struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Error  string `json:"error"`
}

// ScanAll scans all known sources for credentials. A file reachable through
// several sources is reported once.
func ScanAll() *ScanResult {
	return scan(Sources)
}

func scan(sources []Source) *ScanResult {
	result := &ScanResult{
		Credentials: make([]Credential, 0),
		Errors:      make([]ScanError, 0),
	}
	seen := make(map[string]bool)

	for _, source := range sources {
		creds, errs := scanSource(source, seen)
		result.Credentials = append(result.Credentials, creds...)
		result.Errors = append(result.Errors, errs...)
	}

	log.Printf("🔍 Discovery: Found %d credentials from %d sources", len(result.Credentials), len(sources))
	return result
}

// scanSource scans a single source for credentials
func scanSource(source Source, seen map[string]bool) ([]Credential, []ScanError) {
	var credentials []Credential
	var errors []ScanError

	for _, pathPattern := range source.ConfigPaths {
		expanded := expandPath(pathPattern)
		if expanded == "" {
			continue
		}

		matches, err := filepath.Glob(expanded)
		if err != nil {
			errors = append(errors, ScanError{
				Source: source.Name,
				Path:   expanded,
				Error:  "Glob error: " + err.Error(),
			})
			continue
		}

		for _, path := range matches {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			if seen[path] {
				continue
			}
			seen[path] = true

			cred, err := source.Parser(path)
			if err != nil {
				errors = append(errors, ScanError{
					Source: source.Name,
					Path:   path,
					Error:  err.Error(),
				})
				continue
			}
			cred.Source = source.Name
			log.Printf("🔍 Found credentials from %s: %s", source.Name, path)
			credentials = append(credentials, *cred)
		}
	}

	return credentials, errors
}

// MaskToken returns a masked version of a token for display
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// MaskCredential returns a copy of the credential with masked tokens
func MaskCredential(cred Credential) Credential {
	masked := cred
	masked.Tokens.IDToken = MaskToken(cred.Tokens.IDToken)
	masked.Tokens.AccessToken = MaskToken(cred.Tokens.AccessToken)
	masked.Tokens.RefreshToken = MaskToken(cred.Tokens.RefreshToken)
	return masked
}
