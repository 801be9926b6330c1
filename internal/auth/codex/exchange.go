package codex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pysugar/codex-accounts/internal/models"
	"github.com/pysugar/codex-accounts/internal/util"
	"golang.org/x/oauth2"
)

// Exchange trades an authorization code for tokens. httpClient carries the
// proxy and timeout; nil means http.DefaultClient.
func (c *Client) Exchange(ctx context.Context, httpClient *http.Client, code, verifier string) (models.Tokens, error) {
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	token, err := c.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return models.Tokens{}, exchangeError(err)
	}
	if token.AccessToken == "" {
		return models.Tokens{}, errors.New("OAuth payload missing access_token")
	}

	idToken, _ := token.Extra("id_token").(string)
	return models.Tokens{
		IDToken:      idToken,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

func exchangeError(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) && rErr.Response != nil {
		return fmt.Errorf("OAuth exchange failed (%s): %s", rErr.Response.Status, util.BodyExcerpt(rErr.Body))
	}
	// oauth2 reports a 2xx body without a token as a plain error
	if strings.Contains(err.Error(), "missing access_token") {
		return errors.New("OAuth payload missing access_token")
	}
	return fmt.Errorf("OAuth token request failed: %w", err)
}
