package client

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

var (
	ErrStateMismatch = errors.New("invalid state or missing code verifier")
	ErrNoIDToken     = errors.New("no ID token received")
)

type (
	// PKCEFlow runs the authorization code grant with PKCE against a Cognito
	// hosted domain. It is a public client: there is no secret.
	PKCEFlow struct {
		domain string
		config *oauth2.Config
	}

	// PendingLogin is what must survive between Begin and Complete.
	PendingLogin struct {
		State    string
		Verifier string
	}
)

func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewPKCEFlow points the flow at domain/oauth2/authorize and domain/oauth2/token.
func NewPKCEFlow(domain, clientID, redirectURL string) *PKCEFlow {
	domain = strings.TrimRight(domain, "/")
	return &PKCEFlow{
		domain: domain,
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Scopes:      []string{"openid", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   domain + "/oauth2/authorize",
				TokenURL:  domain + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Begin returns the URL to send the user to, plus the state and verifier the
// callback will be checked against.
func (f *PKCEFlow) Begin() (string, PendingLogin, error) {
	state, err := randString(32)
	if err != nil {
		return "", PendingLogin{}, fmt.Errorf("can not generate state: %w", err)
	}
	pending := PendingLogin{State: state, Verifier: oauth2.GenerateVerifier()}
	authURL := f.config.AuthCodeURL(pending.State, oauth2.S256ChallengeOption(pending.Verifier))
	return authURL, pending, nil
}

// Complete checks the callback query against pending and trades the code
// for tokens.
func (f *PKCEFlow) Complete(ctx context.Context, pending PendingLogin, callback url.Values) (*Session, error) {
	if reason := callback.Get("error"); reason != "" {
		if desc := callback.Get("error_description"); desc != "" {
			reason += ": " + desc
		}
		return nil, fmt.Errorf("authorization failed: %s", reason)
	}
	if pending.State == "" || pending.Verifier == "" || callback.Get("state") != pending.State {
		return nil, ErrStateMismatch
	}
	code := callback.Get("code")
	if code == "" {
		return nil, errors.New("callback carries no authorization code")
	}

	token, err := f.config.Exchange(ctx, code, oauth2.VerifierOption(pending.Verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return nil, ErrNoIDToken
	}
	return &Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      idToken,
		Expiry:       token.Expiry,
	}, nil
}

// LogoutURL is the hosted-UI logout endpoint that returns to logoutRedirect.
func (f *PKCEFlow) LogoutURL(logoutRedirect string) string {
	query := url.Values{}
	query.Set("client_id", f.config.ClientID)
	query.Set("logout_uri", logoutRedirect)
	return f.domain + "/logout?" + query.Encode()
}
