// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package exchange

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/AzureAD/shared-token-cache-for-go/errors"
	"github.com/AzureAD/shared-token-cache-for-go/internal/mock"
)

func TestNew(t *testing.T) {
	tests := []struct {
		desc      string
		authority string
		clientID  string
		err       bool
	}{
		{desc: "success", authority: "https://login.microsoftonline.com", clientID: "client-id"},
		{desc: "error: authority is not https", authority: "http://login.microsoftonline.com", clientID: "client-id", err: true},
		{desc: "error: authority is not a URL", authority: "://", clientID: "client-id", err: true},
		{desc: "error: empty client ID", authority: "https://login.microsoftonline.com", err: true},
	}

	for _, test := range tests {
		_, err := New(test.authority, test.clientID, nil)
		switch {
		case err == nil && test.err:
			t.Errorf("TestNew(%s): got err == nil, want err != nil", test.desc)
		case err != nil && !test.err:
			t.Errorf("TestNew(%s): got err == %s, want err == nil", test.desc, err)
		}
	}
}

func TestFromRefreshToken(t *testing.T) {
	tests := []struct {
		desc       string
		params     RefreshParams
		wantPath   string
		wantClaims string
	}{
		{
			desc:     "default tenant",
			params:   RefreshParams{Scopes: []string{"s1", "s2"}, RefreshToken: "secret"},
			wantPath: "/organizations/oauth2/v2.0/token",
		},
		{
			desc:     "explicit tenant",
			params:   RefreshParams{Scopes: []string{"s1"}, RefreshToken: "secret", Tenant: "contoso"},
			wantPath: "/contoso/oauth2/v2.0/token",
		},
		{
			desc:       "claims challenge",
			params:     RefreshParams{Scopes: []string{"s1"}, RefreshToken: "secret", Claims: `{"access_token":{}}`},
			wantPath:   "/organizations/oauth2/v2.0/token",
			wantClaims: `{"access_token":{}}`,
		},
	}

	for _, test := range tests {
		var gotReq *http.Request
		var gotForm url.Values
		client := mock.NewClient()
		client.AppendResponse(
			mock.WithBody(mock.GetTokenResponseBody("new-at", mock.GetIDToken("contoso", "alice@example.com"), "new-rt", 3600)),
			mock.WithCallback(func(r *http.Request) {
				gotReq = r
				b, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("TestFromRefreshToken(%s): reading request body: %s", test.desc, err)
				}
				gotForm, err = url.ParseQuery(string(b))
				if err != nil {
					t.Fatalf("TestFromRefreshToken(%s): parsing request form: %s", test.desc, err)
				}
			}),
		)

		c, err := New("https://login.microsoftonline.com", "client-id", client)
		if err != nil {
			t.Fatalf("TestFromRefreshToken(%s): New: %s", test.desc, err)
		}
		tr, err := c.FromRefreshToken(context.Background(), test.params)
		if err != nil {
			t.Fatalf("TestFromRefreshToken(%s): got err == %s, want err == nil", test.desc, err)
		}

		if gotReq.URL.Path != test.wantPath {
			t.Errorf("TestFromRefreshToken(%s): got path %q, want %q", test.desc, gotReq.URL.Path, test.wantPath)
		}
		if gotReq.Header.Get("client-request-id") == "" {
			t.Errorf("TestFromRefreshToken(%s): request had no client-request-id", test.desc)
		}
		if got := gotForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("TestFromRefreshToken(%s): got grant_type %q, want refresh_token", test.desc, got)
		}
		if got := gotForm.Get("client_id"); got != "client-id" {
			t.Errorf("TestFromRefreshToken(%s): got client_id %q, want client-id", test.desc, got)
		}
		if got := gotForm.Get("refresh_token"); got != test.params.RefreshToken {
			t.Errorf("TestFromRefreshToken(%s): got refresh_token %q, want %q", test.desc, got, test.params.RefreshToken)
		}
		if got := gotForm.Get("scope"); got != strings.Join(test.params.Scopes, " ") {
			t.Errorf("TestFromRefreshToken(%s): got scope %q, want %q", test.desc, got, strings.Join(test.params.Scopes, " "))
		}
		if got := gotForm.Get("claims"); got != test.wantClaims {
			t.Errorf("TestFromRefreshToken(%s): got claims %q, want %q", test.desc, got, test.wantClaims)
		}

		if tr.AccessToken != "new-at" {
			t.Errorf("TestFromRefreshToken(%s): got access token %q, want new-at", test.desc, tr.AccessToken)
		}
		if tr.RefreshToken != "new-rt" {
			t.Errorf("TestFromRefreshToken(%s): got refresh token %q, want new-rt", test.desc, tr.RefreshToken)
		}
		if got := tr.Username(); got != "alice@example.com" {
			t.Errorf("TestFromRefreshToken(%s): got username %q, want alice@example.com", test.desc, got)
		}
		if until := time.Until(tr.ExpiresOn.T); until < 59*time.Minute || until > 61*time.Minute {
			t.Errorf("TestFromRefreshToken(%s): got expiry %v from now, want ~1h", test.desc, until)
		}
	}
}

func TestFromRefreshTokenErrors(t *testing.T) {
	tests := []struct {
		desc       string
		body       []byte
		statusCode int
		wantInErr  string
	}{
		{
			desc:       "oauth error body",
			body:       []byte(`{"error": "invalid_grant", "error_description": "AADSTS70008: The refresh token has expired."}`),
			statusCode: http.StatusBadRequest,
			wantInErr:  "invalid_grant",
		},
		{
			desc:       "non-2xx without a parseable body",
			body:       []byte("gateway timeout"),
			statusCode: http.StatusBadGateway,
			wantInErr:  "502",
		},
		{
			desc:       "2xx without an access token",
			body:       []byte(`{"token_type": "Bearer"}`),
			statusCode: http.StatusOK,
			wantInErr:  "access_token",
		},
	}

	for _, test := range tests {
		client := mock.NewClient()
		client.AppendResponse(mock.WithBody(test.body), mock.WithHTTPStatusCode(test.statusCode))

		c, err := New("https://login.microsoftonline.com", "client-id", client)
		if err != nil {
			t.Fatalf("TestFromRefreshTokenErrors(%s): New: %s", test.desc, err)
		}
		_, err = c.FromRefreshToken(context.Background(), RefreshParams{Scopes: []string{"s1"}, RefreshToken: "secret"})
		if err == nil {
			t.Errorf("TestFromRefreshTokenErrors(%s): got err == nil, want err != nil", test.desc)
			continue
		}
		callErr, ok := err.(errors.CallErr)
		if !ok {
			t.Errorf("TestFromRefreshTokenErrors(%s): got %T, want errors.CallErr", test.desc, err)
			continue
		}
		if !strings.Contains(callErr.Error(), test.wantInErr) {
			t.Errorf("TestFromRefreshTokenErrors(%s): error %q does not mention %q", test.desc, callErr.Error(), test.wantInErr)
		}
		if callErr.Resp == nil {
			t.Errorf("TestFromRefreshTokenErrors(%s): CallErr has no response attached", test.desc)
		}
	}
}

func TestUsername(t *testing.T) {
	if got := (TokenResponse{}).Username(); got != "" {
		t.Errorf("TestUsername(no id token): got %q, want empty", got)
	}
	if got := (TokenResponse{IDToken: "not.a.jwt"}).Username(); got != "" {
		t.Errorf("TestUsername(malformed id token): got %q, want empty", got)
	}
}
