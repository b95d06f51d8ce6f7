// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

/*
Package exchange exposes a REST client for redeeming a cached refresh token
for a new access token at the authority's token endpoint.

The call is of type "application/x-www-form-urlencoded". Arguments are
represented by url.Values encoded into the POST body; the response is JSON.
The request definition is in https://tools.ietf.org/html/rfc6749#section-6 .
*/
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"

	"github.com/AzureAD/shared-token-cache-for-go/errors"

	"github.com/google/uuid"
)

const (
	grantType     = "grant_type"
	refreshToken  = "refresh_token"
	clientID      = "client_id"
	clientInfo    = "client_info"
	clientInfoVal = "1"
	scope         = "scope"
	claims        = "claims"

	tokenEndpointPath = "/oauth2/v2.0/token"

	// defaultTenant is used when neither the credential nor the request
	// names a tenant.
	defaultTenant = "organizations"
)

// HTTPClient represents an HTTP client. It is implemented in production by
// *http.Client and in tests by fakes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RefreshParams carries the arguments of one refresh token grant.
type RefreshParams struct {
	Scopes       []string
	RefreshToken string
	Claims       string
	Tenant       string
}

// Client redeems refresh tokens at the token endpoint of a single authority
// host on behalf of a single client ID.
type Client struct {
	host     string
	clientID string
	client   HTTPClient
}

// New is the constructor for Client. authority must be an https URL naming
// the authority host, e.g. https://login.microsoftonline.com.
func New(authority, clientID string, client HTTPClient) (Client, error) {
	u, err := url.Parse(authority)
	if err != nil {
		return Client{}, fmt.Errorf("authority(%s) could not be URL parsed: %w", authority, err)
	}
	if u.Scheme != "https" {
		return Client{}, fmt.Errorf("authority(%s) did not start with https://", u.String())
	}
	if clientID == "" {
		return Client{}, errors.New("exchange.New: clientID cannot be empty")
	}
	if client == nil {
		client = &http.Client{}
	}
	return Client{host: u.Host, clientID: clientID, client: client}, nil
}

// FromRefreshToken redeems a refresh token for a new access token. Endpoint
// rejections and transport failures are returned as errors.CallErr.
func (c Client) FromRefreshToken(ctx context.Context, params RefreshParams) (TokenResponse, error) {
	qv := url.Values{}
	qv.Set(grantType, refreshToken)
	qv.Set(clientID, c.clientID)
	qv.Set(clientInfo, clientInfoVal)
	qv.Set(refreshToken, params.RefreshToken)
	qv.Set(scope, strings.Join(params.Scopes, " "))
	if params.Claims != "" {
		qv.Set(claims, params.Claims)
	}

	tenant := params.Tenant
	if tenant == "" {
		tenant = defaultTenant
	}
	endpoint := url.URL{Scheme: "https", Host: c.host, Path: "/" + tenant + tokenEndpointPath}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(qv.Encode()))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("could not create token request: %w", err)
	}
	addStdHeaders(req.Header)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return TokenResponse{}, errors.CallErr{Req: req, Err: fmt.Errorf("token request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenResponse{}, errors.CallErr{Req: req, Resp: resp, Err: fmt.Errorf("could not read token response: %w", err)}
	}

	tr := TokenResponse{}
	if err := json.Unmarshal(body, &tr); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return TokenResponse{}, errors.CallErr{Req: req, Resp: resp, Err: fmt.Errorf("http call(%s)(%s) error: reply status code was %d", req.URL.String(), req.Method, resp.StatusCode)}
		}
		return TokenResponse{}, errors.CallErr{Req: req, Resp: resp, Err: fmt.Errorf("could not deserialize token response: %w", err)}
	}
	if tr.Error != "" {
		return TokenResponse{}, errors.CallErr{Req: req, Resp: resp, Err: fmt.Errorf("%s: %s", tr.Error, tr.ErrorDescription)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TokenResponse{}, errors.CallErr{Req: req, Resp: resp, Err: fmt.Errorf("http call(%s)(%s) error: reply status code was %d", req.URL.String(), req.Method, resp.StatusCode)}
	}
	if err := tr.Validate(); err != nil {
		return TokenResponse{}, errors.CallErr{Req: req, Resp: resp, Err: err}
	}
	return tr, nil
}

func addStdHeaders(headers http.Header) {
	headers.Set("x-client-sku", "MSAL.Go")
	headers.Set("x-client-os", runtime.GOOS)
	headers.Set("client-request-id", uuid.New().String())
	headers.Set("return-client-request-id", "false")
}
