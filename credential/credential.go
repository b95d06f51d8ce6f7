// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

/*
Package credential authenticates using the local token cache shared between
Microsoft developer tools. Given the scopes of a token request it locates a
matching account in the cache, returns a still-valid cached access token when
one exists, and otherwise redeems a cached refresh token for a new access
token. The cache is never written.

SharedTokenCache implements azcore.TokenCredential, so it can be handed
directly to Azure SDK clients.
*/
package credential

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/AzureAD/shared-token-cache-for-go/cache"
	"github.com/AzureAD/shared-token-cache-for-go/errors"
	"github.com/AzureAD/shared-token-cache-for-go/internal/exchange"
	"github.com/AzureAD/shared-token-cache-for-go/internal/shared"
	"github.com/AzureAD/shared-token-cache-for-go/internal/storage"
	"github.com/AzureAD/shared-token-cache-for-go/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

const (
	// AuthorityPublicCloud is the default authority host.
	AuthorityPublicCloud = "https://login.microsoftonline.com"

	// developerSignOnClientID is the client ID shared by Microsoft developer
	// tools. Tokens in the shared cache were issued to it, so refresh
	// exchanges present the same ID.
	developerSignOnClientID = "04b07795-8ddb-461a-bbee-02f9e1bf7b46"
)

// Options configures the SharedTokenCache's behavior.
type Options struct {
	// Username selects an account when the cache holds several identities.
	Username string
	// TenantID selects an account by home tenant and names the tenant used
	// for refresh exchanges.
	TenantID string
	// Authority is the host of the Azure Active Directory authority. The
	// default is https://login.microsoftonline.com. This can be changed
	// with the WithAuthority() option.
	Authority string
	// ClientID overrides the developer sign-on client ID presented during
	// refresh exchanges.
	ClientID string
	// Loader reads the persisted cache. The default reads the unencrypted
	// per-user cache files.
	Loader cache.Loader
	// HTTPClient is the transport for refresh exchanges.
	HTTPClient exchange.HTTPClient
	// Logger receives structured logs. nil discards them.
	Logger *logger.Logger
}

// Option is an optional argument to the New constructor.
type Option func(o *Options)

// WithUsername selects the account to authenticate as. Use it when the cache
// contains tokens for multiple identities.
func WithUsername(username string) Option {
	return func(o *Options) {
		o.Username = username
	}
}

// WithTenantID selects an account by tenant when the cache contains tokens
// for multiple identities.
func WithTenantID(tenantID string) Option {
	return func(o *Options) {
		o.TenantID = tenantID
	}
}

// WithAuthority allows for a custom authority to be set. This must be a valid https url.
func WithAuthority(authority string) Option {
	return func(o *Options) {
		o.Authority = authority
	}
}

// WithClientID overrides the client ID presented during refresh exchanges.
func WithClientID(clientID string) Option {
	return func(o *Options) {
		o.ClientID = clientID
	}
}

// WithLoader sets the persistent store the cache is read from.
func WithLoader(l cache.Loader) Option {
	return func(o *Options) {
		o.Loader = l
	}
}

// WithHTTPClient sets the transport used for refresh exchanges.
func WithHTTPClient(client exchange.HTTPClient) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// exchanger redeems refresh tokens. It is implemented in production by
// exchange.Client and in tests by fakes.
type exchanger interface {
	FromRefreshToken(ctx context.Context, params exchange.RefreshParams) (exchange.TokenResponse, error)
}

// partition is one lazily loaded cache partition. loaded latches only on a
// successful load, so a later call may retry after a failed one.
type partition struct {
	key cache.Partition

	mu     sync.Mutex
	loaded bool
	store  *storage.Partition
}

// SharedTokenCache resolves access tokens from the shared token cache. It is
// safe for concurrent use. Construct it with New.
type SharedTokenCache struct {
	username string
	tenant   string
	loader   cache.Loader
	token    exchanger
	log      *logger.Logger

	standard partition
	cae      partition
}

// New is the constructor for SharedTokenCache.
func New(options ...Option) (*SharedTokenCache, error) {
	opts := Options{Authority: AuthorityPublicCloud, ClientID: developerSignOnClientID}
	for _, o := range options {
		o(&opts)
	}
	if opts.Loader == nil {
		loader, err := cache.NewFileLoader("")
		if err != nil {
			return nil, err
		}
		opts.Loader = loader
	}
	token, err := exchange.New(opts.Authority, opts.ClientID, opts.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &SharedTokenCache{
		username: opts.Username,
		tenant:   opts.TenantID,
		loader:   opts.Loader,
		token:    token,
		log:      opts.Logger,
		standard: partition{key: cache.Standard},
		cae:      partition{key: cache.CAE},
	}, nil
}

// GetToken implements azcore.TokenCredential. It requires at least one scope.
// If no usable access token is cached for the configured account, GetToken
// redeems a cached refresh token, trying at most one per call.
func (c *SharedTokenCache) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	at, err := c.getToken(ctx, opts)
	if err != nil {
		c.log.Log(logger.Err, "GetToken failed", "credential", "SharedTokenCache", "error", err.Error())
		return azcore.AccessToken{}, err
	}
	c.log.Log(logger.Debug, "GetToken succeeded", "credential", "SharedTokenCache", "scopes", strings.Join(opts.Scopes, ","))
	return at, nil
}

func (c *SharedTokenCache) getToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if len(opts.Scopes) == 0 {
		return azcore.AccessToken{}, errors.InvalidArgumentError{Message: "GetToken requires at least one scope"}
	}

	p := &c.standard
	if opts.EnableCAE {
		p = &c.cae
	}
	store, err := c.load(ctx, p)
	if err != nil {
		return azcore.AccessToken{}, err
	}

	account, err := c.account(store)
	if err != nil {
		return azcore.AccessToken{}, err
	}

	// A claims challenge means previously issued tokens are insufficient, so
	// cached access tokens are skipped and the refresh path produces a new one.
	if opts.Claims == "" {
		if at, err := store.ReadAccessToken(account, opts.Scopes); err == nil {
			return azcore.AccessToken{Token: at.Secret, ExpiresOn: at.ExpiresOn.T}, nil
		}
	}

	tenant := c.tenant
	if opts.TenantID != "" {
		tenant = opts.TenantID
	}

	// Try each refresh token, returning the result of the first exchange.
	// Exchange failures are not retried against other refresh tokens; they
	// propagate to the caller unmodified.
	for _, rt := range store.ReadRefreshTokens(account) {
		tr, err := c.token.FromRefreshToken(ctx, exchange.RefreshParams{
			Scopes:       opts.Scopes,
			RefreshToken: rt.Secret,
			Claims:       opts.Claims,
			Tenant:       tenant,
		})
		if err != nil {
			return azcore.AccessToken{}, err
		}
		c.log.Log(logger.Debug, "redeemed refresh token", "credential", "SharedTokenCache", "username", tr.Username())
		return azcore.AccessToken{Token: tr.AccessToken, ExpiresOn: tr.ExpiresOn.T}, nil
	}

	return azcore.AccessToken{}, errors.CredentialUnavailableError{
		Message: fmt.Sprintf("no cached token or refresh token for %s", account.PreferredUsername),
	}
}

// load returns the partition's store, reading it from the persistent store on
// first use. Concurrent first-use calls are serialized and perform a single
// underlying load.
func (c *SharedTokenCache) load(ctx context.Context, p *partition) (*storage.Partition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return p.store, nil
	}
	store := storage.New()
	found, err := c.loader.Load(ctx, store, p.key)
	if err != nil {
		return nil, errors.CredentialUnavailableError{Message: fmt.Sprintf("shared token cache unavailable: %s", err)}
	}
	if !found {
		return nil, errors.CredentialUnavailableError{Message: "shared token cache unavailable"}
	}
	p.store = store
	p.loaded = true
	return p.store, nil
}

// account resolves the configured selectors to exactly one cached account.
func (c *SharedTokenCache) account(store *storage.Partition) (shared.Account, error) {
	accounts := store.Accounts(c.username, c.tenant)
	switch len(accounts) {
	case 0:
		return shared.Account{}, errors.CredentialUnavailableError{Message: noAccounts(c.username, c.tenant)}
	case 1:
		return accounts[0], nil
	}
	return shared.Account{}, errors.CredentialUnavailableError{
		Message: "multiple accounts found in the shared token cache; specify a username and/or tenant ID to select one",
	}
}

func noAccounts(username, tenant string) string {
	msg := "no account found in the shared token cache"
	if username != "" || tenant != "" {
		selectors := []string{}
		if username != "" {
			selectors = append(selectors, fmt.Sprintf("username: %s", username))
		}
		if tenant != "" {
			selectors = append(selectors, fmt.Sprintf("tenant: %s", tenant))
		}
		msg = fmt.Sprintf("%s matching %s", msg, strings.Join(selectors, ", "))
	}
	return msg
}

var _ azcore.TokenCredential = (*SharedTokenCache)(nil)
