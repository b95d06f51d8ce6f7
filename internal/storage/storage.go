// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

// Package storage holds the in-memory representation of one partition of the
// shared token cache. A partition is populated once from persistent storage
// via Unmarshal() and is read-only afterwards: this module consumes cached
// tokens, it never writes any back. The JSON schema (Contract) is shared
// between MSAL implementations in multiple languages and must not change.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AzureAD/shared-token-cache-for-go/internal/shared"
)

const scopeSeparator = " "

// Partition is one loaded partition of the shared cache (standard or CAE).
// The zero value is an empty partition. Reads after Unmarshal need no
// locking; the loader in the credential package guards initialization.
type Partition struct {
	contract *Contract
}

// New is the constructor for Partition.
func New() *Partition {
	return &Partition{contract: NewContract()}
}

// Unmarshal implements cache.Unmarshaler, replacing all data in the partition
// with the serialized cache in b.
func (p *Partition) Unmarshal(b []byte) error {
	contract := NewContract()
	if err := json.Unmarshal(b, contract); err != nil {
		return fmt.Errorf("shared cache could not be deserialized: %w", err)
	}
	p.contract = contract
	return nil
}

// Accounts returns the accounts in the partition matching the given
// selectors. An empty username or realm matches any account.
func (p *Partition) Accounts(username, realm string) []shared.Account {
	var accounts []shared.Account
	for _, acc := range p.contract.Accounts {
		// other writers of the shared cache can leave empty entries behind
		if acc.IsZero() {
			continue
		}
		if username != "" && !strings.EqualFold(acc.PreferredUsername, username) {
			continue
		}
		if realm != "" && acc.Realm != realm {
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts
}

// ReadAccessToken returns a cached access token for the account whose scopes
// cover every requested scope and that is not within the expiry margin of
// expiring. It returns an error when no such token exists.
func (p *Partition) ReadAccessToken(account shared.Account, scopes []string) (AccessToken, error) {
	for _, at := range p.contract.AccessTokens {
		if at.HomeAccountID != account.HomeAccountID {
			continue
		}
		if !isMatchingScopes(scopes, at.Scopes) {
			continue
		}
		if err := at.Validate(); err != nil {
			continue
		}
		return at, nil
	}
	return AccessToken{}, fmt.Errorf("access token not found")
}

// ReadRefreshTokens returns all cached refresh tokens for the account.
func (p *Partition) ReadRefreshTokens(account shared.Account) []RefreshToken {
	var rts []RefreshToken
	for _, rt := range p.contract.RefreshTokens {
		if rt.HomeAccountID == account.HomeAccountID {
			rts = append(rts, rt)
		}
	}
	return rts
}

// isMatchingScopes reports whether every requested scope appears in the
// cached token's space-separated target. Comparison is case insensitive.
func isMatchingScopes(scopes []string, target string) bool {
	cached := strings.Split(target, scopeSeparator)
	scopeCounter := 0
	for _, scope := range scopes {
		for _, otherScope := range cached {
			if strings.EqualFold(scope, otherScope) {
				scopeCounter++
				break
			}
		}
	}
	return scopeCounter == len(scopes)
}
