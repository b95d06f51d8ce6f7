// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AzureAD/shared-token-cache-for-go/internal/shared"
	internalTime "github.com/AzureAD/shared-token-cache-for-go/internal/types/time"
)

// Contract is the JSON structure written to storage when serializing the
// shared cache. This design is shared between MSAL implementations in many
// languages and cannot be changed here. This module only ever reads it; the
// IdToken and AppMetadata sections are tolerated but unused.
type Contract struct {
	AccessTokens  map[string]AccessToken    `json:"AccessToken"`
	RefreshTokens map[string]RefreshToken   `json:"RefreshToken"`
	Accounts      map[string]shared.Account `json:"Account"`
}

// NewContract is the constructor for Contract.
func NewContract() *Contract {
	return &Contract{
		AccessTokens:  map[string]AccessToken{},
		RefreshTokens: map[string]RefreshToken{},
		Accounts:      map[string]shared.Account{},
	}
}

// AccessToken is the JSON representation of a cached access token.
type AccessToken struct {
	HomeAccountID  string `json:"home_account_id,omitempty"`
	Environment    string `json:"environment,omitempty"`
	Realm          string `json:"realm,omitempty"`
	CredentialType string `json:"credential_type,omitempty"`
	ClientID       string `json:"client_id,omitempty"`
	Secret         string `json:"secret,omitempty"`
	Scopes         string `json:"target,omitempty"`

	ExpiresOn internalTime.Unix `json:"expires_on,omitempty"`
	CachedAt  internalTime.Unix `json:"cached_at,omitempty"`
}

// NewAccessToken is the constructor for AccessToken.
func NewAccessToken(homeID, env, realm, clientID string, cachedAt, expiresOn time.Time, scopes, token string) AccessToken {
	return AccessToken{
		HomeAccountID:  homeID,
		Environment:    env,
		Realm:          realm,
		CredentialType: "AccessToken",
		ClientID:       clientID,
		Secret:         token,
		Scopes:         scopes,
		CachedAt:       internalTime.Unix{T: cachedAt.UTC()},
		ExpiresOn:      internalTime.Unix{T: expiresOn.UTC()},
	}
}

// Key outputs the key that can be used to uniquely look up this entry in a map.
func (a AccessToken) Key() string {
	return strings.Join(
		[]string{a.HomeAccountID, a.Environment, a.CredentialType, a.ClientID, a.Realm, a.Scopes},
		shared.CacheKeySeparator,
	)
}

// expiryDelta is the clock-skew safety margin applied when judging expiry.
const expiryDelta = 5 * time.Minute

// Validate validates that this AccessToken can be used.
func (a AccessToken) Validate() error {
	if a.CachedAt.T.After(time.Now()) {
		return errors.New("access token isn't valid, it was cached at a future time")
	}
	if a.ExpiresOn.T.Before(time.Now().Add(expiryDelta)) {
		return fmt.Errorf("access token is expired")
	}
	if a.CachedAt.T.IsZero() {
		return errors.New("access token does not have CachedAt set")
	}
	return nil
}

// RefreshToken is the JSON representation of a cached refresh token.
type RefreshToken struct {
	HomeAccountID  string `json:"home_account_id,omitempty"`
	Environment    string `json:"environment,omitempty"`
	CredentialType string `json:"credential_type,omitempty"`
	ClientID       string `json:"client_id,omitempty"`
	FamilyID       string `json:"family_id,omitempty"`
	Secret         string `json:"secret,omitempty"`
	Realm          string `json:"realm,omitempty"`
	Target         string `json:"target,omitempty"`
}

// NewRefreshToken is the constructor for RefreshToken.
func NewRefreshToken(homeID, env, clientID, refreshToken, familyID string) RefreshToken {
	return RefreshToken{
		HomeAccountID:  homeID,
		Environment:    env,
		CredentialType: "RefreshToken",
		ClientID:       clientID,
		FamilyID:       familyID,
		Secret:         refreshToken,
	}
}

// Key outputs the key that can be used to uniquely look up this entry in a map.
func (rt RefreshToken) Key() string {
	fourth := rt.FamilyID
	if fourth == "" {
		fourth = rt.ClientID
	}
	return strings.Join(
		[]string{rt.HomeAccountID, rt.Environment, rt.CredentialType, fourth},
		shared.CacheKeySeparator,
	)
}
