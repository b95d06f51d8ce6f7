// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package exchange

import (
	"errors"

	internalTime "github.com/AzureAD/shared-token-cache-for-go/internal/types/time"

	"github.com/golang-jwt/jwt/v5"
)

// OAuthResponseBase is the base JSON response for all OAuth calls, carrying
// the error fields the token endpoint sets on rejection.
type OAuthResponseBase struct {
	Error            string `json:"error"`
	SubError         string `json:"suberror"`
	ErrorDescription string `json:"error_description"`
	ErrorCodes       []int  `json:"error_codes"`
	CorrelationID    string `json:"correlation_id"`
	Claims           string `json:"claims"`
}

// TokenResponse is the information returned by the token endpoint for a
// refresh token grant.
type TokenResponse struct {
	OAuthResponseBase

	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`

	FamilyID  string                    `json:"foci"`
	Scope     string                    `json:"scope"`
	ExpiresOn internalTime.DurationTime `json:"expires_in"`

	// ClientInfo is the raw base64 client_info blob carrying the home
	// account identifiers.
	ClientInfo string `json:"client_info"`
}

// Validate validates the TokenResponse has the minimum set of fields.
func (tr TokenResponse) Validate() error {
	if tr.AccessToken == "" {
		return errors.New("response is missing access_token")
	}
	return nil
}

// Username extracts preferred_username from the ID token, if one was
// returned. The token is not signature-verified; it came over TLS from the
// issuer and is used for logging and account display only.
func (tr TokenResponse) Username() string {
	if tr.IDToken == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tr.IDToken, claims); err != nil {
		return ""
	}
	username, _ := claims["preferred_username"].(string)
	return username
}
