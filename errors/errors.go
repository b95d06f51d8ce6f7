// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

// Package errors defines the error types returned by this module. There are
// three kinds: CredentialUnavailableError when the shared cache cannot supply
// a token for the configured account, InvalidArgumentError when the caller
// violated a precondition, and CallErr when the token endpoint rejected an
// exchange. CallErr is never produced and never retried by the credential, it
// passes through from the transport unmodified.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kylelemons/godebug/pretty"
)

var prettyConf = &pretty.Config{IncludeUnexported: false, SkipZeroFields: true, TrackCycles: true}

type verboser interface {
	Verbose() string
}

// Verbose prints the most verbose error that the error message has.
func Verbose(err error) string {
	if v, ok := err.(verboser); ok {
		return v.Verbose()
	}
	return err.Error()
}

// New is equivalent to errors.New().
func New(text string) error {
	return errors.New(text)
}

// CredentialUnavailableError indicates the shared cache cannot currently
// supply a token: the cache is absent, no account matches the configured
// selectors, the match is ambiguous, or the account has no refresh token.
// Callers may treat it as a signal to fall back to another credential source.
type CredentialUnavailableError struct {
	Message string
}

// Error implements error.
func (e CredentialUnavailableError) Error() string {
	return e.Message
}

// InvalidArgumentError indicates the caller violated a precondition, such as
// requesting a token with no scopes. No cache or network access was performed.
type InvalidArgumentError struct {
	Message string
}

// Error implements error.
func (e InvalidArgumentError) Error() string {
	return e.Message
}

// IsCredentialUnavailable reports whether err is a CredentialUnavailableError.
func IsCredentialUnavailable(err error) bool {
	var cu CredentialUnavailableError
	return errors.As(err, &cu)
}

// CallErr represents an HTTP call error. Has a Verbose() method that allows getting the
// http.Request and Response objects. Implements error.
type CallErr struct {
	Req  *http.Request
	Resp *http.Response
	Err  error
}

// Error implements error.Error().
func (e CallErr) Error() string {
	return e.Err.Error()
}

// Verbose prints a verbose error message with the request or response.
func (e CallErr) Verbose() string {
	if e.Resp != nil {
		e.Resp.Request = nil // the embedded request drags in TLS state we don't want printed
		e.Resp.TLS = nil
	}
	return fmt.Sprintf("%s:\nRequest:\n%s\nResponse:\n%s", e.Err, prettyConf.Sprint(e.Req), prettyConf.Sprint(e.Resp))
}
