// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package restutil holds the helpers shared by the REST handlers.
package restutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/manaproject/mana/auth"
	"github.com/manaproject/mana/builtin/reverts"
)

// RevertHeader carries the revert kind of a rejected operation.
const RevertHeader = "x-mana-revert"

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return HTTPError(cause, http.StatusForbidden)
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return HTTPError(cause, http.StatusNotFound)
}

// StatusOf maps an error to its response status.
func StatusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	switch reverts.KindOf(err) {
	case reverts.Unauthorized:
		return http.StatusForbidden
	case reverts.InvalidState, reverts.NotEligible:
		return http.StatusConflict
	case reverts.LedgerFailure:
		return http.StatusPaymentRequired
	}
	var nerr *auth.NonceError
	if errors.As(err, &nerr) {
		return http.StatusConflict
	}
	if errors.Is(err, auth.ErrInvalidSignature) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// The status of the response is decided by StatusOf.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		if kind := reverts.KindOf(err); kind != 0 {
			w.Header().Set(RevertHeader, kind.String())
		}
		http.Error(w, err.Error(), StatusOf(err))
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any

// ParseEnvelope reads a signed envelope from the request body.
func ParseEnvelope(r io.Reader) (*auth.Envelope, error) {
	var env auth.Envelope
	if err := ParseJSON(r, &env); err != nil {
		return nil, BadRequest(err)
	}
	return &env, nil
}
