// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/log"
)

var logger = log.WithContext("pkg", "api")

// statusError is answered with its status instead of 500.
type statusError struct {
	cause  error
	status int
}

func (e *statusError) Error() string { return e.cause.Error() }
func (e *statusError) Unwrap() error { return e.cause }

func BadRequest(cause error) error {
	return &statusError{cause, http.StatusBadRequest}
}

func NotFound(cause error) error {
	return &statusError{cause, http.StatusNotFound}
}

// Revert maps a contract revert to a client error. Other errors pass through.
func Revert(err error) error {
	switch reverts.KindOf(err) {
	case 0:
		return err
	case reverts.NotFound:
		return NotFound(err)
	default:
		return BadRequest(err)
	}
}

// StatusOf returns the status err is answered with.
func StatusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return http.StatusInternalServerError
}

// HandlerFunc is an http.HandlerFunc that may fail.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc answers errors returned by f in plain text.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		status := StatusOf(err)
		if status >= http.StatusInternalServerError {
			logger.Warn("request failed", "method", r.Method, "uri", r.URL.String(), "err", err)
		}
		http.Error(w, err.Error(), status)
	}
}

const JSONContentType = "application/json; charset=utf-8"

// ParseJSON decodes a JSON body, rejecting unknown fields.
func ParseJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

type M map[string]any
