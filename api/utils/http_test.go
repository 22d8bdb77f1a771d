// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/berryfarm/farm/builtin/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{BadRequest(errors.New("bad")), http.StatusBadRequest},
		{Revert(reverts.NewNotFound("vault doesn't exist")), http.StatusNotFound},
		{Revert(reverts.NewValidation("transfer amount should be positive")), http.StatusBadRequest},
		{Revert(errors.New("disk")), http.StatusInternalServerError},
		{errors.Wrap(NotFound(errors.New("receipt not found")), "lookup"), http.StatusNotFound},
	}
	for _, tt := range tests {
		h := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tt.status, rec.Code)
		if tt.err != nil {
			assert.Equal(t, tt.err.Error()+"\n", rec.Body.String())
		}
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}
