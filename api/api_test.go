// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berryfarm/farm/log"
	"github.com/berryfarm/farm/test/testhost"
)

func TestRouter(t *testing.T) {
	host := testhost.New(t)
	handler, closeFn := New(host.Runtime, Options{AllowedOrigins: "*"})
	ts := httptest.NewServer(handler)
	defer ts.Close()
	defer closeFn()

	res, code := httpGet(t, ts.URL+"/accounts/bob.near")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res), `"id":"bob.near"`)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/contracts/farm.near/view", strings.NewReader(`{"method":"get_stats"}`))
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	_, code = httpGet(t, ts.URL+"/debug/pprof/")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPprof(t *testing.T) {
	host := testhost.New(t)
	handler, closeFn := New(host.Runtime, Options{PprofOn: true})
	ts := httptest.NewServer(handler)
	defer ts.Close()
	defer closeFn()

	_, code := httpGet(t, ts.URL+"/debug/pprof/")
	assert.Equal(t, http.StatusOK, code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewLogger(log.NewHandler(&buf, log.Options{JSON: true}))

	handler := RequestLoggerHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)
		assert.Equal(t, "test body", body.String())
		w.WriteHeader(http.StatusAccepted)
	}), l)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString("test body")))

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Contains(t, buf.String(), `"URI":"/test"`)
	assert.Contains(t, buf.String(), `"Body":"test body"`)
	assert.Contains(t, buf.String(), `"status":202`)
}
