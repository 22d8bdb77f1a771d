// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berryfarm/farm/api/accounts"
	"github.com/berryfarm/farm/test/testhost"
)

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func TestAccounts(t *testing.T) {
	host := testhost.New(t)
	router := mux.NewRouter()
	accounts.New(host.Runtime).Mount(router, "/accounts")
	ts := httptest.NewServer(router)
	defer ts.Close()

	res, code := httpGet(t, ts.URL+"/accounts/"+string(testhost.Bob))
	require.Equal(t, http.StatusOK, code, string(res))
	var acc accounts.Account
	require.NoError(t, json.Unmarshal(res, &acc))
	assert.Equal(t, testhost.Bob, acc.ID)
	assert.Equal(t, testhost.Bob.Hash(), acc.Hash)
	assert.Equal(t, testhost.NativeGenesis.Dec(), acc.Balance.String())

	res, code = httpGet(t, ts.URL+"/accounts/carol.near")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(res, &acc))
	assert.True(t, acc.Balance.IsZero())

	_, code = httpGet(t, ts.URL+"/accounts/Carol")
	assert.Equal(t, http.StatusBadRequest, code)
}
