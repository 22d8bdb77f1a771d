// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/berryfarm/farm/api/utils"
	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/runtime"
)

// Account is the native view of an account.
type Account struct {
	ID      berry.AccountID   `json:"id"`
	Hash    berry.AccountHash `json:"hash"`
	Balance berry.U128        `json:"balance"`
}

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	id, err := berry.ParseAccountID(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	bal, err := a.rt.Balance(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Account{
		ID:      id,
		Hash:    id.Hash(),
		Balance: berry.U128From(bal),
	})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /accounts/{id}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
