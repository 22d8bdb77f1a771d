// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contracts

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/berryfarm/farm/api/utils"
	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/runtime"
)

// CallBody represents contract-call body.
type CallBody struct {
	Signer  berry.AccountID `json:"signer"`
	Method  string          `json:"method"`
	Args    json.RawMessage `json:"args,omitempty"`
	Deposit *berry.U128     `json:"deposit,omitempty"`
	Gas     berry.Gas       `json:"gas,omitempty"`
}

// ViewBody represents contract-view body.
type ViewBody struct {
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Contracts calls and views hosted contracts.
type Contracts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Contracts {
	return &Contracts{rt}
}

func (c *Contracts) handleCallContract(w http.ResponseWriter, req *http.Request) error {
	receiver, err := berry.ParseAccountID(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	var body CallBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Signer == "" {
		return utils.BadRequest(errors.New("body: signer is required"))
	}
	if body.Method == "" {
		return utils.BadRequest(errors.New("body: method is required"))
	}
	var deposit = berry.NewU128(0)
	if body.Deposit != nil {
		deposit = *body.Deposit
	}

	outcome, err := c.rt.Call(req.Context(), body.Signer, receiver, body.Method, body.Args, deposit.Int(), body.Gas)
	if err != nil {
		if errors.Is(err, runtime.ErrInsufficientBalance) {
			return utils.BadRequest(err)
		}
		return err
	}
	return utils.WriteJSON(w, outcome)
}

func (c *Contracts) handleViewContract(w http.ResponseWriter, req *http.Request) error {
	receiver, err := berry.ParseAccountID(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	var body ViewBody
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Method == "" {
		return utils.BadRequest(errors.New("body: method is required"))
	}

	value, err := c.rt.View(receiver, body.Method, body.Args)
	if err != nil {
		return utils.Revert(err)
	}
	if value == nil {
		value = json.RawMessage("null")
	}
	return utils.WriteJSON(w, value)
}

func (c *Contracts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{id}/call").
		Methods(http.MethodPost).
		Name("POST /contracts/{id}/call").
		HandlerFunc(utils.WrapHandlerFunc(c.handleCallContract))
	sub.Path("/{id}/view").
		Methods(http.MethodPost).
		Name("POST /contracts/{id}/view").
		HandlerFunc(utils.WrapHandlerFunc(c.handleViewContract))
}
