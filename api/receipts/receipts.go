// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package receipts

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/berryfarm/farm/api/utils"
	"github.com/berryfarm/farm/runtime"
)

// Receipts serves outcomes of recently executed receipts.
type Receipts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Receipts {
	return &Receipts{rt}
}

func (r *Receipts) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	out, ok := r.rt.Receipt(id)
	if !ok {
		return utils.NotFound(errors.New("receipt not found"))
	}
	return utils.WriteJSON(w, out)
}

func (r *Receipts) handleGetPending(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, utils.M{"pending": r.rt.Pending()})
}

func (r *Receipts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pending").
		Methods(http.MethodGet).
		Name("GET /receipts/pending").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetPending))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /receipts/{id}").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetReceipt))
}
