// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/json"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/xenv"
)

// Receipt is a scheduled action waiting for execution.
type Receipt struct {
	ID          uint64
	Predecessor berry.AccountID
	Signer      berry.AccountID
	Action      xenv.Action

	// results delivered by the awaited receipt
	results []xenv.PromiseResult
}

// ReceiptOutcome is the execution record of one receipt.
type ReceiptOutcome struct {
	ID          uint64             `json:"id"`
	Predecessor berry.AccountID    `json:"predecessor"`
	Receiver    berry.AccountID    `json:"receiver"`
	Kind        string             `json:"kind"`
	Method      string             `json:"method,omitempty"`
	Deposit     berry.U128         `json:"deposit"`
	Status      xenv.PromiseStatus `json:"status"`
	Value       json.RawMessage    `json:"value,omitempty"`
	Error       string             `json:"error,omitempty"`
	ForwardedTo uint64             `json:"forwardedTo,omitempty"` // the receipt whose result replaces this one
	Spawned     []uint64           `json:"spawned,omitempty"`
	Logs        []string           `json:"logs,omitempty"`
	StateDigest berry.Bytes32      `json:"stateDigest"`
}

// Outcome is the result of a call and every receipt it caused.
type Outcome struct {
	Status   xenv.PromiseStatus `json:"status"`
	Value    json.RawMessage    `json:"value,omitempty"`
	Error    string             `json:"error,omitempty"`
	Receipts []*ReceiptOutcome  `json:"receipts"`
}

// Logs returns the logs of all receipts in execution order.
func (o *Outcome) Logs() []string {
	var logs []string
	for _, r := range o.Receipts {
		logs = append(logs, r.Logs...)
	}
	return logs
}

// Succeeded reports whether the final result is successful.
func (o *Outcome) Succeeded() bool {
	return o.Status == xenv.Successful
}

// Transfers returns the native value transfer receipts executed.
func (o *Outcome) Transfers() []*ReceiptOutcome {
	var transfers []*ReceiptOutcome
	for _, r := range o.Receipts {
		if r.Kind == xenv.TransferAction.String() {
			transfers = append(transfers, r)
		}
	}
	return transfers
}
