// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"encoding/json"

	"github.com/holiman/uint256"

	"github.com/berryfarm/farm/berry"
)

// ActionKind is the kind of a scheduled action.
type ActionKind uint8

const (
	FunctionCallAction ActionKind = iota + 1
	TransferAction
)

func (k ActionKind) String() string {
	switch k {
	case FunctionCallAction:
		return "function_call"
	case TransferAction:
		return "transfer"
	default:
		return "unknown"
	}
}

// Action is an outgoing call or value transfer.
type Action struct {
	Kind     ActionKind
	Receiver berry.AccountID
	Method   string
	Args     []byte
	Deposit  *uint256.Int
	Gas      berry.Gas
}

// Promise is a handle of a scheduled action. The action runs as a separate
// receipt after the current one is committed.
type Promise struct {
	index  int
	env    *Environment
	after  *Promise
	Action Action
}

// Index returns the creation index of the promise within its receipt.
func (p *Promise) Index() int {
	return p.index
}

// After returns the promise this one waits for, or nil.
func (p *Promise) After() *Promise {
	return p.after
}

// Then makes next run only after p completes, receiving p's result.
// It returns next for chaining.
func (p *Promise) Then(next *Promise) *Promise {
	if next.env != p.env {
		panic("promises of different receipts")
	}
	if next.after != nil {
		panic("promise already chained")
	}
	next.after = p
	return next
}

// PromiseStatus is the status of a delivered promise result.
type PromiseStatus uint8

const (
	NotReady PromiseStatus = iota
	Successful
	Failed
)

func (s PromiseStatus) String() string {
	switch s {
	case Successful:
		return "successful"
	case Failed:
		return "failed"
	default:
		return "not_ready"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s PromiseStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PromiseResult is the outcome of an awaited receipt.
type PromiseResult struct {
	Status PromiseStatus
	Value  []byte
}

// Decode parses the successful value as JSON into v.
// It returns false for failed results or undecodable values.
func (r PromiseResult) Decode(v any) bool {
	if r.Status != Successful {
		return false
	}
	return json.Unmarshal(r.Value, v) == nil
}

// Return is the outcome of an entry point: a value or a promise whose
// result becomes the receipt's result.
type Return struct {
	Value   []byte
	Promise *Promise
}

// ReturnValue encodes v as JSON.
func ReturnValue(v any) (*Return, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Return{Value: data}, nil
}

// ReturnPromise forwards the result of p.
func ReturnPromise(p *Promise) *Return {
	return &Return{Promise: p}
}

// ReturnNone returns no value.
func ReturnNone() *Return {
	return &Return{}
}
