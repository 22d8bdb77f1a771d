// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/state"
)

// ReceiptContext describes the receipt being executed.
type ReceiptContext struct {
	ID          uint64
	Current     berry.AccountID // the account whose code runs
	Predecessor berry.AccountID // the immediate caller
	Signer      berry.AccountID // the account that signed the originating call
	Deposit     *uint256.Int
	PrepaidGas  berry.Gas
}

// Environment an env to execute native method.
type Environment struct {
	ctx      *ReceiptContext
	state    *state.State
	results  []PromiseResult
	promises []*Promise
	logs     []string
}

// New create a new env.
func New(ctx *ReceiptContext, state *state.State, results []PromiseResult) *Environment {
	if ctx.Deposit == nil {
		ctx.Deposit = new(uint256.Int)
	}
	return &Environment{
		ctx:     ctx,
		state:   state,
		results: results,
	}
}

func (env *Environment) State() *state.State                   { return env.state }
func (env *Environment) ReceiptContext() *ReceiptContext       { return env.ctx }
func (env *Environment) CurrentAccountID() berry.AccountID     { return env.ctx.Current }
func (env *Environment) PredecessorAccountID() berry.AccountID { return env.ctx.Predecessor }
func (env *Environment) SignerAccountID() berry.AccountID      { return env.ctx.Signer }
func (env *Environment) PrepaidGas() berry.Gas                 { return env.ctx.PrepaidGas }

// AttachedDeposit returns a copy of the attached native deposit.
func (env *Environment) AttachedDeposit() *uint256.Int {
	return new(uint256.Int).Set(env.ctx.Deposit)
}

// PromiseResultsCount returns the count of results delivered to this receipt.
func (env *Environment) PromiseResultsCount() int {
	return len(env.results)
}

// PromiseResult returns the i-th delivered result.
func (env *Environment) PromiseResult(i int) PromiseResult {
	if i < 0 || i >= len(env.results) {
		return PromiseResult{Status: NotReady}
	}
	return env.results[i]
}

// Log emits a contract log line.
func (env *Environment) Log(format string, args ...any) {
	env.logs = append(env.logs, fmt.Sprintf(format, args...))
}

// Logs returns the emitted log lines.
func (env *Environment) Logs() []string {
	return env.logs
}

// FunctionCall schedules a call of method on receiver. args are encoded as JSON.
func (env *Environment) FunctionCall(receiver berry.AccountID, method string, args any, deposit *uint256.Int, gas berry.Gas) (*Promise, error) {
	var data []byte
	if args != nil {
		var err error
		if data, err = json.Marshal(args); err != nil {
			return nil, errors.Wrap(err, "encode args")
		}
	}
	return env.newPromise(Action{
		Kind:     FunctionCallAction,
		Receiver: receiver,
		Method:   method,
		Args:     data,
		Deposit:  copyOrZero(deposit),
		Gas:      gas,
	}), nil
}

// Transfer schedules a one-way native value transfer to receiver.
func (env *Environment) Transfer(receiver berry.AccountID, amount *uint256.Int) *Promise {
	return env.newPromise(Action{
		Kind:     TransferAction,
		Receiver: receiver,
		Deposit:  copyOrZero(amount),
	})
}

// Promises returns all promises created by the receipt in creation order.
func (env *Environment) Promises() []*Promise {
	return env.promises
}

func (env *Environment) newPromise(action Action) *Promise {
	p := &Promise{
		index:  len(env.promises),
		env:    env,
		Action: action,
	}
	env.promises = append(env.promises, p)
	return p
}

// AssertOneYocto requires exactly one yocto attached.
func (env *Environment) AssertOneYocto() error {
	if !env.ctx.Deposit.Eq(berry.OneYocto) {
		return reverts.NewValidation("requires attached deposit of exactly 1 yoctoNEAR")
	}
	return nil
}

// AssertPaid requires a non-zero deposit attached.
func (env *Environment) AssertPaid() error {
	if env.ctx.Deposit.IsZero() {
		return reverts.NewValidation("requires a deposit of at least 1 yoctoNEAR to prevent function access key calls")
	}
	return nil
}

// AssertPrivate requires the caller to be the current account.
func (env *Environment) AssertPrivate(method string) error {
	if env.ctx.Predecessor != env.ctx.Current {
		return reverts.NewAuthorization(fmt.Sprintf("method %s is private", method))
	}
	return nil
}

func copyOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
