// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/holiman/uint256"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/xenv"
)

// FtOnTransferArgs are the arguments of the receiver notification.
type FtOnTransferArgs struct {
	SenderID berry.AccountID `json:"sender_id"`
	Amount   berry.U128      `json:"amount"`
	Msg      string          `json:"msg"`
}

// FtResolveTransferArgs are the arguments of the transfer resolution.
type FtResolveTransferArgs struct {
	SenderID   berry.AccountID `json:"sender_id"`
	ReceiverID berry.AccountID `json:"receiver_id"`
	Amount     berry.U128      `json:"amount"`
}

// FtTransferCall credits receiver and notifies it, then resolves how much of the
// amount it actually used. The returned promise yields the used amount.
func (f *Farm) FtTransferCall(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int, memo *string, msg string) (*xenv.Promise, error) {
	if err := env.AssertOneYocto(); err != nil {
		return nil, err
	}
	if env.PrepaidGas() <= berry.GasForFtTransferCall {
		return nil, reverts.NewValidation("not enough gas attached, attach more than %d TGas", berry.GasForFtTransferCall/berry.TGas)
	}
	g, err := f.loadGlobals()
	if err != nil {
		return nil, err
	}
	sender, err := f.transfer(env, g, receiver, amount)
	if err != nil {
		return nil, err
	}
	if memo != nil {
		env.Log("Memo: %s", *memo)
	}

	notify, err := env.FunctionCall(receiver, "ft_on_transfer", &FtOnTransferArgs{
		SenderID: sender,
		Amount:   berry.U128From(amount),
		Msg:      msg,
	}, berry.NoDeposit, env.PrepaidGas()-berry.GasForFtTransferCall)
	if err != nil {
		return nil, err
	}
	resolve, err := env.FunctionCall(env.CurrentAccountID(), "ft_resolve_transfer", &FtResolveTransferArgs{
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     berry.U128From(amount),
	}, berry.NoDeposit, berry.GasForResolveTransfer)
	if err != nil {
		return nil, err
	}
	metricTransfers().AddWithLabel(1, map[string]string{"protocol": "callback"})
	return notify.Then(resolve), nil
}

// FtResolveTransfer settles a callback transfer and returns the used amount.
// The refund is capped by what the receiver still holds, so funds the receiver
// already moved on are not returned.
func (f *Farm) FtResolveTransfer(env *xenv.Environment, sender, receiver berry.AccountID, amount *uint256.Int) (berry.U128, error) {
	if err := env.AssertPrivate("ft_resolve_transfer"); err != nil {
		return berry.U128{}, err
	}

	unused := new(uint256.Int).Set(amount)
	var declared berry.U128
	if env.PromiseResult(0).Decode(&declared) {
		unused = berry.MinU128(declared.Int(), amount)
	}
	if unused.IsZero() {
		return berry.U128From(amount), nil
	}

	g, err := f.loadGlobals()
	if err != nil {
		return berry.U128{}, err
	}
	rhash, racc, err := f.getOrCreateAndTouch(g, receiver)
	if err != nil {
		return berry.U128{}, err
	}
	if racc.CucumberBalance.IsZero() {
		return berry.U128From(amount), nil
	}

	refund := berry.MinU128(racc.CucumberBalance, unused)
	racc.CucumberBalance = new(uint256.Int).Sub(racc.CucumberBalance, refund)
	if err := f.save(rhash, racc); err != nil {
		return berry.U128{}, err
	}
	shash, sacc, err := f.getOrCreateAndTouch(g, sender)
	if err != nil {
		return berry.U128{}, err
	}
	bal, err := berry.AddU128(sacc.CucumberBalance, refund)
	if err != nil {
		return berry.U128{}, err
	}
	sacc.CucumberBalance = bal
	if err := f.save(shash, sacc); err != nil {
		return berry.U128{}, err
	}
	env.Log("Refund 🥒%s from %s to %s", refund.Dec(), receiver, sender)
	metricRefunds().Add(1)

	return berry.U128From(new(uint256.Int).Sub(amount, refund)), nil
}

// FtTotalSupply returns the total of all cucumber balances.
func (f *Farm) FtTotalSupply() (berry.U128, error) {
	g, err := f.loadGlobals()
	if err != nil {
		return berry.U128{}, err
	}
	return berry.U128From(g.TotalCucumberBalance), nil
}

// FtBalanceOf returns the cucumber balance of id, zero when unregistered.
func (f *Farm) FtBalanceOf(id berry.AccountID) (berry.U128, error) {
	acc, err := f.Get(id)
	if err != nil {
		return berry.U128{}, err
	}
	if acc == nil {
		return berry.U128{}, nil
	}
	return berry.U128From(acc.CucumberBalance), nil
}
