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

// debitSender checks that the caller can send amount to receiver and returns the
// settled sender account with the debit applied. Nothing is saved.
func (f *Farm) debitSender(env *xenv.Environment, g *Globals, receiver berry.AccountID, amount *uint256.Int) (berry.AccountID, berry.AccountHash, *Account, error) {
	if amount.IsZero() {
		return "", berry.AccountHash{}, nil, reverts.NewValidation("transfer amount should be positive")
	}
	sender := env.PredecessorAccountID()
	if sender == receiver {
		return "", berry.AccountHash{}, nil, reverts.NewValidation("receiver must differ from sender")
	}

	hash, acc, err := f.getOrCreateAndTouch(g, sender)
	if err != nil {
		return "", hash, nil, err
	}
	if acc.CucumberBalance.Lt(amount) {
		return "", hash, nil, reverts.NewInsufficientBalance("insufficient balance")
	}
	acc.CucumberBalance = new(uint256.Int).Sub(acc.CucumberBalance, amount)
	return sender, hash, acc, nil
}

// withdrawFromSender debits amount from the caller, who must differ from receiver.
func (f *Farm) withdrawFromSender(env *xenv.Environment, g *Globals, receiver berry.AccountID, amount *uint256.Int) (berry.AccountID, error) {
	sender, hash, acc, err := f.debitSender(env, g, receiver, amount)
	if err != nil {
		return "", err
	}
	if err := f.save(hash, acc); err != nil {
		return "", err
	}
	return sender, nil
}

// requireRegistered fails when a non-zero amount is bound for an unknown account.
func (f *Farm) requireRegistered(receiver berry.AccountID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	_, exists, err := f.getAccount(receiver.Hash())
	if err != nil {
		return err
	}
	if !exists {
		return reverts.NewNotFound("receiver account doesn't exist")
	}
	return nil
}

// depositToAccount credits amount to a registered account. Zero is a no-op.
func (f *Farm) depositToAccount(g *Globals, receiver berry.AccountID, amount *uint256.Int) error {
	if err := f.requireRegistered(receiver, amount); err != nil || amount.IsZero() {
		return err
	}
	hash := receiver.Hash()
	acc, _, err := f.getAccount(hash)
	if err != nil {
		return err
	}
	if err := touch(g, acc); err != nil {
		return err
	}
	bal, err := berry.AddU128(acc.CucumberBalance, amount)
	if err != nil {
		return err
	}
	acc.CucumberBalance = bal
	return f.save(hash, acc)
}

// transfer moves amount from the caller to receiver in one step.
// All checks pass before either account is written.
func (f *Farm) transfer(env *xenv.Environment, g *Globals, receiver berry.AccountID, amount *uint256.Int) (berry.AccountID, error) {
	sender, hash, acc, err := f.debitSender(env, g, receiver, amount)
	if err != nil {
		return "", err
	}
	if err := f.requireRegistered(receiver, amount); err != nil {
		return "", err
	}
	if err := f.save(hash, acc); err != nil {
		return "", err
	}
	if err := f.depositToAccount(g, receiver, amount); err != nil {
		return "", err
	}
	env.Log("Transfer 🥒%s from %s to %s", amount.Dec(), sender, receiver)
	return sender, nil
}

// FtTransfer is the plain transfer. It requires exactly one yocto attached.
func (f *Farm) FtTransfer(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int, memo *string) error {
	if err := env.AssertOneYocto(); err != nil {
		return err
	}
	g, err := f.loadGlobals()
	if err != nil {
		return err
	}
	if _, err := f.transfer(env, g, receiver, amount); err != nil {
		return err
	}
	if memo != nil {
		env.Log("Memo: %s", *memo)
	}
	metricTransfers().AddWithLabel(1, map[string]string{"protocol": "direct"})
	return nil
}

// TransferRaw is the legacy plain transfer. It requires a non-zero deposit attached.
func (f *Farm) TransferRaw(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int) error {
	if err := env.AssertPaid(); err != nil {
		return err
	}
	g, err := f.loadGlobals()
	if err != nil {
		return err
	}
	if _, err := f.transfer(env, g, receiver, amount); err != nil {
		return err
	}
	metricTransfers().AddWithLabel(1, map[string]string{"protocol": "raw"})
	return nil
}
