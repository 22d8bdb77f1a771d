// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package banana

import (
	"github.com/holiman/uint256"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/farm"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/xenv"
)

// FtTransferCall credits receiver, calls its ft_on_transfer and resolves the unused amount.
func (t *Token) FtTransferCall(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int, memo *string, msg string) (*xenv.Promise, error) {
	if env.PrepaidGas() <= berry.GasForFtTransferCall {
		return nil, reverts.NewValidation("not enough gas attached, attach more than %d TGas", berry.GasForFtTransferCall/berry.TGas)
	}
	if err := t.FtTransfer(env, receiver, amount, memo); err != nil {
		return nil, err
	}
	sender := env.PredecessorAccountID()
	notify, err := env.FunctionCall(receiver, "ft_on_transfer", &farm.FtOnTransferArgs{
		SenderID: sender,
		Amount:   berry.U128From(amount),
		Msg:      msg,
	}, berry.NoDeposit, env.PrepaidGas()-berry.GasForFtTransferCall)
	if err != nil {
		return nil, err
	}
	resolve, err := env.FunctionCall(env.CurrentAccountID(), "ft_resolve_transfer", &farm.FtResolveTransferArgs{
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     berry.U128From(amount),
	}, berry.NoDeposit, berry.GasForResolveTransfer)
	if err != nil {
		return nil, err
	}
	return notify.Then(resolve), nil
}

// FtResolveTransfer refunds the unused amount the receiver still holds and returns the used amount.
func (t *Token) FtResolveTransfer(env *xenv.Environment, sender, receiver berry.AccountID, amount *uint256.Int) (berry.U128, error) {
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
	bal, err := t.balance(receiver)
	if err != nil {
		return berry.U128{}, err
	}
	if bal == nil || bal.IsZero() {
		return berry.U128From(amount), nil
	}
	refund := berry.MinU128(bal, unused)
	if err := t.requireRegistered(sender, refund); err != nil {
		return berry.U128{}, err
	}
	if err := t.setBalance(receiver, new(uint256.Int).Sub(bal, refund)); err != nil {
		return berry.U128{}, err
	}
	if err := t.deposit(sender, refund); err != nil {
		return berry.U128{}, err
	}
	env.Log("Refund 🍌%s from %s to %s", refund.Dec(), receiver, sender)
	return berry.U128From(new(uint256.Int).Sub(amount, refund)), nil
}

// TransferWithVault escrows amount in a new vault, notifies receiver and resolves the vault.
func (t *Token) TransferWithVault(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int, payload string) (*xenv.Promise, error) {
	if err := env.AssertPaid(); err != nil {
		return nil, err
	}
	var gasToReceiver berry.Gas
	if reserved := berry.GasForRemainingCompute + berry.GasForCallback; env.PrepaidGas() > reserved {
		gasToReceiver = env.PrepaidGas() - reserved
	}
	if gasToReceiver < berry.MinGasForReceiver {
		return nil, reverts.NewValidation("not enough gas attached, attach at least 40 TGas")
	}
	g, err := t.loadGlobals()
	if err != nil {
		return nil, err
	}
	sender, err := t.withdraw(env, receiver, amount)
	if err != nil {
		return nil, err
	}
	id := g.NextVaultID
	g.NextVaultID = id.Next()
	if err := t.globals.Set(g); err != nil {
		return nil, err
	}
	if err := t.vaults.Set(id, &vault{ReceiverHash: receiver.Hash(), Balance: new(uint256.Int).Set(amount)}); err != nil {
		return nil, err
	}

	notify, err := env.FunctionCall(receiver, "on_receive_with_vault", &farm.OnReceiveWithVaultArgs{
		SenderID: sender,
		Amount:   berry.U128From(amount),
		VaultID:  id,
		Payload:  payload,
	}, berry.NoDeposit, gasToReceiver)
	if err != nil {
		return nil, err
	}
	resolve, err := env.FunctionCall(env.CurrentAccountID(), "resolve_vault", &farm.ResolveVaultArgs{
		VaultID:  id,
		SenderID: sender,
	}, berry.NoDeposit, berry.GasForCallback)
	if err != nil {
		return nil, err
	}
	return notify.Then(resolve), nil
}

// WithdrawFromVault draws amount from a vault owned by the caller into receiver.
func (t *Token) WithdrawFromVault(env *xenv.Environment, id berry.VaultID, receiver berry.AccountID, amount *uint256.Int) error {
	v, exists, err := t.vaults.Get(id)
	if err != nil {
		return err
	}
	if !exists {
		return reverts.NewNotFound("vault doesn't exist")
	}
	if env.PredecessorAccountID().Hash() != v.ReceiverHash {
		return reverts.NewAuthorization("vault not owned by caller")
	}
	if v.Balance == nil || v.Balance.Lt(amount) {
		return reverts.NewInsufficientBalance("not enough balance in the vault")
	}
	if err := t.requireRegistered(receiver, amount); err != nil {
		return err
	}
	v.Balance = new(uint256.Int).Sub(v.Balance, amount)
	if err := t.vaults.Set(id, v); err != nil {
		return err
	}
	return t.deposit(receiver, amount)
}

// ResolveVault removes the vault and returns the remainder to sender.
func (t *Token) ResolveVault(env *xenv.Environment, id berry.VaultID, sender berry.AccountID) (berry.U128, error) {
	if err := env.AssertPrivate("resolve_vault"); err != nil {
		return berry.U128{}, err
	}
	v, exists, err := t.vaults.Get(id)
	if err != nil {
		return berry.U128{}, err
	}
	if !exists {
		return berry.U128{}, reverts.NewNotFound("vault doesn't exist")
	}
	if v.Balance == nil {
		t.vaults.Delete(id)
		return berry.U128{}, nil
	}
	if err := t.requireRegistered(sender, v.Balance); err != nil {
		return berry.U128{}, err
	}
	t.vaults.Delete(id)
	if err := t.deposit(sender, v.Balance); err != nil {
		return berry.U128{}, err
	}
	return berry.U128From(v.Balance), nil
}
