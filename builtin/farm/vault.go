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

// Vault escrows the amount of a vault transfer until it's resolved.
type Vault struct {
	ReceiverHash berry.AccountHash // only the receiver may draw from the vault
	Balance      *uint256.Int
}

// VaultView is the JSON view of a vault.
type VaultView struct {
	ReceiverHash berry.AccountHash `json:"receiver_id_hash"`
	Balance      berry.U128        `json:"balance"`
}

// OnReceiveWithVaultArgs are the arguments of the vault receiver notification.
type OnReceiveWithVaultArgs struct {
	SenderID berry.AccountID `json:"sender_id"`
	Amount   berry.U128      `json:"amount"`
	VaultID  berry.VaultID   `json:"vault_id"`
	Payload  string          `json:"payload"`
}

// ResolveVaultArgs are the arguments of the vault resolution.
type ResolveVaultArgs struct {
	VaultID  berry.VaultID   `json:"vault_id"`
	SenderID berry.AccountID `json:"sender_id"`
}

// WithdrawFromVaultArgs are the arguments of a vault withdrawal.
type WithdrawFromVaultArgs struct {
	VaultID    berry.VaultID   `json:"vault_id"`
	ReceiverID berry.AccountID `json:"receiver_id"`
	Amount     berry.U128      `json:"amount"`
}

func (f *Farm) getVault(id berry.VaultID) (*Vault, error) {
	v, exists, err := f.vaults.Get(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, reverts.NewNotFound("vault doesn't exist")
	}
	if v.Balance == nil {
		v.Balance = new(uint256.Int)
	}
	return v, nil
}

// TransferWithVault escrows amount from the caller in a new vault and notifies the receiver,
// which may draw from the vault until the resolution returns the remainder to the caller.
func (f *Farm) TransferWithVault(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int, payload string) (*xenv.Promise, error) {
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

	g, err := f.loadGlobals()
	if err != nil {
		return nil, err
	}
	sender, err := f.withdrawFromSender(env, g, receiver, amount)
	if err != nil {
		return nil, err
	}

	vaultID := g.NextVaultID
	g.NextVaultID = vaultID.Next()
	if err := f.saveGlobals(g); err != nil {
		return nil, err
	}
	if err := f.vaults.Set(vaultID, &Vault{
		ReceiverHash: receiver.Hash(),
		Balance:      new(uint256.Int).Set(amount),
	}); err != nil {
		return nil, err
	}

	notify, err := env.FunctionCall(receiver, "on_receive_with_vault", &OnReceiveWithVaultArgs{
		SenderID: sender,
		Amount:   berry.U128From(amount),
		VaultID:  vaultID,
		Payload:  payload,
	}, berry.NoDeposit, gasToReceiver)
	if err != nil {
		return nil, err
	}
	resolve, err := env.FunctionCall(env.CurrentAccountID(), "resolve_vault", &ResolveVaultArgs{
		VaultID:  vaultID,
		SenderID: sender,
	}, berry.NoDeposit, berry.GasForCallback)
	if err != nil {
		return nil, err
	}

	metricTransfers().AddWithLabel(1, map[string]string{"protocol": "vault"})
	metricVaultEvents().AddWithLabel(1, map[string]string{"event": "create"})
	logger.Debug("vault created", "id", vaultID, "sender", sender, "receiver", receiver, "amount", amount)
	return notify.Then(resolve), nil
}

// WithdrawFromVault moves amount out of the vault to receiver. Only the account the
// vault was created for may draw from it.
func (f *Farm) WithdrawFromVault(env *xenv.Environment, vaultID berry.VaultID, receiver berry.AccountID, amount *uint256.Int) error {
	vault, err := f.getVault(vaultID)
	if err != nil {
		return err
	}
	if env.PredecessorAccountID().Hash() != vault.ReceiverHash {
		return reverts.NewAuthorization("vault not owned by caller")
	}
	if vault.Balance.Lt(amount) {
		return reverts.NewInsufficientBalance("not enough balance in the vault")
	}
	if err := f.requireRegistered(receiver, amount); err != nil {
		return err
	}
	g, err := f.loadGlobals()
	if err != nil {
		return err
	}

	vault.Balance = new(uint256.Int).Sub(vault.Balance, amount)
	if err := f.vaults.Set(vaultID, vault); err != nil {
		return err
	}
	if err := f.depositToAccount(g, receiver, amount); err != nil {
		return err
	}
	metricVaultEvents().AddWithLabel(1, map[string]string{"event": "withdraw"})
	return nil
}

// ResolveVault removes the vault and returns its remainder to the sender.
func (f *Farm) ResolveVault(env *xenv.Environment, vaultID berry.VaultID, sender berry.AccountID) (berry.U128, error) {
	if err := env.AssertPrivate("resolve_vault"); err != nil {
		return berry.U128{}, err
	}
	vault, err := f.getVault(vaultID)
	if err != nil {
		return berry.U128{}, err
	}
	if err := f.requireRegistered(sender, vault.Balance); err != nil {
		return berry.U128{}, err
	}
	g, err := f.loadGlobals()
	if err != nil {
		return berry.U128{}, err
	}

	f.vaults.Delete(vaultID)
	if err := f.depositToAccount(g, sender, vault.Balance); err != nil {
		return berry.U128{}, err
	}
	metricVaultEvents().AddWithLabel(1, map[string]string{"event": "resolve"})
	return berry.U128From(vault.Balance), nil
}

// GetVault returns the vault, or nil when it doesn't exist.
func (f *Farm) GetVault(id berry.VaultID) (*VaultView, error) {
	v, exists, err := f.vaults.Get(id)
	if err != nil || !exists {
		return nil, err
	}
	view := &VaultView{ReceiverHash: v.ReceiverHash}
	if v.Balance != nil {
		view.Balance = berry.U128From(v.Balance)
	}
	return view, nil
}

// GetTotalSupply same as FtTotalSupply.
func (f *Farm) GetTotalSupply() (berry.U128, error) {
	return f.FtTotalSupply()
}

// GetBalance same as FtBalanceOf.
func (f *Farm) GetBalance(id berry.AccountID) (berry.U128, error) {
	return f.FtBalanceOf(id)
}
