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

// StorageBalance is the storage deposit held for an account.
type StorageBalance struct {
	Total     berry.U128 `json:"total"`
	Available berry.U128 `json:"available"`
}

// StorageBalanceBounds are the accepted storage deposits.
type StorageBalanceBounds struct {
	Min berry.U128  `json:"min"`
	Max *berry.U128 `json:"max"`
}

func (f *Farm) storageCost() *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(berry.StorageAmountBytes), f.cfg.StorageByteCost)
}

// StorageBalanceBounds returns the fixed cost of registering an account.
func (f *Farm) StorageBalanceBounds() *StorageBalanceBounds {
	cost := berry.U128From(f.storageCost())
	return &StorageBalanceBounds{Min: cost, Max: &cost}
}

// StorageDeposit registers accountID, the caller by default, paying the storage cost
// out of the attached deposit. The excess is refunded, all of it if the account
// already exists.
func (f *Farm) StorageDeposit(env *xenv.Environment, accountID *berry.AccountID, registrationOnly *bool) (*StorageBalance, error) {
	id := env.PredecessorAccountID()
	if accountID != nil {
		id = *accountID
	}
	attached := env.AttachedDeposit()
	hash := id.Hash()
	_, exists, err := f.getAccount(hash)
	if err != nil {
		return nil, err
	}

	refund := attached
	if !exists {
		cost := f.storageCost()
		if attached.Lt(cost) {
			return nil, reverts.NewStorageCost("attached deposit is less than the minimum storage balance")
		}
		g, err := f.loadGlobals()
		if err != nil {
			return nil, err
		}
		if err := f.save(hash, newAccount(g.RateNumerator)); err != nil {
			return nil, err
		}
		refund = new(uint256.Int).Sub(attached, cost)
		logger.Debug("account registered", "account", id)
	}
	if !refund.IsZero() {
		env.Transfer(env.PredecessorAccountID(), refund)
	}
	return f.StorageBalanceOf(id)
}

// StorageBalanceOf returns the storage balance of id, or nil when unregistered.
func (f *Farm) StorageBalanceOf(id berry.AccountID) (*StorageBalance, error) {
	_, exists, err := f.getAccount(id.Hash())
	if err != nil || !exists {
		return nil, err
	}
	return &StorageBalance{Total: f.StorageBalanceBounds().Min}, nil
}

// StorageWithdraw is not supported.
func (f *Farm) StorageWithdraw(env *xenv.Environment, amount *berry.U128) (*StorageBalance, error) {
	return nil, reverts.NewValidation("unimplemented")
}

// StorageUnregister is not supported.
func (f *Farm) StorageUnregister(env *xenv.Environment, force *bool) (bool, error) {
	return false, reverts.NewValidation("unimplemented")
}
