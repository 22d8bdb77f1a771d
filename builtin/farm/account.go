// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/berryfarm/farm/berry"
)

// Account is the per-holder record.
type Account struct {
	// LastRateNumerator is the accumulator value at the last settlement.
	LastRateNumerator *uint256.Int
	NearBalance       *uint256.Int
	CucumberBalance   *uint256.Int
	NearClaimed       *uint256.Int
}

func newAccount(rate *uint256.Int) *Account {
	return &Account{
		LastRateNumerator: new(uint256.Int).Set(rate),
		NearBalance:       new(uint256.Int),
		CucumberBalance:   new(uint256.Int),
		NearClaimed:       new(uint256.Int),
	}
}

func (a *Account) normalize() {
	for _, p := range []**uint256.Int{&a.LastRateNumerator, &a.NearBalance, &a.CucumberBalance, &a.NearClaimed} {
		if *p == nil {
			*p = new(uint256.Int)
		}
	}
}

// HumanAccount is the JSON view of an account.
type HumanAccount struct {
	NearBalance     berry.U128 `json:"near_balance"`
	CucumberBalance berry.U128 `json:"cucumber_balance"`
	NearClaimed     berry.U128 `json:"near_claimed"`
}

func (a *Account) human() *HumanAccount {
	return &HumanAccount{
		NearBalance:     berry.U128From(a.NearBalance),
		CucumberBalance: berry.U128From(a.CucumberBalance),
		NearClaimed:     berry.U128From(a.NearClaimed),
	}
}

func (f *Farm) getAccount(hash berry.AccountHash) (*Account, bool, error) {
	acc, exists, err := f.accounts.Get(hash)
	if err != nil {
		return nil, false, errors.WithMessage(err, "get account")
	}
	if !exists {
		return nil, false, nil
	}
	acc.normalize()
	return acc, true, nil
}

// Get returns the stored account without settling rewards, or nil when absent.
func (f *Farm) Get(id berry.AccountID) (*Account, error) {
	acc, _, err := f.getAccount(id.Hash())
	return acc, err
}

// touch settles the rewards accrued since the last snapshot into the near balance.
func touch(g *Globals, acc *Account) error {
	if acc.LastRateNumerator.Eq(g.RateNumerator) {
		return nil
	}
	delta, err := berry.SubU128(g.RateNumerator, acc.LastRateNumerator)
	if err != nil {
		return errors.Wrap(err, "rate went backwards")
	}
	earned, err := berry.MulDiv(delta, acc.CucumberBalance, berry.RateDenom)
	if err != nil {
		return err
	}
	bal, err := berry.AddU128(acc.NearBalance, earned)
	if err != nil {
		return err
	}
	acc.NearBalance = bal
	acc.LastRateNumerator = new(uint256.Int).Set(g.RateNumerator)
	return nil
}

// getOrCreateAndTouch loads the account, or initializes it at the current rate, then settles it.
// The account is not persisted.
func (f *Farm) getOrCreateAndTouch(g *Globals, id berry.AccountID) (berry.AccountHash, *Account, error) {
	hash := id.Hash()
	acc, exists, err := f.getAccount(hash)
	if err != nil {
		return hash, nil, err
	}
	if !exists {
		acc = newAccount(g.RateNumerator)
	}
	if err := touch(g, acc); err != nil {
		return hash, nil, err
	}
	return hash, acc, nil
}

func (f *Farm) save(hash berry.AccountHash, acc *Account) error {
	return errors.WithMessage(f.accounts.Set(hash, acc), "save account")
}
