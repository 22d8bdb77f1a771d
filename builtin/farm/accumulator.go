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

// inject distributes amount pro-rata over all cucumbers by raising the rate.
// The rounding remainder stays with the farm.
func inject(g *Globals, amount *uint256.Int) error {
	if g.TotalCucumberBalance.IsZero() {
		return reverts.NewValidation("not enough cucumbers")
	}
	perUnit, err := berry.MulDiv(amount, berry.RateDenom, g.TotalCucumberBalance)
	if err != nil {
		return err
	}
	rate, err := berry.AddU128(g.RateNumerator, perUnit)
	if err != nil {
		return err
	}
	received, err := berry.AddU128(g.TotalNearReceived, amount)
	if err != nil {
		return err
	}
	g.RateNumerator = rate
	g.TotalNearReceived = received
	return nil
}

// Inject adds amount to the reward pool.
func (f *Farm) Inject(amount *uint256.Int) error {
	g, err := f.loadGlobals()
	if err != nil {
		return err
	}
	if err := inject(g, amount); err != nil {
		return err
	}
	metricInjections().Add(1)
	return f.saveGlobals(g)
}

// TakeMyNear injects the attached deposit into the reward pool.
func (f *Farm) TakeMyNear(env *xenv.Environment) error {
	amount := env.AttachedDeposit()
	if err := f.Inject(amount); err != nil {
		return err
	}
	logger.Debug("rewards injected", "from", env.PredecessorAccountID(), "amount", amount)
	return nil
}

// ClaimNear pays the caller's settled reward balance out as a native transfer.
// A zero claim issues no transfer.
func (f *Farm) ClaimNear(env *xenv.Environment) (berry.U128, error) {
	g, err := f.loadGlobals()
	if err != nil {
		return berry.U128{}, err
	}
	caller := env.PredecessorAccountID()
	hash, acc, err := f.getOrCreateAndTouch(g, caller)
	if err != nil {
		return berry.U128{}, err
	}
	amount := acc.NearBalance
	claimed, err := berry.AddU128(acc.NearClaimed, amount)
	if err != nil {
		return berry.U128{}, err
	}
	acc.NearBalance = new(uint256.Int)
	acc.NearClaimed = claimed
	if err := f.save(hash, acc); err != nil {
		return berry.U128{}, err
	}

	if !amount.IsZero() {
		total, err := berry.AddU128(g.TotalNearClaimed, amount)
		if err != nil {
			return berry.U128{}, err
		}
		g.TotalNearClaimed = total
		if err := f.saveGlobals(g); err != nil {
			return berry.U128{}, err
		}
		env.Transfer(caller, amount)
		metricClaims().Add(1)
	}
	return berry.U128From(amount), nil
}
