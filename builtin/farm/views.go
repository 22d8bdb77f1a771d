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

// HumanStats is the JSON view of the farm totals.
type HumanStats struct {
	TotalCucumberBalance berry.U128 `json:"total_cucumber_balance"`
	TotalNearClaimed     berry.U128 `json:"total_near_claimed"`
	TotalNearReceived    berry.U128 `json:"total_near_received"`
}

// RegisterAccountArgs are the arguments of the token registration.
type RegisterAccountArgs struct {
	AccountID berry.AccountID `json:"account_id"`
}

// Init sets the farm up for the given banana token and registers the farm with it.
func (f *Farm) Init(env *xenv.Environment, tokenID berry.AccountID) error {
	_, exists, err := f.globals.Get()
	if err != nil {
		return err
	}
	if exists {
		return reverts.NewValidation("already initialized")
	}
	g := &Globals{TokenID: tokenID}
	g.normalize()
	if err := f.saveGlobals(g); err != nil {
		return err
	}
	// the farm needs an account with the token to draw from vaults
	if _, err := env.FunctionCall(tokenID, "register_account", &RegisterAccountArgs{
		AccountID: env.CurrentAccountID(),
	}, berry.NoDeposit, berry.GasForAccountRegistration); err != nil {
		return err
	}
	logger.Info("farm initialized", "farm", env.CurrentAccountID(), "token", tokenID)
	return nil
}

// RegisterAccount creates the caller's account if absent. It costs no storage deposit.
func (f *Farm) RegisterAccount(env *xenv.Environment) error {
	g, err := f.loadGlobals()
	if err != nil {
		return err
	}
	hash, acc, err := f.getOrCreateAndTouch(g, env.PredecessorAccountID())
	if err != nil {
		return err
	}
	return f.save(hash, acc)
}

// AccountExists reports whether id is registered.
func (f *Farm) AccountExists(id berry.AccountID) (bool, error) {
	acc, err := f.Get(id)
	return acc != nil, err
}

// settled returns the account of id with rewards settled, or nil when absent.
// Nothing is persisted.
func (f *Farm) settled(id berry.AccountID) (*Account, error) {
	g, err := f.loadGlobals()
	if err != nil {
		return nil, err
	}
	acc, err := f.Get(id)
	if err != nil || acc == nil {
		return nil, err
	}
	if err := touch(g, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetNearBalance returns the settled reward balance of id.
func (f *Farm) GetNearBalance(id berry.AccountID) (berry.U128, error) {
	acc, err := f.settled(id)
	if err != nil || acc == nil {
		return berry.U128{}, err
	}
	return berry.U128From(acc.NearBalance), nil
}

// GetAccount returns the settled account of id, or nil when absent.
func (f *Farm) GetAccount(id berry.AccountID) (*HumanAccount, error) {
	acc, err := f.settled(id)
	if err != nil || acc == nil {
		return nil, err
	}
	return acc.human(), nil
}

// GetStats returns the farm totals.
func (f *Farm) GetStats() (*HumanStats, error) {
	g, err := f.loadGlobals()
	if err != nil {
		return nil, err
	}
	return &HumanStats{
		TotalCucumberBalance: berry.U128From(g.TotalCucumberBalance),
		TotalNearClaimed:     berry.U128From(g.TotalNearClaimed),
		TotalNearReceived:    berry.U128From(g.TotalNearReceived),
	}, nil
}

func (f *Farm) GetTotalNearClaimed() (berry.U128, error) {
	return f.total(func(g *Globals) *uint256.Int { return g.TotalNearClaimed })
}

func (f *Farm) GetTotalNearReceived() (berry.U128, error) {
	return f.total(func(g *Globals) *uint256.Int { return g.TotalNearReceived })
}

func (f *Farm) total(field func(g *Globals) *uint256.Int) (berry.U128, error) {
	g, err := f.loadGlobals()
	if err != nil {
		return berry.U128{}, err
	}
	return berry.U128From(field(g)), nil
}
