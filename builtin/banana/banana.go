// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package banana implements the deposit token the farm accepts. It supports plain,
// callback and vault transfers and is meant for development and tests.
package banana

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/builtin/store"
	"github.com/berryfarm/farm/log"
	"github.com/berryfarm/farm/state"
	"github.com/berryfarm/farm/xenv"
)

var logger = log.WithContext("pkg", "banana")

var (
	accountsPos = berry.BytesToBytes32([]byte("a"))
	vaultsPos   = berry.BytesToBytes32([]byte("v"))
	globalsPos  = berry.BytesToBytes32([]byte("STATE"))
)

type account struct {
	Balance *uint256.Int
}

type vault struct {
	ReceiverHash berry.AccountHash
	Balance      *uint256.Int
}

type globals struct {
	TotalSupply *uint256.Int
	NextVaultID berry.VaultID
}

// Token is the banana ledger bound to one contract account.
type Token struct {
	addr     berry.AccountID
	accounts *store.Mapping[berry.AccountHash, *account]
	vaults   *store.Mapping[berry.VaultID, *vault]
	globals  *store.Var[globals]
}

func New(addr berry.AccountID, st *state.State) *Token {
	ctx := store.NewContext(addr, st)
	return &Token{
		addr:     addr,
		accounts: store.NewMapping[berry.AccountHash, *account](ctx, accountsPos),
		vaults:   store.NewMapping[berry.VaultID, *vault](ctx, vaultsPos),
		globals:  store.NewVar[globals](ctx, globalsPos),
	}
}

func (t *Token) Address() berry.AccountID {
	return t.addr
}

func (t *Token) loadGlobals() (*globals, error) {
	g, exists, err := t.globals.Get()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, reverts.NewValidation("the contract is not initialized")
	}
	if g.TotalSupply == nil {
		g.TotalSupply = new(uint256.Int)
	}
	return g, nil
}

// balance returns the balance of id, or nil when it's not registered.
func (t *Token) balance(id berry.AccountID) (*uint256.Int, error) {
	acc, exists, err := t.accounts.Get(id.Hash())
	if err != nil {
		return nil, errors.WithMessage(err, "get account")
	}
	if !exists {
		return nil, nil
	}
	if acc.Balance == nil {
		return new(uint256.Int), nil
	}
	return acc.Balance, nil
}

func (t *Token) setBalance(id berry.AccountID, bal *uint256.Int) error {
	return t.accounts.Set(id.Hash(), &account{Balance: bal})
}

// Init mints the total supply to owner.
func (t *Token) Init(env *xenv.Environment, owner berry.AccountID, totalSupply *uint256.Int) error {
	_, exists, err := t.globals.Get()
	if err != nil {
		return err
	}
	if exists {
		return reverts.NewValidation("already initialized")
	}
	if !berry.IsU128(totalSupply) {
		return reverts.NewValidation("total supply exceeds 128 bits")
	}
	if err := t.globals.Set(&globals{TotalSupply: new(uint256.Int).Set(totalSupply)}); err != nil {
		return err
	}
	logger.Info("token initialized", "token", env.CurrentAccountID(), "owner", owner, "supply", totalSupply)
	return t.setBalance(owner, new(uint256.Int).Set(totalSupply))
}

// RegisterAccount creates an empty account for id if absent.
func (t *Token) RegisterAccount(env *xenv.Environment, id berry.AccountID) error {
	bal, err := t.balance(id)
	if err != nil || bal != nil {
		return err
	}
	return t.setBalance(id, new(uint256.Int))
}

// debit checks the caller can send amount to receiver and returns the sender's balance after it.
func (t *Token) debit(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int) (berry.AccountID, *uint256.Int, error) {
	if amount.IsZero() {
		return "", nil, reverts.NewValidation("transfer amount should be positive")
	}
	sender := env.PredecessorAccountID()
	if sender == receiver {
		return "", nil, reverts.NewValidation("receiver must differ from sender")
	}
	bal, err := t.balance(sender)
	if err != nil {
		return "", nil, err
	}
	if bal == nil || bal.Lt(amount) {
		return "", nil, reverts.NewInsufficientBalance("insufficient balance")
	}
	return sender, new(uint256.Int).Sub(bal, amount), nil
}

func (t *Token) withdraw(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int) (berry.AccountID, error) {
	sender, bal, err := t.debit(env, receiver, amount)
	if err != nil {
		return "", err
	}
	return sender, t.setBalance(sender, bal)
}

func (t *Token) requireRegistered(receiver berry.AccountID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	bal, err := t.balance(receiver)
	if err != nil {
		return err
	}
	if bal == nil {
		return reverts.NewNotFound("receiver account doesn't exist")
	}
	return nil
}

func (t *Token) deposit(receiver berry.AccountID, amount *uint256.Int) error {
	if err := t.requireRegistered(receiver, amount); err != nil || amount.IsZero() {
		return err
	}
	bal, err := t.balance(receiver)
	if err != nil {
		return err
	}
	sum, err := berry.AddU128(bal, amount)
	if err != nil {
		return err
	}
	return t.setBalance(receiver, sum)
}

// FtTransfer moves amount from the caller to receiver.
func (t *Token) FtTransfer(env *xenv.Environment, receiver berry.AccountID, amount *uint256.Int, memo *string) error {
	if err := env.AssertOneYocto(); err != nil {
		return err
	}
	sender, bal, err := t.debit(env, receiver, amount)
	if err != nil {
		return err
	}
	if err := t.requireRegistered(receiver, amount); err != nil {
		return err
	}
	if err := t.setBalance(sender, bal); err != nil {
		return err
	}
	if err := t.deposit(receiver, amount); err != nil {
		return err
	}
	env.Log("Transfer 🍌%s from %s to %s", amount.Dec(), sender, receiver)
	return nil
}

// FtBalanceOf returns the balance of id, zero when unregistered.
func (t *Token) FtBalanceOf(id berry.AccountID) (berry.U128, error) {
	bal, err := t.balance(id)
	if err != nil || bal == nil {
		return berry.U128{}, err
	}
	return berry.U128From(bal), nil
}

// FtTotalSupply returns the minted supply.
func (t *Token) FtTotalSupply() (berry.U128, error) {
	g, err := t.loadGlobals()
	if err != nil {
		return berry.U128{}, err
	}
	return berry.U128From(g.TotalSupply), nil
}
