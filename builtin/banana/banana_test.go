// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package banana

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/lvldb"
	"github.com/berryfarm/farm/state"
	"github.com/berryfarm/farm/xenv"
)

const (
	tokenID = berry.AccountID("banana.near")
	alice   = berry.AccountID("alice.near")
	bob     = berry.AccountID("bob.near")
)

func newToken(t *testing.T) (*Token, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	tk := New(tokenID, st)
	require.NoError(t, tk.Init(newEnv(st, alice, nil), alice, uint256.NewInt(1000)))
	return tk, st
}

func newEnv(st *state.State, predecessor berry.AccountID, deposit *uint256.Int, results ...xenv.PromiseResult) *xenv.Environment {
	return xenv.New(&xenv.ReceiptContext{
		Current:     tokenID,
		Predecessor: predecessor,
		Deposit:     deposit,
		PrepaidGas:  berry.DefaultPrepaidGas,
	}, st, results)
}

func balanceOf(t *testing.T, tk *Token, id berry.AccountID) uint64 {
	bal, err := tk.FtBalanceOf(id)
	require.NoError(t, err)
	return bal.Int().Uint64()
}

func TestInitAndTransfer(t *testing.T) {
	tk, st := newToken(t)
	supply, err := tk.FtTotalSupply()
	require.NoError(t, err)
	assert.Equal(t, "1000", supply.String())
	assert.Error(t, tk.Init(newEnv(st, alice, nil), alice, uint256.NewInt(1)))

	err = tk.FtTransfer(newEnv(st, alice, berry.OneYocto), bob, uint256.NewInt(10), nil)
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))
	assert.Equal(t, uint64(1000), balanceOf(t, tk, alice))

	require.NoError(t, tk.RegisterAccount(newEnv(st, bob, nil), bob))
	require.NoError(t, tk.RegisterAccount(newEnv(st, bob, nil), bob))
	require.NoError(t, tk.FtTransfer(newEnv(st, alice, berry.OneYocto), bob, uint256.NewInt(10), nil))
	assert.Equal(t, uint64(990), balanceOf(t, tk, alice))
	assert.Equal(t, uint64(10), balanceOf(t, tk, bob))

	err = tk.FtTransfer(newEnv(st, bob, berry.OneYocto), alice, uint256.NewInt(11), nil)
	assert.Equal(t, reverts.InsufficientBalance, reverts.KindOf(err))
}

func TestResolveTransfer(t *testing.T) {
	tk, st := newToken(t)
	require.NoError(t, tk.RegisterAccount(newEnv(st, bob, nil), bob))

	p, err := tk.FtTransferCall(newEnv(st, alice, berry.OneYocto), bob, uint256.NewInt(100), nil, "msg")
	require.NoError(t, err)
	assert.Equal(t, "ft_resolve_transfer", p.Action.Method)
	assert.Equal(t, "ft_on_transfer", p.After().Action.Method)

	used, err := tk.FtResolveTransfer(newEnv(st, tokenID, nil, xenv.PromiseResult{Status: xenv.Successful, Value: []byte(`"30"`)}), alice, bob, uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, "70", used.String())
	assert.Equal(t, uint64(930), balanceOf(t, tk, alice))
	assert.Equal(t, uint64(70), balanceOf(t, tk, bob))
}

func TestVault(t *testing.T) {
	tk, st := newToken(t)
	require.NoError(t, tk.RegisterAccount(newEnv(st, bob, nil), bob))

	_, err := tk.TransferWithVault(newEnv(st, alice, uint256.NewInt(1)), bob, uint256.NewInt(100), "")
	require.NoError(t, err)

	err = tk.WithdrawFromVault(newEnv(st, alice, nil), 0, alice, uint256.NewInt(1))
	assert.Equal(t, reverts.Authorization, reverts.KindOf(err))
	err = tk.WithdrawFromVault(newEnv(st, bob, nil), 0, "carol.near", uint256.NewInt(60))
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))
	require.NoError(t, tk.WithdrawFromVault(newEnv(st, bob, nil), 0, bob, uint256.NewInt(60)))

	unused, err := tk.ResolveVault(newEnv(st, tokenID, nil), 0, alice)
	require.NoError(t, err)
	assert.Equal(t, "40", unused.String())
	assert.Equal(t, uint64(940), balanceOf(t, tk, alice))
	assert.Equal(t, uint64(60), balanceOf(t, tk, bob))

	_, err = tk.ResolveVault(newEnv(st, tokenID, nil), 0, alice)
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))
}
