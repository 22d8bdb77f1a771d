// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testhost provides a runtime with the farm and the banana token deployed,
// plus scripted receiver contracts.
package testhost

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin"
	"github.com/berryfarm/farm/builtin/farm"
	"github.com/berryfarm/farm/lvldb"
	"github.com/berryfarm/farm/runtime"
	"github.com/berryfarm/farm/state"
)

const (
	FarmID  = berry.AccountID("farm.near")
	TokenID = berry.AccountID("banana.near")
	Alice   = berry.AccountID("alice.near")
	Bob     = berry.AccountID("bob.near")
)

// NativeGenesis is the native balance minted to every test account.
var NativeGenesis = uint256.MustFromDecimal("100000000000000000000000000")

// BananaSupply is the banana supply minted to Alice.
var BananaSupply = uint256.MustFromDecimal("1000000000000000000000000")

// Host is a runtime with the farm and the token deployed and initialized.
type Host struct {
	*runtime.Runtime
	t testing.TB
}

// New creates a host. Alice owns all bananas, Alice and Bob hold native balance.
// Both are registered with the token and the farm.
func New(t testing.TB) *Host {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rt := runtime.New(state.NewStater(db, 1), runtime.Options{})
	builtin.Deploy(rt, FarmID, TokenID, farm.DefaultConfig())

	h := &Host{rt, t}
	for _, id := range []berry.AccountID{Alice, Bob} {
		require.NoError(t, rt.Mint(id, NativeGenesis))
	}
	h.MustCall(Alice, TokenID, "new", map[string]any{
		"owner_id":     Alice,
		"total_supply": berry.U128From(BananaSupply),
	}, nil)
	h.MustCall(Alice, FarmID, "new", map[string]any{"banana_token_account_id": TokenID}, nil)
	h.Register(Alice)
	h.Register(Bob)
	return h
}

// Register registers id with the token and pays the farm storage deposit for it.
func (h *Host) Register(id berry.AccountID) {
	h.MustCall(Alice, TokenID, "register_account", map[string]any{"account_id": id}, nil)
	bounds := h.StorageCost()
	h.MustCall(Alice, FarmID, "storage_deposit", map[string]any{"account_id": id}, bounds)
}

// StorageCost returns the farm storage deposit of one account.
func (h *Host) StorageCost() *uint256.Int {
	var bounds farm.StorageBalanceBounds
	h.MustView(FarmID, "storage_balance_bounds", nil, &bounds)
	return bounds.Min.Int()
}

// Call runs a call to completion.
func (h *Host) Call(signer, receiver berry.AccountID, method string, args any, deposit *uint256.Int) *runtime.Outcome {
	out, err := h.Runtime.Call(context.Background(), signer, receiver, method, args, deposit, 0)
	require.NoError(h.t, err)
	return out
}

// MustCall runs a call and requires it to succeed.
func (h *Host) MustCall(signer, receiver berry.AccountID, method string, args any, deposit *uint256.Int) *runtime.Outcome {
	out := h.Call(signer, receiver, method, args, deposit)
	require.True(h.t, out.Succeeded(), "%s.%s: %s", receiver, method, out.Error)
	return out
}

// MustView runs a view and decodes its result into out.
func (h *Host) MustView(receiver berry.AccountID, method string, args any, out any) {
	data, err := h.Runtime.View(receiver, method, args)
	require.NoError(h.t, err)
	if out != nil {
		require.NoError(h.t, json.Unmarshal(data, out))
	}
}

// Stake deposits amount bananas of Alice into the farm on behalf of id.
func (h *Host) Stake(id berry.AccountID, amount *uint256.Int) {
	if id != Alice {
		h.MustCall(Alice, TokenID, "ft_transfer", map[string]any{
			"receiver_id": id,
			"amount":      berry.U128From(amount),
		}, berry.OneYocto)
	}
	h.MustCall(id, TokenID, "ft_transfer_call", map[string]any{
		"receiver_id": FarmID,
		"amount":      berry.U128From(amount),
		"msg":         `"DepositAndStake"`,
	}, berry.OneYocto)
}

// Cucumbers returns the cucumber balance of id.
func (h *Host) Cucumbers(id berry.AccountID) *uint256.Int {
	return h.u128(FarmID, "ft_balance_of", id)
}

// Bananas returns the banana balance of id.
func (h *Host) Bananas(id berry.AccountID) *uint256.Int {
	return h.u128(TokenID, "ft_balance_of", id)
}

// NearBalance returns the settled reward balance of id.
func (h *Host) NearBalance(id berry.AccountID) *uint256.Int {
	return h.u128(FarmID, "get_near_balance", id)
}

// Stats returns the farm totals.
func (h *Host) Stats() *farm.HumanStats {
	var stats farm.HumanStats
	h.MustView(FarmID, "get_stats", nil, &stats)
	return &stats
}

// Native returns the committed native balance of id.
func (h *Host) Native(id berry.AccountID) *uint256.Int {
	bal, err := h.Runtime.Balance(id)
	require.NoError(h.t, err)
	return bal
}

func (h *Host) u128(receiver berry.AccountID, method string, id berry.AccountID) *uint256.Int {
	var v berry.U128
	h.MustView(receiver, method, map[string]any{"account_id": id}, &v)
	return v.Int()
}

// Deploy registers a scripted receiver at id, funds it and registers it like a user.
func (h *Host) Deploy(id berry.AccountID, script *Script) {
	h.Runtime.Register(id, Receiver(script))
	require.NoError(h.t, h.Runtime.Mint(id, NativeGenesis))
	h.Register(id)
}
