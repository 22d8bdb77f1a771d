// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/lvldb"
	"github.com/berryfarm/farm/state"
	"github.com/berryfarm/farm/test/datagen"
	"github.com/berryfarm/farm/xenv"
)

const (
	farmID  = berry.AccountID("farm.near")
	tokenID = berry.AccountID("banana.near")
	alice   = berry.AccountID("alice.near")
	bob     = berry.AccountID("bob.near")
	carol   = berry.AccountID("carol.near")
)

var oneCucumber = uint256.NewInt(1_000_000_000_000_000_000)

type fixture struct {
	t  *testing.T
	st *state.State
	f  *Farm
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	fx := &fixture{t, st, New(farmID, st, DefaultConfig())}
	require.NoError(t, fx.f.Init(fx.env(farmID, nil), tokenID))
	return fx
}

func (fx *fixture) env(predecessor berry.AccountID, deposit *uint256.Int, results ...xenv.PromiseResult) *xenv.Environment {
	return xenv.New(&xenv.ReceiptContext{
		Current:     farmID,
		Predecessor: predecessor,
		Signer:      predecessor,
		Deposit:     deposit,
		PrepaidGas:  berry.DefaultPrepaidGas,
	}, fx.st, results)
}

func (fx *fixture) stake(id berry.AccountID, amount *uint256.Int) {
	_, err := fx.f.FtOnTransfer(fx.env(tokenID, nil), id, amount, `"DepositAndStake"`)
	require.NoError(fx.t, err)
}

func (fx *fixture) register(id berry.AccountID) {
	require.NoError(fx.t, fx.f.RegisterAccount(fx.env(id, nil)))
}

func (fx *fixture) cucumbers(id berry.AccountID) uint64 {
	bal, err := fx.f.FtBalanceOf(id)
	require.NoError(fx.t, err)
	return bal.Int().Uint64()
}

func (fx *fixture) globals() *Globals {
	g, err := fx.f.loadGlobals()
	require.NoError(fx.t, err)
	return g
}

func TestInit(t *testing.T) {
	fx := newFixture(t)
	env := fx.env(farmID, nil)
	err := fx.f.Init(env, tokenID)
	assert.Equal(t, "already initialized", err.Error())

	// the first init registers the farm with the token
	env = fx.env(farmID, nil)
	fresh := New("farm2.near", fx.st, Config{})
	require.NoError(t, fresh.Init(env, tokenID))
	require.Len(t, env.Promises(), 1)
	p := env.Promises()[0]
	assert.Equal(t, tokenID, p.Action.Receiver)
	assert.Equal(t, "register_account", p.Action.Method)
	assert.JSONEq(t, `{"account_id":"farm.near"}`, string(p.Action.Args))
	assert.Equal(t, berry.GasForAccountRegistration, p.Action.Gas)

	_, err = New("nobody.near", fx.st, Config{}).GetStats()
	assert.True(t, reverts.IsRevertErr(err))
}

func TestTouchIdempotent(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, oneCucumber)
	require.NoError(t, fx.f.Inject(uint256.NewInt(500)))

	g := fx.globals()
	acc, err := fx.f.Get(alice)
	require.NoError(t, err)
	require.NoError(t, touch(g, acc))
	assert.Equal(t, uint64(500), acc.NearBalance.Uint64())
	assert.True(t, acc.LastRateNumerator.Eq(g.RateNumerator))

	require.NoError(t, touch(g, acc))
	assert.Equal(t, uint64(500), acc.NearBalance.Uint64())
}

func TestTouchWideProduct(t *testing.T) {
	// rate delta * balance exceeds 128 bits, the quotient doesn't
	g := &Globals{RateNumerator: new(uint256.Int).Mul(uint256.NewInt(1<<20), oneCucumber)}
	g.normalize()
	acc := newAccount(new(uint256.Int))
	acc.CucumberBalance = new(uint256.Int).Mul(uint256.NewInt(1<<40), oneCucumber)
	require.NoError(t, touch(g, acc))

	expected := new(uint256.Int).Mul(uint256.NewInt(1<<20), uint256.NewInt(1<<40))
	expected.Mul(expected, oneCucumber)
	assert.True(t, acc.NearBalance.Eq(expected), acc.NearBalance.Dec())
}

func TestInjectWithoutCucumbers(t *testing.T) {
	fx := newFixture(t)
	err := fx.f.TakeMyNear(fx.env(alice, uint256.NewInt(500)))
	assert.Equal(t, reverts.Validation, reverts.KindOf(err))
	assert.Equal(t, "not enough cucumbers", err.Error())
}

func TestScenarioA(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, oneCucumber)
	require.NoError(t, fx.f.TakeMyNear(fx.env(bob, uint256.NewInt(500))))

	bal, err := fx.f.GetNearBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, "500", bal.String())

	stats, err := fx.f.GetStats()
	require.NoError(t, err)
	assert.Equal(t, "500", stats.TotalNearReceived.String())
	assert.Equal(t, oneCucumber.Dec(), stats.TotalCucumberBalance.String())

	// the view doesn't persist the settlement
	acc, err := fx.f.Get(alice)
	require.NoError(t, err)
	assert.True(t, acc.NearBalance.IsZero())
}

func TestProRataRewards(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, new(uint256.Int).Mul(oneCucumber, uint256.NewInt(3)))
	fx.stake(bob, oneCucumber)
	require.NoError(t, fx.f.Inject(uint256.NewInt(1000)))

	// joining after the injection earns nothing from it
	fx.stake(carol, oneCucumber)

	for id, expected := range map[berry.AccountID]string{alice: "750", bob: "250", carol: "0"} {
		bal, err := fx.f.GetNearBalance(id)
		require.NoError(t, err)
		assert.Equal(t, expected, bal.String(), id)
	}
}

func TestTransferValidation(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, uint256.NewInt(100))

	tests := []struct {
		name     string
		receiver berry.AccountID
		amount   uint64
		kind     reverts.Kind
		msg      string
	}{
		{"zero", bob, 0, reverts.Validation, "transfer amount should be positive"},
		{"self", alice, 10, reverts.Validation, "receiver must differ from sender"},
		{"balance", bob, 101, reverts.InsufficientBalance, "insufficient balance"},
		{"unregistered", carol, 10, reverts.NotFound, "receiver account doesn't exist"},
	}
	fx.register(bob)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := fx.st.NewCheckpoint()
			defer fx.st.RevertTo(cp)
			err := fx.f.FtTransfer(fx.env(alice, berry.OneYocto), tt.receiver, uint256.NewInt(tt.amount), nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, reverts.KindOf(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	err := fx.f.FtTransfer(fx.env(alice, uint256.NewInt(2)), bob, uint256.NewInt(1), nil)
	assert.Equal(t, "requires attached deposit of exactly 1 yoctoNEAR", err.Error())
	err = fx.f.TransferRaw(fx.env(alice, nil), bob, uint256.NewInt(1))
	assert.Equal(t, reverts.Validation, reverts.KindOf(err))
}

func TestFtTransfer(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, uint256.NewInt(100))
	fx.register(bob)

	memo := "for the berries"
	env := fx.env(alice, berry.OneYocto)
	require.NoError(t, fx.f.FtTransfer(env, bob, uint256.NewInt(40), &memo))
	assert.Equal(t, []string{"Transfer 🥒40 from alice.near to bob.near", "Memo: for the berries"}, env.Logs())
	assert.Equal(t, uint64(60), fx.cucumbers(alice))
	assert.Equal(t, uint64(40), fx.cucumbers(bob))

	require.NoError(t, fx.f.TransferRaw(fx.env(bob, uint256.NewInt(5)), alice, uint256.NewInt(15)))
	assert.Equal(t, uint64(75), fx.cucumbers(alice))
	assert.Equal(t, uint64(25), fx.cucumbers(bob))
}

func TestDepositToAccount(t *testing.T) {
	fx := newFixture(t)
	g := fx.globals()

	// zero is a no-op even for unknown accounts
	assert.NoError(t, fx.f.depositToAccount(g, carol, new(uint256.Int)))
	exists, err := fx.f.AccountExists(carol)
	require.NoError(t, err)
	assert.False(t, exists)

	err = fx.f.depositToAccount(g, carol, uint256.NewInt(1))
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))
}

func TestFailedTransferLeavesStateUnchanged(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, uint256.NewInt(100))

	err := fx.f.FtTransfer(fx.env(alice, berry.OneYocto), carol, uint256.NewInt(40), nil)
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))
	err = fx.f.TransferRaw(fx.env(alice, uint256.NewInt(1)), carol, uint256.NewInt(40))
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))
	assert.Equal(t, uint64(100), fx.cucumbers(alice))
	assert.Equal(t, uint64(100), fx.globals().TotalCucumberBalance.Uint64())

	// vault withdrawals to unknown accounts keep the vault balance
	fx.register(bob)
	_, err = fx.f.TransferWithVault(fx.env(alice, uint256.NewInt(1)), bob, uint256.NewInt(100), "")
	require.NoError(t, err)
	err = fx.f.WithdrawFromVault(fx.env(bob, nil), 0, carol, uint256.NewInt(30))
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))
	v, err := fx.f.GetVault(0)
	require.NoError(t, err)
	assert.Equal(t, "100", v.Balance.String())

	// resolving for an unknown sender keeps the vault
	_, err = fx.f.ResolveVault(fx.env(farmID, nil), 0, carol)
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))
	v, err = fx.f.GetVault(0)
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestConservation(t *testing.T) {
	fx := newFixture(t)
	ids := []berry.AccountID{alice, bob, carol}
	for i := 0; i < 4; i++ {
		ids = append(ids, datagen.RandomAccountID())
	}
	for _, id := range ids {
		fx.register(id)
	}

	for i := 0; i < 200; i++ {
		from := ids[datagen.RandIntN(len(ids))]
		to := ids[datagen.RandIntN(len(ids))]
		cp := fx.st.NewCheckpoint()
		var err error
		switch datagen.RandIntN(4) {
		case 0:
			fx.stake(from, datagen.RandAmount(1000))
		case 1:
			err = fx.f.FtTransfer(fx.env(from, berry.OneYocto), to, datagen.RandAmount(500), nil)
		case 2:
			err = fx.f.Inject(datagen.RandAmount(1_000_000))
		case 3:
			_, err = fx.f.ClaimNear(fx.env(from, nil))
		}
		if err != nil {
			require.True(t, reverts.IsRevertErr(err), err)
			fx.st.RevertTo(cp)
		}

		sum := new(uint256.Int)
		for _, id := range ids {
			sum.AddUint64(sum, fx.cucumbers(id))
		}
		assert.True(t, sum.Eq(fx.globals().TotalCucumberBalance), "step %d", i)
	}
}

func TestClaimNear(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, oneCucumber)
	require.NoError(t, fx.f.Inject(uint256.NewInt(500)))

	env := fx.env(alice, nil)
	amount, err := fx.f.ClaimNear(env)
	require.NoError(t, err)
	assert.Equal(t, "500", amount.String())
	require.Len(t, env.Promises(), 1)
	assert.Equal(t, xenv.TransferAction, env.Promises()[0].Action.Kind)
	assert.Equal(t, alice, env.Promises()[0].Action.Receiver)
	assert.Equal(t, uint64(500), env.Promises()[0].Action.Deposit.Uint64())

	acc, err := fx.f.GetAccount(alice)
	require.NoError(t, err)
	assert.Equal(t, "0", acc.NearBalance.String())
	assert.Equal(t, "500", acc.NearClaimed.String())
	claimed, err := fx.f.GetTotalNearClaimed()
	require.NoError(t, err)
	assert.Equal(t, "500", claimed.String())

	// nothing left to claim
	env = fx.env(alice, nil)
	amount, err = fx.f.ClaimNear(env)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Empty(t, env.Promises())
}

func TestClaimRoundTrip(t *testing.T) {
	fx := newFixture(t)
	fx.register(bob)

	env := fx.env(bob, nil)
	amount, err := fx.f.ClaimNear(env)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Empty(t, env.Promises())

	received, err := fx.f.GetTotalNearReceived()
	require.NoError(t, err)
	assert.True(t, received.IsZero())
}

func TestFtTransferCall(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, uint256.NewInt(500))
	fx.register(bob)

	env := fx.env(alice, berry.OneYocto)
	p, err := fx.f.FtTransferCall(env, bob, uint256.NewInt(500), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), fx.cucumbers(bob))

	require.Len(t, env.Promises(), 2)
	notify, resolve := env.Promises()[0], env.Promises()[1]
	assert.Equal(t, resolve, p)
	assert.Equal(t, notify, resolve.After())
	assert.Equal(t, "ft_on_transfer", notify.Action.Method)
	assert.JSONEq(t, `{"sender_id":"alice.near","amount":"500","msg":"hello"}`, string(notify.Action.Args))
	assert.Equal(t, berry.DefaultPrepaidGas-berry.GasForFtTransferCall, notify.Action.Gas)
	assert.Equal(t, farmID, resolve.Action.Receiver)
	assert.Equal(t, "ft_resolve_transfer", resolve.Action.Method)
	assert.JSONEq(t, `{"sender_id":"alice.near","receiver_id":"bob.near","amount":"500"}`, string(resolve.Action.Args))
}

func TestFtResolveTransfer(t *testing.T) {
	value := func(s string) xenv.PromiseResult {
		return xenv.PromiseResult{Status: xenv.Successful, Value: []byte(s)}
	}
	tests := []struct {
		name        string
		result      xenv.PromiseResult
		receiverHas uint64
		used        string
		senderGets  uint64
	}{
		{"all used", value(`"0"`), 500, "500", 0},
		{"partly unused", value(`"50"`), 500, "450", 50},
		{"over declared", value(`"900"`), 500, "0", 500},
		{"failed", xenv.PromiseResult{Status: xenv.Failed}, 500, "0", 500},
		{"unparsable", value(`"abc"`), 500, "0", 500},
		{"forwarded away", value(`"50"`), 20, "480", 20},
		{"nothing left", value(`"50"`), 0, "500", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			fx.register(alice)
			if tt.receiverHas > 0 {
				fx.stake(bob, uint256.NewInt(tt.receiverHas))
			}
			env := fx.env(farmID, nil, tt.result)
			used, err := fx.f.FtResolveTransfer(env, alice, bob, uint256.NewInt(500))
			require.NoError(t, err)
			assert.Equal(t, tt.used, used.String())
			assert.Equal(t, tt.senderGets, fx.cucumbers(alice))
			assert.Equal(t, tt.receiverHas-tt.senderGets, fx.cucumbers(bob))
		})
	}

	fx := newFixture(t)
	_, err := fx.f.FtResolveTransfer(fx.env(alice, nil), alice, bob, uint256.NewInt(1))
	assert.Equal(t, reverts.Authorization, reverts.KindOf(err))
}

func TestVault(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, uint256.NewInt(500))
	fx.register(bob)

	env := fx.env(alice, uint256.NewInt(1))
	p, err := fx.f.TransferWithVault(env, bob, uint256.NewInt(500), "payload")
	require.NoError(t, err)
	assert.Equal(t, "resolve_vault", p.Action.Method)
	assert.JSONEq(t, `{"vault_id":0,"sender_id":"alice.near"}`, string(p.Action.Args))
	assert.JSONEq(t, `{"sender_id":"alice.near","amount":"500","vault_id":0,"payload":"payload"}`, string(p.After().Action.Args))
	assert.Equal(t, uint64(0), fx.cucumbers(alice))
	assert.Equal(t, berry.VaultID(1), fx.globals().NextVaultID)

	v, err := fx.f.GetVault(0)
	require.NoError(t, err)
	assert.Equal(t, bob.Hash(), v.ReceiverHash)
	assert.Equal(t, "500", v.Balance.String())

	err = fx.f.WithdrawFromVault(fx.env(carol, nil), 0, carol, uint256.NewInt(1))
	assert.Equal(t, "vault not owned by caller", err.Error())
	err = fx.f.WithdrawFromVault(fx.env(bob, nil), 0, bob, uint256.NewInt(501))
	assert.Equal(t, "not enough balance in the vault", err.Error())
	err = fx.f.WithdrawFromVault(fx.env(bob, nil), 1, bob, uint256.NewInt(1))
	assert.Equal(t, "vault doesn't exist", err.Error())

	require.NoError(t, fx.f.WithdrawFromVault(fx.env(bob, nil), 0, bob, uint256.NewInt(200)))
	require.NoError(t, fx.f.WithdrawFromVault(fx.env(bob, nil), 0, bob, uint256.NewInt(100)))
	assert.Equal(t, uint64(300), fx.cucumbers(bob))

	_, err = fx.f.ResolveVault(fx.env(alice, nil), 0, alice)
	assert.Equal(t, reverts.Authorization, reverts.KindOf(err))

	unused, err := fx.f.ResolveVault(fx.env(farmID, nil), 0, alice)
	require.NoError(t, err)
	assert.Equal(t, "200", unused.String())
	assert.Equal(t, uint64(200), fx.cucumbers(alice))

	v, err = fx.f.GetVault(0)
	require.NoError(t, err)
	assert.Nil(t, v)
	_, err = fx.f.ResolveVault(fx.env(farmID, nil), 0, alice)
	assert.Equal(t, reverts.NotFound, reverts.KindOf(err))

	// ids are never reused
	_, err = fx.f.TransferWithVault(fx.env(alice, uint256.NewInt(1)), bob, uint256.NewInt(100), "")
	require.NoError(t, err)
	assert.Equal(t, berry.VaultID(2), fx.globals().NextVaultID)
}

func TestTransferWithVaultGuards(t *testing.T) {
	fx := newFixture(t)
	fx.stake(alice, uint256.NewInt(500))
	fx.register(bob)

	_, err := fx.f.TransferWithVault(fx.env(alice, nil), bob, uint256.NewInt(1), "")
	assert.Equal(t, "requires a deposit of at least 1 yoctoNEAR to prevent function access key calls", err.Error())

	for _, tt := range []struct {
		gas berry.Gas
		ok  bool
	}{
		{0, false},
		{30 * berry.TGas, false},
		{40*berry.TGas - 1, false},
		{40 * berry.TGas, true},
	} {
		cp := fx.st.NewCheckpoint()
		env := xenv.New(&xenv.ReceiptContext{
			Current:     farmID,
			Predecessor: alice,
			Deposit:     uint256.NewInt(1),
			PrepaidGas:  tt.gas,
		}, fx.st, nil)
		p, err := fx.f.TransferWithVault(env, bob, uint256.NewInt(1), "")
		if tt.ok {
			require.NoError(t, err)
			assert.Equal(t, berry.MinGasForReceiver, p.After().Action.Gas)
			assert.Equal(t, berry.GasForCallback, p.Action.Gas)
		} else {
			assert.Equal(t, "not enough gas attached, attach at least 40 TGas", err.Error(), tt.gas)
		}
		fx.st.RevertTo(cp)
	}
}

func TestReceiverChecks(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.f.FtOnTransfer(fx.env(alice, nil), alice, uint256.NewInt(1), `"DepositAndStake"`)
	assert.Equal(t, "this farm can only receive bananas through a contract API", err.Error())

	for _, msg := range []string{"", "DepositAndStake", `"Stake"`, `{"DepositAndStake":1}`} {
		_, err = fx.f.FtOnTransfer(fx.env(tokenID, nil), alice, uint256.NewInt(1), msg)
		assert.Equal(t, "failed to parse the payload", err.Error(), msg)
	}

	unused, err := fx.f.FtOnTransfer(fx.env(tokenID, nil), alice, uint256.NewInt(7), `"DepositAndStake"`)
	require.NoError(t, err)
	assert.True(t, unused.IsZero())
	assert.Equal(t, uint64(7), fx.cucumbers(alice))

	env := fx.env(tokenID, nil)
	p, err := fx.f.OnReceiveWithVault(env, bob, uint256.NewInt(3), 9, `"DepositAndStake"`)
	require.NoError(t, err)
	assert.Equal(t, tokenID, p.Action.Receiver)
	assert.Equal(t, "withdraw_from_vault", p.Action.Method)
	assert.JSONEq(t, `{"vault_id":9,"receiver_id":"farm.near","amount":"3"}`, string(p.Action.Args))
	assert.Equal(t, uint64(3), fx.cucumbers(bob))
	assert.Equal(t, uint64(10), fx.globals().TotalCucumberBalance.Uint64())
}

func TestStorage(t *testing.T) {
	fx := newFixture(t)
	cost := fx.f.storageCost()
	assert.Equal(t, new(uint256.Int).Mul(uint256.NewInt(125), berry.DefaultStorageByteCost), cost)

	bounds := fx.f.StorageBalanceBounds()
	assert.Equal(t, bounds.Min, *bounds.Max)

	short := new(uint256.Int).SubUint64(cost, 1)
	_, err := fx.f.StorageDeposit(fx.env(alice, short), nil, nil)
	assert.Equal(t, reverts.StorageCost, reverts.KindOf(err))
	bal, err := fx.f.StorageBalanceOf(alice)
	require.NoError(t, err)
	assert.Nil(t, bal)

	// registering bob, paid by alice, with excess
	env := fx.env(alice, new(uint256.Int).AddUint64(cost, 10))
	id := bob
	bal, err = fx.f.StorageDeposit(env, &id, nil)
	require.NoError(t, err)
	assert.Equal(t, berry.U128From(cost), bal.Total)
	assert.True(t, bal.Available.IsZero())
	require.Len(t, env.Promises(), 1)
	assert.Equal(t, alice, env.Promises()[0].Action.Receiver)
	assert.Equal(t, uint64(10), env.Promises()[0].Action.Deposit.Uint64())

	// already registered, everything is refunded
	env = fx.env(bob, cost)
	_, err = fx.f.StorageDeposit(env, nil, nil)
	require.NoError(t, err)
	require.Len(t, env.Promises(), 1)
	assert.Equal(t, cost, env.Promises()[0].Action.Deposit)

	_, err = fx.f.StorageWithdraw(fx.env(bob, nil), nil)
	assert.Equal(t, "unimplemented", err.Error())
	_, err = fx.f.StorageUnregister(fx.env(bob, nil), nil)
	assert.Equal(t, "unimplemented", err.Error())
}
