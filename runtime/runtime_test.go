// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/lvldb"
	"github.com/berryfarm/farm/runtime"
	"github.com/berryfarm/farm/state"
	"github.com/berryfarm/farm/xenv"
)

const (
	alice  = berry.AccountID("alice.near")
	caller = berry.AccountID("caller.near")
	callee = berry.AccountID("callee.near")
	relay  = berry.AccountID("relay.near")
)

var counterKey = berry.Blake2b([]byte("counter"))

func newRuntime(t *testing.T) *runtime.Runtime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rt := runtime.New(state.NewStater(db, 1), runtime.Options{})
	require.NoError(t, rt.Mint(alice, uint256.NewInt(1000)))
	return rt
}

func incr(env *xenv.Environment) error {
	st := env.State()
	v, err := st.GetStorage(env.CurrentAccountID(), counterKey)
	if err != nil {
		return err
	}
	n := new(uint256.Int).SetBytes(v.Bytes())
	n.AddUint64(n, 1)
	st.SetStorage(env.CurrentAccountID(), counterKey, berry.Bytes32(n.Bytes32()))
	return nil
}

func counter(t *testing.T, rt *runtime.Runtime, id berry.AccountID) uint64 {
	out, err := rt.View(id, "counter", nil)
	require.NoError(t, err)
	var n uint64
	require.NoError(t, json.Unmarshal(out, &n))
	return n
}

// calleeContract counts calls, fails on "fail", panics on "panic" and echoes args on "echo".
func calleeContract() runtime.Contract {
	return runtime.ContractFunc(func(env *xenv.Environment, method string, args []byte) (*xenv.Return, error) {
		switch method {
		case "echo":
			if err := incr(env); err != nil {
				return nil, err
			}
			env.Log("echo %s", args)
			return &xenv.Return{Value: args}, nil
		case "fail":
			if err := incr(env); err != nil {
				return nil, err
			}
			return nil, reverts.NewValidation("failed on purpose")
		case "panic":
			panic("boom")
		case "counter":
			v, err := env.State().GetStorage(env.CurrentAccountID(), counterKey)
			if err != nil {
				return nil, err
			}
			return xenv.ReturnValue(new(uint256.Int).SetBytes(v.Bytes()).Uint64())
		}
		return nil, errors.New("unknown method")
	})
}

// relayContract forwards "forward" to callee.echo, returning its promise.
func relayContract() runtime.Contract {
	return runtime.ContractFunc(func(env *xenv.Environment, method string, args []byte) (*xenv.Return, error) {
		p, err := env.FunctionCall(callee, "echo", json.RawMessage(args), nil, 0)
		if err != nil {
			return nil, err
		}
		return xenv.ReturnPromise(p), nil
	})
}

// callerContract calls target.method then its own "callback" which returns the observed result.
func callerContract() runtime.Contract {
	return runtime.ContractFunc(func(env *xenv.Environment, method string, args []byte) (*xenv.Return, error) {
		switch method {
		case "call":
			var a struct {
				Target berry.AccountID `json:"target"`
				Method string          `json:"method"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			remote, err := env.FunctionCall(a.Target, a.Method, "ping", nil, 10*berry.TGas)
			if err != nil {
				return nil, err
			}
			cb, err := env.FunctionCall(env.CurrentAccountID(), "callback", nil, nil, 5*berry.TGas)
			if err != nil {
				return nil, err
			}
			return xenv.ReturnPromise(remote.Then(cb)), nil
		case "callback":
			if err := env.AssertPrivate("callback"); err != nil {
				return nil, err
			}
			res := env.PromiseResult(0)
			var s string
			if !res.Decode(&s) {
				return xenv.ReturnValue("failed")
			}
			return xenv.ReturnValue(s)
		case "pay":
			env.Transfer(alice, env.AttachedDeposit())
			return xenv.ReturnNone(), nil
		}
		return nil, errors.New("unknown method")
	})
}

func setup(t *testing.T) *runtime.Runtime {
	rt := newRuntime(t)
	rt.Register(callee, calleeContract())
	rt.Register(caller, callerContract())
	rt.Register(relay, relayContract())
	return rt
}

func TestCallValue(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, callee, "echo", "hello", nil, 0)
	require.NoError(t, err)

	assert.True(t, out.Succeeded())
	assert.Equal(t, `"hello"`, string(out.Value))
	assert.Equal(t, []string{`echo "hello"`}, out.Logs())
	assert.Len(t, out.Receipts, 1)
	assert.Equal(t, uint64(1), counter(t, rt, callee))

	r, ok := rt.Receipt(out.Receipts[0].ID)
	assert.True(t, ok)
	assert.Equal(t, out.Receipts[0], r)
}

func TestFailureRevertsAndRefunds(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, callee, "fail", nil, uint256.NewInt(100), 0)
	require.NoError(t, err)

	assert.Equal(t, xenv.Failed, out.Status)
	assert.Equal(t, "failed on purpose", out.Error)
	assert.Empty(t, out.Logs())
	assert.Equal(t, uint64(0), counter(t, rt, callee))

	bal, err := rt.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal.Uint64())
	bal, err = rt.Balance(callee)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestPanicRecovered(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, callee, "panic", nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, xenv.Failed, out.Status)
	assert.Contains(t, out.Error, "boom")
}

func TestUnknownContract(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, "nobody.near", "x", nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, xenv.Failed, out.Status)
	assert.Equal(t, "account nobody.near has no contract", out.Error)
}

func TestInsufficientSignerBalance(t *testing.T) {
	rt := setup(t)
	_, err := rt.Call(context.Background(), alice, callee, "echo", nil, uint256.NewInt(1001), 0)
	assert.Equal(t, runtime.ErrInsufficientBalance, err)
}

func TestCallbackReceivesResult(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, caller, "call", map[string]any{"target": callee, "method": "echo"}, nil, 0)
	require.NoError(t, err)

	assert.True(t, out.Succeeded())
	assert.Equal(t, `"ping"`, string(out.Value))
	require.Len(t, out.Receipts, 3)
	assert.Equal(t, []string{"call", "echo", "callback"}, []string{
		out.Receipts[0].Method, out.Receipts[1].Method, out.Receipts[2].Method,
	})
	assert.Equal(t, out.Receipts[2].ID, out.Receipts[0].ForwardedTo)
}

func TestCallbackReceivesFailure(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, caller, "call", map[string]any{"target": callee, "method": "fail"}, nil, 0)
	require.NoError(t, err)

	// the continuation still runs after a failed remote call
	assert.True(t, out.Succeeded())
	assert.Equal(t, `"failed"`, string(out.Value))
	assert.Equal(t, xenv.Failed, out.Receipts[1].Status)
}

func TestForwardedResult(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, caller, "call", map[string]any{"target": relay, "method": "forward"}, nil, 0)
	require.NoError(t, err)

	assert.True(t, out.Succeeded())
	assert.Equal(t, `"ping"`, string(out.Value))
	require.Len(t, out.Receipts, 4)
	// the callback runs only after the forwarded receipt
	assert.Equal(t, []string{"call", "forward", "echo", "callback"}, []string{
		out.Receipts[0].Method, out.Receipts[1].Method, out.Receipts[2].Method, out.Receipts[3].Method,
	})
}

func TestPrivateCallback(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, caller, "callback", nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, xenv.Failed, out.Status)
	assert.Equal(t, "method callback is private", out.Error)
}

func TestTransferAction(t *testing.T) {
	rt := setup(t)
	out, err := rt.Call(context.Background(), alice, caller, "pay", nil, uint256.NewInt(300), 0)
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
	require.Len(t, out.Transfers(), 1)
	assert.Equal(t, "300", out.Transfers()[0].Deposit.String())

	bal, err := rt.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal.Uint64())
	bal, err = rt.Balance(caller)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestStepInterleaving(t *testing.T) {
	rt := setup(t)
	_, err := rt.Submit(alice, caller, "call", map[string]any{"target": callee, "method": "echo"}, nil, 0)
	require.NoError(t, err)
	_, err = rt.Submit(alice, callee, "echo", "other", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Pending())

	var methods []string
	for {
		out, err := rt.Step()
		require.NoError(t, err)
		if out == nil {
			break
		}
		methods = append(methods, out.Method)
	}
	// the second submission runs between the remote call creation and the callback
	assert.Equal(t, []string{"call", "echo", "echo", "callback"}, methods)
	assert.Equal(t, 0, rt.Pending())
	assert.Equal(t, uint64(2), counter(t, rt, callee))
}

func TestRunCancelled(t *testing.T) {
	rt := setup(t)
	_, err := rt.Submit(alice, callee, "echo", nil, nil, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outs, err := rt.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, outs)
	assert.Equal(t, 1, rt.Pending())
}

func TestViewRejectsPromises(t *testing.T) {
	rt := setup(t)
	_, err := rt.View(relay, "forward", nil)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestSubscribeOutcomes(t *testing.T) {
	rt := setup(t)
	ch := make(chan *runtime.ReceiptOutcome, 10)
	rt.SubscribeOutcomes(ch)

	out, err := rt.Call(context.Background(), alice, caller, "pay", nil, uint256.NewInt(300), 0)
	require.NoError(t, err)
	require.Len(t, ch, len(out.Receipts))
	for _, r := range out.Receipts {
		assert.Equal(t, r, <-ch)
	}

	rt.UnsubscribeOutcomes(ch)
	_, err = rt.Call(context.Background(), alice, caller, "pay", nil, uint256.NewInt(1), 0)
	require.NoError(t, err)
	assert.Len(t, ch, 0)

	// a full listener doesn't block execution
	full := make(chan *runtime.ReceiptOutcome)
	rt.SubscribeOutcomes(full)
	out, err = rt.Call(context.Background(), alice, caller, "pay", nil, uint256.NewInt(1), 0)
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
}
