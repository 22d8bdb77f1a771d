// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/cache"
	"github.com/berryfarm/farm/log"
	"github.com/berryfarm/farm/state"
	"github.com/berryfarm/farm/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// ErrInsufficientBalance is returned when a signer cannot cover the attached deposit.
var ErrInsufficientBalance = errors.New("insufficient native balance")

// Options options for creating a runtime.
type Options struct {
	OutcomeCacheSize int
}

// Runtime hosts native contracts and executes receipts one at a time.
// Every receipt runs on its own state checkpoint and is committed or
// reverted as a unit.
type Runtime struct {
	mu        sync.Mutex
	stater    *state.Stater
	contracts map[berry.AccountID]Contract
	queue     []*Receipt            // ready receipts in FIFO order
	waiting   map[uint64][]*Receipt // awaited receipt id => receipts waiting for its result
	nextID    uint64
	outcomes  *cache.LRU[uint64, *ReceiptOutcome]
	feed      outcomeFeed
}

// New create a Runtime object.
func New(stater *state.Stater, opts Options) *Runtime {
	size := opts.OutcomeCacheSize
	if size <= 0 {
		size = 4096
	}
	outcomes, _ := cache.NewLRU[uint64, *ReceiptOutcome](size)
	return &Runtime{
		stater:    stater,
		contracts: make(map[berry.AccountID]Contract),
		waiting:   make(map[uint64][]*Receipt),
		nextID:    1,
		outcomes:  outcomes,
	}
}

// Register deploys the contract at the given account.
func (rt *Runtime) Register(id berry.AccountID, c Contract) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.contracts[id] = c
}

// Balance returns the committed native balance of the account.
func (rt *Runtime) Balance(id berry.AccountID) (*uint256.Int, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	bal, err := rt.stater.NewState().GetBalance(id)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Set(bal), nil
}

// Mint credits native balance out of thin air. It's used to set up genesis balances.
func (rt *Runtime) Mint(id berry.AccountID, amount *uint256.Int) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	st := rt.stater.NewState()
	if err := st.AddBalance(id, amount); err != nil {
		return err
	}
	_, err := rt.stater.Commit(st)
	return err
}

// Pending returns the count of receipts not yet executed.
func (rt *Runtime) Pending() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n := len(rt.queue)
	for _, w := range rt.waiting {
		n += len(w)
	}
	return n
}

// Receipt returns the outcome of a recently executed receipt.
func (rt *Runtime) Receipt(id uint64) (*ReceiptOutcome, bool) {
	return rt.outcomes.Get(id)
}

// Submit enqueues a function call signed by signer. The deposit is taken from the
// signer immediately and refunded if the call fails.
func (rt *Runtime) Submit(signer, receiver berry.AccountID, method string, args any, deposit *uint256.Int, gas berry.Gas) (uint64, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.submit(signer, receiver, method, args, deposit, gas)
}

func (rt *Runtime) submit(signer, receiver berry.AccountID, method string, args any, deposit *uint256.Int, gas berry.Gas) (uint64, error) {
	data, err := encodeArgs(args)
	if err != nil {
		return 0, err
	}
	if deposit == nil {
		deposit = new(uint256.Int)
	}
	if gas == 0 {
		gas = berry.DefaultPrepaidGas
	}
	if !deposit.IsZero() {
		st := rt.stater.NewState()
		ok, err := st.SubBalance(signer, deposit)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrInsufficientBalance
		}
		if _, err := rt.stater.Commit(st); err != nil {
			return 0, err
		}
	}

	r := &Receipt{
		ID:          rt.nextID,
		Predecessor: signer,
		Signer:      signer,
		Action: xenv.Action{
			Kind:     xenv.FunctionCallAction,
			Receiver: receiver,
			Method:   method,
			Args:     data,
			Deposit:  new(uint256.Int).Set(deposit),
			Gas:      gas,
		},
	}
	rt.nextID++
	rt.enqueue(r)
	logger.Debug("receipt submitted", "id", r.ID, "signer", signer, "receiver", receiver, "method", method)
	return r.ID, nil
}

// Step executes the next ready receipt. It returns nil when nothing is ready.
func (rt *Runtime) Step() (*ReceiptOutcome, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.step()
}

// Run executes receipts until none is ready.
func (rt *Runtime) Run(ctx context.Context) ([]*ReceiptOutcome, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.run(ctx)
}

func (rt *Runtime) run(ctx context.Context) ([]*ReceiptOutcome, error) {
	var outs []*ReceiptOutcome
	for {
		select {
		case <-ctx.Done():
			return outs, ctx.Err()
		default:
		}
		out, err := rt.step()
		if err != nil {
			return outs, err
		}
		if out == nil {
			return outs, nil
		}
		outs = append(outs, out)
	}
}

// Call submits a function call and runs it together with every receipt it causes.
// The final status follows promise forwarding from the submitted receipt.
func (rt *Runtime) Call(ctx context.Context, signer, receiver berry.AccountID, method string, args any, deposit *uint256.Int, gas berry.Gas) (*Outcome, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	id, err := rt.submit(signer, receiver, method, args, deposit, gas)
	if err != nil {
		return nil, err
	}
	outs, err := rt.run(ctx)
	if err != nil {
		return nil, err
	}
	metricReceiptsPerCall().Observe(int64(len(outs)))

	executed := make(map[uint64]*ReceiptOutcome, len(outs))
	for _, o := range outs {
		executed[o.ID] = o
	}
	outcome := &Outcome{Receipts: outs}
	for {
		o, ok := executed[id]
		if !ok {
			outcome.Status = xenv.NotReady
			break
		}
		if o.ForwardedTo != 0 {
			id = o.ForwardedTo
			continue
		}
		outcome.Status, outcome.Value, outcome.Error = o.Status, o.Value, o.Error
		break
	}
	return outcome, nil
}

// View runs a read-only entry point. Changes are discarded and promises are not allowed.
func (rt *Runtime) View(receiver berry.AccountID, method string, args any) (json.RawMessage, error) {
	data, err := encodeArgs(args)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	env := xenv.New(&xenv.ReceiptContext{
		Current:    receiver,
		PrepaidGas: berry.DefaultPrepaidGas,
	}, rt.stater.NewState(), nil)

	ret, err := rt.invoke(env, receiver, method, data)
	if err != nil {
		return nil, err
	}
	if len(env.Promises()) > 0 {
		return nil, reverts.NewValidation("view method %s cannot schedule promises", method)
	}
	if ret == nil {
		return nil, nil
	}
	return ret.Value, nil
}

func (rt *Runtime) enqueue(r *Receipt) {
	rt.queue = append(rt.queue, r)
	metricQueueLength().Set(int64(len(rt.queue)))
}

func (rt *Runtime) step() (*ReceiptOutcome, error) {
	if len(rt.queue) == 0 {
		return nil, nil
	}
	r := rt.queue[0]
	rt.queue[0] = nil
	rt.queue = rt.queue[1:]
	metricQueueLength().Set(int64(len(rt.queue)))

	out := &ReceiptOutcome{
		ID:          r.ID,
		Predecessor: r.Predecessor,
		Receiver:    r.Action.Receiver,
		Kind:        r.Action.Kind.String(),
		Method:      r.Action.Method,
		Deposit:     berry.U128From(r.Action.Deposit),
	}

	st := rt.stater.NewState()
	var sp *spawn

	switch r.Action.Kind {
	case xenv.TransferAction:
		if err := st.AddBalance(r.Action.Receiver, r.Action.Deposit); err != nil {
			return nil, err
		}
		out.Status = xenv.Successful
	case xenv.FunctionCallAction:
		var err error
		if sp, err = rt.execute(st, r, out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown action kind %d", r.Action.Kind)
	}

	stage, err := rt.stater.Commit(st)
	if err != nil {
		logger.Error("failed to commit receipt", "id", r.ID, "err", err)
		return nil, err
	}
	out.StateDigest = stage.Hash()

	rt.settle(r, out, sp)

	metricReceiptCount().AddWithLabel(1, map[string]string{"kind": out.Kind, "status": out.Status.String()})
	rt.outcomes.Add(out.ID, out)
	rt.feed.send(out)
	logger.Debug("receipt executed",
		"id", out.ID,
		"receiver", out.Receiver,
		"method", out.Method,
		"status", out.Status,
		"error", out.Error,
	)
	return out, nil
}

// spawn holds the receipts created by a successful function call.
type spawn struct {
	receipts []*Receipt
	after    []int // index of the awaited receipt, -1 if none
}

// execute runs a function call receipt on st. It returns the receipts to spawn
// when the call succeeded. Only host failures are returned as error.
func (rt *Runtime) execute(st *state.State, r *Receipt, out *ReceiptOutcome) (*spawn, error) {
	checkpoint := st.NewCheckpoint()

	fail := func(cause error) (*spawn, error) {
		st.RevertTo(checkpoint)
		// refund the attached deposit
		if !r.Action.Deposit.IsZero() {
			if err := st.AddBalance(r.Predecessor, r.Action.Deposit); err != nil {
				return nil, err
			}
		}
		out.Status = xenv.Failed
		out.Error = cause.Error()
		out.Logs = nil
		return nil, nil
	}

	current := r.Action.Receiver
	if err := st.AddBalance(current, r.Action.Deposit); err != nil {
		return nil, err
	}

	env := xenv.New(&xenv.ReceiptContext{
		ID:          r.ID,
		Current:     current,
		Predecessor: r.Predecessor,
		Signer:      r.Signer,
		Deposit:     r.Action.Deposit,
		PrepaidGas:  r.Action.Gas,
	}, st, r.results)

	ret, err := rt.invoke(env, current, r.Action.Method, r.Action.Args)
	out.Logs = env.Logs()
	if err != nil {
		return fail(err)
	}

	promises := env.Promises()
	sp := &spawn{
		receipts: make([]*Receipt, len(promises)),
		after:    make([]int, len(promises)),
	}
	for i, p := range promises {
		if !p.Action.Deposit.IsZero() {
			ok, err := st.SubBalance(current, p.Action.Deposit)
			if err != nil {
				return nil, err
			}
			if !ok {
				return fail(reverts.NewInsufficientBalance("not enough balance to attach deposit"))
			}
		}
		action := p.Action
		if action.Kind == xenv.FunctionCallAction && action.Gas == 0 {
			action.Gas = r.Action.Gas
		}
		sp.receipts[i] = &Receipt{
			ID:          rt.nextID + uint64(i),
			Predecessor: current,
			Signer:      r.Signer,
			Action:      action,
		}
		sp.after[i] = -1
		if after := p.After(); after != nil {
			sp.after[i] = after.Index()
		}
	}

	out.Status = xenv.Successful
	if ret != nil {
		if ret.Promise != nil {
			idx := ret.Promise.Index()
			if idx >= len(sp.receipts) || promises[idx] != ret.Promise {
				return fail(errors.New("returned promise not created by the receipt"))
			}
			out.ForwardedTo = sp.receipts[idx].ID
		} else {
			out.Value = ret.Value
		}
	}
	return sp, nil
}

// settle schedules the spawned receipts and delivers the result of r to its waiters.
func (rt *Runtime) settle(r *Receipt, out *ReceiptOutcome, sp *spawn) {
	if sp != nil {
		rt.nextID += uint64(len(sp.receipts))
		// receipts created by r run after it, in creation order
		for i, s := range sp.receipts {
			out.Spawned = append(out.Spawned, s.ID)
			if a := sp.after[i]; a >= 0 {
				awaited := sp.receipts[a].ID
				rt.waiting[awaited] = append(rt.waiting[awaited], s)
			} else {
				rt.enqueue(s)
			}
		}
	}

	waiters := rt.waiting[r.ID]
	delete(rt.waiting, r.ID)
	if len(waiters) == 0 {
		return
	}
	if out.ForwardedTo != 0 {
		// the result of r is the result of the forwarded receipt
		rt.waiting[out.ForwardedTo] = append(rt.waiting[out.ForwardedTo], waiters...)
		return
	}
	result := xenv.PromiseResult{Status: out.Status, Value: out.Value}
	for _, w := range waiters {
		w.results = append(w.results, result)
		rt.enqueue(w)
	}
}

// invoke calls the contract, recovering panics as failures.
func (rt *Runtime) invoke(env *xenv.Environment, receiver berry.AccountID, method string, args []byte) (ret *xenv.Return, err error) {
	c, ok := rt.contracts[receiver]
	if !ok {
		return nil, reverts.NewNotFound(fmt.Sprintf("account %s has no contract", receiver))
	}
	defer func() {
		if e := recover(); e != nil {
			logger.Warn("contract panicked", "receiver", receiver, "method", method, "panic", e)
			ret, err = nil, fmt.Errorf("contract panicked: %v", e)
		}
	}()
	return c.Invoke(env, method, args)
}

func encodeArgs(args any) ([]byte, error) {
	switch v := args.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Wrap(err, "encode args")
	}
	return data, nil
}
