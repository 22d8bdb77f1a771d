// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/kv"
	"github.com/berryfarm/farm/stackedmap"
)

const (
	// StorageBucket is the kv bucket of contract storage.
	StorageBucket = kv.Bucket("s")
	// BalanceBucket is the kv bucket of native balances.
	BalanceBucket = kv.Bucket("b")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type (
	storageKey struct {
		addr berry.AccountHash
		key  berry.Bytes32
	}
	balanceKey berry.AccountHash
)

// State manages the contract storage and native balances.
type State struct {
	src   kv.Getter
	cache *blobCache
	sm    *stackedmap.StackedMap[any, any] // keeps revisions of state
}

// New create state object over the given source.
func New(src kv.Getter) *State {
	return newState(src, nil)
}

func newState(src kv.Getter, cache *blobCache) *State {
	s := &State{
		src:   src,
		cache: cache,
	}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (any, bool, error) {
	switch k := key.(type) {
	case storageKey:
		v, err := s.load(StorageBucket, storageKeyBytes(k.addr, k.key))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(v), true, nil
	case balanceKey:
		v, err := s.load(BalanceBucket, k[:])
		if err != nil {
			return nil, false, err
		}
		bal := new(uint256.Int)
		if len(v) > 0 {
			if err := rlp.DecodeBytes(v, bal); err != nil {
				return nil, false, err
			}
		}
		return bal, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) load(bucket kv.Bucket, key []byte) ([]byte, error) {
	full := bucket.Key(key)
	if s.cache != nil {
		if v, ok := s.cache.Get(full); ok {
			return v, nil
		}
	}
	v, err := s.src.Get(full)
	if err != nil {
		if s.src.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(full, v)
	}
	return v, nil
}

func storageKeyBytes(addr berry.AccountHash, key berry.Bytes32) []byte {
	return append(append(make([]byte, 0, len(addr)+len(key)), addr[:]...), key[:]...)
}

// GetBalance returns the native balance of the given account.
// The returned value should not be modified.
func (s *State) GetBalance(addr berry.AccountID) (*uint256.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr.Hash()))
	if err != nil {
		return nil, &Error{err}
	}
	return v.(*uint256.Int), nil
}

// SetBalance sets the native balance of the given account.
func (s *State) SetBalance(addr berry.AccountID, balance *uint256.Int) {
	s.sm.Put(balanceKey(addr.Hash()), new(uint256.Int).Set(balance))
}

// AddBalance credits amount to the native balance of the given account.
func (s *State) AddBalance(addr berry.AccountID, amount *uint256.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	sum, err := berry.AddU128(bal, amount)
	if err != nil {
		return &Error{err}
	}
	s.SetBalance(addr, sum)
	return nil
}

// SubBalance debits amount from the native balance of the given account.
// It returns false if the balance is insufficient.
func (s *State) SubBalance(addr berry.AccountID, amount *uint256.Int) (bool, error) {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if bal.Lt(amount) {
		return false, nil
	}
	s.SetBalance(addr, new(uint256.Int).Sub(bal, amount))
	return true, nil
}

// GetStorage returns storage value for the given account and key.
func (s *State) GetStorage(addr berry.AccountID, key berry.Bytes32) (berry.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return berry.Bytes32{}, err
	}
	if len(raw) == 0 {
		return berry.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return berry.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return berry.Blake2b(raw), nil
	}
	return berry.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given account and key.
func (s *State) SetStorage(addr berry.AccountID, key, value berry.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given account and key.
func (s *State) GetRawStorage(addr berry.AccountID, key berry.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr.Hash(), key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
// An empty value deletes the entry.
func (s *State) SetRawStorage(addr berry.AccountID, key berry.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr.Hash(), key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr berry.AccountID, key berry.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr berry.AccountID, key berry.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage makes a stage object to digest or commit all changes.
func (s *State) Stage() (*Stage, error) {
	changes := make(map[string][]byte)
	var jerr error

	// traverse journal to build changes, later puts override earlier ones
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case storageKey:
			changes[string(StorageBucket.Key(storageKeyBytes(key.addr, key.key)))] = v.(rlp.RawValue)
		case balanceKey:
			bal := v.(*uint256.Int)
			if bal.IsZero() {
				changes[string(BalanceBucket.Key(key[:]))] = nil
				return true
			}
			enc, err := rlp.EncodeToBytes(bal)
			if err != nil {
				jerr = err
				return false
			}
			changes[string(BalanceBucket.Key(key[:]))] = enc
		}
		return true
	})
	if jerr != nil {
		return nil, &Error{jerr}
	}
	return newStage(changes, s.cache), nil
}
