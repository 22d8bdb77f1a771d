// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/berryfarm/farm/berry"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts.
// Values are rlp encoded, an absent entry decodes to the zero value.
type Mapping[K Key, V any] struct {
	context *Context
	basePos berry.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos berry.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) berry.Bytes32 {
	return berry.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value of the key. The second return value reports whether the entry exists.
func (m *Mapping[K, V]) Get(key K) (value V, exists bool, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		exists = true
		return rlp.DecodeBytes(raw, value0(&value))
	})
	return
}

// Set upserts the value of the key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete removes the entry of the key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

// value0 returns the decode target: the pointee for pointer values, else the address.
func value0[V any](v *V) any {
	if reflect.ValueOf(*v).Kind() == reflect.Ptr {
		return *v
	}
	return v
}
