// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/berryfarm/farm/berry"
)

// Var is a single rlp encoded record stored at a fixed position.
type Var[V any] struct {
	context *Context
	pos     berry.Bytes32
}

func NewVar[V any](context *Context, pos berry.Bytes32) *Var[V] {
	return &Var[V]{context: context, pos: pos}
}

// Get decodes the record into a new value. The second return value reports whether it was ever set.
func (v *Var[V]) Get() (value *V, exists bool, err error) {
	value = new(V)
	err = v.context.state.DecodeStorage(v.context.address, v.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		exists = true
		return rlp.DecodeBytes(raw, value)
	})
	if err != nil {
		return nil, false, err
	}
	return
}

// Set stores the record.
func (v *Var[V]) Set(value *V) error {
	return v.context.state.EncodeStorage(v.context.address, v.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
