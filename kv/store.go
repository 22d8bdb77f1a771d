// Copyright (c) 2019 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the key-value store the farm state is persisted in.
package kv

// Getter reads values. A missing key is reported as an error recognized by IsNotFound.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter writes values.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Bulk buffers puts until Write applies them atomically.
type Bulk interface {
	Putter
	Len() int
	Write() error
}

// Iterator walks kv pairs in key order.
type Iterator interface {
	First() bool
	Last() bool
	Next() bool
	Prev() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range is the half open key range [Start, Limit).
// An empty Limit means no upper bound.
type Range struct {
	Start []byte
	Limit []byte
}

// Iterable iterates over a key range.
type Iterable interface {
	Iterate(r Range) Iterator
}

// Store is the full kv store the state commits into.
type Store interface {
	Getter
	Putter
	Iterable
	Bulk() Bulk
}
