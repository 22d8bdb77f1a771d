// Copyright (c) 2021 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/syndtr/goleveldb/leveldb/util"

// Bucket is a key prefix that partitions a store.
type Bucket string

// Key returns the full key of the given key in the bucket.
func (b Bucket) Key(key []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(key)), b...), key...)
}

// Range returns the range spanning every key in the bucket.
func (b Bucket) Range() Range {
	r := util.BytesPrefix([]byte(b))
	return Range{Start: r.Start, Limit: r.Limit}
}

// ForEach calls fn with each pair of the bucket in key order, the bucket
// prefix stripped from keys. Iteration stops early when fn returns false.
// Slices passed to fn are only valid during the call.
func (b Bucket) ForEach(src Iterable, fn func(key, val []byte) bool) error {
	it := src.Iterate(b.Range())
	defer it.Release()

	for it.Next() {
		if !fn(it.Key()[len(b):], it.Value()) {
			break
		}
	}
	return it.Error()
}
