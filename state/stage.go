// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sort"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/kv"
)

// Stage abstracts changes on the state.
type Stage struct {
	keys    []string
	changes map[string][]byte
	cache   *blobCache
}

func newStage(changes map[string][]byte, cache *blobCache) *Stage {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Stage{keys, changes, cache}
}

// Len returns the count of changed entries.
func (s *Stage) Len() int {
	return len(s.keys)
}

// Hash computes the digest of all changes.
// Equal change sets always produce the same digest.
func (s *Stage) Hash() berry.Bytes32 {
	hasher := berry.NewBlake2b()
	for _, k := range s.keys {
		v := s.changes[k]
		// length prefixed to keep entries unambiguous
		hasher.Write([]byte{byte(len(k))})
		hasher.Write([]byte(k))
		hasher.Write([]byte{byte(len(v) >> 8), byte(len(v))})
		hasher.Write(v)
	}
	var h berry.Bytes32
	hasher.Sum(h[:0])
	return h
}

// Commit writes all changes through the given bulk putter.
func (s *Stage) Commit(bulk kv.Bulk) error {
	for _, k := range s.keys {
		v := s.changes[k]
		if len(v) == 0 {
			if err := bulk.Delete([]byte(k)); err != nil {
				return &Error{err}
			}
		} else {
			if err := bulk.Put([]byte(k), v); err != nil {
				return &Error{err}
			}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	if s.cache != nil {
		for _, k := range s.keys {
			if v := s.changes[k]; len(v) == 0 {
				s.cache.Del([]byte(k))
			} else {
				s.cache.Set([]byte(k), v)
			}
		}
	}
	metricStateCommits().Add(1)
	metricStateChanges().Add(int64(len(s.keys)))
	return nil
}
