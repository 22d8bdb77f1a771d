// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/berryfarm/farm/kv"
)

// Stater is the state creator.
type Stater struct {
	db    kv.Store
	cache *blobCache
}

// NewStater create a new stater.
// cacheSizeMB sets the size of the blob cache, 0 disables it.
func NewStater(db kv.Store, cacheSizeMB int) *Stater {
	var cache *blobCache
	if cacheSizeMB > 0 {
		cache = newBlobCache(cacheSizeMB)
	}
	return &Stater{db, cache}
}

// NewState create a new state object.
func (s *Stater) NewState() *State {
	return newState(s.db, s.cache)
}

// Commit stages the changes of the given state and writes them into the db.
func (s *Stater) Commit(st *State) (*Stage, error) {
	stage, err := st.Stage()
	if err != nil {
		return nil, err
	}
	if stage.Len() == 0 {
		return stage, nil
	}
	if err := stage.Commit(s.db.Bulk()); err != nil {
		return nil, err
	}
	return stage, nil
}
