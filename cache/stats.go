// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Snapshot is a point-in-time copy of cache counters.
type Snapshot struct {
	Hit  int64
	Miss int64
}

// Lookups returns the total number of lookups.
func (s Snapshot) Lookups() int64 { return s.Hit + s.Miss }

// HitRate returns hits over lookups, 0 when nothing was looked up.
func (s Snapshot) HitRate() float64 {
	if n := s.Lookups(); n > 0 {
		return float64(s.Hit) / float64(n)
	}
	return 0
}

// permille is the hit rate rounded down to 1/1000.
func (s Snapshot) permille() int32 {
	return int32(s.HitRate() * 1000)
}

// Stats counts cache lookups. The zero value is ready to use.
type Stats struct {
	hit      atomic.Int64
	miss     atomic.Int64
	reported atomic.Int32
}

// Hit records a hit and returns the running hit count.
func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

// Miss records a miss and returns the running miss count.
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Snapshot reads the counters.
func (cs *Stats) Snapshot() Snapshot {
	return Snapshot{Hit: cs.hit.Load(), Miss: cs.miss.Load()}
}

// Report takes a snapshot and tells whether its hit rate moved since the
// previous Report, so callers log only meaningful changes.
func (cs *Stats) Report() (Snapshot, bool) {
	s := cs.Snapshot()
	p := s.permille()
	return s, cs.reported.Swap(p) != p
}
