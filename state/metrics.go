// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/berryfarm/farm/metrics"

var (
	metricStateCommits = metrics.LazyLoadCounter("state_commit_count")
	metricStateChanges = metrics.LazyLoadCounter("state_changed_entry_count")
	metricCacheHitMiss = metrics.LazyLoadGaugeVec("state_cache_hit_miss_count", []string{"event"})
)
