// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state holds contract storage and native balances on top of a kv store.
//
// Writes land in a stacked map, so every receipt can be rolled back to the
// checkpoint taken before it ran. Stage replays the surviving journal into a
// single kv bulk:
//
//	State.Set ──> stackedmap ──> Stage ──> kv.Bulk ──> leveldb
//	                  ▲                      │
//	State.Get ────────┴── blob cache <───────┘
//
// Contract storage lives under StorageBucket, keyed by the owner's account
// hash followed by the raw key. Balances live under BalanceBucket, keyed by
// account hash.
package state
