// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import "github.com/berryfarm/farm/metrics"

var (
	metricTransfers   = metrics.LazyLoadCounterVec("farm_transfer_count", []string{"protocol"})
	metricRefunds     = metrics.LazyLoadCounter("farm_refund_count")
	metricVaultEvents = metrics.LazyLoadCounterVec("farm_vault_event_count", []string{"event"})
	metricInjections  = metrics.LazyLoadCounter("farm_reward_injection_count")
	metricClaims      = metrics.LazyLoadCounter("farm_claim_count")
	metricDeposits    = metrics.LazyLoadCounterVec("farm_deposit_count", []string{"source"})
)
