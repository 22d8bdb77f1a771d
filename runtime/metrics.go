// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/berryfarm/farm/metrics"

var (
	metricReceiptCount    = metrics.LazyLoadCounterVec("runtime_receipt_count", []string{"kind", "status"})
	metricReceiptsPerCall = metrics.LazyLoadHistogram("runtime_receipts_per_call", metrics.BucketReceipts)
	metricQueueLength     = metrics.LazyLoadGauge("runtime_queue_length")
	metricDroppedOutcomes = metrics.LazyLoadCounter("runtime_dropped_outcome_count")
)
