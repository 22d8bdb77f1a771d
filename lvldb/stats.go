// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"context"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/berryfarm/farm/log"
	"github.com/berryfarm/farm/metrics"
)

var (
	logger = log.WithContext("pkg", "lvldb")

	metricSize        = metrics.LazyLoadGauge("lvldb_size_bytes")
	metricTables      = metrics.LazyLoadGauge("lvldb_open_tables")
	metricIO          = metrics.LazyLoadGaugeVec("lvldb_io_bytes", []string{"op"})
	metricWriteDelays = metrics.LazyLoadGauge("lvldb_write_delay_count")
	metricCompactions = metrics.LazyLoadGaugeVec("lvldb_compaction_count", []string{"kind"})
)

// Stats summarizes the db internals.
type Stats struct {
	Size        int64 // sum of all levels
	OpenTables  int
	IORead      uint64
	IOWrite     uint64
	WriteDelays int32
	WritePaused bool
	// compactions by kind
	MemComp, Level0Comp, NonLevel0Comp, SeekComp uint32
}

// Stats reads the current db stats.
func (ldb *LevelDB) Stats() (Stats, error) {
	var s leveldb.DBStats
	if err := ldb.db.Stats(&s); err != nil {
		return Stats{}, err
	}
	return Stats{
		Size:          s.LevelSizes.Sum(),
		OpenTables:    s.OpenedTablesCount,
		IORead:        s.IORead,
		IOWrite:       s.IOWrite,
		WriteDelays:   s.WriteDelayCount,
		WritePaused:   s.WritePaused,
		MemComp:       s.MemComp,
		Level0Comp:    s.Level0Comp,
		NonLevel0Comp: s.NonLevel0Comp,
		SeekComp:      s.SeekComp,
	}, nil
}

func (s *Stats) publish() {
	metricSize().Set(s.Size)
	metricTables().Set(int64(s.OpenTables))
	metricIO().SetWithLabel(int64(s.IORead), map[string]string{"op": "read"})
	metricIO().SetWithLabel(int64(s.IOWrite), map[string]string{"op": "write"})
	metricWriteDelays().Set(int64(s.WriteDelays))
	for kind, n := range map[string]uint32{
		"mem":    s.MemComp,
		"level0": s.Level0Comp,
		"levelN": s.NonLevel0Comp,
		"seek":   s.SeekComp,
	} {
		metricCompactions().SetWithLabel(int64(n), map[string]string{"kind": kind})
	}
}

// ReportStats publishes the stats as metrics every interval until ctx is done.
func (ldb *LevelDB) ReportStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var paused bool
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, err := ldb.Stats()
			if err != nil {
				logger.Debug("failed to read db stats", "err", err)
				continue
			}
			s.publish()
			if s.WritePaused != paused {
				paused = s.WritePaused
				logger.Warn("db write paused", "paused", paused, "delays", s.WriteDelays)
			}
		}
	}
}
