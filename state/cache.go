// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/qianbin/directcache"

	"github.com/berryfarm/farm/cache"
	"github.com/berryfarm/farm/log"
)

var logger = log.WithContext("pkg", "state")

// blobCache caches raw values read from or committed to the kv store.
type blobCache struct {
	blobs       *directcache.Cache
	stats       cache.Stats
	lastLogTime atomic.Int64
}

func newBlobCache(sizeMB int) *blobCache {
	c := &blobCache{
		blobs: directcache.New(sizeMB * 1024 * 1024),
	}
	c.lastLogTime.Store(time.Now().UnixNano())
	return c
}

// Get returns the cached value of the full key.
func (c *blobCache) Get(key []byte) ([]byte, bool) {
	var blob []byte
	if c.blobs.AdvGet(key, func(val []byte) {
		blob = slices.Clone(val)
	}, false) {
		c.stats.Hit()
		c.log()
		return blob, true
	}
	c.stats.Miss()
	c.log()
	return nil, false
}

// Set caches the value, empty values are not cached.
func (c *blobCache) Set(key, val []byte) {
	if len(val) == 0 {
		return
	}
	_ = c.blobs.Set(key, val)
}

// Del evicts the key.
func (c *blobCache) Del(key []byte) {
	c.blobs.Del(key)
}

func (c *blobCache) log() {
	now := time.Now().UnixNano()
	last := c.lastLogTime.Swap(now)

	if now-last > int64(time.Second*20) {
		s, changed := c.stats.Report()
		if changed {
			logger.Debug("blob cache stats", "hit", s.Hit, "miss", s.Miss, "hitrate", s.HitRate())
		}
		metricCacheHitMiss().SetWithLabel(s.Hit, map[string]string{"event": "hit"})
		metricCacheHitMiss().SetWithLabel(s.Miss, map[string]string{"event": "miss"})
	} else {
		c.lastLogTime.CompareAndSwap(now, last)
	}
}
