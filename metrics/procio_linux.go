// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// procIOFields maps /proc/self/io keys to exported counter names.
// See proc_pid_io(5).
var procIOFields = []struct {
	key, name, help string
}{
	{"syscr", "read_syscalls_total", "Read syscalls issued by the process."},
	{"syscw", "write_syscalls_total", "Write syscalls issued by the process."},
	{"read_bytes", "read_bytes_total", "Bytes fetched from the storage layer."},
	{"write_bytes", "write_bytes_total", "Bytes sent to the storage layer."},
}

// procIOCollector reports the disk activity of the process, dominated by the
// state database. CPU and memory are covered by the default process collector.
type procIOCollector struct {
	path  string
	descs map[string]*prometheus.Desc
}

func newProcIOCollector(path string) *procIOCollector {
	c := &procIOCollector{path: path, descs: make(map[string]*prometheus.Desc, len(procIOFields))}
	for _, f := range procIOFields {
		c.descs[f.key] = prometheus.NewDesc(prometheus.BuildFQName(namespace, "process", f.name), f.help, nil, nil)
	}
	return c
}

func (c *procIOCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *procIOCollector) Collect(ch chan<- prometheus.Metric) {
	f, err := os.Open(c.path)
	if err != nil {
		return
	}
	defer f.Close()

	values, err := parseProcIO(f)
	if err != nil {
		logger.Debug("failed to read process io", "err", err)
		return
	}
	for key, desc := range c.descs {
		if v, ok := values[key]; ok {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v))
		}
	}
}

// parseProcIO reads "key: value" lines, skipping malformed ones.
func parseProcIO(r io.Reader) (map[string]int64, error) {
	values := make(map[string]int64)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, raw, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		values[strings.TrimSpace(key)] = v
	}
	return values, scanner.Err()
}

var procIORegistered atomic.Bool

func registerProcessCollectors() {
	if procIORegistered.CompareAndSwap(false, true) {
		register(newProcIOCollector("/proc/self/io"))
	}
}
