// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProcIO = `rchar: 323934931
wchar: 323929600
syscr: 632687
syscw: 632675
read_bytes: 4096
write_bytes: 323932160
cancelled_write_bytes: 0
garbage
bad: x
`

func TestParseProcIO(t *testing.T) {
	values, err := parseProcIO(strings.NewReader(sampleProcIO))
	require.NoError(t, err)
	assert.Equal(t, int64(632687), values["syscr"])
	assert.Equal(t, int64(323932160), values["write_bytes"])
	assert.NotContains(t, values, "bad")
	assert.Len(t, values, 7)
}

func TestProcIOCollector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "io")
	require.NoError(t, os.WriteFile(path, []byte(sampleProcIO), 0o600))

	c := newProcIOCollector(path)
	assert.Equal(t, len(procIOFields), testutil.CollectAndCount(c))

	expected := `
# HELP berryfarm_process_read_bytes_total Bytes fetched from the storage layer.
# TYPE berryfarm_process_read_bytes_total counter
berryfarm_process_read_bytes_total 4096
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "berryfarm_process_read_bytes_total"))

	// a missing file yields nothing
	assert.Zero(t, testutil.CollectAndCount(newProcIOCollector(filepath.Join(t.TempDir(), "none"))))
}
