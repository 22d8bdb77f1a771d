// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	var r registry = noop{}

	// any label set is accepted
	r.counterVec("c", []string{"a"}).AddWithLabel(1, map[string]string{"nonsense": "x"})
	r.gaugeVec("g", nil).SetWithLabel(1, nil)
	r.histogramVec("h", nil, nil).ObserveWithLabels(1, map[string]string{"b": "c"})
	r.counter("c").Add(1)
	r.gauge("g").Set(1)
	r.histogram("h", nil).Observe(1)

	rec := httptest.NewRecorder()
	r.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
