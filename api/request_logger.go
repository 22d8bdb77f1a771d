// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/berryfarm/farm/log"
)

// maxLoggedBody caps the request body copied into the log.
const maxLoggedBody = 4096

// RequestLoggerHandler logs each request with its body, status and latency.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				logger.Warn("unexpected body read error", "err", err)
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		// the snooping writer keeps Hijacker, so websocket upgrades still work
		m := httpsnoop.CaptureMetrics(handler, w, r)

		if len(body) > maxLoggedBody {
			body = append(body[:maxLoggedBody:maxLoggedBody], "..."...)
		}
		logger.Info("API Request",
			"URI", r.URL.String(),
			"Method", r.Method,
			"Body", string(body),
			"status", m.Code,
			"written", m.Written,
			"elapsed", m.Duration,
		)
	})
}
