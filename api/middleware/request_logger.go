// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package middleware wraps the REST router with logging and metrics.
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pborman/uuid"

	"github.com/manaproject/mana/log"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "x-request-id"

// maxLoggedBody bounds the logged part of a request body.
const maxLoggedBody = 4096

// RequestLogger logs requests when enabled, and slow requests always.
// A zero slowQueriesThreshold disables slow request logging.
func RequestLogger(logger log.Logger, enabled *atomic.Bool, slowQueriesThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New()
			}
			w.Header().Set(RequestIDHeader, id)

			if !enabled.Load() && slowQueriesThreshold == 0 {
				next.ServeHTTP(w, r)
				return
			}

			var bodyBytes []byte
			if r.Body != nil {
				var err error
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Warn("unexpected body read error", "id", id, "err", err)
					http.Error(w, "unable to read body", http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}

			srw := newStatusResponseWriter(w)
			start := time.Now()
			next.ServeHTTP(srw, r)
			duration := time.Since(start)

			slow := slowQueriesThreshold > 0 && duration > slowQueriesThreshold
			if enabled.Load() || slow {
				if len(bodyBytes) > maxLoggedBody {
					bodyBytes = bodyBytes[:maxLoggedBody]
				}
				logger.Info("API Request",
					"id", id,
					"durationMs", duration.Milliseconds(),
					"uri", r.URL.String(),
					"method", r.Method,
					"status", srw.statusCode,
					"slow", slow,
					"body", string(bodyBytes),
				)
			}
		})
	}
}
