// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/manaproject/mana/api/accounts"
	"github.com/manaproject/mana/api/events"
	"github.com/manaproject/mana/api/middleware"
	"github.com/manaproject/mana/api/restutil"
	"github.com/manaproject/mana/api/settlement"
	"github.com/manaproject/mana/api/subscriptions"
	"github.com/manaproject/mana/api/token"
	"github.com/manaproject/mana/auth"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/genesis"
	"github.com/manaproject/mana/log"
)

var logger = log.WithContext("pkg", "api")

// maxRequestBodySize bounds request bodies, signed envelopes are small.
const maxRequestBodySize = 200 * 1024

// APIConfig configures the REST API.
type APIConfig struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	LogsLimit            uint64
	SkipLogs             bool
	EnableMetrics        bool
	PprofOn              bool
	PingInterval         time.Duration
}

// Backend is what the API serves.
type Backend struct {
	Deployment *genesis.Deployment
	Auth       *auth.Authenticator
	EventDB    *eventdb.EventDB
}

// NewAPIHandler returns the API handler and a function closing the
// subscriptions, which hold hijacked connections.
func NewAPIHandler(backend *Backend, config APIConfig) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(config.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	engine := backend.Deployment.Engine
	accs := accounts.New(backend.Deployment.Token, backend.Auth, engine.Address())
	accs.Mount(router, "/accounts")
	token.New(backend.Deployment.Token, backend.Auth, accs).
		Mount(router, "/token")
	settlement.New(engine, backend.Auth).
		Mount(router, "/mana")

	closeSubs := func() {}
	if !config.SkipLogs {
		events.New(backend.EventDB, config.LogsLimit).
			Mount(router, "/logs/event")
		pingInterval := config.PingInterval
		if pingInterval <= 0 {
			pingInterval = 30 * time.Second
		}
		subs := subscriptions.New(backend.EventDB, origins, pingInterval)
		subs.Mount(router, "/subscriptions")
		closeSubs = subs.Close
	}

	if config.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if config.EnableMetrics {
		router.Use(middleware.Metrics)
	}
	if config.EnableReqLogger != nil {
		router.Use(middleware.RequestLogger(logger, config.EnableReqLogger, config.SlowQueriesThreshold))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{restutil.RevertHeader, middleware.RequestIDHeader}),
	)(handler)

	return handler.ServeHTTP, closeSubs
}

// StartAPIServer serves handler on addr. A positive timeout bounds each
// request.
func StartAPIServer(addr string, handler http.Handler, timeout time.Duration) (string, func(), error) {
	if timeout > 0 {
		handler = handleAPITimeout(handler, timeout)
	}
	handler = requestBodyLimit(handler)

	// no read timeout, subscriptions keep reading
	return serve("API", addr, "/", &http.Server{Handler: handler, ReadHeaderTimeout: time.Second})
}

func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// websocket connections are long-lived
		if r.Header.Get("Upgrade") == "websocket" {
			h.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		h.ServeHTTP(w, r)
	})
}
