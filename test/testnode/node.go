// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testnode serves a test chain over the REST API.
package testnode

import (
	"errors"
	"net/http/httptest"
	"sync/atomic"

	"github.com/manaproject/mana/cmd/mana/httpserver"
	"github.com/manaproject/mana/test/testchain"
)

// Node represents a test chain with a running API server.
type Node interface {
	// Chain returns the underlying chain
	Chain() *testchain.Chain

	// Start starts the API server
	Start() error

	// Stop stops the API server
	Stop() error

	// APIServer returns the node api server
	APIServer() *httptest.Server
}

type node struct {
	chain           *testchain.Chain
	config          httpserver.APIConfig
	apiServer       *httptest.Server
	apiServerCloser func()
}

func (n *node) Start() error {
	if n.chain == nil {
		return errors.New("chain is not initialized")
	}
	if n.apiServer != nil {
		return errors.New("node is already running")
	}

	handler, closer := httpserver.NewAPIHandler(&httpserver.Backend{
		Deployment: n.chain.Deployment(),
		Auth:       n.chain.Auth(),
		EventDB:    n.chain.EventDB(),
	}, n.config)

	n.apiServer = httptest.NewServer(handler)
	n.apiServerCloser = closer
	return nil
}

func (n *node) Stop() error {
	if n.apiServer == nil {
		return errors.New("node is not running")
	}
	n.apiServerCloser()
	n.apiServer.Close()
	n.apiServer = nil
	n.apiServerCloser = nil
	return nil
}

func (n *node) Chain() *testchain.Chain {
	return n.chain
}

func (n *node) APIServer() *httptest.Server {
	return n.apiServer
}

func defaultAPIConfig() httpserver.APIConfig {
	return httpserver.APIConfig{
		AllowedOrigins:  "*",
		EnableReqLogger: &atomic.Bool{},
		LogsLimit:       100,
		EnableMetrics:   true,
	}
}
