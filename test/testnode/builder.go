// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testnode

import (
	"fmt"
	"time"

	"github.com/manaproject/mana/test/testchain"
)

// NodeBuilder implements the builder pattern for creating a test node instance
type NodeBuilder struct {
	chain *testchain.Chain
	opts  []APIOption
}

// APIOption adjusts the API config of the node.
type APIOption func(n *node)

// NewNodeBuilder creates a new NodeBuilder with default configuration
func NewNodeBuilder() *NodeBuilder {
	return &NodeBuilder{}
}

// WithChain sets the chain for the node.
// If not set, a default chain will be created during Build().
func (b *NodeBuilder) WithChain(chain *testchain.Chain) *NodeBuilder {
	if chain == nil {
		panic("chain cannot be nil")
	}
	b.chain = chain
	return b
}

// WithLogsLimit bounds the size of event queries.
func (b *NodeBuilder) WithLogsLimit(limit uint64) *NodeBuilder {
	b.opts = append(b.opts, func(n *node) { n.config.LogsLimit = limit })
	return b
}

// WithPingInterval sets the websocket ping interval of subscriptions.
func (b *NodeBuilder) WithPingInterval(d time.Duration) *NodeBuilder {
	b.opts = append(b.opts, func(n *node) { n.config.PingInterval = d })
	return b
}

// Build creates a new Node with the current configuration.
func (b *NodeBuilder) Build() (Node, error) {
	chain := b.chain
	if chain == nil {
		var err error
		if chain, err = testchain.NewDefault(); err != nil {
			return nil, fmt.Errorf("failed to create default chain: %w", err)
		}
	}
	n := &node{chain: chain, config: defaultAPIConfig()}
	for _, opt := range b.opts {
		opt(n)
	}
	return n, nil
}

// NewDefaultNode creates a new node with default configuration
func NewDefaultNode() (Node, error) {
	return NewNodeBuilder().Build()
}
