// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package manaclient is a client of a MANA node. It signs the mutating
// calls with the caller's key.
package manaclient

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/auth"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/manaclient/httpclient"
	"github.com/manaproject/mana/manaclient/wsclient"
)

// Client talks to a MANA node over HTTP and websocket.
type Client struct {
	*httpclient.Client
	ws     *wsclient.Client
	domain string
}

// Option configures a Client.
type Option func(*Client)

// WithDomain sets the signing domain, it must match the node's.
func WithDomain(domain string) Option {
	return func(c *Client) { c.domain = domain }
}

// New creates a client of the node at url.
func New(url string, opts ...Option) (*Client, error) {
	ws, err := wsclient.NewClient(url)
	if err != nil {
		return nil, err
	}
	c := &Client{
		Client: httpclient.New(url),
		ws:     ws,
		domain: auth.DefaultDomain,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WS returns the websocket client.
func (c *Client) WS() *wsclient.Client {
	return c.ws
}

// Sign signs payload for method with the next nonce of key's account.
func (c *Client) Sign(key *ecdsa.PrivateKey, method string, payload any) (*auth.Envelope, error) {
	nonce, err := c.GetNonce(auth.Address(key))
	if err != nil {
		return nil, err
	}
	env, err := auth.Sign(c.domain, method, nonce, payload, key)
	if err != nil {
		return nil, fmt.Errorf("unable to sign %v - %w", method, err)
	}
	return env, nil
}

// StakeTokens stakes amount on price for the current period. The engine
// must be approved for amount beforehand.
func (c *Client) StakeTokens(key *ecdsa.PrivateKey, amount *big.Int, price int64) (*api.Receipt, error) {
	env, err := c.Sign(key, api.MethodStake, &api.StakeRequest{
		Amount:         (*math.HexOrDecimal256)(amount),
		PredictedPrice: price,
	})
	if err != nil {
		return nil, err
	}
	return c.Stake(env)
}

// SetPrice settles periodID. Oracle only.
func (c *Client) SetPrice(key *ecdsa.PrivateKey, periodID uint64, price int64) (*api.Receipt, error) {
	env, err := c.Sign(key, api.MethodSetActualPrice, &api.SetPriceRequest{PeriodID: periodID, Price: price})
	if err != nil {
		return nil, err
	}
	return c.SetActualPrice(env)
}

// Claim claims the reward of periodID.
func (c *Client) Claim(key *ecdsa.PrivateKey, periodID uint64) (*api.Receipt, error) {
	env, err := c.Sign(key, api.MethodClaimReward, &api.ClaimRequest{PeriodID: periodID})
	if err != nil {
		return nil, err
	}
	return c.ClaimReward(env)
}

// ChangeOracle replaces the oracle. Owner only.
func (c *Client) ChangeOracle(key *ecdsa.PrivateKey, oracle mana.Address) (*api.Receipt, error) {
	env, err := c.Sign(key, api.MethodSetOracle, &api.AddressRequest{Address: oracle})
	if err != nil {
		return nil, err
	}
	return c.SetOracle(env)
}

// ChangeOwner hands the engine to owner. Owner only.
func (c *Client) ChangeOwner(key *ecdsa.PrivateKey, owner mana.Address) (*api.Receipt, error) {
	env, err := c.Sign(key, api.MethodTransferOwnership, &api.AddressRequest{Address: owner})
	if err != nil {
		return nil, err
	}
	return c.TransferOwnership(env)
}

// ApproveEngine sets the engine's allowance over key's tokens.
func (c *Client) ApproveEngine(key *ecdsa.PrivateKey, amount *big.Int) (*api.Account, error) {
	summary, err := c.GetSummary()
	if err != nil {
		return nil, err
	}
	env, err := c.Sign(key, api.MethodApprove, &api.ApproveRequest{
		Spender: summary.Engine,
		Amount:  (*math.HexOrDecimal256)(amount),
	})
	if err != nil {
		return nil, err
	}
	return c.Approve(env)
}

// SendTokens transfers amount from key's account to to.
func (c *Client) SendTokens(key *ecdsa.PrivateKey, to mana.Address, amount *big.Int) (*api.Account, error) {
	env, err := c.Sign(key, api.MethodTransfer, &api.TransferRequest{To: to, Amount: (*math.HexOrDecimal256)(amount)})
	if err != nil {
		return nil, err
	}
	return c.Transfer(env)
}
