// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient provides an HTTP client for the MANA REST API.
// Reverted calls are returned as *reverts.ErrRevert so that they compare
// equal, by errors.Is, to the engine errors.
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/api/restutil"
	"github.com/manaproject/mana/auth"
	"github.com/manaproject/mana/builtin/reverts"
	"github.com/manaproject/mana/mana"
	"github.com/manaproject/mana/manaclient/common"
)

// CurrentPeriod selects the current voting period.
const CurrentPeriod = "current"

// Client represents the HTTP client of a MANA node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// PeriodID formats a period id for the period queries.
func PeriodID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// GetSummary retrieves the engine summary.
func (c *Client) GetSummary() (*api.Summary, error) {
	var summary api.Summary
	if err := c.getJSON(c.url+"/mana", &summary); err != nil {
		return nil, fmt.Errorf("unable to retrieve summary - %w", err)
	}
	return &summary, nil
}

// GetPeriod retrieves a voting period. id is a decimal id or CurrentPeriod.
func (c *Client) GetPeriod(id string) (*api.Period, error) {
	var period api.Period
	if err := c.getJSON(c.url+"/mana/periods/"+id, &period); err != nil {
		return nil, fmt.Errorf("unable to retrieve period - %w", err)
	}
	return &period, nil
}

// GetVote retrieves the vote of staker in a period.
func (c *Client) GetVote(id string, staker mana.Address) (*api.Vote, error) {
	var vote api.Vote
	if err := c.getJSON(c.url+"/mana/periods/"+id+"/votes/"+staker.String(), &vote); err != nil {
		return nil, fmt.Errorf("unable to retrieve vote - %w", err)
	}
	return &vote, nil
}

// GetStakers retrieves a page of the stakers of a period. A zero limit
// uses the server default.
func (c *Client) GetStakers(id string, offset, limit uint64) ([]mana.Address, error) {
	query := url.Values{}
	query.Set("offset", strconv.FormatUint(offset, 10))
	if limit > 0 {
		query.Set("limit", strconv.FormatUint(limit, 10))
	}
	var stakers []mana.Address
	if err := c.getJSON(c.url+"/mana/periods/"+id+"/stakers?"+query.Encode(), &stakers); err != nil {
		return nil, fmt.Errorf("unable to retrieve stakers - %w", err)
	}
	return stakers, nil
}

// GetAccount retrieves the balance, allowance to the engine and nonce of addr.
func (c *Client) GetAccount(addr mana.Address) (*api.Account, error) {
	var account api.Account
	if err := c.getJSON(c.url+"/accounts/"+addr.String(), &account); err != nil {
		return nil, fmt.Errorf("unable to retrieve account - %w", err)
	}
	return &account, nil
}

// GetNonce retrieves the next nonce of addr.
func (c *Client) GetNonce(addr mana.Address) (uint64, error) {
	var res struct {
		Nonce uint64 `json:"nonce"`
	}
	if err := c.getJSON(c.url+"/accounts/"+addr.String()+"/nonce", &res); err != nil {
		return 0, fmt.Errorf("unable to retrieve nonce - %w", err)
	}
	return res.Nonce, nil
}

// GetToken retrieves the token info.
func (c *Client) GetToken() (*api.TokenInfo, error) {
	var info api.TokenInfo
	if err := c.getJSON(c.url+"/token", &info); err != nil {
		return nil, fmt.Errorf("unable to retrieve token - %w", err)
	}
	return &info, nil
}

// FilterEvents queries the event log.
func (c *Client) FilterEvents(req *api.EventFilter) ([]*api.FilteredEvent, error) {
	body, err := c.httpPOST(c.url+"/logs/event", req)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}
	var events []*api.FilteredEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}
	return events, nil
}

// Stake submits a signed stake.
func (c *Client) Stake(env *auth.Envelope) (*api.Receipt, error) {
	return c.postReceipt("/mana/stakes", env)
}

// SetActualPrice submits a signed price.
func (c *Client) SetActualPrice(env *auth.Envelope) (*api.Receipt, error) {
	return c.postReceipt("/mana/prices", env)
}

// ClaimReward submits a signed claim.
func (c *Client) ClaimReward(env *auth.Envelope) (*api.Receipt, error) {
	return c.postReceipt("/mana/claims", env)
}

// SetOracle submits a signed oracle change.
func (c *Client) SetOracle(env *auth.Envelope) (*api.Receipt, error) {
	return c.postReceipt("/mana/oracle", env)
}

// TransferOwnership submits a signed ownership transfer.
func (c *Client) TransferOwnership(env *auth.Envelope) (*api.Receipt, error) {
	return c.postReceipt("/mana/owner", env)
}

// Approve submits a signed token approval.
func (c *Client) Approve(env *auth.Envelope) (*api.Account, error) {
	return c.postAccount("/token/approve", env)
}

// Transfer submits a signed token transfer.
func (c *Client) Transfer(env *auth.Envelope) (*api.Account, error) {
	return c.postAccount("/token/transfer", env)
}

func (c *Client) postReceipt(path string, env *auth.Envelope) (*api.Receipt, error) {
	body, err := c.httpPOST(c.url+path, env)
	if err != nil {
		return nil, err
	}
	var receipt api.Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("unable to unmarshal receipt - %w", err)
	}
	return &receipt, nil
}

func (c *Client) postAccount(path string, env *auth.Envelope) (*api.Account, error) {
	body, err := c.httpPOST(c.url+path, env)
	if err != nil {
		return nil, err
	}
	var account api.Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("unable to unmarshal account - %w", err)
	}
	return &account, nil
}

func (c *Client) getJSON(url string, v any) error {
	body, err := c.httpGET(url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unable to unmarshal response - %w", err)
	}
	return nil
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(responseBody))
		if kind := reverts.ParseKind(resp.Header.Get(restutil.RevertHeader)); kind != 0 {
			return nil, reverts.New(kind, message)
		}
		return nil, &common.StatusError{StatusCode: resp.StatusCode, Body: message}
	}
	return responseBody, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return c.httpRequest(http.MethodPost, url, bytes.NewReader(data))
}
