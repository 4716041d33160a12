// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token serves the MNAT reference ledger over REST.
package token

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/api/accounts"
	"github.com/manaproject/mana/api/restutil"
	"github.com/manaproject/mana/auth"
	mnat "github.com/manaproject/mana/builtin/token"
	"github.com/manaproject/mana/mana"
)

type Token struct {
	token    *mnat.Token
	auth     *auth.Authenticator
	accounts *accounts.Accounts
}

func New(token *mnat.Token, auth *auth.Authenticator, accounts *accounts.Accounts) *Token {
	return &Token{token, auth, accounts}
}

func (t *Token) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	owner, err := t.token.Owner()
	if err != nil {
		return err
	}
	supply, err := t.token.TotalSupply()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.TokenInfo{
		Address:     t.token.Address(),
		Symbol:      mana.TokenSymbol,
		Decimals:    mana.Decimals,
		Owner:       owner,
		TotalSupply: (*math.HexOrDecimal256)(supply),
	})
}

// signed runs op as the signer and responds with the signer's account.
func (t *Token) signed(w http.ResponseWriter, req *http.Request, method string, payload any, op func(caller mana.Address) error) error {
	env, err := restutil.ParseEnvelope(req.Body)
	if err != nil {
		return err
	}
	if err := env.DecodePayload(payload); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "payload"))
	}
	var caller mana.Address
	if err := t.auth.Do(method, env, func(c mana.Address) error {
		caller = c
		return op(c)
	}); err != nil {
		return err
	}
	acc, err := t.accounts.Get(caller)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, acc)
}

func (t *Token) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body api.ApproveRequest
	return t.signed(w, req, api.MethodApprove, &body, func(caller mana.Address) error {
		if body.Amount == nil {
			return restutil.BadRequest(errors.New("amount: required"))
		}
		return t.token.Approve(caller, body.Spender, (*big.Int)(body.Amount))
	})
}

func (t *Token) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body api.TransferRequest
	return t.signed(w, req, api.MethodTransfer, &body, func(caller mana.Address) error {
		if body.Amount == nil {
			return restutil.BadRequest(errors.New("amount: required"))
		}
		return t.token.Transfer(caller, body.To, (*big.Int)(body.Amount))
	})
}

func (t *Token) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /token").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetInfo))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /token/approve").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleApprove))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /token/transfer").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleTransfer))
}
