// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accounts serves per-account balances and nonces.
package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/api/restutil"
	"github.com/manaproject/mana/auth"
	"github.com/manaproject/mana/builtin/token"
	"github.com/manaproject/mana/mana"
)

type Accounts struct {
	token  *token.Token
	auth   *auth.Authenticator
	engine mana.Address
}

// New creates the handler. Allowances are reported towards engine.
func New(token *token.Token, auth *auth.Authenticator, engine mana.Address) *Accounts {
	return &Accounts{token, auth, engine}
}

// Get returns the account view of addr.
func (a *Accounts) Get(addr mana.Address) (*api.Account, error) {
	balance, err := a.token.BalanceOf(addr)
	if err != nil {
		return nil, err
	}
	allowance, err := a.token.Allowance(addr, a.engine)
	if err != nil {
		return nil, err
	}
	nonce, err := a.auth.Nonce(addr)
	if err != nil {
		return nil, err
	}
	return &api.Account{
		Address:   addr,
		Balance:   (*math.HexOrDecimal256)(balance),
		Allowance: (*math.HexOrDecimal256)(allowance),
		Nonce:     nonce,
	}, nil
}

func parseAddress(req *http.Request) (mana.Address, error) {
	addr, err := mana.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return mana.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	acc, err := a.Get(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, acc)
}

func (a *Accounts) handleGetNonce(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	nonce, err := a.auth.Nonce(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"nonce": nonce})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/nonce").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}/nonce").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetNonce))
}
