// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package settlement serves the settlement engine over REST.
package settlement

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/api/restutil"
	"github.com/manaproject/mana/auth"
	engine "github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/mana"
)

// maxStakersLimit bounds one page of the staker listing.
const maxStakersLimit = 1000

type Settlement struct {
	engine *engine.Engine
	auth   *auth.Authenticator
}

func New(engine *engine.Engine, auth *auth.Authenticator) *Settlement {
	return &Settlement{engine, auth}
}

func (s *Settlement) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	rec, err := s.engine.Access()
	if err != nil {
		return err
	}
	current, err := s.engine.CurrentPeriod()
	if err != nil {
		return err
	}
	seq, err := s.engine.Seq()
	if err != nil {
		return err
	}
	config := s.engine.Config()
	return restutil.WriteJSON(w, &api.Summary{
		Engine:             s.engine.Address(),
		Token:              mana.TokenAddress,
		Owner:              rec.Owner,
		Oracle:             rec.Oracle,
		CurrentPeriod:      current,
		HighStakeThreshold: (*math.HexOrDecimal256)(config.HighStakeThreshold),
		RestakePolicy:      config.RestakePolicy.String(),
		RewardStrategy:     config.Strategy.Name(),
		Seq:                seq,
	})
}

// parsePeriodID accepts a decimal id or "current".
func (s *Settlement) parsePeriodID(str string) (uint64, error) {
	if str == "current" {
		return s.engine.CurrentPeriod()
	}
	id, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (s *Settlement) handleGetPeriod(w http.ResponseWriter, req *http.Request) error {
	id, err := s.parsePeriodID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	p, err := s.engine.VotingPeriod(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, api.ConvertPeriod(p))
}

func (s *Settlement) handleGetVote(w http.ResponseWriter, req *http.Request) error {
	id, err := s.parsePeriodID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	staker, err := mana.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	v, eligible, pending, err := s.engine.VoteStatus(id, staker)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, api.ConvertVote(id, staker, v, eligible, pending))
}

func (s *Settlement) handleGetStakers(w http.ResponseWriter, req *http.Request) error {
	id, err := s.parsePeriodID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	query := req.URL.Query()
	var offset, limit uint64 = 0, maxStakersLimit
	if v := query.Get("offset"); v != "" {
		if offset, err = strconv.ParseUint(v, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "offset"))
		}
	}
	if v := query.Get("limit"); v != "" {
		if limit, err = strconv.ParseUint(v, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "limit"))
		}
		if limit == 0 || limit > maxStakersLimit {
			return restutil.BadRequest(errors.Errorf("limit: must be in [1, %d]", maxStakersLimit))
		}
	}
	stakers, err := s.engine.Stakers(id, offset, limit)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, stakers)
}

// signed runs op as the signer of the envelope in req. payload receives the
// decoded envelope payload before op runs.
func (s *Settlement) signed(w http.ResponseWriter, req *http.Request, method string, payload any, op func(caller mana.Address) (*engine.Receipt, error)) error {
	env, err := restutil.ParseEnvelope(req.Body)
	if err != nil {
		return err
	}
	if err := env.DecodePayload(payload); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "payload"))
	}
	var receipt *engine.Receipt
	if err := s.auth.Do(method, env, func(caller mana.Address) (err error) {
		receipt, err = op(caller)
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, api.ConvertReceipt(receipt))
}

func (s *Settlement) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body api.StakeRequest
	return s.signed(w, req, api.MethodStake, &body, func(caller mana.Address) (*engine.Receipt, error) {
		if body.Amount == nil {
			return nil, restutil.BadRequest(errors.New("amount: required"))
		}
		return s.engine.StakeTokens(caller, (*big.Int)(body.Amount), body.PredictedPrice)
	})
}

func (s *Settlement) handleSetPrice(w http.ResponseWriter, req *http.Request) error {
	var body api.SetPriceRequest
	return s.signed(w, req, api.MethodSetActualPrice, &body, func(caller mana.Address) (*engine.Receipt, error) {
		return s.engine.SetActualPrice(caller, body.PeriodID, body.Price)
	})
}

func (s *Settlement) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body api.ClaimRequest
	return s.signed(w, req, api.MethodClaimReward, &body, func(caller mana.Address) (*engine.Receipt, error) {
		return s.engine.ClaimReward(caller, body.PeriodID)
	})
}

func (s *Settlement) handleSetOracle(w http.ResponseWriter, req *http.Request) error {
	var body api.AddressRequest
	return s.signed(w, req, api.MethodSetOracle, &body, func(caller mana.Address) (*engine.Receipt, error) {
		return s.engine.SetOracle(caller, body.Address)
	})
}

func (s *Settlement) handleTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var body api.AddressRequest
	return s.signed(w, req, api.MethodTransferOwnership, &body, func(caller mana.Address) (*engine.Receipt, error) {
		return s.engine.TransferOwnership(caller, body.Address)
	})
}

func (s *Settlement) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /mana").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetSummary))
	sub.Path("/periods/{id}").
		Methods(http.MethodGet).
		Name("GET /mana/periods/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPeriod))
	sub.Path("/periods/{id}/votes/{address}").
		Methods(http.MethodGet).
		Name("GET /mana/periods/{id}/votes/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetVote))
	sub.Path("/periods/{id}/stakers").
		Methods(http.MethodGet).
		Name("GET /mana/periods/{id}/stakers").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStakers))
	sub.Path("/stakes").
		Methods(http.MethodPost).
		Name("POST /mana/stakes").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	sub.Path("/prices").
		Methods(http.MethodPost).
		Name("POST /mana/prices").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetPrice))
	sub.Path("/claims").
		Methods(http.MethodPost).
		Name("POST /mana/claims").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleClaim))
	sub.Path("/oracle").
		Methods(http.MethodPost).
		Name("POST /mana/oracle").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetOracle))
	sub.Path("/owner").
		Methods(http.MethodPost).
		Name("POST /mana/owner").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleTransferOwnership))
}
