// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"fmt"
	"math/big"

	"github.com/manaproject/mana/builtin/settlement/reward"
	"github.com/manaproject/mana/mana"
)

// RestakePolicy decides what a second stake by the same staker in the same period does.
type RestakePolicy uint8

const (
	// RestakeReject rejects the second stake.
	RestakeReject RestakePolicy = iota
	// RestakeAccumulate adds to the existing stake if the prediction is unchanged.
	RestakeAccumulate
)

func (p RestakePolicy) String() string {
	switch p {
	case RestakeReject:
		return "reject"
	case RestakeAccumulate:
		return "accumulate"
	}
	return fmt.Sprintf("RestakePolicy(%d)", uint8(p))
}

// ParseRestakePolicy parses the policy name. Empty means reject.
func ParseRestakePolicy(s string) (RestakePolicy, error) {
	switch s {
	case "", "reject":
		return RestakeReject, nil
	case "accumulate":
		return RestakeAccumulate, nil
	}
	return 0, fmt.Errorf("unknown restake policy %q", s)
}

// Config tunes the engine.
type Config struct {
	HighStakeThreshold *big.Int // stakes at or above emit HighStakeWarning
	RestakePolicy      RestakePolicy
	Strategy           reward.Strategy
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		HighStakeThreshold: new(big.Int).Set(mana.DefaultHighStakeThreshold),
		RestakePolicy:      RestakeReject,
		Strategy:           reward.Proportional{},
	}
}
