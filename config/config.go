// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the deployment configuration: roles, token
// allocations and engine tuning.
package config

import (
	"math/big"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/builtin/settlement/reward"
	"github.com/manaproject/mana/mana"
)

var validate = validator.New()

// Config is the deployment configuration file.
type Config struct {
	Domain      string       `yaml:"domain" default:"mana" validate:"required"`
	Owner       string       `yaml:"owner" validate:"required,eth_addr"`
	Oracle      string       `yaml:"oracle" validate:"omitempty,eth_addr"`
	Engine      Engine       `yaml:"engine"`
	Allocations []Allocation `yaml:"allocations" validate:"dive"`
}

// Engine tunes the settlement engine.
type Engine struct {
	// whole MNAT, decimals allowed
	HighStakeThreshold string     `yaml:"high_stake_threshold" default:"1000" validate:"required,numeric"`
	RestakePolicy      string     `yaml:"restake_policy" default:"reject" validate:"oneof=reject accumulate"`
	RewardStrategy     string     `yaml:"reward_strategy" default:"proportional" validate:"oneof=proportional multiplier equal"`
	Multiplier         Multiplier `yaml:"multiplier"`
}

type Multiplier struct {
	Numerator   uint64 `yaml:"numerator" default:"2" validate:"gt=0"`
	Denominator uint64 `yaml:"denominator" default:"1" validate:"gt=0"`
}

// Allocation mints amount whole MNAT to address at genesis.
type Allocation struct {
	Address string `yaml:"address" validate:"required,eth_addr"`
	Amount  string `yaml:"amount" validate:"required,numeric"`
}

// Default returns a config with defaults applied and no roles.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(err)
	}
	return &c
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := defaults.Set(&c); err != nil {
		return nil, errors.Wrap(err, "set defaults")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field constraints and that all amounts parse.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "validate config")
	}
	if _, err := mana.ParseUnits(c.Engine.HighStakeThreshold); err != nil {
		return errors.Wrap(err, "high_stake_threshold")
	}
	for i, a := range c.Allocations {
		if _, err := mana.ParseUnits(a.Amount); err != nil {
			return errors.Wrapf(err, "allocations[%d]", i)
		}
	}
	return nil
}

// OwnerAddress returns the parsed owner.
func (c *Config) OwnerAddress() mana.Address {
	return mana.MustParseAddress(c.Owner)
}

// OracleAddress returns the parsed oracle, zero if unset.
func (c *Config) OracleAddress() mana.Address {
	if c.Oracle == "" {
		return mana.Address{}
	}
	return mana.MustParseAddress(c.Oracle)
}

// AllocationAmounts returns allocations in the smallest token unit.
func (c *Config) AllocationAmounts() (map[mana.Address]*big.Int, error) {
	out := make(map[mana.Address]*big.Int, len(c.Allocations))
	for _, a := range c.Allocations {
		addr, err := mana.ParseAddress(a.Address)
		if err != nil {
			return nil, err
		}
		amount, err := mana.ParseUnits(a.Amount)
		if err != nil {
			return nil, err
		}
		if prev, ok := out[addr]; ok {
			amount.Add(amount, prev)
		}
		out[addr] = amount
	}
	return out, nil
}

// Settlement builds the engine configuration.
func (e *Engine) Settlement() (settlement.Config, error) {
	threshold, err := mana.ParseUnits(e.HighStakeThreshold)
	if err != nil {
		return settlement.Config{}, err
	}
	policy, err := settlement.ParseRestakePolicy(e.RestakePolicy)
	if err != nil {
		return settlement.Config{}, err
	}
	strategy, err := reward.New(e.RewardStrategy, e.Multiplier.Numerator, e.Multiplier.Denominator)
	if err != nil {
		return settlement.Config{}, err
	}
	return settlement.Config{
		HighStakeThreshold: threshold,
		RestakePolicy:      policy,
		Strategy:           strategy,
	}, nil
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
