// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/farm"
)

// Allocation is a native balance minted at genesis.
type Allocation struct {
	Account berry.AccountID `yaml:"account"`
	Balance string          `yaml:"balance"`
}

// TokenConfig describes the banana token deployed with the farm.
type TokenConfig struct {
	ID          berry.AccountID `yaml:"id"`
	Owner       berry.AccountID `yaml:"owner"`
	TotalSupply string          `yaml:"total_supply"`
}

// Config is the node configuration loaded from YAML.
type Config struct {
	FarmID          berry.AccountID `yaml:"farm_id"`
	StorageByteCost string          `yaml:"storage_byte_cost"`
	Token           TokenConfig     `yaml:"token"`
	Genesis         []Allocation    `yaml:"genesis"`
}

func defaultConfig() *Config {
	return &Config{
		FarmID:          "farm.near",
		StorageByteCost: berry.DefaultStorageByteCost.Dec(),
		Token: TokenConfig{
			ID:          "banana.near",
			Owner:       "alice.near",
			TotalSupply: "1000000000000000000000000",
		},
		Genesis: []Allocation{
			{Account: "alice.near", Balance: "100000000000000000000000000"},
			{Account: "bob.near", Balance: "100000000000000000000000000"},
		},
	}
}

// loadConfig reads the config at path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, id := range []berry.AccountID{c.FarmID, c.Token.ID, c.Token.Owner} {
		if _, err := berry.ParseAccountID(string(id)); err != nil {
			return errors.Wrapf(err, "config: account id %q", id)
		}
	}
	if c.FarmID == c.Token.ID {
		return errors.New("config: farm and token must be different accounts")
	}
	if _, err := berry.ParseU128(c.Token.TotalSupply); err != nil {
		return errors.Wrap(err, "config: token total supply")
	}
	if _, err := uint256.FromDecimal(c.StorageByteCost); err != nil {
		return errors.Wrap(err, "config: storage byte cost")
	}
	for _, a := range c.Genesis {
		if _, err := berry.ParseAccountID(string(a.Account)); err != nil {
			return errors.Wrapf(err, "config: genesis account %q", a.Account)
		}
		if _, err := uint256.FromDecimal(a.Balance); err != nil {
			return errors.Wrapf(err, "config: genesis balance of %s", a.Account)
		}
	}
	return nil
}

// FarmConfig returns the farm parameters.
func (c *Config) FarmConfig() farm.Config {
	return farm.Config{StorageByteCost: uint256.MustFromDecimal(c.StorageByteCost)}
}
