// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/holiman/uint256"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/builtin/store"
	"github.com/berryfarm/farm/log"
	"github.com/berryfarm/farm/state"
)

var logger = log.WithContext("pkg", "farm")

var (
	accountsPos = berry.BytesToBytes32([]byte("a"))
	vaultsPos   = berry.BytesToBytes32([]byte("v"))
	globalsPos  = berry.BytesToBytes32([]byte("STATE"))
)

// Config farm parameters.
type Config struct {
	StorageByteCost *uint256.Int
}

// DefaultConfig returns the default farm parameters.
func DefaultConfig() Config {
	return Config{
		StorageByteCost: new(uint256.Int).Set(berry.DefaultStorageByteCost),
	}
}

// Globals is the farm-wide record.
type Globals struct {
	TokenID              berry.AccountID
	RateNumerator        *uint256.Int // accumulated native reward per cucumber, scaled by RateDenom
	TotalCucumberBalance *uint256.Int
	TotalNearReceived    *uint256.Int
	TotalNearClaimed     *uint256.Int
	NextVaultID          berry.VaultID
}

func (g *Globals) normalize() {
	for _, p := range []**uint256.Int{&g.RateNumerator, &g.TotalCucumberBalance, &g.TotalNearReceived, &g.TotalNearClaimed} {
		if *p == nil {
			*p = new(uint256.Int)
		}
	}
}

// Farm is the cucumber ledger bound to one contract account.
type Farm struct {
	addr     berry.AccountID
	cfg      Config
	accounts *store.Mapping[berry.AccountHash, *Account]
	vaults   *store.Mapping[berry.VaultID, *Vault]
	globals  *store.Var[Globals]
}

// New creates a farm instance over the storage of addr.
func New(addr berry.AccountID, st *state.State, cfg Config) *Farm {
	if cfg.StorageByteCost == nil {
		cfg.StorageByteCost = DefaultConfig().StorageByteCost
	}
	ctx := store.NewContext(addr, st)
	return &Farm{
		addr:     addr,
		cfg:      cfg,
		accounts: store.NewMapping[berry.AccountHash, *Account](ctx, accountsPos),
		vaults:   store.NewMapping[berry.VaultID, *Vault](ctx, vaultsPos),
		globals:  store.NewVar[Globals](ctx, globalsPos),
	}
}

// Address returns the farm account.
func (f *Farm) Address() berry.AccountID {
	return f.addr
}

func (f *Farm) loadGlobals() (*Globals, error) {
	g, exists, err := f.globals.Get()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, reverts.NewValidation("the contract is not initialized")
	}
	g.normalize()
	return g, nil
}

func (f *Farm) saveGlobals(g *Globals) error {
	return f.globals.Set(g)
}
