// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/state"
)

// Context binds typed storage to the storage space of one contract.
type Context struct {
	address berry.AccountID
	state   *state.State
}

func NewContext(address berry.AccountID, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() berry.AccountID {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
