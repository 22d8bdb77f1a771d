// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/berryfarm/farm/xenv"
)

// Contract is a native contract hosted by the runtime.
type Contract interface {
	// Invoke runs the entry point named by method. A returned error aborts the
	// receipt and discards all its effects.
	Invoke(env *xenv.Environment, method string, args []byte) (*xenv.Return, error)
}

// ContractFunc adapts a function to Contract.
type ContractFunc func(env *xenv.Environment, method string, args []byte) (*xenv.Return, error)

func (f ContractFunc) Invoke(env *xenv.Environment, method string, args []byte) (*xenv.Return, error) {
	return f(env, method, args)
}
