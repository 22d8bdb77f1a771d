// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"fmt"
	"sort"

	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/xenv"
)

// contract is a table of JSON methods. It implements runtime.Contract.
type contract struct {
	name    string
	methods map[string]*nativeMethod
}

func newContract(name string) *contract {
	return &contract{
		name:    name,
		methods: make(map[string]*nativeMethod),
	}
}

func (c *contract) impl(name string, run func(env *env) (any, error)) {
	if _, dup := c.methods[name]; dup {
		panic(fmt.Sprintf("builtin: duplicated method %s.%s", c.name, name))
	}
	c.methods[name] = &nativeMethod{name: name, run: run}
}

// Name returns the contract name.
func (c *contract) Name() string {
	return c.name
}

// Methods returns the sorted method names.
func (c *contract) Methods() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke implements runtime.Contract.
func (c *contract) Invoke(env *xenv.Environment, method string, args []byte) (*xenv.Return, error) {
	m, ok := c.methods[method]
	if !ok {
		return nil, reverts.NewNotFound(fmt.Sprintf("method %s not found", method))
	}
	return m.Call(env, args)
}
