// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"encoding/json"

	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/xenv"
)

// argsError is raised by env.Args and recovered by nativeMethod.Call.
type argsError struct {
	cause error
}

// nativeMethod describes a JSON method of a builtin contract.
type nativeMethod struct {
	name string
	run  func(env *env) (any, error)
}

// Call runs the method. A returned promise becomes the receipt result, any other
// value is JSON encoded.
func (n *nativeMethod) Call(xe *xenv.Environment, input []byte) (ret *xenv.Return, err error) {
	defer func() {
		// handle panic in env.Args
		if e := recover(); e != nil {
			ae, ok := e.(argsError)
			if !ok {
				panic(e)
			}
			ret, err = nil, reverts.NewValidation("failed to parse arguments of %s: %v", n.name, ae.cause)
		}
	}()

	out, err := n.run(&env{xe, input})
	if err != nil {
		return nil, err
	}
	switch v := out.(type) {
	case nil:
		return xenv.ReturnNone(), nil
	case *xenv.Promise:
		return xenv.ReturnPromise(v), nil
	default:
		return xenv.ReturnValue(v)
	}
}

// env env of native method invocation.
type env struct {
	*xenv.Environment
	input []byte
}

// Args decodes the JSON input into v. Missing input decodes as an empty object.
func (e *env) Args(v any) {
	input := e.input
	if len(input) == 0 {
		input = []byte("{}")
	}
	if err := json.Unmarshal(input, v); err != nil {
		// nativeMethod.Call will handle it
		panic(argsError{err})
	}
}

// Require fails argument parsing when cond is false.
func (e *env) Require(cond bool, reason string) {
	if !cond {
		panic(argsError{jsonError(reason)})
	}
}

type jsonError string

func (e jsonError) Error() string { return string(e) }
