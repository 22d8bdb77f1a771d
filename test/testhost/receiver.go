// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testhost

import (
	"encoding/json"
	"errors"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/farm"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/runtime"
	"github.com/berryfarm/farm/xenv"
)

// Forward is a plain transfer a receiver makes with the tokens it was notified about.
type Forward struct {
	To     berry.AccountID
	Amount berry.U128
}

// Script drives a scripted receiver.
type Script struct {
	// Fail makes every notification fail.
	Fail bool
	// Unused is returned from ft_on_transfer. A nil value returns an unparsable result.
	Unused *berry.U128
	// Forwards are sent through the notifying token on every notification.
	Forwards []Forward
	// Draws are withdrawn from the vault on every vault notification.
	Draws []berry.U128
}

// Receiver returns a contract that reacts to transfer notifications as scripted.
// The tokens it sends are sent by the contract account itself.
func Receiver(script *Script) runtime.Contract {
	return runtime.ContractFunc(func(env *xenv.Environment, method string, args []byte) (*xenv.Return, error) {
		switch method {
		case "ft_on_transfer":
			if script.Fail {
				return nil, reverts.NewValidation("scripted failure")
			}
			if err := forward(env, script.Forwards); err != nil {
				return nil, err
			}
			if script.Unused == nil {
				return &xenv.Return{Value: []byte(`"not a number"`)}, nil
			}
			return xenv.ReturnValue(script.Unused)
		case "on_receive_with_vault":
			if script.Fail {
				return nil, reverts.NewValidation("scripted failure")
			}
			var a farm.OnReceiveWithVaultArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			for _, amount := range script.Draws {
				if _, err := env.FunctionCall(env.PredecessorAccountID(), "withdraw_from_vault", &farm.WithdrawFromVaultArgs{
					VaultID:    a.VaultID,
					ReceiverID: env.CurrentAccountID(),
					Amount:     amount,
				}, berry.NoDeposit, berry.GasForWithdrawFromVault); err != nil {
					return nil, err
				}
			}
			return forwardNone(env, script.Forwards)
		}
		return nil, errors.New("unknown method " + method)
	})
}

func forward(env *xenv.Environment, forwards []Forward) error {
	for _, f := range forwards {
		if _, err := env.FunctionCall(env.PredecessorAccountID(), "ft_transfer", map[string]any{
			"receiver_id": f.To,
			"amount":      f.Amount,
		}, berry.OneYocto, 0); err != nil {
			return err
		}
	}
	return nil
}

func forwardNone(env *xenv.Environment, forwards []Forward) (*xenv.Return, error) {
	if err := forward(env, forwards); err != nil {
		return nil, err
	}
	return xenv.ReturnNone(), nil
}
