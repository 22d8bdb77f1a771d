// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/farm"
)

// FarmContract binds the JSON methods of the farm.
type FarmContract struct {
	*contract
	cfg farm.Config
}

// WithEnv returns the farm ledger of the executing account.
func (c *FarmContract) WithEnv(env *env) *farm.Farm {
	return farm.New(env.CurrentAccountID(), env.State(), c.cfg)
}

// NewFarm creates the farm contract with the given parameters.
func NewFarm(cfg farm.Config) *FarmContract {
	c := &FarmContract{contract: newContract("farm"), cfg: cfg}

	type accountArgs struct {
		AccountID berry.AccountID `json:"account_id"`
	}
	type transferArgs struct {
		ReceiverID berry.AccountID `json:"receiver_id"`
		Amount     berry.U128      `json:"amount"`
		Memo       *string         `json:"memo"`
		Msg        string          `json:"msg"`
		Payload    string          `json:"payload"`
	}
	requireAccount := func(env *env, id berry.AccountID, field string) {
		env.Require(id != "", "missing "+field)
	}

	// lifecycle and rewards
	c.impl("new", func(env *env) (any, error) {
		var args struct {
			BananaTokenAccountID berry.AccountID `json:"banana_token_account_id"`
		}
		env.Args(&args)
		requireAccount(env, args.BananaTokenAccountID, "banana_token_account_id")
		return nil, c.WithEnv(env).Init(env.Environment, args.BananaTokenAccountID)
	})
	c.impl("take_my_near", func(env *env) (any, error) {
		return nil, c.WithEnv(env).TakeMyNear(env.Environment)
	})
	c.impl("register_account", func(env *env) (any, error) {
		return nil, c.WithEnv(env).RegisterAccount(env.Environment)
	})
	c.impl("claim_near", func(env *env) (any, error) {
		return c.WithEnv(env).ClaimNear(env.Environment)
	})

	// views
	c.impl("account_exists", func(env *env) (any, error) {
		var args accountArgs
		env.Args(&args)
		return c.WithEnv(env).AccountExists(args.AccountID)
	})
	c.impl("get_near_balance", func(env *env) (any, error) {
		var args accountArgs
		env.Args(&args)
		return c.WithEnv(env).GetNearBalance(args.AccountID)
	})
	c.impl("get_account", func(env *env) (any, error) {
		var args accountArgs
		env.Args(&args)
		return c.WithEnv(env).GetAccount(args.AccountID)
	})
	c.impl("get_stats", func(env *env) (any, error) {
		return c.WithEnv(env).GetStats()
	})
	c.impl("get_total_near_claimed", func(env *env) (any, error) {
		return c.WithEnv(env).GetTotalNearClaimed()
	})
	c.impl("get_total_near_received", func(env *env) (any, error) {
		return c.WithEnv(env).GetTotalNearReceived()
	})
	c.impl("get_vault", func(env *env) (any, error) {
		var args struct {
			VaultID berry.VaultID `json:"vault_id"`
		}
		env.Args(&args)
		return c.WithEnv(env).GetVault(args.VaultID)
	})

	// fungible token core
	c.impl("ft_transfer", func(env *env) (any, error) {
		var args transferArgs
		env.Args(&args)
		requireAccount(env, args.ReceiverID, "receiver_id")
		return nil, c.WithEnv(env).FtTransfer(env.Environment, args.ReceiverID, args.Amount.Int(), args.Memo)
	})
	c.impl("ft_transfer_call", func(env *env) (any, error) {
		var args transferArgs
		env.Args(&args)
		requireAccount(env, args.ReceiverID, "receiver_id")
		return c.WithEnv(env).FtTransferCall(env.Environment, args.ReceiverID, args.Amount.Int(), args.Memo, args.Msg)
	})
	c.impl("ft_resolve_transfer", func(env *env) (any, error) {
		var args farm.FtResolveTransferArgs
		env.Args(&args)
		return c.WithEnv(env).FtResolveTransfer(env.Environment, args.SenderID, args.ReceiverID, args.Amount.Int())
	})
	c.impl("ft_total_supply", func(env *env) (any, error) {
		return c.WithEnv(env).FtTotalSupply()
	})
	c.impl("ft_balance_of", func(env *env) (any, error) {
		var args accountArgs
		env.Args(&args)
		return c.WithEnv(env).FtBalanceOf(args.AccountID)
	})

	// deposit source receivers
	c.impl("ft_on_transfer", func(env *env) (any, error) {
		var args farm.FtOnTransferArgs
		env.Args(&args)
		requireAccount(env, args.SenderID, "sender_id")
		return c.WithEnv(env).FtOnTransfer(env.Environment, args.SenderID, args.Amount.Int(), args.Msg)
	})
	c.impl("on_receive_with_vault", func(env *env) (any, error) {
		var args farm.OnReceiveWithVaultArgs
		env.Args(&args)
		requireAccount(env, args.SenderID, "sender_id")
		return c.WithEnv(env).OnReceiveWithVault(env.Environment, args.SenderID, args.Amount.Int(), args.VaultID, args.Payload)
	})

	// legacy vault token
	c.impl("transfer_raw", func(env *env) (any, error) {
		var args transferArgs
		env.Args(&args)
		requireAccount(env, args.ReceiverID, "receiver_id")
		return nil, c.WithEnv(env).TransferRaw(env.Environment, args.ReceiverID, args.Amount.Int())
	})
	c.impl("transfer_with_vault", func(env *env) (any, error) {
		var args transferArgs
		env.Args(&args)
		requireAccount(env, args.ReceiverID, "receiver_id")
		return c.WithEnv(env).TransferWithVault(env.Environment, args.ReceiverID, args.Amount.Int(), args.Payload)
	})
	c.impl("withdraw_from_vault", func(env *env) (any, error) {
		var args farm.WithdrawFromVaultArgs
		env.Args(&args)
		requireAccount(env, args.ReceiverID, "receiver_id")
		return nil, c.WithEnv(env).WithdrawFromVault(env.Environment, args.VaultID, args.ReceiverID, args.Amount.Int())
	})
	c.impl("resolve_vault", func(env *env) (any, error) {
		var args farm.ResolveVaultArgs
		env.Args(&args)
		return c.WithEnv(env).ResolveVault(env.Environment, args.VaultID, args.SenderID)
	})
	c.impl("get_total_supply", func(env *env) (any, error) {
		return c.WithEnv(env).GetTotalSupply()
	})
	c.impl("get_balance", func(env *env) (any, error) {
		var args accountArgs
		env.Args(&args)
		return c.WithEnv(env).GetBalance(args.AccountID)
	})

	// storage management
	c.impl("storage_deposit", func(env *env) (any, error) {
		var args struct {
			AccountID        *berry.AccountID `json:"account_id"`
			RegistrationOnly *bool            `json:"registration_only"`
		}
		env.Args(&args)
		return c.WithEnv(env).StorageDeposit(env.Environment, args.AccountID, args.RegistrationOnly)
	})
	c.impl("storage_withdraw", func(env *env) (any, error) {
		var args struct {
			Amount *berry.U128 `json:"amount"`
		}
		env.Args(&args)
		return c.WithEnv(env).StorageWithdraw(env.Environment, args.Amount)
	})
	c.impl("storage_unregister", func(env *env) (any, error) {
		var args struct {
			Force *bool `json:"force"`
		}
		env.Args(&args)
		return c.WithEnv(env).StorageUnregister(env.Environment, args.Force)
	})
	c.impl("storage_balance_bounds", func(env *env) (any, error) {
		return c.WithEnv(env).StorageBalanceBounds(), nil
	})
	c.impl("storage_balance_of", func(env *env) (any, error) {
		var args accountArgs
		env.Args(&args)
		return c.WithEnv(env).StorageBalanceOf(args.AccountID)
	})
	return c
}
