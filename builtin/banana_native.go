// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/banana"
	"github.com/berryfarm/farm/builtin/farm"
)

// BananaContract binds the JSON methods of the banana token.
type BananaContract struct {
	*contract
}

// WithEnv returns the token ledger of the executing account.
func (c *BananaContract) WithEnv(env *env) *banana.Token {
	return banana.New(env.CurrentAccountID(), env.State())
}

// NewBanana creates the banana token contract.
func NewBanana() *BananaContract {
	c := &BananaContract{newContract("banana")}

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

	c.impl("new", func(env *env) (any, error) {
		var args struct {
			OwnerID     berry.AccountID `json:"owner_id"`
			TotalSupply berry.U128      `json:"total_supply"`
		}
		env.Args(&args)
		env.Require(args.OwnerID != "", "missing owner_id")
		return nil, c.WithEnv(env).Init(env.Environment, args.OwnerID, args.TotalSupply.Int())
	})
	c.impl("register_account", func(env *env) (any, error) {
		var args accountArgs
		env.Args(&args)
		env.Require(args.AccountID != "", "missing account_id")
		return nil, c.WithEnv(env).RegisterAccount(env.Environment, args.AccountID)
	})
	c.impl("ft_transfer", func(env *env) (any, error) {
		var args transferArgs
		env.Args(&args)
		return nil, c.WithEnv(env).FtTransfer(env.Environment, args.ReceiverID, args.Amount.Int(), args.Memo)
	})
	c.impl("ft_transfer_call", func(env *env) (any, error) {
		var args transferArgs
		env.Args(&args)
		return c.WithEnv(env).FtTransferCall(env.Environment, args.ReceiverID, args.Amount.Int(), args.Memo, args.Msg)
	})
	c.impl("ft_resolve_transfer", func(env *env) (any, error) {
		var args farm.FtResolveTransferArgs
		env.Args(&args)
		return c.WithEnv(env).FtResolveTransfer(env.Environment, args.SenderID, args.ReceiverID, args.Amount.Int())
	})
	c.impl("transfer_with_vault", func(env *env) (any, error) {
		var args transferArgs
		env.Args(&args)
		return c.WithEnv(env).TransferWithVault(env.Environment, args.ReceiverID, args.Amount.Int(), args.Payload)
	})
	c.impl("withdraw_from_vault", func(env *env) (any, error) {
		var args farm.WithdrawFromVaultArgs
		env.Args(&args)
		return nil, c.WithEnv(env).WithdrawFromVault(env.Environment, args.VaultID, args.ReceiverID, args.Amount.Int())
	})
	c.impl("resolve_vault", func(env *env) (any, error) {
		var args farm.ResolveVaultArgs
		env.Args(&args)
		return c.WithEnv(env).ResolveVault(env.Environment, args.VaultID, args.SenderID)
	})
	balanceOf := func(env *env) (any, error) {
		var args accountArgs
		env.Args(&args)
		return c.WithEnv(env).FtBalanceOf(args.AccountID)
	}
	totalSupply := func(env *env) (any, error) {
		return c.WithEnv(env).FtTotalSupply()
	}
	c.impl("ft_balance_of", balanceOf)
	c.impl("get_balance", balanceOf)
	c.impl("ft_total_supply", totalSupply)
	c.impl("get_total_supply", totalSupply)
	return c
}
