// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"encoding/json"

	"github.com/holiman/uint256"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/reverts"
	"github.com/berryfarm/farm/xenv"
)

// Payload is the instruction attached to incoming bananas.
type Payload string

// DepositAndStake converts the received bananas into cucumbers.
const DepositAndStake Payload = "DepositAndStake"

// parsePayload decodes msg, which must be the JSON string of a known payload.
func parsePayload(msg string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(msg), &p); err != nil || p != DepositAndStake {
		return "", reverts.NewValidation("failed to parse the payload")
	}
	return p, nil
}

// stake checks the deposit source and mints amount cucumbers to sender.
func (f *Farm) stake(env *xenv.Environment, sender berry.AccountID, amount *uint256.Int, msg string) (*Globals, error) {
	g, err := f.loadGlobals()
	if err != nil {
		return nil, err
	}
	if env.PredecessorAccountID() != g.TokenID {
		return nil, reverts.NewAuthorization("this farm can only receive bananas through a contract API")
	}
	if _, err := parsePayload(msg); err != nil {
		return nil, err
	}

	hash, acc, err := f.getOrCreateAndTouch(g, sender)
	if err != nil {
		return nil, err
	}
	bal, err := berry.AddU128(acc.CucumberBalance, amount)
	if err != nil {
		return nil, err
	}
	acc.CucumberBalance = bal
	if err := f.save(hash, acc); err != nil {
		return nil, err
	}
	total, err := berry.AddU128(g.TotalCucumberBalance, amount)
	if err != nil {
		return nil, err
	}
	g.TotalCucumberBalance = total
	if err := f.saveGlobals(g); err != nil {
		return nil, err
	}
	logger.Debug("bananas staked", "sender", sender, "amount", amount)
	return g, nil
}

// FtOnTransfer accepts bananas sent with a callback transfer. Everything is used,
// so it returns zero.
func (f *Farm) FtOnTransfer(env *xenv.Environment, sender berry.AccountID, amount *uint256.Int, msg string) (berry.U128, error) {
	if _, err := f.stake(env, sender, amount, msg); err != nil {
		return berry.U128{}, err
	}
	metricDeposits().AddWithLabel(1, map[string]string{"source": "callback"})
	return berry.U128{}, nil
}

// OnReceiveWithVault accepts bananas sent with a vault transfer and draws the full
// amount from the vault. The returned promise is the withdrawal.
func (f *Farm) OnReceiveWithVault(env *xenv.Environment, sender berry.AccountID, amount *uint256.Int, vaultID berry.VaultID, payload string) (*xenv.Promise, error) {
	g, err := f.stake(env, sender, amount, payload)
	if err != nil {
		return nil, err
	}
	p, err := env.FunctionCall(g.TokenID, "withdraw_from_vault", &WithdrawFromVaultArgs{
		VaultID:    vaultID,
		ReceiverID: env.CurrentAccountID(),
		Amount:     berry.U128From(amount),
	}, berry.NoDeposit, berry.GasForWithdrawFromVault)
	if err != nil {
		return nil, err
	}
	metricDeposits().AddWithLabel(1, map[string]string{"source": "vault"})
	return p, nil
}
