// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package berry

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// Gas is the unit of prepaid execution budget.
type Gas uint64

// TGas is 10^12 gas.
const TGas Gas = 1_000_000_000_000

// Gas budgets of cross-contract calls.
const (
	GasBaseCompute       Gas = 5 * TGas
	GasForPromise        Gas = 5 * TGas
	GasForDataDependency Gas = 10 * TGas

	// MinGasForReceiver is the least gas the receiver of a vault transfer must get.
	// It covers basic compute and scheduling a withdrawal from the vault.
	MinGasForReceiver = GasForPromise + GasBaseCompute
	// GasForCallback is attached to the vault resolution callback.
	GasForCallback = GasBaseCompute
	// GasForRemainingCompute is kept by transfer_with_vault for its own two promises.
	GasForRemainingCompute = 2*GasForPromise + GasForDataDependency + GasBaseCompute

	GasForAccountRegistration = GasBaseCompute
	GasForWithdrawFromVault   = GasBaseCompute

	GasForResolveTransfer = 5 * TGas
	GasForFtTransferCall  = 25*TGas + GasForResolveTransfer

	// DefaultPrepaidGas is attached to calls that do not specify gas.
	DefaultPrepaidGas = 300 * TGas
)

// StorageAmountBytes is the storage footprint charged per registered account:
// four u128 fields, the 21 bytes prefixed key and 40 bytes of trie overhead.
const StorageAmountBytes = 4*16 + 21 + 40

var (
	// RateDenom is the fixed-point denominator of the reward accumulator.
	RateDenom = uint256.NewInt(1_000_000_000_000_000_000)
	// OneYocto is the smallest native amount, used as the attached-deposit guard.
	OneYocto = uint256.NewInt(1)
	// NoDeposit is attached to function calls that move no native value.
	NoDeposit = uint256.NewInt(0)
	// DefaultStorageByteCost is the native cost of one byte of storage.
	DefaultStorageByteCost = uint256.NewInt(10_000_000_000_000_000_000)
)

// VaultID identifies an escrow vault.
type VaultID uint64

// Next returns the id following v.
func (v VaultID) Next() VaultID {
	return v + 1
}

// Bytes returns the big-endian form, which keeps vaults ordered in storage.
func (v VaultID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return b[:]
}
