// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen produces random inputs for property tests.
package datagen

import (
	"crypto/rand"
	"encoding/hex"
	mathrand "math/rand/v2"

	"github.com/holiman/uint256"

	"github.com/berryfarm/farm/berry"
)

// RandomAccountID returns a valid, most likely unused, account id.
func RandomAccountID() berry.AccountID {
	var b [6]byte
	rand.Read(b[:])
	return berry.AccountID(hex.EncodeToString(b[:]) + ".near")
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandAmount returns an amount in [1, max].
func RandAmount(max uint64) *uint256.Int {
	return uint256.NewInt(mathrand.Uint64N(max) + 1) //#nosec G404
}
