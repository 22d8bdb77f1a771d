// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/builtin/farm"
	"github.com/berryfarm/farm/runtime"
)

// Compile-time checks.
var (
	_ runtime.Contract = (*FarmContract)(nil)
	_ runtime.Contract = (*BananaContract)(nil)
)

// Deploy registers the farm at farmID and the banana token at tokenID.
func Deploy(rt *runtime.Runtime, farmID, tokenID berry.AccountID, cfg farm.Config) {
	rt.Register(farmID, NewFarm(cfg))
	rt.Register(tokenID, NewBanana())
}
