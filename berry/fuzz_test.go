// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package berry

import (
	"math/big"
	"regexp"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

func TestParseAccountIDMatchesPattern(t *testing.T) {
	const alphabet = "ab09.-_A "
	f := fuzz.New().Funcs(func(s *string, c fuzz.Continue) {
		b := make([]byte, c.Intn(MaxAccountIDLen+4))
		for i := range b {
			b[i] = alphabet[c.Intn(len(alphabet))]
		}
		*s = string(b)
	})

	for range 5000 {
		var s string
		f.Fuzz(&s)
		_, err := ParseAccountID(s)
		want := len(s) >= MinAccountIDLen && len(s) <= MaxAccountIDLen && accountIDPattern.MatchString(s)
		assert.Equal(t, want, err == nil, "%q", s)
	}
}

func TestMulDivMatchesBig(t *testing.T) {
	f := fuzz.New().NilChance(0)
	maxU128 := MaxU128.ToBig()

	for range 2000 {
		var v [6]uint64
		f.Fuzz(&v)
		// the low two limbs make 128-bit operands
		x := &uint256.Int{v[0], v[1], 0, 0}
		y := &uint256.Int{v[2], v[3], 0, 0}
		d := &uint256.Int{v[4], v[5], 0, 0}

		got, err := MulDiv(x, y, d)
		if d.IsZero() {
			assert.Equal(t, ErrDivisionByZero, err)
			continue
		}
		want := new(big.Int).Mul(x.ToBig(), y.ToBig())
		want.Div(want, d.ToBig())
		if want.Cmp(maxU128) > 0 {
			assert.Equal(t, ErrU128Overflow, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, want.String(), got.Dec())
	}
}
