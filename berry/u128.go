// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package berry

import (
	"encoding/json"
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrU128Overflow is returned when a result does not fit into 128 bits.
	ErrU128Overflow = errors.New("u128: overflow")
	// ErrU128Underflow is returned when a subtraction goes below zero.
	ErrU128Underflow = errors.New("u128: underflow")
	// ErrDivisionByZero is returned by MulDiv when the divisor is zero.
	ErrDivisionByZero = errors.New("u128: division by zero")

	// MaxU128 is 2^128 - 1.
	MaxU128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
)

// IsU128 returns whether x fits into 128 bits.
func IsU128(x *uint256.Int) bool {
	return x.BitLen() <= 128
}

// AddU128 returns a + b, failing if the sum exceeds 128 bits.
func AddU128(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || !IsU128(z) {
		return nil, ErrU128Overflow
	}
	return z, nil
}

// SubU128 returns a - b, failing if b > a.
func SubU128(a, b *uint256.Int) (*uint256.Int, error) {
	if a.Lt(b) {
		return nil, ErrU128Underflow
	}
	return new(uint256.Int).Sub(a, b), nil
}

// MinU128 returns the smaller one of a and b.
func MinU128(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// MulDiv computes floor(x * y / d) with a full-width intermediate product, so that
// the multiplication of two 128-bit values never overflows before the division.
// The quotient must fit into 128 bits.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow || !IsU128(z) {
		return nil, ErrU128Overflow
	}
	return z, nil
}

// U128 is an unsigned 128-bit amount, JSON encoded as a decimal string.
type U128 uint256.Int

// NewU128 creates U128 from uint64.
func NewU128(v uint64) U128 {
	return U128(*uint256.NewInt(v))
}

// U128From converts x into U128. x is expected to fit into 128 bits.
func U128From(x *uint256.Int) U128 {
	return U128(*x)
}

// ParseU128 parses a decimal string.
func ParseU128(s string) (U128, error) {
	var z uint256.Int
	if err := z.SetFromDecimal(s); err != nil {
		return U128{}, err
	}
	if !IsU128(&z) {
		return U128{}, ErrU128Overflow
	}
	return U128(z), nil
}

// MustParseU128 same as ParseU128, but panics on error.
func MustParseU128(s string) U128 {
	u, err := ParseU128(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Int returns a copy of the value as uint256.Int.
func (u U128) Int() *uint256.Int {
	z := uint256.Int(u)
	return &z
}

// IsZero returns whether the value is zero.
func (u U128) IsZero() bool {
	return u.Int().IsZero()
}

// String returns the decimal presentation.
func (u U128) String() string {
	return u.Int().Dec()
}

// MarshalJSON implements json.Marshaler.
func (u U128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *U128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("u128: expected decimal string")
	}
	parsed, err := ParseU128(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
