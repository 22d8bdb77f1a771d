// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package berry

import (
	"encoding/json"
	"errors"
)

const (
	// MinAccountIDLen minimum length of an account id.
	MinAccountIDLen = 2
	// MaxAccountIDLen maximum length of an account id.
	MaxAccountIDLen = 64
)

var (
	errAccountIDLength  = errors.New("account id: invalid length")
	errAccountIDCharset = errors.New("account id: invalid character")
	errAccountIDSep     = errors.New("account id: misplaced separator")
)

// AccountID is the external identity of an account, e.g. "alice.near".
type AccountID string

// String implements the stringer interface.
func (id AccountID) String() string {
	return string(id)
}

// Bytes returns byte slice form of the account id.
func (id AccountID) Bytes() []byte {
	return []byte(id)
}

// Hash returns the short hash used as the storage key of the account.
func (id AccountID) Hash() AccountHash {
	return HashAccountID(id)
}

// ParseAccountID validates s and converts it into AccountID.
// Valid ids are 2..64 chars of [a-z0-9] groups separated by one of '.', '-' or '_'.
func ParseAccountID(s string) (AccountID, error) {
	if len(s) < MinAccountIDLen || len(s) > MaxAccountIDLen {
		return "", errAccountIDLength
	}
	sepAllowed := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			sepAllowed = true
		case c == '.' || c == '-' || c == '_':
			if !sepAllowed {
				return "", errAccountIDSep
			}
			sepAllowed = false
		default:
			return "", errAccountIDCharset
		}
	}
	if !sepAllowed {
		return "", errAccountIDSep
	}
	return AccountID(s), nil
}

// MustParseAccountID same as ParseAccountID, but panics on error.
func MustParseAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// UnmarshalJSON implements json.Unmarshaler and validates the id.
func (id *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAccountID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
