// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package berry

import (
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"strings"
	"sync"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/blake2b"
)

// AccountHashLength length of the short account hash in bytes.
const AccountHashLength = 20

// AccountHash is the truncated sha256 digest of an AccountID.
type AccountHash [AccountHashLength]byte

// String implements the stringer interface.
func (h AccountHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Bytes returns byte slice form of the hash.
func (h AccountHash) Bytes() []byte {
	return h[:]
}

// IsZero returns if the hash has all zero bytes.
func (h AccountHash) IsZero() bool {
	return h == AccountHash{}
}

// MarshalText implements encoding.TextMarshaler.
func (h AccountHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *AccountHash) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseAccountHash converts hex string into AccountHash.
func ParseAccountHash(s string) (AccountHash, error) {
	if len(s) == AccountHashLength*2+2 {
		if strings.ToLower(s[:2]) != "0x" {
			return AccountHash{}, errors.New("invalid prefix")
		}
		s = s[2:]
	} else if len(s) != AccountHashLength*2 {
		return AccountHash{}, errors.New("invalid length")
	}
	var h AccountHash
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return AccountHash{}, err
	}
	return h, nil
}

// HashAccountID computes the short hash of the given account id.
func HashAccountID(id AccountID) (h AccountHash) {
	sum := sha256.Sum256([]byte(id))
	copy(h[:], sum[:AccountHashLength])
	return
}

// NewBlake2b return blake2b-256 hash.
func NewBlake2b() hash.Hash {
	hash, _ := blake2b.New256(nil)
	return hash
}

// Blake2b computes blake2b-256 checksum for given data.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		// the quick version
		return blake2b.Sum256(data[0])
	}
	return Blake2bFn(func(w io.Writer) {
		for _, b := range data {
			w.Write(b)
		}
	})
}

// Blake2bFn computes blake2b-256 checksum for the provided writer.
func Blake2bFn(fn func(w io.Writer)) (h Bytes32) {
	w := blake2bStatePool.Get().(*blake2bState)
	fn(w)
	w.Sum(w.b32[:0])
	h = w.b32 // to avoid 1 alloc
	w.Reset()
	blake2bStatePool.Put(w)
	return
}

type blake2bState struct {
	hash.Hash
	b32 Bytes32
}

var blake2bStatePool = sync.Pool{
	New: func() any {
		return &blake2bState{
			Hash: NewBlake2b(),
		}
	},
}
