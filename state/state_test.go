// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/lvldb"
)

func M(a ...any) []any {
	return a
}

func newTestStater(t *testing.T, cacheMB int) (*lvldb.LevelDB, *Stater) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, NewStater(db, cacheMB)
}

func TestStateReadWrite(t *testing.T) {
	_, stater := newTestStater(t, 0)
	st := stater.NewState()

	addr := berry.MustParseAccountID("farm.near")
	storageKey := berry.Blake2b([]byte("key"))
	storageValue := berry.BytesToBytes32([]byte("value"))

	assert.Equal(t, M(berry.Bytes32{}, nil), M(st.GetStorage(addr, storageKey)))
	st.SetStorage(addr, storageKey, storageValue)
	assert.Equal(t, M(storageValue, nil), M(st.GetStorage(addr, storageKey)))

	bal, err := st.GetBalance(addr)
	assert.NoError(t, err)
	assert.True(t, bal.IsZero())

	assert.NoError(t, st.AddBalance(addr, uint256.NewInt(10)))
	ok, err := st.SubBalance(addr, uint256.NewInt(11))
	assert.NoError(t, err)
	assert.False(t, ok)
	ok, err = st.SubBalance(addr, uint256.NewInt(4))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, M(uint256.NewInt(6), nil), M(st.GetBalance(addr)))

	// storage spaces are isolated per account
	other := berry.MustParseAccountID("other.near")
	assert.Equal(t, M(berry.Bytes32{}, nil), M(st.GetStorage(other, storageKey)))
}

func TestStateRevert(t *testing.T) {
	_, stater := newTestStater(t, 0)
	st := stater.NewState()

	addr := berry.MustParseAccountID("farm.near")
	key := berry.Blake2b([]byte("key"))

	values := []berry.Bytes32{
		berry.BytesToBytes32([]byte("v1")),
		berry.BytesToBytes32([]byte("v2")),
		berry.BytesToBytes32([]byte("v3")),
	}

	var revisions []int
	for _, v := range values {
		revisions = append(revisions, st.NewCheckpoint())
		st.SetStorage(addr, key, v)
	}

	for i := len(values) - 1; i >= 0; i-- {
		st.RevertTo(revisions[i])
		expected := berry.Bytes32{}
		if i > 0 {
			expected = values[i-1]
		}
		assert.Equal(t, M(expected, nil), M(st.GetStorage(addr, key)))
	}

	// revert to zero keeps the state usable
	st.RevertTo(0)
	st.SetStorage(addr, key, values[0])
	assert.Equal(t, M(values[0], nil), M(st.GetStorage(addr, key)))
}

func TestStateEncodeDecode(t *testing.T) {
	_, stater := newTestStater(t, 0)
	st := stater.NewState()

	type record struct {
		Name  string
		Value *uint256.Int
	}

	addr := berry.MustParseAccountID("farm.near")
	key := berry.Blake2b([]byte("rec"))

	assert.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&record{"x", uint256.NewInt(7)})
	}))

	var got record
	assert.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, uint256.NewInt(7), got.Value)

	err := st.DecodeStorage(addr, key, func([]byte) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
	assert.IsType(t, &Error{}, err)
}

func TestStaterCommit(t *testing.T) {
	for _, cacheMB := range []int{0, 1} {
		db, stater := newTestStater(t, cacheMB)
		addr := berry.MustParseAccountID("farm.near")
		key := berry.Blake2b([]byte("key"))
		value := berry.BytesToBytes32([]byte("value"))

		st := stater.NewState()
		st.SetStorage(addr, key, value)
		assert.NoError(t, st.AddBalance(addr, uint256.NewInt(100)))

		stage, err := stater.Commit(st)
		require.NoError(t, err)
		assert.Equal(t, 2, stage.Len())

		// a fresh state sees the committed values
		st = stater.NewState()
		assert.Equal(t, M(value, nil), M(st.GetStorage(addr, key)))
		assert.Equal(t, M(uint256.NewInt(100), nil), M(st.GetBalance(addr)))

		// deletion removes the entry from the db
		st.SetStorage(addr, key, berry.Bytes32{})
		st.SetBalance(addr, new(uint256.Int))
		_, err = stater.Commit(st)
		require.NoError(t, err)

		has, err := db.Has(StorageBucket.Key(storageKeyBytes(addr.Hash(), key)))
		assert.NoError(t, err)
		assert.False(t, has)

		st = stater.NewState()
		assert.Equal(t, M(berry.Bytes32{}, nil), M(st.GetStorage(addr, key)))
		bal, err := st.GetBalance(addr)
		assert.NoError(t, err)
		assert.True(t, bal.IsZero())
	}
}

func TestStageHash(t *testing.T) {
	_, stater := newTestStater(t, 0)
	addr := berry.MustParseAccountID("farm.near")

	build := func(order []string) *Stage {
		st := stater.NewState()
		for _, k := range order {
			st.SetStorage(addr, berry.Blake2b([]byte(k)), berry.BytesToBytes32([]byte(k)))
		}
		stage, err := st.Stage()
		require.NoError(t, err)
		return stage
	}

	h1 := build([]string{"a", "b", "c"}).Hash()
	h2 := build([]string{"c", "a", "b"}).Hash()
	h3 := build([]string{"a", "b"}).Hash()

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
