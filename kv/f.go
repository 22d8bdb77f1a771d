// Copyright (c) 2019 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Function adapters, for assembling interfaces from closures.
type (
	PutFunc     func(key, val []byte) error
	DeleteFunc  func(key []byte) error
	LenFunc     func() int
	WriteFunc   func() error
	FirstFunc   func() bool
	LastFunc    func() bool
	NextFunc    func() bool
	PrevFunc    func() bool
	KeyFunc     func() []byte
	ValueFunc   func() []byte
	ReleaseFunc func()
	ErrorFunc   func() error
)

func (f PutFunc) Put(key, val []byte) error  { return f(key, val) }
func (f DeleteFunc) Delete(key []byte) error { return f(key) }
func (f LenFunc) Len() int                   { return f() }
func (f WriteFunc) Write() error             { return f() }
func (f FirstFunc) First() bool              { return f() }
func (f LastFunc) Last() bool                { return f() }
func (f NextFunc) Next() bool                { return f() }
func (f PrevFunc) Prev() bool                { return f() }
func (f KeyFunc) Key() []byte                { return f() }
func (f ValueFunc) Value() []byte            { return f() }
func (f ReleaseFunc) Release()               { f() }
func (f ErrorFunc) Error() error             { return f() }
