// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"slices"
	"sync"

	"github.com/holiman/uint256"
)

// discardHandler drops every record. It backs the root logger until a real
// handler is installed.
type discardHandler struct{}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }

// TerminalHandler formats records for humans, one per line:
//
//	INFO [10-18|09:41:02.125] staked                                 account=bob.near amount=1,000
//
// Attribute values are padded to the widest value seen per key so columns
// line up across records.
type TerminalHandler struct {
	mu           sync.Mutex
	wr           io.Writer
	lvl          slog.Leveler
	useColor     bool
	attrs        []slog.Attr
	fieldPadding map[string]int

	buf []byte
}

func newTerminalHandler(wr io.Writer, lvl slog.Leveler, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:           wr,
		lvl:          lvl,
		useColor:     useColor,
		fieldPadding: make(map[string]int),
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.format(h.buf, r, h.useColor)
	_, err := h.wr.Write(buf)
	h.buf = buf[:0]
	return err
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

// WithGroup is not supported, attributes stay flat.
func (h *TerminalHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := newTerminalHandler(h.wr, h.lvl, h.useColor)
	c.attrs = slices.Concat(h.attrs, attrs)
	return c
}

func newJSONHandler(wr io.Writer, lvl slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceJSONAttr,
		Level:       lvl,
	})
}

// replaceJSONAttr shortens the builtin keys and renders numbers and
// stringers as strings, so 128-bit amounts keep their precision.
func replaceJSONAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		return slog.Attr{Key: "t", Value: attr.Value}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.String("lvl", LevelString(l))
		}
	}

	switch v := attr.Value.Any().(type) {
	case *big.Int:
		attr.Value = nilOr(v == nil, v.String)
	case *uint256.Int:
		attr.Value = nilOr(v == nil, v.Dec)
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		attr.Value = nilOr(rv.Kind() == reflect.Pointer && rv.IsNil(), v.String)
	}
	return attr
}

func nilOr(isNil bool, str func() string) slog.Value {
	if isNil {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(str())
}

// Options selects the output format of a handler.
type Options struct {
	Level    *slog.LevelVar
	JSON     bool
	UseColor bool
}

// NewHandler creates a handler writing to wr in the format picked by opts.
// The level defaults to info.
func NewHandler(wr io.Writer, opts Options) slog.Handler {
	var lvl slog.Leveler = LevelInfo
	if opts.Level != nil {
		lvl = opts.Level
	}
	if opts.JSON {
		return newJSONHandler(wr, lvl)
	}
	return newTerminalHandler(wr, lvl, opts.UseColor)
}
