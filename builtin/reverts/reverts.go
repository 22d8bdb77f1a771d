// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind uint8

const (
	Validation Kind = iota + 1
	InsufficientBalance
	Authorization
	NotFound
	StorageCost
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case InsufficientBalance:
		return "insufficient_balance"
	case Authorization:
		return "authorization"
	case NotFound:
		return "not_found"
	case StorageCost:
		return "storage_cost"
	default:
		return "unknown"
	}
}

// ErrRevert aborts the current entry point. All effects of the entry point are
// discarded and the attached deposit goes back to the caller.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func NewValidation(format string, args ...any) *ErrRevert {
	return New(Validation, fmt.Sprintf(format, args...))
}

func NewInsufficientBalance(message string) *ErrRevert {
	return New(InsufficientBalance, message)
}

func NewAuthorization(message string) *ErrRevert {
	return New(Authorization, message)
}

func NewNotFound(message string) *ErrRevert {
	return New(NotFound, message)
}

func NewStorageCost(message string) *ErrRevert {
	return New(StorageCost, message)
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert error wrapped in err, or 0.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
