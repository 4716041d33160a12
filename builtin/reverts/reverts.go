// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind uint8

const (
	Unauthorized Kind = iota + 1
	InvalidState
	NotEligible
	LedgerFailure
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "Unauthorized"
	case InvalidState:
		return "InvalidState"
	case NotEligible:
		return "NotEligible"
	case LedgerFailure:
		return "LedgerFailure"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String. Unknown names yield 0.
func ParseKind(s string) Kind {
	for k := Unauthorized; k <= LedgerFailure; k++ {
		if k.String() == s {
			return k
		}
	}
	return 0
}

// ErrRevert is a rejected call. Nothing the call staged is committed.
type ErrRevert struct {
	kind    Kind
	message string
	cause   error
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

// Wrap creates a revert of kind caused by err. The message is err's text.
func Wrap(kind Kind, err error) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: err.Error(),
		cause:   err,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// Is matches reverts of the same kind and message.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.message == t.message
}

// Bytes returns the revert reason ABI encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}

	// 4-byte selector for Error(string)
	selector, _ := hex.DecodeString("08c379a0")
	msgBytes := []byte(e.message)
	msgLen := uint64(len(msgBytes))

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 0, 4+32+32+((len(msgBytes)+31)/32)*32)
	encoded = append(encoded, selector...)

	// offset is always 0x20 after the selector
	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], msgLen)
	encoded = append(encoded, length...)

	data := make([]byte, ((len(msgBytes)+31)/32)*32)
	copy(data, msgBytes)
	encoded = append(encoded, data...)

	return encoded
}

func IsRevertErr(err error) bool {
	var re *ErrRevert
	return errors.As(err, &re) && re != nil
}

// KindOf returns the kind of a revert error, or zero if err is not a revert.
func KindOf(err error) Kind {
	var re *ErrRevert
	if errors.As(err, &re) && re != nil {
		return re.kind
	}
	return 0
}
