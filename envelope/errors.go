// Copyright 2025 The go-ethereum Authors
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

package envelope

import "errors"

// Decoding errors. Except for ErrInvalidDestination, every decoding error means
// the input is not a dynamic fee envelope and another decoder may be tried.
//
// 解码错误。除 ErrInvalidDestination 外，其余错误都表示输入不是动态费用交易，
// 调用方可以继续尝试其他交易类型的解码器。
var (
	ErrTxTypeMismatch  = errors.New("not a dynamic fee transaction")
	ErrMalformed       = errors.New("malformed dynamic fee transaction")
	ErrListArity       = errors.New("dynamic fee transaction must have 12 fields")
	ErrMissingField    = errors.New("missing required field")
	ErrMalformedField  = errors.New("malformed field")
	ErrInvalidAccess   = errors.New("invalid access list entry")
	ErrDestinationSize = errors.New("destination must be empty or 20 bytes")

	// ErrInvalidDestination is returned when a destination string is present
	// but is not a valid address. The input is broken, not merely of another type.
	ErrInvalidDestination = errors.New("invalid destination address")
)

// Validation errors.
var (
	ErrUint256Overflow = errors.New("value exceeds 256 bits")
	ErrNegativeValue   = errors.New("negative value")
	ErrUint64Overflow  = errors.New("value exceeds 64 bits")
	ErrTipAboveFeeCap  = errors.New("max priority fee per gas higher than max fee per gas")
	ErrInvalidSig      = errors.New("invalid transaction v, r, s values")
)

// IsMismatch reports whether err signals that the input is not a dynamic fee
// envelope, as opposed to a hard failure on a broken input.
func IsMismatch(err error) bool {
	return err != nil && !errors.Is(err, ErrInvalidDestination)
}
