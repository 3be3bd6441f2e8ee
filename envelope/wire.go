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

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/sunyihoo/txenvelope/rlpitem"
)

// Field positions in the RLP payload of a dynamic fee transaction.
// 动态费用交易 RLP 负载中的字段顺序。
const (
	fieldChainID = iota
	fieldNonce
	fieldMaxPriorityFeePerGas
	fieldMaxFeePerGas
	fieldGasLimit
	fieldDestination
	fieldValue
	fieldData
	fieldAccessList
	fieldV
	fieldR
	fieldS

	fieldCount          = fieldS + 1          // fields of a signed envelope
	signatureFieldCount = fieldAccessList + 1 // fields covered by the signature
)

// EncodeMode selects the field set produced by EncodeWire.
type EncodeMode uint8

const (
	// EncodeFull produces the signed, broadcastable form with all 12 fields.
	EncodeFull EncodeMode = iota
	// EncodeSignature produces the 9-field payload that is hashed for signing.
	EncodeSignature
)

func (m EncodeMode) String() string {
	switch m {
	case EncodeFull:
		return "full"
	case EncodeSignature:
		return "signature"
	default:
		return fmt.Sprintf("EncodeMode(%d)", uint8(m))
	}
}

// DecodeWire decodes the canonical EIP-2718 encoding of a dynamic fee
// transaction: the type byte followed by the RLP list of its 12 fields.
// A leading byte other than DynamicFeeTxType yields ErrTxTypeMismatch
// without looking at the rest of the input.
//
// DecodeWire 解码类型化交易的规范格式：类型字节 + 12 个字段的 RLP 列表。
func DecodeWire(b []byte) (*Envelope, error) {
	if len(b) == 0 || b[0] != DynamicFeeTxType {
		return nil, ErrTxTypeMismatch
	}
	item, err := rlpitem.Parse(b[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if item.Kind() != rlpitem.List || item.Len() != fieldCount {
		return nil, fmt.Errorf("%w: have %d", ErrListArity, item.Len())
	}
	fields := item.Items()

	var env Envelope
	ints := []struct {
		pos int
		dst **big.Int
	}{
		{fieldChainID, &env.ChainID},
		{fieldNonce, &env.Nonce},
		{fieldMaxPriorityFeePerGas, &env.MaxPriorityFeePerGas},
		{fieldMaxFeePerGas, &env.MaxFeePerGas},
		{fieldGasLimit, &env.GasLimit},
		{fieldValue, &env.Value},
		{fieldV, &env.V},
		{fieldR, &env.R},
		{fieldS, &env.S},
	}
	for _, field := range ints {
		if *field.dst, err = decodeUint(fields[field.pos]); err != nil {
			return nil, fmt.Errorf("field %d: %w", field.pos, err)
		}
	}
	if env.Data, err = decodeBytes(fields[fieldData]); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	if env.To, err = decodeDestination(fields[fieldDestination]); err != nil {
		return nil, err
	}
	if env.AccessList, err = decodeAccessList(fields[fieldAccessList]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &env, nil
}

// EncodeWire returns the type byte followed by the RLP encoding of the fields
// selected by mode.
//
// EncodeWire 返回类型字节加上按 mode 选取字段的 RLP 编码。
func (e *Envelope) EncodeWire(mode EncodeMode) ([]byte, error) {
	accessList, err := encodeAccessList(e.AccessList)
	if err != nil {
		return nil, err
	}
	fields := make([]interface{}, signatureFieldCount, fieldCount)
	fields[fieldChainID] = bigOrZero(e.ChainID)
	fields[fieldNonce] = bigOrZero(e.Nonce)
	fields[fieldMaxPriorityFeePerGas] = bigOrZero(e.MaxPriorityFeePerGas)
	fields[fieldMaxFeePerGas] = bigOrZero(e.MaxFeePerGas)
	fields[fieldGasLimit] = bigOrZero(e.GasLimit)
	fields[fieldDestination] = e.To
	fields[fieldValue] = bigOrZero(e.Value)
	fields[fieldData] = e.Data
	fields[fieldAccessList] = accessList

	switch mode {
	case EncodeFull:
		v, r, s := e.RawSignatureValues()
		fields = append(fields, v, r, s)
	case EncodeSignature:
	default:
		return nil, fmt.Errorf("unknown encode mode %v", mode)
	}
	payload, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return nil, err
	}
	return append([]byte{DynamicFeeTxType}, payload...), nil
}

// MarshalBinary returns the canonical, signed encoding of the transaction.
func (e *Envelope) MarshalBinary() ([]byte, error) {
	return e.EncodeWire(EncodeFull)
}

// UnmarshalBinary decodes the canonical encoding into e.
func (e *Envelope) UnmarshalBinary(b []byte) error {
	dec, err := DecodeWire(b)
	if err != nil {
		return err
	}
	*e = *dec
	return nil
}

// decodeUint interprets a byte string as a big-endian unsigned integer.
// The empty string is zero; lists are rejected.
func decodeUint(it rlpitem.Item) (*big.Int, error) {
	switch it.Kind() {
	case rlpitem.Absent:
		return new(big.Int), nil
	case rlpitem.Data:
		return new(big.Int).SetBytes(it.Bytes()), nil
	default:
		return nil, fmt.Errorf("%w: expected integer, got list", ErrMalformed)
	}
}

func decodeBytes(it rlpitem.Item) ([]byte, error) {
	switch it.Kind() {
	case rlpitem.Absent:
		return []byte{}, nil
	case rlpitem.Data:
		return append([]byte{}, it.Bytes()...), nil
	default:
		return nil, fmt.Errorf("%w: expected bytes, got list", ErrMalformed)
	}
}

func decodeDestination(it rlpitem.Item) (Destination, error) {
	if it.Kind() == rlpitem.List {
		return Destination{}, fmt.Errorf("%w: destination is a list", ErrMalformed)
	}
	dst, err := DestinationFromBytes(it.Bytes())
	if err != nil {
		return Destination{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return dst, nil
}
