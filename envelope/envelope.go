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

// Package envelope implements the EIP-1559 dynamic fee transaction envelope:
// its canonical binary encoding, its JSON-RPC parameter form and the merging
// of pending transaction options before signing.
//
// EIP-1559：2021 年伦敦硬分叉，交易类型 0x02。与 core/types.DynamicFeeTx 不同，
// 这里所有数值字段均为任意精度整数，并显式区分普通地址与合约创建。
package envelope

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DynamicFeeTxType is the EIP-2718 type byte of dynamic fee envelopes.
const DynamicFeeTxType byte = types.DynamicFeeTxType

// Envelope represents an EIP-1559 transaction. Nil integer fields read as zero.
// Envelope 表示一笔 EIP-1559 交易。为 nil 的整数字段视为零。
type Envelope struct {
	ChainID              *big.Int // 链 ID，缺省为 0
	Nonce                *big.Int
	MaxPriorityFeePerGas *big.Int // a.k.a. GasTipCap 最大优先费
	MaxFeePerGas         *big.Int // a.k.a. GasFeeCap 最大总费用
	GasLimit             *big.Int
	To                   Destination
	Value                *big.Int
	Data                 []byte
	AccessList           types.AccessList

	// Signature values. V is the y-parity (0 or 1), it does not embed the chain id.
	// 签名值。V 为恢复标识符（0 或 1），不嵌入 ChainID。
	V *big.Int
	R *big.Int
	S *big.Int
}

// NewEnvelope creates an unsigned envelope. Nonce and value fall back to the
// values resolved from opts, then to zero. A nil chainID means zero. The gas
// and fee policies and the access list of opts are applied as well; the
// explicit destination always wins over opts.To.
func NewEnvelope(to Destination, data []byte, nonce, chainID, value *big.Int, opts *Options) *Envelope {
	env := &Envelope{
		ChainID: bigOrZero(chainID),
		To:      to,
		Data:    common.CopyBytes(data),
	}
	switch {
	case nonce != nil:
		env.Nonce = new(big.Int).Set(nonce)
	case opts != nil:
		env.Nonce = opts.Nonce.Resolve(new(big.Int))
	default:
		env.Nonce = new(big.Int)
	}
	switch {
	case value != nil:
		env.Value = new(big.Int).Set(value)
	case opts != nil && opts.Value != nil:
		env.Value = new(big.Int).Set(opts.Value)
	default:
		env.Value = new(big.Int)
	}
	if opts != nil {
		env = ApplyOptions(env, &Options{
			GasLimit:             opts.GasLimit,
			MaxFeePerGas:         opts.MaxFeePerGas,
			MaxPriorityFeePerGas: opts.MaxPriorityFeePerGas,
			AccessList:           opts.AccessList,
		})
	}
	return env.Copy()
}

// Type returns the transaction type byte, always DynamicFeeTxType.
func (e *Envelope) Type() byte { return DynamicFeeTxType }

// Copy creates a deep copy of the envelope and initializes all fields,
// replacing nil integers with zero.
//
// Copy 创建交易数据的深拷贝并初始化所有字段。
func (e *Envelope) Copy() *Envelope {
	cpy := &Envelope{
		ChainID:              bigOrZero(e.ChainID),
		Nonce:                bigOrZero(e.Nonce),
		MaxPriorityFeePerGas: bigOrZero(e.MaxPriorityFeePerGas),
		MaxFeePerGas:         bigOrZero(e.MaxFeePerGas),
		GasLimit:             bigOrZero(e.GasLimit),
		To:                   e.To,
		Value:                bigOrZero(e.Value),
		Data:                 common.CopyBytes(e.Data),
		AccessList:           copyAccessList(e.AccessList),
		V:                    bigOrZero(e.V),
		R:                    bigOrZero(e.R),
		S:                    bigOrZero(e.S),
	}
	if cpy.Data == nil {
		cpy.Data = []byte{}
	}
	return cpy
}

// Equal reports whether both envelopes carry the same field values. Nil
// integers compare equal to zero, and nil data or access lists to empty ones.
func (e *Envelope) Equal(o *Envelope) bool {
	if e == nil || o == nil {
		return e == o
	}
	ints := [][2]*big.Int{
		{e.ChainID, o.ChainID},
		{e.Nonce, o.Nonce},
		{e.MaxPriorityFeePerGas, o.MaxPriorityFeePerGas},
		{e.MaxFeePerGas, o.MaxFeePerGas},
		{e.GasLimit, o.GasLimit},
		{e.Value, o.Value},
		{e.V, o.V},
		{e.R, o.R},
		{e.S, o.S},
	}
	for _, pair := range ints {
		if bigOrZero(pair[0]).Cmp(bigOrZero(pair[1])) != 0 {
			return false
		}
	}
	if e.To != o.To || !bytes.Equal(e.Data, o.Data) {
		return false
	}
	return accessListEqual(e.AccessList, o.AccessList)
}

// RawSignatureValues returns the V, R, S signature values of the envelope.
func (e *Envelope) RawSignatureValues() (v, r, s *big.Int) {
	return bigOrZero(e.V), bigOrZero(e.R), bigOrZero(e.S)
}

// WithSignatureValues returns a copy of the envelope carrying the given
// signature values.
func (e *Envelope) WithSignatureValues(v, r, s *big.Int) *Envelope {
	cpy := e.Copy()
	cpy.V, cpy.R, cpy.S = bigOrZero(v), bigOrZero(r), bigOrZero(s)
	return cpy
}

// Signed reports whether any signature value is set.
func (e *Envelope) Signed() bool {
	v, r, s := e.RawSignatureValues()
	return v.Sign() != 0 || r.Sign() != 0 || s.Sign() != 0
}

func bigOrZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}
