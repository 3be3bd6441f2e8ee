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

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Validate checks that the envelope can be accepted by an Ethereum node:
// every integer fits 256 bits, nonce and gas limit fit 64 bits, the priority
// fee does not exceed the fee cap, and signature values, when present, are
// in range. The codec itself does not require any of this.
//
// Validate 检查交易能否被以太坊节点接受；编解码本身并不依赖这些约束。
func (e *Envelope) Validate() error {
	if err := e.checkBounds(); err != nil {
		return err
	}
	tip, feeCap := bigOrZero(e.MaxPriorityFeePerGas), bigOrZero(e.MaxFeePerGas)
	if tip.Cmp(feeCap) > 0 {
		return fmt.Errorf("%w: maxPriorityFeePerGas: %s, maxFeePerGas: %s", ErrTipAboveFeeCap, tip, feeCap)
	}
	if e.Signed() {
		v, r, s := e.RawSignatureValues()
		if !v.IsUint64() || v.Uint64() > 1 || !crypto.ValidateSignatureValues(byte(v.Uint64()), r, s, true) {
			return fmt.Errorf("%w: v: %s, r: %s, s: %s", ErrInvalidSig, v, r, s)
		}
	}
	return nil
}

// checkBounds verifies the integer ranges go-ethereum's transaction types
// can represent.
func (e *Envelope) checkBounds() error {
	fields := []struct {
		name string
		x    *big.Int
	}{
		{"chainId", e.ChainID},
		{"nonce", e.Nonce},
		{"maxPriorityFeePerGas", e.MaxPriorityFeePerGas},
		{"maxFeePerGas", e.MaxFeePerGas},
		{"gas", e.GasLimit},
		{"value", e.Value},
		{"v", e.V},
		{"r", e.R},
		{"s", e.S},
	}
	for _, field := range fields {
		x := bigOrZero(field.x)
		if x.Sign() < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeValue, field.name)
		}
		if _, overflow := uint256.FromBig(x); overflow {
			return fmt.Errorf("%w: %s, bitlen %d", ErrUint256Overflow, field.name, x.BitLen())
		}
	}
	if !bigOrZero(e.Nonce).IsUint64() {
		return fmt.Errorf("%w: nonce", ErrUint64Overflow)
	}
	if !bigOrZero(e.GasLimit).IsUint64() {
		return fmt.Errorf("%w: gas", ErrUint64Overflow)
	}
	return nil
}
