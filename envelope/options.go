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

	"github.com/ethereum/go-ethereum/core/types"
)

// 待签名交易的选项：在签名前用调用方给定的默认值或覆盖值补全交易字段，
// 类似 internal/ethapi 中 TransactionArgs.setDefaults 的作用。

// NonceMode selects how the nonce is resolved.
type NonceMode uint8

const (
	NoncePending NonceMode = iota // use the current (pending) value
	NonceLatest                   // use the current (latest) value
	NonceManual                   // use the value carried by the policy
)

// NoncePolicy decides the nonce of a pending transaction. The zero value
// keeps the current nonce.
type NoncePolicy struct {
	Mode  NonceMode
	Value *big.Int
}

// ManualNonce returns a policy pinning the nonce to n.
func ManualNonce(n *big.Int) NoncePolicy {
	return NoncePolicy{Mode: NonceManual, Value: n}
}

// Resolve returns the nonce to use given the current one.
func (p NoncePolicy) Resolve(fallback *big.Int) *big.Int {
	if p.Mode == NonceManual && p.Value != nil {
		return new(big.Int).Set(p.Value)
	}
	return bigOrZero(fallback)
}

// GasLimitMode selects how the gas limit is resolved.
type GasLimitMode uint8

const (
	GasAutomatic  GasLimitMode = iota // use the current (suggested) limit
	GasManual                         // use Value
	GasLimited                        // use the current limit, capped at Value
	GasWithMargin                     // use the current limit plus Margin percent
)

// GasLimitPolicy decides the gas limit of a pending transaction. The zero
// value keeps the current limit.
type GasLimitPolicy struct {
	Mode   GasLimitMode
	Value  *big.Int
	Margin uint64 // percent, only for GasWithMargin
}

// ManualGasLimit returns a policy pinning the gas limit to gas.
func ManualGasLimit(gas *big.Int) GasLimitPolicy {
	return GasLimitPolicy{Mode: GasManual, Value: gas}
}

// LimitedGasLimit returns a policy capping the gas limit at limit.
func LimitedGasLimit(limit *big.Int) GasLimitPolicy {
	return GasLimitPolicy{Mode: GasLimited, Value: limit}
}

// GasLimitWithMargin returns a policy raising the gas limit by percent.
func GasLimitWithMargin(percent uint64) GasLimitPolicy {
	return GasLimitPolicy{Mode: GasWithMargin, Margin: percent}
}

// Resolve returns the gas limit to use given the current one.
func (p GasLimitPolicy) Resolve(fallback *big.Int) *big.Int {
	current := bigOrZero(fallback)
	switch p.Mode {
	case GasManual:
		if p.Value != nil {
			return new(big.Int).Set(p.Value)
		}
	case GasLimited:
		if p.Value != nil && current.Cmp(p.Value) > 0 {
			return new(big.Int).Set(p.Value)
		}
	case GasWithMargin:
		current.Mul(current, new(big.Int).SetUint64(100+p.Margin))
		return current.Div(current, big.NewInt(100))
	}
	return current
}

// FeeMode selects how a per-gas fee is resolved.
type FeeMode uint8

const (
	FeeAutomatic FeeMode = iota // use the current (suggested) fee
	FeeManual                   // use Value
)

// FeePolicy decides maxFeePerGas or maxPriorityFeePerGas. The zero value
// keeps the current fee.
type FeePolicy struct {
	Mode  FeeMode
	Value *big.Int
}

// ManualFee returns a policy pinning the fee to fee.
func ManualFee(fee *big.Int) FeePolicy {
	return FeePolicy{Mode: FeeManual, Value: fee}
}

// Resolve returns the fee to use given the current one.
func (p FeePolicy) Resolve(fallback *big.Int) *big.Int {
	if p.Mode == FeeManual && p.Value != nil {
		return new(big.Int).Set(p.Value)
	}
	return bigOrZero(fallback)
}

// Options carries defaults and overrides merged into a transaction before it
// is signed. Value, To and AccessList replace the envelope fields only when set.
//
// Options 携带签名前合并到交易中的默认值与覆盖值。
type Options struct {
	Nonce                NoncePolicy
	GasLimit             GasLimitPolicy
	MaxFeePerGas         FeePolicy
	MaxPriorityFeePerGas FeePolicy

	Value      *big.Int
	To         *Destination
	AccessList *types.AccessList
}

func (o *Options) String() string {
	if o == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Options{nonce: %d, gas: %d, feeCap: %d, tip: %d, value: %v, to: %v, accessList: %v}",
		o.Nonce.Mode, o.GasLimit.Mode, o.MaxFeePerGas.Mode, o.MaxPriorityFeePerGas.Mode,
		o.Value, o.To, o.AccessList != nil)
}

// ApplyOptions returns a copy of e with opts merged in. The nonce, both fee
// fields and the gas limit are resolved through the policies with the current
// values as fallback; chain id and signature values are never touched. The
// input envelope is left unmodified.
//
// ApplyOptions 返回合并了选项的新交易副本，不修改原交易。
func ApplyOptions(e *Envelope, opts *Options) *Envelope {
	merged := e.Copy()
	if opts == nil {
		return merged
	}
	merged.Nonce = opts.Nonce.Resolve(merged.Nonce)
	merged.MaxPriorityFeePerGas = opts.MaxPriorityFeePerGas.Resolve(merged.MaxPriorityFeePerGas)
	merged.MaxFeePerGas = opts.MaxFeePerGas.Resolve(merged.MaxFeePerGas)
	merged.GasLimit = opts.GasLimit.Resolve(merged.GasLimit)
	if opts.Value != nil {
		merged.Value = new(big.Int).Set(opts.Value)
	}
	if opts.To != nil {
		merged.To = *opts.To
	}
	if opts.AccessList != nil {
		merged.AccessList = copyAccessList(*opts.AccessList)
	}
	return merged
}

// Options snapshots the envelope's mergeable fields into a fresh overlay that
// reproduces them when applied to any envelope.
func (e *Envelope) Options() *Options {
	to := e.To
	al := copyAccessList(e.AccessList)
	return &Options{
		Nonce:                ManualNonce(bigOrZero(e.Nonce)),
		GasLimit:             ManualGasLimit(bigOrZero(e.GasLimit)),
		MaxFeePerGas:         ManualFee(bigOrZero(e.MaxFeePerGas)),
		MaxPriorityFeePerGas: ManualFee(bigOrZero(e.MaxPriorityFeePerGas)),
		Value:                bigOrZero(e.Value),
		To:                   &to,
		AccessList:           &al,
	}
}
