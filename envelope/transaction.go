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

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Hash returns the transaction hash, keccak256(0x02 || rlp(all fields)).
//
// Hash 返回交易哈希，与 types.Transaction.Hash 的计算方式一致。
func (e *Envelope) Hash() (common.Hash, error) {
	enc, err := e.EncodeWire(EncodeFull)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// SigningHash returns the hash a sender signs, keccak256 of the
// signature-only encoding. It matches types.LondonSigner.Hash.
//
// SigningHash 返回需要签名的哈希（不含 v, r, s），与 London 签名器一致。
func (e *Envelope) SigningHash() (common.Hash, error) {
	enc, err := e.EncodeWire(EncodeSignature)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// ToTransaction converts the envelope into a go-ethereum transaction. The
// nonce and gas limit must fit 64 bits, every other integer 256 bits.
func (e *Envelope) ToTransaction() (*types.Transaction, error) {
	if err := e.checkBounds(); err != nil {
		return nil, err
	}
	v, r, s := e.RawSignatureValues()
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:    bigOrZero(e.ChainID),
		Nonce:      bigOrZero(e.Nonce).Uint64(),
		GasTipCap:  bigOrZero(e.MaxPriorityFeePerGas),
		GasFeeCap:  bigOrZero(e.MaxFeePerGas),
		Gas:        bigOrZero(e.GasLimit).Uint64(),
		To:         e.To.Pointer(),
		Value:      bigOrZero(e.Value),
		Data:       common.CopyBytes(e.Data),
		AccessList: copyAccessList(e.AccessList),
		V:          v,
		R:          r,
		S:          s,
	}), nil
}

// FromTransaction converts a go-ethereum dynamic fee transaction into an
// envelope. Other transaction types yield ErrTxTypeMismatch.
func FromTransaction(tx *types.Transaction) (*Envelope, error) {
	if tx.Type() != DynamicFeeTxType {
		return nil, fmt.Errorf("%w: type %d", ErrTxTypeMismatch, tx.Type())
	}
	to := ContractDeployment()
	if addr := tx.To(); addr != nil {
		to = NewDestination(*addr)
	}
	v, r, s := tx.RawSignatureValues()
	env := &Envelope{
		ChainID:              tx.ChainId(),
		Nonce:                new(big.Int).SetUint64(tx.Nonce()),
		MaxPriorityFeePerGas: tx.GasTipCap(),
		MaxFeePerGas:         tx.GasFeeCap(),
		GasLimit:             new(big.Int).SetUint64(tx.Gas()),
		To:                   to,
		Value:                tx.Value(),
		Data:                 tx.Data(),
		AccessList:           tx.AccessList(),
		V:                    v,
		R:                    r,
		S:                    s,
	}
	return env.Copy(), nil
}
