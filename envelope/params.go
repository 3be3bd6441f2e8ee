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
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// Params is the loosely typed JSON-RPC representation of a transaction, as
// produced by json.Unmarshal into a map: numbers are 0x-prefixed hex strings.
//
// Params 是交易在 JSON-RPC 中的松散类型表示，数值均为 0x 前缀的十六进制字符串。
type Params map[string]interface{}

// Recognized parameter keys.
const (
	keyType                 = "type"
	keyChainID              = "chainId"
	keyNonce                = "nonce"
	keyFrom                 = "from"
	keyTo                   = "to"
	keyValue                = "value"
	keyMaxPriorityFeePerGas = "maxPriorityFeePerGas"
	keyMaxFeePerGas         = "maxFeePerGas"
	keyGas                  = "gas"
	keyGasLimit             = "gasLimit"
	keyData                 = "data"
	keyInput                = "input"
	keyAccessList           = "accessList"
	keyV                    = "v"
	keyR                    = "r"
	keyS                    = "s"
)

// DecodeParams builds an envelope from its JSON-RPC form. Every error except
// ErrInvalidDestination means the map is not a dynamic fee transaction.
//
// Required: to, nonce, value, chainId, input or data, v, r, s. A null, empty,
// "0x" or "0x0" destination denotes contract deployment. Fee fields and the
// gas limit default to zero when absent or malformed, and an access list that
// fails to parse is dropped. Key presence is checked before any value is
// parsed, so an incomplete map is always a soft failure.
//
// DecodeParams 先检查必需键是否齐全，再解析各字段的值。
func DecodeParams(p Params) (*Envelope, error) {
	if raw, ok := p[keyType]; ok {
		typ, err := parseQuantity(raw)
		if err != nil || !typ.IsUint64() || typ.Uint64() != uint64(DynamicFeeTxType) {
			return nil, fmt.Errorf("%w: type %v", ErrTxTypeMismatch, raw)
		}
	}
	// The destination key must be present, but its value may be null.
	if _, ok := p[keyTo]; !ok {
		return nil, fmt.Errorf("%w '%s'", ErrMissingField, keyTo)
	}
	var (
		env Envelope
		err error
	)
	required := []struct {
		key string
		dst **big.Int
	}{
		{keyNonce, &env.Nonce},
		{keyValue, &env.Value},
		{keyChainID, &env.ChainID},
		{keyV, &env.V},
		{keyR, &env.R},
		{keyS, &env.S},
	}
	for _, field := range required {
		if raw, ok := p[field.key]; !ok || raw == nil {
			return nil, fmt.Errorf("%w '%s'", ErrMissingField, field.key)
		}
	}
	if p[keyInput] == nil && p[keyData] == nil {
		return nil, fmt.Errorf("%w '%s' or '%s'", ErrMissingField, keyInput, keyData)
	}

	if env.To, err = paramDestination(p[keyTo]); err != nil {
		return nil, err
	}
	for _, field := range required {
		if *field.dst, err = parseQuantity(p[field.key]); err != nil {
			return nil, fmt.Errorf("%w '%s': %v", ErrMalformedField, field.key, err)
		}
	}
	if env.Data, err = paramPayload(p); err != nil {
		return nil, err
	}

	env.MaxPriorityFeePerGas = optionalQuantity(p, keyMaxPriorityFeePerGas)
	env.MaxFeePerGas = optionalQuantity(p, keyMaxFeePerGas)
	if _, ok := p[keyGas]; ok {
		env.GasLimit = optionalQuantity(p, keyGas)
	} else {
		env.GasLimit = optionalQuantity(p, keyGasLimit)
	}

	env.AccessList = types.AccessList{}
	if raw, ok := p[keyAccessList]; ok && raw != nil {
		al, err := accessListFromParams(raw)
		if err != nil {
			log.Debug("Dropping malformed access list", "err", err)
		} else {
			env.AccessList = al
		}
	}
	return &env, nil
}

// EncodeParams returns the JSON-RPC form of the envelope. The sender is not
// part of the envelope; it is included as given when non-nil. A contract
// deployment is written as "to": "0x" so that the key is always present.
//
// EncodeParams 返回交易的 JSON-RPC 表示；from 字段不属于交易本身，按原样透传。
func (e *Envelope) EncodeParams(from *common.Address) (Params, error) {
	if _, err := encodeAccessList(e.AccessList); err != nil {
		return nil, err
	}
	v, r, s := e.RawSignatureValues()
	p := Params{
		keyType:                 fmt.Sprintf("0x%02x", e.Type()),
		keyChainID:              hexutil.EncodeBig(bigOrZero(e.ChainID)),
		keyNonce:                hexutil.EncodeBig(bigOrZero(e.Nonce)),
		keyValue:                hexutil.EncodeBig(bigOrZero(e.Value)),
		keyMaxPriorityFeePerGas: hexutil.EncodeBig(bigOrZero(e.MaxPriorityFeePerGas)),
		keyMaxFeePerGas:         hexutil.EncodeBig(bigOrZero(e.MaxFeePerGas)),
		keyGas:                  hexutil.EncodeBig(bigOrZero(e.GasLimit)),
		keyData:                 hexutil.Encode(e.Data),
		keyAccessList:           accessListToParams(e.AccessList),
		keyV:                    hexutil.EncodeBig(v),
		keyR:                    hexutil.EncodeBig(r),
		keyS:                    hexutil.EncodeBig(s),
		keyTo:                   e.To.Hex(),
	}
	if from != nil {
		p[keyFrom] = hexutil.Encode(from[:])
	}
	return p, nil
}

// MarshalJSON encodes the envelope in its JSON-RPC form.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	p, err := e.EncodeParams(nil)
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// UnmarshalJSON decodes the JSON-RPC form into e.
func (e *Envelope) UnmarshalJSON(input []byte) error {
	var p Params
	if err := json.Unmarshal(input, &p); err != nil {
		return err
	}
	dec, err := DecodeParams(p)
	if err != nil {
		return err
	}
	*e = *dec
	return nil
}

func paramDestination(raw interface{}) (Destination, error) {
	if raw == nil {
		return ContractDeployment(), nil
	}
	switch to := raw.(type) {
	case string:
		return ParseDestination(to)
	case common.Address:
		return NewDestination(to), nil
	case *common.Address:
		if to == nil {
			return ContractDeployment(), nil
		}
		return NewDestination(*to), nil
	case Destination:
		return to, nil
	default:
		return Destination{}, fmt.Errorf("%w: unexpected type %T", ErrInvalidDestination, raw)
	}
}

// paramPayload returns the call data, preferring "input" over "data".
func paramPayload(p Params) ([]byte, error) {
	key := keyInput
	raw, ok := p[keyInput]
	if !ok || raw == nil {
		key = keyData
		if raw, ok = p[keyData]; !ok || raw == nil {
			return nil, fmt.Errorf("%w '%s' or '%s'", ErrMissingField, keyInput, keyData)
		}
	}
	switch data := raw.(type) {
	case string:
		b, err := hexutil.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%w '%s': %v", ErrMalformedField, key, err)
		}
		return b, nil
	case []byte:
		return common.CopyBytes(data), nil
	case hexutil.Bytes:
		return common.CopyBytes(data), nil
	default:
		return nil, fmt.Errorf("%w '%s': unexpected type %T", ErrMalformedField, key, raw)
	}
}

func optionalQuantity(p Params, key string) *big.Int {
	raw, ok := p[key]
	if !ok || raw == nil {
		return new(big.Int)
	}
	x, err := parseQuantity(raw)
	if err != nil {
		log.Trace("Ignoring malformed optional field", "key", key, "err", err)
		return new(big.Int)
	}
	return x
}

// parseQuantity accepts 0x-prefixed hex strings (leading zeros allowed, at
// most 256 bits) and the Go values a caller or json.Unmarshal may produce.
func parseQuantity(raw interface{}) (*big.Int, error) {
	switch v := raw.(type) {
	case string:
		if !strings.HasPrefix(v, "0x") && !strings.HasPrefix(v, "0X") {
			return nil, hexutil.ErrMissingPrefix
		}
		if strings.ContainsAny(v[2:], "+-") {
			return nil, ErrNegativeValue
		}
		x, ok := gmath.ParseBig256(v)
		if !ok {
			return nil, fmt.Errorf("invalid hex quantity %q", v)
		}
		return x, nil
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil quantity")
		}
		if v.Sign() < 0 {
			return nil, ErrNegativeValue
		}
		return new(big.Int).Set(v), nil
	case *hexutil.Big:
		if v == nil {
			return nil, fmt.Errorf("nil quantity")
		}
		return parseQuantity(v.ToInt())
	case hexutil.Uint64:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int:
		if v < 0 {
			return nil, ErrNegativeValue
		}
		return big.NewInt(int64(v)), nil
	case int64:
		if v < 0 {
			return nil, ErrNegativeValue
		}
		return big.NewInt(v), nil
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxUint64 {
			return nil, fmt.Errorf("invalid numeric quantity %v", v)
		}
		x, _ := new(big.Float).SetFloat64(v).Int(nil)
		return x, nil
	default:
		return nil, fmt.Errorf("unexpected quantity type %T", raw)
	}
}
