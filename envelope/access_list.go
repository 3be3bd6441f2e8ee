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

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/sunyihoo/txenvelope/rlpitem"
)

// EIP-2930 访问列表：每个条目为 [address, [storageKey, ...]]，顺序参与签名编码。

// decodeAccessList walks the access list field of a wire envelope. The empty
// string decodes to an empty list; any broken entry fails the whole list.
func decodeAccessList(it rlpitem.Item) (types.AccessList, error) {
	switch it.Kind() {
	case rlpitem.Absent:
		return types.AccessList{}, nil
	case rlpitem.Data:
		return nil, fmt.Errorf("%w: access list is not a list", ErrInvalidAccess)
	}
	al := make(types.AccessList, 0, it.Len())
	for i, elem := range it.Items() {
		tuple, err := decodeAccessTuple(elem)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		al = append(al, tuple)
	}
	return al, nil
}

// decodeAccessTuple parses one [address, [keys...]] entry.
func decodeAccessTuple(it rlpitem.Item) (types.AccessTuple, error) {
	if it.Kind() != rlpitem.List || it.Len() != 2 {
		return types.AccessTuple{}, fmt.Errorf("%w: want a 2-element list", ErrInvalidAccess)
	}
	addr, _ := it.At(0)
	if addr.Kind() != rlpitem.Data || addr.Len() != common.AddressLength {
		return types.AccessTuple{}, fmt.Errorf("%w: address must be %d bytes, have %d", ErrInvalidAccess, common.AddressLength, addr.Len())
	}
	keys, _ := it.At(1)
	if keys.Kind() != rlpitem.List {
		return types.AccessTuple{}, fmt.Errorf("%w: storage keys are not a list", ErrInvalidAccess)
	}
	tuple := types.AccessTuple{
		Address:     common.BytesToAddress(addr.Bytes()),
		StorageKeys: make([]common.Hash, 0, keys.Len()),
	}
	for _, key := range keys.Items() {
		if key.Kind() != rlpitem.Data || key.Len() != common.HashLength {
			return types.AccessTuple{}, fmt.Errorf("%w: storage key must be %d bytes, have %d", ErrInvalidAccess, common.HashLength, key.Len())
		}
		tuple.StorageKeys = append(tuple.StorageKeys, common.BytesToHash(key.Bytes()))
	}
	return tuple, nil
}

// encodeAccessList encodes every entry on its own and returns the encodings
// ready to be embedded into the outer transaction list.
func encodeAccessList(al types.AccessList) ([]rlp.RawValue, error) {
	out := make([]rlp.RawValue, 0, len(al))
	for i := range al {
		enc, err := rlp.EncodeToBytes(&al[i])
		if err != nil {
			return nil, fmt.Errorf("access list entry %d: %w", i, err)
		}
		out = append(out, enc)
	}
	return out, nil
}

// accessListToParams converts the list into its JSON-RPC form.
func accessListToParams(al types.AccessList) []any {
	out := make([]any, 0, len(al))
	for _, tuple := range al {
		keys := make([]any, 0, len(tuple.StorageKeys))
		for _, key := range tuple.StorageKeys {
			keys = append(keys, key.Hex())
		}
		out = append(out, map[string]any{
			"address":     hexutil.Encode(tuple.Address[:]),
			"storageKeys": keys,
		})
	}
	return out
}

// accessListFromParams accepts the shapes an access list takes after JSON
// decoding into interface values, as well as go-ethereum's typed list.
func accessListFromParams(v any) (types.AccessList, error) {
	switch v := v.(type) {
	case types.AccessList:
		return copyAccessList(v), nil
	case *types.AccessList:
		if v == nil {
			return types.AccessList{}, nil
		}
		return copyAccessList(*v), nil
	case []map[string]any:
		al := make(types.AccessList, 0, len(v))
		for i, m := range v {
			tuple, err := accessTupleFromParams(m)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			al = append(al, tuple)
		}
		return al, nil
	case []any:
		al := make(types.AccessList, 0, len(v))
		for i, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d is %T", ErrInvalidAccess, i, elem)
			}
			tuple, err := accessTupleFromParams(m)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			al = append(al, tuple)
		}
		return al, nil
	default:
		return nil, fmt.Errorf("%w: unexpected type %T", ErrInvalidAccess, v)
	}
}

func accessTupleFromParams(m map[string]any) (types.AccessTuple, error) {
	addr, ok := m["address"].(string)
	if !ok || !common.IsHexAddress(addr) {
		return types.AccessTuple{}, fmt.Errorf("%w: bad address %v", ErrInvalidAccess, m["address"])
	}
	tuple := types.AccessTuple{Address: common.HexToAddress(addr), StorageKeys: []common.Hash{}}

	var keys []string
	switch raw := m["storageKeys"].(type) {
	case nil:
	case []string:
		keys = raw
	case []any:
		for _, k := range raw {
			s, ok := k.(string)
			if !ok {
				return types.AccessTuple{}, fmt.Errorf("%w: storage key is %T", ErrInvalidAccess, k)
			}
			keys = append(keys, s)
		}
	default:
		return types.AccessTuple{}, fmt.Errorf("%w: storage keys are %T", ErrInvalidAccess, raw)
	}
	for _, k := range keys {
		b, err := hexutil.Decode(k)
		if err != nil || len(b) != common.HashLength {
			return types.AccessTuple{}, fmt.Errorf("%w: bad storage key %q", ErrInvalidAccess, k)
		}
		tuple.StorageKeys = append(tuple.StorageKeys, common.BytesToHash(b))
	}
	return tuple, nil
}

func copyAccessList(al types.AccessList) types.AccessList {
	cpy := make(types.AccessList, len(al))
	for i, tuple := range al {
		cpy[i] = types.AccessTuple{
			Address:     tuple.Address,
			StorageKeys: append([]common.Hash{}, tuple.StorageKeys...),
		}
	}
	return cpy
}

func accessListEqual(a, b types.AccessList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Address != b[i].Address || len(a[i].StorageKeys) != len(b[i].StorageKeys) {
			return false
		}
		for j := range a[i].StorageKeys {
			if a[i].StorageKeys[j] != b[i].StorageKeys[j] {
				return false
			}
		}
	}
	return true
}
