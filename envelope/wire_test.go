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
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/txenvelope/rlpitem"
)

var (
	testAddr  = common.HexToAddress("0x095e7baea6a6c7c4c2dfeb977efac326af552d87")
	testKey   = common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000001")
	testKey2  = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000ff")
	testOther = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func testEnvelope() *Envelope {
	return &Envelope{
		ChainID:              big.NewInt(1),
		Nonce:                big.NewInt(7),
		MaxPriorityFeePerGas: big.NewInt(2_000_000_000),
		MaxFeePerGas:         big.NewInt(30_000_000_000),
		GasLimit:             big.NewInt(21000),
		To:                   NewDestination(testAddr),
		Value:                big.NewInt(1_000_000_000_000_000_000),
		Data:                 common.FromHex("0xa9059cbb00ff"),
		AccessList: types.AccessList{
			{Address: testAddr, StorageKeys: []common.Hash{testKey, testKey2}},
			{Address: testOther, StorageKeys: []common.Hash{}},
		},
		V: big.NewInt(1),
		R: new(big.Int).SetBytes(common.FromHex("0x28ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276")),
		S: new(big.Int).SetBytes(common.FromHex("0x67cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83")),
	}
}

// zeroFields returns the 12 wire fields of an unsigned, empty transaction on chain 1.
func zeroFields() []rlpitem.Item {
	fields := make([]rlpitem.Item, fieldCount)
	fields[fieldChainID] = rlpitem.NewData([]byte{1})
	fields[fieldAccessList] = rlpitem.NewList()
	return fields
}

func encodeFields(t *testing.T, fields ...rlpitem.Item) []byte {
	t.Helper()
	enc, err := rlp.EncodeToBytes(rlpitem.NewList(fields...))
	if err != nil {
		t.Fatalf("failed to encode fields: %v", err)
	}
	return append([]byte{DynamicFeeTxType}, enc...)
}

func TestWireRoundTrip(t *testing.T) {
	envs := []*Envelope{
		testEnvelope(),
		{},
		{To: ContractDeployment(), Data: common.FromHex("0x6080604052"), ChainID: big.NewInt(11155111)},
		{ChainID: new(big.Int).Lsh(big.NewInt(1), 300), Nonce: new(big.Int).Lsh(big.NewInt(1), 70)},
	}
	for i, env := range envs {
		enc, err := env.MarshalBinary()
		require.NoError(t, err, "envelope %d", i)

		dec, err := DecodeWire(enc)
		require.NoError(t, err, "envelope %d", i)
		if !dec.Equal(env) {
			t.Errorf("envelope %d: round trip mismatch\nhave %s\nwant %s", i, spew.Sdump(dec), spew.Sdump(env))
		}
		reenc, err := dec.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, enc, reenc, "envelope %d: re-encoding differs", i)
	}
}

func TestWireDecodeExample(t *testing.T) {
	env, err := DecodeWire(encodeFields(t, zeroFields()...))
	require.NoError(t, err)
	require.True(t, env.To.IsContractDeployment())
	require.Zero(t, env.ChainID.Cmp(big.NewInt(1)))
	require.Zero(t, env.Value.Sign())
	require.Zero(t, env.GasLimit.Sign())
	require.NotNil(t, env.AccessList)
	require.Empty(t, env.AccessList)
	require.Empty(t, env.Data)
}

func TestWireTypeByte(t *testing.T) {
	for _, input := range [][]byte{nil, {}, {0x01, 0xc0}, {0x00}, {0x03}, {0xc0}} {
		if _, err := DecodeWire(input); !errors.Is(err, ErrTxTypeMismatch) {
			t.Errorf("input %x: expected ErrTxTypeMismatch, got %v", input, err)
		}
	}
	// A well-formed payload behind the wrong type byte is rejected as well.
	enc := encodeFields(t, zeroFields()...)
	enc[0] = types.AccessListTxType
	if _, err := DecodeWire(enc); !errors.Is(err, ErrTxTypeMismatch) {
		t.Fatalf("expected ErrTxTypeMismatch, got %v", err)
	}
}

func TestWireArity(t *testing.T) {
	for _, n := range []int{0, 1, 9, 11, 13, 20} {
		fields := make([]rlpitem.Item, n)
		if _, err := DecodeWire(encodeFields(t, fields...)); !errors.Is(err, ErrListArity) {
			t.Errorf("%d fields: expected ErrListArity, got %v", n, err)
		}
	}
	// A bare string instead of the field list.
	enc, _ := rlp.EncodeToBytes([]byte("not a list"))
	if _, err := DecodeWire(append([]byte{DynamicFeeTxType}, enc...)); !errors.Is(err, ErrListArity) {
		t.Fatalf("expected ErrListArity for string payload, got %v", err)
	}
}

func TestWireMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"truncated", []byte{DynamicFeeTxType}},
		{"bad rlp", []byte{DynamicFeeTxType, 0xc5, 0x01}},
		{"trailing bytes", append(encodeFields(t, zeroFields()...), 0x80)},
	}
	for _, test := range tests {
		if _, err := DecodeWire(test.input); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", test.name, err)
		}
	}
	// Integer and data positions must hold strings.
	for _, pos := range []int{fieldChainID, fieldNonce, fieldMaxPriorityFeePerGas, fieldMaxFeePerGas, fieldGasLimit, fieldValue, fieldData, fieldV, fieldR, fieldS} {
		fields := zeroFields()
		fields[pos] = rlpitem.NewList()
		if _, err := DecodeWire(encodeFields(t, fields...)); !errors.Is(err, ErrMalformed) {
			t.Errorf("list at field %d: expected ErrMalformed, got %v", pos, err)
		}
	}
}

func TestWireDestination(t *testing.T) {
	tests := []struct {
		item   rlpitem.Item
		deploy bool
		err    error
	}{
		{item: rlpitem.NewData(nil), deploy: true},
		{item: rlpitem.NewData(testAddr[:])},
		{item: rlpitem.NewData(testAddr[:19]), err: ErrDestinationSize},
		{item: rlpitem.NewData(append(testAddr[:], 0x00)), err: ErrDestinationSize},
		{item: rlpitem.NewData([]byte{0x01}), err: ErrDestinationSize},
		{item: rlpitem.NewList(), err: ErrMalformed},
	}
	for i, test := range tests {
		fields := zeroFields()
		fields[fieldDestination] = test.item
		env, err := DecodeWire(encodeFields(t, fields...))
		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("test %d: expected %v, got %v", i, test.err, err)
			}
			continue
		}
		require.NoError(t, err, "test %d", i)
		require.Equal(t, test.deploy, env.To.IsContractDeployment(), "test %d", i)
		if !test.deploy {
			addr, ok := env.To.Address()
			require.True(t, ok)
			require.Equal(t, testAddr, addr)
		}
	}
}

func TestWireAccessList(t *testing.T) {
	entry := func(addr []byte, keys ...[]byte) rlpitem.Item {
		items := make([]rlpitem.Item, len(keys))
		for i, k := range keys {
			items[i] = rlpitem.NewData(k)
		}
		return rlpitem.NewList(rlpitem.NewData(addr), rlpitem.NewList(items...))
	}
	t.Run("absent", func(t *testing.T) {
		fields := zeroFields()
		fields[fieldAccessList] = rlpitem.NewData(nil)
		env, err := DecodeWire(encodeFields(t, fields...))
		require.NoError(t, err)
		require.NotNil(t, env.AccessList)
		require.Empty(t, env.AccessList)
	})
	t.Run("populated", func(t *testing.T) {
		fields := zeroFields()
		fields[fieldAccessList] = rlpitem.NewList(
			entry(testOther[:]),
			entry(testAddr[:], testKey[:], testKey2[:]),
		)
		env, err := DecodeWire(encodeFields(t, fields...))
		require.NoError(t, err)
		require.Len(t, env.AccessList, 2)
		require.Equal(t, testOther, env.AccessList[0].Address)
		require.Empty(t, env.AccessList[0].StorageKeys)
		require.Equal(t, testAddr, env.AccessList[1].Address)
		require.Equal(t, []common.Hash{testKey, testKey2}, env.AccessList[1].StorageKeys)
	})
	malformed := map[string]rlpitem.Item{
		"string field":     rlpitem.NewData([]byte{0x01}),
		"short address":    rlpitem.NewList(entry(testAddr[:19])),
		"empty address":    rlpitem.NewList(entry(nil)),
		"short key":        rlpitem.NewList(entry(testAddr[:], testKey[1:])),
		"one element":      rlpitem.NewList(rlpitem.NewList(rlpitem.NewData(testAddr[:]))),
		"keys not a list":  rlpitem.NewList(rlpitem.NewList(rlpitem.NewData(testAddr[:]), rlpitem.NewData([]byte{1}))),
		"entry not a list": rlpitem.NewList(rlpitem.NewData(testAddr[:])),
		"one bad of two":   rlpitem.NewList(entry(testAddr[:]), entry(testAddr[:2])),
	}
	for name, item := range malformed {
		fields := zeroFields()
		fields[fieldAccessList] = item
		_, err := DecodeWire(encodeFields(t, fields...))
		if !errors.Is(err, ErrMalformed) || !errors.Is(err, ErrInvalidAccess) {
			t.Errorf("%s: expected access list error, got %v", name, err)
		}
	}
}

func TestWireZeroStripping(t *testing.T) {
	env := &Envelope{To: NewDestination(testAddr)}
	enc, err := env.EncodeWire(EncodeFull)
	require.NoError(t, err)

	item, err := rlpitem.Parse(enc[1:])
	require.NoError(t, err)
	for _, pos := range []int{fieldChainID, fieldNonce, fieldMaxPriorityFeePerGas, fieldMaxFeePerGas, fieldGasLimit, fieldValue, fieldV, fieldR, fieldS} {
		field, ok := item.At(pos)
		require.True(t, ok)
		if field.Kind() != rlpitem.Absent {
			t.Errorf("field %d: zero must encode as the empty string, got %v (%x)", pos, field.Kind(), field.Bytes())
		}
	}
	// Leading zero bytes are never emitted.
	env.Nonce = big.NewInt(0x0100)
	enc, err = env.EncodeWire(EncodeFull)
	require.NoError(t, err)
	item, _ = rlpitem.Parse(enc[1:])
	nonce, _ := item.At(fieldNonce)
	require.Equal(t, []byte{0x01, 0x00}, nonce.Bytes())
}

func TestWireEncodeModes(t *testing.T) {
	env := testEnvelope()
	full, err := env.EncodeWire(EncodeFull)
	require.NoError(t, err)
	sig, err := env.EncodeWire(EncodeSignature)
	require.NoError(t, err)
	require.Equal(t, DynamicFeeTxType, full[0])
	require.Equal(t, DynamicFeeTxType, sig[0])

	fullItem, err := rlpitem.Parse(full[1:])
	require.NoError(t, err)
	sigItem, err := rlpitem.Parse(sig[1:])
	require.NoError(t, err)
	require.Equal(t, fieldCount, fullItem.Len())
	require.Equal(t, signatureFieldCount, sigItem.Len())

	// The signature payload is the prefix of the full field list.
	for i := 0; i < signatureFieldCount; i++ {
		a, _ := fullItem.At(i)
		b, _ := sigItem.At(i)
		ea, _ := rlp.EncodeToBytes(a)
		eb, _ := rlp.EncodeToBytes(b)
		if !bytes.Equal(ea, eb) {
			t.Errorf("field %d differs between modes: %x != %x", i, ea, eb)
		}
	}
	// Signature values do not influence the signing payload.
	unsigned, err := env.WithSignatureValues(nil, nil, nil).EncodeWire(EncodeSignature)
	require.NoError(t, err)
	require.Equal(t, sig, unsigned)

	if _, err := env.EncodeWire(EncodeMode(9)); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestWireNegativeValue(t *testing.T) {
	env := testEnvelope()
	env.Value = big.NewInt(-1)
	if _, err := env.MarshalBinary(); err == nil {
		t.Fatal("expected encoding of a negative value to fail")
	}
}

func TestUnmarshalBinary(t *testing.T) {
	enc, err := testEnvelope().MarshalBinary()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, env.UnmarshalBinary(enc))
	require.True(t, env.Equal(testEnvelope()))
	require.ErrorIs(t, env.UnmarshalBinary([]byte{0x01}), ErrTxTypeMismatch)
}

// TestGethCompatibility checks the codec against go-ethereum's own encoding of
// signed dynamic fee transactions.
func TestGethCompatibility(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	chainID := big.NewInt(1337)
	signer := types.LatestSignerForChainID(chainID)

	inners := []*types.DynamicFeeTx{
		{
			ChainID: chainID, Nonce: 3, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(100), Gas: 50000,
			To: &testAddr, Value: big.NewInt(12345), Data: common.FromHex("0xdeadbeef"),
			AccessList: types.AccessList{{Address: testOther, StorageKeys: []common.Hash{testKey}}},
		},
		{
			ChainID: chainID, Nonce: 0, GasTipCap: big.NewInt(0), GasFeeCap: big.NewInt(0), Gas: 1_000_000,
			Value: big.NewInt(0), Data: common.FromHex("0x6080604052"),
		},
	}
	for i, inner := range inners {
		tx, err := types.SignNewTx(key, signer, inner)
		require.NoError(t, err, "tx %d", i)
		want, err := tx.MarshalBinary()
		require.NoError(t, err)

		env, err := DecodeWire(want)
		require.NoError(t, err, "tx %d", i)
		have, err := env.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, want, have, "tx %d: encoding differs from go-ethereum", i)

		hash, err := env.Hash()
		require.NoError(t, err)
		require.Equal(t, tx.Hash(), hash, "tx %d: hash", i)

		sigHash, err := env.SigningHash()
		require.NoError(t, err)
		require.Equal(t, signer.Hash(tx), sigHash, "tx %d: signing hash", i)

		require.Equal(t, inner.To == nil, env.To.IsContractDeployment())
		require.NoError(t, env.Validate())

		conv, err := FromTransaction(tx)
		require.NoError(t, err)
		require.True(t, conv.Equal(env), "tx %d: FromTransaction mismatch", i)

		back, err := env.ToTransaction()
		require.NoError(t, err)
		require.Equal(t, tx.Hash(), back.Hash())

		sender, err := types.Sender(signer, back)
		require.NoError(t, err)
		require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), sender)
	}
}

func TestFromTransactionType(t *testing.T) {
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000, To: &testAddr, Value: big.NewInt(1)})
	if _, err := FromTransaction(tx); !errors.Is(err, ErrTxTypeMismatch) {
		t.Fatalf("expected ErrTxTypeMismatch, got %v", err)
	}
}

func TestToTransactionBounds(t *testing.T) {
	env := testEnvelope()
	env.Nonce = new(big.Int).Lsh(big.NewInt(1), 64)
	if _, err := env.ToTransaction(); !errors.Is(err, ErrUint64Overflow) {
		t.Fatalf("expected ErrUint64Overflow, got %v", err)
	}
}
