// Copyright 2025 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/sunyihoo/txenvelope/envelope"
	"github.com/urfave/cli/v2"
)

var (
	testKey, _ = crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	testTo     = common.HexToAddress("0x095e7baea6a6c7c4c2dfeb977efac326af552d87")
)

func signedTx(t *testing.T) *types.Transaction {
	t.Helper()
	signer := types.LatestSignerForChainID(big.NewInt(1))
	tx, err := types.SignNewTx(testKey, signer, &types.DynamicFeeTx{
		ChainID:    big.NewInt(1),
		Nonce:      3,
		GasTipCap:  big.NewInt(1_000_000_000),
		GasFeeCap:  big.NewInt(20_000_000_000),
		Gas:        21000,
		To:         &testTo,
		Value:      big.NewInt(1),
		Data:       []byte{0xde, 0xad},
		AccessList: types.AccessList{{Address: testTo, StorageKeys: []common.Hash{{1}}}},
	})
	require.NoError(t, err)
	return tx
}

func signedHex(t *testing.T) string {
	t.Helper()
	enc, err := signedTx(t).MarshalBinary()
	require.NoError(t, err)
	return hexutil.Encode(enc)
}

// runEnvtool runs the command line app with the given arguments, feeding
// stdin and returning stdout.
func runEnvtool(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"envtool", "--verbosity", "0"}, args...))
	return out.String(), err
}

func TestDecodeCommand(t *testing.T) {
	from := crypto.PubkeyToAddress(testKey.PublicKey)
	out, err := runEnvtool(t, "", "decode", "--from", from.Hex(), signedHex(t))
	require.NoError(t, err)

	var params map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &params))
	require.Equal(t, "0x02", params["type"])
	require.Equal(t, "0x3", params["nonce"])
	require.Equal(t, "0x5208", params["gas"])
	require.Equal(t, "0xdead", params["data"])
	require.Equal(t, strings.ToLower(testTo.Hex()), params["to"])
	require.Equal(t, strings.ToLower(from.Hex()), params["from"])
	require.Len(t, params["accessList"], 1)

	// Standard input works the same way.
	stdinOut, err := runEnvtool(t, signedHex(t)+"\n", "decode", "--from", from.Hex())
	require.NoError(t, err)
	require.Equal(t, out, stdinOut)
}

func TestDecodeCommandForeignType(t *testing.T) {
	legacy, err := types.SignNewTx(testKey, types.HomesteadSigner{}, &types.LegacyTx{
		Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000, To: &testTo,
	})
	require.NoError(t, err)
	enc, err := legacy.MarshalBinary()
	require.NoError(t, err)

	_, err = runEnvtool(t, "", "decode", hexutil.Encode(enc))
	require.ErrorIs(t, err, envelope.ErrTxTypeMismatch)
	require.Equal(t, 1, strings.Count(err.Error(), "not a dynamic fee transaction"), err.Error())

	// Map input with a foreign type is reported the same way.
	_, err = runEnvtool(t, `{"type":"0x1"}`, "encode")
	require.ErrorIs(t, err, envelope.ErrTxTypeMismatch)
	require.Equal(t, 1, strings.Count(err.Error(), "not a dynamic fee transaction"), err.Error())

	// Other soft failures carry the mismatch prefix.
	_, err = runEnvtool(t, `{"type":"0x2"}`, "encode")
	require.ErrorIs(t, err, envelope.ErrMissingField)
	require.ErrorContains(t, err, "input does not match a dynamic fee transaction")

	_, err = runEnvtool(t, "", "decode", "0xzz")
	require.ErrorContains(t, err, "invalid hex input")
}

func TestEncodeCommand(t *testing.T) {
	tx := signedTx(t)
	env, err := envelope.FromTransaction(tx)
	require.NoError(t, err)
	params, err := env.EncodeParams(nil)
	require.NoError(t, err)
	blob, err := json.Marshal(params)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "tx.json")
	require.NoError(t, os.WriteFile(file, blob, 0644))

	out, err := runEnvtool(t, "", "encode", file)
	require.NoError(t, err)
	want, _ := tx.MarshalBinary()
	require.Equal(t, hexutil.Encode(want), strings.TrimSpace(out))

	out, err = runEnvtool(t, string(blob), "encode", "--unsigned", "-")
	require.NoError(t, err)
	unsigned, err := env.EncodeWire(envelope.EncodeSignature)
	require.NoError(t, err)
	require.Equal(t, hexutil.Encode(unsigned), strings.TrimSpace(out))
}

func TestEncodeCommandValidate(t *testing.T) {
	params := `{"to":"0x","nonce":"0x0","value":"0x0","chainId":"0x1","data":"0x","v":"0x0","r":"0x0","s":"0x0",
		"maxFeePerGas":"0x1","maxPriorityFeePerGas":"0x2"}`
	_, err := runEnvtool(t, params, "encode")
	require.NoError(t, err, "validation failures only warn by default")

	_, err = runEnvtool(t, params, "encode", "--validate")
	require.ErrorIs(t, err, envelope.ErrTipAboveFeeCap)

	_, err = runEnvtool(t, strings.Replace(params, `"to":"0x"`, `"to":"0x1234"`, 1), "encode")
	require.ErrorIs(t, err, envelope.ErrInvalidDestination)
}

func TestHashCommand(t *testing.T) {
	tx := signedTx(t)
	out, err := runEnvtool(t, "", "hash", signedHex(t))
	require.NoError(t, err)

	var hashes map[string]common.Hash
	require.NoError(t, json.Unmarshal([]byte(out), &hashes))
	require.Equal(t, tx.Hash(), hashes["hash"])
	require.Equal(t, types.LatestSignerForChainID(big.NewInt(1)).Hash(tx), hashes["signingHash"])
}

func TestApplyCommand(t *testing.T) {
	config := `
[Overrides]
Nonce = "0x9"
MaxFeePerGas = "30000000000"
GasPrice = "1"
To = "0x"
`
	file := filepath.Join(t.TempDir(), "overrides.toml")
	require.NoError(t, os.WriteFile(file, []byte(config), 0644))

	out, err := runEnvtool(t, "", "apply", "--config", file, "--gas.margin", "10", "--tip", "5", signedHex(t))
	require.NoError(t, err)

	raw, err := hexutil.Decode(strings.TrimSpace(out))
	require.NoError(t, err)
	merged, err := envelope.DecodeWire(raw)
	require.NoError(t, err)

	orig, err := envelope.FromTransaction(signedTx(t))
	require.NoError(t, err)
	require.Equal(t, int64(9), merged.Nonce.Int64())
	require.Equal(t, int64(30_000_000_000), merged.MaxFeePerGas.Int64())
	require.Equal(t, int64(5), merged.MaxPriorityFeePerGas.Int64())
	require.Equal(t, int64(23100), merged.GasLimit.Int64())
	require.True(t, merged.To.IsContractDeployment())
	require.Zero(t, merged.ChainID.Cmp(orig.ChainID))
	require.Zero(t, merged.R.Cmp(orig.R))
	require.Zero(t, merged.S.Cmp(orig.S))
	require.Equal(t, orig.Data, merged.Data)
}

func TestApplyCommandExclusiveGas(t *testing.T) {
	_, err := runEnvtool(t, "", "apply", "--gas", "1", "--gas.cap", "2", signedHex(t))
	require.ErrorContains(t, err, "can't be used at the same time")
}

func TestDumpConfigRoundTrip(t *testing.T) {
	out, err := runEnvtool(t, "", "dumpconfig", "--nonce", "7", "--gas.cap", "50000", "--value", "0x10", "--to", testTo.Hex())
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "dump.toml")
	require.NoError(t, os.WriteFile(file, []byte(out), 0644))

	var cfg envtoolConfig
	require.NoError(t, loadConfig(file, &cfg))
	require.Equal(t, int64(7), cfg.Overrides.Nonce.Int64())
	require.Equal(t, int64(50000), cfg.Overrides.GasLimitCap.Int64())
	require.Equal(t, int64(16), cfg.Overrides.Value.Int64())
	require.Nil(t, cfg.Overrides.GasLimit)
	require.NotNil(t, cfg.Overrides.To)
	addr, ok := cfg.Overrides.To.Address()
	require.True(t, ok)
	require.Equal(t, testTo, addr)
}
