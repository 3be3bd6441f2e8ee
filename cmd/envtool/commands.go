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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/sunyihoo/txenvelope/envelope"
	"github.com/sunyihoo/txenvelope/internal/flags"
	"github.com/urfave/cli/v2"
)

var (
	fromFlag = &cli.StringFlag{
		Name:     "from",
		Usage:    "Sender address to include in the decoded output",
		Category: flags.EnvelopeCategory,
	}
	validateFlag = &cli.BoolFlag{
		Name:     "validate",
		Usage:    "Reject envelopes that an Ethereum node would not accept",
		Category: flags.EnvelopeCategory,
	}
	unsignedFlag = &cli.BoolFlag{
		Name:     "unsigned",
		Usage:    "Emit the signing payload (without v, r, s) instead of the full envelope",
		Category: flags.EnvelopeCategory,
	}
)

var (
	decodeCommand = &cli.Command{
		Action:    decode,
		Name:      "decode",
		Usage:     "Decode a binary envelope into its JSON parameter form",
		ArgsUsage: "<hex|->",
		Flags:     []cli.Flag{fromFlag, validateFlag},
		Description: `
The decode command reads a type 0x02 envelope in hex, either from the argument
or from standard input, and prints the JSON parameter map.`,
	}
	encodeCommand = &cli.Command{
		Action:    encode,
		Name:      "encode",
		Usage:     "Encode a JSON parameter map into a binary envelope",
		ArgsUsage: "<file|->",
		Flags:     []cli.Flag{unsignedFlag, validateFlag},
		Description: `
The encode command reads a JSON parameter map from the given file or standard
input and prints the hex encoded envelope. With --unsigned only the nine
signing fields are encoded.`,
	}
	hashCommand = &cli.Command{
		Action:    hash,
		Name:      "hash",
		Usage:     "Print the transaction hash and signing hash of an envelope",
		ArgsUsage: "<hex|->",
	}
	applyCommand = &cli.Command{
		Action:    apply,
		Name:      "apply",
		Usage:     "Merge field overrides into an envelope",
		ArgsUsage: "<hex|->",
		Flags:     append([]cli.Flag{unsignedFlag}, overrideFlags...),
		Description: `
The apply command merges overrides from the TOML configuration file and the
command line flags into the envelope and prints the result. Chain id and
signature values are never changed, so a signed envelope whose fields change
no longer carries a valid signature.`,
	}
	dumpConfigCommand = &cli.Command{
		Action:    dumpConfig,
		Name:      "dumpconfig",
		Usage:     "Export the effective override configuration as TOML",
		ArgsUsage: "",
		Flags:     overrideFlags,
	}
)

func decode(ctx *cli.Context) error {
	env, err := readEnvelope(ctx)
	if err != nil {
		return err
	}
	if err := checkValid(ctx, env); err != nil {
		return err
	}
	var from *common.Address
	if ctx.IsSet(fromFlag.Name) {
		s := ctx.String(fromFlag.Name)
		if !common.IsHexAddress(s) {
			return fmt.Errorf("invalid --%s: %q", fromFlag.Name, s)
		}
		addr := common.HexToAddress(s)
		from = &addr
	}
	params, err := env.EncodeParams(from)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}
	return writeLine(ctx, string(out))
}

func encode(ctx *cli.Context) error {
	input, err := readInput(ctx, true)
	if err != nil {
		return err
	}
	var params envelope.Params
	if err := json.Unmarshal(input, &params); err != nil {
		return fmt.Errorf("invalid JSON input: %v", err)
	}
	env, err := envelope.DecodeParams(params)
	if err != nil {
		return describe(err)
	}
	if err := checkValid(ctx, env); err != nil {
		return err
	}
	return writeEnvelope(ctx, env)
}

func hash(ctx *cli.Context) error {
	env, err := readEnvelope(ctx)
	if err != nil {
		return err
	}
	txHash, err := env.Hash()
	if err != nil {
		return err
	}
	sigHash, err := env.SigningHash()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(map[string]common.Hash{"hash": txHash, "signingHash": sigHash}, "", "  ")
	if err != nil {
		return err
	}
	return writeLine(ctx, string(out))
}

func apply(ctx *cli.Context) error {
	env, err := readEnvelope(ctx)
	if err != nil {
		return err
	}
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	opts, err := cfg.Overrides.Options()
	if err != nil {
		return err
	}
	log.Debug("Applying overrides", "options", opts)

	merged := envelope.ApplyOptions(env, opts)
	if env.Signed() && !merged.Equal(env) {
		log.Warn("Overrides changed a signed envelope, signature is no longer valid")
	}
	return writeEnvelope(ctx, merged)
}

// readEnvelope decodes the hex envelope given as argument or on stdin.
func readEnvelope(ctx *cli.Context) (*envelope.Envelope, error) {
	input, err := readInput(ctx, false)
	if err != nil {
		return nil, err
	}
	raw, err := decodeHex(string(input))
	if err != nil {
		return nil, err
	}
	env, err := envelope.DecodeWire(raw)
	if err != nil {
		return nil, describe(err)
	}
	log.Debug("Decoded envelope", "size", len(raw), "signed", env.Signed(), "to", env.To)
	return env, nil
}

// readInput returns the command argument itself, or the contents of the
// named file if file is set. A missing argument or "-" reads standard input.
func readInput(ctx *cli.Context, file bool) ([]byte, error) {
	if ctx.NArg() > 1 {
		return nil, fmt.Errorf("too many arguments: %v", ctx.Args().Slice())
	}
	arg := ctx.Args().First()
	switch {
	case arg == "" || arg == "-":
		return io.ReadAll(ctx.App.Reader)
	case file:
		return os.ReadFile(flags.ExpandPath(arg))
	default:
		return []byte(arg), nil
	}
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %v", err)
	}
	return b, nil
}

func checkValid(ctx *cli.Context, env *envelope.Envelope) error {
	err := env.Validate()
	if err == nil {
		return nil
	}
	if ctx.Bool(validateFlag.Name) {
		return err
	}
	log.Warn("Envelope would be rejected by a node", "err", err)
	return nil
}

func writeEnvelope(ctx *cli.Context, env *envelope.Envelope) error {
	mode := envelope.EncodeFull
	if ctx.Bool(unsignedFlag.Name) {
		mode = envelope.EncodeSignature
	}
	enc, err := env.EncodeWire(mode)
	if err != nil {
		return err
	}
	log.Debug("Encoded envelope", "mode", mode, "size", len(enc))
	return writeLine(ctx, hexutil.Encode(enc))
}

func writeLine(ctx *cli.Context, s string) error {
	_, err := fmt.Fprintln(ctx.App.Writer, s)
	return err
}

// describe prefixes soft decoding failures so users can tell a foreign
// transaction type from a broken destination. The type mismatch error already
// reads as a complete message and is returned unchanged.
func describe(err error) error {
	if errors.Is(err, envelope.ErrTxTypeMismatch) {
		return err
	}
	if envelope.IsMismatch(err) {
		return fmt.Errorf("input does not match a dynamic fee transaction: %w", err)
	}
	return err
}
