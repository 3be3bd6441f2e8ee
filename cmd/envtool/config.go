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
	"bufio"
	"errors"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
	"github.com/sunyihoo/txenvelope/envelope"
	"github.com/sunyihoo/txenvelope/internal/flags"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file with field overrides",
		Category: flags.OverrideCategory,
	}
	nonceFlag = &flags.BigFlag{
		Name:     "nonce",
		Usage:    "Nonce to set on the transaction",
		Category: flags.OverrideCategory,
	}
	gasFlag = &flags.BigFlag{
		Name:     "gas",
		Usage:    "Gas limit to set on the transaction",
		Category: flags.OverrideCategory,
	}
	gasCapFlag = &flags.BigFlag{
		Name:     "gas.cap",
		Usage:    "Upper bound for the transaction's current gas limit",
		Category: flags.OverrideCategory,
	}
	gasMarginFlag = &cli.Uint64Flag{
		Name:     "gas.margin",
		Usage:    "Raise the transaction's current gas limit by this many percent",
		Category: flags.OverrideCategory,
	}
	maxFeeFlag = &flags.BigFlag{
		Name:     "maxfee",
		Usage:    "Fee cap per gas (maxFeePerGas) in wei",
		Category: flags.OverrideCategory,
	}
	tipFlag = &flags.BigFlag{
		Name:     "tip",
		Usage:    "Priority fee per gas (maxPriorityFeePerGas) in wei",
		Category: flags.OverrideCategory,
	}
	valueFlag = &flags.BigFlag{
		Name:     "value",
		Usage:    "Value to transfer in wei",
		Category: flags.OverrideCategory,
	}
	toFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Recipient address, 0x for contract deployment",
		Category: flags.OverrideCategory,
	}

	overrideFlags = []cli.Flag{
		configFileFlag,
		nonceFlag,
		gasFlag,
		gasCapFlag,
		gasMarginFlag,
		maxFeeFlag,
		tipFlag,
		valueFlag,
		toFlag,
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		if deprecatedConfigFields[id] {
			log.Warn(fmt.Sprintf("Config field '%s' is deprecated and won't have any effect.", id))
			return nil
		}
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Legacy pricing fields have no meaning for dynamic fee transactions.
var deprecatedConfigFields = map[string]bool{
	"main.overrideConfig.GasPrice": true,
	"main.overrideConfig.GasTip":   true,
}

// overrideConfig lists the fields merged into a transaction before signing.
// Unset fields keep the transaction's current values.
//
// overrideConfig 列出签名前合并到交易中的字段；未设置的字段保留交易当前值。
type overrideConfig struct {
	Nonce                *big.Int              `toml:",omitempty"`
	GasLimit             *big.Int              `toml:",omitempty"`
	GasLimitCap          *big.Int              `toml:",omitempty"`
	GasMarginPercent     uint64                `toml:",omitempty"`
	MaxFeePerGas         *big.Int              `toml:",omitempty"`
	MaxPriorityFeePerGas *big.Int              `toml:",omitempty"`
	Value                *big.Int              `toml:",omitempty"`
	To                   *envelope.Destination `toml:",omitempty"`
	AccessList           types.AccessList      `toml:",omitempty"`
}

type envtoolConfig struct {
	Overrides overrideConfig
}

func loadConfig(file string, cfg *envtoolConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// loadBaseConfig loads the configuration file, if any, and applies the
// command line flags on top of it.
func loadBaseConfig(ctx *cli.Context) (envtoolConfig, error) {
	var cfg envtoolConfig
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(flags.ExpandPath(file), &cfg); err != nil {
			return cfg, err
		}
	}
	if err := setOverrideConfig(ctx, &cfg.Overrides); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setOverrideConfig applies the override flags to the configuration.
func setOverrideConfig(ctx *cli.Context, cfg *overrideConfig) error {
	if err := flags.CheckExclusive(ctx, gasFlag, gasCapFlag, gasMarginFlag); err != nil {
		return err
	}
	if ctx.IsSet(nonceFlag.Name) {
		cfg.Nonce = flags.GlobalBig(ctx, nonceFlag.Name)
	}
	// A gas flag replaces whatever gas policy the file configured.
	switch {
	case ctx.IsSet(gasFlag.Name):
		cfg.GasLimit, cfg.GasLimitCap, cfg.GasMarginPercent = flags.GlobalBig(ctx, gasFlag.Name), nil, 0
	case ctx.IsSet(gasCapFlag.Name):
		cfg.GasLimit, cfg.GasLimitCap, cfg.GasMarginPercent = nil, flags.GlobalBig(ctx, gasCapFlag.Name), 0
	case ctx.IsSet(gasMarginFlag.Name):
		cfg.GasLimit, cfg.GasLimitCap, cfg.GasMarginPercent = nil, nil, ctx.Uint64(gasMarginFlag.Name)
	}
	if ctx.IsSet(maxFeeFlag.Name) {
		cfg.MaxFeePerGas = flags.GlobalBig(ctx, maxFeeFlag.Name)
	}
	if ctx.IsSet(tipFlag.Name) {
		cfg.MaxPriorityFeePerGas = flags.GlobalBig(ctx, tipFlag.Name)
	}
	if ctx.IsSet(valueFlag.Name) {
		cfg.Value = flags.GlobalBig(ctx, valueFlag.Name)
	}
	if ctx.IsSet(toFlag.Name) {
		to, err := envelope.ParseDestination(ctx.String(toFlag.Name))
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", toFlag.Name, err)
		}
		cfg.To = &to
	}
	return nil
}

// Options converts the configuration into an envelope overlay.
func (cfg *overrideConfig) Options() (*envelope.Options, error) {
	var gasPolicies int
	for _, set := range []bool{cfg.GasLimit != nil, cfg.GasLimitCap != nil, cfg.GasMarginPercent != 0} {
		if set {
			gasPolicies++
		}
	}
	if gasPolicies > 1 {
		return nil, errors.New("only one of GasLimit, GasLimitCap and GasMarginPercent may be set")
	}
	opts := &envelope.Options{
		Value: cfg.Value,
		To:    cfg.To,
	}
	if cfg.AccessList != nil {
		al := cfg.AccessList
		opts.AccessList = &al
	}
	if cfg.Nonce != nil {
		opts.Nonce = envelope.ManualNonce(cfg.Nonce)
	}
	switch {
	case cfg.GasLimit != nil:
		opts.GasLimit = envelope.ManualGasLimit(cfg.GasLimit)
	case cfg.GasLimitCap != nil:
		opts.GasLimit = envelope.LimitedGasLimit(cfg.GasLimitCap)
	case cfg.GasMarginPercent != 0:
		opts.GasLimit = envelope.GasLimitWithMargin(cfg.GasMarginPercent)
	}
	if cfg.MaxFeePerGas != nil {
		opts.MaxFeePerGas = envelope.ManualFee(cfg.MaxFeePerGas)
	}
	if cfg.MaxPriorityFeePerGas != nil {
		opts.MaxPriorityFeePerGas = envelope.ManualFee(cfg.MaxPriorityFeePerGas)
	}
	return opts, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	if _, err := cfg.Overrides.Options(); err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}
