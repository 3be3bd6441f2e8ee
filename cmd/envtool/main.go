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

// envtool decodes, encodes, hashes and rewrites EIP-1559 transaction envelopes.
package main

import (
	"fmt"
	"os"

	"github.com/sunyihoo/txenvelope/internal/debug"
	"github.com/sunyihoo/txenvelope/internal/flags"
	"github.com/urfave/cli/v2"
)

var app = newApp()

func newApp() *cli.App {
	app := flags.NewApp("EIP-1559 transaction envelope tool")
	app.Flags = debug.Flags
	app.Before = func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
	app.Commands = []*cli.Command{
		decodeCommand,
		encodeCommand,
		hashCommand,
		applyCommand,
		dumpConfigCommand,
	}
	return app
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
