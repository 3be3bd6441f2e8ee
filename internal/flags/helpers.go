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

package flags

import (
	"fmt"
	"strings"

	"github.com/sunyihoo/txenvelope/internal/version"
	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
func NewApp(usage string) *cli.App {
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = version.Full()
	app.Usage = usage
	app.Copyright = "Copyright 2025 The go-ethereum Authors"
	return app
}

// CheckExclusive verifies that only a single instance of the provided flags was
// set by the user. Each flag might optionally be followed by a string type to
// specialize it further.
//
// CheckExclusive 检查给定的互斥标志中至多只有一个被设置。
func CheckExclusive(ctx *cli.Context, args ...cli.Flag) error {
	var set []string
	for _, flag := range args {
		name := flag.Names()[0]
		if ctx.IsSet(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("flags %v can't be used at the same time", strings.Join(set, ", "))
	}
	return nil
}
