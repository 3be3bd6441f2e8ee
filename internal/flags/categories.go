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

import "github.com/urfave/cli/v2"

// EnvelopeCategory：与交易信封编解码相关的标志，例如输入格式、是否只编码签名载荷。
// OverrideCategory：签名前覆盖交易字段的标志（nonce、gas、费用等），对应 envelope.Options。

const (
	// EnvelopeCategory 是与交易信封编解码相关的标志的类别。
	EnvelopeCategory = "ENVELOPE"
	// OverrideCategory 是与签名前字段覆盖相关的标志的类别。
	OverrideCategory = "FIELD OVERRIDES"
	// LoggingCategory 是与 Logging and Debugging 相关的标志的类别。
	LoggingCategory = "LOGGING AND DEBUGGING"
	// MiscCategory 是与 Miscellaneous 相关的标志的类别。
	MiscCategory = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}
