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

// Package version implements reading of build version information.
package version

import (
	"fmt"

	"github.com/sunyihoo/txenvelope/version"
)

const ourPath = "github.com/sunyihoo/txenvelope" // Path to our module

// Semantic holds the textual version string for major.minor.patch.
var Semantic = fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)

// WithMeta holds the textual version string including the metadata.
var WithMeta = func() string {
	v := Semantic
	if version.Meta != "" {
		v += "-" + version.Meta
	}
	return v
}()

// WithCommit appends the first eight characters of the commit hash and, for
// non-stable builds, the commit date to the version string.
//
// WithCommit 在版本字符串后附加提交哈希前 8 位，非 stable 版本再附加提交日期。
func WithCommit(gitCommit, gitDate string) string {
	return WithMeta + VCSInfo{Commit: gitCommit, Date: gitDate}.suffix(version.Meta == "stable")
}

// Full returns the version string of the running binary, including VCS
// information when the build embedded it. Builds from a modified tree are
// marked "-dirty".
func Full() string {
	if info, ok := VCS(); ok {
		return WithMeta + info.suffix(version.Meta == "stable")
	}
	return WithMeta
}
