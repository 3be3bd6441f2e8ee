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

package version

import (
	"runtime/debug"
	"time"
)

// The go tool embeds VCS information into module builds.
// go 工具会在构建模块时嵌入 VCS 信息。
const (
	govcsTimeLayout = "2006-01-02T15:04:05Z" // Go VCS 时间格式，遵循 ISO 8601。
	ourTimeLayout   = "20060102"             // envtool 使用的日期格式，简化为 YYYYMMDD。
)

// These variables are set at build time through -ldflags -X, for release
// builds of envtool made outside a git checkout.
// 这些变量在构建时通过 -ldflags -X 设置，用于在 git 仓库之外构建 envtool 发布版本。
var gitCommit, gitDate string

// VCSInfo represents the git repository state the envtool binary was built from.
// VCSInfo 表示构建 envtool 二进制文件时 git 仓库的状态。
type VCSInfo struct {
	Commit string // head commit hash 头部提交哈希。
	Date   string // commit time in YYYYMMDD format 提交时间，格式为 YYYYMMDD。
	Dirty  bool   // 是否有未提交的更改。
}

// suffix renders the VCS state as a version suffix: the short commit hash,
// the commit date for non-stable builds, and "-dirty" for modified trees.
// suffix 将 VCS 状态渲染为版本后缀：短提交哈希、非 stable 版本的提交日期，以及工作区有修改时的 "-dirty"。
func (info VCSInfo) suffix(stable bool) string {
	var s string
	if len(info.Commit) >= 8 {
		s += "-" + info.Commit[:8]
	}
	if !stable && info.Date != "" {
		s += "-" + info.Date
	}
	if info.Dirty {
		s += "-dirty"
	}
	return s
}

// VCS returns version control information of the current executable.
// VCS 返回当前可执行文件的版本控制信息。
func VCS() (VCSInfo, bool) {
	if gitCommit != "" {
		// Linker-provided values win over the embedded build settings.
		// 链接器注入的值优先于嵌入的构建设置。
		return VCSInfo{Commit: gitCommit, Date: gitDate}, true
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if buildInfo.Main.Path == ourPath {
			return buildInfoVCS(buildInfo)
		}
	}
	return VCSInfo{}, false
}

// buildInfoVCS extracts the vcs.* settings of the build.
// buildInfoVCS 提取构建中的 vcs.* 设置。
func buildInfoVCS(info *debug.BuildInfo) (s VCSInfo, ok bool) {
	for _, v := range info.Settings {
		switch v.Key {
		case "vcs.revision":
			s.Commit = v.Value
		case "vcs.modified":
			s.Dirty = v.Value == "true" // 工作区存在未提交的更改。
		case "vcs.time":
			if t, err := time.Parse(govcsTimeLayout, v.Value); err == nil {
				s.Date = t.UTC().Format(ourTimeLayout)
			}
		}
	}
	// Both the hash and the date are needed to label a build.
	// 只有同时拿到提交哈希和日期才算有效。
	ok = s.Commit != "" && s.Date != ""
	return s, ok
}
