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

// Package debug configures the logger of the envtool command from its flags.
package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sunyihoo/txenvelope/internal/flags"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	VerbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		// 日志详细级别：0=静默，1=错误，2=警告，3=信息，4=调试，5=详细。
		Value:    3,
		Category: flags.LoggingCategory,
	}
	logVmoduleFlag = &cli.StringFlag{
		Name:     "log.vmodule",
		Usage:    "Per-module verbosity: comma-separated list of <pattern>=<level> (e.g. envelope/*=5)",
		Category: flags.LoggingCategory,
	}
	LogFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format to use (json|logfmt|terminal)",
		Category: flags.LoggingCategory,
	}
	logFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file",
		Category: flags.LoggingCategory,
	}
	logRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables log file rotation",
		Category: flags.LoggingCategory,
	}
	logMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: flags.LoggingCategory,
	}
	logMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: flags.LoggingCategory,
	}
	logMaxAgeFlag = &cli.IntFlag{
		Name:     "log.maxage",
		Usage:    "Maximum number of days to retain a log file",
		Value:    30,
		Category: flags.LoggingCategory,
	}
	logCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress the log files",
		Category: flags.LoggingCategory,
	}
)

// Flags holds all command-line flags required for logging.
// Flags 包含所有日志相关的命令行标志。
var Flags = []cli.Flag{
	VerbosityFlag,
	logVmoduleFlag,
	LogFormatFlag,
	logFileFlag,
	logRotateFlag,
	logMaxSizeMBsFlag,
	logMaxBackupsFlag,
	logMaxAgeFlag,
	logCompressFlag,
}

var (
	glogger       *log.GlogHandler
	logOutputFile io.WriteCloser
)

func init() {
	glogger = log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, false))
}

// Setup initializes logging based on the CLI flags. Logs always go to
// stderr so that command output on stdout stays machine readable.
// It should be called as early as possible in the program.
//
// Setup 根据 CLI 标志初始化日志。日志总是写到 stderr，stdout 只留给命令输出。
func Setup(ctx *cli.Context) error {
	var (
		handler        slog.Handler
		terminalOutput = io.Writer(os.Stderr)
		output         io.Writer
		logFmtFlag     = ctx.String(LogFormatFlag.Name)
		logFile        = ctx.String(logFileFlag.Name)
		rotation       = ctx.Bool(logRotateFlag.Name)
	)
	if len(logFile) > 0 {
		logFile = flags.ExpandPath(logFile)
		if err := validateLogLocation(filepath.Dir(logFile)); err != nil {
			return fmt.Errorf("failed to initialize file logger: %v", err)
		}
	}
	context := []interface{}{"rotate", rotation}
	if len(logFmtFlag) > 0 {
		context = append(context, "format", logFmtFlag)
	} else {
		context = append(context, "format", "terminal")
	}
	switch {
	case rotation:
		// 如果为空，则 Lumberjack 使用 os.TempDir() 中的 <进程名>-lumberjack.log 文件。
		if len(logFile) > 0 {
			context = append(context, "location", logFile)
		} else {
			context = append(context, "location", filepath.Join(os.TempDir(), "envtool-lumberjack.log"))
		}
		logOutputFile = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    ctx.Int(logMaxSizeMBsFlag.Name),
			MaxBackups: ctx.Int(logMaxBackupsFlag.Name),
			MaxAge:     ctx.Int(logMaxAgeFlag.Name),
			Compress:   ctx.Bool(logCompressFlag.Name),
		}
		output = io.MultiWriter(terminalOutput, logOutputFile)
	case logFile != "":
		var err error
		if logOutputFile, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err != nil {
			return err
		}
		output = io.MultiWriter(logOutputFile, terminalOutput)
		context = append(context, "location", logFile)
	default:
		output = terminalOutput
	}

	switch logFmtFlag {
	case "json":
		handler = log.JSONHandler(output)
	case "logfmt":
		handler = log.LogfmtHandler(output)
	case "", "terminal":
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			terminalOutput = colorable.NewColorableStderr()
			if logOutputFile != nil {
				output = io.MultiWriter(logOutputFile, terminalOutput)
			} else {
				output = terminalOutput
			}
		}
		handler = log.NewTerminalHandler(output, useColor)
	default:
		// 指定了未知的日志格式。
		return fmt.Errorf("unknown log format: %v", logFmtFlag)
	}

	glogger = log.NewGlogHandler(handler)
	glogger.Verbosity(log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name)))
	if err := glogger.Vmodule(ctx.String(logVmoduleFlag.Name)); err != nil {
		return fmt.Errorf("invalid --%s: %v", logVmoduleFlag.Name, err)
	}
	log.SetDefault(log.NewLogger(glogger))

	if len(logFile) > 0 || rotation {
		log.Info("Logging configured", context...)
	}
	return nil
}

// Exit flushes and closes the log file, if any.
// Exit 关闭日志文件。
func Exit() {
	if logOutputFile != nil {
		logOutputFile.Close()
		logOutputFile = nil
	}
}

// validateLogLocation checks if the log directory is valid and writable.
// validateLogLocation 检查日志目录是否有效且可写。
func validateLogLocation(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("error creating the directory: %w", err)
	}
	// 通过尝试创建临时文件来检查路径是否可写。
	tmp := filepath.Join(path, "tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(tmp)
}
