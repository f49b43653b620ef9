// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/rusq/tracer"

	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/cfg"
	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/golang/base"
	"github.com/rusq/parquetmcp/internal/primitive"
)

// initLog returns the logger for the command.  Messages go to filename if it
// is not empty, otherwise to stderr, or nowhere if the command owns the
// standard streams.  The default slog logger is replaced only if messages
// are written somewhere.  The log file is closed at exit.
func initLog(cmd *base.Command, filename string, jsonHandler bool, verbose bool) (*slog.Logger, error) {
	lvl := primitive.IfTrue(verbose, slog.LevelDebug, slog.LevelInfo)
	if verbose {
		cfg.SetDebugLevel()
	}
	var w io.Writer = os.Stderr
	switch {
	case filename != "":
		lf, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o666)
		if err != nil {
			return slog.Default(), fmt.Errorf("failed to create the log file: %w", err)
		}
		log.SetOutput(lf) // panics will be logged there.
		base.AtExit(func() {
			if err := lf.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close the log file: %s\n", err)
			}
		})
		w = lf
	case cmd.Stdio:
		return slog.New(slog.DiscardHandler), nil
	case !jsonHandler:
		// the default text logger writes to stderr already.
		return slog.Default(), nil
	}
	lg := newLogger(w, jsonHandler, lvl)
	slog.SetDefault(lg)
	lg.Debug("logging initialised", "command", cmd.Name(), "file", filename, "json", jsonHandler)
	return lg, nil
}

// newLogger returns the logger writing to w in JSON or text format.
func newLogger(w io.Writer, jsonHandler bool, lvl slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	if jsonHandler {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// initTrace initialises the tracing.  If the filename is not empty, the file
// will be opened, trace will write to that file.  Returns the stop function
// that must be called in the deferred call.
func initTrace(filename string) (stop func()) {
	stop = func() {}
	if filename == "" {
		return
	}

	slog.Debug("trace will be written to", "filename", filename)

	trc := tracer.New(filename)
	if err := trc.Start(); err != nil {
		slog.Warn("failed to start the trace", "filename", filename, "error", err)
		return
	}

	stop = func() {
		if err := trc.End(); err != nil {
			slog.Warn("failed to write the trace file", "filename", filename, "error", err)
		}
	}
	return
}
