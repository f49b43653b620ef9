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
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/trace"

	"github.com/joho/godotenv"

	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/cfg"
	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/convertcmd"
	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/golang/base"
	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/golang/help"
	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/mcp"
)

// secrets defines the names of the supported secret files that we load our
// secrets from.  Inexperienced windows users might have bad experience trying
// to create .env file with the notepad as it will battle for having the
// "txt" extension.  Let it have it.
var secrets = []string{".env", ".env.txt", "secrets.txt"}

var errUnknownCommand = errors.New("unknown command")

func init() {
	base.Parquetmcp.Commands = []*base.Command{
		convertcmd.CmdConvert,
		mcp.CmdMCP,
		CmdVersion,
	}
}

func main() {
	base.Usage = mainUsage
	flag.Usage = mainUsage
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		base.Usage()
	}

	loadSecrets(secrets)
	cfg.Version = version

	if args[0] == "help" {
		if err := help.Help(os.Stdout, args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			base.SetExitStatus(base.SInvalidParameters)
		}
		base.Exit()
		return
	}

	cmd, err := findCommand(base.Parquetmcp, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %s\nRun '%s help' for usage.\n", base.CmdName, args[0], err, base.CmdName)
		base.SetExitStatus(base.SInvalidParameters)
		base.Exit()
	}

	if err := invoke(cmd, args); err != nil {
		slog.Error("command failed", "command", cmd.Name(), "error", err)
		base.SetExitStatus(base.SGenericError)
	}
	base.Exit()
}

func mainUsage() {
	_ = help.PrintUsage(os.Stderr, base.Parquetmcp)
	base.SetExitStatus(base.SHelpRequested)
	base.Exit()
}

// findCommand returns the runnable subcommand of root with the given name.
func findCommand(root *base.Command, name string) (*base.Command, error) {
	for _, cmd := range root.Commands {
		if cmd.Name() == name && cmd.Runnable() {
			return cmd, nil
		}
	}
	return nil, errUnknownCommand
}

// invoke parses the command flags, initialises logging and tracing, and runs
// the command.
func invoke(cmd *base.Command, args []string) error {
	if cmd.CustomFlags {
		args = args[1:]
	} else {
		cfg.SetBaseFlags(&cmd.Flag, cmd.FlagMask)
		cmd.Flag.Usage = func() { cmd.Usage() }
		if err := cmd.Flag.Parse(args[1:]); err != nil {
			base.SetExitStatus(base.SInvalidParameters)
			return err
		}
		args = cmd.Flag.Args()
	}

	lg, err := initLog(cmd, cfg.LogFile, cfg.JSONHandler, cfg.Verbose)
	if err != nil {
		base.SetExitStatus(base.SInitializationError)
		return err
	}
	cfg.Log = lg

	stop := initTrace(cfg.TraceFile)
	defer stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ctx, task := trace.NewTask(ctx, "command")
	defer task.End()
	trace.Log(ctx, "command", cmd.Name())

	return cmd.Run(ctx, cmd, args)
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}
