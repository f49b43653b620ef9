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

// Package mcp contains the "parquetmcp mcp" command.
package mcp

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/cfg"
	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/golang/base"
	internalmcp "github.com/rusq/parquetmcp/internal/mcp"
	"github.com/rusq/parquetmcp/internal/mcp/csvtools"
	"github.com/rusq/parquetmcp/internal/mcp/parquettools"
	"github.com/rusq/parquetmcp/internal/osext"
)

//go:embed assets/mcp.md
var mdMCP string

// CmdMCP is the "parquetmcp mcp" command.
var CmdMCP = &base.Command{
	UsageLine:  "parquetmcp mcp",
	Short:      "start the MCP server on stdio",
	Long:       mdMCP,
	FlagMask:   cfg.DefaultFlags,
	PrintFlags: true,
	Stdio:      true,
	Run:        runMCP,
}

// providers returns the tool providers in the order of installation.
func providers(lg *slog.Logger) []internalmcp.Provider {
	return []internalmcp.Provider{
		csvtools.New(lg),
		parquettools.New(lg),
	}
}

func runMCP(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) > 0 {
		base.SetExitStatus(base.SInvalidParameters)
		return fmt.Errorf("mcp: unexpected arguments: %v", args)
	}
	if osext.IsInteractive() {
		fmt.Fprintln(os.Stderr, "parquetmcp mcp: the server speaks MCP on stdin/stdout and is meant to be started by an MCP client.  Press Ctrl+C to exit.")
	}
	lg := cfg.Log
	return start(ctx, lg, providers(lg), serve)
}

func serve(ctx context.Context, srv *internalmcp.Server) error {
	return srv.ServeStdio(ctx)
}

// start creates the server, installs the providers in order and calls run.
// If any provider fails, run is not called.
func start(ctx context.Context, lg *slog.Logger, pp []internalmcp.Provider, run func(context.Context, *internalmcp.Server) error) error {
	srv := internalmcp.New(internalmcp.WithLogger(lg), internalmcp.WithVersion(cfg.Version))
	if err := srv.Install(pp...); err != nil {
		base.SetExitStatus(base.SInitializationError)
		return fmt.Errorf("mcp: %w", err)
	}
	lg.DebugContext(ctx, "mcp: tools installed", "tools", srv.Tools())
	if err := run(ctx, srv); err != nil {
		base.SetExitStatus(base.SApplicationError)
		return err
	}
	return nil
}
