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

package mcp

// In this file: MCP server construction, tool registry and transport.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "parquetmcp"
	serverVersion = "1.0.0"
)

const defInstructions = `You are connected to the parquetmcp MCP server.

Available tools allow you to inspect CSV files, convert them to Parquet and
inspect Parquet files on the local filesystem.  File paths are resolved
relative to the server's working directory.`

// Server wraps an MCP server and the registry of its tools.
type Server struct {
	mcp    *mcpsrv.MCPServer
	logger *slog.Logger

	mu    sync.Mutex
	tools map[string]struct{}
}

// Option configures the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger       *slog.Logger
	instructions string
	version      string
}

// WithLogger sets the logger.  nil is ignored and slog.Default() is used.
func WithLogger(lg *slog.Logger) Option {
	return func(o *serverOptions) {
		if lg != nil {
			o.logger = lg
		}
	}
}

// WithInstructions replaces the instructions sent to the connecting agent.
func WithInstructions(s string) Option {
	return func(o *serverOptions) {
		if s != "" {
			o.instructions = s
		}
	}
}

// WithVersion sets the server version reported to clients.
func WithVersion(v string) Option {
	return func(o *serverOptions) {
		if v != "" {
			o.version = v
		}
	}
}

// New creates a new MCP server without any tools.  Tools are added with
// Install or AddTool; the server does not start listening until one of the
// Serve* methods is called.
func New(opts ...Option) *Server {
	o := serverOptions{
		logger:       slog.Default(),
		instructions: defInstructions,
		version:      serverVersion,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		mcp: mcpsrv.NewMCPServer(
			serverName,
			o.version,
			mcpsrv.WithToolCapabilities(true),
			mcpsrv.WithRecovery(),
			mcpsrv.WithInstructions(o.instructions),
		),
		logger: o.logger,
		tools:  make(map[string]struct{}),
	}
}

// AddTool registers the tool with the server.  It is safe to call
// concurrently, but tools must be added before serving starts.
func (s *Server) AddTool(tool mcpsrv.ServerTool) error {
	name := tool.Tool.Name
	if name == "" || tool.Handler == nil {
		return fmt.Errorf("%w: %q", ErrInvalidTool, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tools[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	s.tools[name] = struct{}{}
	s.mcp.AddTool(tool.Tool, tool.Handler)
	return nil
}

// Install calls Register on each provider in order.  It stops at the first
// provider that fails, the remaining providers are not called.
func (s *Server) Install(providers ...Provider) error {
	for _, p := range providers {
		before := s.numTools()
		if err := p.Register(s); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrProviderFailed, p.Name(), err)
		}
		s.logger.Debug("mcp: provider installed", "provider", p.Name(), "tools", s.numTools()-before)
	}
	return nil
}

func (s *Server) numTools() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tools)
}

// Tools returns the sorted names of the registered tools.
func (s *Server) Tools() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)
	return names
}

// ServeStdio runs the MCP server over stdin/stdout until the input is closed
// or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.ServeIO(ctx, os.Stdin, os.Stdout)
}

// ServeIO runs the MCP stdio protocol over in and out.  Reaching the end of
// input or cancelling ctx is a normal shutdown.
func (s *Server) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	// the default error logger of the stdio server writes to stderr.
	srv.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.InfoContext(ctx, "mcp server listening on stdio", "tools", s.Tools())
	if err := srv.Listen(ctx, in, out); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	s.logger.InfoContext(ctx, "mcp server stopped")
	return nil
}

// ResultErr is a helper that wraps an error in a CallToolResult with
// IsError=true.
func ResultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// ResultJSON is a helper that serialises v to JSON and returns a
// CallToolResult.  Serialisation failures are returned as error results.
func ResultJSON(v any) *mcplib.CallToolResult {
	res, err := mcplib.NewToolResultJSON(v)
	if err != nil {
		return ResultErr(fmt.Errorf("serialise: %w", err))
	}
	return res
}

// StringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func StringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntArg extracts a named int argument from a tool call request.  The MCP
// protocol serialises numbers as float64, so we convert accordingly.
func IntArg(req mcplib.CallToolRequest, name string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return defaultVal
}
