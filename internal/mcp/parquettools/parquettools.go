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

// Package parquettools provides the MCP tools that inspect Parquet files.
package parquettools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/parquetmcp/internal/convert"
	"github.com/rusq/parquetmcp/internal/mcp"
	"github.com/rusq/parquetmcp/internal/primitive"
)

// Name is the provider name.
const Name = "parquet_tools"

const (
	defLimit = 10
	minLimit = 1
	maxLimit = 1000
)

// Tools is the provider of the Parquet tools.
type Tools struct {
	logger *slog.Logger
}

var _ mcp.Provider = (*Tools)(nil)

// New returns the Parquet tool provider.  If lg is nil, slog.Default() is
// used.
func New(lg *slog.Logger) *Tools {
	if lg == nil {
		lg = slog.Default()
	}
	return &Tools{logger: lg}
}

func (*Tools) Name() string {
	return Name
}

// Register adds the Parquet tools to r.
func (t *Tools) Register(r mcp.Registrar) error {
	for _, tool := range []mcpsrv.ServerTool{
		t.toolSchema(),
		t.toolPreview(),
	} {
		if err := r.AddTool(tool); err != nil {
			return err
		}
	}
	return nil
}

func pathArg(req mcplib.CallToolRequest) (string, error) {
	path, ok := mcp.StringArg(req, "path")
	if !ok || path == "" {
		return "", errors.New("path is required")
	}
	return path, nil
}

// ─── parquet_schema ───────────────────────────────────────────────────────────

func (t *Tools) toolSchema() mcpsrv.ServerTool {
	tool := mcplib.NewTool("parquet_schema",
		mcplib.WithDescription(`Describe a Parquet file without reading its data: the column names and
types in order, the number of rows and row groups, and the file size.`),
		mcplib.WithString("path",
			mcplib.Description("Path to the Parquet file."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleSchema}
}

// schemaInfo is the description of a Parquet file.
type schemaInfo struct {
	convert.FileInfo
	SizeHuman string `json:"size_human"`
}

func (t *Tools) handleSchema(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	path, err := pathArg(req)
	if err != nil {
		return mcp.ResultErr(fmt.Errorf("parquet_schema: %w", err)), nil
	}
	fi, err := convert.Inspect(path)
	if err != nil {
		return mcp.ResultErr(fmt.Errorf("parquet_schema: %w", err)), nil
	}
	t.logger.DebugContext(ctx, "mcp: parquet_schema", "path", path, "rows", fi.Rows)
	return mcp.ResultJSON(schemaInfo{
		FileInfo:  fi,
		SizeHuman: humanize.Bytes(uint64(fi.Size)),
	}), nil
}

// ─── parquet_preview ──────────────────────────────────────────────────────────

func (t *Tools) toolPreview() mcpsrv.ServerTool {
	tool := mcplib.NewTool("parquet_preview",
		mcplib.WithDescription("Return the first rows of a Parquet file with typed values.  Nulls are returned as null."),
		mcplib.WithString("path",
			mcplib.Description("Path to the Parquet file."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of rows to return (1–1000, default 10)"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handlePreview}
}

func (t *Tools) handlePreview(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	limit := primitive.Clamp(mcp.IntArg(req, "limit", defLimit), minLimit, maxLimit)

	path, err := pathArg(req)
	if err != nil {
		return mcp.ResultErr(fmt.Errorf("parquet_preview: %w", err)), nil
	}
	p, err := convert.ReadParquet(ctx, path, limit)
	if err != nil {
		return mcp.ResultErr(fmt.Errorf("parquet_preview: %w", err)), nil
	}

	t.logger.DebugContext(ctx, "mcp: parquet_preview", "path", path, "limit", limit, "total_rows", p.TotalRows)
	return mcp.ResultJSON(p), nil
}
