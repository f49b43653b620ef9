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

// Package csvtools provides the MCP tools that inspect delimited text files
// and convert them to Parquet.
package csvtools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/parquetmcp/internal/convert"
	"github.com/rusq/parquetmcp/internal/mcp"
	"github.com/rusq/parquetmcp/internal/primitive"
)

// Name is the provider name.
const Name = "csv_tools"

const (
	defLimit = 10
	minLimit = 1
	maxLimit = 1000
)

// Tools is the provider of the CSV tools.
type Tools struct {
	logger *slog.Logger
}

var _ mcp.Provider = (*Tools)(nil)

// New returns the CSV tool provider.  If lg is nil, slog.Default() is used.
func New(lg *slog.Logger) *Tools {
	if lg == nil {
		lg = slog.Default()
	}
	return &Tools{logger: lg}
}

func (*Tools) Name() string {
	return Name
}

// Register adds the CSV tools to r.
func (t *Tools) Register(r mcp.Registrar) error {
	for _, tool := range []mcpsrv.ServerTool{
		t.toolInfo(),
		t.toolPreview(),
		t.toolToParquet(),
	} {
		if err := r.AddTool(tool); err != nil {
			return err
		}
	}
	return nil
}

func withDelimiter() mcplib.ToolOption {
	return mcplib.WithString("delimiter",
		mcplib.Description("Field delimiter, a single character or \\t for a tab.  Defaults to a comma."),
	)
}

// delimiter returns the delimiter argument, or zero if it is not set.
func delimiter(req mcplib.CallToolRequest) (rune, error) {
	s, ok := mcp.StringArg(req, "delimiter")
	if !ok || s == "" {
		return 0, nil
	}
	return convert.ParseDelim(s)
}

// load parses the file given in the "path" argument.
func load(req mcplib.CallToolRequest) (*convert.Dataset, string, error) {
	path, ok := mcp.StringArg(req, "path")
	if !ok || path == "" {
		return nil, "", errors.New("path is required")
	}
	comma, err := delimiter(req)
	if err != nil {
		return nil, path, err
	}
	ds, err := convert.LoadCSV(path, convert.WithComma(comma))
	if err != nil {
		return nil, path, err
	}
	return ds, path, nil
}

// ─── csv_info ─────────────────────────────────────────────────────────────────

func (t *Tools) toolInfo() mcpsrv.ServerTool {
	tool := mcplib.NewTool("csv_info",
		mcplib.WithDescription(`Describe a CSV file: the column names in order, the type that each column
would have in a Parquet file (int64, uint64, float64, bool or string), and the
number of data rows.  The first line of the file is the header.`),
		mcplib.WithString("path",
			mcplib.Description("Path to the CSV file."),
			mcplib.Required(),
		),
		withDelimiter(),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleInfo}
}

// fileInfo is the description of a CSV file.
type fileInfo struct {
	Path    string           `json:"path"`
	Rows    int              `json:"rows"`
	Columns []convert.Column `json:"columns"`
}

func (t *Tools) handleInfo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ds, path, err := load(req)
	if err != nil {
		return mcp.ResultErr(fmt.Errorf("csv_info: %w", err)), nil
	}
	t.logger.DebugContext(ctx, "mcp: csv_info", "path", path, "rows", ds.NumRows())
	return mcp.ResultJSON(fileInfo{
		Path:    path,
		Rows:    ds.NumRows(),
		Columns: ds.Columns,
	}), nil
}

// ─── csv_preview ──────────────────────────────────────────────────────────────

func (t *Tools) toolPreview() mcpsrv.ServerTool {
	tool := mcplib.NewTool("csv_preview",
		mcplib.WithDescription(`Return the first rows of a CSV file with typed values.  Empty cells and
the usual NA markers (NA, N/A, NULL, NaN, ...) are returned as null.`),
		mcplib.WithString("path",
			mcplib.Description("Path to the CSV file."),
			mcplib.Required(),
		),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of rows to return (1–1000, default 10)"),
		),
		withDelimiter(),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handlePreview}
}

func (t *Tools) handlePreview(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	limit := primitive.Clamp(mcp.IntArg(req, "limit", defLimit), minLimit, maxLimit)

	ds, path, err := load(req)
	if err != nil {
		return mcp.ResultErr(fmt.Errorf("csv_preview: %w", err)), nil
	}
	t.logger.DebugContext(ctx, "mcp: csv_preview", "path", path, "limit", limit)
	return mcp.ResultJSON(ds.Preview(limit)), nil
}

// ─── csv_to_parquet ───────────────────────────────────────────────────────────

func (t *Tools) toolToParquet() mcpsrv.ServerTool {
	tool := mcplib.NewTool("csv_to_parquet",
		mcplib.WithDescription(`Convert a CSV file to a Parquet file.

The column types are inferred from the values, the column order is kept and
no index column is added.  The output file is replaced atomically if it
exists.`),
		mcplib.WithString("input",
			mcplib.Description("Path to the CSV file."),
			mcplib.Required(),
		),
		mcplib.WithString("output",
			mcplib.Description("Path to the Parquet file.  Defaults to the input path with the .parquet extension."),
		),
		mcplib.WithString("compression",
			mcplib.Description("Compression codec, default snappy."),
			mcplib.Enum(string(convert.CodecSnappy), string(convert.CodecGzip), string(convert.CodecZstd), string(convert.CodecNone)),
		),
		withDelimiter(),
		mcplib.WithDestructiveHintAnnotation(true),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleToParquet}
}

func (t *Tools) handleToParquet(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	input, ok := mcp.StringArg(req, "input")
	if !ok || input == "" {
		return mcp.ResultErr(errors.New("csv_to_parquet: input is required")), nil
	}
	output, _ := mcp.StringArg(req, "output")
	if output == "" {
		output = parquetName(input)
	}
	comma, err := delimiter(req)
	if err != nil {
		return mcp.ResultErr(fmt.Errorf("csv_to_parquet: %w", err)), nil
	}
	cfg := convert.Config{
		Input:  input,
		Output: output,
		Comma:  comma,
	}
	if s, ok := mcp.StringArg(req, "compression"); ok && s != "" {
		if err := cfg.Compression.Set(s); err != nil {
			return mcp.ResultErr(fmt.Errorf("csv_to_parquet: %w", err)), nil
		}
	}

	t.logger.InfoContext(ctx, "mcp: csv_to_parquet", "input", input, "output", output)
	res, err := convert.Convert(ctx, cfg, convert.WithLogger(t.logger))
	if err != nil {
		return mcp.ResultErr(fmt.Errorf("csv_to_parquet: %w", err)), nil
	}
	return mcp.ResultJSON(res), nil
}

// parquetName replaces the extension of the path with .parquet.  The
// compression extension, if any, is dropped as well.
func parquetName(path string) string {
	switch filepath.Ext(path) {
	case ".gz", ".bz2", ".zst":
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".parquet"
}
