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

package csvtools

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/rusq/parquetmcp/internal/convert"
	"github.com/rusq/parquetmcp/internal/mcp"
	"github.com/rusq/parquetmcp/internal/mcp/mock_mcp"
)

const sampleCSV = "id,name,score,active\n1,alice,1.5,true\n2,bob,,false\n3,carol,2.25,TRUE\n"

func toolReq(args map[string]any) mcplib.CallToolRequest {
	req := mcplib.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// firstText returns the text of the first TextContent in the result.
func firstText(t *testing.T, r *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, r.Content, "result has no content")
	txt, ok := r.Content[0].(mcplib.TextContent)
	require.True(t, ok, "first content item is not TextContent")
	return txt.Text
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestTools_Register(t *testing.T) {
	srv := mcp.New()
	require.NoError(t, srv.Install(New(nil)))
	assert.Equal(t, []string{"csv_info", "csv_preview", "csv_to_parquet"}, srv.Tools())

	// second registration collides
	err := srv.Install(New(nil))
	assert.ErrorIs(t, err, mcp.ErrDuplicateTool)
	assert.ErrorIs(t, err, mcp.ErrProviderFailed)
}

func TestTools_Register_stopsOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mock_mcp.NewMockRegistrar(ctrl)
	errBoom := errors.New("boom")
	gomock.InOrder(
		r.EXPECT().AddTool(gomock.Any()).Return(nil),
		r.EXPECT().AddTool(gomock.Any()).Return(errBoom),
	)

	err := New(nil).Register(r)
	assert.ErrorIs(t, err, errBoom)
}

func TestTools_Name(t *testing.T) {
	assert.Equal(t, "csv_tools", New(nil).Name())
}

// ─── csv_info ─────────────────────────────────────────────────────────────────

func TestHandleInfo(t *testing.T) {
	path := writeFile(t, "in.csv", sampleCSV)
	tl := New(nil)

	res, err := tl.handleInfo(t.Context(), toolReq(map[string]any{"path": path}))
	require.NoError(t, err)
	require.False(t, res.IsError, firstText(t, res))

	var got struct {
		Path    string `json:"path"`
		Rows    int    `json:"rows"`
		Columns []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(firstText(t, res)), &got))
	assert.Equal(t, path, got.Path)
	assert.Equal(t, 3, got.Rows)
	require.Len(t, got.Columns, 4)
	assert.Equal(t, "id", got.Columns[0].Name)
	assert.Equal(t, "int64", got.Columns[0].Type)
	assert.Equal(t, "string", got.Columns[1].Type)
	assert.Equal(t, "float64", got.Columns[2].Type)
	assert.Equal(t, "bool", got.Columns[3].Type)
}

func TestHandleInfo_errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		args     map[string]any
		wantText string
	}{
		{"no path", nil, "path is required"},
		{"empty path", map[string]any{"path": ""}, "path is required"},
		{"missing file", map[string]any{"path": filepath.Join(dir, "nope.csv")}, "not found"},
		{"bad delimiter", map[string]any{"path": "x.csv", "delimiter": ";;"}, "invalid delimiter"},
		{"malformed", map[string]any{"path": writeFile(t, "bad.csv", "a,b\n1,2,3\n")}, "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(nil).handleInfo(t.Context(), toolReq(tt.args))
			require.NoError(t, err, "tool failures are not transport errors")
			assert.True(t, res.IsError)
			assert.Contains(t, firstText(t, res), tt.wantText)
		})
	}
}

// ─── csv_preview ──────────────────────────────────────────────────────────────

type preview struct {
	Columns   []map[string]string `json:"columns"`
	Rows      [][]any             `json:"rows"`
	TotalRows int                 `json:"total_rows"`
}

func TestHandlePreview(t *testing.T) {
	path := writeFile(t, "in.csv", sampleCSV)
	tests := []struct {
		name     string
		limit    any
		wantRows int
	}{
		{"default", nil, 3},
		{"limited", float64(2), 2},
		{"below minimum", float64(0), 1},
		{"above maximum", float64(5000), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{"path": path}
			if tt.limit != nil {
				args["limit"] = tt.limit
			}
			res, err := New(nil).handlePreview(t.Context(), toolReq(args))
			require.NoError(t, err)
			require.False(t, res.IsError, firstText(t, res))

			var got preview
			require.NoError(t, json.Unmarshal([]byte(firstText(t, res)), &got))
			assert.Len(t, got.Rows, tt.wantRows)
			assert.Equal(t, 3, got.TotalRows)
		})
	}
}

func TestHandlePreview_values(t *testing.T) {
	path := writeFile(t, "in.tsv", "a\tb\n1\tNA\n")
	res, err := New(nil).handlePreview(t.Context(), toolReq(map[string]any{"path": path, "delimiter": `\t`}))
	require.NoError(t, err)
	require.False(t, res.IsError, firstText(t, res))

	var got preview
	require.NoError(t, json.Unmarshal([]byte(firstText(t, res)), &got))
	assert.Equal(t, [][]any{{float64(1), nil}}, got.Rows)
	assert.Equal(t, "a", got.Columns[0]["name"])
	assert.Equal(t, "string", got.Columns[1]["type"])
}

func TestHandlePreview_missing(t *testing.T) {
	res, err := New(nil).handlePreview(t.Context(), toolReq(map[string]any{"path": filepath.Join(t.TempDir(), "x.csv")}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, firstText(t, res), "csv_preview")
}

// ─── csv_to_parquet ───────────────────────────────────────────────────────────

func TestHandleToParquet(t *testing.T) {
	in := writeFile(t, "in.csv", sampleCSV)
	out := filepath.Join(filepath.Dir(in), "out.parquet")

	res, err := New(nil).handleToParquet(t.Context(), toolReq(map[string]any{
		"input":       in,
		"output":      out,
		"compression": "gzip",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, firstText(t, res))

	var got convert.Result
	require.NoError(t, json.Unmarshal([]byte(firstText(t, res)), &got))
	assert.Equal(t, out, got.Output)
	assert.Equal(t, 3, got.Rows)
	assert.Equal(t, 4, got.Columns)
	assert.Equal(t, convert.CodecGzip, got.Codec)

	fi, err := convert.Inspect(out)
	require.NoError(t, err)
	assert.EqualValues(t, 3, fi.Rows)
}

func TestHandleToParquet_defaultOutput(t *testing.T) {
	in := writeFile(t, "data.csv", sampleCSV)

	res, err := New(nil).handleToParquet(t.Context(), toolReq(map[string]any{"input": in}))
	require.NoError(t, err)
	require.False(t, res.IsError, firstText(t, res))
	assert.FileExists(t, filepath.Join(filepath.Dir(in), "data.parquet"))
}

func TestHandleToParquet_errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		args     map[string]any
		wantText string
	}{
		{"no input", map[string]any{}, "input is required"},
		{"bad codec", map[string]any{"input": "a.csv", "compression": "lz4"}, "unknown compression codec"},
		{"missing input", map[string]any{"input": filepath.Join(dir, "none.csv")}, "not found"},
		{"same file", map[string]any{"input": "a.csv", "output": "a.csv"}, "invalid configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(nil).handleToParquet(t.Context(), toolReq(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, firstText(t, res), tt.wantText)
		})
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParquetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"data.csv", "data.parquet"},
		{"dir/data.tsv", "dir/data.parquet"},
		{"noext", "noext.parquet"},
		{"data.csv.gz", "data.parquet"},
		{"data.tsv.zst", "data.parquet"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parquetName(tt.in))
	}
}
