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

package convert

// In this file: Parquet encoding and decoding of datasets.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/rusq/parquetmcp/internal/primitive"
)

// DefaultRowGroupSize is the maximum number of rows in a row group, if not
// set explicitly.
const DefaultRowGroupSize = 64 * 1024

// Codec is the compression codec of the columnar file.  It implements
// flag.Value.
type Codec string

const (
	CodecSnappy Codec = "snappy"
	CodecGzip   Codec = "gzip"
	CodecZstd   Codec = "zstd"
	CodecNone   Codec = "none"
)

var codecs = map[Codec]compress.Compression{
	CodecSnappy: compress.Codecs.Snappy,
	CodecGzip:   compress.Codecs.Gzip,
	CodecZstd:   compress.Codecs.Zstd,
	CodecNone:   compress.Codecs.Uncompressed,
}

func (c Codec) String() string {
	return string(c)
}

func (c *Codec) Set(v string) error {
	v = strings.ToLower(v)
	if v == "uncompressed" {
		v = string(CodecNone)
	}
	if _, ok := codecs[Codec(v)]; !ok {
		return fmt.Errorf("unknown compression codec: %q", v)
	}
	*c = Codec(v)
	return nil
}

// WriteOption configures WriteParquet.
type WriteOption func(*writeOptions)

type writeOptions struct {
	codec        Codec
	rowGroupSize int64
}

// WithCodec sets the compression codec.
func WithCodec(c Codec) WriteOption {
	return func(o *writeOptions) {
		if c != "" {
			o.codec = c
		}
	}
}

// WithRowGroupSize sets the maximum number of rows per row group.
func WithRowGroupSize(n int64) WriteOption {
	return func(o *writeOptions) {
		if n > 0 {
			o.rowGroupSize = n
		}
	}
}

// arrowType maps the column type to the arrow data type.
func arrowType(t ColumnType) arrow.DataType {
	switch t {
	case TInt64:
		return arrow.PrimitiveTypes.Int64
	case TUint64:
		return arrow.PrimitiveTypes.Uint64
	case TFloat64:
		return arrow.PrimitiveTypes.Float64
	case TBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// Schema returns the arrow schema of the dataset.  All fields are nullable.
func (ds *Dataset) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(ds.Columns))
	for i, c := range ds.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// record builds an arrow record from the dataset.  Caller must release it.
func (ds *Dataset) record(mem memory.Allocator) (arrow.Record, error) {
	schema := ds.Schema()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for col := range ds.Columns {
		fb := b.Field(col)
		fb.Reserve(len(ds.Rows))
		for row := range ds.Rows {
			v := ds.Value(row, col)
			if v == nil {
				fb.AppendNull()
				continue
			}
			switch bb := fb.(type) {
			case *array.Int64Builder:
				bb.Append(v.(int64))
			case *array.Uint64Builder:
				bb.Append(v.(uint64))
			case *array.Float64Builder:
				bb.Append(v.(float64))
			case *array.BooleanBuilder:
				bb.Append(v.(bool))
			case *array.StringBuilder:
				bb.Append(v.(string))
			default:
				return nil, fmt.Errorf("column %q: unsupported builder %T", ds.Columns[col].Name, fb)
			}
		}
	}
	return b.NewRecord(), nil
}

// WriteParquet encodes the dataset as a Parquet file to w.  The arrow schema
// is stored in the file metadata, no index column is written.
func WriteParquet(w io.Writer, ds *Dataset, opts ...WriteOption) error {
	wo := writeOptions{
		codec:        CodecSnappy,
		rowGroupSize: DefaultRowGroupSize,
	}
	for _, opt := range opts {
		opt(&wo)
	}
	codec, ok := codecs[wo.codec]
	if !ok {
		return fmt.Errorf("unknown compression codec: %q", wo.codec)
	}

	mem := memory.DefaultAllocator
	rec, err := ds.record(mem)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithMaxRowGroupLength(wo.rowGroupSize),
		parquet.WithAllocator(mem),
	)
	arrProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	// the file writer closes the sink if it is an io.Closer, the caller owns w.
	sink := struct{ io.Writer }{w}
	fw, err := pqarrow.NewFileWriter(rec.Schema(), sink, props, arrProps)
	if err != nil {
		return err
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// FileInfo is the summary of a columnar file.
type FileInfo struct {
	Path      string   `json:"path"`
	Size      int64    `json:"size"`
	Rows      int64    `json:"rows"`
	RowGroups int      `json:"row_groups"`
	Columns   []Column `json:"columns"`
}

// Inspect reads the metadata of the columnar file at path.
func Inspect(path string) (FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, notFound(err)
	}
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	schema, err := fr.Schema()
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return FileInfo{
		Path:      path,
		Size:      fi.Size(),
		Rows:      rdr.NumRows(),
		RowGroups: rdr.NumRowGroups(),
		Columns:   schemaColumns(schema),
	}, nil
}

// schemaColumns maps arrow fields back to columns.
func schemaColumns(s *arrow.Schema) []Column {
	cols := make([]Column, 0, s.NumFields())
	for _, f := range s.Fields() {
		var t ColumnType
		switch f.Type.ID() {
		case arrow.INT64:
			t = TInt64
		case arrow.UINT64:
			t = TUint64
		case arrow.FLOAT64:
			t = TFloat64
		case arrow.BOOL:
			t = TBool
		default:
			t = TString
		}
		cols = append(cols, Column{Name: f.Name, Type: t})
	}
	return cols
}

// ReadParquet reads up to limit rows of the columnar file at path.  A
// negative limit reads all rows.  Record batches are decoded in order, and
// reading stops as soon as limit rows are collected.
func ReadParquet(ctx context.Context, path string, limit int) (Preview, error) {
	if _, err := os.Stat(path); err != nil {
		return Preview{}, notFound(err)
	}
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer rdr.Close()

	total := rdr.NumRows()
	want := total
	if limit >= 0 && int64(limit) < want {
		want = int64(limit)
	}
	props := pqarrow.ArrowReadProperties{BatchSize: primitive.Clamp(want, 1, DefaultRowGroupSize)}
	fr, err := pqarrow.NewFileReader(rdr, props, memory.DefaultAllocator)
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	schema, err := fr.Schema()
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	p := Preview{
		Columns:   schemaColumns(schema),
		Rows:      make([][]any, 0, want),
		TotalRows: total,
	}
	if want == 0 {
		return p, nil
	}

	rr, err := fr.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer rr.Release()
	for int64(len(p.Rows)) < want && rr.Next() {
		p.Rows = appendRows(p.Rows, rr.Record(), int(want)-len(p.Rows))
	}
	// the record reader reports the end of data as io.EOF.
	if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return Preview{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	p.Rows = JSONSafe(p.Rows)
	return p, nil
}

// appendRows appends up to n rows of rec to rows as typed values.
func appendRows(rows [][]any, rec arrow.Record, n int) [][]any {
	n = min(n, int(rec.NumRows()))
	for i := 0; i < n; i++ {
		row := make([]any, rec.NumCols())
		for col := range row {
			row[col] = cellValue(rec.Column(col), i)
		}
		rows = append(rows, row)
	}
	return rows
}

func cellValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Uint64:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	default:
		return arr.ValueStr(i)
	}
}

// JSONSafe replaces the float values that can not be represented in JSON
// (NaN and infinities) with their string form.  It modifies rows in place.
func JSONSafe(rows [][]any) [][]any {
	for _, row := range rows {
		for i, v := range row {
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				row[i] = strconv.FormatFloat(f, 'g', -1, 64)
			}
		}
	}
	return rows
}
