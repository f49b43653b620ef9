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

// In this file: CSV parsing and column type inference.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ColumnType is the inferred type of a dataset column.
type ColumnType uint8

const (
	TString  ColumnType = iota // TString is a UTF-8 string column.
	TInt64                     // TInt64 is a signed 64-bit integer column.
	TFloat64                   // TFloat64 is a double precision column.
	TBool                      // TBool is a boolean column.
	TUint64                    // TUint64 is an unsigned 64-bit integer column.
)

func (t ColumnType) String() string {
	switch t {
	case TString:
		return "string"
	case TInt64:
		return "int64"
	case TFloat64:
		return "float64"
	case TBool:
		return "bool"
	case TUint64:
		return "uint64"
	}
	return "ColumnType(" + strconv.Itoa(int(t)) + ")"
}

func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// DefaultNullValues are the cell values that are read as null.  This is the
// same list of NA markers that the pandas CSV reader recognises by default.
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

var (
	trueValues  = map[string]bool{"true": true, "True": true, "TRUE": true}
	falseValues = map[string]bool{"false": true, "False": true, "FALSE": true}
)

// Column describes a single dataset column.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Dataset is a fully loaded table.  Rows hold raw cell values in the column
// order, every row has exactly len(Columns) cells.
type Dataset struct {
	Columns []Column
	Rows    [][]string

	nulls map[string]struct{}
}

// NumRows returns the number of data rows.
func (ds *Dataset) NumRows() int {
	return len(ds.Rows)
}

// NumCols returns the number of columns.
func (ds *Dataset) NumCols() int {
	return len(ds.Columns)
}

// Names returns column names in order.
func (ds *Dataset) Names() []string {
	names := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		names[i] = c.Name
	}
	return names
}

// IsNull reports whether the cell value is a null marker.
func (ds *Dataset) IsNull(v string) bool {
	_, ok := ds.nulls[v]
	return ok
}

// Value returns the typed value of the cell at row, col: nil for nulls,
// int64, uint64, float64, bool or string otherwise.  The value is guaranteed
// to convert, as the column type was inferred from the same cells.
func (ds *Dataset) Value(row, col int) any {
	v := ds.Rows[row][col]
	if ds.IsNull(v) {
		return nil
	}
	switch ds.Columns[col].Type {
	case TInt64:
		n, _ := strconv.ParseInt(number(v), 10, 64)
		return n
	case TUint64:
		n, _ := strconv.ParseUint(number(v), 10, 64)
		return n
	case TFloat64:
		f, _ := strconv.ParseFloat(number(v), 64)
		return f
	case TBool:
		return trueValues[v]
	}
	return v
}

// ReadOption configures ReadCSV.
type ReadOption func(*readOptions)

type readOptions struct {
	comma      rune
	nullValues []string
}

// WithComma sets the field delimiter, the default is ','.
func WithComma(r rune) ReadOption {
	return func(o *readOptions) {
		if r != 0 {
			o.comma = r
		}
	}
}

// WithNullValues replaces the set of cell values that are read as null.
func WithNullValues(vv []string) ReadOption {
	return func(o *readOptions) {
		if vv != nil {
			o.nullValues = vv
		}
	}
}

// ReadCSV reads the whole delimited text from r.  The first record is the
// header.  Rows shorter than the header are padded with nulls, longer rows
// are an error.  All errors returned wrap ErrParse.
func ReadCSV(r io.Reader, opts ...ReadOption) (*Dataset, error) {
	ro := readOptions{
		comma:      ',',
		nullValues: DefaultNullValues,
	}
	for _, opt := range opts {
		opt(&ro)
	}

	cr := csv.NewReader(r)
	cr.Comma = ro.comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no columns to parse from file", ErrParse)
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	ds := &Dataset{
		Columns: columns(header),
		nulls:   make(map[string]struct{}, len(ro.nullValues)),
	}
	for _, v := range ro.nullValues {
		ds.nulls[v] = struct{}{}
	}

	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: expected %d fields, saw %d", ErrParse, line, len(header), len(rec))
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		ds.Rows = append(ds.Rows, rec)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range ds.Columns {
		g.Go(func() error {
			t, err := ds.inferType(i)
			if err != nil {
				return fmt.Errorf("column %q: %w", ds.Columns[i].Name, err)
			}
			ds.Columns[i].Type = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return ds, nil
}

// columns builds the column list from the header.  The UTF-8 byte order mark
// is dropped, empty names become "Unnamed: N" and repeated names get a ".N"
// suffix, so that every column name is unique.
func columns(header []string) []Column {
	cols := make([]Column, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for used[name] {
			suffix[base]++
			name = base + "." + strconv.Itoa(suffix[base])
		}
		used[name] = true
		cols[i] = Column{Name: name}
	}
	return cols
}

// number strips the surrounding blanks off a numeric cell.
func number(v string) string {
	return strings.TrimSpace(v)
}

// inferType returns the narrowest type that every non-null cell of column
// col parses as.  A column without any non-null cells is a string column.
// Integers that do not fit into int64 make the column uint64 if they all fit
// into it, and string otherwise, so that no value loses precision.  Numeric
// cells may have surrounding blanks.
func (ds *Dataset) inferType(col int) (ColumnType, error) {
	if col < 0 || col >= len(ds.Columns) {
		return TString, fmt.Errorf("column index %d out of range", col)
	}
	var (
		isInt, isUint, isFloat, isBool = true, true, true, true
		// allInt is true while every cell is an integer literal, even if
		// out of range.
		allInt = true
		seen   bool
	)
	for _, row := range ds.Rows {
		v := row[col]
		if ds.IsNull(v) {
			continue
		}
		seen = true
		n := number(v)
		if allInt {
			if _, err := strconv.ParseInt(n, 10, 64); err != nil {
				isInt = false
				if !errors.Is(err, strconv.ErrRange) {
					allInt = false
				}
			}
		}
		if isUint {
			if _, err := strconv.ParseUint(n, 10, 64); err != nil {
				isUint = false
			}
		}
		if isFloat && !isInt {
			if _, err := strconv.ParseFloat(n, 64); err != nil {
				isFloat = false
			}
		}
		if isBool && !trueValues[v] && !falseValues[v] {
			isBool = false
		}
		if !allInt && !isFloat && !isBool {
			return TString, nil
		}
	}
	switch {
	case !seen:
		return TString, nil
	case isInt:
		return TInt64, nil
	case allInt && isUint:
		return TUint64, nil
	case allInt:
		// out of range for any integer type, float64 would round.
		return TString, nil
	case isFloat:
		return TFloat64, nil
	case isBool:
		return TBool, nil
	}
	return TString, nil
}

// Preview is the head of a table.
type Preview struct {
	Columns   []Column `json:"columns"`
	Rows      [][]any  `json:"rows"`
	TotalRows int64    `json:"total_rows"`
}

// Preview returns up to limit rows of the dataset.  A negative limit returns
// all rows.
func (ds *Dataset) Preview(limit int) Preview {
	n := ds.NumRows()
	if limit >= 0 && limit < n {
		n = limit
	}
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = make([]any, ds.NumCols())
		for col := range ds.Columns {
			rows[i][col] = ds.Value(i, col)
		}
	}
	return Preview{
		Columns:   ds.Columns,
		Rows:      JSONSafe(rows),
		TotalRows: int64(ds.NumRows()),
	}
}
