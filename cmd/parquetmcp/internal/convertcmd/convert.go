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

// Package convertcmd contains the "parquetmcp convert" command.
package convertcmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rusq/osenv/v2"

	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/cfg"
	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/golang/base"
	"github.com/rusq/parquetmcp/internal/convert"
	"github.com/rusq/parquetmcp/internal/osext"
)

//go:embed assets/convert.md
var convertMd string

var CmdConvert = &base.Command{
	Run:        runConvert,
	UsageLine:  "parquetmcp convert [flags]",
	Short:      "convert a CSV file to Parquet",
	Long:       convertMd,
	FlagMask:   cfg.DefaultFlags,
	PrintFlags: true,
}

const (
	envInput  = "CSV_INPUT"
	envOutput = "PARQUET_OUTPUT"
)

type tparams struct {
	input        string
	output       string
	compression  convert.Codec
	rowGroupSize int64
	delim        string
}

var params = tparams{
	compression: convert.CodecSnappy,
	delim:       ",",
}

func init() {
	CmdConvert.Flag.StringVar(&params.input, "i", "", "input CSV `file` (default: $"+envInput+" or "+convert.DefaultInput+")")
	CmdConvert.Flag.StringVar(&params.output, "o", "", "output Parquet `file` (default: $"+envOutput+" or "+convert.DefaultOutput+")")
	CmdConvert.Flag.Var(&params.compression, "compression", "compression `codec`: snappy, gzip, zstd or none")
	CmdConvert.Flag.Int64Var(&params.rowGroupSize, "row-group", 0, "maximum number of `rows` in a row group (default 65536)")
	CmdConvert.Flag.StringVar(&params.delim, "delim", params.delim, "field `delimiter`, a single character, or \\t for a tab")
}

func runConvert(ctx context.Context, cmd *base.Command, args []string) error {
	if len(args) > 0 {
		base.SetExitStatus(base.SInvalidParameters)
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	c, err := params.config()
	if err != nil {
		base.SetExitStatus(base.SInvalidParameters)
		return err
	}
	return run(ctx, color.Output, c)
}

// config returns the conversion configuration.  Paths that are not given on
// the command line are taken from the environment, and then from defaults.
func (p tparams) config() (convert.Config, error) {
	c := convert.DefaultConfig()
	c.Input = osenv.Value(envInput, c.Input)
	c.Output = osenv.Value(envOutput, c.Output)
	if p.input != "" {
		c.Input = p.input
	}
	if p.output != "" {
		c.Output = p.output
	}
	if p.compression != "" {
		c.Compression = p.compression
	}
	c.RowGroupSize = p.rowGroupSize
	if p.delim != "" {
		comma, err := convert.ParseDelim(p.delim)
		if err != nil {
			return convert.Config{}, err
		}
		c.Comma = comma
	}
	return c, nil
}

// run converts the file and writes the confirmation line to w.
func run(ctx context.Context, w io.Writer, c convert.Config) error {
	lg := cfg.Log
	lg.DebugContext(ctx, "converting", "input", c.Input, "output", c.Output, "compression", c.Compression)

	start := time.Now()
	res, err := convert.Convert(ctx, c, convert.WithLogger(lg))
	if err != nil {
		base.SetExitStatus(statusOf(err))
		return err
	}
	lg.DebugContext(ctx, "completed", "took", time.Since(start))

	_, err = fmt.Fprintln(w, confirmation(res))
	return err
}

// statusOf maps the conversion error to the exit status.
func statusOf(err error) base.StatusCode {
	switch {
	case errors.Is(err, convert.ErrConfig):
		return base.SInvalidParameters
	case errors.Is(err, convert.ErrNotFound), errors.Is(err, convert.ErrParse):
		return base.SUserError
	case errors.Is(err, convert.ErrWrite):
		return base.SApplicationError
	case osext.IsPathError(err):
		// input exists but can not be read.
		return base.SUserError
	default:
		return base.SApplicationError
	}
}

func confirmation(res convert.Result) string {
	return fmt.Sprintf("%s %s (%d rows, %d columns, %s)",
		color.GreenString("✅ Parquet file created successfully!"),
		res.Output, res.Rows, res.Columns, humanize.Bytes(uint64(res.Bytes)),
	)
}
