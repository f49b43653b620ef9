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

// Package convert converts delimited text files into Parquet columnar files.
//
// The whole input is loaded into memory, column types are inferred from the
// cell values, and the output is written atomically: it either appears
// complete at the output path, or not at all.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/rusq/parquetmcp/internal/osext"
)

var (
	// DefaultInput is the input file used when none is given.
	DefaultInput = filepath.Join("data", "sample.csv")
	// DefaultOutput is the output file used when none is given.
	DefaultOutput = filepath.Join("data", "sample.parquet")
)

// Config is the conversion configuration.
type Config struct {
	// Input is the path to the delimited text file with a header row.
	Input string `validate:"required"`
	// Output is the path to the columnar file, it is created or replaced.
	Output string `validate:"required,nefield=Input"`
	// Compression is the output compression codec, empty means snappy.
	Compression Codec `validate:"omitempty,oneof=snappy gzip zstd none"`
	// RowGroupSize is the maximum number of rows in a row group, zero means
	// DefaultRowGroupSize.
	RowGroupSize int64 `validate:"gte=0"`
	// Comma is the field delimiter, zero means ','.
	Comma rune
	// NullValues overrides DefaultNullValues if not nil.
	NullValues []string
}

// DefaultConfig returns the configuration with default values.
func DefaultConfig() Config {
	return Config{
		Input:       DefaultInput,
		Output:      DefaultOutput,
		Compression: CodecSnappy,
		Comma:       ',',
	}
}

var (
	validate   = validator.New(validator.WithRequiredStructEnabled())
	translator ut.Translator
)

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}
}

// Validate checks the configuration.  Returned errors wrap ErrConfig.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var vErr validator.ValidationErrors
		if !errors.As(err, &vErr) {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
		msgs := make([]string, 0, len(vErr))
		for _, fe := range vErr {
			msgs = append(msgs, fe.Translate(translator))
		}
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(msgs, "; "))
	}
	if same, err := osext.Same(c.Input, c.Output); err == nil && same {
		return fmt.Errorf("%w: input and output refer to the same file", ErrConfig)
	}
	if c.Comma != 0 && !validDelim(c.Comma) {
		return fmt.Errorf("%w: invalid delimiter %q", ErrConfig, c.Comma)
	}
	return nil
}

// validDelim mirrors the delimiter restrictions of encoding/csv.
func validDelim(r rune) bool {
	return r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// ParseDelim parses the field delimiter given as a single character.  The
// two-character sequence \t is read as a tab.
func ParseDelim(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if s == "" || size != len(s) || !validDelim(r) {
		return 0, fmt.Errorf("%w: invalid delimiter %q", ErrConfig, s)
	}
	return r, nil
}

// Result describes a finished conversion.
type Result struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Bytes   int64  `json:"bytes"`
	Codec   Codec  `json:"codec"`
}

// Option configures Convert.
type Option func(*options)

type options struct {
	lg *slog.Logger
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(o *options) {
		if lg != nil {
			o.lg = lg
		}
	}
}

// Convert reads the delimited text file cfg.Input and writes it as a
// columnar file to cfg.Output.  A missing input fails with ErrNotFound before
// the output is touched, malformed input fails with ErrParse, and a failure
// to write fails with ErrWrite, in which case no file is left at the output
// path, and an existing one is kept intact.
func Convert(ctx context.Context, cfg Config, opts ...Option) (Result, error) {
	o := options{lg: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	lg := o.lg

	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if cfg.Compression == "" {
		cfg.Compression = CodecSnappy
	}

	ds, err := load(cfg)
	if err != nil {
		return Result{}, err
	}
	lg.DebugContext(ctx, "input loaded", "path", cfg.Input, "rows", ds.NumRows(), "columns", ds.NumCols())
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := osext.DirExists(filepath.Dir(cfg.Output)); err != nil {
		return Result{}, fmt.Errorf("%w: output directory: %w", ErrWrite, err)
	}

	err = osext.WriteFileAtomic(cfg.Output, 0o644, func(w io.Writer) error {
		return WriteParquet(w, ds, WithCodec(cfg.Compression), WithRowGroupSize(cfg.RowGroupSize))
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrWrite, cfg.Output, err)
	}
	fi, err := os.Stat(cfg.Output)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	lg.DebugContext(ctx, "output written", "path", cfg.Output, "size", fi.Size(), "codec", cfg.Compression)

	return Result{
		Input:   cfg.Input,
		Output:  cfg.Output,
		Rows:    ds.NumRows(),
		Columns: ds.NumCols(),
		Bytes:   fi.Size(),
		Codec:   cfg.Compression,
	}, nil
}

// load opens and parses the input file.
func load(cfg Config) (*Dataset, error) {
	return LoadCSV(cfg.Input, WithComma(cfg.Comma), WithNullValues(cfg.NullValues))
}

// LoadCSV reads the delimited text file at path.  Files compressed with
// gzip, bzip2 or zstd are decompressed on the fly.
func LoadCSV(path string, opts ...ReadOption) (*Dataset, error) {
	rc, err := osext.OpenDecompressed(path)
	if err != nil {
		var oe *osext.Error
		if errors.As(err, &oe) {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return nil, notFound(err)
	}
	defer rc.Close()

	ds, err := ReadCSV(rc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// notFound wraps err with ErrNotFound if the file does not exist.
func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
