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

package convertcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/golang/base"
	"github.com/rusq/parquetmcp/internal/convert"
)

// unsetenv removes the environment variable for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "") // restores the value on cleanup
	require.NoError(t, os.Unsetenv(key))
}

func Test_tparams_config(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		params  tparams
		want    convert.Config
		wantErr bool
	}{
		{
			name:   "defaults",
			params: tparams{delim: ","},
			want:   convert.DefaultConfig(),
		},
		{
			name:   "environment",
			env:    map[string]string{envInput: "in.csv", envOutput: "out.parquet"},
			params: tparams{delim: ","},
			want: convert.Config{
				Input:       "in.csv",
				Output:      "out.parquet",
				Compression: convert.CodecSnappy,
				Comma:       ',',
			},
		},
		{
			name: "flags override environment",
			env:  map[string]string{envInput: "in.csv", envOutput: "out.parquet"},
			params: tparams{
				input:        "a.csv",
				output:       "b.parquet",
				compression:  convert.CodecZstd,
				rowGroupSize: 100,
				delim:        `\t`,
			},
			want: convert.Config{
				Input:        "a.csv",
				Output:       "b.parquet",
				Compression:  convert.CodecZstd,
				RowGroupSize: 100,
				Comma:        '\t',
			},
		},
		{
			name:    "invalid delimiter",
			params:  tparams{delim: "::"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetenv(t, envInput)
			unsetenv(t, envOutput)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := tt.params.config()
			if tt.wantErr {
				assert.ErrorIs(t, err, convert.ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_run(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("a,b,c\n1,2,3\n4,5,6\n"), 0o644))
	out := filepath.Join(dir, "out.parquet")

	var buf bytes.Buffer
	err := run(t.Context(), &buf, convert.Config{Input: in, Output: out})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1, "exactly one confirmation line")
	assert.Contains(t, lines[0], "Parquet file created successfully!")
	assert.Contains(t, lines[0], out)
	assert.Contains(t, lines[0], "(2 rows, 3 columns,")
	assert.FileExists(t, out)
}

func Test_run_errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,b\n1,2,3\n"), 0o644))
	good := filepath.Join(dir, "good.csv")
	require.NoError(t, os.WriteFile(good, []byte("a\n1\n"), 0o644))

	tests := []struct {
		name    string
		cfg     convert.Config
		wantErr error
	}{
		{"missing input", convert.Config{Input: filepath.Join(dir, "none.csv"), Output: filepath.Join(dir, "x.parquet")}, convert.ErrNotFound},
		{"malformed input", convert.Config{Input: bad, Output: filepath.Join(dir, "y.parquet")}, convert.ErrParse},
		{"unwritable output", convert.Config{Input: good, Output: filepath.Join(dir, "nodir", "z.parquet")}, convert.ErrWrite},
		{"same file", convert.Config{Input: good, Output: good}, convert.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := run(t.Context(), &buf, tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, buf.String(), "nothing is printed on failure")
		})
	}
}

func Test_statusOf(t *testing.T) {
	tests := []struct {
		err  error
		want base.StatusCode
	}{
		{fmt.Errorf("x: %w", convert.ErrConfig), base.SInvalidParameters},
		{fmt.Errorf("x: %w", convert.ErrNotFound), base.SUserError},
		{fmt.Errorf("x: %w", convert.ErrParse), base.SUserError},
		{fmt.Errorf("x: %w", convert.ErrWrite), base.SApplicationError},
		{fmt.Errorf("x: %w: %w", convert.ErrWrite, &fs.PathError{Op: "rename", Err: fs.ErrPermission}), base.SApplicationError},
		{&fs.PathError{Op: "open", Path: "in.csv", Err: fs.ErrPermission}, base.SUserError},
		{context.Canceled, base.SApplicationError},
		{errors.New("other"), base.SApplicationError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func Test_runConvert_args(t *testing.T) {
	err := runConvert(t.Context(), CmdConvert, []string{"extra"})
	assert.Error(t, err)
}
