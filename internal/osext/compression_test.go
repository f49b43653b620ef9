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

package osext

import (
	"bytes"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testData = "a,b\n1,2\n"

func gzipData(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func zstdData(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestOpenDecompressed(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"plain", func(*testing.T) []byte { return []byte(testData) }},
		{"gzip", func(t *testing.T) []byte { return gzipData(t, testData) }},
		{"zstd", func(t *testing.T) []byte { return zstdData(t, testData) }},
		{"bzip2 lookalike", func(*testing.T) []byte { return []byte("BZh,x\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := filepath.Join(t.TempDir(), "file")
			data := tt.data(t)
			require.NoError(t, os.WriteFile(name, data, 0o644))

			rc, err := OpenDecompressed(name)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())

			if tt.name == "bzip2 lookalike" {
				assert.Equal(t, string(data), string(got))
				return
			}
			assert.Equal(t, testData, string(got))
		})
	}
}

func TestOpenDecompressed_empty(t *testing.T) {
	name := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(name, nil, 0o644))

	rc, err := OpenDecompressed(name)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenDecompressed_errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, err := OpenDecompressed(filepath.Join(t.TempDir(), "none"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
	t.Run("corrupt gzip header", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "bad.gz")
		require.NoError(t, os.WriteFile(name, []byte{0x1f, 0x8b, 0x00}, 0o644))

		_, err := OpenDecompressed(name)
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, name, e.File)
	})
}
