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

import "errors"

var (
	// ErrConfig is returned when the conversion configuration is invalid.
	ErrConfig = errors.New("invalid configuration")
	// ErrNotFound is returned when the input file does not exist.  It
	// always wraps fs.ErrNotExist as well.
	ErrNotFound = errors.New("input not found")
	// ErrParse is returned when the input is not valid delimited text.
	ErrParse = errors.New("parse error")
	// ErrWrite is returned when the output can not be written.
	ErrWrite = errors.New("write error")
	// ErrRead is returned when a columnar file can not be read back.
	ErrRead = errors.New("read error")
)
