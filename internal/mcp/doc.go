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

// Package mcp hosts a Model Context Protocol (MCP) server and lets tool
// providers register their tools with it.
//
// There is no implicit registration: the composition root constructs a single
// Server, calls Install with an explicit, ordered list of Providers, and then
// calls one of the blocking Serve* methods.  If any provider fails to
// register, Install returns an error and the server must not be started.
//
// Transport: stdio only.  Stdout carries nothing but protocol messages, and
// the server does not write to stderr, all diagnostics go to the configured
// slog.Logger.
package mcp
