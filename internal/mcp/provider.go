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
package mcp

import (
	"errors"

	mcpsrv "github.com/mark3labs/mcp-go/server"
)

//go:generate mockgen -destination=mock_mcp/mock_mcp.go -package=mock_mcp . Provider,Registrar

var (
	// ErrProviderFailed is returned by Install when a provider fails to
	// register its tools.
	ErrProviderFailed = errors.New("tool provider failed")
	// ErrDuplicateTool is returned when a tool with the same name is
	// already registered.
	ErrDuplicateTool = errors.New("duplicate tool name")
	// ErrInvalidTool is returned for a tool without a name or a handler.
	ErrInvalidTool = errors.New("invalid tool")
)

// Registrar accepts tool registrations.
type Registrar interface {
	// AddTool registers the tool.  Tool names are unique.
	AddTool(tool mcpsrv.ServerTool) error
}

// Provider is a named group of tools.
type Provider interface {
	// Name returns the provider name, used in logs and errors.
	Name() string
	// Register registers all tools of the provider with r.
	Register(r Registrar) error
}
