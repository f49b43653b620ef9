// This package is based on the Golang source code with some modifications.
//
// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package help implements "parquetmcp help" command.
package help

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/cfg"
	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/golang/base"
)

// ErrUnknownTopic is returned by Help if the topic does not exist.
var ErrUnknownTopic = errors.New("unknown help topic")

func PrintUsage(w io.Writer, cmd *base.Command) error {
	bw := bufio.NewWriter(w)
	if err := tmpl(bw, usageTemplate, cmd); err != nil {
		return err
	}
	return bw.Flush()
}

// tmpl executes the given template text on data, writing the result to w.
func tmpl(w io.Writer, text string, data any) error {
	t := template.New("top")
	t.Funcs(template.FuncMap{"trim": strings.TrimSpace, "capitalize": capitalize})
	template.Must(t.Parse(text))
	return t.Execute(w, data)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + s[n:]
}

// Help implements the 'help' command.  It prints the help for the command
// named by args to w.
func Help(w io.Writer, args []string) error {
	cmd := base.Parquetmcp
Args:
	for i, arg := range args {
		for _, sub := range cmd.Commands {
			if sub.Name() == arg {
				cmd = sub
				continue Args
			}
		}

		// helpSuccess is the help command using as many args as possible that would succeed.
		helpSuccess := base.CmdName + " help"
		if i > 0 {
			helpSuccess += " " + strings.Join(args[:i], " ")
		}
		return fmt.Errorf("%w: %s help %s. Run '%s'", ErrUnknownTopic, base.CmdName, strings.Join(args, " "), helpSuccess)
	}

	if len(cmd.Commands) > 0 {
		return PrintUsage(w, cmd)
	}
	if err := tmpl(w, helpTemplate, cmd); err != nil {
		return err
	}
	if cmd.PrintFlags {
		fmt.Fprintln(w, "\nFlags:")
		if !cmd.CustomFlags && cmd.Flag.Lookup("trace") == nil && cmd.Flag.Lookup("log") == nil {
			cfg.SetBaseFlags(&cmd.Flag, cmd.FlagMask)
		}
		cmd.Flag.SetOutput(w)
		cmd.Flag.PrintDefaults()
	}
	return nil
}
