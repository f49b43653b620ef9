package help

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/parquetmcp/cmd/parquetmcp/internal/golang/base"
)

func noop(context.Context, *base.Command, []string) error { return nil }

func withCommands(t *testing.T, cmds ...*base.Command) {
	t.Helper()
	old := base.Parquetmcp.Commands
	base.Parquetmcp.Commands = cmds
	t.Cleanup(func() { base.Parquetmcp.Commands = old })
}

func TestHelp(t *testing.T) {
	cmdFoo := &base.Command{
		UsageLine:  "parquetmcp foo [flags]",
		Short:      "does foo",
		Long:       "Foo does foo things.",
		PrintFlags: true,
		Run:        noop,
	}
	cmdFoo.Flag.String("bar", "", "bar `value`")
	withCommands(t, cmdFoo)

	t.Run("root", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Help(&buf, nil))
		assert.Contains(t, buf.String(), "parquetmcp <command> [arguments]")
		assert.Contains(t, buf.String(), "does foo")
	})
	t.Run("command", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Help(&buf, []string{"foo"}))
		assert.Contains(t, buf.String(), "usage: parquetmcp foo [flags]")
		assert.Contains(t, buf.String(), "Foo does foo things.")
		assert.Contains(t, buf.String(), "-bar")
		assert.Contains(t, buf.String(), "-log")
	})
	t.Run("unknown topic", func(t *testing.T) {
		var buf bytes.Buffer
		err := Help(&buf, []string{"baz"})
		assert.ErrorIs(t, err, ErrUnknownTopic)
		assert.Empty(t, buf.String())
	})
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Convert", capitalize("convert"))
	assert.Equal(t, "Ästhetik", capitalize("ästhetik"))
}
