package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

func writeSource(t *testing.T, name string, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestCompile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	first := writeSource(t, "main.st", `
		PROGRAM main
		VAR
			x : INT;
		END_VAR
			x := 1;
		END_PROGRAM
	`)
	second := writeSource(t, "types.st", `TYPE color : (red, green, blue); END_TYPE`)

	c, err := New()
	require.Nil(t, err)
	resp, err := c.Compile(ctx, &plc.CompileRequest{Files: []string{first, second}})
	require.Nil(t, err)
	require.Len(t, resp.Units, 2)
}

func TestCompileDeduplicatesFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeSource(t, "main.st", `PROGRAM main END_PROGRAM`)

	c, err := New()
	require.Nil(t, err)
	resp, err := c.Compile(ctx, &plc.CompileRequest{Files: []string{path, path}})
	require.Nil(t, err)
	require.Len(t, resp.Units, 1)
}

func TestCompileSyntaxError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeSource(t, "broken.st", `FUNCTION END_FUNCTION`)

	reporter := exc.NewReporter()
	c, err := New(OptionWithExcReporter(reporter))
	require.Nil(t, err)
	resp, err := c.Compile(ctx, &plc.CompileRequest{Files: []string{path}})
	require.NotNil(t, err)

	var multi MultiException
	require.True(t, errors.As(err, &multi))
	require.Len(t, multi, 1)
	require.Equal(t, exc.CodeUnexpectedToken, multi[0].Code())

	// the unit is still produced alongside the error
	require.NotNil(t, resp)
	require.Len(t, resp.Units, 1)
}

func TestCompileWarningsDoNotFail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeSource(t, "warn.st", `TYPE p : POINTER TO INT; END_TYPE`)

	reporter := exc.NewReporter()
	c, err := New(OptionWithExcReporter(reporter))
	require.Nil(t, err)
	_, err = c.Compile(ctx, &plc.CompileRequest{Files: []string{path}})
	require.Nil(t, err)
	require.Equal(t, exc.SeverityWarning, reporter.MaxSeverity())
}

func TestCompileMissingFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, err := New(OptionWithExcReporter(exc.NewReporter()))
	require.Nil(t, err)
	resp, err := c.Compile(ctx, &plc.CompileRequest{Files: []string{"/does/not/exist.st"}})
	require.NotNil(t, err)
	require.Empty(t, resp.Units)
}

func TestCompileDump(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeSource(t, "main.st", `PROGRAM main x := 1; END_PROGRAM`)

	t.Run("tokens", func(t *testing.T) {
		t.Parallel()
		out := &bytes.Buffer{}
		c, err := New(OptionWithOutput(out))
		require.Nil(t, err)
		resp, err := c.Compile(ctx, &plc.CompileRequest{Files: []string{path}, DumpTokens: true})
		require.Nil(t, err)
		require.NotEmpty(t, out.String())
		// the dump drains and replays the stream, parsing still happens
		require.Len(t, resp.Units, 1)
		require.Len(t, resp.Units[0].Pous, 1)
	})

	t.Run("tree", func(t *testing.T) {
		t.Parallel()
		out := &bytes.Buffer{}
		c, err := New(OptionWithOutput(out))
		require.Nil(t, err)
		_, err = c.Compile(ctx, &plc.CompileRequest{Files: []string{path}, DumpTree: true})
		require.Nil(t, err)
		require.Contains(t, out.String(), "unit ")
		require.Contains(t, out.String(), "main")
	})
}

func TestCompileExternalLinkage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeSource(t, "builtin.st", `FUNCTION foo : INT END_FUNCTION`)

	c, err := New(OptionWithLinkage(plc.LinkageExternal))
	require.Nil(t, err)
	resp, err := c.Compile(ctx, &plc.CompileRequest{Files: []string{path}})
	require.Nil(t, err)
	require.Len(t, resp.Units, 1)
	require.Equal(t, plc.LinkageExternal, resp.Units[0].Pous[0].Linkage)
}
