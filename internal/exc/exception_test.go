// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.ieclang.org/compiler.go/internal/plc"
)

func testLocation() Location {
	return Location{
		URI:      "/test.st",
		Location: plc.Location{Line: 3, Column: 9, Offset: 42},
	}
}

func TestSeverityOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, SeverityError, SeverityOf(CodeUnexpectedToken))
	require.Equal(t, SeverityError, SeverityOf(CodeMissingToken))
	require.Equal(t, SeverityWarning, SeverityOf(CodeTypeUnsafePointer))
	require.Equal(t, SeverityWarning, SeverityOf(CodeMultipleInheritance))
	require.Equal(t, SeverityError, SeverityOf("E999"))
}

func TestReporter(t *testing.T) {
	t.Parallel()

	r := NewReporter()
	require.Equal(t, SeverityInfo, r.MaxSeverity())

	// warnings accumulate but come back nil from Report
	require.Nil(t, r.Report(New(testLocation(), CodeTypeUnsafePointer, "unsafe")))
	require.Equal(t, SeverityWarning, r.MaxSeverity())

	e := r.Report(New(testLocation(), CodeMissingToken, "missing"))
	require.NotNil(t, e)
	require.Equal(t, SeverityError, r.MaxSeverity())

	require.Len(t, r.Reported(), 2)
	require.Equal(t, CodeTypeUnsafePointer, r.Reported()[0].Code())
	require.Equal(t, CodeMissingToken, r.Reported()[1].Code())
}

func TestWrap(t *testing.T) {
	t.Parallel()

	require.Nil(t, Wrap(testLocation(), CodeGeneral, nil))

	cause := errors.New("boom")
	wrapped := WrapUnknown(testLocation(), cause)
	require.Equal(t, CodeGeneral, wrapped.Code())
	require.Equal(t, "boom", wrapped.Message())
	require.True(t, errors.Is(wrapped, cause))
}

func TestRenderer(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	renderer := NewRenderer(out)
	renderer.RegisterSource("/test.st", "PROGRAM p\nVAR\nx ; INT;\nEND_VAR\nEND_PROGRAM")

	errored := renderer.RenderAll([]Exception{
		New(testLocation(), CodeMissingToken, "expected : but found ;"),
		New(testLocation(), CodeTypeUnsafePointer, "unsafe"),
	})
	require.Equal(t, 1, errored)

	text := out.String()
	require.Contains(t, text, "error[E003]")
	require.Contains(t, text, "warning[E015]")
	require.Contains(t, text, "/test.st:3:9")
	require.Contains(t, text, "x ; INT;")
}
