// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package st

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

func newTestSession(t *testing.T, source string) (*parseSession, exc.Reporter) {
	t.Helper()
	ctx := context.Background()
	reporter := exc.NewReporter()
	tokens, err := NewLexerST(reporter).Lex(ctx, "/test.st", source)
	require.Nil(t, err)
	return newParseSession(ctx, "/test.st", tokens, reporter, plc.NewIdProvider(), plc.LinkageInternal), reporter
}

func TestSessionCursor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	self, _ := newTestSession(t, "a b")
	require.Equal(t, "a", self.cur.Value)
	require.Equal(t, plc.TokenTypeEOF, self.last.Type)

	self.advance(ctx)
	require.Equal(t, "b", self.cur.Value)
	require.Equal(t, "a", self.last.Value)

	// advancing past the end parks the cursor on a synthetic EOF
	self.advance(ctx)
	require.Equal(t, plc.TokenTypeEOF, self.cur.Type)
	self.advance(ctx)
	require.Equal(t, plc.TokenTypeEOF, self.cur.Type)
}

func TestSessionCloseRegion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("consumes the matching closer into last", func(t *testing.T) {
		t.Parallel()
		self, reporter := newTestSession(t, "END_VAR x")
		self.enterRegion([]plc.TokenType{plc.TokenTypeKeywordEndVar})
		self.closeRegion(ctx)
		require.Empty(t, reporter.Reported())
		require.Equal(t, plc.TokenTypeKeywordEndVar, self.last.Type)
		require.Equal(t, "x", self.cur.Value)
		require.Empty(t, self.regions)
	})

	t.Run("leaves an outer closer in place", func(t *testing.T) {
		t.Parallel()
		self, reporter := newTestSession(t, "END_PROGRAM")
		self.enterRegion([]plc.TokenType{plc.TokenTypeKeywordEndProgram})
		self.enterRegion([]plc.TokenType{plc.TokenTypeKeywordEndVar})

		require.True(t, self.closesOpenRegion(self.cur.Type))
		self.closeRegion(ctx)
		// the inner region is missing its END_VAR; END_PROGRAM stays put
		require.Equal(t, []string{exc.CodeMissingToken}, diagnosticCodes(reporter))
		require.Equal(t, plc.TokenTypeKeywordEndProgram, self.cur.Type)

		self.closeRegion(ctx)
		require.Equal(t, plc.TokenTypeKeywordEndProgram, self.last.Type)
		require.Empty(t, self.regions)
	})
}

func TestSessionRecovery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("skips to the nearest closer", func(t *testing.T) {
		t.Parallel()
		self, _ := newTestSession(t, "a b c ; d")
		self.enterRegion([]plc.TokenType{plc.TokenTypeSemicolon})
		self.recoverUntilClose(ctx)
		require.Equal(t, plc.TokenTypeSemicolon, self.cur.Type)
	})

	t.Run("stops at the end of input", func(t *testing.T) {
		t.Parallel()
		self, _ := newTestSession(t, "a b c")
		self.enterRegion([]plc.TokenType{plc.TokenTypeSemicolon})
		self.recoverUntilClose(ctx)
		require.Equal(t, plc.TokenTypeEOF, self.cur.Type)
	})
}

func TestSessionParseAnyInRegion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// leftovers short of the closer are reported once and skipped, and the
	// region stack balances out
	self, reporter := newTestSession(t, "a b c END_VAR d")
	result := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordEndVar}, func() string {
		return self.sliceAndAdvance(ctx)
	})
	require.Equal(t, "a", result)
	require.Equal(t, []string{exc.CodeUnexpectedToken}, diagnosticCodes(reporter))
	require.Equal(t, plc.TokenTypeKeywordEndVar, self.last.Type)
	require.Equal(t, "d", self.cur.Value)
	require.Empty(t, self.regions)
}

func TestSessionTryConsume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	self, reporter := newTestSession(t, ": x")
	require.False(t, self.tryConsume(ctx, plc.TokenTypeSemicolon))
	require.True(t, self.tryConsume(ctx, plc.TokenTypeColon))
	require.False(t, self.tryConsumeOrReport(ctx, plc.TokenTypeComma))
	require.Equal(t, []string{exc.CodeMissingToken}, diagnosticCodes(reporter))
	require.Equal(t, "x", self.cur.Value)
}

func TestSessionScope(t *testing.T) {
	t.Parallel()

	self, _ := newTestSession(t, "")
	require.Equal(t, "m", self.scopedName("m"))
	withScope(self, "fb", func() struct{} {
		require.Equal(t, "fb.m", self.scopedName("m"))
		withScope(self, "inner", func() struct{} {
			require.Equal(t, "inner.m", self.scopedName("m"))
			return struct{}{}
		})
		require.Equal(t, "fb.m", self.scopedName("m"))
		return struct{}{}
	})
	require.Equal(t, "m", self.scopedName("m"))
}
