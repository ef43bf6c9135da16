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

func lexTokens(t *testing.T, source string) ([]*plc.Token, exc.Reporter) {
	t.Helper()
	ctx := context.Background()
	reporter := exc.NewReporter()
	lexer := NewLexerST(reporter)
	stream, err := lexer.Lex(ctx, "/test.st", source)
	require.Nil(t, err)
	var tokens []*plc.Token
	for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
		tokens = append(tokens, tok.Value())
	}
	return tokens, reporter
}

func tokenTypes(tokens []*plc.Token) []plc.TokenType {
	types := make([]plc.TokenType, 0, len(tokens))
	for _, token := range tokens {
		types = append(types, token.Type)
	}
	return types
}

func TestLexer(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []plc.TokenType
	}{
		{
			name:  "keywords are case insensitive",
			input: "program Program PROGRAM end_program",
			expected: []plc.TokenType{
				plc.TokenTypeKeywordProgram,
				plc.TokenTypeKeywordProgram,
				plc.TokenTypeKeywordProgram,
				plc.TokenTypeKeywordEndProgram,
			},
		},
		{
			name:  "identifiers keep their case",
			input: "myVar _private x1",
			expected: []plc.TokenType{
				plc.TokenTypeIdentifier,
				plc.TokenTypeIdentifier,
				plc.TokenTypeIdentifier,
			},
		},
		{
			name:  "assignment operators",
			input: ": := => REF= ^",
			expected: []plc.TokenType{
				plc.TokenTypeColon,
				plc.TokenTypeAssignment,
				plc.TokenTypeOutputAssignment,
				plc.TokenTypeReferenceAssignment,
				plc.TokenTypeDeref,
			},
		},
		{
			name:  "comparison operators",
			input: "= <> < > <= >=",
			expected: []plc.TokenType{
				plc.TokenTypeOperatorEqual,
				plc.TokenTypeOperatorNotEqual,
				plc.TokenTypeOperatorLess,
				plc.TokenTypeOperatorGreater,
				plc.TokenTypeOperatorLessOrEqual,
				plc.TokenTypeOperatorGreaterOrEqual,
			},
		},
		{
			name:  "exponent is one token",
			input: "x ** 2 * 3",
			expected: []plc.TokenType{
				plc.TokenTypeIdentifier,
				plc.TokenTypeOperatorExponent,
				plc.TokenTypeLiteralInteger,
				plc.TokenTypeOperatorMultiplication,
				plc.TokenTypeLiteralInteger,
			},
		},
		{
			name:  "range does not swallow a real",
			input: "1..5",
			expected: []plc.TokenType{
				plc.TokenTypeLiteralInteger,
				plc.TokenTypeDotDot,
				plc.TokenTypeLiteralInteger,
			},
		},
		{
			name:     "real literal",
			input:    "1.5",
			expected: []plc.TokenType{plc.TokenTypeLiteralReal},
		},
		{
			name:     "real with exponent",
			input:    "1.5e-3",
			expected: []plc.TokenType{plc.TokenTypeLiteralReal},
		},
		{
			name:     "radix literal",
			input:    "16#FF",
			expected: []plc.TokenType{plc.TokenTypeLiteralInteger},
		},
		{
			name:     "ellipsis",
			input:    "...",
			expected: []plc.TokenType{plc.TokenTypeDotDotDot},
		},
		{
			name:  "reference to is one token",
			input: "REFERENCE TO INT",
			expected: []plc.TokenType{
				plc.TokenTypeKeywordReferenceTo,
				plc.TokenTypeIdentifier,
			},
		},
		{
			name:  "pointer to stays two tokens",
			input: "POINTER TO INT",
			expected: []plc.TokenType{
				plc.TokenTypeKeywordPointer,
				plc.TokenTypeKeywordTo,
				plc.TokenTypeIdentifier,
			},
		},
		{
			name:     "ref_to keyword",
			input:    "REF_TO",
			expected: []plc.TokenType{plc.TokenTypeKeywordRef},
		},
		{
			name:  "hardware address splits into segments",
			input: "%IX1.2",
			expected: []plc.TokenType{
				plc.TokenTypeHardwareAccess,
				plc.TokenTypeLiteralInteger,
				plc.TokenTypeDot,
				plc.TokenTypeLiteralInteger,
			},
		},
		{
			name:     "hardware template form",
			input:    "%Q*",
			expected: []plc.TokenType{plc.TokenTypeHardwareAccess},
		},
		{
			name:  "line comment",
			input: "x // ignored\ny",
			expected: []plc.TokenType{
				plc.TokenTypeIdentifier,
				plc.TokenTypeIdentifier,
			},
		},
		{
			name:  "block comments",
			input: "x (* one *) y /* two */ z",
			expected: []plc.TokenType{
				plc.TokenTypeIdentifier,
				plc.TokenTypeIdentifier,
				plc.TokenTypeIdentifier,
			},
		},
		{
			name:  "pragmas",
			input: "{external} {constant} {ref} {sized}",
			expected: []plc.TokenType{
				plc.TokenTypePropertyExternal,
				plc.TokenTypePropertyConstant,
				plc.TokenTypePropertyByRef,
				plc.TokenTypePropertySized,
			},
		},
		{
			name:  "operator keywords",
			input: "a AND b OR NOT c MOD d",
			expected: []plc.TokenType{
				plc.TokenTypeIdentifier,
				plc.TokenTypeOperatorAnd,
				plc.TokenTypeIdentifier,
				plc.TokenTypeOperatorOr,
				plc.TokenTypeOperatorNot,
				plc.TokenTypeIdentifier,
				plc.TokenTypeOperatorModulo,
				plc.TokenTypeIdentifier,
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			tokens, _ := lexTokens(t, testCase.input)
			require.Equal(t, testCase.expected, tokenTypes(tokens))
		})
	}
}

func TestLexerValues(t *testing.T) {
	t.Parallel()

	tokens, reporter := lexTokens(t, "counter := 16#FF; (* *) msg := 'it$'s $$1$N';")
	require.Empty(t, reporter.Reported())
	require.Equal(t, []plc.TokenType{
		plc.TokenTypeIdentifier,
		plc.TokenTypeAssignment,
		plc.TokenTypeLiteralInteger,
		plc.TokenTypeSemicolon,
		plc.TokenTypeIdentifier,
		plc.TokenTypeAssignment,
		plc.TokenTypeLiteralString,
		plc.TokenTypeSemicolon,
	}, tokenTypes(tokens))
	require.Equal(t, "counter", tokens[0].Value)
	require.Equal(t, "16#FF", tokens[2].Value)
	require.Equal(t, "it's $1\n", tokens[6].Value)
}

func TestLexerHardwareAccessDetail(t *testing.T) {
	t.Parallel()

	tokens, reporter := lexTokens(t, "%IX1 %QB2 %MW3 %ML4")
	require.Empty(t, reporter.Reported())
	require.Len(t, tokens, 8)
	require.Equal(t, plc.HardwareAccessInput, tokens[0].Direction)
	require.Equal(t, plc.DirectAccessBit, tokens[0].Access)
	require.Equal(t, plc.HardwareAccessOutput, tokens[2].Direction)
	require.Equal(t, plc.DirectAccessByte, tokens[2].Access)
	require.Equal(t, plc.HardwareAccessMemory, tokens[4].Direction)
	require.Equal(t, plc.DirectAccessWord, tokens[4].Access)
	require.Equal(t, plc.DirectAccessLWord, tokens[6].Access)
}

func TestLexerUnknownPragma(t *testing.T) {
	t.Parallel()

	tokens, reporter := lexTokens(t, "{bogus} x")
	require.Equal(t, []plc.TokenType{plc.TokenTypeIdentifier}, tokenTypes(tokens))
	require.Len(t, reporter.Reported(), 1)
	require.Equal(t, exc.CodeUnexpectedToken, reporter.Reported()[0].Code())
}

func TestLexerPositions(t *testing.T) {
	t.Parallel()

	tokens, _ := lexTokens(t, "x\n  yy")
	require.Len(t, tokens, 2)
	require.Equal(t, int32(1), tokens[0].Span.Start.Line)
	require.Equal(t, int32(1), tokens[0].Span.Start.Column)
	require.Equal(t, int32(2), tokens[1].Span.Start.Line)
	require.Equal(t, int32(3), tokens[1].Span.Start.Column)
	require.Equal(t, int32(5), tokens[1].Span.End.Column)
}

func TestParseIntegerText(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected int64
		invalid  bool
	}{
		{input: "0", expected: 0},
		{input: "42", expected: 42},
		{input: "1_000", expected: 1000},
		{input: "2#1010", expected: 10},
		{input: "8#17", expected: 15},
		{input: "16#FF", expected: 255},
		{input: "16#ff_ff", expected: 65535},
		{input: "3#12", invalid: true},
		{input: "16#", invalid: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			value, err := parseIntegerText(testCase.input)
			if testCase.invalid {
				require.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			require.Equal(t, testCase.expected, value)
		})
	}
}
