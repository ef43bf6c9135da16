// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package plc

import (
	"context"

	"gopkg.ieclang.org/compiler.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

// CodePoint is a single unicode code point of source text.
type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

// Location is a point in a source file. Offset counts code points from the
// beginning of the file, Line and Column are 1-based.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

// Span is a half-open region of source text.
type Span struct {
	Start Location
	End   Location
}

func (s Span) SpanTo(other Span) Span {
	return Span{Start: s.Start, End: other.End}
}

// Lexer converts source text into a token stream. Implementations report
// malformed input through their reporter and keep scanning.
type Lexer interface {
	Lex(ctx context.Context, uri string, source string) (Iterator[*Token], error)
}

// Parser converts a token stream into a compilation unit. The unit is always
// produced; callers decide aggregate failure from the reporter's severity.
type Parser interface {
	Parse(ctx context.Context, uri string, tokens Iterator[*Token]) (*CompilationUnit, error)
}

type CompileRequest struct {
	Files      []string
	Linkage    LinkageType
	DumpTokens bool
	DumpTree   bool
}

type CompileResponse struct {
	Units []*CompilationUnit
}
