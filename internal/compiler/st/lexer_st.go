// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package st

import (
	"context"
	"fmt"
	"strings"

	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/iter"
	"gopkg.ieclang.org/compiler.go/internal/optional"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

const (
	lexerSTLookahead = 8
)

// LexerST implements a tokenizer for IEC-61131-3 structured text.
type LexerST struct {
	reporter exc.Reporter
}

func NewLexerST(reporter exc.Reporter) *LexerST {
	return &LexerST{reporter: reporter}
}

func (self *LexerST) Lex(ctx context.Context, uri string, source string) (plc.Iterator[*plc.Token], error) {
	points := iter.NewLookahead(iter.NewUnicodeString(source), lexerSTLookahead)
	return &lexerSTTokens{
		uri:      uri,
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      0,
		offset:   -1,
	}, nil
}

type lexerSTTokens struct {
	uri      string
	body     plc.Lookahead[plc.CodePoint]
	reporter exc.Reporter
	line     int32
	col      int32
	offset   int64
	newline  bool
	// hardwareAddress makes `1.2` lex as integer, dot, integer right after a
	// hardware access token.
	hardwareAddress bool
}

var stKeywords = map[string]plc.TokenType{
	"PROGRAM":            plc.TokenTypeKeywordProgram,
	"END_PROGRAM":        plc.TokenTypeKeywordEndProgram,
	"FUNCTION":           plc.TokenTypeKeywordFunction,
	"END_FUNCTION":       plc.TokenTypeKeywordEndFunction,
	"FUNCTION_BLOCK":     plc.TokenTypeKeywordFunctionBlock,
	"END_FUNCTION_BLOCK": plc.TokenTypeKeywordEndFunctionBlock,
	"CLASS":              plc.TokenTypeKeywordClass,
	"END_CLASS":          plc.TokenTypeKeywordEndClass,
	"METHOD":             plc.TokenTypeKeywordMethod,
	"END_METHOD":         plc.TokenTypeKeywordEndMethod,
	"PROPERTY":           plc.TokenTypeKeywordProperty,
	"END_PROPERTY":       plc.TokenTypeKeywordEndProperty,
	"GET":                plc.TokenTypeKeywordGet,
	"END_GET":            plc.TokenTypeKeywordEndGet,
	"SET":                plc.TokenTypeKeywordSet,
	"END_SET":            plc.TokenTypeKeywordEndSet,
	"INTERFACE":          plc.TokenTypeKeywordInterface,
	"END_INTERFACE":      plc.TokenTypeKeywordEndInterface,
	"EXTENDS":            plc.TokenTypeKeywordExtends,
	"IMPLEMENTS":         plc.TokenTypeKeywordImplements,
	"FINAL":              plc.TokenTypeKeywordFinal,
	"ABSTRACT":           plc.TokenTypeKeywordAbstract,
	"OVERRIDE":           plc.TokenTypeKeywordOverride,
	"PUBLIC":             plc.TokenTypeKeywordAccessPublic,
	"PRIVATE":            plc.TokenTypeKeywordAccessPrivate,
	"PROTECTED":          plc.TokenTypeKeywordAccessProtected,
	"INTERNAL":           plc.TokenTypeKeywordAccessInternal,
	"ACTION":             plc.TokenTypeKeywordAction,
	"END_ACTION":         plc.TokenTypeKeywordEndAction,
	"ACTIONS":            plc.TokenTypeKeywordActions,
	"END_ACTIONS":        plc.TokenTypeKeywordEndActions,
	"VAR":                plc.TokenTypeKeywordVar,
	"VAR_INPUT":          plc.TokenTypeKeywordVarInput,
	"VAR_OUTPUT":         plc.TokenTypeKeywordVarOutput,
	"VAR_IN_OUT":         plc.TokenTypeKeywordVarInOut,
	"VAR_GLOBAL":         plc.TokenTypeKeywordVarGlobal,
	"VAR_TEMP":           plc.TokenTypeKeywordVarTemp,
	"VAR_EXTERNAL":       plc.TokenTypeKeywordVarExternal,
	"VAR_CONFIG":         plc.TokenTypeKeywordVarConfig,
	"END_VAR":            plc.TokenTypeKeywordEndVar,
	"CONSTANT":           plc.TokenTypeKeywordConstant,
	"RETAIN":             plc.TokenTypeKeywordRetain,
	"NON_RETAIN":         plc.TokenTypeKeywordNonRetain,
	"AT":                 plc.TokenTypeKeywordAt,
	"TYPE":               plc.TokenTypeKeywordType,
	"END_TYPE":           plc.TokenTypeKeywordEndType,
	"STRUCT":             plc.TokenTypeKeywordStruct,
	"END_STRUCT":         plc.TokenTypeKeywordEndStruct,
	"ARRAY":              plc.TokenTypeKeywordArray,
	"OF":                 plc.TokenTypeKeywordOf,
	"POINTER":            plc.TokenTypeKeywordPointer,
	"TO":                 plc.TokenTypeKeywordTo,
	"REF_TO":             plc.TokenTypeKeywordRef,
	"STRING":             plc.TokenTypeKeywordString,
	"WSTRING":            plc.TokenTypeKeywordWideString,
	"IF":                 plc.TokenTypeKeywordIf,
	"THEN":               plc.TokenTypeKeywordThen,
	"ELSIF":              plc.TokenTypeKeywordElseIf,
	"ELSE":               plc.TokenTypeKeywordElse,
	"END_IF":             plc.TokenTypeKeywordEndIf,
	"CASE":               plc.TokenTypeKeywordCase,
	"END_CASE":           plc.TokenTypeKeywordEndCase,
	"FOR":                plc.TokenTypeKeywordFor,
	"BY":                 plc.TokenTypeKeywordBy,
	"DO":                 plc.TokenTypeKeywordDo,
	"END_FOR":            plc.TokenTypeKeywordEndFor,
	"WHILE":              plc.TokenTypeKeywordWhile,
	"END_WHILE":          plc.TokenTypeKeywordEndWhile,
	"REPEAT":             plc.TokenTypeKeywordRepeat,
	"UNTIL":              plc.TokenTypeKeywordUntil,
	"END_REPEAT":         plc.TokenTypeKeywordEndRepeat,
	"EXIT":               plc.TokenTypeKeywordExit,
	"CONTINUE":           plc.TokenTypeKeywordContinue,
	"RETURN":             plc.TokenTypeKeywordReturn,
	"TRUE":               plc.TokenTypeLiteralTrue,
	"FALSE":              plc.TokenTypeLiteralFalse,
	"AND":                plc.TokenTypeOperatorAnd,
	"OR":                 plc.TokenTypeOperatorOr,
	"XOR":                plc.TokenTypeOperatorXor,
	"NOT":                plc.TokenTypeOperatorNot,
	"MOD":                plc.TokenTypeOperatorModulo,
}

var stPragmas = map[string]plc.TokenType{
	"external": plc.TokenTypePropertyExternal,
	"constant": plc.TokenTypePropertyConstant,
	"ref":      plc.TokenTypePropertyByRef,
	"sized":    plc.TokenTypePropertySized,
}

func (self *lexerSTTokens) exc(code string, message string) exc.Exception {
	return exc.New(exc.Location{
		URI:      self.uri,
		Location: self.pos(),
	}, code, message)
}

// next consumes one code point and keeps line/column/offset accounting.
func (self *lexerSTTokens) next(ctx context.Context) optional.Optional[plc.CodePoint] {
	p := self.body.Next(ctx)
	if p.IsPresent() {
		self.offset = self.offset + 1
		if self.newline {
			self.line = self.line + 1
			self.col = 0
			self.newline = false
		}
		self.col = self.col + 1
		if rune(p.Value()) == '\n' {
			self.newline = true
		}
	}
	return p
}

// peek returns the n-th not yet consumed code point, 0-based, or 0 at the end
// of input. Lookahead(0) is the point next returned before it was consumed, so
// the index shifts by one.
func (self *lexerSTTokens) peek(ctx context.Context, n uint8) rune {
	p := self.body.Lookahead(ctx, n+1)
	if !p.IsPresent() {
		return 0
	}
	return rune(p.Value())
}

// pos is the location of the most recently consumed code point.
func (self *lexerSTTokens) pos() plc.Location {
	return plc.Location{Line: self.line, Column: self.col, Offset: self.offset}
}

func (self *lexerSTTokens) endPos() plc.Location {
	return plc.Location{Line: self.line, Column: self.col + 1, Offset: self.offset + 1}
}

func (self *lexerSTTokens) token(start plc.Location, tt plc.TokenType, value string) optional.Optional[*plc.Token] {
	self.hardwareAddress = self.hardwareAddress &&
		(tt == plc.TokenTypeLiteralInteger || tt == plc.TokenTypeDot)
	return optional.Some(&plc.Token{
		Span:  plc.Span{Start: start, End: self.endPos()},
		Type:  tt,
		Value: value,
	})
}

func (self *lexerSTTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func (self *lexerSTTokens) Next(ctx context.Context) optional.Optional[*plc.Token] {
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		start := self.pos()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			continue
		case r == '/' && self.peek(ctx, 0) == '/':
			for p := self.next(ctx); p.IsPresent() && rune(p.Value()) != '\n'; p = self.next(ctx) {
			}
			continue
		case r == '/' && self.peek(ctx, 0) == '*':
			self.skipBlockComment(ctx, '/')
			continue
		case r == '(' && self.peek(ctx, 0) == '*':
			self.skipBlockComment(ctx, ')')
			continue
		case r == '(':
			return self.token(start, plc.TokenTypeParensOpen, "(")
		case r == ')':
			return self.token(start, plc.TokenTypeParensClose, ")")
		case r == '[':
			return self.token(start, plc.TokenTypeSquareOpen, "[")
		case r == ']':
			return self.token(start, plc.TokenTypeSquareClose, "]")
		case r == ',':
			return self.token(start, plc.TokenTypeComma, ",")
		case r == ';':
			return self.token(start, plc.TokenTypeSemicolon, ";")
		case r == '^':
			return self.token(start, plc.TokenTypeDeref, "^")
		case r == '+':
			return self.token(start, plc.TokenTypeOperatorPlus, "+")
		case r == '-':
			return self.token(start, plc.TokenTypeOperatorMinus, "-")
		case r == '/':
			return self.token(start, plc.TokenTypeOperatorDivision, "/")
		case r == '*':
			if self.peek(ctx, 0) == '*' {
				self.next(ctx)
				return self.token(start, plc.TokenTypeOperatorExponent, "**")
			}
			return self.token(start, plc.TokenTypeOperatorMultiplication, "*")
		case r == ':':
			if self.peek(ctx, 0) == '=' {
				self.next(ctx)
				return self.token(start, plc.TokenTypeAssignment, ":=")
			}
			return self.token(start, plc.TokenTypeColon, ":")
		case r == '=':
			if self.peek(ctx, 0) == '>' {
				self.next(ctx)
				return self.token(start, plc.TokenTypeOutputAssignment, "=>")
			}
			return self.token(start, plc.TokenTypeOperatorEqual, "=")
		case r == '<':
			switch self.peek(ctx, 0) {
			case '=':
				self.next(ctx)
				return self.token(start, plc.TokenTypeOperatorLessOrEqual, "<=")
			case '>':
				self.next(ctx)
				return self.token(start, plc.TokenTypeOperatorNotEqual, "<>")
			}
			return self.token(start, plc.TokenTypeOperatorLess, "<")
		case r == '>':
			if self.peek(ctx, 0) == '=' {
				self.next(ctx)
				return self.token(start, plc.TokenTypeOperatorGreaterOrEqual, ">=")
			}
			return self.token(start, plc.TokenTypeOperatorGreater, ">")
		case r == '.':
			if self.peek(ctx, 0) == '.' {
				self.next(ctx)
				if self.peek(ctx, 0) == '.' {
					self.next(ctx)
					return self.token(start, plc.TokenTypeDotDotDot, "...")
				}
				return self.token(start, plc.TokenTypeDotDot, "..")
			}
			return self.token(start, plc.TokenTypeDot, ".")
		case r == '\'':
			return self.readString(ctx, start, '\'', plc.TokenTypeLiteralString)
		case r == '"':
			return self.readString(ctx, start, '"', plc.TokenTypeLiteralWideString)
		case r == '%':
			return self.readHardwareAccess(ctx, start)
		case r == '{':
			if tok, ok := self.readPragma(ctx, start); ok {
				return tok
			}
			continue
		case r >= '0' && r <= '9':
			return self.readNumber(ctx, start, r)
		case isIdentStart(r):
			return self.readWord(ctx, start, r)
		default:
			return self.token(start, plc.TokenTypeUnknown, string(r))
		}
	}
	return optional.None[*plc.Token]()
}

// skipBlockComment is entered after the opening pair's first character was
// consumed; terminator is ')' for `(* *)` and '/' for `/* */`.
func (self *lexerSTTokens) skipBlockComment(ctx context.Context, terminator rune) {
	self.next(ctx) // the '*'
	for p := self.next(ctx); p.IsPresent(); p = self.next(ctx) {
		if rune(p.Value()) == '*' && self.peek(ctx, 0) == terminator {
			self.next(ctx)
			return
		}
	}
	_ = self.reporter.Report(self.exc(exc.CodeMissingToken, "unterminated block comment"))
}

func (self *lexerSTTokens) readString(ctx context.Context, start plc.Location, quote rune, tt plc.TokenType) optional.Optional[*plc.Token] {
	var value strings.Builder
	for p := self.next(ctx); p.IsPresent(); p = self.next(ctx) {
		r := rune(p.Value())
		if r == quote {
			return self.token(start, tt, value.String())
		}
		if r == '$' {
			e := self.next(ctx)
			if !e.IsPresent() {
				break
			}
			switch rune(e.Value()) {
			case '$':
				value.WriteRune('$')
			case '\'':
				value.WriteRune('\'')
			case '"':
				value.WriteRune('"')
			case 'n', 'N', 'l', 'L':
				value.WriteRune('\n')
			case 't', 'T':
				value.WriteRune('\t')
			case 'r', 'R':
				value.WriteRune('\r')
			case 'p', 'P':
				value.WriteRune('\f')
			default:
				value.WriteRune(rune(e.Value()))
			}
			continue
		}
		value.WriteRune(r)
	}
	_ = self.reporter.Report(self.exc(exc.CodeMissingToken, "unterminated string literal"))
	return self.token(start, tt, value.String())
}

// readHardwareAccess scans the `%IX` part of a direct address; the integer
// segments that follow stay separate tokens for the parser to consume.
func (self *lexerSTTokens) readHardwareAccess(ctx context.Context, start plc.Location) optional.Optional[*plc.Token] {
	var direction plc.HardwareAccessType
	switch self.peek(ctx, 0) {
	case 'i', 'I':
		direction = plc.HardwareAccessInput
	case 'q', 'Q':
		direction = plc.HardwareAccessOutput
	case 'm', 'M':
		direction = plc.HardwareAccessMemory
	default:
		_ = self.reporter.Report(self.exc(exc.CodeUnexpectedToken,
			fmt.Sprintf("invalid hardware access direction %q", self.peek(ctx, 0))))
		return self.token(start, plc.TokenTypeUnknown, "%")
	}
	self.next(ctx)

	var access plc.DirectAccessType
	switch self.peek(ctx, 0) {
	case 'x', 'X':
		access = plc.DirectAccessBit
	case 'b', 'B':
		access = plc.DirectAccessByte
	case 'w', 'W':
		access = plc.DirectAccessWord
	case 'd', 'D':
		access = plc.DirectAccessDWord
	case 'l', 'L':
		access = plc.DirectAccessLWord
	case '*':
		access = plc.DirectAccessTemplate
	default:
		_ = self.reporter.Report(self.exc(exc.CodeUnexpectedToken,
			fmt.Sprintf("invalid hardware access width %q", self.peek(ctx, 0))))
		return self.token(start, plc.TokenTypeUnknown, "%"+direction.String())
	}
	self.next(ctx)

	tok := self.token(start, plc.TokenTypeHardwareAccess, "%"+direction.String()+access.String())
	t := tok.Value()
	t.Direction = direction
	t.Access = access
	self.hardwareAddress = access != plc.DirectAccessTemplate
	return tok
}

func (self *lexerSTTokens) readPragma(ctx context.Context, start plc.Location) (optional.Optional[*plc.Token], bool) {
	var word strings.Builder
	for {
		p := self.next(ctx)
		if !p.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeMissingToken, "unterminated pragma"))
			return optional.None[*plc.Token](), false
		}
		if rune(p.Value()) == '}' {
			break
		}
		word.WriteRune(rune(p.Value()))
	}
	name := strings.ToLower(strings.TrimSpace(word.String()))
	if tt, ok := stPragmas[name]; ok {
		return self.token(start, tt, "{"+name+"}"), true
	}
	_ = self.reporter.Report(self.exc(exc.CodeUnexpectedToken, fmt.Sprintf("unknown pragma {%s}", name)))
	return optional.None[*plc.Token](), false
}

func (self *lexerSTTokens) readNumber(ctx context.Context, start plc.Location, first rune) optional.Optional[*plc.Token] {
	var value strings.Builder
	value.WriteRune(first)
	for isDigit(self.peek(ctx, 0)) || self.peek(ctx, 0) == '_' {
		value.WriteRune(rune(self.next(ctx).Value()))
	}

	// Radix literal such as 16#FF or 2#1010_1010.
	if self.peek(ctx, 0) == '#' {
		value.WriteRune(rune(self.next(ctx).Value()))
		for isHexDigit(self.peek(ctx, 0)) || self.peek(ctx, 0) == '_' {
			value.WriteRune(rune(self.next(ctx).Value()))
		}
		return self.token(start, plc.TokenTypeLiteralInteger, value.String())
	}

	isReal := false
	if self.peek(ctx, 0) == '.' && !self.hardwareAddress && isDigit(self.peek(ctx, 1)) {
		isReal = true
		value.WriteRune(rune(self.next(ctx).Value()))
		for isDigit(self.peek(ctx, 0)) || self.peek(ctx, 0) == '_' {
			value.WriteRune(rune(self.next(ctx).Value()))
		}
	}
	if e := self.peek(ctx, 0); e == 'e' || e == 'E' {
		n := self.peek(ctx, 1)
		if isDigit(n) || ((n == '+' || n == '-') && isDigit(self.peek(ctx, 2))) {
			isReal = true
			value.WriteRune(rune(self.next(ctx).Value()))
			if !isDigit(self.peek(ctx, 0)) {
				value.WriteRune(rune(self.next(ctx).Value()))
			}
			for isDigit(self.peek(ctx, 0)) {
				value.WriteRune(rune(self.next(ctx).Value()))
			}
		}
	}
	if isReal {
		return self.token(start, plc.TokenTypeLiteralReal, value.String())
	}
	return self.token(start, plc.TokenTypeLiteralInteger, value.String())
}

func (self *lexerSTTokens) readWord(ctx context.Context, start plc.Location, first rune) optional.Optional[*plc.Token] {
	var word strings.Builder
	word.WriteRune(first)
	for isIdentPart(self.peek(ctx, 0)) {
		word.WriteRune(rune(self.next(ctx).Value()))
	}
	text := word.String()
	upper := strings.ToUpper(text)

	// REF= is a single assignment token.
	if upper == "REF" && self.peek(ctx, 0) == '=' {
		self.next(ctx)
		return self.token(start, plc.TokenTypeReferenceAssignment, "REF=")
	}

	// REFERENCE TO spans two words but is one token.
	if upper == "REFERENCE" {
		if n, ok := self.peekReferenceTo(ctx); ok {
			for x := 0; x < n; x = x + 1 {
				self.next(ctx)
			}
			return self.token(start, plc.TokenTypeKeywordReferenceTo, "REFERENCE TO")
		}
	}

	if tt, ok := stKeywords[upper]; ok {
		return self.token(start, tt, text)
	}
	return self.token(start, plc.TokenTypeIdentifier, text)
}

// peekReferenceTo reports whether the upcoming code points spell ` TO` with a
// word boundary after it, and how many points to consume if so.
func (self *lexerSTTokens) peekReferenceTo(ctx context.Context) (int, bool) {
	i := uint8(0)
	for self.peek(ctx, i) == ' ' || self.peek(ctx, i) == '\t' {
		i = i + 1
		if int(i) > lexerSTLookahead-3 {
			return 0, false
		}
	}
	if i == 0 {
		return 0, false
	}
	if t := self.peek(ctx, i); t != 't' && t != 'T' {
		return 0, false
	}
	if o := self.peek(ctx, i+1); o != 'o' && o != 'O' {
		return 0, false
	}
	if isIdentPart(self.peek(ctx, i+2)) {
		return 0, false
	}
	return int(i) + 2, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
