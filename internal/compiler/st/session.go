// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package st

import (
	"context"
	"fmt"
	"strings"

	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/optional"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

// parseSession is the shared cursor and recovery state for one file. The
// parse functions in this package hang off of it.
//
// Error recovery is region based. Every nested construct pushes the set of
// tokens that may close it; when a parse function gets stuck it reports once
// and skips forward until the current token closes one of the open regions.
// A token closing an outer region is left in place for that outer region to
// consume, so a missing END_VAR does not eat the END_PROGRAM behind it.
type parseSession struct {
	uri      string
	tokens   plc.Iterator[*plc.Token]
	reporter exc.Reporter
	ids      plc.IdProvider
	linkage  plc.LinkageType

	// cur is the token under the cursor, never nil; at the end of input it
	// is a synthetic EOF token. last is the most recently consumed token.
	cur  *plc.Token
	last *plc.Token

	regions [][]plc.TokenType
	scope   optional.Optional[string]
}

func newParseSession(ctx context.Context, uri string, tokens plc.Iterator[*plc.Token], reporter exc.Reporter, ids plc.IdProvider, linkage plc.LinkageType) *parseSession {
	self := &parseSession{
		uri:      uri,
		tokens:   tokens,
		reporter: reporter,
		ids:      ids,
		linkage:  linkage,
		last:     &plc.Token{Type: plc.TokenTypeEOF},
	}
	self.cur = self.fetch(ctx)
	return self
}

func (self *parseSession) fetch(ctx context.Context) *plc.Token {
	t := self.tokens.Next(ctx)
	if !t.IsPresent() {
		end := self.last.Span.End
		return &plc.Token{
			Span: plc.Span{Start: end, End: end},
			Type: plc.TokenTypeEOF,
		}
	}
	return t.Value()
}

func (self *parseSession) nextID() int64 {
	return self.ids.Next()
}

func (self *parseSession) advance(ctx context.Context) {
	self.last = self.cur
	self.cur = self.fetch(ctx)
}

// consume returns the current token and advances past it.
func (self *parseSession) consume(ctx context.Context) *plc.Token {
	t := self.cur
	self.advance(ctx)
	return t
}

// sliceAndAdvance returns the current token's text and advances past it.
func (self *parseSession) sliceAndAdvance(ctx context.Context) string {
	return self.consume(ctx).Value
}

func (self *parseSession) loc() exc.Location {
	return exc.Location{
		URI:      self.uri,
		Location: self.cur.Span.Start,
	}
}

func (self *parseSession) locOf(span plc.Span) exc.Location {
	return exc.Location{
		URI:      self.uri,
		Location: span.Start,
	}
}

func (self *parseSession) report(code string, message string) {
	_ = self.reporter.Report(exc.New(self.loc(), code, message))
}

func (self *parseSession) reportAt(span plc.Span, code string, message string) {
	_ = self.reporter.Report(exc.New(self.locOf(span), code, message))
}

func (self *parseSession) reportUnexpected(context string) {
	self.report(exc.CodeUnexpectedToken,
		fmt.Sprintf("unexpected token %s in %s", self.cur.Type, context))
}

// tryConsume advances past the current token when it has the given type.
func (self *parseSession) tryConsume(ctx context.Context, tt plc.TokenType) bool {
	if self.cur.Type != tt {
		return false
	}
	self.advance(ctx)
	return true
}

// tryConsumeOrReport is tryConsume with a missing-token diagnostic on the
// failure path. The cursor does not move on failure.
func (self *parseSession) tryConsumeOrReport(ctx context.Context, tt plc.TokenType) bool {
	if self.tryConsume(ctx, tt) {
		return true
	}
	self.report(exc.CodeMissingToken,
		fmt.Sprintf("expected %s but found %s", tt, self.cur.Type))
	return false
}

func (self *parseSession) enterRegion(closers []plc.TokenType) {
	self.regions = append(self.regions, closers)
}

// closesOpenRegion reports whether the token type closes any open region.
// EOF closes everything so that recovery always terminates.
func (self *parseSession) closesOpenRegion(tt plc.TokenType) bool {
	if tt == plc.TokenTypeEOF {
		return true
	}
	for _, frame := range self.regions {
		for _, closer := range frame {
			if closer == tt {
				return true
			}
		}
	}
	return false
}

// closeRegion pops the innermost region. When the current token is one of
// its closers it is consumed, so callers can inspect the closer afterwards
// through last. A token closing an outer region stays put and a missing
// closer diagnostic is reported here instead.
func (self *parseSession) closeRegion(ctx context.Context) {
	frame := self.regions[len(self.regions)-1]
	self.regions = self.regions[:len(self.regions)-1]
	for _, closer := range frame {
		if self.cur.Type == closer {
			self.advance(ctx)
			return
		}
	}
	names := make([]string, 0, len(frame))
	for _, closer := range frame {
		names = append(names, closer.String())
	}
	self.report(exc.CodeMissingToken,
		fmt.Sprintf("expected %s but found %s", strings.Join(names, " or "), self.cur.Type))
}

// recoverUntilClose skips tokens until the current one closes an open region.
func (self *parseSession) recoverUntilClose(ctx context.Context) {
	for !self.closesOpenRegion(self.cur.Type) {
		self.advance(ctx)
	}
}

// parseAnyInRegion runs a parse function inside a region closed by the given
// tokens. Whatever the function leaves behind short of a closer is reported
// once and skipped, and the closer itself is consumed into last.
func parseAnyInRegion[T any](ctx context.Context, self *parseSession, closers []plc.TokenType, parse func() T) T {
	self.enterRegion(closers)
	result := parse()
	if !self.closesOpenRegion(self.cur.Type) {
		self.reportUnexpected("declaration")
		self.recoverUntilClose(ctx)
	}
	self.closeRegion(ctx)
	return result
}

// withScope qualifies names parsed by the function with a container name,
// used for methods, properties, and actions nested in a parent declaration.
func withScope[T any](self *parseSession, scope string, parse func() T) T {
	prev := self.scope
	self.scope = optional.Some(scope)
	defer func() { self.scope = prev }()
	return parse()
}

// scopedName applies the active container scope to a declaration name.
func (self *parseSession) scopedName(name string) string {
	if self.scope.IsPresent() {
		return plc.QualifiedName(self.scope.Value(), name)
	}
	return name
}
