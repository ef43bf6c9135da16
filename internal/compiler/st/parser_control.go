// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package st

import (
	"context"

	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

// parseBodyInRegion parses a statement list closed by one of the given
// keywords; the closer is consumed into last for the caller to dispatch on.
func (self *parseSession) parseBodyInRegion(ctx context.Context, closers []plc.TokenType) []plc.Node {
	return parseAnyInRegion(ctx, self, closers, func() []plc.Node {
		return self.parseBodyStandalone(ctx)
	})
}

// parseBodyStandalone parses statements until the current token closes an
// open region. The caller owns the region.
func (self *parseSession) parseBodyStandalone(ctx context.Context) []plc.Node {
	var statements []plc.Node
	for !self.closesOpenRegion(self.cur.Type) {
		statements = append(statements, self.parseControl(ctx))
	}
	return statements
}

func (self *parseSession) parseControl(ctx context.Context) plc.Node {
	start := self.cur.Span
	switch self.cur.Type {
	case plc.TokenTypeKeywordIf:
		return self.parseIfStatement(ctx)
	case plc.TokenTypeKeywordCase:
		return self.parseCaseStatement(ctx)
	case plc.TokenTypeKeywordFor:
		return self.parseForLoop(ctx)
	case plc.TokenTypeKeywordWhile:
		return self.parseWhileLoop(ctx)
	case plc.TokenTypeKeywordRepeat:
		return self.parseRepeatLoop(ctx)
	case plc.TokenTypeKeywordExit:
		self.advance(ctx)
		self.tryConsume(ctx, plc.TokenTypeSemicolon)
		return &plc.ExitStatement{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start}}
	case plc.TokenTypeKeywordContinue:
		self.advance(ctx)
		self.tryConsume(ctx, plc.TokenTypeSemicolon)
		return &plc.ContinueStatement{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start}}
	case plc.TokenTypeKeywordReturn:
		self.advance(ctx)
		self.tryConsume(ctx, plc.TokenTypeSemicolon)
		return &plc.ReturnStatement{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start}}
	default:
		return self.parseStatement(ctx)
	}
}

// parseStatement parses one expression statement up to its terminating
// semicolon. A statement terminated by a colon instead is a case label and
// comes back wrapped in a CaseCondition.
func (self *parseSession) parseStatement(ctx context.Context) plc.Node {
	closers := []plc.TokenType{plc.TokenTypeSemicolon, plc.TokenTypeColon}
	result := parseAnyInRegion(ctx, self, closers, func() plc.Node {
		return self.parseExpression(ctx)
	})
	if self.last.Type == plc.TokenTypeColon {
		return &plc.CaseCondition{
			NodeMeta:  plc.NodeMeta{ID: self.nextID(), Span: result.GetSpan().SpanTo(self.last.Span)},
			Condition: result,
		}
	}
	return result
}

// ifStatement = IF expression THEN body { ELSIF expression THEN body }
//               [ ELSE body ] END_IF .
func (self *parseSession) parseIfStatement(ctx context.Context) plc.Node {
	start := self.cur.Span
	self.advance(ctx)

	var blocks []plc.ConditionalBlock
	var elseBlock []plc.Node
	closers := []plc.TokenType{plc.TokenTypeKeywordElseIf, plc.TokenTypeKeywordElse, plc.TokenTypeKeywordEndIf}
	for {
		condition := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordThen}, func() plc.Node {
			return self.parseExpression(ctx)
		})
		body := self.parseBodyInRegion(ctx, closers)
		blocks = append(blocks, plc.ConditionalBlock{Condition: condition, Body: body})

		if self.last.Type == plc.TokenTypeKeywordElseIf {
			continue
		}
		if self.last.Type == plc.TokenTypeKeywordElse {
			elseBlock = self.parseBodyInRegion(ctx, []plc.TokenType{plc.TokenTypeKeywordEndIf})
		}
		break
	}
	self.tryConsume(ctx, plc.TokenTypeSemicolon)

	return &plc.IfStatement{
		NodeMeta:  plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
		Blocks:    blocks,
		ElseBlock: elseBlock,
	}
}

// caseStatement = CASE expression OF { caseCondition body } [ ELSE body ]
//                 END_CASE . The body is parsed flat; colon-terminated
//                 statements mark the condition boundaries and the flat list
//                 is grouped afterwards.
func (self *parseSession) parseCaseStatement(ctx context.Context) plc.Node {
	start := self.cur.Span
	self.advance(ctx)

	selector := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordOf}, func() plc.Node {
		return self.parseExpression(ctx)
	})

	closers := []plc.TokenType{plc.TokenTypeKeywordElse, plc.TokenTypeKeywordEndCase}
	flat := self.parseBodyInRegion(ctx, closers)

	var cases []plc.ConditionalBlock
	for _, statement := range flat {
		if condition, ok := statement.(*plc.CaseCondition); ok {
			cases = append(cases, plc.ConditionalBlock{Condition: condition.Condition})
			continue
		}
		if len(cases) == 0 {
			self.reportAt(statement.GetSpan(), exc.CodeGeneral,
				"case statement body before the first condition")
			continue
		}
		cases[len(cases)-1].Body = append(cases[len(cases)-1].Body, statement)
	}

	var elseBlock []plc.Node
	if self.last.Type == plc.TokenTypeKeywordElse {
		elseBlock = self.parseBodyInRegion(ctx, []plc.TokenType{plc.TokenTypeKeywordEndCase})
	}
	self.tryConsume(ctx, plc.TokenTypeSemicolon)

	return &plc.CaseStatement{
		NodeMeta:  plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
		Selector:  selector,
		Cases:     cases,
		ElseBlock: elseBlock,
	}
}

// forLoop = FOR reference ':=' expression TO expression [ BY expression ] DO
//           body END_FOR .
func (self *parseSession) parseForLoop(ctx context.Context) plc.Node {
	start := self.cur.Span
	self.advance(ctx)

	counter := self.parseReference(ctx)
	self.tryConsumeOrReport(ctx, plc.TokenTypeAssignment)
	loopStart := self.parseBinaryExpression(ctx, 0)
	self.tryConsumeOrReport(ctx, plc.TokenTypeKeywordTo)
	loopEnd := self.parseBinaryExpression(ctx, 0)

	var by plc.Node
	if self.tryConsume(ctx, plc.TokenTypeKeywordBy) {
		by = self.parseBinaryExpression(ctx, 0)
	}

	self.tryConsumeOrReport(ctx, plc.TokenTypeKeywordDo)
	body := self.parseBodyInRegion(ctx, []plc.TokenType{plc.TokenTypeKeywordEndFor})
	self.tryConsume(ctx, plc.TokenTypeSemicolon)

	return &plc.ForLoopStatement{
		NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
		Counter:  counter,
		Start:    loopStart,
		End:      loopEnd,
		By:       by,
		Body:     body,
	}
}

// whileLoop = WHILE expression DO body END_WHILE .
func (self *parseSession) parseWhileLoop(ctx context.Context) plc.Node {
	start := self.cur.Span
	self.advance(ctx)

	condition := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordDo}, func() plc.Node {
		return self.parseExpression(ctx)
	})
	body := self.parseBodyInRegion(ctx, []plc.TokenType{plc.TokenTypeKeywordEndWhile})
	self.tryConsume(ctx, plc.TokenTypeSemicolon)

	return &plc.WhileLoopStatement{
		NodeMeta:  plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
		Condition: condition,
		Body:      body,
	}
}

// repeatLoop = REPEAT body UNTIL expression END_REPEAT .
func (self *parseSession) parseRepeatLoop(ctx context.Context) plc.Node {
	start := self.cur.Span
	self.advance(ctx)

	body := self.parseBodyInRegion(ctx, []plc.TokenType{plc.TokenTypeKeywordUntil})
	condition := parseAnyInRegion(ctx, self, []plc.TokenType{plc.TokenTypeKeywordEndRepeat}, func() plc.Node {
		return self.parseExpression(ctx)
	})
	self.tryConsume(ctx, plc.TokenTypeSemicolon)

	return &plc.RepeatLoopStatement{
		NodeMeta:  plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
		Condition: condition,
		Body:      body,
	}
}
