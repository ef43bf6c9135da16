// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package st

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.ieclang.org/compiler.go/internal/exc"
	"gopkg.ieclang.org/compiler.go/internal/plc"
)

// The expression grammar, loosest binding first:
//
//	expression     = assignment { ',' assignment } .
//	assignment     = range [ (':=' | '=>' | 'REF=') range ] .
//	range          = or [ '..' or ] .
//	or             = xor { OR xor } .
//	xor            = and { XOR and } .
//	and            = equality { AND equality } .
//	equality       = relational { ('=' | '<>') relational } .
//	relational     = additive { ('<' | '>' | '<=' | '>=') additive } .
//	additive       = term { ('+' | '-') term } .
//	term           = power { ('*' | '/' | MOD) power } .
//	power          = unary { '**' unary } .
//	unary          = [ NOT | '-' | '+' ] postfix .
//	postfix        = leaf { '.' name | '[' expression ']' | '(' [ expression ] ')' | '^' } .
//
// Parse functions always return a node; a leaf that cannot start an
// expression is reported and yields an empty statement for the surrounding
// region to recover from.

func (self *parseSession) parseExpression(ctx context.Context) plc.Node {
	return self.parseExpressionList(ctx)
}

func (self *parseSession) parseExpressionList(ctx context.Context) plc.Node {
	start := self.cur.Span
	expressions := []plc.Node{self.parseAssignment(ctx)}
	for self.tryConsume(ctx, plc.TokenTypeComma) {
		expressions = append(expressions, self.parseAssignment(ctx))
	}
	if len(expressions) == 1 {
		return expressions[0]
	}
	return &plc.ExpressionList{
		NodeMeta:    plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
		Expressions: expressions,
	}
}

func (self *parseSession) parseAssignment(ctx context.Context) plc.Node {
	left := self.parseRange(ctx)
	switch {
	case self.tryConsume(ctx, plc.TokenTypeAssignment):
		right := self.parseRange(ctx)
		return &plc.Assignment{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: left.GetSpan().SpanTo(right.GetSpan())},
			Left:     left,
			Right:    right,
		}
	case self.tryConsume(ctx, plc.TokenTypeOutputAssignment):
		right := self.parseRange(ctx)
		return &plc.OutputAssignment{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: left.GetSpan().SpanTo(right.GetSpan())},
			Left:     left,
			Right:    right,
		}
	case self.tryConsume(ctx, plc.TokenTypeReferenceAssignment):
		right := self.parseRange(ctx)
		return &plc.RefAssignment{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: left.GetSpan().SpanTo(right.GetSpan())},
			Left:     left,
			Right:    right,
		}
	}
	return left
}

func (self *parseSession) parseRange(ctx context.Context) plc.Node {
	start := self.parseBinaryExpression(ctx, 0)
	if !self.tryConsume(ctx, plc.TokenTypeDotDot) {
		return start
	}
	end := self.parseBinaryExpression(ctx, 0)
	return &plc.RangeStatement{
		NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start.GetSpan().SpanTo(end.GetSpan())},
		Start:    start,
		End:      end,
	}
}

// binaryLevels orders the binary operators from loosest to tightest binding.
var binaryLevels = [][]plc.TokenType{
	{plc.TokenTypeOperatorOr},
	{plc.TokenTypeOperatorXor},
	{plc.TokenTypeOperatorAnd},
	{plc.TokenTypeOperatorEqual, plc.TokenTypeOperatorNotEqual},
	{plc.TokenTypeOperatorLess, plc.TokenTypeOperatorGreater,
		plc.TokenTypeOperatorLessOrEqual, plc.TokenTypeOperatorGreaterOrEqual},
	{plc.TokenTypeOperatorPlus, plc.TokenTypeOperatorMinus},
	{plc.TokenTypeOperatorMultiplication, plc.TokenTypeOperatorDivision, plc.TokenTypeOperatorModulo},
	{plc.TokenTypeOperatorExponent},
}

var binaryOperators = map[plc.TokenType]plc.Operator{
	plc.TokenTypeOperatorOr:             plc.OperatorOr,
	plc.TokenTypeOperatorXor:            plc.OperatorXor,
	plc.TokenTypeOperatorAnd:            plc.OperatorAnd,
	plc.TokenTypeOperatorEqual:          plc.OperatorEqual,
	plc.TokenTypeOperatorNotEqual:       plc.OperatorNotEqual,
	plc.TokenTypeOperatorLess:           plc.OperatorLess,
	plc.TokenTypeOperatorGreater:        plc.OperatorGreater,
	plc.TokenTypeOperatorLessOrEqual:    plc.OperatorLessOrEqual,
	plc.TokenTypeOperatorGreaterOrEqual: plc.OperatorGreaterOrEqual,
	plc.TokenTypeOperatorPlus:           plc.OperatorPlus,
	plc.TokenTypeOperatorMinus:          plc.OperatorMinus,
	plc.TokenTypeOperatorMultiplication: plc.OperatorMultiplication,
	plc.TokenTypeOperatorDivision:       plc.OperatorDivision,
	plc.TokenTypeOperatorModulo:         plc.OperatorModulo,
	plc.TokenTypeOperatorExponent:       plc.OperatorExponentiation,
}

func (self *parseSession) parseBinaryExpression(ctx context.Context, level int) plc.Node {
	if level >= len(binaryLevels) {
		return self.parseUnaryExpression(ctx)
	}
	left := self.parseBinaryExpression(ctx, level+1)
	for {
		matched := false
		for _, tt := range binaryLevels[level] {
			if self.cur.Type == tt {
				self.advance(ctx)
				right := self.parseBinaryExpression(ctx, level+1)
				left = &plc.BinaryExpr{
					NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: left.GetSpan().SpanTo(right.GetSpan())},
					Operator: binaryOperators[tt],
					Left:     left,
					Right:    right,
				}
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

func (self *parseSession) parseUnaryExpression(ctx context.Context) plc.Node {
	start := self.cur.Span
	switch self.cur.Type {
	case plc.TokenTypeOperatorNot:
		self.advance(ctx)
		operand := self.parseUnaryExpression(ctx)
		return &plc.UnaryExpr{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(operand.GetSpan())},
			Operator: plc.OperatorNot,
			Operand:  operand,
		}
	case plc.TokenTypeOperatorMinus:
		self.advance(ctx)
		operand := self.parseUnaryExpression(ctx)
		return &plc.UnaryExpr{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(operand.GetSpan())},
			Operator: plc.OperatorMinus,
			Operand:  operand,
		}
	case plc.TokenTypeOperatorPlus:
		// a unary plus is a no-op
		self.advance(ctx)
		return self.parseUnaryExpression(ctx)
	}
	return self.parsePostfixExpression(ctx)
}

func (self *parseSession) parsePostfixExpression(ctx context.Context) plc.Node {
	base := self.parseLeafExpression(ctx)
	for {
		start := base.GetSpan()
		switch {
		case self.tryConsume(ctx, plc.TokenTypeDot):
			if self.cur.Type != plc.TokenTypeIdentifier {
				self.report(exc.CodeUnexpectedToken,
					fmt.Sprintf("expected a member name but found %s", self.cur.Type))
				return base
			}
			name := self.sliceAndAdvance(ctx)
			base = &plc.MemberExpr{
				NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
				Base:     base,
				Name:     name,
			}
		case self.tryConsume(ctx, plc.TokenTypeSquareOpen):
			index := self.parseExpression(ctx)
			self.tryConsumeOrReport(ctx, plc.TokenTypeSquareClose)
			base = &plc.IndexExpr{
				NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
				Base:     base,
				Index:    index,
			}
		case self.tryConsume(ctx, plc.TokenTypeParensOpen):
			var parameters plc.Node
			if self.cur.Type != plc.TokenTypeParensClose {
				parameters = self.parseExpression(ctx)
			}
			self.tryConsumeOrReport(ctx, plc.TokenTypeParensClose)
			base = &plc.CallStatement{
				NodeMeta:   plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
				Operator:   base,
				Parameters: parameters,
			}
		case self.tryConsume(ctx, plc.TokenTypeDeref):
			base = &plc.DerefExpr{
				NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start.SpanTo(self.last.Span)},
				Base:     base,
			}
		default:
			return base
		}
	}
}

func (self *parseSession) parseLeafExpression(ctx context.Context) plc.Node {
	start := self.cur.Span
	switch self.cur.Type {
	case plc.TokenTypeIdentifier:
		name := self.sliceAndAdvance(ctx)
		return &plc.ReferenceExpr{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start},
			Name:     name,
		}
	case plc.TokenTypeLiteralInteger:
		node := self.parseStrictLiteralInteger(ctx)
		if node == nil {
			return &plc.EmptyStatement{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start}}
		}
		return node
	case plc.TokenTypeLiteralReal:
		value := self.sliceAndAdvance(ctx)
		return &plc.LiteralReal{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start},
			Value:    value,
		}
	case plc.TokenTypeLiteralTrue, plc.TokenTypeLiteralFalse:
		value := self.consume(ctx).Type == plc.TokenTypeLiteralTrue
		return &plc.LiteralBool{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start},
			Value:    value,
		}
	case plc.TokenTypeLiteralString, plc.TokenTypeLiteralWideString:
		token := self.consume(ctx)
		return &plc.LiteralString{
			NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start},
			Value:    token.Value,
			Wide:     token.Type == plc.TokenTypeLiteralWideString,
		}
	case plc.TokenTypeParensOpen:
		self.advance(ctx)
		inner := self.parseExpression(ctx)
		self.tryConsumeOrReport(ctx, plc.TokenTypeParensClose)
		return inner
	case plc.TokenTypeHardwareAccess:
		if node := self.parseHardwareAccess(ctx); node != nil {
			return node
		}
		return &plc.EmptyStatement{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start}}
	case plc.TokenTypeOperatorMultiplication:
		// the variable-length bound of ARRAY[*]
		self.advance(ctx)
		return &plc.VlaRangeStatement{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start}}
	default:
		self.report(exc.CodeUnexpectedToken,
			fmt.Sprintf("unexpected token %s in expression", self.cur.Type))
		return &plc.EmptyStatement{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: start}}
	}
}

// parseCallStatement parses a reference with optional call and member parts.
// It returns nil without consuming anything when the current token cannot
// start a reference.
func (self *parseSession) parseCallStatement(ctx context.Context) plc.Node {
	if self.cur.Type != plc.TokenTypeIdentifier {
		self.report(exc.CodeUnexpectedToken,
			fmt.Sprintf("expected Identifier but found %s", self.cur.Type))
		return nil
	}
	return self.parsePostfixExpression(ctx)
}

// parseReference never fails; a malformed reference is reported and replaced
// with an empty statement.
func (self *parseSession) parseReference(ctx context.Context) plc.Node {
	if statement := self.parseCallStatement(ctx); statement != nil {
		return statement
	}
	return &plc.EmptyStatement{NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: self.cur.Span}}
}

// parseStrictLiteralInteger consumes the current token as an integer literal.
// Invalid digit sequences are reported and yield nil.
func (self *parseSession) parseStrictLiteralInteger(ctx context.Context) plc.Node {
	if self.cur.Type != plc.TokenTypeLiteralInteger {
		self.report(exc.CodeUnexpectedToken,
			fmt.Sprintf("expected an integer literal but found %s", self.cur.Type))
		return nil
	}
	token := self.consume(ctx)
	value, err := parseIntegerText(token.Value)
	if err != nil {
		self.reportAt(token.Span, exc.CodeInvalidNumber,
			fmt.Sprintf("%q is not a valid integer literal", token.Value))
		return nil
	}
	return &plc.LiteralInteger{
		NodeMeta: plc.NodeMeta{ID: self.nextID(), Span: token.Span},
		Value:    value,
	}
}

// parseIntegerText evaluates a literal with optional radix prefix (2#, 8#,
// 16#) and digit group separators.
func parseIntegerText(text string) (int64, error) {
	clean := strings.ReplaceAll(text, "_", "")
	radix, digits, found := strings.Cut(clean, "#")
	if !found {
		return strconv.ParseInt(clean, 10, 64)
	}
	base, err := strconv.Atoi(radix)
	if err != nil {
		return 0, err
	}
	switch base {
	case 2, 8, 16:
		return strconv.ParseInt(digits, base, 64)
	}
	return 0, fmt.Errorf("unsupported radix %d", base)
}
