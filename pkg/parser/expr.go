package parser

import (
	"strconv"

	"github.com/xplshn/cfront/pkg/ast"
	"github.com/xplshn/cfront/pkg/token"
)

// Expression grammar, loosest binding first. Each level parses its operands
// with the next tighter level and folds left, except assignment which
// recurses to the right.
//
//	assignment     = logical_or (("=" | "+=" | "-=" | "*=" | "/=" | "%=") assignment)?
//	logical_or     = logical_and ("||" logical_and)*
//	logical_and    = bitwise_or ("&&" bitwise_or)*
//	bitwise_or     = bitwise_and ("|" bitwise_and)*
//	bitwise_and    = comparison ("&" comparison)*
//	comparison     = shift (("==" | "!=" | "<" | ">" | "<=" | ">=") shift)*
//	shift          = additive (("<<" | ">>") additive)*
//	additive       = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = postfix (("*" | "/" | "%") postfix)*
//	postfix        = primary ("[" assignment "]" | "++" | "--")*
//	primary        = literal | IDENT "(" args ")" | IDENT | "(" assignment ")"
//	               | ("-" | "!" | "&" | "*" | "++" | "--") primary

func (p *Parser) parseExpr() *ast.Node {
	return p.parseAssignmentExpr()
}

// parseAssignmentExpr checks the target shape only after the whole left
// side has been parsed through the cascade.
func (p *Parser) parseAssignmentExpr() *ast.Node {
	p.enter()
	defer p.leave()

	left := p.parseLogicalOrExpr()
	op := p.current
	if op.Type != token.Eq && !op.Type.IsCompoundAssign() {
		return left
	}
	if !ast.IsAssignable(left) {
		p.fail(left.Tok, "Invalid assignment target: expected a variable, array element or unary expression, found %s", left.Type)
	}
	p.advance()
	right := p.parseAssignmentExpr()
	if op.Type == token.Eq {
		return ast.NewAssign(op, left, right)
	}
	return ast.NewCompoundAssign(op, left, right)
}

// binaryLevel folds operand (op operand)* to the left for the given operators.
func (p *Parser) binaryLevel(operand func() *ast.Node, ops ...token.Type) *ast.Node {
	left := operand()
	for {
		opTok := p.current
		kind, ok := ast.BinaryOpFor(opTok.Type)
		if !ok || !containsType(ops, opTok.Type) {
			return left
		}
		p.advance()
		right := operand()
		left = ast.NewBinaryOp(opTok, kind, left, right)
	}
}

func containsType(types []token.Type, t token.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (p *Parser) parseLogicalOrExpr() *ast.Node {
	return p.binaryLevel(p.parseLogicalAndExpr, token.OrOr)
}

func (p *Parser) parseLogicalAndExpr() *ast.Node {
	return p.binaryLevel(p.parseBitwiseOrExpr, token.AndAnd)
}

func (p *Parser) parseBitwiseOrExpr() *ast.Node {
	return p.binaryLevel(p.parseBitwiseAndExpr, token.Or)
}

func (p *Parser) parseBitwiseAndExpr() *ast.Node {
	return p.binaryLevel(p.parseComparisonExpr, token.And)
}

func (p *Parser) parseComparisonExpr() *ast.Node {
	return p.binaryLevel(p.parseShiftExpr, token.EqEq, token.Neq, token.Lt, token.Gt, token.Lte, token.Gte)
}

func (p *Parser) parseShiftExpr() *ast.Node {
	return p.binaryLevel(p.parseAdditiveExpr, token.Shl, token.Shr)
}

func (p *Parser) parseAdditiveExpr() *ast.Node {
	return p.binaryLevel(p.parseMultiplicativeExpr, token.Plus, token.Minus)
}

func (p *Parser) parseMultiplicativeExpr() *ast.Node {
	return p.binaryLevel(p.parsePostfixExpr, token.Star, token.Slash, token.Rem)
}

func (p *Parser) parsePostfixExpr() *ast.Node {
	expr := p.parsePrimaryExpr()
	for {
		tok := p.current
		switch {
		case p.match(token.LBracket):
			index := p.parseExpr()
			p.expect(token.RBracket, "']' after array index")
			expr = ast.NewSubscript(tok, expr, index)
		case p.match(token.Inc) || p.match(token.Dec):
			expr = ast.NewPostfixOp(tok, expr)
		default:
			return expr
		}
	}
}

func isPrefixOp(t token.Type) bool {
	switch t {
	case token.Minus, token.Not, token.And, token.Star, token.Inc, token.Dec:
		return true
	}
	return false
}

// parsePrimaryExpr also handles prefix operators. Their operand is another
// primary, so unary binds tighter than every binary level.
func (p *Parser) parsePrimaryExpr() *ast.Node {
	p.enter()
	defer p.leave()

	tok := p.current
	switch {
	case p.match(token.Number):
		val, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			p.fail(tok, "Invalid integer literal '%s': %v", tok.Value, err)
		}
		return ast.NewNumber(tok, val)
	case p.match(token.FloatNumber):
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.fail(tok, "Invalid float literal '%s': %v", tok.Value, err)
		}
		return ast.NewFloat(tok, val)
	case p.match(token.Char):
		var val rune
		for _, r := range tok.Value {
			val = r
			break
		}
		return ast.NewChar(tok, val)
	case p.match(token.String):
		return ast.NewString(tok, tok.Value)
	case p.check(token.Ident):
		p.advance()
		callee := ast.NewIdent(tok)
		if !p.check(token.LParen) {
			return callee
		}
		callTok := p.current
		p.advance()
		args := []*ast.Node{}
		if !p.check(token.RParen) {
			for {
				args = append(args, p.parseAssignmentExpr())
				if !p.match(token.Comma) {
					break
				}
			}
		}
		p.expect(token.RParen, "')' after function arguments")
		return ast.NewFuncCall(callTok, callee, args)
	case p.match(token.LParen):
		expr := p.parseExpr()
		p.expect(token.RParen, "')' after expression")
		return ast.NewGrouping(tok, expr)
	case isPrefixOp(tok.Type):
		p.advance()
		return ast.NewUnaryOp(tok, p.parsePrimaryExpr())
	}
	p.errorExpected("an expression")
	return nil
}
