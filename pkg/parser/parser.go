package parser

import (
	"github.com/xplshn/cfront/pkg/ast"
	"github.com/xplshn/cfront/pkg/config"
	"github.com/xplshn/cfront/pkg/lexer"
	"github.com/xplshn/cfront/pkg/token"
	"github.com/xplshn/cfront/pkg/util"
)

// Parser holds the state for the parsing process
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
	cfg      *config.Config
	depth    int
}

// bailout carries the first fatal diagnostic up to Parse.
type bailout struct{ diag *util.Diagnostic }

// NewParser creates a Parser over a pre-lexed token buffer. Newline tokens
// are dropped everywhere, not only between statements, so a statement may
// span lines freely. A terminating EOF is guaranteed.
func NewParser(tokens []token.Token, cfg *config.Config) *Parser {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	filtered := make([]token.Token, 0, len(tokens)+1)
	for _, tok := range tokens {
		if tok.Type == token.Newline {
			continue
		}
		filtered = append(filtered, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if len(filtered) == 0 || filtered[len(filtered)-1].Type != token.EOF {
		eof := token.Token{Type: token.EOF, Line: 1}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof.Line, eof.FileIndex = last.Line, last.FileIndex
		}
		filtered = append(filtered, eof)
	}
	return &Parser{tokens: filtered, current: filtered[0], cfg: cfg}
}

// ParseSource lexes and parses a single in-memory translation unit.
func ParseSource(src string, cfg *config.Config) ([]*ast.Node, error) {
	tokens, _, err := lexer.Tokenize([]rune(src), 0, cfg)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, cfg).Parse()
}

// Parse returns the top-level statements in source order, or the first
// fatal diagnostic. No partial tree is returned on error.
func (p *Parser) Parse() (stmts []*ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			stmts, err = nil, b.diag
		}
	}()
	for !p.check(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	return stmts, nil
}

// Parser helpers
func (p *Parser) advance() {
	if p.current.Type == token.EOF {
		return
	}
	p.previous = p.current
	p.pos++
	p.current = p.tokens[p.pos]
}

// peek returns the token n positions past the current one; EOF past the end.
func (p *Parser) peek(n int) token.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current.Type == tokType
}

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) fail(tok token.Token, format string, args ...interface{}) {
	panic(bailout{util.Errorf(tok, format, args...)})
}

func (p *Parser) errorExpected(what string) {
	p.fail(p.current, "Expected %s, found %s", what, p.current.Describe())
}

func (p *Parser) expect(tokType token.Type, what string) {
	if p.check(tokType) {
		p.advance()
		return
	}
	p.errorExpected(what)
}

func (p *Parser) enter() {
	p.depth++
	if p.cfg.MaxDepth > 0 && p.depth > p.cfg.MaxDepth {
		p.fail(p.current, "Nesting too deep (limit %d)", p.cfg.MaxDepth)
	}
}

func (p *Parser) leave() { p.depth-- }

// Statement and Declaration Parsing
func (p *Parser) parseStmt() *ast.Node {
	p.enter()
	defer p.leave()

	tok := p.current
	switch {
	case p.check(token.IncludeGlobal) || p.check(token.IncludeLocal):
		p.advance()
		return ast.NewInclude(tok)
	case p.check(token.Directive):
		p.advance()
		return ast.NewDirective(tok)
	case p.check(token.LBrace):
		return p.parseBlockStmt()
	case p.match(token.If):
		return p.parseIfStmt(tok)
	case p.match(token.Return):
		if p.match(token.Semi) {
			return ast.NewReturn(tok, nil)
		}
		expr := p.parseExpr()
		p.expect(token.Semi, "';' after return statement")
		return ast.NewReturn(tok, expr)
	case p.match(token.Using):
		if !p.check(token.Ident) || p.current.Value != "namespace" {
			p.errorExpected("'namespace' after 'using'")
		}
		p.advance()
		p.expect(token.Ident, "namespace name")
		name := p.previous.Value
		p.expect(token.Semi, "';' after using directive")
		return ast.NewUsingNamespace(tok, name)
	case p.check(token.Ident) && p.looksLikeFuncDecl():
		return p.parseFuncDecl()
	case p.check(token.Ident) && (p.peek(1).Type == token.Ident || p.peek(1).Type == token.Star):
		return p.parseVarDecl()
	default:
		expr := p.parseExpr()
		p.expect(token.Semi, "';' after expression")
		return ast.NewExprStmt(tok, expr)
	}
}

func (p *Parser) parseBlockStmt() *ast.Node {
	tok := p.current
	p.expect(token.LBrace, "'{' to start a block")
	stmts := []*ast.Node{}
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.RBrace, "'}' after block")
	return ast.NewBlock(tok, stmts)
}

// parseIfStmt is called with 'if' consumed. An 'else if' chains into
// another if statement as the else branch.
func (p *Parser) parseIfStmt(tok token.Token) *ast.Node {
	p.expect(token.LParen, "'(' after 'if'")
	cond := p.parseExpr()
	p.expect(token.RParen, "')' after if condition")
	thenBody := p.parseStmt()

	var elseBody *ast.Node
	if p.match(token.Else) {
		if p.check(token.If) {
			elseTok := p.current
			p.advance()
			elseBody = p.parseIfStmt(elseTok)
		} else {
			elseBody = p.parseStmt()
		}
	}
	return ast.NewIf(tok, cond, thenBody, elseBody)
}

// looksLikeFuncDecl reports whether the tokens from the current one form a
// run of identifiers and '*' whose last identifier is directly followed by
// '(' and is not the first token, e.g. "int main(" or "char *name(".
func (p *Parser) looksLikeFuncDecl() bool {
	for n := 0; ; n++ {
		switch p.peek(n).Type {
		case token.Ident:
			if p.peek(n+1).Type == token.LParen {
				return n > 0
			}
		case token.Star:
		default:
			return false
		}
	}
}

func isTypeRunBreak(t token.Type) bool {
	switch t {
	case token.EOF, token.Semi, token.LBrace, token.RBrace:
		return true
	}
	return false
}

// parseTypedName accumulates type tokens until an identifier followed by one
// of the given tokens appears; that identifier is the declared name.
func (p *Parser) parseTypedName(what string, followers ...token.Type) ([]token.Token, token.Token) {
	isFollower := func(t token.Type) bool {
		for _, f := range followers {
			if t == f {
				return true
			}
		}
		return false
	}

	var types []token.Token
	for !(p.check(token.Ident) && isFollower(p.peek(1).Type)) {
		if isTypeRunBreak(p.current.Type) || isFollower(p.current.Type) {
			p.errorExpected(what)
		}
		types = append(types, p.current)
		p.advance()
	}
	name := p.current
	p.advance()
	return types, name
}

// parseArraySuffix parses an optional "[]" or "[expr]".
func (p *Parser) parseArraySuffix() *ast.Node {
	tok := p.current
	if !p.match(token.LBracket) {
		return nil
	}
	if p.match(token.RBracket) {
		return ast.NewUnspecifiedDim(tok)
	}
	size := p.parseExpr()
	p.expect(token.RBracket, "']' after array size")
	return size
}

func (p *Parser) parseVarDecl() *ast.Node {
	types, name := p.parseTypedName("variable name", token.Eq, token.Semi, token.LBracket)
	size := p.parseArraySuffix()

	var init *ast.Node
	if p.match(token.Eq) {
		init = p.parseExpr()
	}
	p.expect(token.Semi, "';' after variable declaration")
	return ast.NewVarDecl(types, name, size, init)
}

func (p *Parser) parseParam() *ast.Node {
	types, name := p.parseTypedName("parameter name", token.Comma, token.RParen, token.LBracket)
	return ast.NewParam(types, name, p.parseArraySuffix())
}

func (p *Parser) parseFuncDecl() *ast.Node {
	var returnTypes []token.Token
	for !(p.check(token.Ident) && p.peek(1).Type == token.LParen) {
		returnTypes = append(returnTypes, p.current)
		p.advance()
	}
	name := p.current
	p.advance()
	p.expect(token.LParen, "'(' after function name")

	params := []*ast.Node{}
	switch {
	case p.check(token.Ident) && p.current.Value == "void" && p.peek(1).Type == token.RParen:
		p.advance()
	case !p.check(token.RParen):
		for {
			params = append(params, p.parseParam())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen, "')' after parameters")

	if !p.check(token.LBrace) {
		p.errorExpected("'{' to start function body")
	}
	body := p.parseBlockStmt()
	return ast.NewFuncDecl(returnTypes, name, params, body)
}
