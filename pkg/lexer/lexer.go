package lexer

import (
	"strings"
	"unicode"

	"github.com/xplshn/cfront/pkg/config"
	"github.com/xplshn/cfront/pkg/token"
	"github.com/xplshn/cfront/pkg/util"
)

type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
	cfg       *config.Config
	warnings  []*util.Diagnostic
}

func NewLexer(source []rune, fileIndex int, cfg *config.Config) *Lexer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Lexer{
		source: source, fileIndex: fileIndex, line: 1, column: 1, cfg: cfg,
	}
}

// Tokenize drains a fresh lexer over source into a buffer terminated by EOF.
// On a fatal lexical error the tokens produced so far are returned with it.
func Tokenize(source []rune, fileIndex int, cfg *config.Config) ([]token.Token, []*util.Diagnostic, error) {
	l := NewLexer(source, fileIndex, cfg)
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, l.warnings, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, l.warnings, nil
		}
	}
}

// Warnings returns the non-fatal diagnostics collected so far.
func (l *Lexer) Warnings() []*util.Diagnostic { return l.warnings }

// Next returns the next token. Once the input is exhausted every call
// returns an EOF token.
func (l *Lexer) Next() (token.Token, error) {
	for {
		l.skipWhitespace()
		startPos, startCol, startLine := l.pos, l.column, l.line

		if l.isAtEnd() {
			return l.makeToken(token.EOF, "", startPos, startCol, startLine), nil
		}

		if l.peek() == '/' && l.cfg.IsFeatureEnabled(config.FeatCComments) {
			if l.peekNext() == '/' {
				l.lineComment()
				continue
			}
			if l.peekNext() == '*' {
				l.blockComment()
				continue
			}
		}

		ch := l.peek()
		if unicode.IsLetter(ch) || ch == '_' {
			return l.identifierOrKeyword(startPos, startCol, startLine), nil
		}
		if isDigit(ch) {
			return l.numberLiteral(startPos, startCol, startLine), nil
		}

		l.advance()
		switch ch {
		case '\n':
			return l.makeToken(token.Newline, "", startPos, startCol, startLine), nil
		case '(':
			return l.makeToken(token.LParen, "", startPos, startCol, startLine), nil
		case ')':
			return l.makeToken(token.RParen, "", startPos, startCol, startLine), nil
		case '{':
			return l.makeToken(token.LBrace, "", startPos, startCol, startLine), nil
		case '}':
			return l.makeToken(token.RBrace, "", startPos, startCol, startLine), nil
		case '[':
			return l.makeToken(token.LBracket, "", startPos, startCol, startLine), nil
		case ']':
			return l.makeToken(token.RBracket, "", startPos, startCol, startLine), nil
		case ';':
			return l.makeToken(token.Semi, "", startPos, startCol, startLine), nil
		case ',':
			return l.makeToken(token.Comma, "", startPos, startCol, startLine), nil
		case '.':
			return l.makeToken(token.Dot, "", startPos, startCol, startLine), nil
		case '!':
			return l.matchThen('=', token.Neq, token.Not, startPos, startCol, startLine), nil
		case '=':
			return l.matchThen('=', token.EqEq, token.Eq, startPos, startCol, startLine), nil
		case '+':
			return l.plus(startPos, startCol, startLine), nil
		case '-':
			return l.minus(startPos, startCol, startLine), nil
		case '*':
			return l.compound(token.StarEq, token.Star, startPos, startCol, startLine), nil
		case '/':
			return l.compound(token.SlashEq, token.Slash, startPos, startCol, startLine), nil
		case '%':
			return l.compound(token.RemEq, token.Rem, startPos, startCol, startLine), nil
		case '&':
			return l.matchThen('&', token.AndAnd, token.And, startPos, startCol, startLine), nil
		case '|':
			return l.matchThen('|', token.OrOr, token.Or, startPos, startCol, startLine), nil
		case '<':
			if l.match('<') {
				return l.makeToken(token.Shl, "", startPos, startCol, startLine), nil
			}
			return l.matchThen('=', token.Lte, token.Lt, startPos, startCol, startLine), nil
		case '>':
			if l.match('>') {
				return l.makeToken(token.Shr, "", startPos, startCol, startLine), nil
			}
			return l.matchThen('=', token.Gte, token.Gt, startPos, startCol, startLine), nil
		case '"':
			return l.stringLiteral(startPos, startCol, startLine), nil
		case '\'':
			return l.charLiteral(startPos, startCol, startLine)
		case '#':
			if l.cfg.IsFeatureEnabled(config.FeatDirectives) {
				return l.directive(startPos, startCol, startLine), nil
			}
		}

		tok := l.makeToken(token.Invalid, string(ch), startPos, startCol, startLine)
		l.warn(config.WarnInvalidChar, tok, "Unexpected character: '%c'", ch)
		return tok, nil
	}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value, FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) warn(wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if d := util.Warnf(l.cfg, wt, tok, format, args...); d != nil {
		l.warnings = append(l.warnings, d)
	}
}

// skipWhitespace skips everything unicode treats as space except '\n',
// which is a token of its own.
func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch := l.peek()
		if ch == '\n' || !unicode.IsSpace(ch) {
			return
		}
		l.advance()
	}
}

// lineComment stops before the newline so it is still emitted.
func (l *Lexer) lineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

// blockComment consumes through "*/". Running off the end of input is not an error.
func (l *Lexer) blockComment() {
	startTok := l.makeToken(token.EOF, "", l.pos, l.column, l.line)
	startTok.Len = 2
	l.advance()
	l.advance()
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
	l.warn(config.WarnUnterminatedComment, startTok, "Unterminated block comment")
}

// isDigit accepts ASCII decimal digits only; other Unicode digits are
// identifier runes but never start a number.
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for isIdentRune(l.peek()) {
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	return l.makeToken(token.Lookup(value), value, startPos, startCol, startLine)
}

// numberLiteral keeps the raw digit text; conversion happens in the parser.
func (l *Lexer) numberLiteral(startPos, startCol, startLine int) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && l.cfg.IsFeatureEnabled(config.FeatFloat) {
		l.advance()
		fracStart := l.pos
		for isDigit(l.peek()) {
			l.advance()
		}
		tok := l.makeToken(token.FloatNumber, string(l.source[startPos:l.pos]), startPos, startCol, startLine)
		if l.pos == fracStart {
			l.warn(config.WarnPedantic, tok, "Floating-point literal '%s' has no digits after the decimal point", tok.Value)
		}
		return tok
	}
	return l.makeToken(token.Number, string(l.source[startPos:l.pos]), startPos, startCol, startLine)
}

// decodeEscape is called with the backslash already consumed.
func (l *Lexer) decodeEscape(startPos, startCol, startLine int) (rune, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	c := l.advance()
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case '"', '\'', '\\':
		return c, true
	}
	l.warn(config.WarnUnrecognizedEscape, l.makeToken(token.String, "", startPos, startCol, startLine),
		"Unrecognized escape sequence '\\%c'", c)
	return c, true
}

// stringLiteral is called with the opening quote consumed. A string that
// runs off the end of input ends there.
func (l *Lexer) stringLiteral(startPos, startCol, startLine int) token.Token {
	var sb strings.Builder
	for !l.isAtEnd() {
		c := l.peek()
		if c == '"' {
			l.advance()
			return l.makeToken(token.String, sb.String(), startPos, startCol, startLine)
		}
		l.advance()
		if c == '\\' {
			r, ok := l.decodeEscape(startPos, startCol, startLine)
			if !ok {
				break
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(c)
	}
	tok := l.makeToken(token.String, sb.String(), startPos, startCol, startLine)
	l.warn(config.WarnUnterminatedString, tok, "Unterminated string literal")
	return tok
}

// charLiteral is called with the opening quote consumed. Anything but a
// closing quote after the single character is fatal.
func (l *Lexer) charLiteral(startPos, startCol, startLine int) (token.Token, error) {
	if l.isAtEnd() {
		return token.Token{}, util.Errorf(l.makeToken(token.Char, "", startPos, startCol, startLine), "Unterminated character literal")
	}
	c := l.advance()
	if c == '\\' {
		r, ok := l.decodeEscape(startPos, startCol, startLine)
		if !ok {
			return token.Token{}, util.Errorf(l.makeToken(token.Char, "", startPos, startCol, startLine), "Unterminated character literal")
		}
		c = r
	}
	tok := l.makeToken(token.Char, string(c), startPos, startCol, startLine)
	if !l.match('\'') {
		return token.Token{}, util.Errorf(tok, "Unterminated character literal: expected closing '\\'' after '%c'", c)
	}
	tok.Len = l.pos - startPos
	return tok, nil
}

func isLineSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\f' || r == '\v' }

// directive is called with '#' consumed. It consumes the whole line,
// including the trailing newline, so no Newline token follows it.
func (l *Lexer) directive(startPos, startCol, startLine int) token.Token {
	for isLineSpace(l.peek()) {
		l.advance()
	}
	cmdStart := l.pos
	for isIdentRune(l.peek()) {
		l.advance()
	}
	command := string(l.source[cmdStart:l.pos])

	tok := l.makeToken(token.Directive, command, startPos, startCol, startLine)
	if command == "include" {
		for isLineSpace(l.peek()) {
			l.advance()
		}
		switch l.peek() {
		case '<':
			tok = l.includePath('>', token.IncludeGlobal, startPos, startCol, startLine)
		case '"':
			tok = l.includePath('"', token.IncludeLocal, startPos, startCol, startLine)
		default:
			l.warn(config.WarnExtra, tok, "'#include' expects \"FILENAME\" or <FILENAME>")
		}
		if tok.Type != token.Directive {
			l.trailingText(tok)
		}
	}

	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
	l.match('\n')
	return tok
}

// trailingText flags anything but whitespace or a comment after an include path.
func (l *Lexer) trailingText(tok token.Token) {
	for isLineSpace(l.peek()) {
		l.advance()
	}
	if l.isAtEnd() || l.peek() == '\n' {
		return
	}
	if l.peek() == '/' && (l.peekNext() == '/' || l.peekNext() == '*') {
		return
	}
	l.warn(config.WarnPedantic, tok, "Extra tokens at end of #include directive")
}

func (l *Lexer) includePath(closer rune, tokType token.Type, startPos, startCol, startLine int) token.Token {
	l.advance()
	pathStart := l.pos
	for !l.isAtEnd() && l.peek() != closer && l.peek() != '\n' {
		l.advance()
	}
	path := string(l.source[pathStart:l.pos])
	if !l.match(closer) {
		tok := l.makeToken(tokType, path, startPos, startCol, startLine)
		l.warn(config.WarnExtra, tok, "Missing terminating '%c' in #include", closer)
		return tok
	}
	return l.makeToken(tokType, path, startPos, startCol, startLine)
}

func (l *Lexer) matchThen(expected rune, thenType, elseType token.Type, sPos, sCol, sLine int) token.Token {
	if l.match(expected) {
		return l.makeToken(thenType, "", sPos, sCol, sLine)
	}
	return l.makeToken(elseType, "", sPos, sCol, sLine)
}

func (l *Lexer) compound(thenType, elseType token.Type, sPos, sCol, sLine int) token.Token {
	if l.cfg.IsFeatureEnabled(config.FeatCompoundOps) && l.match('=') {
		return l.makeToken(thenType, "", sPos, sCol, sLine)
	}
	return l.makeToken(elseType, "", sPos, sCol, sLine)
}

func (l *Lexer) plus(sPos, sCol, sLine int) token.Token {
	if l.match('+') {
		return l.makeToken(token.Inc, "", sPos, sCol, sLine)
	}
	return l.compound(token.PlusEq, token.Plus, sPos, sCol, sLine)
}

func (l *Lexer) minus(sPos, sCol, sLine int) token.Token {
	if l.match('-') {
		return l.makeToken(token.Dec, "", sPos, sCol, sLine)
	}
	return l.compound(token.MinusEq, token.Minus, sPos, sCol, sLine)
}
