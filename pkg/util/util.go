package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/term"

	"github.com/xplshn/cfront/pkg/config"
	"github.com/xplshn/cfront/pkg/token"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single line-tagged message produced by the lexer or parser.
// Errors are returned as *Diagnostic values through the error interface.
type Diagnostic struct {
	Severity Severity
	Tok      token.Token
	Msg      string
	Warning  config.Warning // meaningful only for SeverityWarning
	flag     string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s", d.Tok.Line, d.Msg)
}

// AtEOF reports whether the diagnostic points at the end-of-input token,
// meaning more input could still complete the construct.
func (d *Diagnostic) AtEOF() bool { return d.Tok.Type == token.EOF }

// Errorf builds an error diagnostic anchored at tok.
func Errorf(tok token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Severity: SeverityError, Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning diagnostic, or returns nil when wt is disabled in cfg.
func Warnf(cfg *config.Config, wt config.Warning, tok token.Token, format string, args ...interface{}) *Diagnostic {
	if !cfg.IsWarningEnabled(wt) {
		return nil
	}
	return &Diagnostic{
		Severity: SeverityWarning, Tok: tok, Msg: fmt.Sprintf(format, args...),
		Warning: wt, flag: cfg.Warnings[wt].Name,
	}
}

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
	Hash    uint64
}

func NewSourceFileRecord(name string, content []byte) SourceFileRecord {
	return SourceFileRecord{Name: name, Content: []rune(string(content)), Hash: xxhash.Sum64(content)}
}

// HashString formats a record hash the way the golden harness stores it.
func (r SourceFileRecord) HashString() string { return fmt.Sprintf("%016x", r.Hash) }

func findFileAndLine(records []SourceFileRecord, tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(records) {
		return "<input>", tok.Line, tok.Column
	}
	return records[tok.FileIndex].Name, tok.Line, tok.Column
}

// sourceLine returns the text of the 1-based line in content.
func sourceLine(content []rune, lineNum int) (string, bool) {
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}
	if lineNum > 1 {
		return "", false
	}
	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}
	return string(content[lineStart:lineEnd]), true
}

func printErrorLine(w io.Writer, records []SourceFileRecord, tok token.Token, color bool) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(records) || tok.Line == 0 {
		return
	}
	line, ok := sourceLine(records[tok.FileIndex].Content, tok.Line)
	if !ok {
		return
	}
	fmt.Fprintf(w, "  %s\n", line)

	col := tok.Column
	if col < 1 {
		col = 1
	}
	caret := "^"
	if tok.Len > 1 {
		caret += strings.Repeat("~", tok.Len-1)
	}
	if color {
		fmt.Fprintf(w, "  %s\033[32m%s\033[0m\n", strings.Repeat(" ", col-1), caret)
	} else {
		fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", col-1), caret)
	}
}

// Render prints d as "file:line:col: error: msg" followed by the offending
// source line and a caret.
func Render(w io.Writer, records []SourceFileRecord, d *Diagnostic, color bool) {
	filename, line, col := findFileAndLine(records, d.Tok)
	label := d.Severity.String()
	if color {
		code := "31"
		if d.Severity == SeverityWarning {
			code = "33"
		}
		label = "\033[" + code + "m" + label + ":\033[0m"
	} else {
		label += ":"
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s", filename, line, col, label, d.Msg)
	if d.Severity == SeverityWarning && d.flag != "" {
		fmt.Fprintf(w, " [-W%s]", d.flag)
	}
	fmt.Fprintln(w)
	printErrorLine(w, records, d.Tok, color)
}

// UseColor reports whether f is a terminal that should receive ANSI colours.
func UseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
