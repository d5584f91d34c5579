package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/cfront/pkg/config"
	"github.com/xplshn/cfront/pkg/token"
	"github.com/xplshn/cfront/pkg/util"
)

type lexed struct {
	Type  token.Type
	Value string
	Line  int
}

func lexAll(t *testing.T, src string, cfg *config.Config) ([]lexed, []*util.Diagnostic) {
	t.Helper()
	tokens, warnings, err := Tokenize([]rune(src), 0, cfg)
	if err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", src, err)
	}
	out := make([]lexed, len(tokens))
	for i, tok := range tokens {
		out[i] = lexed{tok.Type, tok.Value, tok.Line}
	}
	return out, warnings
}

func types(toks []lexed) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestLexDeclaration(t *testing.T) {
	got, _ := lexAll(t, "int x = 42;\n", nil)
	want := []lexed{
		{token.Ident, "int", 1},
		{token.Ident, "x", 1},
		{token.Eq, "", 1},
		{token.Number, "42", 1},
		{token.Semi, "", 1},
		{token.Newline, "", 1},
		{token.EOF, "", 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexOperators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Type
	}{
		{
			name: "two character operators",
			src:  "== != >= <= && || << >> ++ --",
			want: []token.Type{token.EqEq, token.Neq, token.Gte, token.Lte, token.AndAnd, token.OrOr, token.Shl, token.Shr, token.Inc, token.Dec, token.EOF},
		},
		{
			name: "compound assignment",
			src:  "+= -= *= /= %=",
			want: []token.Type{token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq, token.RemEq, token.EOF},
		},
		{
			name: "single character symbols",
			src:  "+ - * / % & | ! < > = ( ) { } [ ] , . ;",
			want: []token.Type{
				token.Plus, token.Minus, token.Star, token.Slash, token.Rem, token.And, token.Or, token.Not,
				token.Lt, token.Gt, token.Eq, token.LParen, token.RParen, token.LBrace, token.RBrace,
				token.LBracket, token.RBracket, token.Comma, token.Dot, token.Semi, token.EOF,
			},
		},
		{
			name: "maximal munch without spaces",
			src:  "a+++b",
			want: []token.Type{token.Ident, token.Inc, token.Plus, token.Ident, token.EOF},
		},
		{
			name: "keywords",
			src:  "if else return using namespace iffy",
			want: []token.Type{token.If, token.Else, token.Return, token.Using, token.Ident, token.Ident, token.EOF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := lexAll(t, tt.src, nil)
			if diff := cmp.Diff(tt.want, types(got)); diff != "" {
				t.Errorf("types mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexNumbers(t *testing.T) {
	got, _ := lexAll(t, "3.14 42 7. 007", nil)
	want := []lexed{
		{token.FloatNumber, "3.14", 1},
		{token.Number, "42", 1},
		{token.FloatNumber, "7.", 1},
		{token.Number, "007", 1},
		{token.EOF, "", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexNonASCIIDigits(t *testing.T) {
	got, _ := lexAll(t, "٣ １ x٣", nil)
	want := []lexed{
		{token.Invalid, "٣", 1},
		{token.Invalid, "１", 1},
		{token.Ident, "x٣", 1},
		{token.EOF, "", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexPedanticWarnings(t *testing.T) {
	src := "7. 7.5\n#include <a.h> junk\n#include <b.h> // ok\n"
	for _, enabled := range []bool{false, true} {
		cfg := config.NewConfig()
		cfg.SetWarning(config.WarnPedantic, enabled)
		_, warnings := lexAll(t, src, cfg)
		var got []string
		for _, w := range warnings {
			if w.Warning == config.WarnPedantic {
				got = append(got, w.Msg)
			}
		}
		var want []string
		if enabled {
			want = []string{
				"Floating-point literal '7.' has no digits after the decimal point",
				"Extra tokens at end of #include directive",
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("pedantic=%v warnings mismatch (-want +got):\n%s", enabled, diff)
		}
	}
}

func TestLexStrings(t *testing.T) {
	got, warnings := lexAll(t, `"a\nb\t\"q\"\\z\q"`, nil)
	want := []lexed{
		{token.String, "a\nb\t\"q\"\\zq", 1},
		{token.EOF, "", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || warnings[0].Warning != config.WarnUnrecognizedEscape {
		t.Errorf("expected one unrecognized-escape warning, got %v", warnings)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	got, warnings := lexAll(t, `x = "abc`, nil)
	want := []token.Type{token.Ident, token.Eq, token.String, token.EOF}
	if diff := cmp.Diff(want, types(got)); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
	if got[2].Value != "abc" {
		t.Errorf("string value: got %q, want %q", got[2].Value, "abc")
	}
	if len(warnings) != 1 || warnings[0].Warning != config.WarnUnterminatedString {
		t.Errorf("expected one unterminated-string warning, got %v", warnings)
	}
}

func TestLexCharLiterals(t *testing.T) {
	got, _ := lexAll(t, `'a' '\n' '\'' '\\'`, nil)
	want := []lexed{
		{token.Char, "a", 1},
		{token.Char, "\n", 1},
		{token.Char, "'", 1},
		{token.Char, "\\", 1},
		{token.EOF, "", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexCharLiteralErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
	}{
		{"two characters", "'ab", 1},
		{"over long", "x;\n'ab'", 2},
		{"end of input", "'", 1},
		{"escape at end of input", `'\`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Tokenize([]rune(tt.src), 0, nil)
			if err == nil {
				t.Fatalf("expected an error for %q", tt.src)
			}
			var diag *util.Diagnostic
			if !errors.As(err, &diag) {
				t.Fatalf("expected *util.Diagnostic, got %T", err)
			}
			if diag.Tok.Line != tt.wantLine {
				t.Errorf("line: got %d, want %d", diag.Tok.Line, tt.wantLine)
			}
			if !strings.Contains(diag.Msg, "Unterminated character literal") {
				t.Errorf("unexpected message %q", diag.Msg)
			}
		})
	}
}

func TestLexComments(t *testing.T) {
	got, warnings := lexAll(t, "a // c\nb /* x\n y */ c", nil)
	want := []lexed{
		{token.Ident, "a", 1},
		{token.Newline, "", 1},
		{token.Ident, "b", 2},
		{token.Ident, "c", 3},
		{token.EOF, "", 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	got, warnings := lexAll(t, "a /* never\nclosed", nil)
	want := []token.Type{token.Ident, token.EOF}
	if diff := cmp.Diff(want, types(got)); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || warnings[0].Warning != config.WarnUnterminatedComment {
		t.Errorf("expected one unterminated-comment warning, got %v", warnings)
	}
}

func TestLexDirectives(t *testing.T) {
	src := "#include <stdio.h>\n#include \"my.h\" trailing\n# pragma once\nint"
	got, _ := lexAll(t, src, nil)
	want := []lexed{
		{token.IncludeGlobal, "stdio.h", 1},
		{token.IncludeLocal, "my.h", 2},
		{token.Directive, "pragma", 3},
		{token.Ident, "int", 4},
		{token.EOF, "", 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexIncludeWithoutPath(t *testing.T) {
	got, warnings := lexAll(t, "#include stdio\nx", nil)
	want := []lexed{
		{token.Directive, "include", 1},
		{token.Ident, "x", 2},
		{token.EOF, "", 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}

func TestLexInvalidCharacter(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetWarning(config.WarnInvalidChar, true)
	got, warnings := lexAll(t, "a @ ¨ b", cfg)
	want := []lexed{
		{token.Ident, "a", 1},
		{token.Invalid, "@", 1},
		{token.Invalid, "¨", 1},
		{token.Ident, "b", 1},
		{token.EOF, "", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 2 {
		t.Errorf("expected two invalid-char warnings, got %d", len(warnings))
	}
}

func TestLexEOFIsSticky(t *testing.T) {
	l := NewLexer([]rune("x"), 0, nil)
	if tok, err := l.Next(); err != nil || tok.Type != token.Ident {
		t.Fatalf("first token: got %v, %v", tok, err)
	}
	for i := 0; i < 3; i++ {
		tok, err := l.Next()
		if err != nil || tok.Type != token.EOF {
			t.Fatalf("call %d after end: got %v, %v", i, tok, err)
		}
	}
}

func TestLexPositions(t *testing.T) {
	tokens, _, err := Tokenize([]rune("  foo\n\tbar2 == 1"), 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	type pos struct{ Line, Column, Len, FileIndex int }
	var got []pos
	for _, tok := range tokens {
		got = append(got, pos{tok.Line, tok.Column, tok.Len, tok.FileIndex})
	}
	want := []pos{
		{1, 3, 3, 3}, // foo
		{1, 6, 1, 3}, // newline
		{2, 2, 4, 3}, // bar2
		{2, 7, 2, 3}, // ==
		{2, 10, 1, 3}, // 1
		{2, 11, 0, 3}, // EOF
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestLexFeatureGates(t *testing.T) {
	tests := []struct {
		name    string
		feature config.Feature
		src     string
		want    []token.Type
	}{
		{"no compound ops", config.FeatCompoundOps, "a += 1", []token.Type{token.Ident, token.Plus, token.Eq, token.Number, token.EOF}},
		{"no floats", config.FeatFloat, "1.5", []token.Type{token.Number, token.Dot, token.Number, token.EOF}},
		{"no directives", config.FeatDirectives, "#x", []token.Type{token.Invalid, token.Ident, token.EOF}},
		{"no comments", config.FeatCComments, "a // b", []token.Type{token.Ident, token.Slash, token.Slash, token.Ident, token.EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.SetFeature(tt.feature, false)
			got, _ := lexAll(t, tt.src, cfg)
			if diff := cmp.Diff(tt.want, types(got)); diff != "" {
				t.Errorf("types mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
