package token

type Type int

const (
	EOF Type = iota
	Newline
	Invalid

	// Literals and names
	Ident
	Number
	FloatNumber
	String
	Char

	// Preprocessor
	IncludeGlobal
	IncludeLocal
	Directive

	// Keywords
	If
	Else
	Return
	Using

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Comma
	Dot

	// Assignment
	Eq
	PlusEq
	MinusEq
	StarEq
	SlashEq
	RemEq

	// Operators
	Plus
	Minus
	Star
	Slash
	Rem
	And
	Or
	Shl
	Shr
	EqEq
	Neq
	Lt
	Gt
	Gte
	Lte
	AndAnd
	OrOr
	Not
	Inc
	Dec
)

var KeywordMap = map[string]Type{
	"if":     If,
	"else":   Else,
	"return": Return,
	"using":  Using,
}

// Lookup returns the keyword type for ident, or Ident.
func Lookup(ident string) Type {
	if typ, ok := KeywordMap[ident]; ok {
		return typ
	}
	return Ident
}

var typeNames = [...]string{
	EOF:           "end of input",
	Newline:       "newline",
	Invalid:       "invalid character",
	Ident:         "identifier",
	Number:        "integer literal",
	FloatNumber:   "float literal",
	String:        "string literal",
	Char:          "character literal",
	IncludeGlobal: "#include <...>",
	IncludeLocal:  "#include \"...\"",
	Directive:     "directive",
	If:            "if",
	Else:          "else",
	Return:        "return",
	Using:         "using",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
	Semi:          ";",
	Comma:         ",",
	Dot:           ".",
	Eq:            "=",
	PlusEq:        "+=",
	MinusEq:       "-=",
	StarEq:        "*=",
	SlashEq:       "/=",
	RemEq:         "%=",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Rem:           "%",
	And:           "&",
	Or:            "|",
	Shl:           "<<",
	Shr:           ">>",
	EqEq:          "==",
	Neq:           "!=",
	Lt:            "<",
	Gt:            ">",
	Gte:           ">=",
	Lte:           "<=",
	AndAnd:        "&&",
	OrOr:          "||",
	Not:           "!",
	Inc:           "++",
	Dec:           "--",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// IsCompoundAssign reports whether t is one of the op= forms.
func (t Type) IsCompoundAssign() bool { return t >= PlusEq && t <= RemEq }

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// Describe renders the token for "found X" style messages.
func (t Token) Describe() string {
	switch t.Type {
	case Ident, Number, FloatNumber:
		return t.Type.String() + " '" + t.Value + "'"
	case String:
		return "string literal \"" + t.Value + "\""
	case Char, Invalid:
		return t.Type.String() + " '" + t.Value + "'"
	case IncludeGlobal:
		return "#include <" + t.Value + ">"
	case IncludeLocal:
		return "#include \"" + t.Value + "\""
	case Directive:
		return "directive '#" + t.Value + "'"
	case EOF, Newline:
		return t.Type.String()
	default:
		return "'" + t.Type.String() + "'"
	}
}
