// Package ast defines the types used to represent the Abstract Syntax Tree (AST)
package ast

import (
	"github.com/xplshn/cfront/pkg/token"
)

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	// Expressions
	Number NodeType = iota
	Float
	Char
	String
	Ident
	BinaryOp
	Grouping
	UnaryOp
	PostfixOp
	Assign
	CompoundAssign
	Subscript
	FuncCall
	UnspecifiedDim

	// Statements
	ExprStmt
	Return
	VarDecl
	Include
	Directive
	FuncDecl
	Param
	If
	Block
	UsingNamespace
)

var nodeTypeNames = [...]string{
	Number:         "Number",
	Float:          "Float",
	Char:           "Char",
	String:         "String",
	Ident:          "Ident",
	BinaryOp:       "BinaryOp",
	Grouping:       "Grouping",
	UnaryOp:        "UnaryOp",
	PostfixOp:      "PostfixOp",
	Assign:         "Assign",
	CompoundAssign: "CompoundAssign",
	Subscript:      "Subscript",
	FuncCall:       "FuncCall",
	UnspecifiedDim: "UnspecifiedDim",
	ExprStmt:       "ExprStmt",
	Return:         "Return",
	VarDecl:        "VarDecl",
	Include:        "Include",
	Directive:      "Directive",
	FuncDecl:       "FuncDecl",
	Param:          "Param",
	If:             "If",
	Block:          "Block",
	UsingNamespace: "UsingNamespace",
}

func (t NodeType) String() string {
	if t >= 0 && int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "Unknown"
}

// Node represents a node in the Abstract Syntax Tree. Every node owns its
// children exclusively; there are no back references.
type Node struct {
	Type NodeType
	Tok  token.Token
	Data interface{}
}

func (n *Node) IsExpr() bool { return n != nil && n.Type <= UnspecifiedDim }
func (n *Node) IsStmt() bool { return n != nil && n.Type >= ExprStmt }

// BinaryOpKind is the closed set of operators carried by BinaryOp nodes.
// Unary, postfix and compound assignment nodes keep their raw token instead.
type BinaryOpKind int

const (
	OpAdd BinaryOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNeq
	OpGt
	OpLt
	OpGte
	OpLte
	OpBitAnd
	OpBitOr
	OpLogAnd
	OpLogOr
	OpShl
	OpShr
)

var binaryOpNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpRem: "%",
	OpEq: "==", OpNeq: "!=", OpGt: ">", OpLt: "<", OpGte: ">=", OpLte: "<=",
	OpBitAnd: "&", OpBitOr: "|", OpLogAnd: "&&", OpLogOr: "||",
	OpShl: "<<", OpShr: ">>",
}

func (op BinaryOpKind) String() string {
	if op >= 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

var binaryOps = map[token.Type]BinaryOpKind{
	token.Plus: OpAdd, token.Minus: OpSub, token.Star: OpMul, token.Slash: OpDiv, token.Rem: OpRem,
	token.EqEq: OpEq, token.Neq: OpNeq, token.Gt: OpGt, token.Lt: OpLt, token.Gte: OpGte, token.Lte: OpLte,
	token.And: OpBitAnd, token.Or: OpBitOr, token.AndAnd: OpLogAnd, token.OrOr: OpLogOr,
	token.Shl: OpShl, token.Shr: OpShr,
}

// BinaryOpFor maps an operator token to its BinaryOpKind.
func BinaryOpFor(t token.Type) (BinaryOpKind, bool) {
	op, ok := binaryOps[t]
	return op, ok
}

// --- Node Data Structs ---
type NumberNode struct{ Value int64 }
type FloatNode struct{ Value float64 }
type CharNode struct{ Value rune }
type StringNode struct{ Value string }
type IdentNode struct{ Name string }
type BinaryOpNode struct {
	Op          BinaryOpKind
	Left, Right *Node
}
type GroupingNode struct{ Expr *Node }
type UnaryOpNode struct {
	Op   token.Token
	Expr *Node
}
type PostfixOpNode struct {
	Op   token.Token
	Expr *Node
}
type AssignNode struct{ Lhs, Rhs *Node }
type CompoundAssignNode struct {
	Op       token.Token
	Lhs, Rhs *Node
}
type SubscriptNode struct{ Array, Index *Node }
type FuncCallNode struct {
	FuncExpr *Node
	Args     []*Node
}
type UnspecifiedDimNode struct{}

type ExprStmtNode struct{ Expr *Node }
type ReturnNode struct{ Expr *Node }
type VarDeclNode struct {
	Types    []token.Token
	Name     token.Token
	SizeExpr *Node
	Init     *Node
}
type IncludeNode struct {
	Path     string
	IsGlobal bool
}
type DirectiveNode struct{ Name string }
type FuncDeclNode struct {
	ReturnTypes []token.Token
	Name        token.Token
	Params      []*Node
	Body        *Node
}
type ParamNode struct {
	Types    []token.Token
	Name     token.Token
	SizeExpr *Node
}
type IfNode struct{ Cond, ThenBody, ElseBody *Node }
type BlockNode struct{ Stmts []*Node }
type UsingNamespaceNode struct{ Name string }

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, data interface{}) *Node {
	return &Node{Type: nodeType, Tok: tok, Data: data}
}

func NewNumber(tok token.Token, value int64) *Node {
	return newNode(tok, Number, NumberNode{Value: value})
}
func NewFloat(tok token.Token, value float64) *Node {
	return newNode(tok, Float, FloatNode{Value: value})
}
func NewChar(tok token.Token, value rune) *Node {
	return newNode(tok, Char, CharNode{Value: value})
}
func NewString(tok token.Token, value string) *Node {
	return newNode(tok, String, StringNode{Value: value})
}
func NewIdent(tok token.Token) *Node {
	return newNode(tok, Ident, IdentNode{Name: tok.Value})
}
func NewBinaryOp(tok token.Token, op BinaryOpKind, left, right *Node) *Node {
	return newNode(tok, BinaryOp, BinaryOpNode{Op: op, Left: left, Right: right})
}
func NewGrouping(tok token.Token, expr *Node) *Node {
	return newNode(tok, Grouping, GroupingNode{Expr: expr})
}
func NewUnaryOp(op token.Token, expr *Node) *Node {
	return newNode(op, UnaryOp, UnaryOpNode{Op: op, Expr: expr})
}
func NewPostfixOp(op token.Token, expr *Node) *Node {
	return newNode(op, PostfixOp, PostfixOpNode{Op: op, Expr: expr})
}
func NewAssign(tok token.Token, lhs, rhs *Node) *Node {
	return newNode(tok, Assign, AssignNode{Lhs: lhs, Rhs: rhs})
}
func NewCompoundAssign(op token.Token, lhs, rhs *Node) *Node {
	return newNode(op, CompoundAssign, CompoundAssignNode{Op: op, Lhs: lhs, Rhs: rhs})
}
func NewSubscript(tok token.Token, array, index *Node) *Node {
	return newNode(tok, Subscript, SubscriptNode{Array: array, Index: index})
}
func NewFuncCall(tok token.Token, funcExpr *Node, args []*Node) *Node {
	return newNode(tok, FuncCall, FuncCallNode{FuncExpr: funcExpr, Args: args})
}
func NewUnspecifiedDim(tok token.Token) *Node {
	return newNode(tok, UnspecifiedDim, UnspecifiedDimNode{})
}
func NewExprStmt(tok token.Token, expr *Node) *Node {
	return newNode(tok, ExprStmt, ExprStmtNode{Expr: expr})
}
func NewReturn(tok token.Token, expr *Node) *Node {
	return newNode(tok, Return, ReturnNode{Expr: expr})
}
func NewVarDecl(types []token.Token, name token.Token, sizeExpr, init *Node) *Node {
	tok := name
	if len(types) > 0 {
		tok = types[0]
	}
	return newNode(tok, VarDecl, VarDeclNode{Types: types, Name: name, SizeExpr: sizeExpr, Init: init})
}
func NewInclude(tok token.Token) *Node {
	return newNode(tok, Include, IncludeNode{Path: tok.Value, IsGlobal: tok.Type == token.IncludeGlobal})
}
func NewDirective(tok token.Token) *Node {
	return newNode(tok, Directive, DirectiveNode{Name: tok.Value})
}
func NewFuncDecl(returnTypes []token.Token, name token.Token, params []*Node, body *Node) *Node {
	tok := name
	if len(returnTypes) > 0 {
		tok = returnTypes[0]
	}
	return newNode(tok, FuncDecl, FuncDeclNode{ReturnTypes: returnTypes, Name: name, Params: params, Body: body})
}
func NewParam(types []token.Token, name token.Token, sizeExpr *Node) *Node {
	tok := name
	if len(types) > 0 {
		tok = types[0]
	}
	return newNode(tok, Param, ParamNode{Types: types, Name: name, SizeExpr: sizeExpr})
}
func NewIf(tok token.Token, cond, thenBody, elseBody *Node) *Node {
	return newNode(tok, If, IfNode{Cond: cond, ThenBody: thenBody, ElseBody: elseBody})
}
func NewBlock(tok token.Token, stmts []*Node) *Node {
	return newNode(tok, Block, BlockNode{Stmts: stmts})
}
func NewUsingNamespace(tok token.Token, name string) *Node {
	return newNode(tok, UsingNamespace, UsingNamespaceNode{Name: name})
}

// IsAssignable reports whether node may appear on the left of '=' or 'op='.
func IsAssignable(node *Node) bool {
	if node == nil {
		return false
	}
	switch node.Type {
	case Ident, Subscript, UnaryOp:
		return true
	default:
		return false
	}
}

// TypeNames returns the spelling of each type token, e.g. ["unsigned", "int", "*"].
func TypeNames(types []token.Token) []string {
	names := make([]string, len(types))
	for i, t := range types {
		if t.Value != "" {
			names[i] = t.Value
		} else {
			names[i] = t.Type.String()
		}
	}
	return names
}
