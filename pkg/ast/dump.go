package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xplshn/cfront/pkg/token"
)

// Dump writes an indented, one-node-per-line rendering of stmts to w.
func Dump(w io.Writer, stmts []*Node) error {
	d := &dumper{w: w}
	for _, s := range stmts {
		d.node(s, 0)
	}
	return d.err
}

// DumpString is Dump into a string.
func DumpString(stmts []*Node) string {
	var sb strings.Builder
	_ = Dump(&sb, stmts)
	return sb.String()
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(depth int, format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

// labelled prints an optional child under a label line, e.g. "Init".
func (d *dumper) labelled(label string, n *Node, depth int) {
	if n == nil {
		return
	}
	d.line(depth, "%s", label)
	d.node(n, depth+1)
}

func typeString(types []token.Token) string {
	return strings.Join(TypeNames(types), " ")
}

func (d *dumper) node(n *Node, depth int) {
	if n == nil {
		d.line(depth, "<nil>")
		return
	}
	switch data := n.Data.(type) {
	case NumberNode:
		d.line(depth, "Number %d", data.Value)
	case FloatNode:
		d.line(depth, "Float %s", strconv.FormatFloat(data.Value, 'g', -1, 64))
	case CharNode:
		d.line(depth, "Char %q", data.Value)
	case StringNode:
		d.line(depth, "String %q", data.Value)
	case IdentNode:
		d.line(depth, "Ident %s", data.Name)
	case BinaryOpNode:
		d.line(depth, "BinaryOp %s", data.Op)
		d.node(data.Left, depth+1)
		d.node(data.Right, depth+1)
	case GroupingNode:
		d.line(depth, "Grouping")
		d.node(data.Expr, depth+1)
	case UnaryOpNode:
		d.line(depth, "UnaryOp %s", data.Op.Type)
		d.node(data.Expr, depth+1)
	case PostfixOpNode:
		d.line(depth, "PostfixOp %s", data.Op.Type)
		d.node(data.Expr, depth+1)
	case AssignNode:
		d.line(depth, "Assign")
		d.node(data.Lhs, depth+1)
		d.node(data.Rhs, depth+1)
	case CompoundAssignNode:
		d.line(depth, "CompoundAssign %s", data.Op.Type)
		d.node(data.Lhs, depth+1)
		d.node(data.Rhs, depth+1)
	case SubscriptNode:
		d.line(depth, "Subscript")
		d.node(data.Array, depth+1)
		d.node(data.Index, depth+1)
	case FuncCallNode:
		d.line(depth, "FuncCall")
		d.node(data.FuncExpr, depth+1)
		for _, arg := range data.Args {
			d.labelled("Arg", arg, depth+1)
		}
	case UnspecifiedDimNode:
		d.line(depth, "UnspecifiedDim")
	case ExprStmtNode:
		d.line(depth, "ExprStmt")
		d.node(data.Expr, depth+1)
	case ReturnNode:
		d.line(depth, "Return")
		if data.Expr != nil {
			d.node(data.Expr, depth+1)
		}
	case VarDeclNode:
		d.line(depth, "VarDecl %s %s", typeString(data.Types), data.Name.Value)
		d.labelled("Size", data.SizeExpr, depth+1)
		d.labelled("Init", data.Init, depth+1)
	case IncludeNode:
		if data.IsGlobal {
			d.line(depth, "Include <%s>", data.Path)
		} else {
			d.line(depth, "Include %q", data.Path)
		}
	case DirectiveNode:
		d.line(depth, "Directive #%s", data.Name)
	case FuncDeclNode:
		d.line(depth, "FuncDecl %s %s", typeString(data.ReturnTypes), data.Name.Value)
		for _, p := range data.Params {
			d.node(p, depth+1)
		}
		d.node(data.Body, depth+1)
	case ParamNode:
		d.line(depth, "Param %s %s", typeString(data.Types), data.Name.Value)
		d.labelled("Size", data.SizeExpr, depth+1)
	case IfNode:
		d.line(depth, "If")
		d.labelled("Cond", data.Cond, depth+1)
		d.labelled("Then", data.ThenBody, depth+1)
		d.labelled("Else", data.ElseBody, depth+1)
	case BlockNode:
		d.line(depth, "Block")
		for _, s := range data.Stmts {
			d.node(s, depth+1)
		}
	case UsingNamespaceNode:
		d.line(depth, "UsingNamespace %s", data.Name)
	default:
		d.line(depth, "%s <unknown payload %T>", n.Type, n.Data)
	}
}

// MarshalJSON renders the node as {"kind": ..., "line": ..., <fields>}.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	obj := map[string]interface{}{
		"kind": n.Type.String(),
		"line": n.Tok.Line,
	}
	switch data := n.Data.(type) {
	case NumberNode:
		obj["value"] = data.Value
	case FloatNode:
		obj["value"] = data.Value
	case CharNode:
		obj["value"] = string(data.Value)
	case StringNode:
		obj["value"] = data.Value
	case IdentNode:
		obj["name"] = data.Name
	case BinaryOpNode:
		obj["op"], obj["left"], obj["right"] = data.Op.String(), data.Left, data.Right
	case GroupingNode:
		obj["expr"] = data.Expr
	case UnaryOpNode:
		obj["op"], obj["expr"] = data.Op.Type.String(), data.Expr
	case PostfixOpNode:
		obj["op"], obj["expr"] = data.Op.Type.String(), data.Expr
	case AssignNode:
		obj["target"], obj["value"] = data.Lhs, data.Rhs
	case CompoundAssignNode:
		obj["op"], obj["target"], obj["value"] = data.Op.Type.String(), data.Lhs, data.Rhs
	case SubscriptNode:
		obj["array"], obj["index"] = data.Array, data.Index
	case FuncCallNode:
		obj["callee"], obj["args"] = data.FuncExpr, nonNil(data.Args)
	case ExprStmtNode:
		obj["expr"] = data.Expr
	case ReturnNode:
		obj["value"] = data.Expr
	case VarDeclNode:
		obj["types"], obj["name"] = TypeNames(data.Types), data.Name.Value
		obj["size"], obj["init"] = data.SizeExpr, data.Init
	case IncludeNode:
		obj["path"], obj["global"] = data.Path, data.IsGlobal
	case DirectiveNode:
		obj["name"] = data.Name
	case FuncDeclNode:
		obj["returnTypes"], obj["name"] = TypeNames(data.ReturnTypes), data.Name.Value
		obj["params"], obj["body"] = nonNil(data.Params), data.Body
	case ParamNode:
		obj["types"], obj["name"], obj["size"] = TypeNames(data.Types), data.Name.Value, data.SizeExpr
	case IfNode:
		obj["cond"], obj["then"], obj["else"] = data.Cond, data.ThenBody, data.ElseBody
	case BlockNode:
		obj["stmts"] = nonNil(data.Stmts)
	case UsingNamespaceNode:
		obj["name"] = data.Name
	}
	return json.Marshal(obj)
}

func nonNil(nodes []*Node) []*Node {
	if nodes == nil {
		return []*Node{}
	}
	return nodes
}
