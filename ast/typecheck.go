package ast

import (
	"github.com/dcc-lang/dcc/diag"
	"github.com/dcc-lang/dcc/types"
)

// AddType recursively annotates every node in the subtree rooted at
// node with its result Type, and rewrites the ADD/SUB family into
// their pointer-arithmetic variants (spec.md §4.3). It is idempotent:
// a node whose Type is already set, or a nil node, is left alone.
// Type errors are fatal, reported through d at the offending node's
// token, exactly as every other diagnostic in this compiler.
func AddType(d *diag.Context, node *Node) {
	if node == nil || node.Type != nil {
		return
	}

	AddType(d, node.Lhs)
	AddType(d, node.Rhs)
	AddType(d, node.Cond)
	AddType(d, node.Then)
	AddType(d, node.Els)
	AddType(d, node.Init)
	AddType(d, node.Inc)
	for n := node.Body; n != nil; n = n.Next {
		AddType(d, n)
	}
	for n := node.Args; n != nil; n = n.Next {
		AddType(d, n)
	}

	switch node.Kind {
	case Add:
		addType(d, node)
	case Sub:
		subType(d, node)
	case Mul, Div:
		node.Type = types.IntType
	case Assign:
		node.Type = node.Lhs.Type
	case Eq, Ne, Lt, Le:
		node.Type = types.IntType
	case Addr:
		node.Type = types.PointerTo(node.Lhs.Type)
	case Deref:
		derefType(d, node)
	case Var:
		node.Type = node.BoundVar.Type
	case Num, Funcall:
		node.Type = types.IntType
	case PtrAdd, PtrSub:
		// Only ever produced internally by addType/subType below;
		// AddType never sees one as input.
	case PtrDiff:
		node.Type = types.IntType
	case StmtExpr:
		if node.Body == nil {
			d.ErrorTok(node.Tok, "statement expression returning void is not supported")
		}
		last := node.Body
		for last.Next != nil {
			last = last.Next
		}
		// The parser already lifted the tail ExprStmt's inner
		// expression in place of its wrapper (see parser.stmtExpr),
		// so last's own Type - set by the recursive walk above - is
		// the statement-expression's result type.
		node.Type = last.Type
	}
}

// addType resolves "+" per spec.md §4.3: int+int stays ADD/int;
// pointer+int or int+pointer becomes PTR_ADD/pointer-type, with the
// integer operand always placed on the right; pointer+pointer is a
// type error.
func addType(d *diag.Context, node *Node) {
	lhs, rhs := node.Lhs, node.Rhs

	switch {
	case types.IsInteger(lhs.Type) && types.IsInteger(rhs.Type):
		node.Type = types.IntType

	case types.IsPointerLike(lhs.Type) && types.IsPointerLike(rhs.Type):
		d.ErrorTok(node.Tok, "invalid operands: pointer + pointer")

	case types.IsPointerLike(rhs.Type):
		node.Lhs, node.Rhs = rhs, lhs
		node.Kind = PtrAdd
		node.Type = node.Lhs.Type

	default:
		node.Kind = PtrAdd
		node.Type = lhs.Type
	}
}

// subType resolves "-" per spec.md §4.3: int-int stays SUB/int;
// pointer-int becomes PTR_SUB/pointer; pointer-pointer becomes
// PTR_DIFF/int.
func subType(d *diag.Context, node *Node) {
	lhs, rhs := node.Lhs, node.Rhs

	switch {
	case types.IsInteger(lhs.Type) && types.IsInteger(rhs.Type):
		node.Type = types.IntType

	case types.IsPointerLike(lhs.Type) && types.IsPointerLike(rhs.Type):
		node.Kind = PtrDiff
		node.Type = types.IntType

	case types.IsPointerLike(lhs.Type):
		node.Kind = PtrSub
		node.Type = lhs.Type

	default:
		d.ErrorTok(node.Tok, "invalid operands to '-'")
	}
}

func derefType(d *diag.Context, node *Node) {
	base := node.Lhs.Type
	if !types.IsPointerLike(base) {
		d.ErrorTok(node.Tok, "invalid pointer dereference")
	}
	node.Type = base.Base
}

// SizeOf returns size(t), for the parser's `sizeof` constant folding.
func SizeOf(t *types.Type) int {
	return t.Size
}

// TypeCheckChain runs AddType over a Next-linked statement chain, the
// shape a Function's Body and a Block/StmtExpr's own Body both have.
func TypeCheckChain(d *diag.Context, head *Node) {
	for n := head; n != nil; n = n.Next {
		AddType(d, n)
	}
}
