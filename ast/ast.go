// Package ast defines the compiler's abstract syntax tree, symbol
// table records, and program-level containers (spec.md §3).
//
// The tree is a directed acyclic graph of plain Go pointers: every
// parent owns its children, and sibling lists (block statements,
// call arguments) are threaded through a Next field exactly as
// spec.md describes, rather than collected into slices. Nothing is
// freed before the process exits, so aliasing a child pointer across
// nodes is safe - there is only ever one owner reading it, the
// codegen pass, and it runs after parsing has finished building the
// tree.
package ast

import (
	"github.com/dcc-lang/dcc/token"
	"github.com/dcc-lang/dcc/types"
)

// Kind is the closed set of AST node tags.
type Kind string

const (
	Num      Kind = "NUM"
	Var      Kind = "VAR"
	Addr     Kind = "ADDR"
	Deref    Kind = "DEREF"
	Assign   Kind = "ASSIGN"
	Add      Kind = "ADD"
	Sub      Kind = "SUB"
	Mul      Kind = "MUL"
	Div      Kind = "DIV"
	PtrAdd   Kind = "PTR_ADD"
	PtrSub   Kind = "PTR_SUB"
	PtrDiff  Kind = "PTR_DIFF"
	Eq       Kind = "EQ"
	Ne       Kind = "NE"
	Lt       Kind = "LT"
	Le       Kind = "LE"
	Return   Kind = "RETURN"
	If       Kind = "IF"
	While    Kind = "WHILE"
	For      Kind = "FOR"
	Block    Kind = "BLOCK"
	Funcall  Kind = "FUNCALL"
	ExprStmt Kind = "EXPR_STMT"
	StmtExpr Kind = "STMT_EXPR"
	Null     Kind = "NULL"
)

// Node is one AST node. The zero value is Kind == "" which is never a
// valid tag in this closed set; every node returned by the parser has
// Kind immediately set at construction, matching spec.md §5's
// allocation discipline ("zero-initialized on creation... must
// therefore... be immediately overwritten").
type Node struct {
	Kind Kind
	Tok  token.Token
	Type *types.Type

	// Lhs/Rhs: binary operators and ASSIGN. Lhs alone: unary
	// operators (ADDR, DEREF) and RETURN/EXPR_STMT's operand.
	Lhs, Rhs *Node

	// Cond/Then/Els/Init/Inc: IF ("Els" may be nil), WHILE (Cond,
	// Then only), FOR (any of Init/Cond/Inc may be nil).
	Cond, Then, Els, Init, Inc *Node

	// Body is the head of a Next-linked sibling chain: the
	// statements of a BLOCK or STMT_EXPR.
	Body *Node

	// Next threads a node onto its parent's sibling chain (Body
	// above, or Args below).
	Next *Node

	// FuncName/Args: FUNCALL. Args is the head of a Next-linked
	// chain of argument expressions; the callee is referenced
	// symbolically by name; call sites need not see a prior
	// declaration (spec.md §4.4).
	FuncName string
	Args     *Node

	// BoundVar: VAR, the Variable this reference resolves to.
	BoundVar *Variable

	// Val: NUM, the literal's value.
	Val int
}

// GlobalInitKind tags the closed set of forms a global's initializer
// can take (spec.md §4.4's "Global variable initializers").
type GlobalInitKind string

const (
	InitNone  GlobalInitKind = ""
	InitInt   GlobalInitKind = "int"
	InitPtr   GlobalInitKind = "ptr"
	InitArray GlobalInitKind = "array"
	InitBytes GlobalInitKind = "bytes"
)

// GlobalInit is the payload of a global Variable's initializer.
type GlobalInit struct {
	Kind  GlobalInitKind
	Int   int   // InitInt, InitPtr
	Array []int // InitArray: K supplied values, zero-padded to Len at codegen time
	Bytes []byte // InitBytes: a string literal's decoded contents, including trailing NUL
}

// Variable is a symbol-table record: either a function parameter or
// local (IsLocal true, Offset meaningful) or a global (IsLocal false,
// Init meaningful). Created exactly once by the parser; Offset is
// filled in later by the frame-layout pass (spec.md §4.4).
type Variable struct {
	Name    string
	Type    *types.Type
	IsLocal bool
	Offset  int // frame offset from rbp, locals only; always >= 0

	Init *GlobalInit // globals only; nil means zero-initialized
}

// Function is one compiled function: its signature, its body as a
// Next-linked statement chain (Body), its full local table in
// declaration order, and its computed, 8-byte-aligned frame size.
type Function struct {
	Name       string
	ReturnType *types.Type
	Params     []*Variable
	Body       *Node
	Locals     []*Variable
	StackSize  int
}

// Program is the parser's final output: every global (including the
// anonymous ones synthesized to back string literals) and every
// function, in source order.
type Program struct {
	Globals []*Variable
	Funcs   []*Function
}
