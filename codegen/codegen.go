// Package codegen lowers an annotated AST to x86-64 GNU-syntax
// assembly (Intel dialect), System V AMD64 calling convention.
//
// codegen.go holds the top-level pipeline - header, .data, and
// per-function prologue/epilogue/frame wiring - while generator.go
// holds the per-expression-node emission rules, mirroring the
// teacher's own split between compiler.go (orchestration, header/
// footer, the .data table) and generator.go (one gen* method per
// instruction kind).
package codegen

import (
	"fmt"
	"strings"

	"github.com/dcc-lang/dcc/ast"
	"github.com/dcc-lang/dcc/diag"
)

// int8Regs/int64Regs are the System V AMD64 argument registers, in
// order, narrowed to the 1-byte aliases for char parameters.
var (
	int8Regs  = [6]string{"dil", "sil", "dl", "cl", "r8b", "r9b"}
	int64Regs = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
)

// Generator holds our object-state: the output buffer, the
// diagnostics context (for the rare codegen-time "not an lvalue"
// error that slips past the type pass), the shared monotonic label
// counter spec.md §9 asks to keep singular across statement kinds,
// and the name of the function currently being emitted (for its
// `.L.return.<name>` epilogue label).
type Generator struct {
	diag *diag.Context
	out  *strings.Builder

	labelSeq int
	curFunc  string
}

// Generate lowers an entire Program to one assembly text stream:
// `.intel_syntax noprefix`, then `.data` and every global, then
// `.text` and every function body, in program order - the only
// source of non-determinism a compiler could introduce (map
// iteration) never appears, so repeated runs over the same AST
// produce byte-identical output.
func Generate(d *diag.Context, prog *ast.Program) string {
	var out strings.Builder
	g := &Generator{diag: d, out: &out}

	g.emit(".intel_syntax noprefix\n")

	g.emit(".data\n")
	for _, v := range prog.Globals {
		g.genGlobal(v)
	}

	g.emit(".text\n")
	for _, fn := range prog.Funcs {
		g.genFunction(fn)
	}

	return out.String()
}

func (g *Generator) emit(format string, args ...interface{}) {
	fmt.Fprintf(g.out, format, args...)
}

func (g *Generator) nextLabel() int {
	g.labelSeq++
	return g.labelSeq
}

// genGlobal emits one global's storage. A faithful rewrite has to
// pick a single representation for "integer initializer" - the
// reference implementation emits a 4-byte `.long` for a scalar int
// initializer but a sequence of 8-byte `.quad` for an array's
// elements, which doesn't agree with either form's own declared
// element size (see DESIGN.md's "Open Question resolutions"). We resolve it
// by always sizing the emitted constant(s) from the Type itself:
// `.byte` for a 1-byte element (char), `.quad` for an 8-byte one
// (int, ptr) - consistent with size(int) = 8 everywhere else in this
// compiler.
func (g *Generator) genGlobal(v *ast.Variable) {
	g.emit("%s:\n", v.Name)

	if v.Init == nil {
		g.emit("  .zero %d\n", v.Type.Size)
		return
	}

	switch v.Init.Kind {
	case ast.InitBytes:
		for _, b := range v.Init.Bytes {
			g.emit("  .byte %d\n", int(b))
		}

	case ast.InitInt, ast.InitPtr:
		g.emitScalar(v.Type.Size, v.Init.Int)

	case ast.InitArray:
		elemSize := v.Type.Base.Size
		for _, val := range v.Init.Array {
			g.emitScalar(elemSize, val)
		}
		remaining := v.Type.Size - len(v.Init.Array)*elemSize
		if remaining > 0 {
			g.emit("  .zero %d\n", remaining)
		}
	}
}

func (g *Generator) emitScalar(size, val int) {
	if size == 1 {
		g.emit("  .byte %d\n", val)
	} else {
		g.emit("  .quad %d\n", val)
	}
}

// genFunction emits one function: global export, prologue, incoming
// register arguments copied into their local slots, the body, and
// the shared `.L.return.<name>` epilogue.
func (g *Generator) genFunction(fn *ast.Function) {
	g.curFunc = fn.Name

	g.emit(".global %s\n", fn.Name)
	g.emit("%s:\n", fn.Name)
	g.emit("  push rbp\n")
	g.emit("  mov rbp, rsp\n")
	g.emit("  sub rsp, %d\n", fn.StackSize)

	for i, param := range fn.Params {
		reg := int64Regs[i]
		if param.Type.Size == 1 {
			reg = int8Regs[i]
		}
		g.emit("  mov [rbp-%d], %s\n", param.Offset, reg)
	}

	g.genStmtChain(fn.Body)

	g.emit(".L.return.%s:\n", fn.Name)
	g.emit("  mov rsp, rbp\n")
	g.emit("  pop rbp\n")
	g.emit("  ret\n")
}

// genStmtChain emits each statement of a Next-linked chain in order:
// a function body, or a BLOCK's Body.
func (g *Generator) genStmtChain(head *ast.Node) {
	for n := head; n != nil; n = n.Next {
		g.genStmt(n)
	}
}

// genStmt emits one statement. Every statement leaves the runtime
// stack's depth unchanged - the "frame invariant" spec.md §8 asks
// for: each expression a statement evaluates (a RETURN operand, an
// IF/WHILE/FOR condition, an EXPR_STMT's expression) pushes one value
// that the statement pops again, EXPR_STMT by discarding it with
// `add rsp, 8`.
func (g *Generator) genStmt(n *ast.Node) {
	switch n.Kind {
	case ast.Return:
		g.genExpr(n.Lhs)
		g.emit("  pop rax\n")
		g.emit("  jmp .L.return.%s\n", g.curFunc)

	case ast.If:
		g.genIf(n)

	case ast.While:
		g.genWhile(n)

	case ast.For:
		g.genFor(n)

	case ast.Block:
		g.genStmtChain(n.Body)

	case ast.ExprStmt:
		g.genExpr(n.Lhs)
		g.emit("  add rsp, 8\n")

	case ast.Null:
		// no code

	default:
		g.diag.ErrorTok(n.Tok, "internal error: %s is not a statement", n.Kind)
	}
}

func (g *Generator) genIf(n *ast.Node) {
	seq := g.nextLabel()

	g.genExpr(n.Cond)
	g.emit("  pop rax\n")
	g.emit("  cmp rax, 0\n")

	if n.Els != nil {
		g.emit("  je .Lelse%03d\n", seq)
	} else {
		g.emit("  je .Lend%03d\n", seq)
	}

	g.genStmt(n.Then)

	if n.Els != nil {
		g.emit("  jmp .Lend%03d\n", seq)
		g.emit(".Lelse%03d:\n", seq)
		g.genStmt(n.Els)
	}

	g.emit(".Lend%03d:\n", seq)
}

func (g *Generator) genWhile(n *ast.Node) {
	seq := g.nextLabel()

	g.emit(".Lbegin%03d:\n", seq)
	g.genExpr(n.Cond)
	g.emit("  pop rax\n")
	g.emit("  cmp rax, 0\n")
	g.emit("  je .Lend%03d\n", seq)

	g.genStmt(n.Then)

	g.emit("  jmp .Lbegin%03d\n", seq)
	g.emit(".Lend%03d:\n", seq)
}

func (g *Generator) genFor(n *ast.Node) {
	seq := g.nextLabel()

	if n.Init != nil {
		g.genStmt(n.Init)
	}

	g.emit(".Lbegin%03d:\n", seq)

	if n.Cond != nil {
		g.genExpr(n.Cond)
		g.emit("  pop rax\n")
		g.emit("  cmp rax, 0\n")
		g.emit("  je .Lend%03d\n", seq)
	}

	g.genStmt(n.Then)

	if n.Inc != nil {
		g.genStmt(n.Inc)
	}

	g.emit("  jmp .Lbegin%03d\n", seq)
	g.emit(".Lend%03d:\n", seq)
}
