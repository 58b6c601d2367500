package codegen

import (
	"github.com/dcc-lang/dcc/ast"
	"github.com/dcc-lang/dcc/types"
)

// genExpr emits one expression node: it consumes nothing from the
// runtime stack and pushes exactly one 64-bit value, the
// stack-machine invariant spec.md §4.5 is built on.
func (g *Generator) genExpr(n *ast.Node) {
	switch n.Kind {
	case ast.Num:
		g.emit("  push %d\n", n.Val)

	case ast.Var:
		g.genAddr(n)
		if n.Type.Kind != types.Array {
			g.load(n.Type)
		}

	case ast.Addr:
		g.genAddr(n.Lhs)

	case ast.Deref:
		g.genExpr(n.Lhs)
		if n.Type.Kind != types.Array {
			g.load(n.Type)
		}

	case ast.Assign:
		if n.Lhs.Type.Kind == types.Array {
			g.diag.ErrorTok(n.Tok, "array is not an assignable lvalue")
		}
		g.genAddr(n.Lhs)
		g.genExpr(n.Rhs)
		g.store(n.Lhs.Type)

	case ast.Add, ast.Sub, ast.Mul, ast.Div:
		g.genArith(n)

	case ast.PtrAdd:
		g.genPtrAdd(n)

	case ast.PtrSub:
		g.genPtrSub(n)

	case ast.PtrDiff:
		g.genPtrDiff(n)

	case ast.Eq, ast.Ne, ast.Lt, ast.Le:
		g.genCompare(n)

	case ast.Funcall:
		g.genFuncall(n)

	case ast.StmtExpr:
		// Every statement but the last is emitted as a statement; the
		// last is the tail expression the parser lifted out of its
		// ExprStmt wrapper, and its value stays on the stack.
		for s := n.Body; s != nil; s = s.Next {
			if s.Next == nil {
				g.genExpr(s)
			} else {
				g.genStmt(s)
			}
		}

	case ast.Null:
		// no code

	default:
		g.diag.ErrorTok(n.Tok, "internal error: %s is not an expression", n.Kind)
	}
}

// genAddr computes the address of an lvalue node and leaves it on top
// of the runtime stack, by whichever means spec.md §4.5 prescribes
// for that node's shape: a local's address is computed into rax then
// pushed, a global's is pushed directly as a link-time constant, and
// a dereference's is just its operand's already-pushed value.
func (g *Generator) genAddr(n *ast.Node) {
	switch n.Kind {
	case ast.Var:
		if n.BoundVar.IsLocal {
			g.emit("  lea rax, [rbp-%d]\n", n.BoundVar.Offset)
			g.emit("  push rax\n")
		} else {
			g.emit("  push offset %s\n", n.BoundVar.Name)
		}

	case ast.Deref:
		g.genExpr(n.Lhs)

	default:
		g.diag.ErrorTok(n.Tok, "not an lvalue")
	}
}

// load expects an address on the stack top and replaces it with the
// value stored there.
func (g *Generator) load(t *types.Type) {
	g.emit("  pop rax\n")
	if t.Size == 1 {
		g.emit("  movsx rax, BYTE PTR [rax]\n")
	} else {
		g.emit("  mov rax, [rax]\n")
	}
	g.emit("  push rax\n")
}

// store expects value above address on the stack top (address
// pushed first by genAddr, then the value by genExpr), writes value
// to *address, and leaves the value on the stack so that `a = b = c`
// composes naturally.
func (g *Generator) store(t *types.Type) {
	g.emit("  pop rdi\n")
	g.emit("  pop rax\n")
	if t.Size == 1 {
		g.emit("  mov [rax], dil\n")
	} else {
		g.emit("  mov [rax], rdi\n")
	}
	g.emit("  push rdi\n")
}

// genArith handles the four plain-integer binary operators: generate
// lhs then rhs, pop into rdi (rhs) then rax (lhs), emit the op, push
// the result.
func (g *Generator) genArith(n *ast.Node) {
	g.genExpr(n.Lhs)
	g.genExpr(n.Rhs)
	g.emit("  pop rdi\n")
	g.emit("  pop rax\n")

	switch n.Kind {
	case ast.Add:
		g.emit("  add rax, rdi\n")
	case ast.Sub:
		g.emit("  sub rax, rdi\n")
	case ast.Mul:
		g.emit("  imul rax, rdi\n")
	case ast.Div:
		g.emit("  cqo\n")
		g.emit("  idiv rdi\n")
	}

	g.emit("  push rax\n")
}

// genPtrAdd/genPtrSub scale the integer operand by the size of the
// pointer's base type before adding/subtracting, per spec.md §4.3's
// `add_type` rewrite: the pointer operand always ends up as Lhs.
func (g *Generator) genPtrAdd(n *ast.Node) {
	g.genExpr(n.Lhs)
	g.genExpr(n.Rhs)
	g.emit("  pop rdi\n")
	g.emit("  pop rax\n")
	g.emit("  imul rdi, %d\n", n.Type.Base.Size)
	g.emit("  add rax, rdi\n")
	g.emit("  push rax\n")
}

func (g *Generator) genPtrSub(n *ast.Node) {
	g.genExpr(n.Lhs)
	g.genExpr(n.Rhs)
	g.emit("  pop rdi\n")
	g.emit("  pop rax\n")
	g.emit("  imul rdi, %d\n", n.Type.Base.Size)
	g.emit("  sub rax, rdi\n")
	g.emit("  push rax\n")
}

// genPtrDiff subtracts two pointers, then divides the byte
// difference by the size of their shared base type.
func (g *Generator) genPtrDiff(n *ast.Node) {
	g.genExpr(n.Lhs)
	g.genExpr(n.Rhs)
	g.emit("  pop rdi\n")
	g.emit("  pop rax\n")
	g.emit("  sub rax, rdi\n")
	g.emit("  cqo\n")
	g.emit("  mov rdi, %d\n", n.Lhs.Type.Base.Size)
	g.emit("  idiv rdi\n")
	g.emit("  push rax\n")
}

// genCompare handles ==, !=, <, <= (> and >= are already folded to <
// and <= with swapped operands by the parser).
func (g *Generator) genCompare(n *ast.Node) {
	g.genExpr(n.Lhs)
	g.genExpr(n.Rhs)
	g.emit("  pop rdi\n")
	g.emit("  pop rax\n")
	g.emit("  cmp rax, rdi\n")

	switch n.Kind {
	case ast.Eq:
		g.emit("  sete al\n")
	case ast.Ne:
		g.emit("  setne al\n")
	case ast.Lt:
		g.emit("  setl al\n")
	case ast.Le:
		g.emit("  setle al\n")
	}

	g.emit("  movzx rax, al\n")
	g.emit("  push rax\n")
}

// genFuncall evaluates arguments left to right (each pushes one
// value), pops them into the argument registers in reverse, aligns
// rsp to 16 bytes at runtime (the ABI requires it at the `call`
// instruction and this compiler doesn't track static alignment), and
// calls the callee symbolically - no prior declaration is required.
func (g *Generator) genFuncall(n *ast.Node) {
	var args []*ast.Node
	for a := n.Args; a != nil; a = a.Next {
		args = append(args, a)
		g.genExpr(a)
	}

	for i := len(args) - 1; i >= 0; i-- {
		g.emit("  pop %s\n", int64Regs[i])
	}

	seq := g.nextLabel()
	g.emit("  mov rax, rsp\n")
	g.emit("  and rax, 15\n")
	g.emit("  jnz .L.call.%d\n", seq)
	g.emit("  mov rax, 0\n")
	g.emit("  call %s\n", n.FuncName)
	g.emit("  jmp .L.end.%d\n", seq)
	g.emit(".L.call.%d:\n", seq)
	g.emit("  sub rsp, 8\n")
	g.emit("  mov rax, 0\n")
	g.emit("  call %s\n", n.FuncName)
	g.emit("  add rsp, 8\n")
	g.emit(".L.end.%d:\n", seq)
	g.emit("  push rax\n")
}
