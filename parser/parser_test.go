package parser

import (
	"testing"

	"github.com/dcc-lang/dcc/ast"
	"github.com/dcc-lang/dcc/diag"
	"github.com/dcc-lang/dcc/lexer"
	"github.com/dcc-lang/dcc/types"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	d := diag.New("t.c", []byte(src))
	toks := lexer.New(d).Tokenize()
	return Parse(d, toks)
}

func TestParseEmptyFunction(t *testing.T) {
	prog := parse(t, "int main() { return 0; }\n")
	if len(prog.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Funcs))
	}
	fn := prog.Funcs[0]
	if fn.Name != "main" || fn.ReturnType != types.IntType {
		t.Errorf("unexpected function signature: %+v", fn)
	}
	if fn.Body == nil || fn.Body.Kind != ast.Return {
		t.Fatalf("expected a single RETURN statement, got %+v", fn.Body)
	}
}

func TestParseGlobalVsFunctionDisambiguation(t *testing.T) {
	prog := parse(t, "int g;\nint f() { return g; }\n")
	if len(prog.Globals) != 1 || prog.Globals[0].Name != "g" {
		t.Fatalf("expected a single global 'g', got %+v", prog.Globals)
	}
	if len(prog.Funcs) != 1 || prog.Funcs[0].Name != "f" {
		t.Fatalf("expected a single function 'f', got %+v", prog.Funcs)
	}
}

func TestParamsBecomeLocals(t *testing.T) {
	prog := parse(t, "int add(int a, int b) { return a + b; }\n")
	fn := prog.Funcs[0]
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if len(fn.Locals) != 2 {
		t.Fatalf("expected params to also appear in Locals, got %d", len(fn.Locals))
	}
	// layoutFrame has already run (via Parse), so the function's frame
	// size is nonzero and 8-byte-aligned.
	if fn.StackSize%8 != 0 || fn.StackSize == 0 {
		t.Errorf("unexpected stack size: %d", fn.StackSize)
	}
}

func TestShadowingRestoresOuterScope(t *testing.T) {
	// Inner block's `x` must not leak into, or conflict with, the
	// outer declaration once the block closes.
	prog := parse(t, `
		int main() {
			int x;
			{
				int x;
				x = 1;
			}
			x = 2;
			return x;
		}
	`)
	fn := prog.Funcs[0]
	if len(fn.Locals) != 2 {
		t.Fatalf("expected two distinct 'x' locals, got %d", len(fn.Locals))
	}
}

func TestArrayTypeSuffixNesting(t *testing.T) {
	// int x[2][3] => x is an array of 2, each an array of 3 ints.
	prog := parse(t, "int main() { int x[2][3]; return 0; }\n")
	fn := prog.Funcs[0]
	xt := fn.Locals[0].Type
	if xt.Kind != types.Array || xt.Len != 2 {
		t.Fatalf("outer dimension wrong: %+v", xt)
	}
	if xt.Base.Kind != types.Array || xt.Base.Len != 3 {
		t.Fatalf("inner dimension wrong: %+v", xt.Base)
	}
	if xt.Base.Base != types.IntType {
		t.Fatalf("element type wrong: %+v", xt.Base.Base)
	}
}

func TestIndexingDesugarsToDerefAdd(t *testing.T) {
	prog := parse(t, "int main() { int x[3]; return x[1]; }\n")
	ret := prog.Funcs[0].Body.Next // past the declaration
	if ret.Kind != ast.Return {
		t.Fatalf("expected RETURN, got %s", ret.Kind)
	}
	deref := ret.Lhs
	if deref.Kind != ast.Deref {
		t.Fatalf("x[1] should desugar to a DEREF, got %s", deref.Kind)
	}
	// Parse has already run the type pass, which turns array + int
	// into PTR_ADD.
	if deref.Lhs.Kind != ast.PtrAdd {
		t.Fatalf("DEREF's operand should be a PTR_ADD, got %s", deref.Lhs.Kind)
	}
}

func TestRelationalGreaterThanSwapsOperands(t *testing.T) {
	prog := parse(t, "int main() { return 1 > 2; }\n")
	ret := prog.Funcs[0].Body
	lt := ret.Lhs
	if lt.Kind != ast.Lt {
		t.Fatalf("'>' should fold to LT, got %s", lt.Kind)
	}
	if lt.Lhs.Val != 2 || lt.Rhs.Val != 1 {
		t.Errorf("'1 > 2' should fold to LT(2,1), got LT(%d,%d)", lt.Lhs.Val, lt.Rhs.Val)
	}
}

func TestUnaryMinusFoldsToSub(t *testing.T) {
	prog := parse(t, "int main() { return -5; }\n")
	ret := prog.Funcs[0].Body
	if ret.Lhs.Kind != ast.Sub {
		t.Fatalf("unary '-' should fold to SUB, got %s", ret.Lhs.Kind)
	}
	if ret.Lhs.Lhs.Val != 0 || ret.Lhs.Rhs.Val != 5 {
		t.Errorf("'-5' should fold to SUB(0,5), got SUB(%d,%d)", ret.Lhs.Lhs.Val, ret.Lhs.Rhs.Val)
	}
}

func TestSizeofFoldsAtParseTime(t *testing.T) {
	prog := parse(t, "int main() { return sizeof(1); }\n")
	ret := prog.Funcs[0].Body
	if ret.Lhs.Kind != ast.Num || ret.Lhs.Val != types.IntType.Size {
		t.Errorf("sizeof(1) should fold immediately to NUM(%d), got %s(%d)", types.IntType.Size, ret.Lhs.Kind, ret.Lhs.Val)
	}
}

func TestStmtExprTailLifting(t *testing.T) {
	prog := parse(t, "int main() { return ({ 1; 2; }); }\n")
	se := prog.Funcs[0].Body.Lhs
	if se.Kind != ast.StmtExpr {
		t.Fatalf("expected STMT_EXPR, got %s", se.Kind)
	}
	tail := se.Body.Next
	if tail.Kind == ast.ExprStmt {
		t.Errorf("the tail statement's ExprStmt wrapper should have been lifted away")
	}
	if tail.Kind != ast.Num || tail.Val != 2 {
		t.Errorf("expected the lifted tail to be NUM(2), got %s(%d)", tail.Kind, tail.Val)
	}
}

func TestCharLiteralGlobalInitIsAlwaysZero(t *testing.T) {
	prog := parse(t, "int c = 'a';\n")
	g := prog.Globals[0]
	if g.Init.Kind != ast.InitInt || g.Init.Int != 0 {
		t.Errorf("a char-literal initializer should parse but always store 0, got %+v", g.Init)
	}
}

func TestStringLiteralSynthesizesGlobal(t *testing.T) {
	// A string literal used as a global initializer's RHS is not a
	// permitted global-init form (that's `int`/`ptr`/`array` only), so
	// exercise synthesis via a string literal inside a function body.
	prog := parse(t, `
		int main() {
			char *s;
			s = "hi";
			return 0;
		}
	`)
	if len(prog.Globals) != 1 {
		t.Fatalf("expected one synthesized string-backing global, got %d", len(prog.Globals))
	}
	g := prog.Globals[0]
	if g.Init == nil || g.Init.Kind != ast.InitBytes {
		t.Fatalf("expected an InitBytes global, got %+v", g.Init)
	}
	want := []byte("hi\x00")
	if string(g.Init.Bytes) != string(want) {
		t.Errorf("expected decoded bytes %q, got %q", want, g.Init.Bytes)
	}
}

func TestArrayGlobalInitTooLongIsRejected(t *testing.T) {
	// This test documents the intended fail-fast behavior; since
	// ErrorTok calls os.Exit(1), it cannot be exercised in-process.
	// diag's own tests cover only its line/column lookup; the exit
	// path itself has no in-process test (see DESIGN.md).
	t.Skip("globalInit's overflow check calls os.Exit(1) via diag.ErrorTok; not exercisable in-process")
}
