package codegen

import (
	"strings"
	"testing"

	"github.com/dcc-lang/dcc/diag"
	"github.com/dcc-lang/dcc/lexer"
	"github.com/dcc-lang/dcc/parser"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	d := diag.New("t.c", []byte(src))
	toks := lexer.New(d).Tokenize()
	prog := parser.Parse(d, toks)
	return Generate(d, prog)
}

func TestGenerateEmitsHeaderAndSections(t *testing.T) {
	out := compile(t, "int main() { return 0; }\n")

	if !strings.HasPrefix(out, ".intel_syntax noprefix\n") {
		t.Fatalf("expected output to start with the Intel-syntax directive, got:\n%s", out)
	}
	if !strings.Contains(out, ".data\n") {
		t.Errorf("expected a .data section")
	}
	if !strings.Contains(out, ".text\n") {
		t.Errorf("expected a .text section")
	}
}

func TestGenerateFunctionPrologueAndEpilogue(t *testing.T) {
	out := compile(t, "int main() { return 42; }\n")

	for _, want := range []string{
		".global main\n",
		"main:\n",
		"  push rbp\n",
		"  mov rbp, rsp\n",
		".L.return.main:\n",
		"  mov rsp, rbp\n",
		"  pop rbp\n",
		"  ret\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateReturnPushesThenPopsIntoRax(t *testing.T) {
	out := compile(t, "int main() { return 42; }\n")
	if !strings.Contains(out, "  push 42\n") {
		t.Errorf("expected NUM(42) to push its literal value, got:\n%s", out)
	}
	if !strings.Contains(out, "  pop rax\n") {
		t.Errorf("expected RETURN to pop the expression result into rax, got:\n%s", out)
	}
}

func TestGenerateExprStmtRestoresStackDepth(t *testing.T) {
	// Every statement must leave the runtime stack depth unchanged;
	// EXPR_STMT is the only node that pushes a value it then discards.
	out := compile(t, "int f() { 1 + 1; return 0; }\n")
	if !strings.Contains(out, "  add rsp, 8\n") {
		t.Errorf("expected the bare expression statement to discard its pushed value, got:\n%s", out)
	}
}

func TestGenerateGlobalZeroInitialized(t *testing.T) {
	out := compile(t, "int g;\nint main() { return g; }\n")
	if !strings.Contains(out, "g:\n  .zero 8\n") {
		t.Errorf("expected an uninitialized int global to reserve 8 zeroed bytes, got:\n%s", out)
	}
}

func TestGenerateGlobalIntInitializerSizedFromType(t *testing.T) {
	// Both scalar int and array-of-int initializers are sized from the
	// element's own Type.Size (8 bytes here), not a fixed 4-byte .long -
	// see codegen.go's genGlobal doc comment for why.
	out := compile(t, "int g = 7;\nint main() { return g; }\n")
	if !strings.Contains(out, "g:\n  .quad 7\n") {
		t.Errorf("expected a .quad-sized int initializer, got:\n%s", out)
	}
}

func TestGenerateCharGlobalInitializerIsOneByte(t *testing.T) {
	out := compile(t, "char g = 7;\nint main() { return 0; }\n")
	if !strings.Contains(out, "g:\n  .byte 7\n") {
		t.Errorf("expected a .byte-sized char initializer, got:\n%s", out)
	}
}

func TestGenerateStringLiteralBackingGlobal(t *testing.T) {
	out := compile(t, `
		int main() {
			char *s;
			s = "hi";
			return 0;
		}
	`)
	if !strings.Contains(out, ".L.data.0:\n") {
		t.Errorf("expected a synthesized string-backing global label, got:\n%s", out)
	}
	for _, want := range []string{"  .byte 104\n", "  .byte 105\n", "  .byte 0\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected decoded string bytes to include %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateIfElseLabelsAreSequential(t *testing.T) {
	out := compile(t, `
		int main() {
			if (1) {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	for _, want := range []string{".Lelse001:\n", ".Lend001:\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected if/else to emit %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateWhileLoop(t *testing.T) {
	out := compile(t, `
		int main() {
			int i;
			i = 0;
			while (i) {
				i = 0;
			}
			return 0;
		}
	`)
	for _, want := range []string{".Lbegin001:\n", "  je .Lend001\n", "  jmp .Lbegin001\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected while loop to emit %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateFuncallAlignsStackAtRuntime(t *testing.T) {
	out := compile(t, `
		int main() {
			return g();
		}
	`)
	for _, want := range []string{"  and rax, 15\n", "  call g\n", "  sub rsp, 8\n", "  add rsp, 8\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected funcall's runtime alignment check to emit %q, got:\n%s", want, out)
		}
	}
}

func TestGeneratePointerArithmeticScalesBySize(t *testing.T) {
	out := compile(t, `
		int main() {
			int *p;
			p = p + 1;
			return 0;
		}
	`)
	if !strings.Contains(out, "  imul rdi, 8\n") {
		t.Errorf("expected pointer+int to scale the integer operand by the base type's size, got:\n%s", out)
	}
}

func TestGenerateDeterministicOnRepeatedRuns(t *testing.T) {
	src := `
		int g = 3;
		int add(int a, int b) { return a + b; }
		int main() {
			int i;
			i = 0;
			while (i < 10) {
				i = add(i, 1);
			}
			return i;
		}
	`
	first := compile(t, src)
	second := compile(t, src)
	if first != second {
		t.Errorf("expected identical output across runs over the same source")
	}
}
