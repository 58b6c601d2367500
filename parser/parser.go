// Package parser is a recursive-descent parser over the grammar in
// spec.md §4.4. Each production below corresponds to one method that
// consumes exactly the tokens it matches and returns a subtree; the
// parser also resolves identifiers against a lexical scope chain
// (scope.go) and accumulates, per function, the local-variable table
// that the frame-layout pass (frame.go) later assigns offsets to.
package parser

import (
	"fmt"

	"github.com/dcc-lang/dcc/ast"
	"github.com/dcc-lang/dcc/diag"
	"github.com/dcc-lang/dcc/token"
	"github.com/dcc-lang/dcc/types"
)

// Parser holds our object-state.
type Parser struct {
	d    *diag.Context
	toks []token.Token
	pos  int

	scope *binding

	locals  []*ast.Variable // current function's locals, reset per function
	globals []*ast.Variable // every global declared so far, including synthesized string backing

	stringSeq int // next ".L.data.N" suffix
}

// Parse consumes toks (as produced by lexer.Tokenize, terminated by
// EOF) and returns the complete Program: every global and function in
// source order, with locals offset-assigned within their frames.
func Parse(d *diag.Context, toks []token.Token) *ast.Program {
	p := &Parser{d: d, toks: toks}

	var funcs []*ast.Function
	for !p.atEOF() {
		if p.looksLikeFunction() {
			funcs = append(funcs, p.function())
		} else {
			p.globalVar()
		}
	}

	for _, fn := range funcs {
		ast.TypeCheckChain(d, fn.Body)
		layoutFrame(fn)
	}

	return &ast.Program{Globals: p.globals, Funcs: funcs}
}

// --- token-stream helpers -------------------------------------------------

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) atEOF() bool       { return p.cur().Type == token.EOF }
func (p *Parser) at(lit string) bool { return p.cur().Is(lit) }

func (p *Parser) consume(lit string) bool {
	if p.at(lit) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expect(lit string) token.Token {
	tok := p.cur()
	if !p.at(lit) {
		p.d.ErrorTok(tok, "expected '%s'", lit)
	}
	p.pos++
	return tok
}

func (p *Parser) expectIdent() token.Token {
	tok := p.cur()
	if tok.Type != token.IDENT {
		p.d.ErrorTok(tok, "expected an identifier")
	}
	p.pos++
	return tok
}

func (p *Parser) expectNumber() int {
	tok := p.cur()
	if tok.Type != token.NUMBER {
		p.d.ErrorTok(tok, "expected a number")
	}
	p.pos++
	return tok.Value
}

func (p *Parser) isBasetype() bool {
	return p.at("int") || p.at("char")
}

// looksLikeFunction implements the "function vs. global_var" one-token
// lookahead spec.md §4.4 calls for: parse a basetype and an
// identifier, then check for a following "(", restoring the cursor
// regardless of the answer.
func (p *Parser) looksLikeFunction() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.basetype()
	if p.cur().Type != token.IDENT {
		return false
	}
	p.pos++
	return p.at("(")
}

// --- types -----------------------------------------------------------------

// basetype = ("int" | "char") "*"*
func (p *Parser) basetype() *types.Type {
	var t *types.Type
	switch {
	case p.consume("char"):
		t = types.CharType
	default:
		p.expect("int")
		t = types.IntType
	}
	for p.consume("*") {
		t = types.PointerTo(t)
	}
	return t
}

// typeSuffix = ( "[" num "]" )*
//
// Dimensions are parsed outermost-first but wrapped innermost-first,
// so `int x[2][3]` produces array(array(int,3),2): x is 2 elements,
// each itself an array of 3 ints.
func (p *Parser) typeSuffix(base *types.Type) *types.Type {
	if !p.consume("[") {
		return base
	}
	n := p.expectNumber()
	p.expect("]")
	elem := p.typeSuffix(base)
	return types.ArrayOf(elem, n)
}

// --- top level ---------------------------------------------------------------

// function = basetype ident "(" params? ")" "{" stmt* "}"
func (p *Parser) function() *ast.Function {
	retType := p.basetype()
	name := p.expectIdent().Literal

	mark := p.mark()
	p.locals = nil

	p.expect("(")
	var params []*ast.Variable
	if !p.at(")") {
		params = append(params, p.param())
		for p.consume(",") {
			params = append(params, p.param())
		}
	}
	p.expect(")")

	p.expect("{")
	var head ast.Node
	cur := &head
	for !p.consume("}") {
		cur.Next = p.stmt()
		cur = cur.Next
	}

	fn := &ast.Function{
		Name:       name,
		ReturnType: retType,
		Params:     params,
		Body:       head.Next,
		Locals:     p.locals,
	}

	p.restore(mark)
	return fn
}

// param = basetype ident type_suffix
func (p *Parser) param() *ast.Variable {
	t := p.basetype()
	tok := p.expectIdent()
	t = p.typeSuffix(t)

	v := &ast.Variable{Name: tok.Literal, Type: t, IsLocal: true}
	p.locals = append(p.locals, v)
	p.declare(v)
	return v
}

// global_var = basetype ident type_suffix ( "=" init )? ";"
func (p *Parser) globalVar() {
	t := p.basetype()
	tok := p.expectIdent()
	t = p.typeSuffix(t)

	v := &ast.Variable{Name: tok.Literal, Type: t, IsLocal: false}
	if p.consume("=") {
		v.Init = p.globalInit(t, tok)
	}
	p.expect(";")

	p.globals = append(p.globals, v)
	p.declare(v)
}

// globalInit parses the permitted initializer forms for a global of
// declared type t (spec.md §4.4's "Global variable initializers").
func (p *Parser) globalInit(t *types.Type, tok token.Token) *ast.GlobalInit {
	switch {
	case types.IsInteger(t):
		// `'...'` is parsed but always stored as 0 in this
		// implementation (see SPEC_FULL.md / the original source's
		// open question); an integer literal is stored as-is.
		if p.consume("'") {
			for !p.consume("'") {
				if p.atEOF() {
					p.d.ErrorTok(tok, "unterminated character literal in initializer")
				}
				p.pos++
			}
			return &ast.GlobalInit{Kind: ast.InitInt, Int: 0}
		}
		return &ast.GlobalInit{Kind: ast.InitInt, Int: p.expectNumber()}

	case t.Kind == types.Ptr:
		return &ast.GlobalInit{Kind: ast.InitPtr, Int: p.expectNumber()}

	case t.Kind == types.Array:
		p.expect("{")
		var vals []int
		if !p.at("}") {
			vals = append(vals, p.expectNumber())
			for p.consume(",") {
				vals = append(vals, p.expectNumber())
			}
		}
		p.expect("}")
		if len(vals) > t.Len {
			p.d.ErrorTok(tok, "too many initializers for array of length %d", t.Len)
		}
		return &ast.GlobalInit{Kind: ast.InitArray, Array: vals}

	default:
		p.d.ErrorTok(tok, "unsupported initializer form for this type")
		return nil
	}
}

// --- statements --------------------------------------------------------------

// stmt = "return" expr ";"
//      | "if" "(" expr ")" stmt ( "else" stmt )?
//      | "while" "(" expr ")" stmt
//      | "for" "(" expr-stmt? ";" expr? ";" expr-stmt? ")" stmt
//      | "{" stmt* "}"
//      | declaration
//      | expr ";"
func (p *Parser) stmt() *ast.Node {
	tok := p.cur()

	switch {
	case p.consume("return"):
		n := &ast.Node{Kind: ast.Return, Tok: tok, Lhs: p.expr()}
		p.expect(";")
		return n

	case p.consume("if"):
		n := &ast.Node{Kind: ast.If, Tok: tok}
		p.expect("(")
		n.Cond = p.expr()
		p.expect(")")
		n.Then = p.stmt()
		if p.consume("else") {
			n.Els = p.stmt()
		}
		return n

	case p.consume("while"):
		n := &ast.Node{Kind: ast.While, Tok: tok}
		p.expect("(")
		n.Cond = p.expr()
		p.expect(")")
		n.Then = p.stmt()
		return n

	case p.consume("for"):
		n := &ast.Node{Kind: ast.For, Tok: tok}
		p.expect("(")
		if !p.at(";") {
			n.Init = p.exprStmt()
		}
		p.expect(";")
		if !p.at(";") {
			n.Cond = p.expr()
		}
		p.expect(";")
		if !p.at(")") {
			n.Inc = p.exprStmt()
		}
		p.expect(")")
		n.Then = p.stmt()
		return n

	case p.consume("{"):
		mark := p.mark()
		n := &ast.Node{Kind: ast.Block, Tok: tok}
		var head ast.Node
		cur := &head
		for !p.consume("}") {
			cur.Next = p.stmt()
			cur = cur.Next
		}
		n.Body = head.Next
		p.restore(mark)
		return n

	case p.isBasetype():
		return p.declaration()

	default:
		n := p.exprStmt()
		p.expect(";")
		return n
	}
}

// declaration = basetype ident type_suffix ( "=" expr )? ";"
func (p *Parser) declaration() *ast.Node {
	t := p.basetype()
	tok := p.expectIdent()
	t = p.typeSuffix(t)

	v := &ast.Variable{Name: tok.Literal, Type: t, IsLocal: true}
	p.locals = append(p.locals, v)
	p.declare(v)

	if p.consume(";") {
		return &ast.Node{Kind: ast.Null, Tok: tok}
	}

	p.expect("=")
	lhs := &ast.Node{Kind: ast.Var, Tok: tok, BoundVar: v}
	assign := &ast.Node{Kind: ast.Assign, Tok: tok, Lhs: lhs, Rhs: p.expr()}
	p.expect(";")
	return &ast.Node{Kind: ast.ExprStmt, Tok: tok, Lhs: assign}
}

// exprStmt wraps an expression as a statement: used for bare
// `expr ";"` statements and for a for-loop's optional init/inc
// clauses.
func (p *Parser) exprStmt() *ast.Node {
	tok := p.cur()
	return &ast.Node{Kind: ast.ExprStmt, Tok: tok, Lhs: p.expr()}
}

// --- expressions ---------------------------------------------------------

// expr = assign
func (p *Parser) expr() *ast.Node {
	return p.assign()
}

// assign = equality ( "=" assign )?
func (p *Parser) assign() *ast.Node {
	n := p.equality()
	if p.consume("=") {
		n = &ast.Node{Kind: ast.Assign, Tok: n.Tok, Lhs: n, Rhs: p.assign()}
	}
	return n
}

// equality = relational ( ("=="|"!=") relational )*
func (p *Parser) equality() *ast.Node {
	n := p.relational()
	for {
		tok := p.cur()
		switch {
		case p.consume("=="):
			n = &ast.Node{Kind: ast.Eq, Tok: tok, Lhs: n, Rhs: p.relational()}
		case p.consume("!="):
			n = &ast.Node{Kind: ast.Ne, Tok: tok, Lhs: n, Rhs: p.relational()}
		default:
			return n
		}
	}
}

// relational = add ( ("<"|"<="|">"|">=") add )*
//
// `a > b` folds to LT(b,a) and `a >= b` to LE(b,a), so the code
// generator only ever has to implement "<" and "<=".
func (p *Parser) relational() *ast.Node {
	n := p.add()
	for {
		tok := p.cur()
		switch {
		case p.consume("<"):
			n = &ast.Node{Kind: ast.Lt, Tok: tok, Lhs: n, Rhs: p.add()}
		case p.consume("<="):
			n = &ast.Node{Kind: ast.Le, Tok: tok, Lhs: n, Rhs: p.add()}
		case p.consume(">"):
			n = &ast.Node{Kind: ast.Lt, Tok: tok, Lhs: p.add(), Rhs: n}
		case p.consume(">="):
			n = &ast.Node{Kind: ast.Le, Tok: tok, Lhs: p.add(), Rhs: n}
		default:
			return n
		}
	}
}

// add = mul ( ("+"|"-") mul )*
func (p *Parser) add() *ast.Node {
	n := p.mul()
	for {
		tok := p.cur()
		switch {
		case p.consume("+"):
			n = &ast.Node{Kind: ast.Add, Tok: tok, Lhs: n, Rhs: p.mul()}
		case p.consume("-"):
			n = &ast.Node{Kind: ast.Sub, Tok: tok, Lhs: n, Rhs: p.mul()}
		default:
			return n
		}
	}
}

// mul = unary ( ("*"|"/") unary )*
func (p *Parser) mul() *ast.Node {
	n := p.unary()
	for {
		tok := p.cur()
		switch {
		case p.consume("*"):
			n = &ast.Node{Kind: ast.Mul, Tok: tok, Lhs: n, Rhs: p.unary()}
		case p.consume("/"):
			n = &ast.Node{Kind: ast.Div, Tok: tok, Lhs: n, Rhs: p.unary()}
		default:
			return n
		}
	}
}

// unary = "sizeof" unary
//       | ("+"|"-"|"*"|"&")? unary
//       | suffix
//
// Unary "-" X folds to SUB(0, X), so the generator never needs a
// dedicated negate instruction.
func (p *Parser) unary() *ast.Node {
	tok := p.cur()

	switch {
	case p.consume("sizeof"):
		operand := p.unary()
		// sizeof's operand is type-checked, not evaluated: fold
		// straight to an integer literal here rather than waiting
		// for the post-parse type pass, exactly as spec.md §4.3
		// requires.
		ast.AddType(p.d, operand)
		return &ast.Node{Kind: ast.Num, Tok: tok, Val: ast.SizeOf(operand.Type)}

	case p.consume("+"):
		return p.unary()

	case p.consume("-"):
		zero := &ast.Node{Kind: ast.Num, Tok: tok, Val: 0}
		return &ast.Node{Kind: ast.Sub, Tok: tok, Lhs: zero, Rhs: p.unary()}

	case p.consume("*"):
		return &ast.Node{Kind: ast.Deref, Tok: tok, Lhs: p.unary()}

	case p.consume("&"):
		return &ast.Node{Kind: ast.Addr, Tok: tok, Lhs: p.unary()}

	default:
		return p.suffix()
	}
}

// suffix = primary ( "[" expr "]" )*
//
// x[y] is defined as *(x + y) at parse time.
func (p *Parser) suffix() *ast.Node {
	n := p.primary()
	for p.consume("[") {
		tok := p.cur()
		idx := p.expr()
		p.expect("]")
		sum := &ast.Node{Kind: ast.Add, Tok: tok, Lhs: n, Rhs: idx}
		n = &ast.Node{Kind: ast.Deref, Tok: tok, Lhs: sum}
	}
	return n
}

// primary = "(" "{" stmt-expr
//         | "(" expr ")"
//         | ident ( "(" args? ")" )?
//         | string-literal
//         | number
func (p *Parser) primary() *ast.Node {
	tok := p.cur()

	if p.consume("(") {
		if p.consume("{") {
			return p.stmtExpr(tok)
		}
		n := p.expr()
		p.expect(")")
		return n
	}

	if tok.Type == token.IDENT {
		p.pos++
		if p.consume("(") {
			return p.funcall(tok)
		}
		v := p.lookup(tok.Literal)
		if v == nil {
			p.d.ErrorTok(tok, "undeclared identifier: %s", tok.Literal)
		}
		return &ast.Node{Kind: ast.Var, Tok: tok, BoundVar: v}
	}

	if tok.Type == token.STRING {
		p.pos++
		return p.newStringLiteral(tok)
	}

	return &ast.Node{Kind: ast.Num, Tok: tok, Val: p.expectNumber()}
}

// funcall parses the (already-consumed) "ident (" call-site's
// argument list. Callees need no prior declaration; the assembly
// references the name symbolically (spec.md §4.4).
func (p *Parser) funcall(tok token.Token) *ast.Node {
	var head ast.Node
	cur := &head
	if !p.at(")") {
		cur.Next = p.expr()
		cur = cur.Next
		for p.consume(",") {
			cur.Next = p.expr()
			cur = cur.Next
		}
	}
	p.expect(")")
	return &ast.Node{Kind: ast.Funcall, Tok: tok, FuncName: tok.Literal, Args: head.Next}
}

// stmtExpr parses the body of a GNU `({ ... })` statement expression.
// The last statement must be an expression-statement; its inner
// expression is lifted in place of the ExprStmt wrapper so that the
// generic per-child codegen walk (which discards the value of every
// EXPR_STMT it sees) leaves the tail's value on the stack as the
// statement-expression's result.
func (p *Parser) stmtExpr(tok token.Token) *ast.Node {
	mark := p.mark()
	var head ast.Node
	cur := &head
	for !p.consume("}") {
		cur.Next = p.stmt()
		cur = cur.Next
	}
	p.expect(")")
	p.restore(mark)

	if cur == &head || cur.Kind != ast.ExprStmt {
		p.d.ErrorTok(tok, "statement expression returning void is not supported")
	}
	*cur = *cur.Lhs

	return &ast.Node{Kind: ast.StmtExpr, Tok: tok, Body: head.Next}
}

// newStringLiteral synthesizes the anonymous global backing a string
// literal: an array(char, len+1) global named ".L.data.N", holding
// the lexer's already-decoded bytes (including the trailing NUL).
func (p *Parser) newStringLiteral(tok token.Token) *ast.Node {
	label := fmt.Sprintf(".L.data.%d", p.stringSeq)
	p.stringSeq++

	v := &ast.Variable{
		Name:    label,
		Type:    types.ArrayOf(types.CharType, len(tok.Str)),
		IsLocal: false,
		Init:    &ast.GlobalInit{Kind: ast.InitBytes, Bytes: tok.Str},
	}
	p.globals = append(p.globals, v)

	return &ast.Node{Kind: ast.Var, Tok: tok, BoundVar: v}
}
