// scope.go holds the parser's lexical-scope chain.
//
// This adapts the teacher's stack package (stack.Stack, a
// mutex-guarded slice of strings used as a simple LIFO) to the shape
// spec.md §3 describes for identifier binding: "a single append-only
// list of (name -> Variable) bindings... Each `{` pushes a marker
// (saved head pointer) and `}` restores it". A mutex buys nothing
// here - spec.md §5 is explicit that parsing is single-threaded - so
// this is a plain singly-linked list of bindings instead of the
// teacher's synchronized slice, pushed and popped by saving/restoring
// the head pointer rather than by index.

package parser

import "github.com/dcc-lang/dcc/ast"

// binding is one (name -> Variable) entry in the scope chain.
type binding struct {
	name string
	v    *ast.Variable
	next *binding
}

// mark returns the current scope head, to be restored later by
// restore when a block or function closes.
func (p *Parser) mark() *binding {
	return p.scope
}

// restore pops every binding pushed since m was captured, making
// inner declarations invisible again - the lexical-shadowing rule
// spec.md §3 and §8 require.
func (p *Parser) restore(m *binding) {
	p.scope = m
}

// declare pushes a new (name -> v) binding, shadowing any existing
// binding for the same name until the enclosing scope is restored.
func (p *Parser) declare(v *ast.Variable) {
	p.scope = &binding{name: v.Name, v: v, next: p.scope}
}

// lookup scans from the scope head; first match wins, giving the
// standard innermost-shadows-outermost lexical lookup.
func (p *Parser) lookup(name string) *ast.Variable {
	for b := p.scope; b != nil; b = b.next {
		if b.name == name {
			return b.v
		}
	}
	return nil
}
