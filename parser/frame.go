package parser

import "github.com/dcc-lang/dcc/ast"

// layoutFrame assigns each of fn's locals (in declaration order,
// which includes its parameters - they are pushed onto p.locals by
// param() exactly like any other local) a frame offset equal to the
// running sum of every local's size seen so far, then rounds the
// total up to a multiple of 8 (spec.md §4.4's "Post-parse frame
// layout").
func layoutFrame(fn *ast.Function) {
	offset := 0
	for _, v := range fn.Locals {
		offset += v.Type.Size
		v.Offset = offset
	}
	fn.StackSize = alignTo(offset, 8)
}

func alignTo(n, align int) int {
	return (n + align - 1) / align * align
}
