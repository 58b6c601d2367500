// Package diag formats and reports fatal compiler diagnostics.
//
// The compiler is fail-fast: there is no recovery, and every reporting
// function in this package (Error, ErrorAt, ErrorTok) terminates the
// process with exit status 1 once it has written its message. This mirrors the reference implementation
// (see original_source/dcc.c's error_at), which walks back to the
// start of the offending line, prints it, and right-pads a caret to
// the reported column before printing the message - one line of
// source context, not a multi-line excerpt.
package diag

import (
	"fmt"
	"os"
	"strings"

	"github.com/dcc-lang/dcc/token"
)

// Context carries the state diagnostics need to turn a byte position
// into a source-anchored message: the file name (for the leading
// "filename:line:" indent) and the full source buffer, retained for
// the lifetime of the process exactly as spec.md §3 requires.
type Context struct {
	Filename string
	Source   []byte
}

// New builds a diagnostic Context for one source file.
func New(filename string, source []byte) *Context {
	return &Context{Filename: filename, Source: source}
}

// Error reports a message with no source location and exits.
func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// ErrorAt reports a message anchored at a byte offset into the source
// buffer: the offending line, a caret aligned to the column, then the
// formatted message, and exits.
func (c *Context) ErrorAt(pos int, format string, args ...interface{}) {
	line, col, lineNo := c.locate(pos)

	msg := fmt.Sprintf(format, args...)

	indent := fmt.Sprintf("%s:%d: ", c.Filename, lineNo)
	fmt.Fprintf(os.Stderr, "%s%s\n", indent, line)
	fmt.Fprintf(os.Stderr, "%s%s^ %s\n", strings.Repeat(" ", len(indent)), strings.Repeat(" ", col), msg)
	os.Exit(1)
}

// ErrorTok reports a message anchored at a token's position.
func (c *Context) ErrorTok(tok token.Token, format string, args ...interface{}) {
	c.ErrorAt(tok.Pos, format, args...)
}

// locate walks backward to the previous newline and forward to the
// next one to isolate the line containing pos, and counts newlines
// from the start of the buffer to compute the 1-based line number.
func (c *Context) locate(pos int) (line string, col int, lineNo int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.Source) {
		pos = len(c.Source)
	}

	start := pos
	for start > 0 && c.Source[start-1] != '\n' {
		start--
	}

	end := pos
	for end < len(c.Source) && c.Source[end] != '\n' {
		end++
	}

	lineNo = 1 + strings.Count(string(c.Source[:start]), "\n")
	return string(c.Source[start:end]), pos - start, lineNo
}
