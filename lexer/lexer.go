// Package lexer turns a source buffer into a sequence of tokens.
//
// spec.md §3 describes tokens as "a singly-linked sequence owned by
// the lexer output". The teacher (skx/math-compiler) already
// represents its own token stream as a plain Go slice
// (compiler.tokens []token.Token) rather than a linked list, and a
// slice carries exactly the same sequential, append-only information
// with none of the aliasing hazards spec.md §9 flags as a rewrite
// concern - so Tokenize returns []token.Token, terminated by an EOF
// token, and the parser walks it with an index cursor instead of
// pointer-chasing a Next field.
package lexer

import (
	"strings"

	"github.com/dcc-lang/dcc/diag"
	"github.com/dcc-lang/dcc/token"
)

// maxStringLiteral is the byte cap on a decoded string literal's
// payload (spec.md §4.2 rule 4).
const maxStringLiteral = 1024

// multiBytePunct is the closed set of two-character punctuators,
// tried longest-match-first, before falling back to a single byte.
var multiBytePunct = []string{"==", "!=", "<=", ">="}

// escapes maps a recognized `\x` escape to its decoded byte.
var escapes = map[byte]byte{
	'a': '\a', 'b': '\b', 't': '\t', 'n': '\n',
	'v': '\v', 'f': '\f', 'r': '\r', 'e': 0x1b, '0': 0,
}

// Lexer holds our object-state.
type Lexer struct {
	diag *diag.Context
	src  []byte
	pos  int
}

// New creates a Lexer over the source buffer held by diagCtx. Lexical
// errors are reported through diagCtx, which also owns the source
// buffer for the lifetime of the process.
func New(diagCtx *diag.Context) *Lexer {
	return &Lexer{diag: diagCtx, src: diagCtx.Source}
}

// Tokenize scans the whole buffer and returns its tokens, terminated
// by a single EOF token.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token

	for {
		l.skipWhitespaceAndComments()

		if l.pos >= len(l.src) {
			toks = append(toks, token.Token{Type: token.EOF, Pos: l.pos})
			return toks
		}

		start := l.pos
		ch := l.src[l.pos]

		switch {
		case ch == '"':
			toks = append(toks, l.readString())

		case l.isIdentStart(ch):
			lit := l.readIdentifier()
			tt := token.PUNCT
			if !token.IsKeyword(lit) {
				tt = token.IDENT
			}
			toks = append(toks, token.Token{Type: tt, Literal: lit, Pos: start})

		case isDigit(ch):
			val, lit := l.readNumber()
			toks = append(toks, token.Token{Type: token.NUMBER, Literal: lit, Value: val, Pos: start})

		case l.matchMultiByte() != "":
			m := l.matchMultiByte()
			l.pos += len(m)
			toks = append(toks, token.Token{Type: token.PUNCT, Literal: m, Pos: start})

		case isPunct(ch):
			l.pos++
			toks = append(toks, token.Token{Type: token.PUNCT, Literal: string(ch), Pos: start})

		default:
			l.diag.ErrorAt(l.pos, "invalid token")
		}
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]

		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			l.pos++
			continue
		}

		if strings.HasPrefix(string(l.src[l.pos:]), "//") {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}

		if strings.HasPrefix(string(l.src[l.pos:]), "/*") {
			start := l.pos
			l.pos += 2
			for {
				if l.pos >= len(l.src) {
					l.diag.ErrorAt(start, "unterminated block comment")
				}
				if strings.HasPrefix(string(l.src[l.pos:]), "*/") {
					l.pos += 2
					break
				}
				l.pos++
			}
			continue
		}

		break
	}
}

func (l *Lexer) matchMultiByte() string {
	rest := l.src[l.pos:]
	for _, p := range multiBytePunct {
		if len(rest) >= len(p) && string(rest[:len(p)]) == p {
			return p
		}
	}
	return ""
}

func (l *Lexer) isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func (l *Lexer) isIdentCont(ch byte) bool {
	return l.isIdentStart(ch) || isDigit(ch)
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.src) && l.isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

func (l *Lexer) readNumber() (int, string) {
	start := l.pos
	val := 0
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		val = val*10 + int(l.src[l.pos]-'0')
		l.pos++
	}
	return val, string(l.src[start:l.pos])
}

func (l *Lexer) readString() token.Token {
	start := l.pos
	l.pos++ // opening quote

	var out []byte
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			l.diag.ErrorAt(start, "unterminated string literal")
		}
		if l.src[l.pos] == '"' {
			l.pos++
			break
		}
		if len(out) >= maxStringLiteral {
			l.diag.ErrorAt(start, "string literal too long")
		}

		ch := l.src[l.pos]
		if ch == '\\' {
			l.pos++
			if l.pos >= len(l.src) {
				l.diag.ErrorAt(start, "unterminated string literal")
			}
			esc, ok := escapes[l.src[l.pos]]
			if !ok {
				esc = l.src[l.pos]
			}
			out = append(out, esc)
			l.pos++
		} else {
			out = append(out, ch)
			l.pos++
		}
	}

	out = append(out, 0)
	return token.Token{Type: token.STRING, Literal: string(l.src[start:l.pos]), Pos: start, Str: out}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isPunct(ch byte) bool {
	return ch > 0x20 && ch < 0x7f && !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_')
}
