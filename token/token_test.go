package token

import "testing"

func TestIsKeyword(t *testing.T) {
	for _, word := range []string{"return", "if", "else", "while", "for", "sizeof", "int", "char"} {
		if !IsKeyword(word) {
			t.Errorf("expected %q to be a keyword", word)
		}
	}

	for _, word := range []string{"foo", "returns", "Int", "main"} {
		if IsKeyword(word) {
			t.Errorf("did not expect %q to be a keyword", word)
		}
	}
}

func TestTokenIs(t *testing.T) {
	tok := Token{Type: PUNCT, Literal: "+"}
	if !tok.Is("+") {
		t.Errorf("expected token to match '+'")
	}
	if tok.Is("-") {
		t.Errorf("did not expect token to match '-'")
	}

	ident := Token{Type: IDENT, Literal: "+"}
	if ident.Is("+") {
		t.Errorf("an IDENT token should never match Is(), regardless of Literal")
	}
}

func TestTokenIsIdent(t *testing.T) {
	tok := Token{Type: IDENT, Literal: "foo"}
	if !tok.IsIdent("") {
		t.Errorf("expected IsIdent(\"\") to match any identifier")
	}
	if !tok.IsIdent("foo") {
		t.Errorf("expected IsIdent(\"foo\") to match")
	}
	if tok.IsIdent("bar") {
		t.Errorf("did not expect IsIdent(\"bar\") to match")
	}

	num := Token{Type: NUMBER, Literal: "foo"}
	if num.IsIdent("") {
		t.Errorf("a NUMBER token should never satisfy IsIdent")
	}
}
