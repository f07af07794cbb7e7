package lexer

import "testing"

func collect(input string) []Token {
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func TestNextTokenPunctuation(t *testing.T) {
	input := `a = { b . c } ( d ) -> @e , ;`
	toks := collect(input)

	want := []TokenType{
		IDENT, ASSIGN, LBRACE, IDENT, DOT, IDENT, RBRACE,
		LPAREN, IDENT, RPAREN, ARROW, AT, IDENT, COMMA, SEMI, EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestNextTokenIntAndIdent(t *testing.T) {
	toks := collect(`x1 42 _y`)
	if toks[0].Type != IDENT || toks[0].Literal != "x1" {
		t.Errorf("got %+v", toks[0])
	}
	if toks[1].Type != INT || toks[1].Literal != "42" {
		t.Errorf("got %+v", toks[1])
	}
	if toks[2].Type != IDENT || toks[2].Literal != "_y" {
		t.Errorf("got %+v", toks[2])
	}
}

func TestNextTokenString(t *testing.T) {
	toks := collect(`"hello\nworld"`)
	if toks[0].Type != STRING {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[0].Literal != `hello\nworld` {
		t.Errorf("literal = %q, want raw escape preserved", toks[0].Literal)
	}
}

func TestNextTokenUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("got %+v", tok)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lexer error, got %d", len(l.Errors()))
	}
}

func TestNextTokenIllegal(t *testing.T) {
	toks := collect(`#`)
	if toks[0].Type != ILLEGAL {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestNextTokenSkipsLineComments(t *testing.T) {
	toks := collect("a // a comment\n= 1")
	want := []TokenType{IDENT, ASSIGN, INT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestPositionTracksLinesAndColumns(t *testing.T) {
	l := New("a\nbb")
	first := l.NextToken()
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Errorf("first token pos = %+v", first.Pos)
	}
	second := l.NextToken()
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Errorf("second token pos = %+v", second.Pos)
	}
}
