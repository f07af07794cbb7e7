// Package parser implements a small recursive-descent parser for moss
// source text, producing the typed nodes in internal/ast. It follows the
// curToken/peekToken lookahead convention of a hand-written frontend: one
// token of lookahead is enough for this grammar (no Pratt precedence table
// is needed — application is plain left-associative juxtaposition and `.`
// is the only postfix operator).
package parser

import (
	"github.com/mosslang/resolver/internal/ast"
	"github.com/mosslang/resolver/internal/lexer"
)

// Parser turns a token stream from a Lexer into an *ast.SourceFile.
type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []*Error
}

// New creates a Parser over the given Lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []*Error {
	return p.errors
}

// LexerErrors returns accumulated lexer errors from the underlying scanner.
func (p *Parser) LexerErrors() []lexer.LexerError {
	return p.l.Errors()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &Error{Pos: p.curToken.Pos, Length: p.curToken.Length(), Message: msg})
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curToken.Type == t {
		p.nextToken()
		return true
	}
	p.addError("expected " + t.String() + ", got " + p.curToken.Type.String())
	return false
}

// ParseSourceFile parses an entire module's top-level assignment list.
func (p *Parser) ParseSourceFile() *ast.SourceFile {
	start := p.curToken.Pos.Offset
	pos := p.curToken.Pos
	var assigns []*ast.Assign
	for p.curToken.Type != lexer.EOF {
		a := p.parseAssign()
		if a == nil {
			// Resynchronize at the next statement boundary to keep parsing.
			for p.curToken.Type != lexer.SEMI && p.curToken.Type != lexer.EOF {
				p.nextToken()
			}
			if p.curToken.Type == lexer.SEMI {
				p.nextToken()
			}
			continue
		}
		assigns = append(assigns, a)
	}
	end := p.curToken.Pos.Offset
	return ast.NewSourceFile(start, end, pos, assigns)
}

func (p *Parser) parseAssign() *ast.Assign {
	if p.curToken.Type != lexer.IDENT {
		p.addError("expected identifier at start of assignment, got " + p.curToken.Type.String())
		return nil
	}
	start := p.curToken.Pos.Offset
	pos := p.curToken.Pos
	key := ast.NewName(p.curToken.Pos.Offset, p.curToken.Pos.Offset+p.curToken.Length(), p.curToken.Pos, p.curToken.Literal)
	p.nextToken()
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	value := p.parseValue()
	if value == nil {
		return nil
	}
	end := p.curToken.Pos.Offset
	if !p.expect(lexer.SEMI) {
		return nil
	}
	return ast.NewAssign(start, end, pos, key, value)
}

func (p *Parser) canStartPrimary() bool {
	switch p.curToken.Type {
	case lexer.INT, lexer.STRING, lexer.IDENT, lexer.AT, lexer.LPAREN, lexer.LBRACE:
		return true
	default:
		return false
	}
}

// parseValue parses a full value expression: postfix terms applied to each
// other left-associatively via juxtaposition (`f x y` == `(f x) y`).
func (p *Parser) parseValue() ast.Value {
	left := p.parsePostfix()
	if left == nil {
		return nil
	}
	for p.canStartPrimary() {
		right := p.parsePostfix()
		if right == nil {
			return left
		}
		left = ast.NewCall(left.StartByte(), right.EndByte(), left.Pos(), left, right)
	}
	return left
}

// parsePostfix parses a primary term followed by zero or more `.name` /
// `.@name` dotted lookups.
func (p *Parser) parsePostfix() ast.Value {
	v := p.parsePrimary()
	if v == nil {
		return nil
	}
	for p.curToken.Type == lexer.DOT {
		start := v.StartByte()
		p.nextToken() // consume '.'
		meta := false
		if p.curToken.Type == lexer.AT {
			meta = true
			p.nextToken()
		}
		if p.curToken.Type != lexer.IDENT {
			p.addError("expected name after '.', got " + p.curToken.Type.String())
			return v
		}
		name := ast.NewName(p.curToken.Pos.Offset, p.curToken.Pos.Offset+p.curToken.Length(), p.curToken.Pos, p.curToken.Literal)
		end := name.EndByte()
		p.nextToken()
		if meta {
			v = ast.NewFindMeta(start, end, v.Pos(), v, name)
		} else {
			v = ast.NewFind(start, end, v.Pos(), v, name)
		}
	}
	return v
}

func (p *Parser) parsePrimary() ast.Value {
	switch p.curToken.Type {
	case lexer.INT:
		tok := p.curToken
		p.nextToken()
		return ast.NewInt(tok.Pos.Offset, tok.Pos.Offset+tok.Length(), tok.Pos, tok.Literal)

	case lexer.STRING:
		tok := p.curToken
		p.nextToken()
		// +2 accounts for the opening and closing quote bytes the lexer
		// strips from Literal (Length reports only the unescaped content).
		return ast.NewString(tok.Pos.Offset, tok.Pos.Offset+tok.Length()+2, tok.Pos, splitStringSegments(tok))

	case lexer.IDENT:
		tok := p.curToken
		p.nextToken()
		name := ast.NewName(tok.Pos.Offset, tok.Pos.Offset+tok.Length(), tok.Pos, tok.Literal)
		if p.curToken.Type == lexer.ARROW {
			p.nextToken()
			body := p.parseScope()
			if body == nil {
				return nil
			}
			return ast.NewFunction(name.StartByte(), body.EndByte(), tok.Pos, name, body)
		}
		return name

	case lexer.AT:
		tok := p.curToken
		p.nextToken()
		if p.curToken.Type != lexer.IDENT {
			p.addError("expected name after '@', got " + p.curToken.Type.String())
			return nil
		}
		nameTok := p.curToken
		name := ast.NewName(nameTok.Pos.Offset, nameTok.Pos.Offset+nameTok.Length(), nameTok.Pos, nameTok.Literal)
		p.nextToken()
		return ast.NewMeta(tok.Pos.Offset, name.EndByte(), tok.Pos, name)

	case lexer.LPAREN:
		tok := p.curToken
		p.nextToken()
		inner := p.parseValue()
		if inner == nil {
			return nil
		}
		end := p.curToken.Pos.Offset + p.curToken.Length()
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		return ast.NewBracket(tok.Pos.Offset, end, tok.Pos, inner)

	case lexer.LBRACE:
		return p.parseScope()

	default:
		p.addError("unexpected token " + p.curToken.Type.String())
		return nil
	}
}

func (p *Parser) parseScope() *ast.Scope {
	if p.curToken.Type != lexer.LBRACE {
		p.addError("expected '{', got " + p.curToken.Type.String())
		return nil
	}
	start := p.curToken.Pos.Offset
	pos := p.curToken.Pos
	p.nextToken()
	var assigns []*ast.Assign
	for p.curToken.Type != lexer.RBRACE && p.curToken.Type != lexer.EOF {
		a := p.parseAssign()
		if a == nil {
			for p.curToken.Type != lexer.SEMI && p.curToken.Type != lexer.RBRACE && p.curToken.Type != lexer.EOF {
				p.nextToken()
			}
			if p.curToken.Type == lexer.SEMI {
				p.nextToken()
			}
			continue
		}
		assigns = append(assigns, a)
	}
	end := p.curToken.Pos.Offset + p.curToken.Length()
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return ast.NewScope(start, end, pos, assigns)
}

// knownEscapes is the closed set of two-character escape sequences the
// language defines. splitStringSegments does not consult it: every
// backslash pair becomes a StringEscape segment, and lowering decides
// which ones are recognized and substitutes them.
var knownEscapes = map[byte]bool{
	'"': true, '\\': true, 'n': true, 't': true, 'r': true, '{': true, '}': true,
}

// splitStringSegments breaks a string token's raw literal (with escapes
// still backslash-prefixed) into StringRaw / StringEscape child nodes.
func splitStringSegments(tok lexer.Token) []ast.StringSegment {
	text := tok.Literal
	var segments []ast.StringSegment
	offset := tok.Pos.Offset + 1 // account for the opening quote
	i := 0
	rawStart := 0
	flushRaw := func(end int) {
		if end > rawStart {
			segments = append(segments, ast.NewStringRaw(offset+rawStart, offset+end, tok.Pos, text[rawStart:end]))
		}
	}
	for i < len(text) {
		if text[i] == '\\' && i+1 < len(text) {
			flushRaw(i)
			segments = append(segments, ast.NewStringEscape(offset+i, offset+i+2, tok.Pos, text[i:i+2]))
			i += 2
			rawStart = i
			continue
		}
		i++
	}
	flushRaw(len(text))
	return segments
}
