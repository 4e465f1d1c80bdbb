// Package parse provides the positional cursor over a token vector that
// every other compiler component uses: lookahead, matching-brace search,
// and context-sensitive structural assertions.
package parse

import (
	"fmt"

	"github.com/nwillc/byteflow/token"
)

// SyntaxError reports that the token stream did not match an expected
// shape at a named position.
type SyntaxError struct {
	Token   token.Token
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s (at %s)", e.Message, e.Token)
}

// Parser is a cursor over a fixed slice of tokens.
type Parser struct {
	Tokens       []token.Token
	CurrentIndex int
}

// New builds a Parser positioned at the first token.
func New(tokens []token.Token) *Parser {
	return &Parser{Tokens: tokens}
}

// TokenAt returns the token at idx, or nil if idx is out of range.
func (p *Parser) TokenAt(idx int) *token.Token {
	if idx < 0 || idx >= len(p.Tokens) {
		return nil
	}
	return &p.Tokens[idx]
}

// Current returns the token at the cursor, or nil at end of stream.
func (p *Parser) Current() *token.Token {
	return p.TokenAt(p.CurrentIndex)
}

// Next returns the token `amount` positions ahead of the cursor (default 1).
func (p *Parser) Next(amount ...int) *token.Token {
	n := 1
	if len(amount) > 0 {
		n = amount[0]
	}
	return p.TokenAt(p.CurrentIndex + n)
}

// Advance moves the cursor forward by amount (default 1).
func (p *Parser) Advance(amount ...int) {
	n := 1
	if len(amount) > 0 {
		n = amount[0]
	}
	p.CurrentIndex += n
}

// AdvanceTo moves the cursor to an absolute token index.
func (p *Parser) AdvanceTo(idx int) {
	p.CurrentIndex = idx
}

func describe(t *token.Token) string {
	if t == nil {
		return "<end of input>"
	}
	return t.String()
}

// CheckCurrentIs asserts the current token has the given kind.
func (p *Parser) CheckCurrentIs(kind token.Kind) {
	t := p.Current()
	if t == nil || t.Type != kind {
		panic(&SyntaxError{safeToken(t), fmt.Sprintf("expected %v, got %s", kind, describe(t))})
	}
}

// CheckCurrentAre asserts a run of kinds starting at the current token.
func (p *Parser) CheckCurrentAre(kinds ...token.Kind) {
	p.checkAreAt(p.CurrentIndex, kinds)
}

// CheckNextIs asserts the token one ahead of the cursor (or of
// startingIndex if given) has the given kind.
func (p *Parser) CheckNextIs(kind token.Kind, startingIndex ...int) {
	idx := p.CurrentIndex
	if len(startingIndex) > 0 {
		idx = startingIndex[0]
	}
	t := p.TokenAt(idx + 1)
	if t == nil || t.Type != kind {
		panic(&SyntaxError{safeToken(t), fmt.Sprintf("expected %v, got %s", kind, describe(t))})
	}
}

// CheckNextAre asserts a run of kinds starting one token ahead of the
// cursor (or of startingIndex if given).
func (p *Parser) CheckNextAre(kinds []token.Kind, startingIndex ...int) {
	idx := p.CurrentIndex
	if len(startingIndex) > 0 {
		idx = startingIndex[0]
	}
	p.checkAreAt(idx+1, kinds)
}

func (p *Parser) checkAreAt(start int, kinds []token.Kind) {
	for i, kind := range kinds {
		t := p.TokenAt(start + i)
		if t == nil || t.Type != kind {
			panic(&SyntaxError{safeToken(t), fmt.Sprintf("expected %v, got %s", kind, describe(t))})
		}
	}
}

func safeToken(t *token.Token) token.Token {
	if t == nil {
		return token.Token{}
	}
	return *t
}

// matchingOpen/matchingClose pair up brace and paren kinds for FindMatching.
var matchingClose = map[token.Kind]token.Kind{
	token.LBrace: token.RBrace,
	token.LParen: token.RParen,
	token.LBrack: token.RBrack,
}

// FindMatching returns the index of the token that closes the bracket-like
// token at startingIndex, scanning forward and tracking nesting depth.
func (p *Parser) FindMatching(startingIndex int) int {
	open := p.TokenAt(startingIndex)
	if open == nil {
		panic(&SyntaxError{token.Token{}, "FindMatching called past end of input"})
	}
	closeKind, ok := matchingClose[open.Type]
	if !ok {
		panic(&SyntaxError{*open, fmt.Sprintf("FindMatching called on non-bracket token %s", open)})
	}
	depth := 0
	for i := startingIndex; i < len(p.Tokens); i++ {
		switch p.Tokens[i].Type {
		case open.Type:
			depth++
		case closeKind:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	panic(&SyntaxError{*open, fmt.Sprintf("unmatched %s", open)})
}
