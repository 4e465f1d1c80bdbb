package compiler

import (
	"strconv"

	"github.com/nwillc/byteflow/parse"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/token"
)

// predeclare scans [start, end) for this block's own top-level int
// declarations -- skipping whole nested {...} blocks -- and inserts
// each into scope before any statement in the block is compiled, so
// every variable's cell index is fixed in advance: a scope's
// next-available-cell is also the compile-time data pointer, and it
// must not shift mid-block.
func predeclare(p *parse.Parser, scope *symtab.Scope, start, end int) {
	i := start
	for i < end {
		t := p.TokenAt(i)
		if t == nil {
			return
		}
		switch t.Type {
		case token.LBrace:
			i = p.FindMatching(i) + 1
			continue
		case token.Int:
			name := p.TokenAt(i + 1)
			if name == nil || name.Type != token.ID {
				panic(&parse.SyntaxError{Token: *t, Message: "expected identifier after 'int'"})
			}
			dims, next := scanDims(p, i+2)
			if len(dims) == 0 {
				dims = []int{1}
			}
			if _, err := scope.Insert(name.Data, dims); err != nil {
				panic(err)
			}
			i = skipToSemicolon(p, next)
			continue
		}
		i++
	}
}

// scanDims reads zero or more "[ NUM ]" dimension suffixes starting at
// idx, returning the dimensions found and the index just past the last
// one (or idx itself, unchanged, if there were none).
func scanDims(p *parse.Parser, idx int) ([]int, int) {
	var dims []int
	for {
		t := p.TokenAt(idx)
		if t == nil || t.Type != token.LBrack {
			return dims, idx
		}
		numTok := p.TokenAt(idx + 1)
		if numTok == nil || numTok.Type != token.Num {
			panic(&parse.SyntaxError{Token: safeTok(numTok), Message: "expected array dimension"})
		}
		closeTok := p.TokenAt(idx + 2)
		if closeTok == nil || closeTok.Type != token.RBrack {
			panic(&parse.SyntaxError{Token: safeTok(closeTok), Message: "expected ']'"})
		}
		n, err := strconv.Atoi(numTok.Data)
		if err != nil || n <= 0 {
			panic(&parse.SyntaxError{Token: *numTok, Message: "invalid array dimension"})
		}
		dims = append(dims, n)
		idx += 3
	}
}

// skipStatement returns the index just past the statement beginning at
// idx. A compound statement's body (if/while/for/switch/do) can itself
// be any statement, block or bare, so the recursive calls below just
// delegate back to skipStatement rather than assuming a brace.
func skipStatement(p *parse.Parser, idx int) int {
	t := p.TokenAt(idx)
	if t == nil {
		panic(&parse.SyntaxError{Message: "unexpected end of input"})
	}
	switch t.Type {
	case token.LBrace:
		return p.FindMatching(idx) + 1
	case token.If:
		i := skipParenHeader(p, idx+1)
		i = skipStatement(p, i)
		if nt := p.TokenAt(i); nt != nil && nt.Type == token.Else {
			return skipStatement(p, i+1)
		}
		return i
	case token.While, token.Switch:
		i := skipParenHeader(p, idx+1)
		return skipStatement(p, i)
	case token.For:
		i := skipParenHeader(p, idx+1)
		return skipStatement(p, i)
	case token.Do:
		i := skipStatement(p, idx+1)
		wt := p.TokenAt(i)
		if wt == nil || wt.Type != token.While {
			panic(&parse.SyntaxError{Token: safeTok(wt), Message: "expected 'while' closing 'do' body"})
		}
		i = skipParenHeader(p, i+1)
		st := p.TokenAt(i)
		if st == nil || st.Type != token.Semicolon {
			panic(&parse.SyntaxError{Token: safeTok(st), Message: "expected ';' after do/while"})
		}
		return i + 1
	default:
		return skipToSemicolon(p, idx)
	}
}

// skipParenHeader expects tokens[idx] to be '(' and returns the index
// just past its matching ')'.
func skipParenHeader(p *parse.Parser, idx int) int {
	t := p.TokenAt(idx)
	if t == nil || t.Type != token.LParen {
		panic(&parse.SyntaxError{Token: safeTok(t), Message: "expected '('"})
	}
	return p.FindMatching(idx) + 1
}

// skipToSemicolon scans forward from idx to the index just past the
// next top-level ';', jumping whole nested (), [], {} groups.
func skipToSemicolon(p *parse.Parser, idx int) int {
	i := idx
	for {
		t := p.TokenAt(i)
		if t == nil {
			panic(&parse.SyntaxError{Message: "expected ';'"})
		}
		switch t.Type {
		case token.LParen, token.LBrack, token.LBrace:
			i = p.FindMatching(i) + 1
			continue
		case token.Semicolon:
			return i + 1
		}
		i++
	}
}
