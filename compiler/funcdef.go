// Package compiler drives statement-level compilation: it scans a token
// stream into a function table and a sequence of global statements
//, then walks each statement, splicing in
// the ast package's expression lowering at every leaf.
package compiler

import (
	"github.com/nwillc/byteflow/ast"
	"github.com/nwillc/byteflow/parse"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/token"
)

// Definition is anything the function table can resolve a call
// against: a source-level function or a native library routine.
// Instantiate produces the ast.Callee a single call site splices in --
// for a FuncDef this is a fresh FuncClone, since every call is compiled
// as if the function body were freshly cloned into the caller's frame
//.
type Definition interface {
	Name() string
	ParamCount() int
	Instantiate() ast.Callee
}

// ParamSpec is one declared formal parameter.
type ParamSpec struct {
	Name string
	Dims []int
}

// FuncDef is a source-level function definition: its signature and the
// token span of its body. The body is left unparsed here -- it is
// compiled fresh by a FuncClone at every call site, not once up front,
// so each call's cell layout is resolved where it's used.
type FuncDef struct {
	FName      string
	ReturnType token.Kind // token.Void or token.Int
	Params     []ParamSpec
	Tokens     []token.Token
	BodyBrace  int
	BodyEnd    int
	Program    *Program
}

func (f *FuncDef) Name() string    { return f.FName }
func (f *FuncDef) ParamCount() int { return len(f.Params) }

func (f *FuncDef) Instantiate() ast.Callee {
	return &FuncClone{def: f}
}

// Program is the shared, read-only context every function clone and the
// global statement stream compiles against.
type Program struct {
	Tokens   []token.Token
	Funcs    map[string]Definition
	Global   *symtab.Scope
	Optimize bool
	Logf     func(string, ...interface{})

	// inProgress names the FuncDefs currently being instantiated along
	// the active call chain. This compiler splices a fresh copy of a
	// function's body in at every call site rather than emitting a
	// single shared routine, so a function calling itself -- directly
	// or through another function -- would recurse forever at compile
	// time; a name reappearing here is rejected instead.
	inProgress map[string]bool
}

// ScanProgram splits tokens into the function table and the ordered
// list of top-level statement token ranges that are not function
// definitions -- global declarations and any top-level statements,
// compiled in source order ahead of entering main-less execution.
func ScanProgram(tokens []token.Token) (funcs map[string]Definition, globalRanges [][2]int, err error) {
	funcs = map[string]Definition{}
	p := parse.New(tokens)
	i := 0
	for i < len(tokens) {
		if isFuncDefAt(p, i) {
			def, next := parseFuncDef(p, i)
			if _, exists := funcs[def.FName]; exists {
				panic(&symtab.SemanticError{Message: "function " + def.FName + " is already defined"})
			}
			funcs[def.FName] = def
			i = next
			continue
		}
		start := i
		end := skipStatement(p, i)
		globalRanges = append(globalRanges, [2]int{start, end})
		i = end
	}
	return funcs, globalRanges, nil
}

// isFuncDefAt reports whether a top-level declaration beginning at idx
// is a function definition (return-type ID '(') rather than a variable
// declaration or statement.
func isFuncDefAt(p *parse.Parser, idx int) bool {
	t := p.TokenAt(idx)
	if t == nil || (t.Type != token.Void && t.Type != token.Int) {
		return false
	}
	name := p.TokenAt(idx + 1)
	paren := p.TokenAt(idx + 2)
	return name != nil && name.Type == token.ID && paren != nil && paren.Type == token.LParen
}

func parseFuncDef(p *parse.Parser, idx int) (*FuncDef, int) {
	retTok := p.TokenAt(idx)
	nameTok := p.TokenAt(idx + 1)
	lparen := idx + 2
	rparen := p.FindMatching(lparen)
	params := parseParamList(p, lparen+1, rparen)
	p.AdvanceTo(rparen + 1)
	p.CheckCurrentIs(token.LBrace)
	bodyBrace := p.CurrentIndex
	bodyEnd := p.FindMatching(bodyBrace)
	def := &FuncDef{
		FName: nameTok.Data, ReturnType: retTok.Type, Params: params,
		Tokens: p.Tokens, BodyBrace: bodyBrace, BodyEnd: bodyEnd,
	}
	return def, bodyEnd + 1
}

func parseParamList(p *parse.Parser, start, end int) []ParamSpec {
	var params []ParamSpec
	i := start
	for i < end {
		t := p.TokenAt(i)
		if t == nil || t.Type != token.Int {
			panic(&parse.SyntaxError{Token: safeTok(t), Message: "expected parameter type 'int'"})
		}
		nameTok := p.TokenAt(i + 1)
		if nameTok == nil || nameTok.Type != token.ID {
			panic(&parse.SyntaxError{Token: safeTok(nameTok), Message: "expected parameter name"})
		}
		dims, next := scanDims(p, i+2)
		if len(dims) == 0 {
			dims = []int{1}
		}
		params = append(params, ParamSpec{Name: nameTok.Data, Dims: dims})
		i = next
		if i < end {
			ct := p.TokenAt(i)
			if ct == nil || ct.Type != token.Comma {
				panic(&parse.SyntaxError{Token: safeTok(ct), Message: "expected ',' between parameters"})
			}
			i++
		}
	}
	return params
}

func safeTok(t *token.Token) token.Token {
	if t == nil {
		return token.Token{}
	}
	return *t
}
