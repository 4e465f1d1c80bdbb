package compiler

import (
	"strings"

	"github.com/nwillc/byteflow/ast"
	"github.com/nwillc/byteflow/parse"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/token"
)

// FuncCompiler compiles one statement stream -- a function body or the
// top-level sequence of global statements -- against a shared Program.
// Every statement it compiles leaves the data pointer where it found it;
// cur names that fixed cell for as long as this FuncCompiler is working
// within its current block.
type FuncCompiler struct {
	p            *parse.Parser
	env          *symtab.Env
	prog         *Program
	returnCell   int // -1 outside a function body
	switchBroken int // -1 outside a switch body
}

func newFuncCompiler(prog *Program, env *symtab.Env, returnCell int) *FuncCompiler {
	return &FuncCompiler{p: parse.New(prog.Tokens), env: env, prog: prog, returnCell: returnCell, switchBroken: -1}
}

// CompileRange compiles the statements in [start, end) against cur.
func (fc *FuncCompiler) CompileRange(cur, start, end int) string {
	var sb strings.Builder
	fc.p.AdvanceTo(start)
	for fc.p.CurrentIndex < end {
		sb.WriteString(fc.CompileStatement(cur))
	}
	return sb.String()
}

// compileBlockAtFrom compiles the body the cursor currently sits on,
// whose own scope's locals begin at startCell: it enters a fresh frame
// pinned to startCell, predeclares the body's direct int declarations,
// compiles against the first free cell past them, then exits the frame.
// The body need not be a brace-delimited block -- a bare single
// statement (e.g. `while (i<3) i++;`) is accepted the same way, scoped
// just to itself, since a control construct's S is a general statement.
func (fc *FuncCompiler) compileBlockAtFrom(startCell int) string {
	t := fc.p.Current()
	if t == nil || t.Type != token.LBrace {
		return fc.compileBareStatementAtFrom(startCell)
	}
	open := fc.p.CurrentIndex
	closeIdx := fc.p.FindMatching(open)
	scope := fc.env.EnterScope()
	scope.SetNext(startCell)
	predeclare(fc.p, scope, open+1, closeIdx)
	inner := scope.Next()
	code := fc.CompileRange(inner, open+1, closeIdx)
	fc.env.ExitScope()
	fc.p.AdvanceTo(closeIdx + 1)
	return move(startCell, inner) + code + move(inner, startCell)
}

// compileBareStatementAtFrom compiles a single non-block statement as a
// control construct's body, predeclaring just that statement's own
// top-level int declarations the way a block predeclares its own.
func (fc *FuncCompiler) compileBareStatementAtFrom(startCell int) string {
	start := fc.p.CurrentIndex
	end := skipStatement(fc.p, start)
	scope := fc.env.EnterScope()
	scope.SetNext(startCell)
	predeclare(fc.p, scope, start, end)
	inner := scope.Next()
	code := fc.CompileStatement(inner)
	fc.env.ExitScope()
	return move(startCell, inner) + code + move(inner, startCell)
}

// compileBlockAt compiles a body whose locals begin at the same cell
// its controlling construct was already working in -- the common case
// for a plain `{ ... }` statement, or an if/while/for body that has no
// need to keep anything else alive across the body's execution.
func (fc *FuncCompiler) compileBlockAt(cur int) string {
	return fc.compileBlockAtFrom(cur)
}

// CompileStatement dispatches on the current token and compiles exactly
// one statement against cur.
func (fc *FuncCompiler) CompileStatement(cur int) string {
	t := fc.p.Current()
	if t == nil {
		panic(&parse.SyntaxError{Message: "unexpected end of input"})
	}
	switch t.Type {
	case token.LBrace:
		return fc.compileBlockAt(cur)
	case token.Int:
		return fc.compileDecl(cur)
	case token.Print:
		return fc.compilePrint(cur)
	case token.If:
		return fc.compileIf(cur)
	case token.While:
		return fc.compileWhile(cur)
	case token.Do:
		return fc.compileDoWhile(cur)
	case token.For:
		return fc.compileFor(cur)
	case token.Switch:
		return fc.compileSwitch(cur)
	case token.Return:
		return fc.compileReturn(cur)
	case token.Break:
		return fc.compileBreak(cur)
	case token.Semicolon:
		fc.p.Advance()
		return ""
	default:
		return fc.compileExprStatement(cur)
	}
}

func (fc *FuncCompiler) compileExprStatement(cur int) string {
	expr := fc.parseExpr()
	fc.p.CheckCurrentIs(token.Semicolon)
	fc.p.Advance()
	return expr.Emit(cur) + move(cur+1, cur) + "[-]"
}

// compileDecl compiles `int ID (dims)? (= initializer)? ;`. The
// variable itself was already reserved by predeclare; this only
// compiles the (optional) initializer into its fixed cell.
func (fc *FuncCompiler) compileDecl(cur int) string {
	fc.p.Advance() // 'int'
	nameTok := fc.p.Current()
	fc.p.CheckCurrentIs(token.ID)
	fc.p.Advance()
	v, err := fc.env.Resolve(nameTok.Data)
	if err != nil {
		panic(err)
	}
	_, next := scanDims(fc.p, fc.p.CurrentIndex)
	fc.p.AdvanceTo(next)

	if t := fc.p.Current(); t != nil && t.Type == token.Assign {
		if t.Data != "=" {
			panic(&parse.SyntaxError{Token: *t, Message: "a declaration's initializer must use '='"})
		}
		fc.p.Advance()
		var code string
		if nt := fc.p.Current(); nt != nil && (nt.Type == token.LBrace || nt.Type == token.String) {
			values := fc.parseArrayLiteral(v)
			code = (&ast.ArrayAssign{Var: v, Values: values}).Emit(cur) + move(cur+1, cur)
		} else {
			valueExpr := fc.parseExpr()
			code = (&ast.Assign{Var: v, Value: valueExpr}).Emit(cur) + move(cur+1, cur)
		}
		fc.p.CheckCurrentIs(token.Semicolon)
		fc.p.Advance()
		return code
	}
	fc.p.CheckCurrentIs(token.Semicolon)
	fc.p.Advance()
	return ""
}

// parseArrayLiteral parses the RHS of `int a[...] = RHS ;` against v's
// declared dimensions: a string literal (legal only when v is
// one-dimensional, unpacked to its code points), or a `{ ... }` literal
// per parseArrayLiteralDims. The result is the flat, row-major list of
// element expressions to assign; ArrayAssign.Emit zero-pads whatever is
// short of v's full size.
func (fc *FuncCompiler) parseArrayLiteral(v *symtab.Variable) []ast.Node {
	if t := fc.p.Current(); t != nil && t.Type == token.String {
		if len(v.Dims) != 1 {
			panic(&symtab.SemanticError{Message: "a string initializer is only legal for a one-dimensional array"})
		}
		fc.p.Advance()
		values := make([]ast.Node, 0, len(t.Data))
		for _, r := range t.Data {
			values = append(values, &ast.Literal{Value: int(r)})
		}
		if len(values) > v.Dims[0] {
			panic(&symtab.SemanticError{Message: "string initializer for " + v.Name + " has more code points than its declared size"})
		}
		return values
	}
	return fc.parseArrayLiteralDims(v.Dims)
}

// parseArrayLiteralDims parses one `{ ... }` literal against dims. When
// its first element is itself `{`, the whole list is treated as nested
// and matched dimension-by-dimension: each element recurses against
// dims[1:], is zero-padded up to that sub-size, and an over-long
// sub-list is a semantic error. Otherwise the list is flat scalar
// expressions, checked against the full product of dims. Either shape
// flattens to row-major order.
func (fc *FuncCompiler) parseArrayLiteralDims(dims []int) []ast.Node {
	fc.p.CheckCurrentIs(token.LBrace)
	open := fc.p.CurrentIndex
	closeIdx := fc.p.FindMatching(open)
	fc.p.Advance()

	nested := false
	if len(dims) > 1 {
		if t := fc.p.Current(); t != nil && t.Type == token.LBrace {
			nested = true
		}
	}

	var values []ast.Node
	count := 0
	for fc.p.CurrentIndex < closeIdx {
		if nested {
			subSize := symtab.Size(dims[1:])
			sub := fc.parseArrayLiteralDims(dims[1:])
			if len(sub) > subSize {
				panic(&symtab.SemanticError{Message: "array initializer sub-list has more elements than its dimension allows"})
			}
			for len(sub) < subSize {
				sub = append(sub, &ast.Literal{Value: 0})
			}
			values = append(values, sub...)
		} else {
			values = append(values, fc.parseExpr())
		}
		count++
		if t := fc.p.Current(); t != nil && t.Type == token.Comma {
			fc.p.Advance()
		}
	}
	fc.p.AdvanceTo(closeIdx + 1)

	limit := symtab.Size(dims)
	if nested {
		limit = dims[0]
	}
	if count > limit {
		panic(&symtab.SemanticError{Message: "array initializer has more elements than its declared size"})
	}
	return values
}

// compilePrint lowers `print STRING ;` (each rune emitted as a literal
// followed by ".") and `print expr ;` (the expression's byte value
// output directly), matching the tape machine's own "." instruction.
func (fc *FuncCompiler) compilePrint(cur int) string {
	fc.p.Advance() // 'print'
	var sb strings.Builder
	if t := fc.p.Current(); t != nil && t.Type == token.String {
		for _, r := range t.Data {
			sb.WriteString((&ast.Literal{Value: int(r)}).Emit(cur))
			sb.WriteString(move(cur+1, cur))
			sb.WriteString(".")
		}
		fc.p.Advance()
	} else {
		expr := fc.parseExpr()
		sb.WriteString(expr.Emit(cur))
		sb.WriteString(move(cur+1, cur))
		sb.WriteString(".")
	}
	sb.WriteString("[-]")
	fc.p.CheckCurrentIs(token.Semicolon)
	fc.p.Advance()
	return sb.String()
}

// compileReturn lowers `return (expr)? ;`. A return must be the last
// statement in its enclosing block: this compiler has no mechanism for
// an early structured exit from a block once lowered, so any earlier
// position is rejected rather than silently miscompiled.
func (fc *FuncCompiler) compileReturn(cur int) string {
	fc.p.Advance() // 'return'
	if fc.returnCell < 0 {
		panic(&symtab.SemanticError{Message: "return used outside a function"})
	}
	var code string
	if t := fc.p.Current(); t != nil && t.Type != token.Semicolon {
		expr := fc.parseExpr()
		code = expr.Emit(cur) + move(cur+1, cur) + ast.MoveToReturnCell(cur, fc.returnCell)
	}
	fc.p.CheckCurrentIs(token.Semicolon)
	fc.p.Advance()
	if nt := fc.p.Current(); nt != nil && nt.Type != token.RBrace {
		panic(&parse.SyntaxError{Token: *nt, Message: "'return' must be the last statement in its block"})
	}
	return code
}

// compileBreak lowers `break ;`, valid only inside a switch body.
func (fc *FuncCompiler) compileBreak(cur int) string {
	fc.p.Advance()
	fc.p.CheckCurrentIs(token.Semicolon)
	fc.p.Advance()
	if fc.switchBroken < 0 {
		panic(&symtab.SemanticError{Message: "break used outside a switch"})
	}
	return move(cur, fc.switchBroken) + "[-]+" + move(fc.switchBroken, cur)
}
