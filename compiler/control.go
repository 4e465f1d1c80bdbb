package compiler

import (
	"strings"

	"github.com/nwillc/byteflow/ast"
	"github.com/nwillc/byteflow/parse"
	"github.com/nwillc/byteflow/token"
)

// boolFromCond wraps a parsed condition so it always lowers to a clean
// 0/1 flag, reusing ast's relational-operator machinery (cond != 0)
// rather than re-deriving a boolize primitive a second time.
func boolFromCond(cond ast.Node) ast.Node {
	return &ast.Binary{Op: token.RelOp, Text: "!=", Left: cond, Right: &ast.Literal{Value: 0}}
}

func (fc *FuncCompiler) parseParenCond() ast.Node {
	fc.p.CheckCurrentIs(token.LParen)
	fc.p.Advance()
	cond := fc.parseExpr()
	fc.p.CheckCurrentIs(token.RParen)
	fc.p.Advance()
	return boolFromCond(cond)
}

// compileIf lowers if/else-if/else: the condition's
// boolean flag gates a then-branch via the guaranteed-single-iteration
// idiom; a preserved copy of the flag gates an else-branch (possibly
// itself another if, chaining without braces) the same way. Either
// branch's body can be a brace-delimited block or a single bare
// statement.
func (fc *FuncCompiler) compileIf(cur int) string {
	fc.p.Advance() // 'if'
	boolCond := fc.parseParenCond()

	flag, copyFlag, elseFlag, scratch := cur, cur+1, cur+2, cur+3

	var sb strings.Builder
	sb.WriteString(boolCond.Emit(flag))
	sb.WriteString(move(flag+1, flag))
	sb.WriteString(copyCellStmt(flag, copyFlag, scratch))

	thenCell := scratch + 1
	thenBody := fc.compileBlockAtFrom(thenCell)
	sb.WriteString(ifOnceStmt(flag, move(flag, thenCell)+thenBody+move(thenCell, flag)))

	sb.WriteString(move(flag, copyFlag))
	sb.WriteString(move(copyFlag, elseFlag) + "+" + move(elseFlag, copyFlag))
	negate := move(copyFlag, elseFlag) + "-" + move(elseFlag, copyFlag)
	sb.WriteString(ifOnceStmt(copyFlag, negate))
	sb.WriteString(move(copyFlag, elseFlag))

	var elseBody string
	if t := fc.p.Current(); t != nil && t.Type == token.Else {
		fc.p.Advance()
		if nt := fc.p.Current(); nt != nil && nt.Type == token.If {
			elseBody = fc.compileIf(scratch)
		} else {
			elseBody = fc.compileBlockAtFrom(scratch)
		}
	}
	sb.WriteString(ifOnceStmt(elseFlag, move(elseFlag, scratch)+elseBody+move(scratch, elseFlag)))
	sb.WriteString(move(elseFlag, cur))
	return sb.String()
}

// compileWhile lowers a while loop as a genuine Brainfuck "[...]": the
// condition is recomputed into the same cell at the top of every pass,
// reusing the cell the body itself works from since the loop keeps no
// state alive across iterations beyond what the source program declares.
func (fc *FuncCompiler) compileWhile(cur int) string {
	fc.p.Advance() // 'while'
	boolCond := fc.parseParenCond()
	bodyCode := fc.compileBlockAtFrom(cur)

	var sb strings.Builder
	sb.WriteString(boolCond.Emit(cur))
	sb.WriteString(move(cur+1, cur))
	sb.WriteString("[")
	sb.WriteString(bodyCode)
	sb.WriteString(boolCond.Emit(cur))
	sb.WriteString(move(cur+1, cur))
	sb.WriteString("]")
	return sb.String()
}

// compileDoWhile lowers `do { body } while (cond) ;`: body runs once
// unconditionally, then loops exactly like compileWhile.
func (fc *FuncCompiler) compileDoWhile(cur int) string {
	fc.p.Advance() // 'do'
	bodyCode := fc.compileBlockAtFrom(cur)
	fc.p.CheckCurrentIs(token.While)
	fc.p.Advance()
	boolCond := fc.parseParenCond()
	fc.p.CheckCurrentIs(token.Semicolon)
	fc.p.Advance()

	var sb strings.Builder
	sb.WriteString(bodyCode)
	sb.WriteString(boolCond.Emit(cur))
	sb.WriteString(move(cur+1, cur))
	sb.WriteString("[")
	sb.WriteString(bodyCode)
	sb.WriteString(boolCond.Emit(cur))
	sb.WriteString(move(cur+1, cur))
	sb.WriteString("]")
	return sb.String()
}

// compileFor lowers `for (init; cond; step) { body }`. init is either a
// plain assignment-expression or a single `int` declaration scoped to
// the loop itself -- visible to cond, step, and body, and released
// once the loop as a whole is done -- the one declaration site besides
// globals and a function's own block-local decls.
func (fc *FuncCompiler) compileFor(cur int) string {
	fc.p.Advance() // 'for'
	fc.p.CheckCurrentIs(token.LParen)
	fc.p.Advance()

	loopVar := false
	bodyCur := cur
	var initCode string

	if t := fc.p.Current(); t != nil && t.Type == token.Int {
		nameTok := fc.p.Next(1)
		if nameTok == nil || nameTok.Type != token.ID {
			panic(&parse.SyntaxError{Message: "expected a variable name after 'int' in a for-loop initializer"})
		}
		scope := fc.env.EnterScope()
		scope.SetNext(cur)
		if _, err := scope.Insert(nameTok.Data, nil); err != nil {
			panic(err)
		}
		loopVar = true
		bodyCur = scope.Next()
		initCode = move(cur, bodyCur) + fc.compileDecl(bodyCur) // consumes "int name = expr ;" including the ';'
	} else {
		if t != nil && t.Type != token.Semicolon {
			initExpr := fc.parseExpr()
			initCode = initExpr.Emit(cur) + move(cur+1, cur)
		}
		fc.p.CheckCurrentIs(token.Semicolon)
		fc.p.Advance()
	}

	var boolCond ast.Node
	if t := fc.p.Current(); t != nil && t.Type != token.Semicolon {
		boolCond = boolFromCond(fc.parseExpr())
	} else {
		boolCond = &ast.Literal{Value: 1}
	}
	fc.p.CheckCurrentIs(token.Semicolon)
	fc.p.Advance()

	var stepExpr ast.Node
	if t := fc.p.Current(); t != nil && t.Type != token.RParen {
		stepExpr = fc.parseExpr()
	}
	fc.p.CheckCurrentIs(token.RParen)
	fc.p.Advance()

	bodyCode := fc.compileBlockAtFrom(bodyCur)
	var stepCode string
	if stepExpr != nil {
		stepCode = stepExpr.Emit(bodyCur) + move(bodyCur+1, bodyCur)
	}

	var sb strings.Builder
	sb.WriteString(initCode)
	sb.WriteString(boolCond.Emit(bodyCur))
	sb.WriteString(move(bodyCur+1, bodyCur))
	sb.WriteString("[")
	sb.WriteString(bodyCode)
	sb.WriteString(stepCode)
	sb.WriteString(boolCond.Emit(bodyCur))
	sb.WriteString(move(bodyCur+1, bodyCur))
	sb.WriteString("]")
	if loopVar {
		fc.env.ExitScope()
		sb.WriteString(move(bodyCur, cur))
	}
	return sb.String()
}
