package compiler

import (
	"github.com/nwillc/byteflow/symtab"
)

// FuncClone implements ast.Callee for one call site of a source-level
// function: it builds a fresh environment rooted at the caller's
// zeroed return cell, binds the actual parameters' cells, predeclares
// the body's own locals, and compiles the body as an ordinary
// statement stream -- every call is compiled as if the function were
// freshly cloned into place, never shared.
type FuncClone struct {
	def *FuncDef
}

func (fc *FuncClone) Name() string    { return fc.def.FName }
func (fc *FuncClone) ParamCount() int { return len(fc.def.Params) }

func (fco *FuncClone) EmitBody(baseCell int) string {
	def := fco.def
	prog := def.Program

	if prog.inProgress == nil {
		prog.inProgress = map[string]bool{}
	}
	if prog.inProgress[def.FName] {
		panic(&symtab.SemanticError{Message: "recursive call to " + def.FName + " is not supported"})
	}
	prog.inProgress[def.FName] = true
	defer delete(prog.inProgress, def.FName)

	env := symtab.NewFunctionEnv(prog.Global, baseCell+1)
	scope := env.Innermost()
	for _, ps := range def.Params {
		if _, err := scope.Insert(ps.Name, ps.Dims); err != nil {
			panic(err)
		}
	}

	body := newFuncCompiler(prog, env, baseCell)
	predeclare(body.p, scope, def.BodyBrace+1, def.BodyEnd)
	inner := scope.Next()
	code := body.CompileRange(inner, def.BodyBrace+1, def.BodyEnd)
	clear := ""
	for c := inner; c > baseCell; c-- {
		clear += "[-]" + move(c, c-1)
	}
	return move(baseCell, inner) + code + clear
}
