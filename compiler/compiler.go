package compiler

import (
	"errors"
	"sort"

	"github.com/nwillc/byteflow/internal/panicerr"
	"github.com/nwillc/byteflow/lex"
	"github.com/nwillc/byteflow/optimize"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/token"
)

// Option configures a Compiler, mirroring the VMOption functional-
// options idiom: each Option closes over one field of a compiler
// rather than the compiler taking a sprawling constructor.
type Option interface{ apply(c *Compiler) }

type noption struct{}

func (noption) apply(*Compiler) {}

type options []Option

func (opts options) apply(c *Compiler) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(c)
		}
	}
}

// Options collapses a variadic option list into one, flattening any
// nested option lists the same way VMOptions does.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type optimizeOption bool

func (o optimizeOption) apply(c *Compiler) { c.optimize = bool(o) }

// WithOptimize turns the peephole optimizer over the emitted code on
// or off (on by default).
func WithOptimize(on bool) Option { return optimizeOption(on) }

type logfOption func(string, ...interface{})

func (f logfOption) apply(c *Compiler) { c.logf = f }

// WithLogf installs a printf-style diagnostic sink, the same shape the
// teacher's VM takes for its own logfn.
func WithLogf(f func(string, ...interface{})) Option { return logfOption(f) }

type libraryOption []Definition

func (l libraryOption) apply(c *Compiler) { c.library = append(c.library, l...) }

// WithLibrary registers native Definitions (e.g. the stdlib package's
// routines) callable by name from compiled source, alongside whatever
// functions the source itself defines.
func WithLibrary(defs ...Definition) Option { return libraryOption(defs) }

// Compiler turns byteflow source into byteflow-machine code.
type Compiler struct {
	optimize bool
	logf     func(string, ...interface{})
	library  []Definition
}

// New builds a Compiler. optimize defaults on, matching how the
// teacher's own VM ships with sensible defaults and lets callers dial
// them back via Options.
func New(opts ...Option) *Compiler {
	c := &Compiler{optimize: true, logf: func(string, ...interface{}) {}}
	Options(opts...).apply(c)
	return c
}

// Compile lexes, parses, and lowers source into the target machine's
// instruction string. Every syntax or semantic defect surfaces as a
// panic deep in the parse/symtab/ast/compiler call chain; Compile is
// the single boundary that converts those back into a returned error
// via panicerr.Recover.
func (c *Compiler) Compile(source string) (code string, err error) {
	err = panicerr.Recover("compile", func() error {
		tokens, lexErr := lex.Analyze(source)
		if lexErr != nil {
			return lexErr
		}
		code = c.compileTokens(tokens)
		return nil
	})
	if err != nil {
		return "", unwrapCompileError(err)
	}
	return code, nil
}

// unwrapCompileError strips panicerr's goroutine-panic wrapping so
// callers see the *parse.SyntaxError / *symtab.SemanticError directly,
// the way a compiler's caller expects to inspect what went wrong.
func unwrapCompileError(err error) error {
	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		return unwrapped
	}
	return err
}

func (c *Compiler) compileTokens(tokens []token.Token) string {
	funcs, globalRanges, err := ScanProgram(tokens)
	if err != nil {
		panic(err)
	}
	for _, def := range c.library {
		if _, exists := funcs[def.Name()]; exists {
			panic(&symtab.SemanticError{Message: "function " + def.Name() + " is already defined"})
		}
		funcs[def.Name()] = def
	}

	env := symtab.NewEnv()
	prog := &Program{Tokens: tokens, Funcs: funcs, Global: env.Global(), Optimize: c.optimize, Logf: c.logf}
	for _, def := range funcs {
		if fd, ok := def.(*FuncDef); ok {
			fd.Program = prog
		}
	}

	prog.Logf("defined functions: %v", sortedFuncNames(funcs))

	fc := newFuncCompiler(prog, env, -1)

	// Globals are, together, one flat top-level block: every top-level
	// int declaration across every range is predeclared first, fixing
	// each global's cell before any global statement (including an
	// initializer referencing an earlier global) is compiled.
	for _, rng := range globalRanges {
		predeclare(fc.p, env.Global(), rng[0], rng[1])
	}
	cur := env.Global().Next()
	raw := move(0, cur)
	for _, rng := range globalRanges {
		raw += fc.CompileRange(cur, rng[0], rng[1])
	}

	mainDef, ok := funcs["main"]
	if !ok {
		panic(&symtab.SemanticError{Message: "program has no main function"})
	}
	if mainDef.ParamCount() != 0 {
		panic(&symtab.SemanticError{Message: "main must take no parameters"})
	}
	// main is spliced in directly rather than through ast.Call: it is
	// invoked exactly once, from the top level, with no arguments and
	// no caller expecting its return value back.
	raw += "[-]" + mainDef.Instantiate().EmitBody(cur)

	if c.optimize {
		raw = optimize.Peephole(raw)
	}
	return raw
}

// sortedFuncNames is used by diagnostics (see Logf) that want a stable
// listing of a program's defined functions.
func sortedFuncNames(funcs map[string]Definition) []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
