package stdlib

import (
	"strings"

	"github.com/nwillc/byteflow/ast"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/token"
)

// PrintChar is the `print_char(c)` library function: it outputs its
// one argument's byte value directly via the tape machine's "."
// instruction.
var PrintChar printCharFunc

type printCharFunc struct{}

func (printCharFunc) Name() string              { return "print_char" }
func (printCharFunc) ParamCount() int           { return 1 }
func (f printCharFunc) Instantiate() ast.Callee { return f }

func (printCharFunc) EmitBody(baseCell int) string {
	param := baseCell + 1
	return move(baseCell, param) + "." + move(param, baseCell)
}

// PrintNum is the `print_num(n)` library function: it prints its one
// argument (0-255) as a decimal string with no leading zeros.
var PrintNum printNumFunc

type printNumFunc struct{}

func (printNumFunc) Name() string            { return "print_num" }
func (printNumFunc) ParamCount() int          { return 1 }
func (f printNumFunc) Instantiate() ast.Callee { return f }

// EmitBody computes hundreds/tens/ones digits by composing ordinary
// ast expressions (the same division, modulo, and boolean lowering a
// source-level `n / 100` would use), then prints each digit that
// isn't a suppressed leading zero. Every cell past the parameter is
// this routine's own scratch, freely reused since nothing here is
// visible to the caller.
func (printNumFunc) EmitBody(baseCell int) string {
	v := &symtab.Variable{Cell: baseCell + 1}
	h := &symtab.Variable{Cell: baseCell + 2}
	rem1 := &symtab.Variable{Cell: baseCell + 3}
	t := &symtab.Variable{Cell: baseCell + 4}
	o := &symtab.Variable{Cell: baseCell + 5}
	flagH := &symtab.Variable{Cell: baseCell + 6}
	flagStarted := &symtab.Variable{Cell: baseCell + 7}
	work := baseCell + 8

	var sb strings.Builder
	sb.WriteString(move(baseCell, work))

	assign := func(dst *symtab.Variable, value ast.Node) {
		sb.WriteString((&ast.Assign{Var: dst, Value: value}).Emit(work))
		sb.WriteString(move(work+1, work))
	}

	lit := func(n int) ast.Node { return &ast.Literal{Value: n} }
	ident := func(v *symtab.Variable) ast.Node { return &ast.Identifier{Var: v} }
	div := func(a, b ast.Node) ast.Node { return &ast.Binary{Op: token.BinOp, Text: "/", Left: a, Right: b} }
	mod := func(a, b ast.Node) ast.Node { return &ast.Binary{Op: token.BinOp, Text: "%", Left: a, Right: b} }
	neq := func(a, b ast.Node) ast.Node { return &ast.Binary{Op: token.RelOp, Text: "!=", Left: a, Right: b} }
	or := func(a, b ast.Node) ast.Node { return &ast.Binary{Op: token.Or, Text: "||", Left: a, Right: b} }

	assign(h, div(ident(v), lit(100)))
	assign(rem1, mod(ident(v), lit(100)))
	assign(t, div(ident(rem1), lit(10)))
	assign(o, mod(ident(rem1), lit(10)))
	assign(flagH, neq(ident(h), lit(0)))
	assign(flagStarted, or(ident(flagH), neq(ident(t), lit(0))))

	sb.WriteString(move(work, flagH.Cell))
	sb.WriteString(ifOnceStmt(flagH.Cell, printDigit(flagH.Cell, h.Cell)))
	sb.WriteString(move(flagH.Cell, flagStarted.Cell))
	sb.WriteString(ifOnceStmt(flagStarted.Cell, printDigit(flagStarted.Cell, t.Cell)))
	sb.WriteString(move(flagStarted.Cell, o.Cell))
	sb.WriteString(strings.Repeat("+", 48))
	sb.WriteString(".")
	sb.WriteString(move(o.Cell, v.Cell))
	for c := v.Cell; c < work; c++ {
		sb.WriteString("[-]" + move(c, c+1))
	}
	sb.WriteString("[-]" + move(work, baseCell))
	return sb.String()
}

// printDigit destructively adds the ASCII offset to digitCell and
// prints it, returning the pointer to anchor. digitCell is never
// needed again once printed.
func printDigit(anchor, digitCell int) string {
	return move(anchor, digitCell) + strings.Repeat("+", 48) + "." + move(digitCell, anchor)
}
