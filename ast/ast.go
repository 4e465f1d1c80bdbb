// Package ast builds and lowers the expression tree: nine node shapes,
// each satisfying the expression pointer contract -- Emit(cur) assumes
// the data pointer already rests on cell cur, writes the expression's
// value into cell cur, and leaves the pointer at cur+1.
package ast

import (
	"strings"

	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/token"
)

// Node is one expression tree node.
type Node interface {
	// Emit lowers the node to byteflow code assuming the pointer is at
	// cur, leaving the value at cur and the pointer at cur+1.
	Emit(cur int) string
}

// Callee is the surface a CallNode needs from a function definition: it
// can describe itself and emit its own body assuming its frame begins at
// baseCell (the call site's zeroed return-value cell). compiler.FuncClone
// implements this; ast never imports compiler, breaking what would
// otherwise be an import cycle between expression lowering and statement
// lowering.
type Callee interface {
	Name() string
	ParamCount() int
	// EmitBody assumes the pointer is at baseCell (the return-value
	// cell) on entry and leaves it there on exit.
	EmitBody(baseCell int) string
}

// Literal is a NUM, CHAR, TRUE, or FALSE token lowered to a compile-time
// constant.
type Literal struct {
	Value int
}

func (n *Literal) Emit(cur int) string {
	return literalCode(n.Value) + move(cur, cur+1)
}

// Identifier reads a scalar variable's value.
type Identifier struct {
	Var *symtab.Variable
}

func (n *Identifier) Emit(cur int) string {
	return identifierCopyCode(cur, n.Var.Cell)
}

// Assign writes Value into a scalar variable's home cell and evaluates
// to the written value, mirroring ArraySet's expression-typed assignment
//.
type Assign struct {
	Var   *symtab.Variable
	Value Node
}

func (n *Assign) Emit(cur int) string {
	code := n.Value.Emit(cur)
	k := n.Var.Cell
	scratch := cur + 1
	var sb strings.Builder
	sb.WriteString(code)
	sb.WriteString(move(cur+1, cur))
	sb.WriteString(move(cur, k) + "[-]" + move(k, cur))
	sb.WriteString(copyCell(cur, k, scratch))
	sb.WriteString(move(cur, cur+1))
	return sb.String()
}

// Binary lowers a binary operator application. Op carries the lexed
// token kind (BinOp, RelOp, BitwiseAnd/Or/Xor, BitwiseShift, And, Or)
// and Text carries which operator within that kind ("+", "==", "<<", ...).
type Binary struct {
	Op    token.Kind
	Text  string
	Left  Node
	Right Node
}

func (n *Binary) Emit(cur int) string {
	var sb strings.Builder
	sb.WriteString(n.Left.Emit(cur))
	sb.WriteString(n.Right.Emit(cur + 1))
	sb.WriteString(n.combine(cur))
	return sb.String()
}

func (n *Binary) combine(cur int) string {
	l, r := cur, cur+1
	entry := cur + 2
	switch n.Op {
	case token.BinOp:
		switch n.Text {
		case "+":
			return move(entry, r) + addCell(r, l, +1)
		case "-":
			return move(entry, r) + addCell(r, l, -1)
		case "*":
			return mulCombine(entry, l, r, r+1, r+2)
		case "/":
			s := newDivScratch(r + 1)
			return divmodCombine(entry, l, r, s, false)
		case "%":
			s := newDivScratch(r + 1)
			return divmodCombine(entry, l, r, s, true)
		}
	case token.RelOp:
		s := newCompareScratch(r + 1)
		code := move(entry, l) + compareCombine(l, r, s.lt, s.eq, s.cont, s.copyA, s.copyB, s.ytest, s.scratch)
		return code + n.relResult(l, s)
	case token.BitwiseAnd:
		s := newBitwiseScratch(r + 1)
		return bitwiseCombine(entry, l, r, s, func(bl, br int) string {
			return andBit(bl, br, s.combined, s.scratch)
		})
	case token.BitwiseOr:
		s := newBitwiseScratch(r + 1)
		return bitwiseCombine(entry, l, r, s, func(bl, br int) string {
			return orBit(bl, br, s.combined, s.scratch)
		})
	case token.BitwiseXor:
		s := newBitwiseScratch(r + 1)
		return bitwiseCombine(entry, l, r, s, func(bl, br int) string {
			return xorBit(bl, br, s.combined, s.two, s.div)
		})
	case token.BitwiseShift:
		s := newShiftScratch(r + 1)
		return shiftCombine(entry, l, r, s, n.Text == "<<")
	case token.And:
		s := newBitwiseScratch(r + 1)
		return move(entry, l) + boolize(l, s.scratch) + move(l, r) + boolize(r, s.scratch) +
			move(r, l) + andBool(l, r, s.combined, s.bl, s.scratch) +
			"[-]" + move(l, r) + "[-]" + move(r, s.combined) + addCell(s.combined, l, +1) + move(s.combined, l+1)
	case token.Or:
		s := newBitwiseScratch(r + 1)
		return move(entry, l) + boolize(l, s.scratch) + move(l, r) + boolize(r, s.scratch) +
			addCell(r, s.combined, +1) + move(r, l) + addCell(l, s.combined, +1) +
			move(l, s.combined) + boolize(s.combined, s.scratch) +
			addCell(s.combined, l, +1) + move(s.combined, l+1)
	}
	return ""
}

// relResult folds the lt/eq flags computed by compareCombine into the
// single 0/1 outcome the requested relational operator needs, leaving it
// at l with the pointer at l+1.
func (n *Binary) relResult(l int, s compareScratch) string {
	clear := "[-]" + move(l, l+1) + "[-]" + move(l+1, s.lt)
	switch n.Text {
	case "<":
		return clear + move(s.lt, s.eq) + "[-]" + move(s.eq, s.lt) + addCell(s.lt, l, +1) + move(s.lt, l+1)
	case "==":
		return clear + "[-]" + move(s.lt, s.eq) + addCell(s.eq, l, +1) + move(s.eq, l+1)
	case "<=":
		return clear + move(s.lt, s.eq) + addCell(s.eq, s.lt, +1) + move(s.eq, s.lt) +
			addCell(s.lt, l, +1) + move(s.lt, l+1)
	case ">":
		return clear + move(s.lt, s.eq) + addCell(s.eq, s.lt, +1) + move(s.eq, s.lt) + negateBool(s.lt, s.scratch) +
			addCell(s.lt, l, +1) + move(s.lt, l+1)
	case ">=":
		return clear + move(s.lt, s.eq) + "[-]" + move(s.eq, s.lt) + negateBool(s.lt, s.scratch) +
			addCell(s.lt, l, +1) + move(s.lt, l+1)
	case "!=":
		return clear + "[-]" + move(s.lt, s.eq) + negateBool(s.eq, s.scratch) +
			addCell(s.eq, l, +1) + move(s.eq, l+1)
	}
	return ""
}

type compareScratch struct {
	lt, eq, cont, copyA, copyB, ytest, scratch int
}

func newCompareScratch(base int) compareScratch {
	return compareScratch{base, base + 1, base + 2, base + 3, base + 4, base + 5, base + 6}
}

// UnaryPrefix lowers !, ~, unary +/-, prefix ++/--, and a compound
// assignment applied as a prefix operator (e.g. x += 1 parses the same
// shape as ++x in this grammar: an operator immediately before an
// lvalue).
type UnaryPrefix struct {
	Op   token.Kind
	Text string
	Var  *symtab.Variable // set for ++/--/compound-assign forms
	Operand Node
}

func (n *UnaryPrefix) Emit(cur int) string {
	switch n.Op {
	case token.Increment, token.Decrement:
		return n.emitStep(cur, n.Op == token.Increment)
	case token.Not:
		code := n.Operand.Emit(cur)
		return code + move(cur+1, cur) + boolize(cur, cur+1) + negateBool(cur, cur+1) + move(cur, cur+1)
	case token.BitwiseNot:
		code := n.Operand.Emit(cur)
		return code + literalCode(255) + move(cur+1, cur) +
			addCell(cur, cur+1, -1) + move(cur, cur+1) + addCell(cur+1, cur, +1)
	case token.BinOp:
		code := n.Operand.Emit(cur)
		if n.Text == "-" {
			return code + move(cur+1, cur) + negateValue(cur) + move(cur, cur+1)
		}
		return code
	}
	return ""
}

// emitStep lowers ++x / --x: reads the variable, bumps it by one both in
// its home cell and in the expression result, leaving the post-update
// value as the expression's value (prefix semantics).
func (n *UnaryPrefix) emitStep(cur int, inc bool) string {
	sign := -1
	if inc {
		sign = 1
	}
	k := n.Var.Cell
	var sb strings.Builder
	if sign > 0 {
		sb.WriteString(move(cur, k) + "+" + move(k, cur))
	} else {
		sb.WriteString(move(cur, k) + "-" + move(k, cur))
	}
	sb.WriteString(identifierCopyCode(cur, k))
	return sb.String()
}

// negateValue computes two's-complement negation (256-x, wrapping) of
// the cell at cur in place, leaving the pointer unchanged at cur.
func negateValue(cur int) string {
	scratch := cur + 1
	var sb strings.Builder
	sb.WriteString(move(cur, scratch))
	sb.WriteString(literalCode(0))
	sb.WriteString(move(scratch, cur))
	sb.WriteString(addCell(cur, scratch, -1))
	sb.WriteString(move(cur, scratch))
	sb.WriteString(addCell(scratch, cur, +1))
	sb.WriteString(move(scratch, cur))
	return sb.String()
}

// UnaryPostfix lowers x++ / x--: the expression's value is the
// pre-update value, after which the variable is bumped.
type UnaryPostfix struct {
	Inc bool
	Var *symtab.Variable
}

func (n *UnaryPostfix) Emit(cur int) string {
	k := n.Var.Cell
	code := identifierCopyCode(cur, k)
	if n.Inc {
		return code + move(cur+1, k) + "+" + move(k, cur+1)
	}
	return code + move(cur+1, k) + "-" + move(k, cur+1)
}

// Ternary lowers cond ? thenExpr : elseExpr using the same
// guaranteed-single-iteration if/else shape statement-level if/else
// uses, reserving a take-else flag at cur+1.
type Ternary struct {
	Cond, Then, Else Node
}

func (n *Ternary) Emit(cur int) string {
	var sb strings.Builder
	sb.WriteString(n.Cond.Emit(cur))
	takeElse := cur + 1
	sb.WriteString("+")
	sb.WriteString(move(takeElse, cur))
	sb.WriteString("[")
	sb.WriteString(move(cur, takeElse) + "-")
	sb.WriteString(move(takeElse, cur+2))
	thenCode := n.Then.Emit(cur + 2)
	sb.WriteString(thenCode)
	sb.WriteString(move(cur+3, cur) + "[-]")
	sb.WriteString("]")
	sb.WriteString(move(cur, takeElse))
	sb.WriteString("[")
	sb.WriteString("-")
	sb.WriteString(move(takeElse, cur+2))
	elseCode := n.Else.Emit(cur + 2)
	sb.WriteString(elseCode)
	sb.WriteString(move(cur+3, takeElse))
	sb.WriteString("]")
	sb.WriteString(move(takeElse, cur+2) + addCell(cur+2, cur, +1) + move(cur+2, cur+1))
	return sb.String()
}

// arraySlotScratch names the transient cells the array-access unrolled
// scan needs, reserved starting just past the index cell.
type arraySlotScratch struct {
	remaining, found, temp, copyScratch, flagScratch int
}

func newArraySlotScratch(base int) arraySlotScratch {
	return arraySlotScratch{base, base + 1, base + 2, base + 3, base + 4}
}

// arrayScanCode implements array element access via a compile-time
// unrolled scan over every slot (array sizes are compile-time
// constants, so this avoids genuine dynamic pointer arithmetic):
// each slot subtracts its own literal position from a fresh copy of the
// index and fires exactly once, when that difference is zero. onHit
// receives the slot's absolute cell and must leave the pointer back at
// s.temp.
func arrayScanCode(cur, base, size int, s arraySlotScratch, onHit func(slot int) string) string {
	var sb strings.Builder
	sb.WriteString(move(cur, s.found) + "[-]+")
	for slot := 0; slot < size; slot++ {
		sb.WriteString(move(s.found, s.temp) + "[-]")
		sb.WriteString(move(s.temp, cur))
		sb.WriteString(copyCell(cur, s.temp, s.copyScratch))
		sb.WriteString(move(cur, s.temp))
		sb.WriteString(strings.Repeat("-", slot%256))
		sb.WriteString(ifZero(s.temp, s.flagScratch, onHit(base+slot)))
		sb.WriteString(move(s.temp, s.found))
	}
	sb.WriteString(move(s.found, s.found) + "[-]")
	sb.WriteString(move(s.found, cur))
	return sb.String()
}

// ArrayGet reads arr[index].
type ArrayGet struct {
	Var   *symtab.Variable
	Index Node // linearized compile-time index expression
}

func (n *ArrayGet) Emit(cur int) string {
	var sb strings.Builder
	sb.WriteString(n.Index.Emit(cur))
	s := newArraySlotScratch(cur + 1)
	sb.WriteString(move(cur+1, cur))
	sb.WriteString(arrayScanCode(cur, n.Var.Cell, symtab.Size(n.Var.Dims), s, func(slot int) string {
		return move(s.temp, slot) + copyCell(slot, s.remaining, s.copyScratch) + move(slot, s.temp)
	}))
	sb.WriteString("[-]" + move(cur, s.remaining) + addCell(s.remaining, cur, +1))
	return sb.String()
}

// ArraySet writes value into arr[index] and evaluates to the written
// value.
type ArraySet struct {
	Var   *symtab.Variable
	Index Node
	Value Node
}

func (n *ArraySet) Emit(cur int) string {
	var sb strings.Builder
	sb.WriteString(n.Index.Emit(cur))
	sb.WriteString(n.Value.Emit(cur + 1))
	valueCell := cur + 1
	s := newArraySlotScratch(cur + 2)
	sb.WriteString(move(cur+2, cur))
	sb.WriteString(arrayScanCode(cur, n.Var.Cell, symtab.Size(n.Var.Dims), s, func(slot int) string {
		return move(s.temp, slot) + "[-]" + move(slot, valueCell) + copyCell(valueCell, slot, s.copyScratch) + move(valueCell, s.temp)
	}))
	sb.WriteString("[-]" + move(cur, valueCell) + addCell(valueCell, cur, +1))
	return sb.String()
}

// ArrayAssign is the bulk-initializer form `arr = {a, b, c}`: it assigns
// each element positionally and evaluates to the last value assigned
//.
type ArrayAssign struct {
	Var    *symtab.Variable
	Values []Node
}

func (n *ArrayAssign) Emit(cur int) string {
	var sb strings.Builder
	phys := cur
	for i, v := range n.Values {
		work := cur + i
		sb.WriteString(move(phys, work))
		sb.WriteString(v.Emit(work)) // leaves the pointer at work+1
		slot := n.Var.Cell + i
		scratch := work + 1
		sb.WriteString(move(work+1, slot) + "[-]" + move(slot, work))
		sb.WriteString(copyCell(work, slot, scratch))
		phys = work
	}

	// Any declared slot past the supplied values is zero-padded, so a
	// short initializer never leaves stale data behind in a reused cell.
	size := symtab.Size(n.Var.Dims)
	for i := len(n.Values); i < size; i++ {
		slot := n.Var.Cell + i
		sb.WriteString(move(phys, slot) + "[-]" + move(slot, phys))
	}

	if len(n.Values) == 0 {
		sb.WriteString(move(phys, cur))
		sb.WriteString(literalCode(0))
		sb.WriteString(move(cur, cur+1))
		return sb.String()
	}
	final := cur + len(n.Values) - 1
	sb.WriteString(move(phys, cur))
	for w := cur; w < final; w++ {
		sb.WriteString("[-]" + move(w, w+1))
	}
	if final > cur {
		sb.WriteString(addCell(final, cur, +1))
	}
	sb.WriteString(move(final, cur+1))
	return sb.String()
}

// Call lowers a function call: a zeroed return cell,
// each actual parameter evaluated into the next cell, the pointer
// retreated to the return cell, and the callee's body spliced in.
type Call struct {
	Callee Callee
	Args   []Node
}

func (n *Call) Emit(cur int) string {
	var sb strings.Builder
	sb.WriteString("[-]")
	sb.WriteString(">")
	paramCell := cur + 1
	for _, arg := range n.Args {
		sb.WriteString(arg.Emit(paramCell))
		paramCell++
	}
	sb.WriteString(strings.Repeat("<", 1+len(n.Args)))
	sb.WriteString(n.Callee.EmitBody(cur))
	sb.WriteString(">")
	return sb.String()
}
