package ast

import "strings"

// Move exposes the directional pointer-movement primitive to the
// compiler package, which needs the same cell-to-cell navigation for
// statement scaffolding (if/while/switch) without needing arithmetic
// lowering.
func Move(from, to int) string { return move(from, to) }

// MoveToReturnCell exposes moveToReturnCell to the compiler package's
// return-statement lowering.
func MoveToReturnCell(cur, returnCell int) string { return moveToReturnCell(cur, returnCell) }

// move emits the directional pointer movement between two absolute cell
// indices. Every lowering in this package is direction-aware this way.
func move(from, to int) string {
	switch {
	case to > from:
		return strings.Repeat(">", to-from)
	case to < from:
		return strings.Repeat("<", from-to)
	default:
		return ""
	}
}

// literalCode builds n (mod 256, cells wrap at 8 bits) into the cell
// the pointer currently rests on, without moving the pointer.
func literalCode(n int) string {
	n = ((n % 256) + 256) % 256
	return "[-]" + strings.Repeat("+", n)
}

// ifOnce wraps body in a loop that is guaranteed to run body at most once:
// the loop forces its test cell to zero as its first act, so any
// remaining magnitude cannot cause a second pass. body must assume the
// pointer arrives at cell and must leave the pointer at cell again, so
// the loop's implicit re-test lands correctly. This is the same
// guaranteed-single-iteration pattern if/else and switch dispatch use,
// factored out here for reuse by comparisons, the ternary, and array
// access.
func ifOnce(cell int, body string) string {
	return "[" + "[-]" + body + "]"
}

// addCell drains the value at src into dst, destroying src, adding
// (sign>=0) or subtracting (sign<0) it from dst's current value. Assumes
// the pointer is at src on entry and leaves it at src (now zero).
func addCell(src, dst, sign int) string {
	step := "+"
	if sign < 0 {
		step = "-"
	}
	return "[-" + move(src, dst) + step + move(dst, src) + "]"
}

// copyCell adds the value at src into dst while preserving src, using
// scratch (assumed to start at zero) as a transient holding cell. Assumes
// the pointer is at src on entry and leaves it at src.
func copyCell(src, dst, scratch int) string {
	var sb strings.Builder
	sb.WriteString("[-" + move(src, dst) + "+" + move(dst, scratch) + "+" + move(scratch, src) + "]")
	sb.WriteString(move(src, scratch))
	sb.WriteString("[-" + move(scratch, src) + "+" + move(src, scratch) + "]")
	sb.WriteString(move(scratch, src))
	return sb.String()
}

// boolize collapses whatever is at cell to exactly 0 or 1, using scratch
// (assumed zero) as transient storage. Assumes the pointer is at cell on
// entry and leaves it at cell.
func boolize(cell, scratch int) string {
	var sb strings.Builder
	sb.WriteString(addCell(cell, scratch, +1)) // cell -> 0, scratch := original value
	sb.WriteString(move(cell, scratch))
	sb.WriteString(ifOnce(scratch, move(scratch, cell)+"+"+move(cell, scratch)))
	sb.WriteString(move(scratch, cell))
	return sb.String()
}

// negateBool flips a 0/1 cell in place (0<->1), assuming cell already
// holds a boolean. Uses scratch (zero) as transient storage. Pointer
// arrives and leaves at cell.
func negateBool(cell, scratch int) string {
	var sb strings.Builder
	sb.WriteString(move(cell, scratch))
	sb.WriteString("+") // scratch := 1
	sb.WriteString(move(scratch, cell))
	sb.WriteString(ifOnce(cell, move(cell, scratch)+"-"+move(scratch, cell)))
	sb.WriteString(move(cell, scratch))
	sb.WriteString(addCell(scratch, cell, +1))
	sb.WriteString(move(scratch, cell))
	return sb.String()
}

// identifierCopyCode implements the canonical "copy K to C using C+1 as
// scratch" idiom: preserves the variable's value at cell k, writes a
// copy to c, and leaves the pointer at c+1 (the expression-contract
// advance).
func identifierCopyCode(c, k int) string {
	scratch := c + 1
	var sb strings.Builder
	sb.WriteString("[-]" + move(c, k))
	sb.WriteString("[-" + move(k, c) + "+" + move(c, scratch) + "+" + move(scratch, k) + "]")
	sb.WriteString(move(k, scratch))
	sb.WriteString("[-" + move(scratch, k) + "+" + move(k, scratch) + "]")
	return sb.String()
}

// ifZero is the complement of ifOnce: body runs at most once, exactly
// when testCell's original value was zero. testCell is consumed either
// way (boolized then negated), so callers that still need its value
// afterward must test a disposable copy.
func ifZero(testCell, scratch int, body string) string {
	var sb strings.Builder
	sb.WriteString(boolize(testCell, scratch))
	sb.WriteString(negateBool(testCell, scratch))
	sb.WriteString(ifOnce(testCell, body))
	return sb.String()
}

// andBool computes dst := x AND y for 0/1 inputs (both preserved), using
// ytest and scratch as transient workspace (zero on entry). dst must be
// zero on entry. Pointer arrives at x, leaves at x.
func andBool(x, y, dst, ytest, scratch int) string {
	var sb strings.Builder
	sb.WriteString(copyCell(x, dst, scratch))
	sb.WriteString(move(x, y))
	sb.WriteString(copyCell(y, ytest, scratch))
	sb.WriteString(move(y, ytest))
	sb.WriteString(ifZero(ytest, scratch, move(ytest, dst)+"[-]"+move(dst, ytest)))
	sb.WriteString(move(ytest, x))
	return sb.String()
}

// compareCombine determines whether a<b and a==b by decrementing both in
// lockstep until one empties: whichever empties first (or both, at once)
// settles the relation. Consumes a and b. Writes mutually exclusive 0/1
// flags to lt and eq. cont/copyA/copyB/ytest/scratch are transient
// workspace, zero on entry. Pointer arrives at a, leaves at a.
func compareCombine(a, b, lt, eq, cont, copyA, copyB, ytest, scratch int) string {
	nonZeroFlags := func() string {
		var r strings.Builder
		r.WriteString(copyCell(a, copyA, scratch))
		r.WriteString(move(a, copyA))
		r.WriteString(boolize(copyA, scratch))
		r.WriteString(move(copyA, b))
		r.WriteString(copyCell(b, copyB, scratch))
		r.WriteString(move(b, copyB))
		r.WriteString(boolize(copyB, scratch))
		r.WriteString(move(copyB, a))
		return r.String()
	}
	clearFlags := func() string {
		return move(a, copyA) + "[-]" + move(copyA, copyB) + "[-]" + move(copyB, a)
	}

	var sb strings.Builder
	sb.WriteString(nonZeroFlags())       // copyA=(a!=0), copyB=(b!=0)
	sb.WriteString(move(a, copyA))
	sb.WriteString(andBool(copyA, copyB, cont, ytest, scratch))
	sb.WriteString(move(copyA, a))
	sb.WriteString(clearFlags())

	sb.WriteString(move(a, cont))
	sb.WriteString("[")
	sb.WriteString(move(cont, a) + "-" + move(a, b) + "-" + move(b, a))
	sb.WriteString(nonZeroFlags())
	sb.WriteString(move(a, copyA))
	sb.WriteString(move(copyA, cont) + "[-]" + move(cont, copyA))
	sb.WriteString(andBool(copyA, copyB, cont, ytest, scratch))
	sb.WriteString(move(copyA, a))
	sb.WriteString(clearFlags())
	sb.WriteString(move(a, cont))
	sb.WriteString("]")

	// Loop stopped: a==0 or b==0 (or both).
	sb.WriteString(move(cont, a))
	sb.WriteString(nonZeroFlags()) // copyA=(a!=0), copyB=(b!=0) -- both now settled values
	sb.WriteString(move(a, copyA))
	sb.WriteString(negateBool(copyA, scratch)) // copyA := (a==0)
	sb.WriteString(move(copyA, copyB))
	sb.WriteString(negateBool(copyB, scratch)) // copyB := (b==0)
	sb.WriteString(move(copyB, copyA))
	sb.WriteString(andBool(copyA, copyB, eq, ytest, scratch))  // eq := a==0 && b==0
	sb.WriteString(move(copyA, copyB))
	sb.WriteString(negateBool(copyB, scratch)) // copyB := (b!=0), i.e. NOT(b==0)
	sb.WriteString(move(copyB, copyA))
	sb.WriteString(andBool(copyA, copyB, lt, ytest, scratch)) // lt := a==0 && b!=0
	sb.WriteString(move(copyA, a))
	sb.WriteString(clearFlags())
	return sb.String()
}

// mulCombine multiplies the value at l by the value at r (repeated
// addition, counting down r), using acc and scratch as transient cells.
// Assumes the pointer is at entry and r's original value is disposable;
// leaves the product at l and the pointer at l+1 (acc, scratch zeroed).
func mulCombine(entry, l, r, acc, scratch int) string {
	var sb strings.Builder
	sb.WriteString(move(entry, r))
	sb.WriteString("[-" + move(r, l) + copyCell(l, acc, scratch) + move(l, r) + "]")
	sb.WriteString(move(r, l))
	sb.WriteString("[-]")
	sb.WriteString(move(l, acc))
	sb.WriteString(addCell(acc, l, +1))
	sb.WriteString(move(acc, l+1))
	return sb.String()
}

// divScratch names the nine transient cells divmodCombine needs beyond
// l and r, laid out contiguously starting at a caller-chosen base.
type divScratch struct {
	rsaved, q, copyL, copyR, lt, eq, cont, copyA, copyB, ytest, scratch int
}

func newDivScratch(base int) divScratch {
	return divScratch{
		rsaved: base, q: base + 1, copyL: base + 2, copyR: base + 3,
		lt: base + 4, eq: base + 5, cont: base + 6, copyA: base + 7,
		copyB: base + 8, ytest: base + 9, scratch: base + 10,
	}
}

// divmodCombine computes l/r (quotient) or l%r (remainder) by repeated
// subtraction: each pass re-derives "l >= rsaved" via compareCombine on
// disposable copies, subtracts rsaved from l and increments q while it
// holds. Assumes the pointer is at entry on arrival. Leaves the
// requested result at l and the pointer at l+1.
func divmodCombine(entry, l, r int, s divScratch, wantRemainder bool) string {
	var sb strings.Builder
	sb.WriteString(move(entry, r))
	sb.WriteString(addCell(r, s.rsaved, +1))
	sb.WriteString(move(r, l))

	geFlag := func() string {
		// lt := (copy of l) < (copy of rsaved); ge = NOT lt.
		var b strings.Builder
		b.WriteString(copyCell(l, s.copyL, s.scratch))
		b.WriteString(move(l, s.rsaved))
		b.WriteString(copyCell(s.rsaved, s.copyR, s.scratch))
		b.WriteString(move(s.rsaved, s.copyL))
		b.WriteString(compareCombine(s.copyL, s.copyR, s.lt, s.eq, s.cont, s.copyA, s.copyB, s.ytest, s.scratch))
		b.WriteString("[-]" + move(s.copyL, s.copyR) + "[-]")
		b.WriteString(move(s.copyR, s.eq))
		b.WriteString("[-]")
		b.WriteString(move(s.eq, s.lt))
		b.WriteString(negateBool(s.lt, s.scratch))
		b.WriteString(move(s.lt, l))
		return b.String()
	}

	sb.WriteString(geFlag())
	sb.WriteString(move(l, s.lt))
	sb.WriteString("[")
	sb.WriteString("[-]" + move(s.lt, s.rsaved))
	sb.WriteString(copyCell(s.rsaved, s.copyR, s.scratch))
	sb.WriteString(move(s.rsaved, s.copyR))
	sb.WriteString(addCell(s.copyR, l, -1)) // l -= rsaved (via disposable copy)
	sb.WriteString(move(s.copyR, s.q))
	sb.WriteString("+")
	sb.WriteString(move(s.q, l))
	sb.WriteString(geFlag())
	sb.WriteString(move(l, s.lt))
	sb.WriteString("]")

	sb.WriteString(move(s.lt, l))
	if wantRemainder {
		sb.WriteString(move(l, s.q))
		sb.WriteString("[-]")
		sb.WriteString(move(s.q, l))
	} else {
		sb.WriteString("[-]")
		sb.WriteString(move(l, s.q))
		sb.WriteString(addCell(s.q, l, +1))
		sb.WriteString(move(s.q, l))
	}
	sb.WriteString(move(l, s.rsaved))
	sb.WriteString("[-]")
	sb.WriteString(move(s.rsaved, l+1))
	return sb.String()
}

// shiftScratch names the transient cells shiftCombine needs.
type shiftScratch struct {
	acc, scratch, two int
	div               divScratch
}

func newShiftScratch(base int) shiftScratch {
	return shiftScratch{acc: base, scratch: base + 1, two: base + 2, div: newDivScratch(base + 3)}
}

// shiftCombine computes l<<r or l>>r by counting down r, doubling (left)
// or halving-by-2 (right) l on each pass. Assumes the pointer is at
// entry. Leaves the result at l and the pointer at l+1.
func shiftCombine(entry, l, r int, s shiftScratch, left bool) string {
	var sb strings.Builder
	sb.WriteString(move(entry, r))
	var body string
	if left {
		body = move(r, l) + copyCell(l, s.acc, s.scratch) + move(l, s.acc) + addCell(s.acc, l, +1) + move(s.acc, r)
	} else {
		body = move(r, s.two) + literalCode(2) + move(s.two, l) +
			divmodCombine(l, l, s.two, s.div, false) + move(l+1, r)
	}
	sb.WriteString("[-" + body + "]")
	sb.WriteString(move(r, l))
	sb.WriteString(move(l, l+1))
	return sb.String()
}

// bitwiseScratch names the transient cells bitwiseCombine needs.
type bitwiseScratch struct {
	acc, bl, br, combined, two, scratch int
	div                                 divScratch
}

func newBitwiseScratch(base int) bitwiseScratch {
	return bitwiseScratch{
		acc: base, bl: base + 1, br: base + 2, combined: base + 3,
		two: base + 4, scratch: base + 5, div: newDivScratch(base + 6),
	}
}

// bitwiseCombine computes a bitwise AND/OR/XOR of l and r, unrolling the
// 8 bit positions a byte-wide cell can hold at compile time: each pass
// peels the low bit off l and r (remainder and quotient by 2), combines
// the two bits with combine, and folds the result into an accumulator at
// its place value (also a compile-time literal, so no runtime shift is
// needed to apply it). Assumes the pointer is at entry. Leaves the
// result at l and the pointer at l+1.
func bitwiseCombine(entry, l, r int, s bitwiseScratch, combineBit func(bl, br int) string) string {
	var sb strings.Builder
	sb.WriteString(move(entry, s.acc))
	sb.WriteString("[-]")

	place := 1
	for bit := 0; bit < 8; bit++ {
		sb.WriteString(move(s.acc, s.two))
		sb.WriteString(literalCode(2))
		sb.WriteString(move(s.two, l))
		sb.WriteString(copyCell(l, s.bl, s.scratch))
		sb.WriteString(move(l, s.bl))
		sb.WriteString(divmodCombine(s.bl, s.bl, s.two, s.div, true)) // s.bl := l mod 2
		sb.WriteString(move(s.bl+1, s.two))
		sb.WriteString(literalCode(2))
		sb.WriteString(move(s.two, l))
		sb.WriteString(divmodCombine(l, l, s.two, s.div, false)) // l := l / 2

		sb.WriteString(move(l+1, s.two))
		sb.WriteString(literalCode(2))
		sb.WriteString(move(s.two, r))
		sb.WriteString(copyCell(r, s.br, s.scratch))
		sb.WriteString(move(r, s.br))
		sb.WriteString(divmodCombine(s.br, s.br, s.two, s.div, true)) // s.br := r mod 2
		sb.WriteString(move(s.br+1, s.two))
		sb.WriteString(literalCode(2))
		sb.WriteString(move(s.two, r))
		sb.WriteString(divmodCombine(r, r, s.two, s.div, false)) // r := r / 2

		sb.WriteString(move(r+1, s.combined))
		sb.WriteString("[-]")
		sb.WriteString(move(s.combined, s.bl) + combineBit(s.bl, s.br))
		sb.WriteString(move(s.bl, s.combined))
		sb.WriteString(ifOnce(s.combined, move(s.combined, s.acc)+strings.Repeat("+", place)+move(s.acc, s.combined)))
		sb.WriteString(move(s.combined, s.acc))
		place *= 2
	}

	sb.WriteString(move(s.acc, l))
	sb.WriteString("[-]")
	sb.WriteString(move(l, s.acc))
	sb.WriteString(addCell(s.acc, l, +1))
	sb.WriteString(move(l, l+1))
	return sb.String()
}

// andBit/orBit/xorBit combine two disposable 0/1 cells into dst (which
// must be zero), consuming bl and br, assuming the pointer arrives and
// leaves at bl.
func andBit(bl, br, dst, scratch int) string {
	return andBool(bl, br, dst, scratch, scratch+1) + "[-]" + move(bl, br) + "[-]" + move(br, bl)
}

func orBit(bl, br, dst, scratch int) string {
	var sb strings.Builder
	sb.WriteString(addCell(bl, dst, +1))
	sb.WriteString(move(bl, br))
	sb.WriteString(addCell(br, dst, +1))
	sb.WriteString(move(br, dst))
	sb.WriteString(boolize(dst, scratch))
	sb.WriteString(move(dst, bl))
	return sb.String()
}

// xorBit computes (bl+br) mod 2, which is exactly the XOR of two 0/1
// inputs, reusing the same divmod machinery as the bit-peeling loop.
func xorBit(bl, br, dst, two int, div divScratch) string {
	var sb strings.Builder
	sb.WriteString(addCell(bl, dst, +1))
	sb.WriteString(move(bl, br))
	sb.WriteString(addCell(br, dst, +1))
	sb.WriteString(move(br, two))
	sb.WriteString(literalCode(2))
	sb.WriteString(move(two, dst))
	sb.WriteString(divmodCombine(dst, dst, two, div, true))
	sb.WriteString(move(dst+1, bl))
	return sb.String()
}

// moveToReturnCell drains the value at cur into returnCell, then returns
// the pointer to cur -- the round trip compile_return relies on so that a
// return statement still satisfies the general statement pointer
// invariant.
func moveToReturnCell(cur, returnCell int) string {
	var sb strings.Builder
	sb.WriteString(addCell(cur, returnCell, +1))
	sb.WriteString(move(cur, returnCell))
	sb.WriteString(move(returnCell, cur))
	return sb.String()
}
