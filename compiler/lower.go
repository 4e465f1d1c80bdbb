package compiler

import (
	"strings"

	"github.com/nwillc/byteflow/ast"
)

// move is the directional pointer movement compiler uses for its own
// statement-level scaffolding (if/while/for/switch), built on the same
// primitive ast exposes for this purpose via ast.Move.
func move(from, to int) string { return ast.Move(from, to) }

// ifOnceStmt wraps body in a loop guaranteed to run body at most once:
// the loop forces cell to zero as its first act, so any remaining
// magnitude cannot trigger a second pass (the same guaranteed-single-
// iteration shape ast.go's expression lowering uses, reused here for
// statement dispatch).
func ifOnceStmt(cell int, body string) string {
	return "[" + "[-]" + body + "]"
}

func addCellStmt(src, dst, sign int) string {
	step := "+"
	if sign < 0 {
		step = "-"
	}
	return "[-" + move(src, dst) + step + move(dst, src) + "]"
}

// copyCellStmt adds the value at src into dst while preserving src,
// using scratch (assumed zero) as transient storage. Pointer arrives
// and leaves at src.
func copyCellStmt(src, dst, scratch int) string {
	var sb strings.Builder
	sb.WriteString("[-" + move(src, dst) + "+" + move(dst, scratch) + "+" + move(scratch, src) + "]")
	sb.WriteString(move(src, scratch))
	sb.WriteString("[-" + move(scratch, src) + "+" + move(src, scratch) + "]")
	sb.WriteString(move(scratch, src))
	return sb.String()
}

// boolizeStmt collapses whatever is at cell to exactly 0 or 1. Pointer
// arrives and leaves at cell.
func boolizeStmt(cell, scratch int) string {
	var sb strings.Builder
	sb.WriteString(addCellStmt(cell, scratch, +1))
	sb.WriteString(move(cell, scratch))
	sb.WriteString(ifOnceStmt(scratch, move(scratch, cell)+"+"+move(cell, scratch)))
	sb.WriteString(move(scratch, cell))
	return sb.String()
}

// negateBoolStmt flips a 0/1 cell in place. Pointer arrives and leaves
// at cell, the same convention ast.negateBool uses.
func negateBoolStmt(cell, scratch int) string {
	var sb strings.Builder
	sb.WriteString(move(cell, scratch))
	sb.WriteString("+")
	sb.WriteString(move(scratch, cell))
	sb.WriteString(ifOnceStmt(cell, move(cell, scratch)+"-"+move(scratch, cell)))
	sb.WriteString(move(cell, scratch))
	sb.WriteString(addCellStmt(scratch, cell, +1))
	sb.WriteString(move(scratch, cell))
	return sb.String()
}

// ifZeroStmt runs body at most once, exactly when testCell's original
// value was zero. testCell is consumed either way.
func ifZeroStmt(testCell, scratch int, body string) string {
	var sb strings.Builder
	sb.WriteString(boolizeStmt(testCell, scratch))
	sb.WriteString(negateBoolStmt(testCell, scratch))
	sb.WriteString(ifOnceStmt(testCell, body))
	return sb.String()
}

// andBoolStmt computes dst := x AND y for 0/1 inputs (both preserved),
// using ytest and scratch as transient workspace (zero on entry). dst
// must be zero on entry. Pointer arrives at x, leaves at x.
func andBoolStmt(x, y, dst, ytest, scratch int) string {
	var sb strings.Builder
	sb.WriteString(copyCellStmt(x, dst, scratch))
	sb.WriteString(move(x, y))
	sb.WriteString(copyCellStmt(y, ytest, scratch))
	sb.WriteString(move(y, ytest))
	sb.WriteString(ifZeroStmt(ytest, scratch, move(ytest, dst)+"[-]"+move(dst, ytest)))
	sb.WriteString(move(ytest, x))
	return sb.String()
}
