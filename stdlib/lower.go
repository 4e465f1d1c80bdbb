// Package stdlib ships native library routines -- functions that
// describe and emit their own body directly in Go rather than being
// parsed from source -- callable from compiled programs exactly like
// a user-defined function; a call site cannot tell print_num apart
// from a function the program itself defined. Register these with
// compiler.WithLibrary.
package stdlib

import "github.com/nwillc/byteflow/ast"

// move is this package's own copy of the directional pointer-movement
// primitive ast and compiler each keep at their own layer -- stdlib's
// routines are small enough that importing either package's unexported
// scaffolding isn't worth a third shared dependency.
func move(from, to int) string { return ast.Move(from, to) }

// ifOnceStmt runs body at most once, exactly when cell is nonzero,
// using the same guaranteed-single-iteration idiom the rest of this
// compiler relies on throughout.
func ifOnceStmt(cell int, body string) string {
	return "[" + "[-]" + body + "]"
}
