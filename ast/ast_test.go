package ast_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nwillc/byteflow/ast"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/tape"
	"github.com/nwillc/byteflow/token"
	"github.com/stretchr/testify/require"
)

// run executes code on a fresh machine and returns it for cell inspection.
func run(t *testing.T, code string) *tape.Machine {
	t.Helper()
	m := tape.New(nil, nil)
	require.NoError(t, m.Run(context.Background(), code))
	return m
}

func Test_Literal_Emit(t *testing.T) {
	n := &ast.Literal{Value: 5}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(5), m.Cells[0])
	require.Equal(t, 1, m.Ptr)
}

func Test_Literal_Emit_wraps(t *testing.T) {
	n := &ast.Literal{Value: 256 + 7}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(7), m.Cells[0])
}

func Test_Identifier_Emit(t *testing.T) {
	v := &symtab.Variable{Name: "x", Cell: 50}
	n := &ast.Identifier{Var: v}
	m := tape.New(nil, nil)
	m.Cells[50] = 9
	require.NoError(t, m.Run(context.Background(), n.Emit(0)))
	require.Equal(t, byte(9), m.Cells[0])
	require.Equal(t, byte(9), m.Cells[50], "reading a variable must not disturb it")
}

func Test_Assign_Emit(t *testing.T) {
	v := &symtab.Variable{Name: "x", Cell: 50}
	n := &ast.Assign{Var: v, Value: &ast.Literal{Value: 9}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(9), m.Cells[0], "assignment evaluates to the written value")
	require.Equal(t, byte(9), m.Cells[50])
}

func Test_Binary_Add(t *testing.T) {
	n := &ast.Binary{Op: token.BinOp, Text: "+", Left: &ast.Literal{Value: 3}, Right: &ast.Literal{Value: 4}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(7), m.Cells[0])
}

func Test_Binary_Sub(t *testing.T) {
	n := &ast.Binary{Op: token.BinOp, Text: "-", Left: &ast.Literal{Value: 10}, Right: &ast.Literal{Value: 4}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(6), m.Cells[0])
}

func Test_Binary_Mul(t *testing.T) {
	n := &ast.Binary{Op: token.BinOp, Text: "*", Left: &ast.Literal{Value: 6}, Right: &ast.Literal{Value: 7}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(42), m.Cells[0])
}

func Test_Binary_Div(t *testing.T) {
	n := &ast.Binary{Op: token.BinOp, Text: "/", Left: &ast.Literal{Value: 17}, Right: &ast.Literal{Value: 5}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(3), m.Cells[0])
}

func Test_Binary_Mod(t *testing.T) {
	n := &ast.Binary{Op: token.BinOp, Text: "%", Left: &ast.Literal{Value: 17}, Right: &ast.Literal{Value: 5}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(2), m.Cells[0])
}

func Test_Binary_Relational(t *testing.T) {
	for _, tc := range []struct {
		text       string
		left, right int
		want       byte
	}{
		{"<", 3, 5, 1}, {"<", 5, 3, 0},
		{"==", 4, 4, 1}, {"==", 4, 5, 0},
		{"<=", 4, 4, 1}, {"<=", 5, 4, 0},
		{">", 5, 4, 1}, {">", 4, 5, 0},
		{">=", 4, 4, 1}, {">=", 3, 4, 0},
		{"!=", 4, 5, 1}, {"!=", 4, 4, 0},
	} {
		n := &ast.Binary{Op: token.RelOp, Text: tc.text, Left: &ast.Literal{Value: tc.left}, Right: &ast.Literal{Value: tc.right}}
		m := run(t, n.Emit(0))
		require.Equal(t, tc.want, m.Cells[0], "%d %s %d", tc.left, tc.text, tc.right)
	}
}

func Test_Binary_Bitwise(t *testing.T) {
	for _, tc := range []struct {
		op         token.Kind
		text       string
		left, right int
		want       byte
	}{
		{token.BitwiseAnd, "&", 0b1100, 0b1010, 0b1000},
		{token.BitwiseOr, "|", 0b1100, 0b1010, 0b1110},
		{token.BitwiseXor, "^", 0b1100, 0b1010, 0b0110},
		{token.BitwiseShift, "<<", 1, 3, 8},
		{token.BitwiseShift, ">>", 8, 3, 1},
		{token.And, "&&", 1, 1, 1},
		{token.And, "&&", 1, 0, 0},
		{token.Or, "||", 0, 1, 1},
		{token.Or, "||", 0, 0, 0},
	} {
		n := &ast.Binary{Op: tc.op, Text: tc.text, Left: &ast.Literal{Value: tc.left}, Right: &ast.Literal{Value: tc.right}}
		m := run(t, n.Emit(0))
		require.Equal(t, tc.want, m.Cells[0], "%v %s %v", tc.left, tc.text, tc.right)
	}
}

func Test_UnaryPrefix_Not(t *testing.T) {
	n := &ast.UnaryPrefix{Op: token.Not, Operand: &ast.Literal{Value: 0}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(1), m.Cells[0])

	n = &ast.UnaryPrefix{Op: token.Not, Operand: &ast.Literal{Value: 5}}
	m = run(t, n.Emit(0))
	require.Equal(t, byte(0), m.Cells[0])
}

func Test_UnaryPrefix_BitwiseNot(t *testing.T) {
	n := &ast.UnaryPrefix{Op: token.BitwiseNot, Operand: &ast.Literal{Value: 0}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(255), m.Cells[0])
}

func Test_UnaryPrefix_Negate(t *testing.T) {
	n := &ast.UnaryPrefix{Op: token.BinOp, Text: "-", Operand: &ast.Literal{Value: 5}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(256-5), m.Cells[0])
}

func Test_UnaryPrefix_Increment(t *testing.T) {
	v := &symtab.Variable{Name: "x", Cell: 60}
	n := &ast.UnaryPrefix{Op: token.Increment, Var: v}
	m := tape.New(nil, nil)
	m.Cells[60] = 5
	require.NoError(t, m.Run(context.Background(), n.Emit(0)))
	require.Equal(t, byte(6), m.Cells[0], "prefix ++ evaluates to the post-update value")
	require.Equal(t, byte(6), m.Cells[60])
}

func Test_UnaryPostfix_Increment(t *testing.T) {
	v := &symtab.Variable{Name: "x", Cell: 61}
	n := &ast.UnaryPostfix{Inc: true, Var: v}
	m := tape.New(nil, nil)
	m.Cells[61] = 5
	require.NoError(t, m.Run(context.Background(), n.Emit(0)))
	require.Equal(t, byte(5), m.Cells[0], "postfix ++ evaluates to the pre-update value")
	require.Equal(t, byte(6), m.Cells[61])
}

func Test_Ternary_Emit(t *testing.T) {
	n := &ast.Ternary{Cond: &ast.Literal{Value: 1}, Then: &ast.Literal{Value: 10}, Else: &ast.Literal{Value: 20}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(10), m.Cells[0])

	n = &ast.Ternary{Cond: &ast.Literal{Value: 0}, Then: &ast.Literal{Value: 10}, Else: &ast.Literal{Value: 20}}
	m = run(t, n.Emit(0))
	require.Equal(t, byte(20), m.Cells[0])
}

func Test_ArrayGet_Emit(t *testing.T) {
	v := &symtab.Variable{Name: "a", Cell: 100, Dims: []int{3}}
	m := tape.New(nil, nil)
	m.Cells[100], m.Cells[101], m.Cells[102] = 1, 2, 3
	n := &ast.ArrayGet{Var: v, Index: &ast.Literal{Value: 1}}
	require.NoError(t, m.Run(context.Background(), n.Emit(0)))
	require.Equal(t, byte(2), m.Cells[0])
}

func Test_ArraySet_Emit(t *testing.T) {
	v := &symtab.Variable{Name: "a", Cell: 110, Dims: []int{3}}
	m := tape.New(nil, nil)
	n := &ast.ArraySet{Var: v, Index: &ast.Literal{Value: 1}, Value: &ast.Literal{Value: 99}}
	require.NoError(t, m.Run(context.Background(), n.Emit(0)))
	require.Equal(t, byte(99), m.Cells[0], "ArraySet evaluates to the written value")
	require.Equal(t, byte(99), m.Cells[111])
}

func Test_ArrayAssign_Emit(t *testing.T) {
	v := &symtab.Variable{Name: "a", Cell: 120, Dims: []int{3}}
	n := &ast.ArrayAssign{Var: v, Values: []ast.Node{
		&ast.Literal{Value: 1}, &ast.Literal{Value: 2}, &ast.Literal{Value: 3},
	}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(3), m.Cells[0], "evaluates to the last value assigned")
	require.Equal(t, []byte{1, 2, 3}, m.Cells[120:123])
}

func Test_ArrayAssign_Emit_zeroPadsUnsuppliedSlots(t *testing.T) {
	v := &symtab.Variable{Name: "a", Cell: 120, Dims: []int{4}}
	n := &ast.ArrayAssign{Var: v, Values: []ast.Node{&ast.Literal{Value: 7}}}

	var out bytes.Buffer
	m := tape.New(nil, &out)
	m.Cells[121], m.Cells[122], m.Cells[123] = 9, 9, 9 // stale data from a prior iteration
	require.NoError(t, m.Run(context.Background(), n.Emit(0)))
	require.Equal(t, []byte{7, 0, 0, 0}, m.Cells[120:124])
}

func Test_ArrayAssign_Emit_empty(t *testing.T) {
	v := &symtab.Variable{Name: "a", Cell: 120, Dims: []int{2}}
	n := &ast.ArrayAssign{Var: v}

	var out bytes.Buffer
	m := tape.New(nil, &out)
	m.Cells[120], m.Cells[121] = 9, 9
	require.NoError(t, m.Run(context.Background(), n.Emit(0)))
	require.Equal(t, byte(0), m.Cells[0], "an empty initializer evaluates to 0")
	require.Equal(t, []byte{0, 0}, m.Cells[120:122])
}

// fakeCallee is a minimal ast.Callee for exercising ast.Call in
// isolation, without depending on the compiler package (which would
// import ast and create a cycle).
type fakeCallee struct {
	params int
	body   string
}

func (f fakeCallee) Name() string       { return "fake" }
func (f fakeCallee) ParamCount() int     { return f.params }
func (f fakeCallee) EmitBody(int) string { return f.body }

func Test_Call_Emit_noArgs(t *testing.T) {
	n := &ast.Call{Callee: fakeCallee{body: strings.Repeat("+", 42)}}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(42), m.Cells[0])
	require.Equal(t, 1, m.Ptr)
}

func Test_Call_Emit_oneArg(t *testing.T) {
	n := &ast.Call{
		Callee: fakeCallee{params: 1, body: ">[-<+>]<"},
		Args:   []ast.Node{&ast.Literal{Value: 17}},
	}
	m := run(t, n.Emit(0))
	require.Equal(t, byte(17), m.Cells[0], "the callee copied its single argument back into the return cell")
}
