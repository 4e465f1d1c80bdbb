package stdlib_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/nwillc/byteflow/stdlib"
	"github.com/nwillc/byteflow/tape"
	"github.com/stretchr/testify/require"
)

func Test_PrintChar(t *testing.T) {
	require.Equal(t, "print_char", stdlib.PrintChar.Name())
	require.Equal(t, 1, stdlib.PrintChar.ParamCount())

	var out bytes.Buffer
	m := tape.New(nil, &out)
	const baseCell = 0
	m.Cells[baseCell+1] = 'A'
	require.NoError(t, m.Run(context.Background(), stdlib.PrintChar.EmitBody(baseCell)))
	require.Equal(t, "A", out.String())
	require.Equal(t, baseCell, m.Ptr, "EmitBody must leave the pointer back at baseCell")
}

func Test_PrintNum(t *testing.T) {
	require.Equal(t, "print_num", stdlib.PrintNum.Name())
	require.Equal(t, 1, stdlib.PrintNum.ParamCount())

	for _, tc := range []struct {
		n    byte
		want string
	}{
		{0, "0"},
		{5, "5"},
		{9, "9"},
		{10, "10"},
		{42, "42"},
		{100, "100"},
		{205, "205"},
		{255, "255"},
	} {
		var out bytes.Buffer
		m := tape.New(nil, &out)
		const baseCell = 0
		m.Cells[baseCell+1] = tc.n
		require.NoError(t, m.Run(context.Background(), stdlib.PrintNum.EmitBody(baseCell)))
		require.Equal(t, tc.want, out.String(), "print_num(%d)", tc.n)
	}
}

func Test_PrintNum_Instantiate(t *testing.T) {
	require.Equal(t, stdlib.PrintNum, stdlib.PrintNum.Instantiate())
	require.Equal(t, stdlib.PrintChar, stdlib.PrintChar.Instantiate())
}
