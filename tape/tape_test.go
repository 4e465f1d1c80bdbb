package tape_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nwillc/byteflow/tape"
	"github.com/stretchr/testify/require"
)

func Test_Machine_helloWorld(t *testing.T) {
	var out bytes.Buffer
	m := tape.New(nil, &out)
	// writes 'A' (65) then halts after printing it
	err := m.Run(context.Background(), strings.Repeat("+", 65)+".")
	require.NoError(t, err)
	require.Equal(t, "A", out.String())
}

func Test_Machine_loop(t *testing.T) {
	var out bytes.Buffer
	m := tape.New(nil, &out)
	// cell0 = 3, copy into cell1 via a loop, print cell1's value as raw byte count via '+' unrolled
	err := m.Run(context.Background(), "+++>[-]<[->+<]>"+strings.Repeat("+", 0)+".")
	require.NoError(t, err)
	require.Equal(t, []byte{3}, out.Bytes())
}

func Test_Machine_pointerUnderflow(t *testing.T) {
	m := tape.New(nil, nil)
	err := m.Run(context.Background(), "<")
	require.Error(t, err)
}

func Test_Machine_pointerOverflow(t *testing.T) {
	m := tape.New(nil, nil)
	err := m.Run(context.Background(), strings.Repeat(">", tape.Size))
	require.Error(t, err)
}

func Test_Machine_unmatchedBracket(t *testing.T) {
	m := tape.New(nil, nil)
	err := m.Run(context.Background(), "[")
	require.Error(t, err)
}

func Test_Machine_readNoInput(t *testing.T) {
	m := tape.New(nil, nil)
	err := m.Run(context.Background(), ",")
	require.Error(t, err)
}

func Test_Machine_readEOFZeroesCell(t *testing.T) {
	m := tape.New(strings.NewReader(""), nil)
	err := m.Run(context.Background(), "+++,.")
	require.NoError(t, err)
	require.Equal(t, byte(0), m.Cells[0])
}

func Test_Machine_readFlushesBeforeBlocking(t *testing.T) {
	var out bytes.Buffer
	m := tape.New(strings.NewReader("x"), &out)
	err := m.Run(context.Background(), "+.,")
	require.NoError(t, err)
	require.Equal(t, []byte{1}, out.Bytes())
}

func Test_Machine_contextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := tape.New(nil, nil)
	err := m.Run(ctx, "+")
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}

func Test_Machine_Steps(t *testing.T) {
	m := tape.New(nil, nil)
	require.NoError(t, m.Run(context.Background(), "+++"))
	require.Equal(t, 3, m.Steps())
	require.NoError(t, m.Run(context.Background(), "++"))
	require.Equal(t, 5, m.Steps(), "Steps accumulates across Run calls")
}

func Test_Machine_cellWraps(t *testing.T) {
	var out bytes.Buffer
	m := tape.New(nil, &out)
	err := m.Run(context.Background(), strings.Repeat("-", 1)+".")
	require.NoError(t, err)
	require.Equal(t, byte(255), out.Bytes()[0])
}
