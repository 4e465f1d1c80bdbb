package optimize_test

import (
	"testing"

	"github.com/nwillc/byteflow/optimize"
	"github.com/stretchr/testify/require"
)

func Test_Peephole(t *testing.T) {
	for _, tc := range []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"odd run leaves one", "+-+-+", "+"},
		{"nested cancellation", "+-+-", ""},
		{"pointer motion", ">>><<<", ""},
		{"loops pass through", "[->+<]", "[->+<]"},
		{"io passes through", "+-.,", ".,"},
		{"unbalanced run survives", "+++", "+++"},
		{"mixed independent pairs", "+-><", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, optimize.Peephole(tc.in))
		})
	}
}

func Test_Stats(t *testing.T) {
	require.Equal(t, 4, optimize.Stats("+-+-+"))
	require.Equal(t, 0, optimize.Stats("[->+<]"))
}
