package lex_test

import (
	"testing"

	"github.com/nwillc/byteflow/lex"
	"github.com/nwillc/byteflow/token"
	"github.com/stretchr/testify/require"
)

func Test_Analyze_basic(t *testing.T) {
	toks, err := lex.Analyze(`int x = 5 + y;`)
	require.NoError(t, err)
	kinds := kindsOf(toks)
	require.Equal(t, []token.Kind{
		token.Int, token.ID, token.Assign, token.Num, token.BinOp, token.ID, token.Semicolon,
	}, kinds)
}

func Test_Analyze_stringAndChar(t *testing.T) {
	toks, err := lex.Analyze(`"Hi\n" 'a' '\''`)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	require.Equal(t, token.String, toks[0].Type)
	require.Equal(t, "Hi\n", toks[0].Data)
	require.Equal(t, token.Char, toks[1].Type)
	require.Equal(t, "a", toks[1].Data)
	require.Equal(t, token.Char, toks[2].Type)
	require.Equal(t, "'", toks[2].Data)
}

func Test_Analyze_comments(t *testing.T) {
	toks, err := lex.Analyze("int x; // trailing\n/* block\ncomment */ int y;")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.Int, token.ID, token.Semicolon, token.Int, token.ID, token.Semicolon,
	}, kindsOf(toks))
}

func Test_Analyze_operators(t *testing.T) {
	toks, err := lex.Analyze(`<<= >>= << >> && || ++ -- == != <= >= += -= *= /= %= &= |= ^=`)
	require.NoError(t, err)
	var data []string
	for _, tk := range toks {
		data = append(data, tk.Data)
	}
	require.Equal(t, []string{
		"<<=", ">>=", "<<", ">>", "&&", "||", "++", "--", "==", "!=", "<=", ">=",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	}, data)
}

func Test_Analyze_ternaryAndSwitch(t *testing.T) {
	toks, err := lex.Analyze(`switch(x){case 1: break; default: ;} a ? b : c`)
	require.NoError(t, err)
	require.Equal(t, token.Switch, toks[0].Type)
	require.Equal(t, token.Ternary, toks[len(toks)-4].Type)
}

func Test_Analyze_unterminatedString(t *testing.T) {
	_, err := lex.Analyze(`"unterminated`)
	require.Error(t, err)
	var lexErr *lex.Error
	require.ErrorAs(t, err, &lexErr)
}

func Test_Analyze_unterminatedBlockComment(t *testing.T) {
	_, err := lex.Analyze("/* never closes")
	require.Error(t, err)
}

func Test_Analyze_unexpectedCharacter(t *testing.T) {
	_, err := lex.Analyze("int x = `;")
	require.Error(t, err)
}

func kindsOf(toks []token.Token) []token.Kind {
	kinds := make([]token.Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Type
	}
	return kinds
}
