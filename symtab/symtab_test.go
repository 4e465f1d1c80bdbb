package symtab_test

import (
	"testing"

	"github.com/nwillc/byteflow/symtab"
	"github.com/stretchr/testify/require"
)

func Test_Size(t *testing.T) {
	require.Equal(t, 1, symtab.Size(nil))
	require.Equal(t, 6, symtab.Size([]int{2, 3}))
}

func Test_Variable_IsArray(t *testing.T) {
	require.False(t, symtab.Variable{Dims: nil}.IsArray())
	require.False(t, symtab.Variable{Dims: []int{1}}.IsArray())
	require.True(t, symtab.Variable{Dims: []int{2, 3}}.IsArray())
}

func Test_Env_InsertAndResolve(t *testing.T) {
	env := symtab.NewEnv()
	scope := env.Global()

	v, err := scope.Insert("x", nil)
	require.NoError(t, err)
	require.Equal(t, 0, v.Cell)
	require.Equal(t, 1, scope.Next())

	a, err := scope.Insert("a", []int{2, 3})
	require.NoError(t, err)
	require.Equal(t, 1, a.Cell)
	require.Equal(t, 7, scope.Next())

	got, err := env.Resolve("x")
	require.NoError(t, err)
	require.Same(t, v, got)

	_, err = env.Resolve("nope")
	require.Error(t, err)
}

func Test_Scope_Insert_duplicate(t *testing.T) {
	scope := symtab.NewEnv().Global()
	_, err := scope.Insert("x", nil)
	require.NoError(t, err)
	_, err = scope.Insert("x", nil)
	require.Error(t, err)
}

func Test_Scope_ReserveRelease(t *testing.T) {
	scope := symtab.NewEnv().Global()
	scope.SetNext(5)
	scope.Reserve(3)
	require.Equal(t, 8, scope.Next())
	scope.Release(3)
	require.Equal(t, 5, scope.Next())
}

func Test_Env_EnterExitScope(t *testing.T) {
	env := symtab.NewEnv()
	env.Global().SetNext(4)
	require.Equal(t, 1, env.Depth())

	inner := env.EnterScope()
	require.Equal(t, 4, inner.Next())
	require.Equal(t, 2, env.Depth())
	require.Same(t, inner, env.Innermost())

	_, err := inner.Insert("y", nil)
	require.NoError(t, err)

	_, err = env.Global().Insert("y", nil)
	require.NoError(t, err, "inner and outer scopes have independent namespaces")

	popped := env.ExitScope()
	require.Same(t, inner, popped)
	require.Equal(t, 1, env.Depth())
}

func Test_Env_Resolve_innerShadowsOuter(t *testing.T) {
	env := symtab.NewEnv()
	outer, err := env.Global().Insert("x", nil)
	require.NoError(t, err)

	inner := env.EnterScope()
	innerVar, err := inner.Insert("x", nil)
	require.NoError(t, err)

	got, err := env.Resolve("x")
	require.NoError(t, err)
	require.Same(t, innerVar, got)
	require.NotSame(t, outer, got)
}

func Test_NewFunctionEnv_seesGlobalsNotCallerLocals(t *testing.T) {
	global := symtab.NewEnv().Global()
	_, err := global.Insert("g", nil)
	require.NoError(t, err)

	fnEnv := symtab.NewFunctionEnv(global, 10)
	require.Equal(t, 2, fnEnv.Depth())
	require.Equal(t, 10, fnEnv.Innermost().Next())

	_, err = fnEnv.Resolve("g")
	require.NoError(t, err, "function frame must still see globals")
}

func Test_Scope_Size(t *testing.T) {
	scope := symtab.NewEnv().Global()
	_, err := scope.Insert("x", nil)
	require.NoError(t, err)
	_, err = scope.Insert("a", []int{2, 2})
	require.NoError(t, err)
	require.Equal(t, 5, scope.Size())
}
