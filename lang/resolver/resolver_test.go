package resolver_test

import (
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/parser"
	"github.com/riicchhaarrd/libgsc/lang/resolver"
	"github.com/stretchr/testify/require"
)

func resolveFirst(t *testing.T, src string) *resolver.Function {
	t.Helper()
	ch, err := parser.ParseFile("test.gsc", []byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, ch.Funcs)
	f, err := resolver.Resolve(ch.Funcs[0])
	require.NoError(t, err)
	return f
}

func TestResolveParamsAndLocals(t *testing.T) {
	f := resolveFirst(t, `f(a, b) { c = a + b; return c; }`)
	require.Equal(t, 2, f.ParamCount)

	a, ok := f.Lookup("a")
	require.True(t, ok)
	require.Equal(t, resolver.Local, a.Scope)
	require.Equal(t, 0, a.Index)

	b, _ := f.Lookup("b")
	require.Equal(t, 1, b.Index)

	c, ok := f.Lookup("c")
	require.True(t, ok)
	require.Equal(t, resolver.Local, c.Scope)
	require.Equal(t, 2, c.Index)
	require.Equal(t, 3, f.LocalCount)
}

func TestResolveGlobalRootsAndSelf(t *testing.T) {
	f := resolveFirst(t, `f() { self endon("stop"); level.x = 1; anim.y = 2; game.z = 3; }`)
	for _, name := range []string{"self", "level", "anim", "game"} {
		b, ok := f.Lookup(name)
		require.True(t, ok, name)
		require.Equal(t, resolver.Universal, b.Scope)
	}
	require.Equal(t, 0, f.LocalCount)
}

func TestResolveCallCalleeIsNotALocal(t *testing.T) {
	f := resolveFirst(t, `f() { g(); }`)
	_, ok := f.Lookup("g")
	require.False(t, ok)
	require.Equal(t, 0, f.LocalCount)
}
