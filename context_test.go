package gsc_test

import (
	"testing"

	gsc "github.com/riicchhaarrd/libgsc"
	"github.com/riicchhaarrd/libgsc/lang/machine"
	"github.com/stretchr/testify/require"
)

func mustRun(t *testing.T, ctx *gsc.Context, file, fn string) *machine.Thread {
	t.Helper()
	th, err := ctx.Call(file, fn)
	require.NoError(t, err)
	for ctx.Update(0) {
	}
	return th
}

func TestCompileSourceAndCallSetsGlobalField(t *testing.T) {
	ctx := gsc.New(gsc.DefaultOptions())
	err := ctx.CompileSource("test.gsc", []byte(`main() { a = 1; b = 2; level.x = a + b; }`))
	require.NoError(t, err)
	require.NoError(t, ctx.Link())

	th := mustRun(t, ctx, "test.gsc", "main")
	require.Equal(t, machine.Done, th.State)

	v, err := ctx.GetField(ctx.Level(), "x")
	require.NoError(t, err)
	require.Equal(t, machine.IntKind, v.Kind)
	require.Equal(t, int64(3), v.Int)
}

func TestCompileSourceReportsDiagnosticsWithoutAborting(t *testing.T) {
	ctx := gsc.New(gsc.DefaultOptions())
	err := ctx.CompileSource("bad.gsc", []byte(`main() { a = ; }`))
	require.Error(t, err)
	require.NotEmpty(t, ctx.Diagnostics())
}

func TestGetFieldSuggestsCloseFieldName(t *testing.T) {
	ctx := gsc.New(gsc.DefaultOptions())
	o := ctx.NewObject("test")
	require.NoError(t, ctx.SetField(o, "health", gsc.IntValue(100)))

	_, err := ctx.GetField(o, "helth")
	require.Error(t, err)
	require.Contains(t, err.Error(), `did you mean "health"`)
}

func TestGetFieldNoSuggestionWhenNothingClose(t *testing.T) {
	ctx := gsc.New(gsc.DefaultOptions())
	o := ctx.NewObject("test")
	require.NoError(t, ctx.SetField(o, "health", gsc.IntValue(100)))

	_, err := ctx.GetField(o, "zzz")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "did you mean")
}

func TestSetGetGlobal(t *testing.T) {
	ctx := gsc.New(gsc.DefaultOptions())
	ctx.SetGlobal("difficulty", gsc.IntValue(3))

	v, ok := ctx.GetGlobal("difficulty")
	require.True(t, ok)
	require.Equal(t, int64(3), v.Int)

	_, ok = ctx.GetGlobal("missing")
	require.False(t, ok)
}

func TestObjectHandleRoundTrip(t *testing.T) {
	ctx := gsc.New(gsc.DefaultOptions())
	o := ctx.NewObject("entity")

	type hostEntity struct{ Name string }
	want := &hostEntity{Name: "soldier"}
	ctx.SetHandle(o, want)

	got, ok := ctx.GetHandle(o)
	require.True(t, ok)
	require.Same(t, want, got.(*hostEntity))
}
