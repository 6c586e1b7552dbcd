package gsc_test

import (
	"testing"

	gsc "github.com/riicchhaarrd/libgsc"
	"github.com/stretchr/testify/require"
)

// TestFieldAssignmentSurvivesNumericIndexAssignment is the end-to-end
// regression case for the o.foo/o[i] key-collision bug: a named field and a
// numeric array-style index on the same object must never be able to
// overwrite one another, regardless of which interned string id the field
// name happens to land on (spec.md §4.3 "a[i] assignment on an object").
func TestFieldAssignmentSurvivesNumericIndexAssignment(t *testing.T) {
	ctx := gsc.New(gsc.DefaultOptions())
	require.NoError(t, ctx.CompileSource("test.gsc", []byte(`
set(o) {
	o.foo = 1;
	o[0] = 2;
}
`)))
	require.NoError(t, ctx.Link())

	o := ctx.NewObject("")
	_, err := ctx.Call("test.gsc", "set", gsc.ObjectValue(o))
	require.NoError(t, err)
	for ctx.Update(0) {
	}

	foo, err := ctx.GetField(o, "foo")
	require.NoError(t, err, "o.foo must still resolve after o[0] = 2")
	require.Equal(t, int64(1), foo.Int, "o.foo must not read back o[0]'s value")
}
