package machine_test

import (
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/machine"
	"github.com/stretchr/testify/require"
)

func TestObjectAttrOwnFieldWins(t *testing.T) {
	proxy := machine.NewObject()
	proxy.Set(1, machine.Int(99))
	o := machine.NewObject()
	o.Proxy = proxy
	o.Set(1, machine.Int(1))

	v, ok := o.Attr(1)
	require.True(t, ok)
	require.Equal(t, int64(1), v.Int)
}

func TestObjectAttrFallsBackToProxy(t *testing.T) {
	proxy := machine.NewObject()
	proxy.Set(1, machine.Int(99))
	o := machine.NewObject()
	o.Proxy = proxy

	v, ok := o.Attr(1)
	require.True(t, ok)
	require.Equal(t, int64(99), v.Int)
}

func TestObjectAttrMissingEverywhere(t *testing.T) {
	o := machine.NewObject()
	_, ok := o.Attr(1)
	require.False(t, ok)
}

// TestFieldKeyDoesNotCollideWithNumericIndex guards the field/index key space
// Object.Fields shares: a field whose name interned to string id 1 (an id a
// fresh arena.Strings table hands out routinely, since ids are dense from 0)
// must not land on the same Fields key as numeric index 0. Before FieldKey
// shifted string ids into the even lane, both encoded to the same raw value
// 1 (a[0]'s key was int32(0)<<1|1 == 1, and a field's key was its raw
// interned id, also 1), so o.foo = 1; o[0] = 2 would make o.foo read back 2.
func TestFieldKeyDoesNotCollideWithNumericIndex(t *testing.T) {
	const fieldStringID = int32(1)
	const numericIndexKey = int32(0)<<1 | 1 // indexFieldID's encoding for a[0]

	o := machine.NewObject()
	o.Set(machine.FieldKey(fieldStringID), machine.Int(1))
	o.Set(numericIndexKey, machine.Int(2))

	v, ok := o.Get(machine.FieldKey(fieldStringID))
	require.True(t, ok)
	require.Equal(t, int64(1), v.Int, "field write must survive a colliding-under-the-old-scheme numeric index write")

	v, ok = o.Get(numericIndexKey)
	require.True(t, ok)
	require.Equal(t, int64(2), v.Int)
}
