package machine_test

import (
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/machine"
	"github.com/stretchr/testify/require"
)

func TestValueTruthy(t *testing.T) {
	require.False(t, machine.UndefinedValue.Truthy())
	require.False(t, machine.Bool(false).Truthy())
	require.True(t, machine.Bool(true).Truthy())
	require.False(t, machine.Int(0).Truthy())
	require.True(t, machine.Int(1).Truthy())
	require.False(t, machine.Float(0).Truthy())
	require.True(t, machine.Float(0.1).Truthy())
	require.True(t, machine.StringID(0).Truthy())
}

func TestValueEqualNumericCrossKind(t *testing.T) {
	require.True(t, machine.Equal(machine.Int(2), machine.Float(2)))
	require.False(t, machine.Equal(machine.Int(2), machine.Float(2.5)))
}

func TestValueEqualByKind(t *testing.T) {
	require.True(t, machine.Equal(machine.UndefinedValue, machine.UndefinedValue))
	require.True(t, machine.Equal(machine.StringID(3), machine.StringID(3)))
	require.False(t, machine.Equal(machine.StringID(3), machine.StringID(4)))
	require.True(t, machine.Equal(machine.MakeVec3(machine.Vec3{X: 1, Y: 2, Z: 3}), machine.MakeVec3(machine.Vec3{X: 1, Y: 2, Z: 3})))
	require.False(t, machine.Equal(machine.Bool(true), machine.Int(1)))
}

func TestValueEqualObjectIdentity(t *testing.T) {
	a := machine.NewObject()
	b := machine.NewObject()
	require.True(t, machine.Equal(machine.ObjectVal(a), machine.ObjectVal(a)))
	require.False(t, machine.Equal(machine.ObjectVal(a), machine.ObjectVal(b)))
}
