package arena_test

import (
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/arena"
	"github.com/stretchr/testify/require"
)

func TestArenaAllocAndReset(t *testing.T) {
	a := arena.New("test", 64)

	b1, err := a.Alloc(16)
	require.NoError(t, err)
	require.Len(t, b1, 16)
	require.Equal(t, 16, a.Used())

	_, err = a.Alloc(1000)
	require.Error(t, err)
	var oom *arena.ErrOutOfMemory
	require.ErrorAs(t, err, &oom)

	a.Reset()
	require.Equal(t, 0, a.Used())
	_, err = a.Alloc(32)
	require.NoError(t, err)
}

func TestInternRoundTrip(t *testing.T) {
	a := arena.New("strings", 4096)
	s := arena.NewStrings(a)

	id1, err := s.Intern("hello")
	require.NoError(t, err)
	id2, err := s.Intern("hello")
	require.NoError(t, err)
	require.Equal(t, id1, id2, "interning the same bytes twice must return the same id")

	got, ok := s.Lookup(id1)
	require.True(t, ok)
	require.Equal(t, "hello", got)

	require.Equal(t, id1, s.IDOf("hello"))
	require.Equal(t, int32(-1), s.IDOf("never interned"))
}

func TestInternIsDense(t *testing.T) {
	a := arena.New("strings", 4096)
	s := arena.NewStrings(a)

	ids := make(map[int32]bool)
	for _, str := range []string{"a", "b", "c", "a", "d"} {
		id, err := s.Intern(str)
		require.NoError(t, err)
		ids[id] = true
	}
	require.Equal(t, 4, s.Len())
	for id := int32(0); id < 4; id++ {
		require.True(t, ids[id], "ids should be dense starting at 0")
	}
}
