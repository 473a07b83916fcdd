package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap_Basic(t *testing.T) {
	m, err := NewMap[string, int](64)
	require.NoError(t, err)
	defer m.Close()

	inserted, err := m.Insert("one", 1)
	require.NoError(t, err)
	require.True(t, inserted)

	v, ok := m.Find("one")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = m.Find("two")
	require.False(t, ok)

	// Insert-if-absent: the stored value is not overwritten.
	inserted, err = m.Insert("one", 111)
	require.ErrorIs(t, err, ErrDuplicateKey)
	require.False(t, inserted)
	v, _ = m.Find("one")
	require.Equal(t, 1, v)

	// Replace is erase + insert.
	require.True(t, m.Erase("one"))
	inserted, err = m.Insert("one", 111)
	require.NoError(t, err)
	require.True(t, inserted)
	v, _ = m.Find("one")
	require.Equal(t, 111, v)
}

func TestMap_ForEach(t *testing.T) {
	m, err := NewMap[int, string](32)
	require.NoError(t, err)
	defer m.Close()

	want := map[int]string{1: "a", 2: "b", 3: "c"}
	for k, v := range want {
		_, err := m.Insert(k, v)
		require.NoError(t, err)
	}

	got := map[int]string{}
	m.ForEach(func(k int, v string) bool {
		got[k] = v
		return true
	})
	require.Equal(t, want, got)
}

func TestMap_StructValues(t *testing.T) {
	type payload struct {
		A, B uint64
		Name string
	}

	m, err := NewMap[uint32, payload](16)
	require.NoError(t, err)
	defer m.Close()

	in := payload{A: 7, B: 9, Name: "slot"}
	inserted, err := m.Insert(42, in)
	require.NoError(t, err)
	require.True(t, inserted)

	out, ok := m.Find(42)
	require.True(t, ok)
	require.Equal(t, in, out)
}

func TestMap_Clear(t *testing.T) {
	m, err := NewMap[int, int](8)
	require.NoError(t, err)
	defer m.Close()

	for i := 0; i < 8; i++ {
		_, err := m.Insert(i, i*i)
		require.NoError(t, err)
	}
	require.Equal(t, 8, m.Len())

	m.Clear()
	require.Equal(t, 0, m.Len())
	_, ok := m.Find(3)
	require.False(t, ok)

	inserted, err := m.Insert(3, 9)
	require.NoError(t, err)
	require.True(t, inserted)
}
