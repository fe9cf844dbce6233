package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHandsOutDistinctNonZeroIDs(t *testing.T) {
	r := NewRegistry[uint32, string]()
	a := r.Acquire("a")
	b := r.Acquire("b")

	assert.NotZero(t, a)
	assert.NotZero(t, b)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())

	v, ok := r.Get(b)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestRegistryNeverReusesReleasedIDs(t *testing.T) {
	r := NewRegistry[uint32, int]()
	first := r.Acquire(1)
	_, err := r.Release(first)
	require.NoError(t, err)

	second := r.Acquire(2)
	assert.NotEqual(t, first, second)
	_, ok := r.Get(first)
	assert.False(t, ok)
}

func TestRegistryReleaseUnknown(t *testing.T) {
	r := NewRegistry[uint32, int]()
	_, err := r.Release(42)
	assert.Error(t, err)

	id := r.Acquire(7)
	_, err = r.Release(id)
	require.NoError(t, err)
	_, err = r.Release(id)
	assert.Error(t, err)
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry[uint64, string]()
	id := r.Acquire("old")
	require.NoError(t, r.Replace(id, "new"))
	v, _ := r.Get(id)
	assert.Equal(t, "new", v)
	assert.Error(t, r.Replace(id+1, "none"))
}

func TestRegistryDescending(t *testing.T) {
	r := NewRegistry[uint32, string]()
	a := r.Acquire("a")
	b := r.Acquire("b")
	c := r.Acquire("c")
	_, err := r.Release(b)
	require.NoError(t, err)

	assert.Equal(t, []uint32{c, a}, r.Descending())
}
