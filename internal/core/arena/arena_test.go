package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolReusesSlotsWithNewGeneration(t *testing.T) {
	p := NewPool()
	a := p.Acquire()
	b := p.Acquire()
	require.NotEqual(t, a, b)
	assert.True(t, p.Alive(a))
	assert.True(t, p.Alive(b))

	require.True(t, p.Release(a))
	assert.False(t, p.Alive(a))
	assert.False(t, p.Release(a), "double release must be ignored")

	c := p.Acquire()
	assert.Equal(t, a.Index(), c.Index())
	assert.Equal(t, a.Generation()+1, c.Generation())
	assert.True(t, p.Alive(c))
	assert.False(t, p.Alive(a))
	assert.True(t, p.Alive(b))
}

func TestPoolRejectsUnknownHandle(t *testing.T) {
	p := NewPool()
	assert.False(t, p.Alive(NewHandle(7, 0)))
	assert.False(t, p.Release(NewHandle(7, 0)))
}

func TestStoreKeepsInsertionOrder(t *testing.T) {
	s := NewStore[string]()
	for i, v := range []string{"a", "b", "c", "d"} {
		v := v
		s.Set(Handle(i), &v)
	}

	removed, ok := s.Remove(Handle(1))
	require.True(t, ok)
	assert.Equal(t, "b", *removed)

	var seen []string
	s.Each(func(_ Handle, v *string) { seen = append(seen, *v) })
	assert.Equal(t, []string{"a", "c", "d"}, seen)
	assert.Equal(t, []Handle{0, 2, 3}, s.Handles())

	got, ok := s.Get(Handle(3))
	require.True(t, ok)
	assert.Equal(t, "d", *got)

	_, ok = s.Remove(Handle(1))
	assert.False(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestStoreSetReplacesInPlace(t *testing.T) {
	s := NewStore[int]()
	one, two, three := 1, 2, 3
	s.Set(5, &one)
	s.Set(6, &two)
	s.Set(5, &three)

	var seen []int
	s.Each(func(_ Handle, v *int) { seen = append(seen, *v) })
	assert.Equal(t, []int{3, 2}, seen)
}
