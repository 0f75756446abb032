package vkrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolAddReturnsDistinctHandles(t *testing.T) {
	p := newPool[string]()
	h1 := p.add("a")
	h2 := p.add("b")
	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, NullHandle, h1)
	assert.NotEqual(t, NullHandle, h2)
}

func TestPoolGetMissingHandleReturnsFalse(t *testing.T) {
	p := newPool[string]()
	_, ok := p.get(Handle(99))
	assert.False(t, ok)
	_, ok = p.get(NullHandle)
	assert.False(t, ok)
}

func TestPoolReleaseThenAddReusesSlot(t *testing.T) {
	p := newPool[string]()
	h1 := p.add("a")
	p.release(h1)

	h2 := p.add("b")
	assert.Equal(t, h1, h2, "a released slot should be reused rather than growing the table")

	v, ok := p.get(h2)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestPoolEmptyAfterAllReleased(t *testing.T) {
	p := newPool[string]()
	h1 := p.add("a")
	h2 := p.add("b")
	assert.False(t, p.empty())

	p.release(h1)
	assert.False(t, p.empty())
	p.release(h2)
	assert.True(t, p.empty())
}

func TestPoolEachVisitsOnlyLiveSlots(t *testing.T) {
	p := newPool[string]()
	h1 := p.add("a")
	_ = p.add("b")
	p.release(h1)

	seen := map[Handle]string{}
	p.each(func(h Handle, v string) { seen[h] = v })

	_, hasReleased := seen[h1]
	assert.False(t, hasReleased)
	assert.Equal(t, 1, len(seen))
}

func TestPoolDoubleReleaseIsNoop(t *testing.T) {
	p := newPool[string]()
	h1 := p.add("a")
	p.release(h1)
	assert.NotPanics(t, func() { p.release(h1) })
	assert.Equal(t, 0, p.size())
}
