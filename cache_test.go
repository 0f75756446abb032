package vkrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type intKey struct{ a, b int }

func hashIntKey(k intKey) uint64 { return uint64(k.a)<<32 | uint64(uint32(k.b)) }
func eqIntKey(a, b intKey) bool  { return a == b }

func TestCacheFindMissReturnsZeroValue(t *testing.T) {
	c := newCache[intKey, string](hashIntKey, eqIntKey)
	v, ok := c.Find(intKey{1, 2})
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestCacheAddIsIdempotentForEqualKeys(t *testing.T) {
	c := newCache[intKey, string](hashIntKey, eqIntKey)
	c.Add(intKey{1, 2}, "first")
	c.Add(intKey{1, 2}, "second")

	assert.Equal(t, 1, c.Size())
	v, ok := c.Find(intKey{1, 2})
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestCacheDistinguishesStructurallyDifferentKeys(t *testing.T) {
	c := newCache[intKey, string](hashIntKey, eqIntKey)
	c.Add(intKey{1, 2}, "a")
	c.Add(intKey{2, 1}, "b")
	assert.Equal(t, 2, c.Size())
}

func TestCacheEraseByValueRemovesOnlyMatches(t *testing.T) {
	c := newCache[intKey, string](hashIntKey, eqIntKey)
	c.Add(intKey{1, 2}, "shared")
	c.Add(intKey{3, 4}, "shared")
	c.Add(intKey{5, 6}, "unique")

	removed := c.EraseByValue("shared")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Size())

	_, ok := c.Find(intKey{5, 6})
	assert.True(t, ok)
}

func TestCacheClearEmpties(t *testing.T) {
	c := newCache[intKey, string](hashIntKey, eqIntKey)
	c.Add(intKey{1, 2}, "a")
	c.Clear()
	assert.Equal(t, 0, c.Size())
	_, ok := c.Find(intKey{1, 2})
	assert.False(t, ok)
}

func TestDescriptorSetWriteKeyNilVsEmptySliceInequality(t *testing.T) {
	withNil := descriptorSetWriteKey{Writes: []descriptorWrite{{Binding: 0, Buffers: nil}}}
	withEmpty := descriptorSetWriteKey{Writes: []descriptorWrite{{Binding: 0, Buffers: []bufferWriteInfo{}}}}

	assert.False(t, eqDescriptorSetWriteKey(withNil, withEmpty),
		"a nil buffer-write slice and an explicitly-empty one must not compare equal")
	assert.True(t, eqDescriptorSetWriteKey(withNil, withNil))
}

func TestRenderPassKeyEqualForIdenticalAttachments(t *testing.T) {
	a := buildRenderPassKey(RenderPassAttachments{Attachments: []AttachmentDescription{
		{Format: FormatB8G8R8A8Unorm, Samples: 1, Load: RenderPassLoadClear, Store: RenderPassStoreStore, Reference: AttachmentReferenceColorAttachment},
	}})
	b := buildRenderPassKey(RenderPassAttachments{Attachments: []AttachmentDescription{
		{Format: FormatB8G8R8A8Unorm, Samples: 1, Load: RenderPassLoadClear, Store: RenderPassStoreStore, Reference: AttachmentReferenceColorAttachment},
	}})
	assert.True(t, eqRenderPassKey(a, b))
	assert.Equal(t, hashRenderPassKey(a), hashRenderPassKey(b))
}
