package vkrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRing(capacity uint64) *stagingRing {
	return &stagingRing{capacity: capacity}
}

func TestStagingRingPushPopLinear(t *testing.T) {
	r := newTestRing(64)

	off, err := r.push(nil, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 0, off)
	assert.EqualValues(t, 5, r.size())

	r.pop(5)
	assert.EqualValues(t, 0, r.size())
	assert.False(t, r.full)
}

func TestStagingRingRejectsOverlapOnWrap(t *testing.T) {
	r := newTestRing(16)

	_, err := r.push(nil, 10)
	require.NoError(t, err)
	r.pop(4) // tail=4, head=10: occupied [4,10), free [10,16) and [0,4)

	// A push of 8 bytes doesn't fit in the tail-ward free span [10,16)=6
	// bytes, and wrapping to [0,8) would cross into the still-occupied
	// [4,10) region since 8 > tail(4): must be rejected.
	assert.False(t, r.doesFit(8))

	// A push of 4 bytes fits directly in the 6-byte span [10,16).
	assert.True(t, r.doesFit(4))
}

func TestStagingRingWrapsToOffsetZero(t *testing.T) {
	r := newTestRing(16)

	_, err := r.push(nil, 14)
	require.NoError(t, err)
	r.pop(10) // tail=10, head=14: tail-ward free span [14,16) is only 2 bytes

	off, err := r.push(nil, 5)
	require.NoError(t, err, "5 bytes don't fit in the 2-byte tail-ward span but do fit before tail(10)")
	assert.EqualValues(t, 0, off, "a push that doesn't fit before capacity must restart at offset 0")
	assert.EqualValues(t, 5, r.head)
}

func TestStagingRingFullAfterWrapToTail(t *testing.T) {
	r := newTestRing(16)

	_, err := r.push(nil, 14)
	require.NoError(t, err)
	r.pop(4) // tail=4, head=14: only 2 bytes before capacity, so 4 must wrap

	off, err := r.push(nil, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 0, off)
	assert.True(t, r.full)
	assert.False(t, r.doesFit(1))
}

func TestStagingRingSetTailMarksNotFull(t *testing.T) {
	r := newTestRing(16)
	_, err := r.push(nil, 16)
	require.NoError(t, err)
	require.True(t, r.full)

	r.setTail(8)
	assert.False(t, r.full)
	assert.EqualValues(t, 8, r.tail)
}

func TestStagingRingRejectsLengthExceedingCapacity(t *testing.T) {
	r := newTestRing(8)
	_, err := r.push(nil, 9)
	assert.Error(t, err)
}

func TestStagingRingCapacityEightWrapScenario(t *testing.T) {
	r := newTestRing(8)

	off, err := r.push(nil, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 0, off)

	off, err = r.push(nil, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 5, off)
	assert.EqualValues(t, 8, r.size())
	assert.EqualValues(t, 0, r.capacityAvailable())

	r.pop(5)
	assert.EqualValues(t, 3, r.size())
	assert.EqualValues(t, 5, r.capacityAvailable())

	off, err = r.push(nil, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 0, off)
	assert.EqualValues(t, 8, r.size())
}
