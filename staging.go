package vkrt

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// stagingRing is the circular byte allocator over a persistently mapped
// host-visible buffer described in §4.4. Single-threaded, owned
// exclusively by the frame scheduler (§5).
//
// Invariant (§3.3): 0 <= head <= capacity, 0 <= tail <= capacity, and
// (head == tail && !full) <=> empty, (head == tail && full) <=> full.
type stagingRing struct {
	capacity uint64
	mapped   unsafe.Pointer
	head     uint64
	tail     uint64
	full     bool

	buffer vk.Buffer
	alloc  *allocation
}

func newStagingRing(c *Context, capacity uint64) (*stagingRing, error) {
	var buf vk.Buffer
	ret := vk.CreateBuffer(c.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(capacity),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(c.device, buf, &reqs)
	alloc, err := c.allocator.allocateFor(reqs, MemoryUsageCPUToGPU)
	if err != nil {
		vk.DestroyBuffer(c.device, buf, nil)
		return nil, err
	}
	if ret := vk.BindBufferMemory(c.device, buf, alloc.memory, 0); isError(ret) {
		c.allocator.free(alloc)
		vk.DestroyBuffer(c.device, buf, nil)
		return nil, mapResult(ret)
	}

	return &stagingRing{capacity: capacity, mapped: alloc.mapped, buffer: buf, alloc: alloc}, nil
}

func (r *stagingRing) destroy(c *Context) {
	c.allocator.free(r.alloc)
	vk.DestroyBuffer(c.device, r.buffer, nil)
}

// size returns occupied bytes.
func (r *stagingRing) size() uint64 {
	if r.full {
		return r.capacity
	}
	if r.head >= r.tail {
		return r.head - r.tail
	}
	return r.capacity - r.tail + r.head
}

// capacityAvailable returns bytes reservable by a single push without
// wrap: either tail-head, capacity-head, or capacity depending on state
// (§4.4).
func (r *stagingRing) capacityAvailable() uint64 {
	if r.full {
		return 0
	}
	if r.head >= r.tail {
		// room to the end, plus a wrapped push could also use [0,tail);
		// a single non-wrapping push is bounded by capacity-head unless
		// head==tail==0 in which case the whole ring is free.
		return r.capacity - r.head
	}
	return r.tail - r.head
}

// doesFit reports whether a single push of length bytes can be satisfied
// either directly or by wrapping to offset 0.
func (r *stagingRing) doesFit(length uint64) bool {
	if length > r.capacity || r.full {
		return false
	}
	if r.capacityAvailable() >= length {
		return true
	}
	// Would need to wrap: valid only if [0,length) doesn't cross tail,
	// i.e. the restart region [0,length) lies entirely within the free
	// span [0,tail) that precedes the occupied [tail,head) region.
	if r.head >= r.tail {
		return length <= r.tail
	}
	return false
}

// push reserves length consecutive bytes, optionally copying src into
// them, and returns the starting offset (§4.4). Requires
// length <= capacity and length <= capacityAvailable() (accounting for
// wrap), enforced by doesFit.
func (r *stagingRing) push(src []byte, length uint64) (uint64, error) {
	if length == 0 {
		return r.head, nil
	}
	if !r.doesFit(length) {
		return 0, newErr(ErrInternal, "staging ring: push does not fit")
	}

	offset := r.head
	if r.capacityAvailable() < length {
		// Wrap: restart at offset 0.
		offset = 0
		r.head = 0
	}

	if src != nil {
		dst := unsafe.Pointer(uintptr(r.mapped) + uintptr(offset))
		copyBytes(dst, src[:length])
	}

	r.head = offset + length
	if r.head == r.capacity {
		r.head = 0
	}
	if r.head == r.tail {
		r.full = true
	}
	return offset, nil
}

// pop marks length consecutive bytes starting at tail as free (§4.4).
func (r *stagingRing) pop(length uint64) {
	if length == 0 {
		return
	}
	r.tail = (r.tail + length) % r.capacity
	r.full = false
}

// setTail directly advances tail to a previously recorded watermark —
// the scheduler's end-of-frame "free-on-next-frame" mechanism (§4.4
// Frame integration, §9's SetTail note).
func (r *stagingRing) setTail(watermark uint64) {
	if watermark != r.tail {
		r.full = false
	}
	r.tail = watermark
}

func copyBytes(dst unsafe.Pointer, src []byte) {
	d := unsafe.Slice((*byte)(dst), len(src))
	copy(d, src)
}
