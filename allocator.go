package vkrt

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// allocator is the VMA-style allocator the spec calls for (§4.1). Real
// VMA sub-allocates many objects out of large device-memory blocks; this
// is a from-scratch, single-block-per-object allocator with the same
// call shape (allocate/free against a memory-type search), grounded on
// the teacher's extensions.go CreateBuffer/FindRequiredMemoryType pair.
// A pooling allocator is future work were this module to grow beyond a
// handful of resources per frame; nothing in the spec requires it.
type allocator struct {
	device     vk.Device
	memProps   vk.PhysicalDeviceMemoryProperties
	allocCount int
}

func newAllocator(device vk.Device, gpu vk.PhysicalDevice) *allocator {
	a := &allocator{device: device}
	vk.GetPhysicalDeviceMemoryProperties(gpu, &a.memProps)
	a.memProps.Deref()
	for i := range a.memProps.MemoryTypes {
		a.memProps.MemoryTypes[i].Deref()
	}
	return a
}

type allocation struct {
	memory  vk.DeviceMemory
	size    vk.DeviceSize
	mapped  unsafe.Pointer
	usage   MemoryUsage
}

// findMemoryType mirrors the teacher's extensions.go FindRequiredMemoryType
// / FindRequiredMemoryTypeFallback pair: try the preferred flags first,
// then fall back to "any type in typeBits" if nothing matches exactly.
func (a *allocator) findMemoryType(typeBits uint32, preferred vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		flags := a.memProps.MemoryTypes[i].PropertyFlags
		if flags&vk.MemoryPropertyFlags(preferred) == vk.MemoryPropertyFlags(preferred) {
			return i, true
		}
	}
	for i := uint32(0); i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) != 0 {
			return i, true
		}
	}
	return 0, false
}

// allocateFor allocates and binds memory satisfying reqs for usage,
// mapping it persistently if usage is host-visible.
func (a *allocator) allocateFor(reqs vk.MemoryRequirements, usage MemoryUsage) (*allocation, error) {
	reqs.Deref()
	typeIdx, ok := a.findMemoryType(reqs.MemoryTypeBits, usage.preferredFlags())
	if !ok {
		return nil, newErr(ErrOutOfDeviceMemory, "no compatible memory type")
	}
	var mem vk.DeviceMemory
	ret := vk.AllocateMemory(a.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIdx,
	}, nil, &mem)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	a.allocCount++

	alloc := &allocation{memory: mem, size: reqs.Size, usage: usage}
	if usage.hostVisible() {
		var p unsafe.Pointer
		ret = vk.MapMemory(a.device, mem, 0, reqs.Size, 0, &p)
		if isError(ret) {
			vk.FreeMemory(a.device, mem, nil)
			a.allocCount--
			return nil, mapResult(ret)
		}
		alloc.mapped = p
	}
	return alloc, nil
}

func (a *allocator) free(alloc *allocation) {
	if alloc == nil {
		return
	}
	if alloc.mapped != nil {
		vk.UnmapMemory(a.device, alloc.memory)
	}
	vk.FreeMemory(a.device, alloc.memory, nil)
	a.allocCount--
}
