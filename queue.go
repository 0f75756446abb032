package vkrt

import vk "github.com/vulkan-go/vulkan"

// queueInfo resolves the single graphics+transfer queue family the
// context requires (§4.1: "family chosen as the first family exposing
// both bits"). Grounded on the teacher's queue.go CoreQueue, collapsed
// from its general multi-queue-family bookkeeping to the one family this
// spec needs — multi-queue scheduling is an explicit Non-goal.
type queueInfo struct {
	familyIndex uint32
	queue       vk.Queue
}

// resolveGraphicsTransferFamily returns the first queue family exposing
// both GRAPHICS and TRANSFER bits (§4.1). Graphics-capable families
// implicitly support transfer per the Vulkan spec, so this is really
// "first family with the GRAPHICS bit", kept explicit for readability.
func resolveGraphicsTransferFamily(gpu vk.PhysicalDevice) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	if count == 0 {
		return 0, false
	}
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)

	want := vk.QueueFlags(vk.QueueGraphicsBit) | vk.QueueFlags(vk.QueueTransferBit)
	for i := uint32(0); i < count; i++ {
		props[i].Deref()
		if props[i].QueueFlags&want == want {
			return i, true
		}
	}
	// Graphics implies transfer on every conformant implementation;
	// fall back to any graphics-capable family.
	for i := uint32(0); i < count; i++ {
		props[i].Deref()
		if props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return i, true
		}
	}
	return 0, false
}

// assertSinglePresentQueue verifies the resolved graphics+transfer family
// also supports presentation to surface. The teacher's context.go carries
// a separatePresentQueue path with ownership-transfer command buffers for
// devices that need a distinct present family (§12 of SPEC_FULL); this
// spec's Non-goals exclude that, so a device requiring it is reported
// rather than silently mishandled.
func assertSinglePresentQueue(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) error {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, family, surface, &supported)
	if isError(ret) {
		return mapResult(ret)
	}
	if supported == vk.False {
		return newErr(ErrInitFailed, "graphics+transfer queue family does not support presentation to this surface; a separate present queue is required and unsupported")
	}
	return nil
}
