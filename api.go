package vkrt

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// This file is the public recording surface of §4.8: the create_*
// entry points, the host-visible buffer mapping pair, fence creation,
// and the deferred destroy_* family. Everything here is a thin,
// validated wrapper over the package-private builders the rest of the
// module already implements — kept together so the whole API reads in
// one place, the way the teacher's context.go groups its Prepare/Cleanup
// pair.

// CreateBuffer implements create_buffer (§4.8).
func (c *Context) CreateBuffer(size uint64, kind BufferType, usage MemoryUsage) (Handle, error) {
	return c.createBuffer(size, kind, usage)
}

// CreateImage implements create_image (§4.8).
func (c *Context) CreateImage(format Format, width, height, mipLevels uint32) (Handle, error) {
	return c.createImage(format, width, height, mipLevels)
}

// CreateShader implements create_shader (§4.8).
func (c *Context) CreateShader(src ShaderSource) (Handle, error) {
	return c.createShader(src)
}

// CreatePipeline implements create_pipeline (§4.8).
func (c *Context) CreatePipeline(shader Handle, root RootSignature, attachments RenderPassAttachments, format PipelineFormat) (Handle, error) {
	return c.createPipeline(shader, root, attachments, format)
}

// CreateSwapchain implements create_swapchain (§4.8, §4.6).
func (c *Context) CreateSwapchain(window WindowSource, format Format, present PresentMode) (Handle, error) {
	return c.createSwapchain(window, format, present)
}

// CreateRenderTarget wraps an existing Image as a RenderTargetRef target.
func (c *Context) CreateRenderTarget(image Handle) (Handle, error) {
	return c.createRenderTargetFromImage(image)
}

// CreateSwapchainRenderTarget wraps a swapchain's per-image color
// attachment as a RenderTargetRef target (§9 Open Question: only the
// explicit-depth-buffer form of create_render_pass_framebuffer is
// offered — pass a depth Image's render target alongside this one in a
// pass's Target list to get a depth attachment).
func (c *Context) CreateSwapchainRenderTarget(swapchain Handle) (Handle, error) {
	return c.createRenderTargetFromSwapchain(swapchain)
}

// CreateFence implements create_fence(signaled) (§4.8).
func (c *Context) CreateFence(signaled bool) (vk.Fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	ret := vk.CreateFence(c.device, &vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo, Flags: flags}, nil, &fence)
	if isError(ret) {
		return vk.NullFence, mapResult(ret)
	}
	return fence, nil
}

// WaitForFence blocks on a single fence previously returned by
// CreateFence, reporting a real timeout as ErrAcquireTimeout rather than
// the raw vk.Timeout result (§4.8 wait_for_fence).
func (c *Context) WaitForFence(fence vk.Fence, timeoutNanos uint64) error {
	ret := vk.WaitForFences(c.device, 1, []vk.Fence{fence}, vk.True, timeoutNanos)
	if ret == vk.Timeout {
		return newErr(ErrAcquireTimeout, "fence wait timed out")
	}
	if isError(ret) {
		return mapResult(ret)
	}
	return nil
}

// WaitDeviceIdle implements wait_device_idle (§4.8).
func (c *Context) WaitDeviceIdle() error {
	return c.WaitIdle()
}

// BeginMapBuffer returns a byte slice over a host-visible buffer's
// backing memory (§4.8 begin_map_buffer). Valid only for buffers created
// with a MemoryUsage other than GPUOnly; the mapping is persistent for
// the buffer's lifetime (the allocator maps once at allocation time), so
// this simply hands back the already-mapped range.
func (c *Context) BeginMapBuffer(h Handle) ([]byte, error) {
	buf, ok := c.buffers.get(h)
	if !ok {
		return nil, newErr(ErrInternal, "unknown buffer handle")
	}
	if buf.alloc.mapped == nil {
		return nil, newErr(ErrInternal, "buffer is not host-visible")
	}
	buf.mappedAt = true
	return unsafe.Slice((*byte)(buf.alloc.mapped), int(buf.size)), nil
}

// EndMapBuffer closes the mapping window opened by BeginMapBuffer. The
// allocator keeps memory mapped for its whole lifetime, so this is a
// pairing/ownership marker rather than an actual vkUnmapMemory call —
// mirroring the teacher's extensions.go CreateBuffer, which also keeps
// host-visible allocations persistently mapped.
func (c *Context) EndMapBuffer(h Handle) error {
	buf, ok := c.buffers.get(h)
	if !ok {
		return newErr(ErrInternal, "unknown buffer handle")
	}
	buf.mappedAt = false
	return nil
}

// DestroyBuffer enrolls a buffer for deferred teardown (§4.8 destroy_*).
func (c *Context) DestroyBuffer(h Handle) {
	buf, ok := c.buffers.get(h)
	if !ok {
		return
	}
	c.buffers.release(h)
	c.enqueueDestroy(func() { destroyBuffer(c.device, c.allocator, buf) })
}

// DestroyImage enrolls an image for deferred teardown.
func (c *Context) DestroyImage(h Handle) {
	img, ok := c.images.get(h)
	if !ok {
		return
	}
	c.images.release(h)
	c.enqueueDestroy(func() { destroyImage(c.device, c.allocator, img) })
}

// DestroyShader enrolls a shader program for deferred teardown.
func (c *Context) DestroyShader(h Handle) {
	s, ok := c.shaders.get(h)
	if !ok {
		return
	}
	c.shaders.release(h)
	c.enqueueDestroy(func() { destroyShaderProgram(c.device, s) })
}

// DestroyPipeline enrolls a pipeline for deferred teardown. The render
// pass, pipeline layout, and descriptor-set layouts it referenced stay
// cached — other pipelines may still share them (§4.3 invariant 2).
func (c *Context) DestroyPipeline(h Handle) {
	p, ok := c.pipelines.get(h)
	if !ok {
		return
	}
	c.pipelines.release(h)
	c.enqueueDestroy(func() { destroyPipeline(c.device, p) })
}

// DestroyRenderTarget releases a render target wrapper. The underlying
// image/swapchain is untouched; destroy it separately if owned.
func (c *Context) DestroyRenderTarget(h Handle) {
	c.renderTargets.release(h)
}

// DestroySwapchain enrolls a swapchain for deferred teardown.
func (c *Context) DestroySwapchain(h Handle) {
	if _, ok := c.swapchains.get(h); !ok {
		return
	}
	if c.activeSwapchain == h {
		c.activeSwapchain = NullHandle
		c.activeWindow = nil
	}
	c.enqueueDestroy(func() { c.destroySwapchain(h) })
}

// DestroyFence destroys a fence immediately: fences are CPU-side
// synchronization handles, never referenced by in-flight GPU work after
// their wait completes, so no deferral is needed.
func (c *Context) DestroyFence(fence vk.Fence) {
	vk.DestroyFence(c.device, fence, nil)
}
