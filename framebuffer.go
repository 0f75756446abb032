package vkrt

import vk "github.com/vulkan-go/vulkan"

// framebufferKey identifies a framebuffer by the render pass it is
// compatible with plus the concrete image views it attaches — the
// natural extension of the §4.3 cache family to the one GPU object those
// caches don't otherwise name (render passes and pipelines are
// attachment-shape structural; a framebuffer additionally binds concrete
// views, so it is keyed on top of an already-resolved vk.RenderPass).
type framebufferKey struct {
	renderPass vk.RenderPass
	views      [4]vk.ImageView
	count      int
	width      uint32
	height     uint32
}

func hashFramebufferKey(k framebufferKey) uint64 {
	return fnvHash(func(w writer) {
		w.u64(uint64(k.renderPass))
		w.u32(uint32(k.count))
		for i := 0; i < k.count; i++ {
			w.u64(uint64(k.views[i]))
		}
		w.u32(k.width)
		w.u32(k.height)
	})
}

func eqFramebufferKey(a, b framebufferKey) bool {
	return a == b
}

// resolveFramebuffer resolves the render target list of a RenderPassData
// into concrete image views, then finds-or-creates the matching
// framebuffer (§4.7.4 step "resolve render pass + framebuffer").
func (c *Context) resolveFramebuffer(renderPass vk.RenderPass, swapchain Handle, imageIndex uint32, targets []RenderTargetRef) (vk.Framebuffer, uint32, uint32, error) {
	var key framebufferKey
	key.renderPass = renderPass
	var width, height uint32

	for _, t := range targets {
		rt, ok := c.renderTargets.get(t.RenderTarget)
		if !ok {
			return vk.NullFramebuffer, 0, 0, newErr(ErrInternal, "unknown render target handle")
		}
		var view vk.ImageView
		if rt.swapchain != NullHandle {
			st, ok := c.swapchains.get(rt.swapchain)
			if !ok {
				return vk.NullFramebuffer, 0, 0, newErr(ErrInternal, "unknown swapchain handle")
			}
			view = st.views[imageIndex]
			width, height = st.width, st.height
		} else {
			img, ok := c.images.get(rt.image)
			if !ok {
				return vk.NullFramebuffer, 0, 0, newErr(ErrInternal, "unknown image handle")
			}
			view = img.view
			width, height = img.width, img.height
		}
		if key.count >= len(key.views) {
			return vk.NullFramebuffer, 0, 0, newErr(ErrInternal, "too many attachments for one framebuffer")
		}
		key.views[key.count] = view
		key.count++
	}
	key.width, key.height = width, height

	if fb, ok := c.framebufferCache.Find(key); ok {
		return fb, width, height, nil
	}

	attachments := make([]vk.ImageView, key.count)
	copy(attachments, key.views[:key.count])
	var fb vk.Framebuffer
	ret := vk.CreateFramebuffer(c.device, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}, nil, &fb)
	if isError(ret) {
		return vk.NullFramebuffer, 0, 0, mapResult(ret)
	}
	c.framebufferCache.Add(key, fb)
	return fb, width, height, nil
}

// createRenderTargetFromImage and createRenderTargetFromSwapchain
// implement a user-owned or swapchain-backed render
// target (§4.8 create_render_pass_framebuffer's target argument, §9 Open
// Question: only the explicit-depth-buffer form is offered — a caller
// wanting color-only renders an attachment list without a depth entry).
func (c *Context) createRenderTargetFromImage(image Handle) (Handle, error) {
	img, ok := c.images.get(image)
	if !ok {
		return NullHandle, newErr(ErrInternal, "unknown image handle")
	}
	h := c.renderTargets.add(&RenderTarget{image: image, format: img.format, width: img.width, height: img.height})
	return h, nil
}

func (c *Context) createRenderTargetFromSwapchain(swapchain Handle) (Handle, error) {
	st, ok := c.swapchains.get(swapchain)
	if !ok {
		return NullHandle, newErr(ErrInternal, "unknown swapchain handle")
	}
	var format Format
	switch st.format {
	case vk.FormatB8g8r8a8Unorm:
		format = FormatB8G8R8A8Unorm
	case vk.FormatR8g8b8a8Unorm:
		format = FormatR8G8B8A8Unorm
	}
	h := c.renderTargets.add(&RenderTarget{swapchain: swapchain, format: format, width: st.width, height: st.height})
	return h, nil
}
