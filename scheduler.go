package vkrt

import vk "github.com/vulkan-go/vulkan"

// frameState is one of the §4.7 FrameScheduler states. advanceFrame walks
// Idle -> WaitingFence -> DrainingCopies -> AcquiringImages ->
// RecordingPasses -> Submitting -> Presenting -> Idle on every call that
// succeeds; a call that returns an error leaves state at the step that
// failed.
type frameState int

const (
	frameIdle frameState = iota
	frameWaitingFence
	frameDrainingCopies
	frameAcquiringImages
	frameRecordingPasses
	frameSubmitting
	framePresenting
)

// perFrameState is one slot of the FramesInFlight-deep array described in
// §3 PerFrameState. Grounded on the teacher's instance.go PerFrame,
// extended with the per-pipeline-layout descriptor-pool manager map
// (§4.7.4) the teacher doesn't need since it hardcodes one pipeline.
type perFrameState struct {
	fence           vk.Fence
	cmdPool         vk.CommandPool
	cmdBuffer       vk.CommandBuffer
	acquireSem      vk.Semaphore
	workFinishedSem vk.Semaphore

	descriptorPools map[vk.PipelineLayout]*descriptorPoolManager

	stagingWatermark uint64
}

func newPerFrameState(device vk.Device, family uint32) (*perFrameState, error) {
	var fence vk.Fence
	ret := vk.CreateFence(device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}, nil, &fence)
	if isError(ret) {
		return nil, mapResult(ret)
	}

	var pool vk.CommandPool
	ret = vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		vk.DestroyFence(device, fence, nil)
		return nil, mapResult(ret)
	}

	bufs := make([]vk.CommandBuffer, 1)
	ret = vk.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, bufs)
	if isError(ret) {
		vk.DestroyCommandPool(device, pool, nil)
		vk.DestroyFence(device, fence, nil)
		return nil, mapResult(ret)
	}

	var acquireSem vk.Semaphore
	ret = vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, &acquireSem)
	if isError(ret) {
		vk.DestroyCommandPool(device, pool, nil)
		vk.DestroyFence(device, fence, nil)
		return nil, mapResult(ret)
	}

	var sem vk.Semaphore
	ret = vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, &sem)
	if isError(ret) {
		vk.DestroySemaphore(device, acquireSem, nil)
		vk.DestroyCommandPool(device, pool, nil)
		vk.DestroyFence(device, fence, nil)
		return nil, mapResult(ret)
	}

	return &perFrameState{
		fence: fence, cmdPool: pool, cmdBuffer: bufs[0], acquireSem: acquireSem, workFinishedSem: sem,
		descriptorPools: make(map[vk.PipelineLayout]*descriptorPoolManager),
	}, nil
}

func (pf *perFrameState) destroy(device vk.Device) {
	for _, m := range pf.descriptorPools {
		m.destroy()
	}
	vk.DestroySemaphore(device, pf.workFinishedSem, nil)
	vk.DestroySemaphore(device, pf.acquireSem, nil)
	vk.DestroyCommandPool(device, pf.cmdPool, nil)
	vk.DestroyFence(device, pf.fence, nil)
}

// SubmitCopy enqueues one copy operation for the transfer planner to pick
// up on a future advance_frame (§4.8 submit_copy).
func (c *Context) SubmitCopy(cmd CopyDataCommand) {
	c.pendingCopies.push(cmd)
}

// SubmitPass enqueues one full render pass, recorded by the next
// advance_frame call (§4.8 submit_pass).
func (c *Context) SubmitPass(pass RenderPassData) {
	c.pendingPasses = append(c.pendingPasses, pass)
}

// SetPresentTarget designates the swapchain+window pair advance_frame
// acquires from and presents to. A Context renders to at most one
// swapchain at a time; presenting to more than one surface per frame is
// an explicit Non-goal.
func (c *Context) SetPresentTarget(swapchain Handle, window WindowSource) {
	c.activeSwapchain = swapchain
	c.activeWindow = window
}

// AdvanceFrame implements the §4.7 public entry point: run one whole
// scheduler cycle for the next frame slot, draining whatever was queued
// via SubmitCopy/SubmitPass since the previous call, and present it.
func (c *Context) AdvanceFrame() error {
	c.state = frameWaitingFence
	idx := c.frameIndex
	pf := c.frames[idx]

	ret := vk.WaitForFences(c.device, 1, []vk.Fence{pf.fence}, vk.True, MaxFenceTimeout)
	if isError(ret) {
		return mapResult(ret)
	}
	c.drainPendingDestroys(idx)
	vk.ResetFences(c.device, 1, []vk.Fence{pf.fence})

	// This slot's fence just signaled, so the GPU work it guarded —
	// including every transfer that read out of the ring up through this
	// slot's prior watermark — is complete. Only now is it safe to free
	// those bytes (§4.4 Frame integration, §9 Open Question: the tail
	// rolls one FramesInFlight-deep cycle behind the head because it is
	// driven by this same slot's watermark from its previous use).
	c.staging.setTail(pf.stagingWatermark)

	c.state = frameDrainingCopies
	vk.ResetCommandPool(c.device, pf.cmdPool, 0)
	vk.BeginCommandBuffer(pf.cmdBuffer, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	c.drainTransferCommands(pf.cmdBuffer)
	pf.stagingWatermark = c.staging.head

	c.state = frameAcquiringImages
	var imageIndex uint32
	var err error
	if c.activeSwapchain != NullHandle {
		imageIndex, _, err = c.acquireImage(c.activeSwapchain, c.activeWindow, pf.acquireSem, vk.NullFence)
		if err != nil {
			vk.EndCommandBuffer(pf.cmdBuffer)
			return err
		}
	}

	c.state = frameRecordingPasses
	passes := c.pendingPasses
	c.pendingPasses = nil
	for _, pass := range passes {
		c.recordPass(pf.cmdBuffer, idx, c.activeSwapchain, imageIndex, pass)
	}
	vk.EndCommandBuffer(pf.cmdBuffer)

	c.state = frameSubmitting
	waitSems := []vk.Semaphore{}
	waitStages := []vk.PipelineStageFlags{}
	if c.activeSwapchain != NullHandle {
		if _, ok := c.swapchains.get(c.activeSwapchain); ok {
			waitSems = append(waitSems, pf.acquireSem)
			waitStages = append(waitStages, vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit))
		}
	}
	ret = vk.QueueSubmit(c.graphicsQueue.queue, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waitSems)),
		PWaitSemaphores:      waitSems,
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{pf.cmdBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{pf.workFinishedSem},
	}}, pf.fence)
	if isError(ret) {
		return mapResult(ret)
	}

	c.state = framePresenting
	if c.activeSwapchain != NullHandle {
		if st, ok := c.swapchains.get(c.activeSwapchain); ok {
			present := vk.PresentInfo{
				SType:              vk.StructureTypePresentInfo,
				WaitSemaphoreCount: 1,
				PWaitSemaphores:    []vk.Semaphore{pf.workFinishedSem},
				SwapchainCount:     1,
				PSwapchains:        []vk.Swapchain{st.handle},
				PImageIndices:      []uint32{imageIndex},
			}
			ret = vk.QueuePresent(c.graphicsQueue.queue, &present)
			if ret == vk.ErrorOutOfDate || ret == vk.Suboptimal {
				if rerr := c.recreateSwapchain(c.activeSwapchain, c.activeWindow); rerr != nil {
					return rerr
				}
			} else if isError(ret) {
				return mapResult(ret)
			}
		}
	}

	c.frameIndex = (c.frameIndex + 1) % FramesInFlight
	c.state = frameIdle
	return nil
}

// recordPass implements §4.7.4: resolve the pass's render pass/framebuffer,
// begin it with its clear values, bind each draw's pipeline and resolved
// descriptor sets, and issue the draw.
func (c *Context) recordPass(cmd vk.CommandBuffer, frameIdx int, swapchain Handle, imageIndex uint32, pass RenderPassData) {
	key := buildRenderPassKey(pass.Attachments)
	renderPass, err := c.resolveRenderPass(key)
	if err != nil {
		return
	}

	fb, width, height, err := c.resolveFramebuffer(renderPass, swapchain, imageIndex, pass.Target)
	if err != nil {
		return
	}

	clears := make([]vk.ClearValue, len(pass.ClearValues))
	for i, cv := range pass.ClearValues {
		if cv.Color != nil {
			var cc vk.ClearColorValue
			cc.SetFloat32([4]float32{cv.Color.R, cv.Color.G, cv.Color.B, cv.Color.A})
			clears[i].SetColor(cc)
		} else if cv.DepthStencil != nil {
			clears[i].SetDepthStencil(vk.ClearDepthStencilValue{Depth: cv.DepthStencil.Depth, Stencil: cv.DepthStencil.Stencil})
		}
	}

	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      renderPass,
		Framebuffer:     fb,
		RenderArea:      vk.Rect2D{Extent: vk.Extent2D{Width: width, Height: height}},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)

	vp := pass.View
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{X: vp.X, Y: vp.Y, Width: vp.Width, Height: vp.Height, MinDepth: vp.MinDepth, MaxDepth: vp.MaxDepth}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{Extent: vk.Extent2D{Width: width, Height: height}}})

	for _, d := range pass.Draws {
		c.recordDraw(cmd, frameIdx, d)
	}

	vk.CmdEndRenderPass(cmd)
}

func (c *Context) recordDraw(cmd vk.CommandBuffer, frameIdx int, d DrawCommand) {
	p, ok := c.pipelines.get(d.Pipeline)
	if !ok {
		return
	}
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, p.handle)

	if vb, ok := c.buffers.get(d.VertexBuffer); ok {
		vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{vb.handle}, []vk.DeviceSize{0})
	}

	setsBySet := map[uint32][]SetBinding{}
	for _, b := range d.Bindings {
		setsBySet[b.Set] = append(setsBySet[b.Set], b)
	}
	for set, bindings := range setsBySet {
		if int(set) >= len(p.setLayouts) {
			continue
		}
		key := descriptorSetWriteKey{}
		for _, b := range bindings {
			w := descriptorWrite{Binding: b.Binding, Type: b.Type.vk(), Count: 1}
			if buf, ok := c.buffers.get(b.Buffer); ok {
				w.Buffers = []bufferWriteInfo{{Buffer: buf.handle, Offset: b.BufferOffset, Range: b.BufferRange}}
			}
			if img, ok := c.images.get(b.Image); ok {
				w.Images = []imageWriteInfo{{View: img.view, Sampler: img.sampler, Layout: img.layout}}
			}
			key.Writes = append(key.Writes, w)
		}
		ds, err := c.resolveDescriptorSet(frameIdx, p.layout, p.setLayouts[set], key)
		if err != nil {
			continue
		}
		vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, p.layout, set, 1, []vk.DescriptorSet{ds}, 0, nil)
	}

	vk.CmdDraw(cmd, d.VertexCount, 1, d.FirstVertex, 0)
}
