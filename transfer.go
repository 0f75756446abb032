package vkrt

import vk "github.com/vulkan-go/vulkan"

// pendingCopyQueue is the ordered sequence of CopyDataCommands awaiting
// the transfer planner (§3 PendingCopyQueue, §4.5). FIFO: commands that
// do not fit in the current frame remain at the head for the next one.
type pendingCopyQueue struct {
	items []CopyDataCommand
}

func (q *pendingCopyQueue) push(c CopyDataCommand) {
	q.items = append(q.items, c)
}

// drainTransferCommands runs the §4.5 transfer planner for one frame:
// walk the queue head-first, push bytes that fit into the staging ring,
// record the matching copy + barriers, and stop (leaving the remainder
// at the head) the moment something doesn't fit.
func (c *Context) drainTransferCommands(cmd vk.CommandBuffer) {
	q := &c.pendingCopies
	i := 0
	for ; i < len(q.items); i++ {
		item := q.items[i]
		size := item.size()
		if size > 0 && !c.staging.doesFit(size) {
			break
		}
		c.recordCopy(cmd, item)
	}
	q.items = q.items[i:]
}

func (c *Context) recordCopy(cmd vk.CommandBuffer, item CopyDataCommand) {
	switch item.Kind {
	case CopyKindVertex:
		c.recordBufferCopy(cmd, item, true)
	case CopyKindUniform:
		c.recordBufferCopy(cmd, item, false)
	case CopyKindImageMip:
		c.recordImageMipCopy(cmd, item)
	}
}

func (c *Context) recordBufferCopy(cmd vk.CommandBuffer, item CopyDataCommand, vertex bool) {
	buf, ok := c.buffers.get(item.Dest)
	if !ok {
		return
	}
	offset, err := c.staging.push(item.Data, uint64(len(item.Data)))
	if err != nil {
		return
	}
	vk.CmdCopyBuffer(cmd, c.staging.buffer, buf.handle, 1, []vk.BufferCopy{{
		SrcOffset: vk.DeviceSize(offset),
		DstOffset: vk.DeviceSize(item.Offset),
		Size:      vk.DeviceSize(len(item.Data)),
	}})

	if vertex {
		// TRANSFER -> VERTEX_INPUT barrier (§4.5 step 2).
		vk.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageVertexInputBit),
			0, 0, nil, 1, []vk.BufferMemoryBarrier{{
				SType:               vk.StructureTypeBufferMemoryBarrier,
				SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
				DstAccessMask:       vk.AccessFlags(vk.AccessVertexAttributeReadBit),
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Buffer:              buf.handle,
				Offset:              vk.DeviceSize(item.Offset),
				Size:                vk.DeviceSize(len(item.Data)),
			}}, 0, nil)
	}
}

func (c *Context) recordImageMipCopy(cmd vk.CommandBuffer, item CopyDataCommand) {
	img, ok := c.images.get(item.Dest)
	if !ok {
		return
	}

	// UNDEFINED -> TRANSFER_DST_OPTIMAL across every targeted mip level.
	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       0,
			DstAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
			OldLayout:           vk.ImageLayoutUndefined,
			NewLayout:           vk.ImageLayoutTransferDstOptimal,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               img.handle,
			SubresourceRange:    vk.ImageSubresourceRange{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LevelCount: img.mipLevels, LayerCount: 1},
		}})

	// Each mip gets its own staging-ring allocation; the ring's head
	// pointer is what advances across the loop (§9 Open Question).
	for _, mip := range item.Mips {
		offset, err := c.staging.push(mip.Data, uint64(len(mip.Data)))
		if err != nil {
			break
		}
		vk.CmdCopyBufferToImage(cmd, c.staging.buffer, img.handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
			BufferOffset: vk.DeviceSize(offset),
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), MipLevel: mip.Level, LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: mip.Width, Height: mip.Height, Depth: 1},
		}})
	}

	// TRANSFER_DST -> SHADER_READ_ONLY.
	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
			DstAccessMask:       vk.AccessFlags(vk.AccessShaderReadBit),
			OldLayout:           vk.ImageLayoutTransferDstOptimal,
			NewLayout:           vk.ImageLayoutShaderReadOnlyOptimal,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               img.handle,
			SubresourceRange:    vk.ImageSubresourceRange{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LevelCount: img.mipLevels, LayerCount: 1},
		}})
	img.layout = vk.ImageLayoutShaderReadOnlyOptimal
}
