package vkrt

import vk "github.com/vulkan-go/vulkan"

// Buffer is the GPU-resident object a Buffer handle names (§3).
type Buffer struct {
	kind     BufferType
	usage    MemoryUsage
	size     uint64
	handle   vk.Buffer
	alloc    *allocation
	mappedAt bool
}

// Image is the GPU-resident object an Image handle names (§3).
type Image struct {
	format    Format
	width     uint32
	height    uint32
	mipLevels uint32
	usage     vk.ImageUsageFlagBits
	handle    vk.Image
	view      vk.ImageView
	sampler   vk.Sampler
	alloc     *allocation
	layout    vk.ImageLayout
}

// RenderTarget references an image subresource usable as a framebuffer
// attachment; either swapchain-owned (swapchain != NullHandle) or
// user-owned (image != NullHandle).
type RenderTarget struct {
	swapchain Handle
	swapImage uint32 // index into the swapchain's image array
	image     Handle
	format    Format
	width     uint32
	height    uint32
}

// createBuffer implements create_buffer (§4.8): allocate a vk.Buffer of
// size bytes for kind, backed by memory appropriate to usage. Grounded
// on the teacher's extensions.go CreateBuffer and buffers.go
// NewCoreUniformBuffer, generalized across BufferType/MemoryUsage.
func (c *Context) createBuffer(size uint64, kind BufferType, usage MemoryUsage) (Handle, error) {
	var buf vk.Buffer
	ret := vk.CreateBuffer(c.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(kind.vkUsage()),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	if isError(ret) {
		return NullHandle, mapResult(ret)
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(c.device, buf, &reqs)
	alloc, err := c.allocator.allocateFor(reqs, usage)
	if err != nil {
		vk.DestroyBuffer(c.device, buf, nil)
		return NullHandle, err
	}
	if ret := vk.BindBufferMemory(c.device, buf, alloc.memory, 0); isError(ret) {
		c.allocator.free(alloc)
		vk.DestroyBuffer(c.device, buf, nil)
		return NullHandle, mapResult(ret)
	}

	h := c.buffers.add(&Buffer{kind: kind, usage: usage, size: size, handle: buf, alloc: alloc})
	return h, nil
}

// createImage implements create_image (§4.8): allocate a 2D image with
// mipLevels mip levels of the given format. Sampled+transfer-dst usage is
// assumed for color formats; depth formats get attachment usage instead.
// Grounded on the teacher's image.go + context.go's Texture/Depth types.
func (c *Context) createImage(format Format, width, height, mipLevels uint32) (Handle, error) {
	if mipLevels == 0 {
		mipLevels = 1
	}
	var usage vk.ImageUsageFlagBits
	if format.isDepth() {
		usage = vk.ImageUsageFlagBits(vk.ImageUsageDepthStencilAttachmentBit)
	} else {
		usage = vk.ImageUsageFlagBits(vk.ImageUsageSampledBit) | vk.ImageUsageFlagBits(vk.ImageUsageTransferDstBit) | vk.ImageUsageFlagBits(vk.ImageUsageColorAttachmentBit)
	}

	var img vk.Image
	ret := vk.CreateImage(c.device, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format.vk(),
		Extent:    vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels: mipLevels,
		ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       vk.ImageUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if isError(ret) {
		return NullHandle, mapResult(ret)
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(c.device, img, &reqs)
	alloc, err := c.allocator.allocateFor(reqs, MemoryUsageGPUOnly)
	if err != nil {
		vk.DestroyImage(c.device, img, nil)
		return NullHandle, err
	}
	if ret := vk.BindImageMemory(c.device, img, alloc.memory, 0); isError(ret) {
		c.allocator.free(alloc)
		vk.DestroyImage(c.device, img, nil)
		return NullHandle, mapResult(ret)
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if format.isDepth() {
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	var view vk.ImageView
	ret = vk.CreateImageView(c.device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   format.vk(),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			LevelCount:     mipLevels,
			LayerCount:     1,
		},
	}, nil, &view)
	if isError(ret) {
		c.allocator.free(alloc)
		vk.DestroyImage(c.device, img, nil)
		return NullHandle, mapResult(ret)
	}

	var sampler vk.Sampler
	if !format.isDepth() {
		ret = vk.CreateSampler(c.device, &vk.SamplerCreateInfo{
			SType:        vk.StructureTypeSamplerCreateInfo,
			MagFilter:    vk.FilterLinear,
			MinFilter:    vk.FilterLinear,
			AddressModeU: vk.SamplerAddressModeClampToEdge,
			AddressModeV: vk.SamplerAddressModeClampToEdge,
			AddressModeW: vk.SamplerAddressModeClampToEdge,
			AnisotropyEnable: vk.True,
			MaxAnisotropy:    c.maxAnisotropy,
			BorderColor:      vk.BorderColorIntOpaqueBlack,
			MaxLod:           float32(mipLevels),
		}, nil, &sampler)
		if isError(ret) {
			vk.DestroyImageView(c.device, view, nil)
			c.allocator.free(alloc)
			vk.DestroyImage(c.device, img, nil)
			return NullHandle, mapResult(ret)
		}
	}

	h := c.images.add(&Image{
		format: format, width: width, height: height, mipLevels: mipLevels,
		usage: usage, handle: img, view: view, sampler: sampler, alloc: alloc,
		layout: vk.ImageLayoutUndefined,
	})
	return h, nil
}

func destroyBuffer(device vk.Device, alloc *allocator, b *Buffer) {
	vk.DestroyBuffer(device, b.handle, nil)
	alloc.free(b.alloc)
}

func destroyImage(device vk.Device, alloc *allocator, img *Image) {
	if img.sampler != vk.NullSampler {
		vk.DestroySampler(device, img.sampler, nil)
	}
	vk.DestroyImageView(device, img.view, nil)
	vk.DestroyImage(device, img.handle, nil)
	alloc.free(img.alloc)
}
