package vkrt

import vk "github.com/vulkan-go/vulkan"

// PresentMode mirrors Vulkan's ordering exactly (§6).
type PresentMode uint32

const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFIFO
	PresentModeFIFORelaxed
)

func (m PresentMode) vk() vk.PresentMode {
	switch m {
	case PresentModeImmediate:
		return vk.PresentModeImmediate
	case PresentModeMailbox:
		return vk.PresentModeMailbox
	case PresentModeFIFORelaxed:
		return vk.PresentModeFifoRelaxed
	default:
		return vk.PresentModeFifo
	}
}

// Format is the backend-neutral pixel/depth format enumeration (§6).
type Format uint32

const (
	FormatR8Unorm Format = iota
	FormatR8G8B8Unorm
	FormatR8G8B8A8Unorm
	FormatB8G8R8Unorm
	FormatB8G8R8A8Unorm
	FormatDepth16Unorm
	FormatDepth32Float
	FormatDepth16UnormStencil8Uint
	FormatDepth24UnormStencil8Uint
	FormatDepth32FloatStencil8Uint
)

func (f Format) vk() vk.Format {
	switch f {
	case FormatR8Unorm:
		return vk.FormatR8Unorm
	case FormatR8G8B8Unorm:
		return vk.FormatR8g8b8Unorm
	case FormatR8G8B8A8Unorm:
		return vk.FormatR8g8b8a8Unorm
	case FormatB8G8R8Unorm:
		return vk.FormatB8g8r8Unorm
	case FormatB8G8R8A8Unorm:
		return vk.FormatB8g8r8a8Unorm
	case FormatDepth16Unorm:
		return vk.FormatD16Unorm
	case FormatDepth32Float:
		return vk.FormatD32Sfloat
	case FormatDepth16UnormStencil8Uint:
		return vk.FormatD16UnormS8Uint
	case FormatDepth24UnormStencil8Uint:
		return vk.FormatD24UnormS8Uint
	case FormatDepth32FloatStencil8Uint:
		return vk.FormatD32SfloatS8Uint
	default:
		return vk.FormatUndefined
	}
}

func (f Format) isDepth() bool {
	return f >= FormatDepth16Unorm
}

// SampleBit is a power-of-two MSAA sample count, 1..64.
type SampleBit uint32

func (s SampleBit) vk() vk.SampleCountFlagBits {
	return vk.SampleCountFlagBits(s)
}

// RenderPassLoad is an attachment load operation.
type RenderPassLoad uint32

const (
	RenderPassLoadLoad RenderPassLoad = iota
	RenderPassLoadClear
)

func (l RenderPassLoad) vk() vk.AttachmentLoadOp {
	if l == RenderPassLoadClear {
		return vk.AttachmentLoadOpClear
	}
	return vk.AttachmentLoadOpLoad
}

// RenderPassStore is an attachment store operation.
type RenderPassStore uint32

const (
	RenderPassStoreStore RenderPassStore = iota
	RenderPassStoreDontCare
)

func (s RenderPassStore) vk() vk.AttachmentStoreOp {
	if s == RenderPassStoreDontCare {
		return vk.AttachmentStoreOpDontCare
	}
	return vk.AttachmentStoreOpStore
}

// RenderPassLayout is a backend-neutral image layout used for attachment
// initial/final layouts.
type RenderPassLayout uint32

const (
	RenderPassLayoutUndefined RenderPassLayout = iota
	RenderPassLayoutAsAttachment
	RenderPassLayoutShaderReadOnly
	RenderPassLayoutPresent
)

func (l RenderPassLayout) vk(depth bool) vk.ImageLayout {
	switch l {
	case RenderPassLayoutAsAttachment:
		if depth {
			return vk.ImageLayoutDepthStencilAttachmentOptimal
		}
		return vk.ImageLayoutColorAttachmentOptimal
	case RenderPassLayoutShaderReadOnly:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case RenderPassLayoutPresent:
		return vk.ImageLayoutPresentSrc
	default:
		return vk.ImageLayoutUndefined
	}
}

// AttachmentReference classifies how a subpass refers to an attachment.
type AttachmentReference uint32

const (
	AttachmentReferenceColorReadOnly AttachmentReference = iota
	AttachmentReferenceColorAttachment
	AttachmentReferenceDepthStencilReadOnly
	AttachmentReferenceDepthStencilAttachment
)

func (r AttachmentReference) vk() vk.ImageLayout {
	switch r {
	case AttachmentReferenceColorAttachment:
		return vk.ImageLayoutColorAttachmentOptimal
	case AttachmentReferenceDepthStencilReadOnly:
		return vk.ImageLayoutDepthStencilReadOnlyOptimal
	case AttachmentReferenceDepthStencilAttachment:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	default:
		return vk.ImageLayoutShaderReadOnlyOptimal
	}
}

// BindingType is a descriptor binding's resource kind.
type BindingType uint32

const (
	BindingTypeUniformBuffer BindingType = iota
	BindingTypeStorageBuffer
	BindingTypeSampler
)

func (b BindingType) vk() vk.DescriptorType {
	switch b {
	case BindingTypeStorageBuffer:
		return vk.DescriptorTypeStorageBuffer
	case BindingTypeSampler:
		return vk.DescriptorTypeCombinedImageSampler
	default:
		return vk.DescriptorTypeUniformBuffer
	}
}

// BufferType classifies a Buffer's intended use.
type BufferType uint32

const (
	BufferTypeVertexIndex BufferType = iota
	BufferTypeUniform
	BufferTypeStorage
	BufferTypeTransfer
)

func (t BufferType) vkUsage() vk.BufferUsageFlagBits {
	switch t {
	case BufferTypeVertexIndex:
		return vk.BufferUsageFlagBits(vk.BufferUsageVertexBufferBit) | vk.BufferUsageFlagBits(vk.BufferUsageIndexBufferBit) | vk.BufferUsageFlagBits(vk.BufferUsageTransferDstBit)
	case BufferTypeUniform:
		return vk.BufferUsageFlagBits(vk.BufferUsageUniformBufferBit) | vk.BufferUsageFlagBits(vk.BufferUsageTransferDstBit)
	case BufferTypeStorage:
		return vk.BufferUsageFlagBits(vk.BufferUsageStorageBufferBit) | vk.BufferUsageFlagBits(vk.BufferUsageTransferDstBit)
	default:
		return vk.BufferUsageFlagBits(vk.BufferUsageTransferSrcBit) | vk.BufferUsageFlagBits(vk.BufferUsageTransferDstBit)
	}
}

// MemoryUsage classifies where a Buffer's backing memory lives and how
// the CPU may reach it.
type MemoryUsage uint32

const (
	MemoryUsageGPUOnly MemoryUsage = iota
	MemoryUsageCPUOnly
	MemoryUsageCPUToGPU
	MemoryUsageGPUToCPU
)

func (m MemoryUsage) preferredFlags() vk.MemoryPropertyFlagBits {
	switch m {
	case MemoryUsageGPUOnly:
		return vk.MemoryPropertyDeviceLocalBit
	case MemoryUsageGPUToCPU:
		return vk.MemoryPropertyFlagBits(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlagBits(vk.MemoryPropertyHostCachedBit)
	default:
		return vk.MemoryPropertyFlagBits(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlagBits(vk.MemoryPropertyHostCoherentBit)
	}
}

func (m MemoryUsage) hostVisible() bool {
	return m != MemoryUsageGPUOnly
}
