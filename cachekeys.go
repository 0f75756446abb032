package vkrt

import (
	"hash/fnv"

	vk "github.com/vulkan-go/vulkan"
)

// This file defines the structural key/hash/equality for the four
// caches of §4.3. Every key type owns its backing storage (plain Go
// slices of value types, never a C pointer+count pair), so a lookup
// with a transient, stack-built key remains valid for the cache's
// lifetime — the fix for the "Vulkan pointer-laden descriptor structs"
// design note (§9).
//
// Hashing is hash/fnv, grounded on gogpu/gg's cache/sharded.go and
// backend/native/pipeline_cache_core.go, both of which hash a GPU
// descriptor with hash/fnv for exactly this "dedupe GPU object creation"
// purpose; no pack repo reaches for a third-party hash here (see
// DESIGN.md).

func fnvHash(write func(h writer)) uint64 {
	h := fnv.New64a()
	write(fnvWriter{h})
	return h.Sum64()
}

type writer interface {
	u32(uint32)
	u64(uint64)
	bytes([]byte)
}

type fnvWriter struct {
	h interface{ Write([]byte) (int, error) }
}

func (w fnvWriter) u32(v uint32) {
	_, _ = w.h.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}
func (w fnvWriter) u64(v uint64) {
	_, _ = w.h.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24), byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56)})
}
func (w fnvWriter) bytes(b []byte) { _, _ = w.h.Write(b) }

// --- Renderpass key -------------------------------------------------

type attachmentDesc struct {
	Format         vk.Format
	Samples        vk.SampleCountFlagBits
	LoadOp         vk.AttachmentLoadOp
	StoreOp        vk.AttachmentStoreOp
	StencilLoadOp  vk.AttachmentLoadOp
	StencilStoreOp vk.AttachmentStoreOp
	InitialLayout  vk.ImageLayout
	FinalLayout    vk.ImageLayout
}

type attachmentRef struct {
	Attachment uint32
	Layout     vk.ImageLayout
}

type subpassDesc struct {
	BindPoint  vk.PipelineBindPoint
	Input      []attachmentRef
	Color      []attachmentRef
	Resolve    []attachmentRef
	DepthStencilSet bool
	DepthStencil    attachmentRef
	Preserve   []uint32
}

type subpassDependency struct {
	SrcSubpass    uint32
	DstSubpass    uint32
	SrcStageMask  vk.PipelineStageFlags
	DstStageMask  vk.PipelineStageFlags
	SrcAccessMask vk.AccessFlags
	DstAccessMask vk.AccessFlags
}

// renderPassKey is the §4.3 renderpass structural key.
type renderPassKey struct {
	Attachments  []attachmentDesc
	Subpasses    []subpassDesc
	Dependencies []subpassDependency
}

func hashAttachmentRefs(w writer, refs []attachmentRef) {
	w.u32(uint32(len(refs)))
	for _, r := range refs {
		w.u32(r.Attachment)
		w.u32(uint32(r.Layout))
	}
}

func eqAttachmentRefs(a, b []attachmentRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hashRenderPassKey(k renderPassKey) uint64 {
	return fnvHash(func(w writer) {
		w.u32(uint32(len(k.Attachments)))
		for _, a := range k.Attachments {
			w.u32(uint32(a.Format))
			w.u32(uint32(a.Samples))
			w.u32(uint32(a.LoadOp))
			w.u32(uint32(a.StoreOp))
			w.u32(uint32(a.StencilLoadOp))
			w.u32(uint32(a.StencilStoreOp))
			w.u32(uint32(a.InitialLayout))
			w.u32(uint32(a.FinalLayout))
		}
		w.u32(uint32(len(k.Subpasses)))
		for _, s := range k.Subpasses {
			w.u32(uint32(s.BindPoint))
			hashAttachmentRefs(w, s.Input)
			hashAttachmentRefs(w, s.Color)
			hashAttachmentRefs(w, s.Resolve)
			if s.DepthStencilSet {
				w.u32(1)
				w.u32(s.DepthStencil.Attachment)
				w.u32(uint32(s.DepthStencil.Layout))
			} else {
				w.u32(0)
			}
			w.u32(uint32(len(s.Preserve)))
			for _, p := range s.Preserve {
				w.u32(p)
			}
		}
		w.u32(uint32(len(k.Dependencies)))
		for _, d := range k.Dependencies {
			w.u32(d.SrcSubpass)
			w.u32(d.DstSubpass)
			w.u32(uint32(d.SrcStageMask))
			w.u32(uint32(d.DstStageMask))
			w.u32(uint32(d.SrcAccessMask))
			w.u32(uint32(d.DstAccessMask))
		}
	})
}

func eqRenderPassKey(a, b renderPassKey) bool {
	if len(a.Attachments) != len(b.Attachments) || len(a.Subpasses) != len(b.Subpasses) || len(a.Dependencies) != len(b.Dependencies) {
		return false
	}
	for i := range a.Attachments {
		if a.Attachments[i] != b.Attachments[i] {
			return false
		}
	}
	for i := range a.Subpasses {
		sa, sb := a.Subpasses[i], b.Subpasses[i]
		if sa.BindPoint != sb.BindPoint || sa.DepthStencilSet != sb.DepthStencilSet {
			return false
		}
		if sa.DepthStencilSet && sa.DepthStencil != sb.DepthStencil {
			return false
		}
		if !eqAttachmentRefs(sa.Input, sb.Input) || !eqAttachmentRefs(sa.Color, sb.Color) || !eqAttachmentRefs(sa.Resolve, sb.Resolve) {
			return false
		}
		if len(sa.Preserve) != len(sb.Preserve) {
			return false
		}
		for j := range sa.Preserve {
			if sa.Preserve[j] != sb.Preserve[j] {
				return false
			}
		}
	}
	for i := range a.Dependencies {
		if a.Dependencies[i] != b.Dependencies[i] {
			return false
		}
	}
	return true
}

// --- Descriptor-set-layout key ---------------------------------------

type bindingDesc struct {
	Index      uint32
	Type       vk.DescriptorType
	Count      uint32
	StageFlags vk.ShaderStageFlags
}

type descriptorSetLayoutKey struct {
	Bindings []bindingDesc
}

func hashDescriptorSetLayoutKey(k descriptorSetLayoutKey) uint64 {
	return fnvHash(func(w writer) {
		w.u32(uint32(len(k.Bindings)))
		for _, b := range k.Bindings {
			w.u32(b.Index)
			w.u32(uint32(b.Type))
			w.u32(b.Count)
			w.u32(uint32(b.StageFlags))
		}
	})
}

func eqDescriptorSetLayoutKey(a, b descriptorSetLayoutKey) bool {
	if len(a.Bindings) != len(b.Bindings) {
		return false
	}
	for i := range a.Bindings {
		if a.Bindings[i] != b.Bindings[i] {
			return false
		}
	}
	return true
}

// --- Pipeline-layout key ----------------------------------------------

type pushConstantRange struct {
	StageFlags vk.ShaderStageFlags
	Offset     uint32
	Size       uint32
}

type pipelineLayoutKey struct {
	SetLayouts   []vk.DescriptorSetLayout
	PushConstant []pushConstantRange
}

func hashPipelineLayoutKey(k pipelineLayoutKey) uint64 {
	return fnvHash(func(w writer) {
		w.u32(uint32(len(k.SetLayouts)))
		for _, l := range k.SetLayouts {
			w.u64(uint64(l))
		}
		w.u32(uint32(len(k.PushConstant)))
		for _, p := range k.PushConstant {
			w.u32(uint32(p.StageFlags))
			w.u32(p.Offset)
			w.u32(p.Size)
		}
	})
}

func eqPipelineLayoutKey(a, b pipelineLayoutKey) bool {
	if len(a.SetLayouts) != len(b.SetLayouts) || len(a.PushConstant) != len(b.PushConstant) {
		return false
	}
	for i := range a.SetLayouts {
		if a.SetLayouts[i] != b.SetLayouts[i] {
			return false
		}
	}
	for i := range a.PushConstant {
		if a.PushConstant[i] != b.PushConstant[i] {
			return false
		}
	}
	return true
}

// --- Descriptor-set write key ------------------------------------------

type bufferWriteInfo struct {
	Buffer vk.Buffer
	Offset uint64
	Range  uint64
}

type imageWriteInfo struct {
	View    vk.ImageView
	Sampler vk.Sampler
	Layout  vk.ImageLayout
}

// descriptorWrite is one binding's worth of write content (§3: "write-set").
type descriptorWrite struct {
	Binding uint32
	Type    vk.DescriptorType
	Count   uint32
	Buffers []bufferWriteInfo
	Images  []imageWriteInfo
}

// descriptorSetWriteKey is the §4.3 "descriptor-set write-key": the
// content of a WriteDescriptorSet batch, deliberately excluding the
// destination set (the lookup predates the set it would write to).
type descriptorSetWriteKey struct {
	Writes []descriptorWrite
}

func hashDescriptorSetWriteKey(k descriptorSetWriteKey) uint64 {
	return fnvHash(func(w writer) {
		w.u32(uint32(len(k.Writes)))
		for _, wr := range k.Writes {
			w.u32(wr.Binding)
			w.u32(uint32(wr.Type))
			w.u32(wr.Count)
			w.u32(uint32(len(wr.Buffers)))
			for _, b := range wr.Buffers {
				w.u64(uint64(b.Buffer))
				w.u64(b.Offset)
				w.u64(b.Range)
			}
			w.u32(uint32(len(wr.Images)))
			for _, im := range wr.Images {
				w.u64(uint64(im.View))
				w.u64(uint64(im.Sampler))
				w.u32(uint32(im.Layout))
			}
		}
	})
}

func eqDescriptorSetWriteKey(a, b descriptorSetWriteKey) bool {
	if len(a.Writes) != len(b.Writes) {
		return false
	}
	for i := range a.Writes {
		wa, wb := a.Writes[i], b.Writes[i]
		if wa.Binding != wb.Binding || wa.Type != wb.Type || wa.Count != wb.Count {
			return false
		}
		// Defensive equality: a nil slice on one side and a non-nil
		// slice on the other compare unequal even when the non-nil one
		// is empty, so both have length zero.
		if (wa.Buffers == nil) != (wb.Buffers == nil) || (wa.Images == nil) != (wb.Images == nil) {
			return false
		}
		if len(wa.Buffers) != len(wb.Buffers) || len(wa.Images) != len(wb.Images) {
			return false
		}
		for j := range wa.Buffers {
			if wa.Buffers[j] != wb.Buffers[j] {
				return false
			}
		}
		for j := range wa.Images {
			if wa.Images[j] != wb.Images[j] {
				return false
			}
		}
	}
	return true
}
