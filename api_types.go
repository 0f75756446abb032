package vkrt

import vk "github.com/vulkan-go/vulkan"

// AttachmentDescription is one entry of a RenderPassAttachments list
// (§3 RenderPass structural key, attachment half).
type AttachmentDescription struct {
	Format    Format
	Samples   SampleBit
	Load      RenderPassLoad
	Store     RenderPassStore
	Initial   RenderPassLayout
	Final     RenderPassLayout
	Reference AttachmentReference
}

// RenderPassAttachments is the ordered attachment list a render pass is
// resolved (or cache-created) from, per §4.7 RecordingPasses step 1.
type RenderPassAttachments struct {
	Attachments []AttachmentDescription
}

// ClearColor is a color clear value, pushed in the order the client calls
// it; §4.7 requires as many clear values as Clear-load attachments.
type ClearColor struct {
	R, G, B, A float32
}

// ClearDepthStencil is a depth/stencil clear value.
type ClearDepthStencil struct {
	Depth   float32
	Stencil uint32
}

// ClearValue is one of ClearColor or ClearDepthStencil, matched by index
// to RenderPassAttachments.Attachments.
type ClearValue struct {
	Color        *ClearColor
	DepthStencil *ClearDepthStencil
}

// Viewport is the pass's viewport/scissor rectangle.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// SetBinding is one populated (set, binding) slot of a draw's descriptor
// bindings, feeding the per-frame descriptor-set cache lookup (§4.7.4).
type SetBinding struct {
	Set     uint32
	Binding uint32
	Type    BindingType
	// Buffer binds a uniform/storage buffer at (handle, offset, range).
	Buffer       Handle
	BufferOffset uint64
	BufferRange  uint64
	// Image binds a sampled image; mutually exclusive with Buffer.
	Image Handle
}

// DrawCommand is one draw within a render pass (§4.7.4).
type DrawCommand struct {
	Pipeline      Handle
	Bindings      []SetBinding
	VertexBuffer  Handle
	FirstVertex   uint32
	VertexCount   uint32
}

// RenderPassData is one pending render pass: target, viewport, attachment
// list with clear values, and its ordered draws (§3 PendingPassQueue).
type RenderPassData struct {
	Target      []RenderTargetRef
	Attachments RenderPassAttachments
	ClearValues []ClearValue
	View        Viewport
	Draws       []DrawCommand
}

// RenderTargetRef names the attachment(s) a pass renders into, in
// attachment order matching RenderPassAttachments.Attachments.
type RenderTargetRef struct {
	RenderTarget Handle
}

// CopyKind classifies a CopyDataCommand (§3 CopyCommand variants).
type CopyKind int

const (
	CopyKindVertex CopyKind = iota
	CopyKindUniform
	CopyKindImageMip
)

// MipCopy describes one mip level's worth of an ImageMipCopy (§9 Open
// Question: multi-mip semantics retained, offsets accumulate per level).
type MipCopy struct {
	Level  uint32
	Width  uint32
	Height uint32
	Data   []byte
}

// CopyDataCommand is one submit_copy call (§4.8, §3 PendingCopyQueue).
type CopyDataCommand struct {
	Kind   CopyKind
	Dest   Handle
	Offset uint64   // destination offset, for Vertex/Uniform
	Data   []byte   // source bytes, for Vertex/Uniform
	Mips   []MipCopy // source bytes, for ImageMip
}

// size returns the staging-ring bytes this command requires (§4.5 step
// 2: "image copies sum their mip-level sizes").
func (c CopyDataCommand) size() uint64 {
	switch c.Kind {
	case CopyKindImageMip:
		var total uint64
		for _, m := range c.Mips {
			total += uint64(len(m.Data))
		}
		return total
	default:
		return uint64(len(c.Data))
	}
}

// SetLayoutBinding describes one binding of one descriptor set in a
// ShaderSource's set-layout map.
type SetLayoutBinding struct {
	Name       string
	Type       BindingType
	Size       uint32
	Count      uint32
	StageFlags vk.ShaderStageFlags
}

// VertexAttribute is one entry of a ShaderSource's vertex input layout.
type VertexAttribute struct {
	Location uint32
	Offset   uint32
	Format   Format
}

// ShaderSource is the external byte-buffer input for create_shader (§4.8,
// §6: the core does not load shader bytecode from disk).
type ShaderSource struct {
	VertexSPIRV   []byte
	FragmentSPIRV []byte

	VertexAttributes []VertexAttribute
	Stride           uint32

	ColorAttachmentFormats []Format
	DepthStencilFormat     *Format

	// SetLayouts[set][binding] enumerates every binding, per-set.
	SetLayouts [][]SetLayoutBinding
}

// RootSignature names the pipeline layout a Pipeline is built against,
// derived by the caller from a ShaderSource's SetLayouts (one pipeline
// layout may be shared by several shaders with identical set layouts).
type RootSignature struct {
	SetLayouts   [][]SetLayoutBinding
	PushConstant []pushConstantRange
}

// PipelineFormat carries the rasterization/blend/depth state a Pipeline
// is built with; zero value is a reasonable opaque-triangle default.
type PipelineFormat struct {
	Topology    vk.PrimitiveTopology
	PolygonMode vk.PolygonMode
	CullMode    vk.CullModeFlagBits
	FrontFace   vk.FrontFace
	DepthTest   bool
	DepthWrite  bool
	BlendEnable bool
}
