package vkrt

import vk "github.com/vulkan-go/vulkan"

// buildRenderPassKey turns a client-facing RenderPassAttachments into the
// structural renderPassKey of §4.3/§9, classifying each attachment's
// subpass reference by its Reference field. Grounded on the teacher's
// renderpass.go CreateRenderPass, generalized from its hardcoded
// one-color-one-depth pair to an arbitrary attachment list.
func buildRenderPassKey(a RenderPassAttachments) renderPassKey {
	key := renderPassKey{Attachments: make([]attachmentDesc, len(a.Attachments))}
	subpass := subpassDesc{BindPoint: vk.PipelineBindPointGraphics}

	for i, ad := range a.Attachments {
		depth := ad.Reference == AttachmentReferenceDepthStencilAttachment || ad.Reference == AttachmentReferenceDepthStencilReadOnly
		key.Attachments[i] = attachmentDesc{
			Format:         ad.Format.vk(),
			Samples:        ad.Samples.vk(),
			LoadOp:         ad.Load.vk(),
			StoreOp:        ad.Store.vk(),
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  ad.Initial.vk(depth),
			FinalLayout:    ad.Final.vk(depth),
		}
		ref := attachmentRef{Attachment: uint32(i), Layout: ad.Reference.vk()}
		switch ad.Reference {
		case AttachmentReferenceColorAttachment, AttachmentReferenceColorReadOnly:
			subpass.Color = append(subpass.Color, ref)
		case AttachmentReferenceDepthStencilAttachment, AttachmentReferenceDepthStencilReadOnly:
			subpass.DepthStencilSet = true
			subpass.DepthStencil = ref
		}
	}
	key.Subpasses = []subpassDesc{subpass}
	key.Dependencies = []subpassDependency{
		{
			SrcSubpass:    vk.MaxUint32,
			DstSubpass:    0,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			SrcAccessMask: vk.AccessFlags(vk.AccessMemoryReadBit),
			DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		},
		{
			SrcSubpass:    0,
			DstSubpass:    vk.MaxUint32,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
			DstAccessMask: vk.AccessFlags(vk.AccessMemoryReadBit),
		},
	}
	return key
}

// resolveRenderPass returns the cached vk.RenderPass for key, creating
// and caching one on miss (§4.3 invariant 1: equal keys yield the
// identical handle for the cache's lifetime).
func (c *Context) resolveRenderPass(key renderPassKey) (vk.RenderPass, error) {
	if rp, ok := c.renderPassCache.Find(key); ok {
		return rp, nil
	}

	attachments := make([]vk.AttachmentDescription, len(key.Attachments))
	for i, a := range key.Attachments {
		attachments[i] = vk.AttachmentDescription{
			Format:         a.Format,
			Samples:        a.Samples,
			LoadOp:         a.LoadOp,
			StoreOp:        a.StoreOp,
			StencilLoadOp:  a.StencilLoadOp,
			StencilStoreOp: a.StencilStoreOp,
			InitialLayout:  a.InitialLayout,
			FinalLayout:    a.FinalLayout,
		}
	}

	subpasses := make([]vk.SubpassDescription, len(key.Subpasses))
	// keep referenced slices alive until vkCreateRenderPass returns
	keepAlive := make([][]vk.AttachmentReference, 0, len(key.Subpasses)*3)
	for i, s := range key.Subpasses {
		sd := vk.SubpassDescription{
			PipelineBindPoint: s.BindPoint,
		}
		if len(s.Color) > 0 {
			refs := toVkRefs(s.Color)
			keepAlive = append(keepAlive, refs)
			sd.ColorAttachmentCount = uint32(len(refs))
			sd.PColorAttachments = refs
		}
		if len(s.Input) > 0 {
			refs := toVkRefs(s.Input)
			keepAlive = append(keepAlive, refs)
			sd.InputAttachmentCount = uint32(len(refs))
			sd.PInputAttachments = refs
		}
		if s.DepthStencilSet {
			refs := toVkRefs([]attachmentRef{s.DepthStencil})
			keepAlive = append(keepAlive, refs)
			sd.PDepthStencilAttachment = &refs[0]
		}
		subpasses[i] = sd
	}

	deps := make([]vk.SubpassDependency, len(key.Dependencies))
	for i, d := range key.Dependencies {
		deps[i] = vk.SubpassDependency{
			SrcSubpass:    d.SrcSubpass,
			DstSubpass:    d.DstSubpass,
			SrcStageMask:  d.SrcStageMask,
			DstStageMask:  d.DstStageMask,
			SrcAccessMask: d.SrcAccessMask,
			DstAccessMask: d.DstAccessMask,
		}
	}

	var rp vk.RenderPass
	ret := vk.CreateRenderPass(c.device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(deps)),
		PDependencies:   deps,
	}, nil, &rp)
	if isError(ret) {
		return vk.NullRenderPass, mapResult(ret)
	}

	c.renderPassCache.Add(key, rp)
	return rp, nil
}

func toVkRefs(refs []attachmentRef) []vk.AttachmentReference {
	out := make([]vk.AttachmentReference, len(refs))
	for i, r := range refs {
		out[i] = vk.AttachmentReference{Attachment: r.Attachment, Layout: r.Layout}
	}
	return out
}
