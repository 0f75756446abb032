package vkrt

import vk "github.com/vulkan-go/vulkan"

// pipelineObj is what a Pipeline handle names (§3 Pipeline).
type pipelineObj struct {
	handle         vk.Pipeline
	layout         vk.PipelineLayout
	setLayouts     []vk.DescriptorSetLayout
	renderPassKey  renderPassKey
}

// createPipeline implements create_pipeline (§4.8): build a graphics
// pipeline from a shader, its root signature, and the attachments/format
// it will render with. Grounded on the teacher's pipeline.go
// PipelineBuilder, generalized from its hardcoded 2-stage/no-vertex-input
// triangle to the shader's declared vertex layout and PipelineFormat.
func (c *Context) createPipeline(shader Handle, root RootSignature, attachments RenderPassAttachments, format PipelineFormat) (Handle, error) {
	prog, ok := c.shaders.get(shader)
	if !ok {
		return NullHandle, newErr(ErrInternal, "unknown shader handle")
	}

	layout, setLayouts, err := c.buildRootSignature(root)
	if err != nil {
		return NullHandle, err
	}

	rpKey := buildRenderPassKey(attachments)
	renderPass, err := c.resolveRenderPass(rpKey)
	if err != nil {
		return NullHandle, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: prog.vertex,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: prog.fragment,
			PName:  safeString("main"),
		},
	}

	var bindingDescs []vk.VertexInputBindingDescription
	var attrDescs []vk.VertexInputAttributeDescription
	if len(prog.source.VertexAttributes) > 0 {
		bindingDescs = []vk.VertexInputBindingDescription{{
			Binding: 0, Stride: prog.source.Stride, InputRate: vk.VertexInputRateVertex,
		}}
		for _, a := range prog.source.VertexAttributes {
			attrDescs = append(attrDescs, vk.VertexInputAttributeDescription{
				Location: a.Location, Binding: 0, Format: a.Format.vk(), Offset: a.Offset,
			})
		}
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindingDescs)),
		PVertexBindingDescriptions:      bindingDescs,
		VertexAttributeDescriptionCount: uint32(len(attrDescs)),
		PVertexAttributeDescriptions:    attrDescs,
	}

	topology := format.Topology
	if topology == 0 {
		topology = vk.PrimitiveTopologyTriangleList
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType: vk.StructureTypePipelineInputAssemblyStateCreateInfo, Topology: topology,
	}

	polyMode := format.PolygonMode
	frontFace := format.FrontFace
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: polyMode,
		CullMode:    vk.CullModeFlags(format.CullMode),
		FrontFace:   frontFace,
		LineWidth:   1.0,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType: vk.StructureTypePipelineMultisampleStateCreateInfo, RasterizationSamples: vk.SampleCount1Bit, MinSampleShading: 1.0,
	}

	blendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
		BlendEnable: vk.Bool32(boolToUint32(format.BlendEnable)),
	}
	var colorBlendAttachments []vk.PipelineColorBlendAttachmentState
	for _, a := range attachments.Attachments {
		if a.Reference == AttachmentReferenceColorAttachment {
			colorBlendAttachments = append(colorBlendAttachments, blendAttachment)
		}
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType: vk.StructureTypePipelineColorBlendStateCreateInfo, LogicOp: vk.LogicOpCopy,
		AttachmentCount: uint32(len(colorBlendAttachments)), PAttachments: colorBlendAttachments,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.Bool32(boolToUint32(format.DepthTest)),
		DepthWriteEnable: vk.Bool32(boolToUint32(format.DepthWrite)),
		DepthCompareOp:   vk.CompareOpLess,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType: vk.StructureTypePipelineViewportStateCreateInfo, ViewportCount: 1, ScissorCount: 1,
	}
	dynStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType: vk.StructureTypePipelineDynamicStateCreateInfo, DynamicStateCount: uint32(len(dynStates)), PDynamicStates: dynStates,
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PColorBlendState:    &colorBlend,
		PDepthStencilState:  &depthStencil,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          renderPass,
	}

	pipelines := []vk.Pipeline{vk.NullPipeline}
	ret := vk.CreateGraphicsPipelines(c.device, c.pipelineCache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if isError(ret) {
		return NullHandle, mapResult(ret)
	}

	h := c.pipelines.add(&pipelineObj{handle: pipelines[0], layout: layout, setLayouts: setLayouts, renderPassKey: rpKey})
	return h, nil
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func destroyPipeline(device vk.Device, p *pipelineObj) {
	vk.DestroyPipeline(device, p.handle, nil)
}

// safeString returns a NUL-terminated C string, mirroring the teacher's
// util.go safeString helper.
func safeString(s string) string {
	return s + "\x00"
}
