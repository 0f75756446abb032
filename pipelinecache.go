package vkrt

import vk "github.com/vulkan-go/vulkan"

// resolveDescriptorSetLayout returns the cached layout for key, creating
// one on miss (§4.3). Grounded on the teacher's buffers.go
// NewCoreUniformBuffer, which builds one ad hoc DescriptorSetLayoutCreateInfo
// per uniform buffer; generalized into a structural cache shared by every
// (set) of a ShaderSource.
func (c *Context) resolveDescriptorSetLayout(key descriptorSetLayoutKey) (vk.DescriptorSetLayout, error) {
	if l, ok := c.setLayoutCache.Find(key); ok {
		return l, nil
	}
	bindings := make([]vk.DescriptorSetLayoutBinding, len(key.Bindings))
	for i, b := range key.Bindings {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Index,
			DescriptorType:  b.Type,
			DescriptorCount: b.Count,
			StageFlags:      b.StageFlags,
		}
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(c.device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}, nil, &layout)
	if isError(ret) {
		return vk.NullDescriptorSetLayout, mapResult(ret)
	}
	c.setLayoutCache.Add(key, layout)
	return layout, nil
}

// resolvePipelineLayout returns the cached pipeline layout for key,
// creating one on miss (§4.3).
func (c *Context) resolvePipelineLayout(key pipelineLayoutKey) (vk.PipelineLayout, error) {
	if l, ok := c.layoutCache.Find(key); ok {
		return l, nil
	}
	var ranges []vk.PushConstantRange
	for _, p := range key.PushConstant {
		ranges = append(ranges, vk.PushConstantRange{StageFlags: p.StageFlags, Offset: p.Offset, Size: p.Size})
	}
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(c.device, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(key.SetLayouts)),
		PSetLayouts:            key.SetLayouts,
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}, nil, &layout)
	if isError(ret) {
		return vk.NullPipelineLayout, mapResult(ret)
	}
	c.layoutCache.Add(key, layout)
	return layout, nil
}

// buildRootSignature resolves every set of a RootSignature into cached
// descriptor-set layouts, then the pipeline layout built from them.
func (c *Context) buildRootSignature(root RootSignature) (vk.PipelineLayout, []vk.DescriptorSetLayout, error) {
	setLayouts := make([]vk.DescriptorSetLayout, len(root.SetLayouts))
	for i, bindings := range root.SetLayouts {
		key := descriptorSetLayoutKey{}
		for _, b := range bindings {
			key.Bindings = append(key.Bindings, bindingDesc{
				Index: uint32(len(key.Bindings)), Type: b.Type.vk(), Count: b.Count, StageFlags: b.StageFlags,
			})
		}
		l, err := c.resolveDescriptorSetLayout(key)
		if err != nil {
			return vk.NullPipelineLayout, nil, err
		}
		setLayouts[i] = l
	}
	layout, err := c.resolvePipelineLayout(pipelineLayoutKey{SetLayouts: setLayouts, PushConstant: root.PushConstant})
	return layout, setLayouts, err
}

// resolveDescriptorSet implements §4.7.4's per-(pipeline-layout,
// frame-index) descriptor-set cache: on miss, allocate from that
// layout's pool and write it; on hit, reuse the existing set untouched.
func (c *Context) resolveDescriptorSet(frame int, pipelineLayout vk.PipelineLayout, setLayout vk.DescriptorSetLayout, key descriptorSetWriteKey) (vk.DescriptorSet, error) {
	pf := c.frames[frame]
	mgr, ok := pf.descriptorPools[pipelineLayout]
	if !ok {
		mgr = newDescriptorPoolManager(c.device)
		pf.descriptorPools[pipelineLayout] = mgr
	}
	if ds, ok := mgr.cache.Find(key); ok {
		return ds, nil
	}

	ds, err := mgr.allocate(setLayout)
	if err != nil {
		return vk.NullDescriptorSet, err
	}
	writeDescriptorSet(c.device, ds, key)
	mgr.cache.Add(key, ds)
	return ds, nil
}

// descriptorPoolManager owns one descriptor pool per
// pipeline-layout-per-frame, and the write-key cache of sets allocated
// from it (§3 PerFrameState.per-pipeline-layout descriptor-pool manager
// map). The pool holds at most descriptorPoolCapacity sets and is not
// grown: once it is exhausted, allocate returns the Vulkan error.
type descriptorPoolManager struct {
	device vk.Device
	pool   vk.DescriptorPool
	cache  *cache[descriptorSetWriteKey, vk.DescriptorSet]
	count  uint32
}

const descriptorPoolCapacity = 256

func newDescriptorPoolManager(device vk.Device) *descriptorPoolManager {
	return &descriptorPoolManager{
		device: device,
		cache:  newCache[descriptorSetWriteKey, vk.DescriptorSet](hashDescriptorSetWriteKey, eqDescriptorSetWriteKey),
	}
}

func (m *descriptorPoolManager) ensurePool() error {
	if m.pool != vk.NullDescriptorPool {
		return nil
	}
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: descriptorPoolCapacity},
		{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: descriptorPoolCapacity},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: descriptorPoolCapacity},
	}
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(m.device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       descriptorPoolCapacity,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}, nil, &pool)
	if isError(ret) {
		return mapResult(ret)
	}
	m.pool = pool
	return nil
}

func (m *descriptorPoolManager) allocate(layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	if err := m.ensurePool(); err != nil {
		return vk.NullDescriptorSet, err
	}
	sets := make([]vk.DescriptorSet, 1)
	ret := vk.AllocateDescriptorSets(m.device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     m.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, sets)
	if isError(ret) {
		return vk.NullDescriptorSet, mapResult(ret)
	}
	m.count++
	return sets[0], nil
}

func (m *descriptorPoolManager) destroy() {
	if m.pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(m.device, m.pool, nil)
	}
}

func writeDescriptorSet(device vk.Device, ds vk.DescriptorSet, key descriptorSetWriteKey) {
	writes := make([]vk.WriteDescriptorSet, 0, len(key.Writes))
	for _, w := range key.Writes {
		wd := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          ds,
			DstBinding:      w.Binding,
			DescriptorCount: w.Count,
			DescriptorType:  w.Type,
		}
		if len(w.Buffers) > 0 {
			infos := make([]vk.DescriptorBufferInfo, len(w.Buffers))
			for i, b := range w.Buffers {
				infos[i] = vk.DescriptorBufferInfo{Buffer: b.Buffer, Offset: vk.DeviceSize(b.Offset), Range: vk.DeviceSize(b.Range)}
			}
			wd.PBufferInfo = infos
		}
		if len(w.Images) > 0 {
			infos := make([]vk.DescriptorImageInfo, len(w.Images))
			for i, im := range w.Images {
				infos[i] = vk.DescriptorImageInfo{ImageView: im.View, Sampler: im.Sampler, ImageLayout: im.Layout}
			}
			wd.PImageInfo = infos
		}
		writes = append(writes, wd)
	}
	if len(writes) > 0 {
		vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
	}
}
