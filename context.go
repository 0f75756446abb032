package vkrt

import (
	"github.com/andewx/vkrt/internal/corelog"
	vk "github.com/vulkan-go/vulkan"
)

// Context owns every Vulkan object this package creates: instance,
// device, queue, allocator, staging ring, caches, and the
// FramesInFlight-deep scheduler state. One Context per window; nothing
// here is safe to call from more than one goroutine, and no two public
// methods may be in flight at once (§4.1).
//
// Grounded on the teacher's context.go `context` struct, reshaped from
// its one-hardcoded-pipeline layout into the cache-backed, handle-based
// layout this spec requires.
type Context struct {
	instance vk.Instance
	gpu      vk.PhysicalDevice
	device   vk.Device

	graphicsQueue queueInfo
	maxAnisotropy float32

	allocator *allocator
	staging   *stagingRing

	pendingCopies   pendingCopyQueue
	pendingPasses   []RenderPassData
	activeSwapchain Handle
	activeWindow    WindowSource

	buffers       *pool[*Buffer]
	images        *pool[*Image]
	shaders       *pool[*shaderProgram]
	pipelines     *pool[*pipelineObj]
	swapchains    *pool[*swapchainState]
	renderTargets *pool[*RenderTarget]

	renderPassCache *cache[renderPassKey, vk.RenderPass]
	setLayoutCache  *cache[descriptorSetLayoutKey, vk.DescriptorSetLayout]
	layoutCache     *cache[pipelineLayoutKey, vk.PipelineLayout]
	framebufferCache *cache[framebufferKey, vk.Framebuffer]
	pipelineCache   vk.PipelineCache

	frames     [FramesInFlight]*perFrameState
	frameIndex int
	state      frameState

	pendingDestroy []pendingDestroyEntry

	debug *debugMessenger
	log   *corelog.Logger
}

type pendingDestroyEntry struct {
	remaining int
	fn        func()
}

// New implements the context constructor of §4.1: negotiate instance
// layers/extensions, pick the physical device with the largest
// device-local heap, open a logical device with the features this layer
// needs, and stand up the allocator/staging/frame state.
func New(cfg Config, window WindowSource) (*Context, error) {
	log := corelog.New("vkrt", cfg.LogFn, cfg.WarnFn)

	layers := resolveValidationLayers(cfg.EnableValidation, log)
	extensions, debugAttached, err := resolveInstanceExtensions(window.RequiredInstanceExtensions(), cfg.EnableValidation)
	if err != nil {
		return nil, err
	}

	appName := cfg.AppName
	if appName == "" {
		appName = "vkrt"
	}
	instance, err := createInstance(appName, cfg.AppVersion, layers, extensions)
	if err != nil {
		return nil, err
	}

	debug, err := attachDebugMessenger(instance, debugAttached, log)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	gpu, err := selectPhysicalDevice(instance)
	if err != nil {
		debug.destroy()
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	family, ok := resolveGraphicsTransferFamily(gpu)
	if !ok {
		debug.destroy()
		vk.DestroyInstance(instance, nil)
		return nil, initFailed("no queue family exposes graphics+transfer")
	}

	device, queue, maxAniso, err := createLogicalDevice(gpu, family)
	if err != nil {
		debug.destroy()
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	c := &Context{
		instance:      instance,
		gpu:           gpu,
		device:        device,
		graphicsQueue: queueInfo{familyIndex: family, queue: queue},
		maxAnisotropy: maxAniso,
		allocator:     newAllocator(device, gpu),

		buffers:       newPool[*Buffer](),
		images:        newPool[*Image](),
		shaders:       newPool[*shaderProgram](),
		pipelines:     newPool[*pipelineObj](),
		swapchains:    newPool[*swapchainState](),
		renderTargets: newPool[*RenderTarget](),

		renderPassCache:  newCache[renderPassKey, vk.RenderPass](hashRenderPassKey, eqRenderPassKey),
		setLayoutCache:   newCache[descriptorSetLayoutKey, vk.DescriptorSetLayout](hashDescriptorSetLayoutKey, eqDescriptorSetLayoutKey),
		layoutCache:      newCache[pipelineLayoutKey, vk.PipelineLayout](hashPipelineLayoutKey, eqPipelineLayoutKey),
		framebufferCache: newCache[framebufferKey, vk.Framebuffer](hashFramebufferKey, eqFramebufferKey),

		debug: debug,
		log:   log,
	}

	var pcRet vk.PipelineCache
	ret := vk.CreatePipelineCache(device, &vk.PipelineCacheCreateInfo{SType: vk.StructureTypePipelineCacheCreateInfo}, nil, &pcRet)
	if isError(ret) {
		c.Destroy()
		return nil, mapResult(ret)
	}
	c.pipelineCache = pcRet

	for i := 0; i < FramesInFlight; i++ {
		pf, err := newPerFrameState(device, family)
		if err != nil {
			c.Destroy()
			return nil, err
		}
		c.frames[i] = pf
	}

	staging, err := newStagingRing(c, cfg.stagingBufferSize())
	if err != nil {
		c.Destroy()
		return nil, err
	}
	c.staging = staging

	return c, nil
}

func createInstance(appName string, appVersion uint32, layers, extensions []string) (vk.Instance, error) {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(appName),
		ApplicationVersion: appVersion,
		PEngineName:        safeString("vkrt"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 2, 0),
	}
	info := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}
	var instance vk.Instance
	ret := vk.CreateInstance(&info, nil, &instance)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	vk.InitInstance(instance)
	return instance, nil
}

// selectPhysicalDevice picks the suitable device exposing the largest
// device-local heap, grounded on the teacher's queue.go IsDeviceSuitable
// generalized with an explicit ranking instead of "first suitable".
func selectPhysicalDevice(instance vk.Instance) (vk.PhysicalDevice, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	if isError(ret) || count == 0 {
		return nil, initFailed("no Vulkan-capable physical device found")
	}
	devices := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, devices)
	if isError(ret) {
		return nil, mapResult(ret)
	}

	var best vk.PhysicalDevice
	var bestHeap vk.DeviceSize
	for _, gpu := range devices {
		if !deviceSuitable(gpu) {
			continue
		}
		var props vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(gpu, &props)
		props.Deref()
		var heap vk.DeviceSize
		for i := uint32(0); i < props.MemoryHeapCount; i++ {
			props.MemoryHeaps[i].Deref()
			if props.MemoryHeaps[i].Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 && props.MemoryHeaps[i].Size > heap {
				heap = props.MemoryHeaps[i].Size
			}
		}
		if best == nil || heap > bestHeap {
			best, bestHeap = gpu, heap
		}
	}
	if best == nil {
		return nil, initFailed("no physical device supports the required device extensions")
	}
	return best, nil
}

// createLogicalDevice opens the device with samplerAnisotropy,
// shaderSampledImageArrayDynamicIndexing, and fillModeNonSolid enabled
// (§4.1), grounded on the teacher's queue.go GetCreateInfos.
func createLogicalDevice(gpu vk.PhysicalDevice, family uint32) (vk.Device, vk.Queue, float32, error) {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &features)
	features.Deref()
	features.SamplerAnisotropy = vk.True
	features.ShaderSampledImageArrayDynamicIndexing = vk.True
	features.FillModeNonSolid = vk.True

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	props.Limits.Deref()
	maxAniso := props.Limits.MaxSamplerAnisotropy

	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	exts := deviceExtensions()
	info := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueInfo},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		PEnabledFeatures:        &features,
	}
	var device vk.Device
	ret := vk.CreateDevice(gpu, &info, nil, &device)
	if isError(ret) {
		return nil, nil, 0, mapResult(ret)
	}

	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)
	return device, queue, maxAniso, nil
}

// enqueueDestroy enrolls fn to run once the GPU can no longer be using
// the resource it tears down: FramesInFlight advanceFrame cycles from
// now, after their fences have all been observed signaled (§4.1 deferred
// destruction). Public destroy_* methods never call Vulkan teardown
// functions directly for resources already submitted against.
func (c *Context) enqueueDestroy(fn func()) {
	c.pendingDestroy = append(c.pendingDestroy, pendingDestroyEntry{remaining: FramesInFlight, fn: fn})
}

func (c *Context) drainPendingDestroys(frameIdx int) {
	kept := c.pendingDestroy[:0]
	for _, e := range c.pendingDestroy {
		e.remaining--
		if e.remaining <= 0 {
			e.fn()
			continue
		}
		kept = append(kept, e)
	}
	c.pendingDestroy = kept
}

// WaitIdle blocks until the device has finished all outstanding work
// (§4.8 wait_device_idle): used before Destroy and before any swapchain
// resize that can't tolerate in-flight frames.
func (c *Context) WaitIdle() error {
	if ret := vk.DeviceWaitIdle(c.device); isError(ret) {
		return mapResult(ret)
	}
	return nil
}

// Destroy tears the context down in the reverse order of construction
// (§4.1). A buffer, image, pipeline or swapchain pool that still holds
// live entries is a caller bug and is reported with a warning through
// the logger; Destroy does not panic, and it does not tear down
// leftover buffers, images or pipelines (leftover swapchains are).
func (c *Context) Destroy() {
	_ = c.WaitIdle()

	for _, e := range c.pendingDestroy {
		e.fn()
	}
	c.pendingDestroy = nil

	if !c.buffers.empty() {
		c.log.Warn("Destroy called with live buffers still enrolled")
	}
	if !c.images.empty() {
		c.log.Warn("Destroy called with live images still enrolled")
	}
	if !c.pipelines.empty() {
		c.log.Warn("Destroy called with live pipelines still enrolled")
	}
	if !c.swapchains.empty() {
		c.log.Warn("Destroy called with live swapchains still enrolled")
	}

	c.renderPassCache.Each(func(_ renderPassKey, rp vk.RenderPass) { vk.DestroyRenderPass(c.device, rp, nil) })
	c.setLayoutCache.Each(func(_ descriptorSetLayoutKey, l vk.DescriptorSetLayout) { vk.DestroyDescriptorSetLayout(c.device, l, nil) })
	c.layoutCache.Each(func(_ pipelineLayoutKey, l vk.PipelineLayout) { vk.DestroyPipelineLayout(c.device, l, nil) })
	c.framebufferCache.Each(func(_ framebufferKey, fb vk.Framebuffer) { vk.DestroyFramebuffer(c.device, fb, nil) })

	if c.pipelineCache != vk.NullPipelineCache {
		vk.DestroyPipelineCache(c.device, c.pipelineCache, nil)
	}

	if c.staging != nil {
		c.staging.destroy(c)
	}

	for i := 0; i < FramesInFlight; i++ {
		if c.frames[i] != nil {
			c.frames[i].destroy(c.device)
		}
	}

	c.swapchains.each(func(_ Handle, st *swapchainState) { c.destroySwapchainViewsAndHandle(st) })

	if c.device != nil {
		vk.DestroyDevice(c.device, nil)
	}
	c.debug.destroy()
	if c.instance != nil {
		vk.DestroyInstance(c.instance, nil)
	}
}

func (c *Context) destroySwapchainViewsAndHandle(st *swapchainState) {
	c.destroySwapchainViews(st)
	vk.DestroySwapchain(c.device, st.handle, nil)
	vk.DestroySurface(c.instance, st.surface, nil)
}
