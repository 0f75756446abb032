package vkrt

import vk "github.com/vulkan-go/vulkan"

// swapchainState is what a Swapchain handle names (§3). Grounded on the
// teacher's context.go prepareSwapchain/SwapchainImageResources, adapted
// to validate format/present-mode instead of asche's first-match
// enumeration, and to recreate in place via VkSwapchainCreateInfoKHR's
// OldSwapchain field exactly as the teacher does.
type swapchainState struct {
	handle      vk.Swapchain
	surface     vk.Surface
	format      vk.Format
	colorSpace  vk.ColorSpace
	presentMode vk.PresentMode
	width       uint32
	height      uint32

	images []vk.Image
	views  []vk.ImageView
}

// createSwapchain implements create_swapchain (§4.8, §4.6): validate the
// requested surface format/present mode against the device's supported
// set, clamp the image count to the surface's min/max, and build the
// swapchain. window is consulted only to create the surface and for the
// framebuffer size (§6 seam).
func (c *Context) createSwapchain(window WindowSource, format Format, present PresentMode) (Handle, error) {
	surface, err := window.CreateSurface(c.instance)
	if err != nil {
		return NullHandle, err
	}
	if err := assertSinglePresentQueue(c.gpu, c.graphicsQueue.familyIndex, surface); err != nil {
		vk.DestroySurface(c.instance, surface, nil)
		return NullHandle, err
	}

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(c.gpu, surface, &caps)
	if isError(ret) {
		return NullHandle, mapResult(ret)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()

	wantFormat := format.vk()
	wantSpace := vk.ColorSpaceSrgbNonlinear
	if !c.surfaceFormatSupported(surface, wantFormat, wantSpace) {
		return NullHandle, newErr(ErrUnsupportedSurfaceFormat, "requested surface format unsupported by this device/surface")
	}
	wantPresent := present.vk()
	if !c.surfacePresentModeSupported(surface, wantPresent) {
		return NullHandle, newErr(ErrUnsupportedPresentMode, "requested present mode unsupported by this device/surface")
	}

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	width, height := window.FramebufferSize()
	extent := vk.Extent2D{Width: width, Height: height}
	if caps.CurrentExtent.Width != 0xFFFFFFFF {
		extent = caps.CurrentExtent
	}

	st := &swapchainState{surface: surface, format: wantFormat, colorSpace: wantSpace, presentMode: wantPresent, width: extent.Width, height: extent.Height}
	if err := c.buildSwapchain(st, imageCount, extent, vk.NullSwapchain); err != nil {
		return NullHandle, err
	}
	return c.swapchains.add(st), nil
}

func (c *Context) surfaceFormatSupported(surface vk.Surface, format vk.Format, space vk.ColorSpace) bool {
	var count uint32
	vk.GetPhysicalDeviceSurfaceFormats(c.gpu, surface, &count, nil)
	if count == 0 {
		return false
	}
	formats := make([]vk.SurfaceFormat, count)
	vk.GetPhysicalDeviceSurfaceFormats(c.gpu, surface, &count, formats)
	for i := range formats {
		formats[i].Deref()
		if formats[i].Format == vk.FormatUndefined {
			return true // surface has no preference
		}
		if formats[i].Format == format && formats[i].ColorSpace == space {
			return true
		}
	}
	return false
}

func (c *Context) surfacePresentModeSupported(surface vk.Surface, mode vk.PresentMode) bool {
	var count uint32
	vk.GetPhysicalDeviceSurfacePresentModes(c.gpu, surface, &count, nil)
	if count == 0 {
		return false
	}
	modes := make([]vk.PresentMode, count)
	vk.GetPhysicalDeviceSurfacePresentModes(c.gpu, surface, &count, modes)
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (c *Context) buildSwapchain(st *swapchainState, imageCount uint32, extent vk.Extent2D, old vk.Swapchain) error {
	var sc vk.Swapchain
	ret := vk.CreateSwapchain(c.device, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          st.surface,
		MinImageCount:    imageCount,
		ImageFormat:      st.format,
		ImageColorSpace:  st.colorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit) | vk.ImageUsageFlags(vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformIdentityBit,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      st.presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}, nil, &sc)
	if isError(ret) {
		return mapResult(ret)
	}
	if old != vk.NullSwapchain {
		vk.DestroySwapchain(c.device, old, nil)
	}

	var count uint32
	vk.GetSwapchainImages(c.device, sc, &count, nil)
	images := make([]vk.Image, count)
	vk.GetSwapchainImages(c.device, sc, &count, images)

	views := make([]vk.ImageView, count)
	for i, img := range images {
		ret = vk.CreateImageView(c.device, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   st.format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LevelCount: 1, LayerCount: 1,
			},
		}, nil, &views[i])
		if isError(ret) {
			return mapResult(ret)
		}
	}

	st.handle = sc
	st.width, st.height = extent.Width, extent.Height
	st.images = images
	st.views = views
	return nil
}

// recreateSwapchain rebuilds a swapchain in place (window resize, or
// ERROR_OUT_OF_DATE/SUBOPTIMAL recovery per §4.6).
func (c *Context) recreateSwapchain(h Handle, window WindowSource) error {
	st, ok := c.swapchains.get(h)
	if !ok {
		return newErr(ErrInternal, "unknown swapchain handle")
	}
	c.destroySwapchainViews(st)

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(c.gpu, st.surface, &caps)
	if isError(ret) {
		return mapResult(ret)
	}
	caps.Deref()
	width, height := window.FramebufferSize()
	extent := vk.Extent2D{Width: width, Height: height}
	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}
	old := st.handle
	return c.buildSwapchain(st, imageCount, extent, old)
}

// acquireImage implements the §4.6 acquire step: acquire with one
// automatic retry through recreateSwapchain on OUT_OF_DATE, surfacing
// SUBOPTIMAL as a non-fatal signal to the caller via the returned bool.
// sem is the caller's current frame-in-flight slot's acquire semaphore
// (§4.7 PerFrameState) — it must not be shared with any other slot that
// may still have a wait on it pending (a fresh vk.Semaphore per
// in-flight frame, not per swapchain image, as the teacher's instance.go
// PerFrame.image_acquired does).
func (c *Context) acquireImage(h Handle, window WindowSource, sem vk.Semaphore, fence vk.Fence) (imageIndex uint32, suboptimal bool, err error) {
	st, ok := c.swapchains.get(h)
	if !ok {
		return 0, false, newErr(ErrInternal, "unknown swapchain handle")
	}

	for attempt := 0; attempt < 2; attempt++ {
		ret := vk.AcquireNextImage(c.device, st.handle, MaxFenceTimeout, sem, fence, &imageIndex)
		switch ret {
		case vk.Success:
			return imageIndex, false, nil
		case vk.Suboptimal:
			return imageIndex, true, nil
		case vk.ErrorOutOfDate:
			if attempt == 0 {
				if rerr := c.recreateSwapchain(h, window); rerr != nil {
					return 0, false, rerr
				}
				continue
			}
			return 0, false, mapResult(ret)
		default:
			return 0, false, mapResult(ret)
		}
	}
	return 0, false, newErr(ErrSwapchainOutOfDate, "swapchain still out of date after recreate")
}

func (c *Context) destroySwapchainViews(st *swapchainState) {
	for _, v := range st.views {
		vk.DestroyImageView(c.device, v, nil)
	}
	st.views = nil
	st.images = nil
}

func (c *Context) destroySwapchain(h Handle) {
	st, ok := c.swapchains.get(h)
	if !ok {
		return
	}
	c.destroySwapchainViews(st)
	vk.DestroySwapchain(c.device, st.handle, nil)
	vk.DestroySurface(c.instance, st.surface, nil)
	c.swapchains.release(h)
}
