package vkrt

import vk "github.com/vulkan-go/vulkan"

// WindowDescriptor is the platform-tagged opaque handle the core consumes
// only to produce a vk.Surface (§6). The windowing/surface source itself
// is explicitly out of scope; this is the seam.
type WindowDescriptor struct {
	// Win32 carries {HINSTANCE, HWND} when Platform == PlatformWin32.
	Win32 struct {
		HInstance uintptr
		HWnd      uintptr
	}
	// X11 carries {Display*, Window} when Platform == PlatformX11.
	X11 struct {
		Display uintptr
		Window  uintptr
	}
	Platform PlatformKind
}

// PlatformKind tags which field of WindowDescriptor is populated.
type PlatformKind uint32

const (
	PlatformUnknown PlatformKind = iota
	PlatformWin32
	PlatformX11
)

// WindowSource is the external collaborator that produces a window and
// the vk.Surface bound to it. The core never creates a window itself;
// a client (or cmd/demo, via GLFW) implements this.
type WindowSource interface {
	// Descriptor returns the platform-tagged window handle.
	Descriptor() WindowDescriptor
	// CreateSurface creates the vk.Surface for this window against inst.
	CreateSurface(inst vk.Instance) (vk.Surface, error)
	// FramebufferSize returns the current drawable size in pixels.
	FramebufferSize() (width, height uint32)
	// RequiredInstanceExtensions lists the instance extensions the
	// platform needs to create a surface (e.g. VK_KHR_win32_surface).
	RequiredInstanceExtensions() []string
}
