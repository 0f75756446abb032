package vkrt

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// GLFWWindow adapts a *glfw.Window to WindowSource, grounded on the
// teacher's test/render_test.go GLFW setup — the only window toolkit
// anything in this corpus wires up to Vulkan.
type GLFWWindow struct {
	win *glfw.Window
}

// NewGLFWWindow wraps an already-created GLFW window. The caller is
// responsible for glfw.Init/glfw.WindowHint(ClientAPI, NoAPI) before
// creating it, same as the teacher's test does.
func NewGLFWWindow(win *glfw.Window) *GLFWWindow {
	return &GLFWWindow{win: win}
}

func (w *GLFWWindow) Descriptor() WindowDescriptor {
	return WindowDescriptor{Platform: PlatformUnknown}
}

func (w *GLFWWindow) CreateSurface(inst vk.Instance) (vk.Surface, error) {
	surfPtr, err := w.win.CreateWindowSurface(inst, nil)
	if err != nil {
		return vk.NullSurface, initFailed("glfw surface creation failed: " + err.Error())
	}
	return vk.SurfaceFromPointer(surfPtr), nil
}

func (w *GLFWWindow) FramebufferSize() (uint32, uint32) {
	width, height := w.win.GetFramebufferSize()
	return uint32(width), uint32(height)
}

func (w *GLFWWindow) RequiredInstanceExtensions() []string {
	return glfw.GetRequiredInstanceExtensions()
}
