// Command demo opens a window and clears it every frame through vkrt,
// mirroring the shape of the teacher's test/render_test.go but driving
// the public Context API instead of a hardcoded asche pipeline.
package main

import (
	"log"
	"runtime"
	"unsafe"

	"github.com/andewx/vkrt"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

const (
	width  = 800
	height = 600
)

func main() {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		log.Fatal(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, "vkrt demo", nil, nil)
	if err != nil {
		log.Fatal(err)
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		log.Fatal(err)
	}

	window := vkrt.NewGLFWWindow(win)

	ctx, err := vkrt.New(vkrt.Config{
		AppName:          "vkrt-demo",
		EnableValidation: true,
		LogFn:            func(s string) { log.Println("[vkrt]", s) },
		WarnFn:           func(s string) { log.Println("[vkrt:warn]", s) },
	}, window)
	if err != nil {
		log.Fatal(err)
	}
	defer ctx.Destroy()

	swapchain, err := ctx.CreateSwapchain(window, vkrt.FormatB8G8R8A8Unorm, vkrt.PresentModeFIFO)
	if err != nil {
		log.Fatal(err)
	}
	ctx.SetPresentTarget(swapchain, window)

	target, err := ctx.CreateSwapchainRenderTarget(swapchain)
	if err != nil {
		log.Fatal(err)
	}

	attachments := vkrt.RenderPassAttachments{Attachments: []vkrt.AttachmentDescription{
		{
			Format:    vkrt.FormatB8G8R8A8Unorm,
			Samples:   1,
			Load:      vkrt.RenderPassLoadClear,
			Store:     vkrt.RenderPassStoreStore,
			Initial:   vkrt.RenderPassLayoutUndefined,
			Final:     vkrt.RenderPassLayoutPresent,
			Reference: vkrt.AttachmentReferenceColorAttachment,
		},
	}}

	var proj lin.Mat4x4
	vkrt.ClipProjection(&proj, lin.DegreesToRadians(45.0), float32(width)/float32(height), 0.1, 100.0)
	projBytes := unsafe.Sizeof(proj)

	uniform, err := ctx.CreateBuffer(uint64(projBytes), vkrt.BufferTypeUniform, vkrt.MemoryUsageCPUToGPU)
	if err != nil {
		log.Fatal(err)
	}
	defer ctx.DestroyBuffer(uniform)

	mapped, err := ctx.BeginMapBuffer(uniform)
	if err != nil {
		log.Fatal(err)
	}
	copy(mapped, unsafe.Slice((*byte)(unsafe.Pointer(&proj)), int(projBytes)))
	if err := ctx.EndMapBuffer(uniform); err != nil {
		log.Fatal(err)
	}

	for !win.ShouldClose() {
		glfw.PollEvents()

		ctx.SubmitPass(vkrt.RenderPassData{
			Target:      []vkrt.RenderTargetRef{{RenderTarget: target}},
			Attachments: attachments,
			ClearValues: []vkrt.ClearValue{{Color: &vkrt.ClearColor{R: 0.02, G: 0.02, B: 0.05, A: 1}}},
			View:        vkrt.Viewport{Width: float32(width), Height: float32(height), MaxDepth: 1},
		})

		if err := ctx.AdvanceFrame(); err != nil {
			log.Println("advance frame:", err)
			break
		}
	}
}
