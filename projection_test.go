package vkrt

import (
	"testing"

	lin "github.com/xlab/linmath"
)

func TestClipProjectionFlipsYAgainstRawGLProjection(t *testing.T) {
	const fov, aspect, near, far = 0.785, 16.0 / 9.0, 0.1, 100.0

	var gl lin.Mat4x4
	gl.Perspective(fov, aspect, near, far)

	var vulkan lin.Mat4x4
	ClipProjection(&vulkan, fov, aspect, near, far)

	if gl[1][1] == 0 {
		t.Fatalf("raw GL projection has zero Y scale, test fixture is broken")
	}
	if (vulkan[1][1] < 0) == (gl[1][1] < 0) {
		t.Fatalf("ClipProjection did not flip Y: gl[1][1]=%v vulkan[1][1]=%v", gl[1][1], vulkan[1][1])
	}
}

func TestClipProjectionIsDeterministic(t *testing.T) {
	var a, b lin.Mat4x4
	ClipProjection(&a, 0.785, 16.0/9.0, 0.1, 100.0)
	ClipProjection(&b, 0.785, 16.0/9.0, 0.1, 100.0)

	if a != b {
		t.Fatalf("ClipProjection is not deterministic for identical inputs: %v != %v", a, b)
	}
}
