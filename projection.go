package vkrt

import lin "github.com/xlab/linmath"

// ClipProjection writes into proj a perspective projection matrix for the
// given vertical field of view (radians), aspect ratio, and near/far
// planes, already corrected for Vulkan's clip space: Y flipped (Vulkan's
// top-left is X=-1,Y=-1, not OpenGL's bottom-left) and depth remapped from
// GL's [-1,1] to Vulkan's [0,1]. Grounded on, and arithmetically identical
// to, the teacher's math.go VulkanProjectionMat fixup, applied here
// directly to a linmath-generated GL projection instead of being left for
// every caller to re-apply by hand.
func ClipProjection(proj *lin.Mat4x4, fovYRadians, aspect, near, far float32) {
	var gl lin.Mat4x4
	gl.Perspective(fovYRadians, aspect, near, far)

	proj.Fill(1.0)
	proj.ScaleAniso(proj, 1.0, -1.0, 1.0)
	proj.ScaleAniso(proj, 1.0, 1.0, 0.5)
	proj.Translate(0.0, 0.0, 1.0)
	proj.Mult(proj, &gl)
}
