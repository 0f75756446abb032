package vkrt

import vk "github.com/vulkan-go/vulkan"

// shaderProgram holds the two compiled shader modules a ShaderSource
// produces. Grounded on the teacher's shader.go ShaderProgram, adapted
// to consume in-memory SPIR-V (ShaderSource.VertexSPIRV/FragmentSPIRV)
// instead of reading a file path — bytecode loading is explicitly out of
// scope (§6).
type shaderProgram struct {
	vertex   vk.ShaderModule
	fragment vk.ShaderModule
	source   ShaderSource
}

func (c *Context) createShader(src ShaderSource) (Handle, error) {
	vert, err := loadShaderModule(c.device, src.VertexSPIRV)
	if err != nil {
		return NullHandle, err
	}
	frag, err := loadShaderModule(c.device, src.FragmentSPIRV)
	if err != nil {
		vk.DestroyShaderModule(c.device, vert, nil)
		return NullHandle, err
	}
	h := c.shaders.add(&shaderProgram{vertex: vert, fragment: frag, source: src})
	return h, nil
}

// loadShaderModule wraps the bytes in a vk.ShaderModule. Grounded on the
// teacher's extensions.go LoadShaderModule; SPIR-V words must be
// 4-byte-aligned, which a byte-buffer producer (§6) is trusted to honor.
func loadShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, mapResult(ret)
	}
	return module, nil
}

// sliceUint32 reinterprets a SPIR-V byte buffer as the []uint32 Vulkan
// expects, mirroring the teacher's util.go helper of the same name.
func sliceUint32(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
	}
	return out
}

func destroyShaderProgram(device vk.Device, s *shaderProgram) {
	vk.DestroyShaderModule(device, s.vertex, nil)
	vk.DestroyShaderModule(device, s.fragment, nil)
}
