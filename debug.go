package vkrt

import (
	"unsafe"

	"github.com/andewx/vkrt/internal/corelog"
	vk "github.com/vulkan-go/vulkan"
)

// debugMessenger wraps the VK_EXT_debug_report callback, the same
// mechanism the teacher's platform.go uses. Supplementing the teacher,
// whose three log files (core.go NewBaseCore) never touch validation
// output at all; this bridges it into the same corelog/LogFn-WarnFn path
// everything else uses (§12 SUPPLEMENTED FEATURES). Attaching the
// callback is best-effort: a driver/host without the extension simply
// runs without one.
type debugMessenger struct {
	instance vk.Instance
	handle   vk.DebugReportCallback
}

// attachDebugMessenger creates a callback when VK_EXT_debug_report was
// negotiated into the instance; returns (nil, nil) otherwise.
func attachDebugMessenger(instance vk.Instance, attached bool, log *corelog.Logger) (*debugMessenger, error) {
	if !attached {
		return nil, nil
	}
	var cb vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit) | vk.DebugReportFlags(vk.DebugReportWarningBit) |
			vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit),
		PfnCallback: debugCallback(log),
	}, nil, &cb)
	if isError(ret) {
		log.Warn("debug messenger unavailable, continuing without validation bridging: " + mapResult(ret).Error())
		return nil, nil
	}
	return &debugMessenger{instance: instance, handle: cb}, nil
}

func debugCallback(log *corelog.Logger) vk.DebugReportCallbackFunction {
	return func(flags vk.DebugReportFlags, objType vk.DebugReportObjectType, obj uint64, location uint, code int32, layerPrefix, message string, userData unsafe.Pointer) vk.Bool32 {
		if flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0 || flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0 {
			log.Warn(layerPrefix + ": " + message)
		} else {
			log.Info(layerPrefix + ": " + message)
		}
		return vk.Bool32(vk.False)
	}
}

func (d *debugMessenger) destroy() {
	if d == nil || d.handle == 0 {
		return
	}
	vk.DestroyDebugReportCallback(d.instance, d.handle, nil)
}
