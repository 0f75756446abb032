package vkrt

import (
	"github.com/andewx/vkrt/internal/corelog"
	vk "github.com/vulkan-go/vulkan"
)

// wantedValidationLayers is tried when Config.EnableValidation is set;
// absence of the layer on the host is non-fatal (§4.1), grounded on the
// teacher's extensions.go GetValidationLayers/ValidationLayers pair.
var wantedValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// availableInstanceLayers enumerates what the loader actually offers.
func availableInstanceLayers() (map[string]bool, error) {
	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	props := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, props)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	out := make(map[string]bool, count)
	for i := range props {
		props[i].Deref()
		out[vk.ToString(props[i].LayerName[:])] = true
	}
	return out, nil
}

// resolveValidationLayers intersects wantedValidationLayers with what the
// loader offers, logging the difference instead of failing (§4.1: a
// missing validation layer is a warning, never ErrInitFailed).
func resolveValidationLayers(enable bool, log *corelog.Logger) []string {
	if !enable {
		return nil
	}
	available, err := availableInstanceLayers()
	if err != nil {
		log.Warn("could not enumerate instance layers: " + err.Error())
		return nil
	}
	var out []string
	for _, want := range wantedValidationLayers {
		if available[want] {
			out = append(out, want)
		} else {
			log.Warn("validation layer unavailable, continuing without it: " + want)
		}
	}
	return out
}

// availableInstanceExtensions enumerates loader-supported instance
// extensions, grounded on the teacher's extensions.go InstanceExtensions.
func availableInstanceExtensions() (map[string]bool, error) {
	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	props := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, props)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	out := make(map[string]bool, count)
	for i := range props {
		props[i].Deref()
		out[vk.ToString(props[i].ExtensionName[:])] = true
	}
	return out, nil
}

// resolveInstanceExtensions builds the final instance-extension list:
// the platform's required surface extensions (always required, so a
// missing one fails init) plus the debug-report extension when validation
// was requested and is actually available (best-effort, §12), grounded on
// the teacher's platform.go VulkanDebug/CreateDebugReportCallback pairing.
func resolveInstanceExtensions(required []string, wantDebug bool) ([]string, bool, error) {
	available, err := availableInstanceExtensions()
	if err != nil {
		return nil, false, err
	}
	out := append([]string(nil), required...)
	for _, r := range required {
		if !available[r] {
			return nil, false, initFailed("required instance extension unavailable: " + r)
		}
	}
	debugAttached := false
	if wantDebug && available["VK_EXT_debug_report"] {
		out = append(out, "VK_EXT_debug_report")
		debugAttached = true
	}
	return out, debugAttached, nil
}

// deviceExtensions returns the fixed device-extension list this context
// requires: just swapchain support (§4.1; anything beyond that is out of
// scope per the Non-goals).
func deviceExtensions() []string {
	return []string{"VK_KHR_swapchain"}
}

func availableDeviceExtensions(gpu vk.PhysicalDevice) (map[string]bool, error) {
	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	props := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, props)
	if isError(ret) {
		return nil, mapResult(ret)
	}
	out := make(map[string]bool, count)
	for i := range props {
		props[i].Deref()
		out[vk.ToString(props[i].ExtensionName[:])] = true
	}
	return out, nil
}

func deviceSuitable(gpu vk.PhysicalDevice) bool {
	available, err := availableDeviceExtensions(gpu)
	if err != nil {
		return false
	}
	for _, want := range deviceExtensions() {
		if !available[want] {
			return false
		}
	}
	return true
}
