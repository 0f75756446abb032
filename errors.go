package vkrt

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// ErrorKind is a surface-visible error taxonomy (§7). Most failures are
// returned wrapped in an *Error carrying one of these.
type ErrorKind int

const (
	// ErrUnknown is never returned; it is the zero value guard.
	ErrUnknown ErrorKind = iota
	ErrOutOfHostMemory
	ErrOutOfDeviceMemory
	ErrDeviceLost
	ErrSurfaceLost
	ErrSwapchainOutOfDate
	ErrSwapchainSuboptimal
	ErrAcquireTimeout
	ErrUnsupportedSurfaceFormat
	ErrUnsupportedPresentMode
	ErrInitFailed
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrOutOfHostMemory:
		return "OutOfHostMemory"
	case ErrOutOfDeviceMemory:
		return "OutOfDeviceMemory"
	case ErrDeviceLost:
		return "DeviceLost"
	case ErrSurfaceLost:
		return "SurfaceLost"
	case ErrSwapchainOutOfDate:
		return "SwapchainOutOfDate"
	case ErrSwapchainSuboptimal:
		return "SwapchainSuboptimal"
	case ErrAcquireTimeout:
		return "AcquireTimeout"
	case ErrUnsupportedSurfaceFormat:
		return "UnsupportedSurfaceFormat"
	case ErrUnsupportedPresentMode:
		return "UnsupportedPresentMode"
	case ErrInitFailed:
		return "InitFailed"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type every public vkrt entry point returns.
type Error struct {
	Kind   ErrorKind
	Reason string
	Result vk.Result
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("vkrt: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("vkrt: %s (vk.Result=%d)", e.Kind, e.Result)
}

func newErr(kind ErrorKind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func initFailed(reason string) *Error {
	return &Error{Kind: ErrInitFailed, Reason: reason}
}

// mapResult maps a raw vk.Result to the §7 taxonomy. SUCCESS and
// callers' own recoverable codes (OUT_OF_DATE/SUBOPTIMAL) are handled by
// their call sites before reaching here.
func mapResult(ret vk.Result) *Error {
	switch ret {
	case vk.Success:
		return nil
	case vk.ErrorOutOfHostMemory:
		return &Error{Kind: ErrOutOfHostMemory, Result: ret}
	case vk.ErrorOutOfDeviceMemory:
		return &Error{Kind: ErrOutOfDeviceMemory, Result: ret}
	case vk.ErrorDeviceLost:
		return &Error{Kind: ErrDeviceLost, Result: ret}
	case vk.ErrorSurfaceLost:
		return &Error{Kind: ErrSurfaceLost, Result: ret}
	case vk.ErrorOutOfDate:
		return &Error{Kind: ErrSwapchainOutOfDate, Result: ret}
	case vk.Suboptimal:
		return &Error{Kind: ErrSwapchainSuboptimal, Result: ret}
	case vk.Timeout:
		return &Error{Kind: ErrAcquireTimeout, Result: ret}
	default:
		return &Error{Kind: ErrInternal, Result: ret}
	}
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}
