// Package vkrt is a retained-mode rendering layer over Vulkan 1.2.
//
// Clients describe a frame as render passes and copy commands against
// backend-neutral handles; the Context manages GPU resource lifetimes,
// transfer staging, swapchain acquisition, and the small pool of
// frames-in-flight behind it. Everything here runs on a single thread:
// no public method may be called concurrently with another.
package vkrt

// FramesInFlight is the number of frames the CPU may get ahead of the GPU.
const FramesInFlight = 2

// MaxFenceTimeout is the scheduler's own fence wait: effectively
// unbounded, since a frame slot's fence not signaling means the device is
// lost, not merely slow. Caller-facing WaitForFence takes its own
// timeout and reports a real expiry as ErrAcquireTimeout.
const MaxFenceTimeout = ^uint64(0)

// DefaultStagingBufferSize is the staging ring's capacity when Config
// leaves StagingBufferSize at zero.
const DefaultStagingBufferSize = 64 << 20
