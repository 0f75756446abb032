package vkrt

// Config configures Context construction (§6). No files are read and no
// environment variables are consulted — these fields are the whole of it.
type Config struct {
	// StagingBufferSize is the capacity, in bytes, of the staging ring
	// (§4.4). Zero selects DefaultStagingBufferSize (64 MiB).
	StagingBufferSize uint64

	// LogFn receives informational messages, synchronously, from the
	// calling thread. May be nil.
	LogFn func(string)

	// WarnFn receives warning/error-severity messages, synchronously,
	// from the calling thread. May be nil.
	WarnFn func(string)

	// AppName and AppVersion identify the client application
	// to the Vulkan loader; none of it affects behavior.
	AppName    string
	AppVersion uint32

	// EnableValidation requests the standard validation layer when the
	// driver has it installed; absence is non-fatal (§4.1).
	EnableValidation bool
}

func (c Config) stagingBufferSize() uint64 {
	if c.StagingBufferSize == 0 {
		return DefaultStagingBufferSize
	}
	return c.StagingBufferSize
}
