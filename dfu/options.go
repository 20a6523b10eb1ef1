package dfu

// Config holds the engine configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// Transport is disconnected before reset, execute and halt (optional)
	Transport Transport

	// ResetFunc triggers the hardware reset for the reset command. A nil
	// func makes reset only close the session and disconnect.
	ResetFunc func()

	// ExecFunc transfers control to the given address for the execute
	// command. A nil func makes execute only close the session and
	// disconnect.
	ExecFunc func(addr uint32)

	// SessionFallback restores the legacy behavior of selecting the
	// first registered region when a start-session address resolves to
	// no region. The default rejects the command instead.
	SessionFallback bool

	// DeviceID holds the two device identification words reported by the
	// read-ids command.
	DeviceID [2]uint32

	// Sink receives host-visible debug text. A nil sink makes the engine
	// allocate its own.
	Sink *DebugSink
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring the Engine.
type Option func(*Config)

// WithLogger sets a logger for engine operations.
//
// Example:
//
//	engine := dfu.New(regions, dfu.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTransport sets the transport the engine disconnects before reset,
// execute and halt.
func WithTransport(t Transport) Option {
	return func(c *Config) {
		c.Transport = t
	}
}

// WithResetFunc sets the hardware reset hook for the reset command.
func WithResetFunc(f func()) Option {
	return func(c *Config) {
		c.ResetFunc = f
	}
}

// WithExecFunc sets the jump hook for the execute command.
func WithExecFunc(f func(addr uint32)) Option {
	return func(c *Config) {
		c.ExecFunc = f
	}
}

// WithSessionFallback restores the legacy start-session behavior of
// falling back to the first registered region on a failed lookup. Only
// enable this for compatibility with host tools that depend on it; the
// fallback programs an unintended region when the host passes a bad
// address.
func WithSessionFallback(on bool) Option {
	return func(c *Config) {
		c.SessionFallback = on
	}
}

// WithDeviceID sets the two identification words reported by read-ids.
func WithDeviceID(id1, id2 uint32) Option {
	return func(c *Config) {
		c.DeviceID = [2]uint32{id1, id2}
	}
}

// WithDebugSink shares a debug sink between the engine and the region
// drivers, so driver diagnostics reach the host status channel.
//
// Example:
//
//	sink := dfu.NewDebugSink()
//	regions := board.Regions(protocol.ValidMagic, sink.Printf)
//	engine := dfu.New(regions, dfu.WithDebugSink(sink))
func WithDebugSink(sink *DebugSink) Option {
	return func(c *Config) {
		c.Sink = sink
	}
}
