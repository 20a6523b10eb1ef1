package protocol

// HeaderSize is the size in bytes of both the command header (host to
// device) and the status header (device to host).
const HeaderSize = 16

// DebugChunkSize is the maximum number of debug text bytes appended to a
// single status packet. When any debug text is present the full chunk is
// reserved in the packet, regardless of how many bytes were filled.
const DebugChunkSize = 64

// MagicTag is the protocol family tag carried in the upper 16 bits of the
// command header magic field.
const MagicTag = 0x1843

// MagicVersion is the protocol version carried in the lower 16 bits of the
// magic field, packed as major.minor (0x010B = 1.11).
const MagicVersion = 0x010B

// ValidMagic is the full magic value a compatible host tool sends with every
// command header. A mismatch produces a version warning on the debug channel
// but does not reject the command.
const ValidMagic = MagicTag<<16 | MagicVersion

// Transfer quantum limits for a region buffer. Every region reports a
// buffer size within this range, and it must divide evenly into the
// transport's maximum transfer size.
const (
	MinBufferSize = 64
	MaxBufferSize = 4096
)
