package region

// DebugFunc receives printf-style diagnostics from the dispatcher and the
// algorithm drivers. The engine routes it into the debug sink drained by
// host status polls. A nil DebugFunc silently discards messages.
type DebugFunc func(format string, args ...interface{})

// Algorithm is the capability table every programming algorithm implements
// against one memory technology. All operations report the number of bytes
// processed; a failure returns 0 together with a typed error describing
// whether validation or hardware was at fault.
//
// The dispatcher resolves addresses before forwarding, so implementations
// may assume the range lies inside one of their own regions; they remain
// responsible for technology-specific alignment and sector rules.
type Algorithm interface {
	// EraseRegion erases the byte range [addr, addr+size)
	EraseRegion(addr, size uint32) (uint32, error)

	// EraseAll erases the full extent of a region; the dispatcher passes
	// the region's base and size
	EraseAll(addr, size uint32) (uint32, error)

	// Write programs len(buf) bytes at addr
	Write(buf []byte, addr uint32) (uint32, error)

	// Read fills buf with len(buf) bytes from addr
	Read(buf []byte, addr uint32) (uint32, error)

	// Close releases the hardware serving the region containing addr
	Close(addr uint32) error
}

// Region describes one addressable span of device memory and the algorithm
// that programs it. Regions are immutable once registered.
type Region struct {
	// Addr is the base address of the region
	Addr uint32

	// Size is the extent of the region in bytes
	Size uint32

	// Name is a short human-readable label reported to the host
	Name string

	// Algo is the programming algorithm serving the region
	Algo Algorithm

	// BufferSize is the transfer quantum used for chunked transfers
	// against this region, between protocol.MinBufferSize and
	// protocol.MaxBufferSize and a factor of the transport's maximum
	// transfer size
	BufferSize uint32
}

// End returns the first address past the region.
func (r Region) End() uint32 {
	return r.Addr + r.Size
}

// Contains reports whether the byte range [addr, addr+size) lies entirely
// inside the region. A zero size probes containment of addr alone. The
// addr+size sum uses plain uint32 arithmetic and may wrap for very large
// host-supplied sizes, matching the device ROM's range check.
func (r Region) Contains(addr, size uint32) bool {
	return addr >= r.Addr && addr+size <= r.End()
}
