package region

// MaxRegions is the fixed capacity of a region list.
const MaxRegions = 12

// List is the ordered registry of discovered regions plus the root
// dispatcher that routes operations to them. It is populated once at
// startup and read-only afterwards; the dispatcher methods are safe for
// use from a single operation at a time, which the state machine
// guarantees.
type List struct {
	regions [MaxRegions]Region
	count   int

	// Version tags the registry format reported to host tooling.
	Version uint32

	debug DebugFunc
}

// NewList returns an empty region list with the given format version tag.
// Diagnostics are reported through debug, which may be nil.
func NewList(version uint32, debug DebugFunc) *List {
	return &List{Version: version, debug: debug}
}

// Add appends a region in registration order. It fails once the fixed
// capacity is reached.
func (l *List) Add(r Region) error {
	if l.count >= MaxRegions {
		return &CapacityError{Name: r.Name}
	}
	l.regions[l.count] = r
	l.count++
	return nil
}

// Len returns the number of registered regions.
func (l *List) Len() int {
	return l.count
}

// Region returns the region at index i. The index must come from Resolve
// or be below Len.
func (l *List) Region(i int) Region {
	return l.regions[i]
}

// Avail returns the remaining registry capacity, passed to each algorithm
// driver during discovery.
func (l *List) Avail() int {
	return MaxRegions - l.count
}

// Resolve returns the index of the first region, in registration order,
// that contains the byte range [addr, addr+size). A zero size probes
// containment of addr alone. The failure is logged with the offending
// range, matching the behavior the host tool relies on for diagnostics.
func (l *List) Resolve(addr, size uint32) (int, bool) {
	for i := 0; i < l.count; i++ {
		if l.regions[i].Contains(addr, size) {
			return i, true
		}
	}

	l.debugf("Op on invalid region address/size: 0x%08X/0x%X\n", addr, size)
	return -1, false
}

// EraseRegion resolves the range and forwards to the owning algorithm's
// region erase.
func (l *List) EraseRegion(addr, size uint32) (uint32, error) {
	i, ok := l.Resolve(addr, size)
	if !ok {
		l.debugf("erase_region invalid: 0x%08X:0x%X\n", addr, size)
		return 0, &NoRegionError{Addr: addr, Size: size}
	}

	return l.regions[i].Algo.EraseRegion(addr, size)
}

// EraseAll resolves addr to a region and erases that region's full extent.
// Any caller-supplied size is deliberately ignored.
func (l *List) EraseAll(addr uint32) (uint32, error) {
	i, ok := l.Resolve(addr, 0)
	if !ok {
		l.debugf("eraseall_region invalid: 0x%08X\n", addr)
		return 0, &NoRegionError{Addr: addr}
	}

	r := l.regions[i]
	return r.Algo.EraseAll(r.Addr, r.Size)
}

// Write resolves the range and forwards to the owning algorithm's write.
func (l *List) Write(buf []byte, addr uint32) (uint32, error) {
	size := uint32(len(buf))
	i, ok := l.Resolve(addr, size)
	if !ok {
		l.debugf("write_region invalid: 0x%08X:0x%X\n", addr, size)
		return 0, &NoRegionError{Addr: addr, Size: size}
	}

	return l.regions[i].Algo.Write(buf, addr)
}

// Read resolves the range and forwards to the owning algorithm's read.
func (l *List) Read(buf []byte, addr uint32) (uint32, error) {
	size := uint32(len(buf))
	i, ok := l.Resolve(addr, size)
	if !ok {
		l.debugf("read_region invalid: 0x%08X:0x%X\n", addr, size)
		return 0, &NoRegionError{Addr: addr, Size: size}
	}

	return l.regions[i].Algo.Read(buf, addr)
}

// Close resolves addr and closes the owning algorithm.
func (l *List) Close(addr uint32) error {
	i, ok := l.Resolve(addr, 0)
	if !ok {
		l.debugf("close_region invalid: 0x%08X\n", addr)
		return &NoRegionError{Addr: addr}
	}

	return l.regions[i].Algo.Close(addr)
}

func (l *List) debugf(format string, args ...interface{}) {
	if l.debug != nil {
		l.debug(format, args...)
	}
}
