package algo

import (
	"github.com/clarenceliu/lpc1857-dfusec/region"
)

const sramBufferSize = 2048

// Fixed on-chip RAM blocks. These are always present regardless of the
// flash configuration.
var sramBlocks = []struct {
	addr uint32
	size uint32
	name string
}{
	{0x10000000, 0x20000, "Local SRAM 1"},
	{0x10080000, 0x12000, "Local SRAM 2"},
	{0x20000000, 0x8000, "AHB SRAM 1"},
	{0x20080000, 0x4000, "AHB SRAM 2"},
	{0x200C0000, 0x4000, "ETB SRAM"},
}

// SRAM exposes the on-chip RAM blocks as programmable regions. Erase is a
// zero fill; write and read are plain copies. Every operation is bounds
// checked against the block tables, since a stray address here would
// clobber live memory rather than fail in a controller.
type SRAM struct {
	bus   MemoryBus
	debug region.DebugFunc
}

// NewSRAM returns a RAM driver over bus. Diagnostics are reported through
// debug, which may be nil.
func NewSRAM(bus MemoryBus, debug region.DebugFunc) *SRAM {
	if bus == nil {
		panic("memory bus cannot be nil")
	}
	return &SRAM{bus: bus, debug: debug}
}

// Init returns the fixed block list, at most avail entries.
func (s *SRAM) Init(avail int) []region.Region {
	n := len(sramBlocks)
	if avail < n {
		n = avail
	}

	regions := make([]region.Region, 0, n)
	for _, b := range sramBlocks[:n] {
		regions = append(regions, region.Region{
			Addr:       b.addr,
			Size:       b.size,
			Name:       b.name,
			Algo:       s,
			BufferSize: sramBufferSize,
		})
	}
	return regions
}

// contains reports whether [addr, addr+size) sits inside a single block.
func (s *SRAM) contains(addr, size uint32) bool {
	for _, b := range sramBlocks {
		if addr >= b.addr && addr+size <= b.addr+b.size {
			return true
		}
	}
	return false
}

// EraseRegion zero-fills [addr, addr+size).
func (s *SRAM) EraseRegion(addr, size uint32) (uint32, error) {
	s.debugf("RAMERASE: 0x%08X with size 0x%X\n", addr, size)

	if !s.contains(addr, size) {
		s.debugf("RAM: Address range outside block\n")
		return 0, &RangeError{Op: "ram erase", Addr: addr, Size: size}
	}
	if err := s.bus.Fill(addr, size, 0); err != nil {
		return 0, &HardwareError{Op: "ram erase", Addr: addr, Err: err}
	}
	return size, nil
}

// EraseAll zero-fills the whole block; the dispatcher passes its base and
// extent.
func (s *SRAM) EraseAll(addr, size uint32) (uint32, error) {
	return s.EraseRegion(addr, size)
}

// Write copies buf to addr.
func (s *SRAM) Write(buf []byte, addr uint32) (uint32, error) {
	size := uint32(len(buf))
	s.debugf("RAMWRITE: 0x%08X with size 0x%X\n", addr, size)

	if !s.contains(addr, size) {
		s.debugf("RAM: Address range outside block\n")
		return 0, &RangeError{Op: "ram write", Addr: addr, Size: size}
	}
	if err := s.bus.WriteAt(addr, buf); err != nil {
		return 0, &HardwareError{Op: "ram write", Addr: addr, Err: err}
	}
	return size, nil
}

// Read copies from addr into buf.
func (s *SRAM) Read(buf []byte, addr uint32) (uint32, error) {
	size := uint32(len(buf))
	s.debugf("RAMREAD @ 0x%08X, 0x%X bytes\n", addr, size)

	if !s.contains(addr, size) {
		s.debugf("RAM: Address range outside block\n")
		return 0, &RangeError{Op: "ram read", Addr: addr, Size: size}
	}
	if err := s.bus.ReadAt(buf, addr); err != nil {
		return 0, &HardwareError{Op: "ram read", Addr: addr, Err: err}
	}
	return size, nil
}

// Close releases nothing.
func (s *SRAM) Close(addr uint32) error {
	return nil
}

func (s *SRAM) debugf(format string, args ...interface{}) {
	if s.debug != nil {
		s.debug(format, args...)
	}
}
