package algo

import (
	"encoding/binary"

	"github.com/clarenceliu/lpc1857-dfusec/region"
)

// EEPROM geometry. The array is mapped at a fixed address and programmed
// one 128-byte page at a time, a word per controller cycle.
const (
	eepromBase     = 0x20040000
	eepromSize     = 0x4000
	eepromPageSize = 128
)

// EEPROM programs the on-chip EEPROM array. All operations run at page
// granularity: an address anywhere inside a page targets that whole page.
// The controller accepts one 32-bit word at a time and each word must
// complete before the next is issued, so writes interleave a wait after
// every word.
type EEPROM struct {
	hw    EEPROMUnit
	debug region.DebugFunc

	page [eepromPageSize]byte
}

// NewEEPROM returns an EEPROM driver over hw. Diagnostics are reported
// through debug, which may be nil.
func NewEEPROM(hw EEPROMUnit, debug region.DebugFunc) *EEPROM {
	if hw == nil {
		panic("eeprom unit cannot be nil")
	}
	return &EEPROM{hw: hw, debug: debug}
}

// Init powers up the controller in auto-program mode and returns the
// single fixed region, at most avail entries.
func (e *EEPROM) Init(avail int) []region.Region {
	if avail < 1 {
		return nil
	}
	if err := e.hw.Init(); err != nil {
		e.debugf("EEPROM: initialization failed: %v\n", err)
		return nil
	}
	e.debugf("EEPROM: 16K available\n")

	return []region.Region{{
		Addr:       eepromBase,
		Size:       eepromSize,
		Name:       "EEPROM",
		Algo:       e,
		BufferSize: eepromPageSize,
	}}
}

func (e *EEPROM) contains(addr, size uint32) bool {
	return addr >= eepromBase && addr+size <= eepromBase+eepromSize
}

// pageBase returns the first byte of the page containing addr.
func pageBase(addr uint32) uint32 {
	return eepromBase + ((addr-eepromBase)/eepromPageSize)*eepromPageSize
}

// writePage pushes one full page through the controller word by word,
// waiting out each program cycle before issuing the next word.
func (e *EEPROM) writePage(base uint32, data []byte) error {
	for off := uint32(0); off < eepromPageSize; off += 4 {
		word := binary.LittleEndian.Uint32(data[off:])
		if err := e.hw.WriteWord(base+off, word); err != nil {
			return &HardwareError{Op: "eeprom write word", Addr: base + off, Err: err}
		}
		if err := e.hw.WaitProgram(); err != nil {
			return &HardwareError{Op: "eeprom program wait", Addr: base + off, Err: err}
		}
	}
	return nil
}

// EraseRegion zero-fills the page containing addr. The array has no bulk
// erase; clearing runs page by page as the host walks the region.
func (e *EEPROM) EraseRegion(addr, size uint32) (uint32, error) {
	e.debugf("EEPROMERASE: 0x%08X with size 0x%X\n", addr, size)

	if !e.contains(addr, size) {
		e.debugf("EEPROM: Address range outside array\n")
		return 0, &RangeError{Op: "eeprom erase", Addr: addr, Size: size}
	}

	var zero [eepromPageSize]byte
	if err := e.writePage(pageBase(addr), zero[:]); err != nil {
		return 0, err
	}
	return size, nil
}

// EraseAll clears the page at the region base.
func (e *EEPROM) EraseAll(addr, size uint32) (uint32, error) {
	return e.EraseRegion(addr, size)
}

// Write programs the page containing addr. A fragment shorter than the
// page is padded with 0xFF before programming.
func (e *EEPROM) Write(buf []byte, addr uint32) (uint32, error) {
	size := uint32(len(buf))
	e.debugf("EEPROMWRITE: 0x%08X with size 0x%X\n", addr, size)

	if size > eepromPageSize {
		e.debugf("EEPROMWRITE: Program buffer too big\n")
		return 0, &AlignmentError{Op: "eeprom write", Addr: addr, Size: size, Reason: "exceeds page quantum"}
	}
	if !e.contains(addr, size) {
		e.debugf("EEPROM: Address range outside array\n")
		return 0, &RangeError{Op: "eeprom write", Addr: addr, Size: size}
	}

	n := copy(e.page[:], buf)
	for i := n; i < eepromPageSize; i++ {
		e.page[i] = 0xFF
	}

	if err := e.writePage(pageBase(addr), e.page[:]); err != nil {
		return 0, err
	}
	return size, nil
}

// Read copies from the memory-mapped array.
func (e *EEPROM) Read(buf []byte, addr uint32) (uint32, error) {
	size := uint32(len(buf))
	e.debugf("EEPROMREAD @ 0x%08X, 0x%X bytes\n", addr, size)

	if !e.contains(addr, size) {
		e.debugf("EEPROM: Address range outside array\n")
		return 0, &RangeError{Op: "eeprom read", Addr: addr, Size: size}
	}
	if err := e.hw.Read(buf, addr); err != nil {
		return 0, &HardwareError{Op: "eeprom read", Addr: addr, Err: err}
	}
	return size, nil
}

// Close releases nothing.
func (e *EEPROM) Close(addr uint32) error {
	return nil
}

func (e *EEPROM) debugf(format string, args ...interface{}) {
	if e.debug != nil {
		e.debug(format, args...)
	}
}
