package algo

import (
	"github.com/clarenceliu/lpc1857-dfusec/region"
)

// Internal flash geometry. The part exposes two independently erasable
// banks; each bank uses the same non-uniform sector layout of eight 8 KiB
// sectors followed by seven 64 KiB sectors. Programming operates on fixed
// 512-byte pages.
const (
	flashBankA   = 0x1A000000
	flashBankB   = 0x1B000000
	flashMaxSize = 512 * 1024
	flashPage    = 512
)

type sectorInfo struct {
	offset uint32
	size   uint32
}

// Per-bank sector layout. Board-specific; matches the LPC18xx/43xx flash
// controller and must not be edited.
var flashSectors = []sectorInfo{
	{0x00000000, 0x00002000},
	{0x00002000, 0x00002000},
	{0x00004000, 0x00002000},
	{0x00006000, 0x00002000},
	{0x00008000, 0x00002000},
	{0x0000A000, 0x00002000},
	{0x0000C000, 0x00002000},
	{0x0000E000, 0x00002000},
	{0x00010000, 0x00010000},
	{0x00020000, 0x00010000},
	{0x00030000, 0x00010000},
	{0x00040000, 0x00010000},
	{0x00050000, 0x00010000},
	{0x00060000, 0x00010000},
	{0x00070000, 0x00010000},
}

// IntFlash programs the two internal flash banks through an IAP-style
// controller. Bank sizes are not assumed: they are derived from the part
// identification word at init time, and a fully absent bank is not
// registered at all.
type IntFlash struct {
	hw    FlashUnit
	debug region.DebugFunc

	banks    []region.Region
	id1, id2 uint32
	page     [flashPage]byte
}

// NewIntFlash returns an internal flash driver over hw. Diagnostics are
// reported through debug, which may be nil.
func NewIntFlash(hw FlashUnit, debug region.DebugFunc) *IntFlash {
	if hw == nil {
		panic("flash unit cannot be nil")
	}
	return &IntFlash{hw: hw, debug: debug}
}

// Init reads the part identification words, sizes both banks from them and
// returns the regions to register, at most avail.
func (f *IntFlash) Init(avail int) []region.Region {
	f.id1, f.id2 = f.hw.PartID()
	f.debugf("FLASHINIT: ID1/2 = 0x%08x/0x%08x\n", f.id1, f.id2)

	bases := []struct {
		addr uint32
		name string
	}{
		{flashBankA, "FLASH bank A"},
		{flashBankB, "FLASH bank B"},
	}
	if avail < len(bases) {
		bases = bases[:avail]
	}

	f.banks = f.banks[:0]
	for bank, b := range bases {
		size := bankSize(bank, f.id2)
		if size == 0 {
			continue
		}
		f.banks = append(f.banks, region.Region{
			Addr:       b.addr,
			Size:       size,
			Name:       b.name,
			Algo:       f,
			BufferSize: flashPage,
		})
	}

	return f.banks
}

// DeviceID returns the two part identification words captured at init.
func (f *IntFlash) DeviceID() (uint32, uint32) {
	return f.id1, f.id2
}

// bankSize derives how much of a bank is present from the second part
// identification word. Each bank has a 4-bit "missing 64 KiB units" field.
func bankSize(bank int, id2 uint32) uint32 {
	shift := []uint{0, 4}[bank]
	mask := []uint32{0x0F, 0xF0}[bank]

	missing := ((id2 & mask) >> shift) * 0x10000
	if missing >= flashMaxSize {
		return 0
	}
	return flashMaxSize - missing
}

// findBank returns the index into f.banks containing addr, or -1.
func (f *IntFlash) findBank(addr uint32) int {
	for i, b := range f.banks {
		if addr >= b.Addr && addr < b.End() {
			return i
		}
	}
	return -1
}

// validSpan rejects ranges that do not map to a single bank or violate the
// page quantum. Erase and write both require page granularity.
func (f *IntFlash) validSpan(op string, addr, size uint32) error {
	if f.findBank(addr) < 0 {
		f.debugf("FLASH: Address does not map to bank\n")
		return &RangeError{Op: op, Addr: addr, Size: size}
	}
	if addr&(flashPage-1) != 0 {
		f.debugf("FLASH: Address is not %d byte aligned\n", flashPage)
		return &AlignmentError{Op: op, Addr: addr, Size: size, Reason: "address not page aligned"}
	}
	if size%flashPage != 0 {
		f.debugf("FLASH: Size must be a multiple of %d bytes\n", flashPage)
		return &AlignmentError{Op: op, Addr: addr, Size: size, Reason: "size not a page multiple"}
	}
	return nil
}

// sectorRange maps [addr, addr+size) to the inclusive sector index range
// it covers within one bank. aligned reports whether both ends of the
// range fall exactly on sector boundaries. A range whose end lies outside
// the bank's sector table (including one crossing into the other bank)
// fails.
func (f *IntFlash) sectorRange(op string, addr, size uint32) (bank, first, last int, aligned bool, err error) {
	bank = f.findBank(addr)
	base := f.banks[bank].Addr
	end := addr + size - 1

	first, startAligned := findSector(addr, base)
	if first < 0 {
		return 0, 0, 0, false, &RangeError{Op: op, Addr: addr, Size: size}
	}
	last, endAligned := findSectorEnd(end, base)
	if last < 0 || end >= f.banks[bank].End() {
		return 0, 0, 0, false, &RangeError{Op: op, Addr: addr, Size: size}
	}

	return bank, first, last, startAligned && endAligned, nil
}

// findSector returns the sector index containing addr and whether addr is
// its first byte.
func findSector(addr, base uint32) (int, bool) {
	for i, s := range flashSectors {
		start := base + s.offset
		if addr >= start && addr <= start+s.size-1 {
			return i, addr == start
		}
	}
	return -1, false
}

// findSectorEnd returns the sector index containing end and whether end is
// its last byte.
func findSectorEnd(end, base uint32) (int, bool) {
	for i, s := range flashSectors {
		start := base + s.offset
		last := start + s.size - 1
		if end >= start && end <= last {
			return i, end == last
		}
	}
	return -1, false
}

// EraseRegion erases a span that must be exactly sector-aligned at both
// ends within a single bank. Partial-sector erase is not supported, so any
// misalignment fails before hardware is touched. The erased range is
// blank-checked afterwards.
func (f *IntFlash) EraseRegion(addr, size uint32) (uint32, error) {
	f.debugf("FLASHERASE: 0x%08X with size 0x%X\n", addr, size)

	if err := f.validSpan("flash erase", addr, size); err != nil {
		f.debugf("FLASHERASE: address/size validation failure\n")
		return 0, err
	}

	bank, first, last, aligned, err := f.sectorRange("flash erase", addr, size)
	if err != nil {
		f.debugf("FLASHERASE: sector range lookup failure\n")
		return 0, err
	}
	if !aligned {
		f.debugf("FLASHERASE: Address range must be sector aligned\n")
		return 0, &AlignmentError{Op: "flash erase", Addr: addr, Size: size, Reason: "range not sector aligned"}
	}

	f.debugf("FLASHERASE: Bank %d, Start sec %d, End sec %d\n", bank, first, last)

	if err := f.prepare(bank, first, last); err != nil {
		return 0, err
	}
	if err := f.hw.EraseSectors(bank, first, last); err != nil {
		f.debugf("FLASH: Error erasing sectors %d-%d (bank %d)\n", first, last, bank)
		return 0, &HardwareError{Op: "erase sectors", Addr: addr, Err: err}
	}
	if err := f.hw.BlankCheck(bank, first, last); err != nil {
		f.debugf("FLASHERASE: Error erasing sectors\n")
		return 0, &HardwareError{Op: "blank check", Addr: addr, Err: err}
	}

	return size, nil
}

// EraseAll erases a full bank. The dispatcher passes the bank's base and
// extent, which is sector aligned by construction.
func (f *IntFlash) EraseAll(addr, size uint32) (uint32, error) {
	return f.EraseRegion(addr, size)
}

// Write programs one page quantum at addr. A final fragment shorter than
// the page is padded with 0xFF, and every program is followed by a compare
// pass; a mismatch fails the write outright.
func (f *IntFlash) Write(buf []byte, addr uint32) (uint32, error) {
	size := uint32(len(buf))
	f.debugf("FLASHWRITE: 0x%08X with size 0x%X\n", addr, size)

	if size > flashPage {
		f.debugf("FLASHWRITE: Program buffer too big\n")
		return 0, &AlignmentError{Op: "flash write", Addr: addr, Size: size, Reason: "exceeds page quantum"}
	}

	n := copy(f.page[:], buf)
	if n < flashPage {
		for i := n; i < flashPage; i++ {
			f.page[i] = 0xFF
		}
		f.debugf("FLASHWRITE: Last page too small, padded %d bytes\n", flashPage-n)
	}

	if err := f.validSpan("flash write", addr, flashPage); err != nil {
		f.debugf("FLASHWRITE: Input address/size is not valid\n")
		return 0, err
	}
	bank, first, last, _, err := f.sectorRange("flash write", addr, flashPage)
	if err != nil {
		f.debugf("FLASHWRITE: sector range lookup failure\n")
		return 0, err
	}

	if err := f.prepare(bank, first, last); err != nil {
		return 0, err
	}
	if err := f.hw.ProgramPage(addr, f.page[:]); err != nil {
		f.debugf("FLASHWRITE: Error programming address range\n")
		return 0, &HardwareError{Op: "program page", Addr: addr, Err: err}
	}
	if err := f.hw.Compare(addr, f.page[:]); err != nil {
		f.debugf("FLASHWRITE: Verify error on program\n")
		return 0, &HardwareError{Op: "verify", Addr: addr, Err: err}
	}

	return size, nil
}

// Read copies from the memory-mapped bank.
func (f *IntFlash) Read(buf []byte, addr uint32) (uint32, error) {
	f.debugf("FLASHREAD @ 0x%08X, 0x%X bytes\n", addr, len(buf))

	if err := f.hw.Read(buf, addr); err != nil {
		return 0, &HardwareError{Op: "flash read", Addr: addr, Err: err}
	}
	return uint32(len(buf)), nil
}

// Close releases nothing; the flash controller holds no state that needs
// teardown.
func (f *IntFlash) Close(addr uint32) error {
	return nil
}

func (f *IntFlash) prepare(bank, first, last int) error {
	if err := f.hw.PrepareSectors(bank, first, last); err != nil {
		f.debugf("FLASH: Error preparing sectors %d-%d (bank %d)\n", first, last, bank)
		return &HardwareError{Op: "prepare sectors", Addr: f.banks[bank].Addr, Err: err}
	}
	return nil
}

func (f *IntFlash) debugf(format string, args ...interface{}) {
	if f.debug != nil {
		f.debug(format, args...)
	}
}
