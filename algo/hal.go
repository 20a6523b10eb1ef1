package algo

// The interfaces in this file model the low-level driver primitives the
// programming algorithms are built on. They are contracts of excluded
// collaborators: the real implementations live in ROM/peripheral drivers,
// the sim package provides in-memory stand-ins for tests and the
// simulator. Every primitive reports failure through its error return; the
// algorithms never retry a failed primitive.

// FlashUnit is the IAP-style controller for the two internal flash banks.
// Banks are numbered 0 and 1. Sector-addressed operations take inclusive
// first/last sector indexes within one bank and require a preceding
// PrepareSectors covering the same range.
type FlashUnit interface {
	// PartID returns the two device identification words; the second word
	// encodes how much of each bank is present
	PartID() (id1, id2 uint32)

	// PrepareSectors unlocks a sector range for erase or program
	PrepareSectors(bank, first, last int) error

	// EraseSectors erases a prepared sector range
	EraseSectors(bank, first, last int) error

	// BlankCheck verifies a sector range is erased
	BlankCheck(bank, first, last int) error

	// ProgramPage programs one page at addr; len(page) is the page quantum
	ProgramPage(addr uint32, page []byte) error

	// Compare verifies programmed content against data
	Compare(addr uint32, data []byte) error

	// Read copies len(buf) bytes from the memory-mapped bank at addr
	Read(buf []byte, addr uint32) error
}

// SerialFlashUnit is the SPIFI flash device driver. Addresses are absolute
// bus addresses within the primary mapping.
type SerialFlashUnit interface {
	// Detect initializes the device and returns its size in bytes
	Detect() (size uint32, err error)

	// Erase erases the address range [start, end)
	Erase(start, end uint32) error

	// Program writes data at addr
	Program(addr uint32, data []byte) error

	// Read copies len(buf) bytes from addr using the driver's command mode
	Read(buf []byte, addr uint32) error

	// SetMemMode enables or disables the memory-mapped read window.
	// Leaving it enabled incurs a wake penalty on the attached part, so
	// every enable must be paired with a disable
	SetMemMode(enable bool) error

	// MemRead copies len(buf) bytes from addr through the memory-mapped
	// window; it is only valid while the window is enabled
	MemRead(buf []byte, addr uint32) error
}

// MemoryBus provides raw copies against directly addressable on-chip RAM.
type MemoryBus interface {
	// ReadAt copies len(buf) bytes from addr
	ReadAt(buf []byte, addr uint32) error

	// WriteAt copies data to addr
	WriteAt(addr uint32, data []byte) error

	// Fill writes size copies of val starting at addr
	Fill(addr uint32, size uint32, val byte) error
}

// EEPROMUnit is the on-chip EEPROM controller. Writes land one machine
// word at a time and each word must be followed by WaitProgram before the
// next is issued.
type EEPROMUnit interface {
	// Init powers up the controller and enables auto-programming mode
	Init() error

	// WriteWord latches one 32-bit word at addr
	WriteWord(addr uint32, word uint32) error

	// WaitProgram blocks until the program-complete signal for the last
	// latched word
	WaitProgram() error

	// Read copies len(buf) bytes from the memory-mapped EEPROM at addr
	Read(buf []byte, addr uint32) error
}
