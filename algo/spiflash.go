package algo

import (
	"bytes"

	"github.com/clarenceliu/lpc1857-dfusec/region"
)

// The SPIFI peripheral maps the same serial flash at two addresses. Both
// aliases are registered as regions so hosts built around either mapping
// work unchanged; every operation folds its address onto the primary base
// before touching hardware.
const (
	spiPrimaryBase = 0x14000000
	spiAliasBase   = 0x80000000
	spiAliasMask   = 0xFF000000
	spiBufferSize  = 2048
)

// SPIFlash programs an external serial flash through the SPIFI controller.
// The device's size is not fixed: it is probed at init and a failed probe
// simply registers no regions.
type SPIFlash struct {
	hw    SerialFlashUnit
	debug region.DebugFunc

	devSize uint32
	scratch [spiBufferSize]byte
}

// NewSPIFlash returns a serial flash driver over hw. Diagnostics are
// reported through debug, which may be nil.
func NewSPIFlash(hw SerialFlashUnit, debug region.DebugFunc) *SPIFlash {
	if hw == nil {
		panic("serial flash unit cannot be nil")
	}
	return &SPIFlash{hw: hw, debug: debug}
}

// Init probes the attached device and returns one region per alias, at
// most avail. An absent or unidentifiable device registers nothing.
func (f *SPIFlash) Init(avail int) []region.Region {
	size, err := f.hw.Detect()
	if err != nil {
		f.debugf("SPIFLASH: initialization failed: %v\n", err)
		return nil
	}
	f.devSize = size
	f.debugf("SPIFLASH: init complete, device size 0x%X\n", size)

	regions := []region.Region{
		{Addr: spiPrimaryBase, Size: size, Name: "SPIFLASH@14", Algo: f, BufferSize: spiBufferSize},
		{Addr: spiAliasBase, Size: size, Name: "SPIFLASH@80", Algo: f, BufferSize: spiBufferSize},
	}
	if avail < len(regions) {
		regions = regions[:avail]
	}
	return regions
}

// canonical folds an alias address onto the primary mapping.
func canonical(addr uint32) uint32 {
	return (addr &^ spiAliasMask) | spiPrimaryBase
}

// valid checks a canonical address range against the probed device. The
// controller requires word-aligned addresses.
func (f *SPIFlash) valid(op string, addr, size uint32) error {
	if f.devSize == 0 {
		return &RangeError{Op: op, Addr: addr, Size: size}
	}
	if addr&0x3 != 0 {
		f.debugf("SPIFLASH: Address is not 4 byte aligned\n")
		return &AlignmentError{Op: op, Addr: addr, Size: size, Reason: "address not word aligned"}
	}
	if addr < spiPrimaryBase || addr+size > spiPrimaryBase+f.devSize {
		f.debugf("SPIFLASH: Address range outside device\n")
		return &RangeError{Op: op, Addr: addr, Size: size}
	}
	return nil
}

// EraseRegion erases [addr, addr+size) on the device.
func (f *SPIFlash) EraseRegion(addr, size uint32) (uint32, error) {
	f.debugf("SPIFLASHERASE: 0x%08X with size 0x%X\n", addr, size)

	addr = canonical(addr)
	if err := f.valid("spiflash erase", addr, size); err != nil {
		return 0, err
	}
	if err := f.hw.Erase(addr, addr+size); err != nil {
		f.debugf("SPIFLASHERASE: erase failed\n")
		return 0, &HardwareError{Op: "spiflash erase", Addr: addr, Err: err}
	}
	return size, nil
}

// EraseAll erases the whole device. The dispatcher passes the resolved
// region's base and extent, so a plain range erase covers it.
func (f *SPIFlash) EraseAll(addr, size uint32) (uint32, error) {
	return f.EraseRegion(addr, size)
}

// Write programs one buffer quantum at addr and reads it back through the
// controller's memory-mapped mode to verify. Memory-mapped mode is always
// restored to off, even on a failed verify.
func (f *SPIFlash) Write(buf []byte, addr uint32) (uint32, error) {
	size := uint32(len(buf))
	f.debugf("SPIFLASHWRITE: 0x%08X with size 0x%X\n", addr, size)

	if size > spiBufferSize {
		f.debugf("SPIFLASHWRITE: Program buffer too big\n")
		return 0, &AlignmentError{Op: "spiflash write", Addr: addr, Size: size, Reason: "exceeds buffer quantum"}
	}

	addr = canonical(addr)
	if err := f.valid("spiflash write", addr, size); err != nil {
		return 0, err
	}
	if err := f.hw.Program(addr, buf); err != nil {
		f.debugf("SPIFLASHWRITE: program failed\n")
		return 0, &HardwareError{Op: "spiflash program", Addr: addr, Err: err}
	}

	if err := f.verify(addr, buf); err != nil {
		return 0, err
	}
	return size, nil
}

func (f *SPIFlash) verify(addr uint32, want []byte) error {
	if err := f.hw.SetMemMode(true); err != nil {
		return &HardwareError{Op: "spiflash mem mode", Addr: addr, Err: err}
	}
	defer f.hw.SetMemMode(false)

	got := f.scratch[:len(want)]
	if err := f.hw.MemRead(got, addr); err != nil {
		return &HardwareError{Op: "spiflash readback", Addr: addr, Err: err}
	}
	if !bytes.Equal(got, want) {
		for i := range want {
			if got[i] != want[i] {
				f.debugf("SPIFLASHWRITE: Verify error at 0x%08X\n", addr+uint32(i))
				return &VerifyError{Addr: addr + uint32(i), Want: want[i], Got: got[i]}
			}
		}
	}
	return nil
}

// Read copies from the device, folding alias addresses first.
func (f *SPIFlash) Read(buf []byte, addr uint32) (uint32, error) {
	addr = canonical(addr)
	f.debugf("SPIFLASHREAD @ 0x%08X, 0x%X bytes\n", addr, len(buf))

	if err := f.hw.Read(buf, addr); err != nil {
		return 0, &HardwareError{Op: "spiflash read", Addr: addr, Err: err}
	}
	return uint32(len(buf)), nil
}

// Close forces memory-mapped mode off. Leaving it enabled across a reset
// wedges the controller on some silicon revisions.
func (f *SPIFlash) Close(addr uint32) error {
	f.debugf("SPIFLASH: close, disabling memory mode\n")
	if err := f.hw.SetMemMode(false); err != nil {
		return &HardwareError{Op: "spiflash close", Addr: addr, Err: err}
	}
	return nil
}

func (f *SPIFlash) debugf(format string, args ...interface{}) {
	if f.debug != nil {
		f.debug(format, args...)
	}
}
