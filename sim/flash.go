package sim

import (
	"bytes"
	"fmt"
)

const (
	flashBankA    = 0x1A000000
	flashBankB    = 0x1B000000
	flashBankSize = 512 * 1024
	flashPage     = 512
)

var flashSectorSizes = [...]uint32{
	0x2000, 0x2000, 0x2000, 0x2000, 0x2000, 0x2000, 0x2000, 0x2000,
	0x10000, 0x10000, 0x10000, 0x10000, 0x10000, 0x10000, 0x10000,
}

// Flash simulates the two internal flash banks behind an IAP-style
// controller. Erase and program both fail unless the covering sectors
// were prepared first, matching the real command sequence. Fault flags
// let tests force specific controller errors.
type Flash struct {
	banks    [2][]byte
	prepared [2][len(flashSectorSizes)]bool

	// ID1 and ID2 are returned from PartID. ID2's low byte encodes the
	// missing 64 KiB units per bank.
	ID1, ID2 uint32

	FailErase   bool
	FailProgram bool
	// CorruptWrites flips the first byte of every programmed page so
	// compare passes fail.
	CorruptWrites bool
}

// NewFlash returns a simulated part with both banks fully populated and
// blank.
func NewFlash() *Flash {
	f := &Flash{ID1: 0xF001D830}
	for i := range f.banks {
		f.banks[i] = make([]byte, flashBankSize)
		for j := range f.banks[i] {
			f.banks[i][j] = 0xFF
		}
	}
	return f
}

// Bytes returns the live backing store for bank.
func (f *Flash) Bytes(bank int) []byte {
	return f.banks[bank]
}

func (f *Flash) PartID() (uint32, uint32) {
	return f.ID1, f.ID2
}

func (f *Flash) checkSectors(bank, first, last int) error {
	if bank < 0 || bank > 1 {
		return fmt.Errorf("sim: bad bank %d", bank)
	}
	if first < 0 || last >= len(flashSectorSizes) || first > last {
		return fmt.Errorf("sim: bad sector range %d-%d", first, last)
	}
	return nil
}

func (f *Flash) PrepareSectors(bank, first, last int) error {
	if err := f.checkSectors(bank, first, last); err != nil {
		return err
	}
	for i := first; i <= last; i++ {
		f.prepared[bank][i] = true
	}
	return nil
}

// sectorSpan returns the byte range [start, end) of sectors first..last.
func sectorSpan(first, last int) (uint32, uint32) {
	var start, end uint32
	for i := 0; i <= last; i++ {
		if i < first {
			start += flashSectorSizes[i]
		}
		end += flashSectorSizes[i]
	}
	return start, end
}

func (f *Flash) EraseSectors(bank, first, last int) error {
	if err := f.checkSectors(bank, first, last); err != nil {
		return err
	}
	if f.FailErase {
		return fmt.Errorf("sim: erase fault injected")
	}
	for i := first; i <= last; i++ {
		if !f.prepared[bank][i] {
			return fmt.Errorf("sim: sector %d not prepared", i)
		}
		f.prepared[bank][i] = false
	}
	start, end := sectorSpan(first, last)
	for i := start; i < end; i++ {
		f.banks[bank][i] = 0xFF
	}
	return nil
}

func (f *Flash) BlankCheck(bank, first, last int) error {
	if err := f.checkSectors(bank, first, last); err != nil {
		return err
	}
	start, end := sectorSpan(first, last)
	for i := start; i < end; i++ {
		if f.banks[bank][i] != 0xFF {
			return fmt.Errorf("sim: sector range not blank at offset 0x%X", i)
		}
	}
	return nil
}

func (f *Flash) offset(addr uint32) (int, uint32, error) {
	switch {
	case addr >= flashBankA && addr < flashBankA+flashBankSize:
		return 0, addr - flashBankA, nil
	case addr >= flashBankB && addr < flashBankB+flashBankSize:
		return 1, addr - flashBankB, nil
	}
	return 0, 0, fmt.Errorf("sim: address 0x%08X outside flash", addr)
}

// sectorAt returns the sector index containing byte offset off.
func sectorAt(off uint32) int {
	var pos uint32
	for i, size := range flashSectorSizes {
		if off < pos+size {
			return i
		}
		pos += size
	}
	return -1
}

func (f *Flash) ProgramPage(addr uint32, page []byte) error {
	if len(page) != flashPage {
		return fmt.Errorf("sim: program size must be %d", flashPage)
	}
	if f.FailProgram {
		return fmt.Errorf("sim: program fault injected")
	}
	bank, off, err := f.offset(addr)
	if err != nil {
		return err
	}
	if !f.prepared[bank][sectorAt(off)] {
		return fmt.Errorf("sim: sector at 0x%08X not prepared", addr)
	}
	f.prepared[bank][sectorAt(off)] = false
	copy(f.banks[bank][off:], page)
	if f.CorruptWrites {
		f.banks[bank][off] ^= 0xFF
	}
	return nil
}

func (f *Flash) Compare(addr uint32, data []byte) error {
	bank, off, err := f.offset(addr)
	if err != nil {
		return err
	}
	if !bytes.Equal(f.banks[bank][off:off+uint32(len(data))], data) {
		return fmt.Errorf("sim: compare mismatch at 0x%08X", addr)
	}
	return nil
}

func (f *Flash) Read(buf []byte, addr uint32) error {
	bank, off, err := f.offset(addr)
	if err != nil {
		return err
	}
	if off+uint32(len(buf)) > flashBankSize {
		return fmt.Errorf("sim: read past end of bank")
	}
	copy(buf, f.banks[bank][off:])
	return nil
}
