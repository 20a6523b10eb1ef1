package sim

import (
	"fmt"
)

const serialBase = 0x14000000

// SerialFlash simulates a SPIFI-attached flash device. MemRead only works
// while memory-mapped mode is on, so a driver that forgets to enable or
// restore the mode fails loudly in tests.
type SerialFlash struct {
	data    []byte
	memMode bool

	FailDetect bool
	// CorruptNext flips a byte on the next program so the read-back
	// verify fails, then clears itself.
	CorruptNext bool
}

// NewSerialFlash returns a blank simulated device of size bytes mapped at
// the primary SPIFI base.
func NewSerialFlash(size uint32) *SerialFlash {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xFF
	}
	return &SerialFlash{data: data}
}

// Bytes returns the live backing store.
func (s *SerialFlash) Bytes() []byte {
	return s.data
}

// MemMode reports whether memory-mapped mode is currently enabled.
func (s *SerialFlash) MemMode() bool {
	return s.memMode
}

func (s *SerialFlash) Detect() (uint32, error) {
	if s.FailDetect {
		return 0, fmt.Errorf("sim: no serial flash detected")
	}
	return uint32(len(s.data)), nil
}

func (s *SerialFlash) offset(addr, size uint32) (uint32, error) {
	off := addr - serialBase
	if addr < serialBase || off+size > uint32(len(s.data)) {
		return 0, fmt.Errorf("sim: address 0x%08X outside serial flash", addr)
	}
	return off, nil
}

func (s *SerialFlash) Erase(start, end uint32) error {
	off, err := s.offset(start, end-start)
	if err != nil {
		return err
	}
	for i := off; i < off+(end-start); i++ {
		s.data[i] = 0xFF
	}
	return nil
}

func (s *SerialFlash) Program(addr uint32, data []byte) error {
	off, err := s.offset(addr, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(s.data[off:], data)
	if s.CorruptNext {
		s.data[off] ^= 0xFF
		s.CorruptNext = false
	}
	return nil
}

func (s *SerialFlash) Read(buf []byte, addr uint32) error {
	off, err := s.offset(addr, uint32(len(buf)))
	if err != nil {
		return err
	}
	copy(buf, s.data[off:])
	return nil
}

func (s *SerialFlash) SetMemMode(on bool) error {
	s.memMode = on
	return nil
}

func (s *SerialFlash) MemRead(buf []byte, addr uint32) error {
	if !s.memMode {
		return fmt.Errorf("sim: memory-mapped read with mode disabled")
	}
	return s.Read(buf, addr)
}
