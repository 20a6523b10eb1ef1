package sim

import (
	"encoding/binary"
	"fmt"
)

const (
	eepromBase = 0x20040000
	eepromSize = 0x4000
)

// EEPROM simulates the on-chip EEPROM controller. The device accepts one
// word at a time and requires a program wait after each; issuing a second
// WriteWord with a wait outstanding is an error, which is exactly the
// driver bug the simulation exists to catch.
type EEPROM struct {
	data    []byte
	inited  bool
	pending bool

	// Waits counts completed program cycles.
	Waits int

	FailInit bool
}

// NewEEPROM returns a blank simulated array.
func NewEEPROM() *EEPROM {
	data := make([]byte, eepromSize)
	for i := range data {
		data[i] = 0xFF
	}
	return &EEPROM{data: data}
}

// Bytes returns the live backing store.
func (e *EEPROM) Bytes() []byte {
	return e.data
}

func (e *EEPROM) Init() error {
	if e.FailInit {
		return fmt.Errorf("sim: eeprom init fault injected")
	}
	e.inited = true
	return nil
}

func (e *EEPROM) WriteWord(addr uint32, word uint32) error {
	if !e.inited {
		return fmt.Errorf("sim: eeprom not initialized")
	}
	if e.pending {
		return fmt.Errorf("sim: write word with program cycle outstanding")
	}
	off := addr - eepromBase
	if addr < eepromBase || off+4 > eepromSize || off%4 != 0 {
		return fmt.Errorf("sim: bad eeprom word address 0x%08X", addr)
	}
	binary.LittleEndian.PutUint32(e.data[off:], word)
	e.pending = true
	return nil
}

func (e *EEPROM) WaitProgram() error {
	if !e.pending {
		return fmt.Errorf("sim: program wait with no word written")
	}
	e.pending = false
	e.Waits++
	return nil
}

func (e *EEPROM) Read(buf []byte, addr uint32) error {
	off := addr - eepromBase
	if addr < eepromBase || off+uint32(len(buf)) > eepromSize {
		return fmt.Errorf("sim: eeprom read outside array")
	}
	copy(buf, e.data[off:])
	return nil
}
