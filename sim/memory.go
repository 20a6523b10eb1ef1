package sim

import (
	"fmt"
)

// Memory simulates the on-chip RAM blocks as a sparse set of byte arrays.
type Memory struct {
	blocks []memBlock
}

type memBlock struct {
	addr uint32
	data []byte
}

// NewMemory returns a bus with the part's standard RAM blocks.
func NewMemory() *Memory {
	m := &Memory{}
	for _, b := range []struct {
		addr uint32
		size uint32
	}{
		{0x10000000, 0x20000},
		{0x10080000, 0x12000},
		{0x20000000, 0x8000},
		{0x20080000, 0x4000},
		{0x200C0000, 0x4000},
	} {
		m.blocks = append(m.blocks, memBlock{addr: b.addr, data: make([]byte, b.size)})
	}
	return m
}

// Block returns the live backing store for the block starting at addr.
func (m *Memory) Block(addr uint32) []byte {
	for _, b := range m.blocks {
		if b.addr == addr {
			return b.data
		}
	}
	return nil
}

func (m *Memory) find(addr, size uint32) (*memBlock, uint32, error) {
	for i := range m.blocks {
		b := &m.blocks[i]
		end := b.addr + uint32(len(b.data))
		if addr >= b.addr && addr+size <= end {
			return b, addr - b.addr, nil
		}
	}
	return nil, 0, fmt.Errorf("sim: address 0x%08X outside RAM", addr)
}

func (m *Memory) ReadAt(buf []byte, addr uint32) error {
	b, off, err := m.find(addr, uint32(len(buf)))
	if err != nil {
		return err
	}
	copy(buf, b.data[off:])
	return nil
}

func (m *Memory) WriteAt(addr uint32, data []byte) error {
	b, off, err := m.find(addr, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(b.data[off:], data)
	return nil
}

func (m *Memory) Fill(addr, size uint32, val byte) error {
	b, off, err := m.find(addr, size)
	if err != nil {
		return err
	}
	for i := off; i < off+size; i++ {
		b.data[i] = val
	}
	return nil
}
