package protocol

import (
	"encoding/binary"
	"fmt"
)

// CommandHeader is the fixed 16-byte header a host prepends to every
// command.
//
// Header structure (little-endian):
//
//	[CMD(4)][ADDR(4)][SIZE(4)][MAGIC(4)]
//
// The meaning of Addr and Size depends on the command: erase/program/read
// commands carry the start of the target range and its length, set-debug
// carries the verbosity selector in Addr, and execute carries the jump
// address in Addr.
type CommandHeader struct {
	// Cmd is the host command code
	Cmd Command

	// Addr is the command argument address
	Addr uint32

	// Size is the length in bytes of the target range
	Size uint32

	// Magic is the host tool's compatibility tag, expected to equal
	// ValidMagic
	Magic uint32
}

// MagicValid reports whether the header carries the magic value of a
// compatible host tool.
func (h *CommandHeader) MagicValid() bool {
	return h.Magic == ValidMagic
}

// BuildCommandHeader constructs a command header ready to send to the
// device, stamped with ValidMagic.
func BuildCommandHeader(cmd Command, addr, size uint32) []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(cmd))
	binary.LittleEndian.PutUint32(b[4:8], addr)
	binary.LittleEndian.PutUint32(b[8:12], size)
	binary.LittleEndian.PutUint32(b[12:16], ValidMagic)
	return b
}

// ParseCommandHeader extracts a command header from the first HeaderSize
// bytes of a host packet.
func ParseCommandHeader(b []byte) (*CommandHeader, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("command header too short: got %d bytes, need %d", len(b), HeaderSize)
	}

	return &CommandHeader{
		Cmd:   Command(binary.LittleEndian.Uint32(b[0:4])),
		Addr:  binary.LittleEndian.Uint32(b[4:8]),
		Size:  binary.LittleEndian.Uint32(b[8:12]),
		Magic: binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

// StatusHeader is the fixed 16-byte header the device returns on every
// status poll.
//
// Header structure (little-endian):
//
//	[CMD_ECHO(4)][STATUS(4)][STR_BYTES(4)][BUFFER_SIZE(4)]
//
// When DebugBytes is non-zero, DebugChunkSize bytes of debug text follow
// the header, of which the first DebugBytes are meaningful.
type StatusHeader struct {
	// Cmd echoes the last host command the device acted on
	Cmd Command

	// Status is the current operation status
	Status Status

	// DebugBytes is the number of meaningful debug text bytes following
	// the header
	DebugBytes uint32

	// BufferSize is the transfer quantum of the active session region
	BufferSize uint32
}

// PutStatusHeader encodes a status header into the first HeaderSize bytes
// of b. It panics if b is too short; callers size the staging buffer.
func PutStatusHeader(b []byte, h StatusHeader) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(h.Cmd))
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.Status))
	binary.LittleEndian.PutUint32(b[8:12], h.DebugBytes)
	binary.LittleEndian.PutUint32(b[12:16], h.BufferSize)
}

// ParseStatusHeader extracts a status header from the first HeaderSize
// bytes of a device packet.
func ParseStatusHeader(b []byte) (*StatusHeader, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("status header too short: got %d bytes, need %d", len(b), HeaderSize)
	}

	return &StatusHeader{
		Cmd:        Command(binary.LittleEndian.Uint32(b[0:4])),
		Status:     Status(binary.LittleEndian.Uint32(b[4:8])),
		DebugBytes: binary.LittleEndian.Uint32(b[8:12]),
		BufferSize: binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}
