package dfu

import (
	"errors"
	"fmt"

	"github.com/clarenceliu/lpc1857-dfusec/protocol"
)

// ErrHalted is returned by Read and Write after the engine has entered
// its permanent fault halt.
var ErrHalted = errors.New("dfu: engine halted")

// ShortPacketError is returned when a command packet is smaller than the
// fixed header.
type ShortPacketError struct {
	Got int
}

func (e *ShortPacketError) Error() string {
	return fmt.Sprintf("dfu: command packet is %d bytes, need %d", e.Got, protocol.HeaderSize)
}

// BusyError is returned when a command arrives while a background
// operation is still in flight. The command is dropped; the in-flight
// operation is unaffected.
type BusyError struct {
	Status protocol.Status
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("dfu: busy (%s), command rejected", e.Status)
}

// StreamOverflowError is returned when streamed program payload exceeds
// the current chunk threshold. Excess bytes are dropped.
type StreamOverflowError struct {
	Dropped int
}

func (e *StreamOverflowError) Error() string {
	return fmt.Sprintf("dfu: program stream overflow, %d bytes dropped", e.Dropped)
}
