package protocol

import "fmt"

// Status is the 32-bit operation status the device reports in every status
// header. The host polls it to track long-running erase, program and read
// operations.
type Status uint32

// Operation status codes. Values match the original DFUSec host tool and
// must not be reordered. StatusProgramReserved is unused but keeps the wire
// values of the states that follow it stable.
const (
	// StatusIdle means the device can accept a new host command
	StatusIdle Status = iota

	// StatusEraseError reports a failed erase operation
	StatusEraseError

	// StatusProgramError reports a failed program operation
	StatusProgramError

	// StatusReadError reports a failed readback operation
	StatusReadError

	// StatusUnknownError reports an unrecognized command or an internal
	// state fault
	StatusUnknownError

	// StatusVersionError reports a host/device protocol version mismatch
	StatusVersionError

	// StatusReadBusy means the device is reading a block of data
	StatusReadBusy

	// StatusReadTriggered means a block of data has been read and the
	// status announcing it is being drained
	StatusReadTriggered

	// StatusReadReady means a block of data is ready to stream to the host
	StatusReadReady

	// StatusEraseAllStart means a full-region erase is about to start
	StatusEraseAllStart

	// StatusEraseRegionStart means a region erase is about to start
	StatusEraseRegionStart

	// StatusErasing means the device is erasing
	StatusErasing

	// StatusProgramming means the device is programming a buffered chunk
	StatusProgramming

	// StatusProgramReserved is defined by the wire protocol but never
	// entered
	StatusProgramReserved

	// StatusProgramStream means the device is accumulating streamed
	// payload data
	StatusProgramStream

	// StatusResetting means the device will shut down and reset
	StatusResetting

	// StatusExecuting means the device will disconnect and jump to the
	// recorded address
	StatusExecuting

	// StatusFaultLoop means the device has disconnected and halted; the
	// only exit is a hardware reset
	StatusFaultLoop
)

// Valid reports whether s is a defined status code.
func (s Status) Valid() bool {
	return s <= StatusFaultLoop
}

// Terminal reports whether s is a state with no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusFaultLoop
}

// String returns the host tool's name for the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusEraseError:
		return "erase-error"
	case StatusProgramError:
		return "program-error"
	case StatusReadError:
		return "read-error"
	case StatusUnknownError:
		return "unknown-command-error"
	case StatusVersionError:
		return "version-error"
	case StatusReadBusy:
		return "read-busy"
	case StatusReadTriggered:
		return "read-triggered"
	case StatusReadReady:
		return "read-ready"
	case StatusEraseAllStart:
		return "erase-all-starting"
	case StatusEraseRegionStart:
		return "erase-region-starting"
	case StatusErasing:
		return "erasing"
	case StatusProgramming:
		return "programming"
	case StatusProgramReserved:
		return "programming-reserved"
	case StatusProgramStream:
		return "programming-stream"
	case StatusResetting:
		return "resetting"
	case StatusExecuting:
		return "executing"
	case StatusFaultLoop:
		return "fault-loop"
	default:
		return fmt.Sprintf("unknown status %d", uint32(s))
	}
}
