package protocol

import "fmt"

// Command is a 32-bit host command code carried in the first word of a
// command header.
type Command uint32

// Host command codes. Values match the original DFUSec host tool and must
// not be reordered.
const (
	// CmdReadIDs reports the two device identification words
	CmdReadIDs Command = iota

	// CmdSetDebug enables or disables verbose debug output; the low bit of
	// the address field selects the mode (0 = verbose)
	CmdSetDebug

	// CmdProgramOTP programs an OTP key by index (accepted, not implemented
	// on this target)
	CmdProgramOTP

	// CmdReadOTP reads an OTP key by index (accepted, not implemented on
	// this target)
	CmdReadOTP

	// CmdStartSession selects the active region for the address in the
	// header and caches its transfer quantum
	CmdStartSession

	// CmdStartEncSession starts an encrypted programming session; this
	// target treats it as a plain session
	CmdStartEncSession

	// CmdEraseAll erases the full extent of the region containing the
	// session address
	CmdEraseAll

	// CmdEraseRegion erases the address range given by addr/size
	CmdEraseRegion

	// CmdProgram programs the range given by addr/size from streamed
	// payload data
	CmdProgram

	// CmdReadBack streams the range given by addr/size back to the host
	CmdReadBack

	// CmdReset closes the active region and resets the device
	CmdReset

	// CmdExecute closes the active region, disconnects the transport and
	// jumps to the address in the header
	CmdExecute
)

// Valid reports whether c is a recognized host command code.
func (c Command) Valid() bool {
	return c <= CmdExecute
}

// String returns the host tool's name for the command.
func (c Command) String() string {
	switch c {
	case CmdReadIDs:
		return "read-ids"
	case CmdSetDebug:
		return "set-debug"
	case CmdProgramOTP:
		return "program-otp"
	case CmdReadOTP:
		return "read-otp"
	case CmdStartSession:
		return "start-session"
	case CmdStartEncSession:
		return "start-enc-session"
	case CmdEraseAll:
		return "erase-all"
	case CmdEraseRegion:
		return "erase-region"
	case CmdProgram:
		return "program"
	case CmdReadBack:
		return "read-back"
	case CmdReset:
		return "reset"
	case CmdExecute:
		return "execute"
	default:
		return fmt.Sprintf("unknown command %d", uint32(c))
	}
}
