// Package protocol defines the wire format spoken between the DFUSec host
// utility and the device-side programming engine.
//
// # Packet Layout
//
// Every host command is a fixed 16-byte little-endian header, optionally
// followed by streamed payload data:
//
//	[CMD(4)][ADDR(4)][SIZE(4)][MAGIC(4)]
//
// Every device response is a fixed 16-byte little-endian header, optionally
// followed by up to DebugChunkSize bytes of debug text:
//
//	[CMD_ECHO(4)][STATUS(4)][STR_BYTES(4)][BUFFER_SIZE(4)][DEBUG_TEXT...]
//
// The BUFFER_SIZE field occupies what the original header format reserved;
// it reports the transfer quantum of the region selected by the last
// start-session command.
//
// # Versioning
//
// The MAGIC field locks the host tool to a compatible programming algorithm
// build. The upper 16 bits carry a protocol family tag and the lower 16 bits
// carry the version in major.minor form. A mismatch is reported as a warning
// through the debug channel; the command is still executed.
package protocol
