// Package dfu implements the device-side command/status state machine of
// the DFUSec programming protocol.
//
// The Engine consumes host command packets through its Write method and
// produces status/data packets through Read, so any byte channel with
// DFU-style OUT/IN semantics can drive it. Long-running erase, program and
// readback operations are advanced by the background loop started with
// Run; exactly one operation is in flight at a time and commands arriving
// while the loop is busy are rejected.
//
// Example:
//
//	regions := board.Regions(protocol.ValidMagic, sink.Printf)
//	engine := dfu.New(regions,
//	    dfu.WithLogger(myLogger),
//	    dfu.WithResetFunc(rebootBoard),
//	)
//	go engine.Run(ctx)
package dfu
