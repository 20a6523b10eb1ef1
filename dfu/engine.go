package dfu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/clarenceliu/lpc1857-dfusec/protocol"
	"github.com/clarenceliu/lpc1857-dfusec/region"
)

// Engine is the device-side command/status state machine. The host drives
// it through the io.ReadWriter surface: Write delivers one OUT transfer
// (command header or streamed program payload, zero length for a ZLP) and
// Read services one IN poll, streaming the pending status or readback
// packet in caller-sized slices.
//
// Engine is safe for concurrent use by one transport goroutine and the
// background loop.
type Engine struct {
	regions *region.List
	config  Config
	sink    *DebugSink

	mu   sync.Mutex
	wake chan struct{}

	status  protocol.Status
	hostCmd protocol.Command

	// Active command address/size. curSize counts down as program
	// payload is consumed or readback data is handed to the host.
	curAddr uint32
	curSize uint32

	// Session context cached by start-session.
	bufferSize  uint32
	sessionOpen bool
	sessionAddr uint32

	// Streamed program payload accumulates in progBuf until it reaches
	// the chunk threshold; the background loop then flushes progSize
	// bytes. Readback reuses progBuf for data fetched by the loop.
	progBuf  [protocol.MaxBufferSize]byte
	streamed uint32
	progSize uint32

	// In-flight IN packet, sliced down as the host drains it. Points
	// into statusBuf or progBuf.
	pending     []byte
	pendingData bool
	statusBuf   [protocol.HeaderSize + protocol.DebugChunkSize]byte

	halted bool
}

// New creates an Engine over a populated region registry.
//
// Example:
//
//	engine := dfu.New(regions,
//	    dfu.WithLogger(myLogger),
//	    dfu.WithResetFunc(rebootBoard),
//	)
func New(regions *region.List, opts ...Option) *Engine {
	if regions == nil {
		panic("regions cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		regions: regions,
		config:  cfg,
		sink:    cfg.Sink,
		wake:    make(chan struct{}, 1),
		status:  protocol.StatusIdle,
	}
	if e.sink == nil {
		e.sink = NewDebugSink()
	}

	e.sink.Printf("LPC18xx/43xx DFUSec programming API tool\n")
	for i := 0; i < regions.Len(); i++ {
		r := regions.Region(i)
		e.sink.Printf("Region: %s @ 0x%08X, size %d bytes\n", r.Name, r.Addr, r.Size)
	}

	return e
}

// Status reports the current operation status.
func (e *Engine) Status() protocol.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Sink returns the engine's debug sink.
func (e *Engine) Sink() *DebugSink {
	return e.sink
}

// busy reports whether a background step is pending or running, meaning a
// fresh command cannot be accepted.
func (e *Engine) busy() bool {
	switch e.status {
	case protocol.StatusEraseAllStart, protocol.StatusEraseRegionStart,
		protocol.StatusErasing, protocol.StatusProgramming,
		protocol.StatusReadBusy, protocol.StatusResetting,
		protocol.StatusExecuting, protocol.StatusFaultLoop:
		return true
	}
	return false
}

// Write handles one OUT transfer from the host. Zero length is a ZLP:
// while streaming program payload it rearms the receive buffer, otherwise
// it is ignored. In the programming-stream state payload accumulates
// toward the chunk threshold; any other non-empty transfer is parsed as a
// command packet.
func (e *Engine) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halted {
		return 0, ErrHalted
	}

	if len(p) == 0 {
		if e.status == protocol.StatusProgramStream {
			e.streamed = 0
		}
		return 0, nil
	}

	if e.status == protocol.StatusProgramStream {
		return e.accumulate(p)
	}
	if e.busy() {
		return 0, &BusyError{Status: e.status}
	}
	if len(p) < protocol.HeaderSize {
		return 0, &ShortPacketError{Got: len(p)}
	}
	e.dispatch(p)
	return len(p), nil
}

// accumulate appends streamed program payload. Reaching the chunk
// threshold (one buffer quantum, or the remaining command size if that is
// smaller) hands the chunk to the background loop.
func (e *Engine) accumulate(p []byte) (int, error) {
	threshold := e.bufferSize
	if e.curSize < threshold {
		threshold = e.curSize
	}

	n := copy(e.progBuf[e.streamed:threshold], p)
	e.streamed += uint32(n)

	if e.streamed == threshold {
		e.status = protocol.StatusProgramming
		e.progSize = e.streamed
		e.curSize -= e.streamed
		e.streamed = 0
		e.wakeLoop()
	}

	if n < len(p) {
		return n, &StreamOverflowError{Dropped: len(p) - n}
	}
	return n, nil
}

// dispatch parses a fresh command packet and moves the state machine into
// the state the command implies. A magic mismatch is a warning only.
func (e *Engine) dispatch(p []byte) {
	hdr, _ := protocol.ParseCommandHeader(p)
	if !hdr.MagicValid() {
		e.debugf("DFU Utility and programming algorithm have different versions\n")
	}

	if hdr.Cmd.Valid() {
		e.hostCmd = hdr.Cmd
	}

	switch hdr.Cmd {
	case protocol.CmdReadIDs:
		e.debugf("Device ID words: 0x%08X 0x%08X\n", e.config.DeviceID[0], e.config.DeviceID[1])

	case protocol.CmdSetDebug:
		// Low address bit clear means verbose.
		e.sink.SetVerbose(hdr.Addr&1 == 0)

	case protocol.CmdProgramOTP, protocol.CmdReadOTP:
		// Accepted and ignored; OTP keys are not programmable on this
		// hardware image.

	case protocol.CmdStartSession, protocol.CmdStartEncSession:
		e.startSession(hdr.Addr, hdr.Size)

	case protocol.CmdEraseAll:
		e.status = protocol.StatusEraseAllStart
		e.curAddr, e.curSize = hdr.Addr, hdr.Size
		e.wakeLoop()

	case protocol.CmdEraseRegion:
		e.status = protocol.StatusEraseRegionStart
		e.curAddr, e.curSize = hdr.Addr, hdr.Size
		e.wakeLoop()

	case protocol.CmdProgram:
		e.status = protocol.StatusProgramStream
		e.curAddr, e.curSize = hdr.Addr, hdr.Size
		e.streamed = 0

	case protocol.CmdReadBack:
		e.status = protocol.StatusReadBusy
		e.curAddr, e.curSize = hdr.Addr, hdr.Size
		e.wakeLoop()

	case protocol.CmdReset:
		e.status = protocol.StatusResetting
		e.wakeLoop()

	case protocol.CmdExecute:
		e.status = protocol.StatusExecuting
		e.curAddr = hdr.Addr
		e.wakeLoop()

	default:
		e.debugf("Unknown command (%d)\n", uint32(hdr.Cmd))
		e.status = protocol.StatusUnknownError
	}
}

// startSession selects the active region for the given address range and
// caches its buffer quantum. A failed lookup rejects the command unless
// the legacy fallback is configured.
func (e *Engine) startSession(addr, size uint32) {
	e.status = protocol.StatusIdle

	idx, ok := e.regions.Resolve(addr, size)
	if !ok {
		if !e.config.SessionFallback || e.regions.Len() == 0 {
			e.debugf("No region contains session address 0x%08X\n", addr)
			e.status = protocol.StatusUnknownError
			return
		}
		idx = 0
	}

	r := e.regions.Region(idx)
	e.bufferSize = r.BufferSize
	e.sessionOpen = true
	e.sessionAddr = r.Addr
	e.curAddr, e.curSize = addr, size
	e.logInfo("session started", "region", r.Name, "addr", addr, "size", size)
}

// Read services one IN poll from the host, copying up to len(p) bytes of
// the pending packet. A zero-length poll discards any partially drained
// packet. For the read-ready state the payload is readback data; every
// other state reports a status packet with any pending debug text.
func (e *Engine) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halted {
		return 0, ErrHalted
	}

	if len(p) == 0 {
		e.pending = nil
		return 0, nil
	}

	if e.status == protocol.StatusReadReady {
		return e.readData(p), nil
	}
	return e.readStatus(p), nil
}

// readStatus builds the status packet on the first poll and streams it in
// caller-sized slices. Draining the packet in the read-triggered state
// flips to read-ready.
func (e *Engine) readStatus(p []byte) int {
	if !e.status.Valid() {
		e.debugf("UNKNOWN STATE (%d)\n", uint32(e.status))
		e.status = protocol.StatusUnknownError
	}

	if e.pending == nil || e.pendingData {
		strBytes := e.sink.Fill(e.statusBuf[protocol.HeaderSize:])
		total := protocol.HeaderSize
		if strBytes != 0 {
			// The full debug slot is reserved whenever any text rides
			// along, regardless of its length.
			total += protocol.DebugChunkSize
		}
		protocol.PutStatusHeader(e.statusBuf[:], protocol.StatusHeader{
			Cmd:        e.hostCmd,
			Status:     e.status,
			DebugBytes: uint32(strBytes),
			BufferSize: e.bufferSize,
		})
		e.pending = e.statusBuf[:total]
		e.pendingData = false
	}

	n := copy(p, e.pending)
	e.pending = e.pending[n:]
	if len(e.pending) == 0 {
		e.pending = nil
		if e.status == protocol.StatusReadTriggered {
			e.status = protocol.StatusReadReady
		}
	}
	return n
}

// readData streams the chunk the background loop fetched. Exhausting the
// chunk returns to read-busy for the next one, or to idle when the
// requested size is fully delivered.
func (e *Engine) readData(p []byte) int {
	if e.pending == nil || !e.pendingData {
		chunk := e.curSize
		if chunk > e.bufferSize {
			chunk = e.bufferSize
		}
		e.curSize -= chunk
		e.pending = e.progBuf[:chunk]
		e.pendingData = true
	}

	n := copy(p, e.pending)
	e.pending = e.pending[n:]
	if len(e.pending) == 0 {
		e.pending = nil
		e.pendingData = false
		if e.curSize == 0 {
			e.status = protocol.StatusIdle
		} else {
			e.status = protocol.StatusReadBusy
			e.wakeLoop()
		}
	}
	return n
}

// debugf queues host-visible debug text and mirrors it to the logger.
func (e *Engine) debugf(format string, args ...interface{}) {
	e.sink.Printf(format, args...)
	e.logDebug(strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}

func (e *Engine) wakeLoop() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}
