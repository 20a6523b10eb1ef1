package dfu

import (
	"context"

	"github.com/clarenceliu/lpc1857-dfusec/protocol"
)

// Run advances long-running operations until the context is cancelled or
// a reset/execute command ends the session. The loop sleeps whenever the
// current state needs no background work and is woken by the transport
// side committing a state that does.
//
// Run returns nil after a reset or execute command has been carried out,
// and the context error on cancellation. After a fault halt it waits for
// cancellation so the permanent-halt semantics survive in a hosted
// process.
func (e *Engine) Run(ctx context.Context) error {
	for {
		e.mu.Lock()
		status := e.status
		e.mu.Unlock()

		switch status {
		case protocol.StatusReadBusy:
			e.stepRead()

		case protocol.StatusEraseAllStart:
			e.stepEraseAll()

		case protocol.StatusEraseRegionStart:
			e.stepEraseRegion()

		case protocol.StatusErasing:
			// The erase itself completed synchronously in the driver
			// call; this state only reports completion to the host.
			e.transition(protocol.StatusIdle)

		case protocol.StatusProgramming:
			e.stepProgram()

		case protocol.StatusResetting:
			e.shutdown()
			if e.config.ResetFunc != nil {
				e.config.ResetFunc()
			}
			return nil

		case protocol.StatusExecuting:
			e.mu.Lock()
			addr := e.curAddr
			e.mu.Unlock()
			e.shutdown()
			if e.config.ExecFunc != nil {
				e.config.ExecFunc(addr)
			}
			return nil

		case protocol.StatusFaultLoop:
			e.shutdown()
			e.mu.Lock()
			e.halted = true
			e.mu.Unlock()
			<-ctx.Done()
			return ctx.Err()

		default:
			// Idle, error and host-poll-driven states have no
			// background work.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.wake:
			}
		}
	}
}

// Detach moves the engine into the permanent fault halt. Transports call
// it when the host side goes away unexpectedly.
func (e *Engine) Detach() {
	e.transition(protocol.StatusFaultLoop)
}

func (e *Engine) transition(s protocol.Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
	e.wakeLoop()
}

// stepRead fetches the next readback chunk into the program buffer. The
// lock is dropped during the driver call; the buffer is owned by the loop
// while the state is read-busy.
func (e *Engine) stepRead() {
	e.mu.Lock()
	chunk := e.curSize
	if chunk > e.bufferSize {
		chunk = e.bufferSize
	}
	addr := e.curAddr
	e.mu.Unlock()

	_, err := e.regions.Read(e.progBuf[:chunk], addr)

	e.mu.Lock()
	if err != nil {
		e.logError("readback failed", "addr", addr, "err", err)
		e.status = protocol.StatusReadError
	} else {
		e.status = protocol.StatusReadTriggered
		e.curAddr += chunk
	}
	e.mu.Unlock()
}

// stepEraseAll erases the full extent of the region containing the
// command address.
func (e *Engine) stepEraseAll() {
	e.mu.Lock()
	addr := e.curAddr
	e.mu.Unlock()

	_, err := e.regions.EraseAll(addr)

	e.mu.Lock()
	if err != nil {
		e.logError("erase all failed", "addr", addr, "err", err)
		e.status = protocol.StatusEraseError
	} else {
		e.status = protocol.StatusErasing
	}
	e.mu.Unlock()
	e.wakeLoop()
}

// stepEraseRegion erases the exact command address range.
func (e *Engine) stepEraseRegion() {
	e.mu.Lock()
	addr, size := e.curAddr, e.curSize
	e.mu.Unlock()

	_, err := e.regions.EraseRegion(addr, size)

	e.mu.Lock()
	if err != nil {
		e.logError("erase region failed", "addr", addr, "size", size, "err", err)
		e.status = protocol.StatusEraseError
	} else {
		e.status = protocol.StatusErasing
	}
	e.mu.Unlock()
	e.wakeLoop()
}

// stepProgram flushes the accumulated chunk. A full-quantum chunk with
// bytes still owed re-enters the stream state at the advanced address; a
// short or final chunk completes the command.
func (e *Engine) stepProgram() {
	e.mu.Lock()
	chunk := e.progSize
	addr := e.curAddr
	e.mu.Unlock()

	if chunk == 0 {
		e.transition(protocol.StatusIdle)
		return
	}

	n, err := e.regions.Write(e.progBuf[:chunk], addr)

	e.mu.Lock()
	switch {
	case err != nil || n != chunk:
		e.logError("program failed", "addr", addr, "size", chunk, "err", err)
		e.status = protocol.StatusProgramError
	case chunk < e.bufferSize || e.curSize == 0:
		e.status = protocol.StatusIdle
	default:
		e.status = protocol.StatusProgramStream
		e.curAddr += chunk
	}
	e.mu.Unlock()
}

// shutdown closes the session region, if any, and disconnects the
// transport. A reset or execute issued without a session skips the close.
func (e *Engine) shutdown() {
	e.mu.Lock()
	open, addr := e.sessionOpen, e.sessionAddr
	e.sessionOpen = false
	e.mu.Unlock()

	if open {
		if err := e.regions.Close(addr); err != nil {
			e.logError("region close failed", "addr", addr, "err", err)
		}
	}
	if e.config.Transport != nil {
		e.config.Transport.Disconnect()
	}
}
