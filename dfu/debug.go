package dfu

import (
	"fmt"
	"sync"
)

// debugRingSize is the capacity of the host-visible message ring.
const debugRingSize = 2048

// DebugSink is a bounded circular text buffer drained opportunistically
// into status packets. Writers never block: text beyond the capacity
// overwrites the oldest unread bytes. The verbose flag, toggled by the
// host's set-debug command, gates writes.
type DebugSink struct {
	mu      sync.Mutex
	buf     [debugRingSize]byte
	in, out int
	verbose bool
}

// NewDebugSink returns an empty sink with verbose output enabled.
func NewDebugSink() *DebugSink {
	return &DebugSink{verbose: true}
}

// SetVerbose enables or disables message capture. Messages written while
// disabled are dropped, not buffered.
func (s *DebugSink) SetVerbose(on bool) {
	s.mu.Lock()
	s.verbose = on
	s.mu.Unlock()
}

// Printf formats and queues a message. Its signature matches
// region.DebugFunc so drivers can write straight to the sink.
func (s *DebugSink) Printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.verbose {
		return
	}
	for _, b := range []byte(fmt.Sprintf(format, args...)) {
		s.buf[s.in] = b
		s.in++
		if s.in >= debugRingSize {
			s.in = 0
		}
	}
}

// Fill drains up to len(buf) pending bytes into buf and reports how many
// were copied. Only the contiguous span up to the ring's wrap point is
// taken per call; the remainder comes out on the next call.
func (s *DebugSink) Fill(buf []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.in == s.out {
		return 0
	}

	var n int
	if s.out > s.in {
		n = debugRingSize - s.out
	} else {
		n = s.in - s.out
	}
	if n > len(buf) {
		n = len(buf)
	}

	copy(buf, s.buf[s.out:s.out+n])
	s.out += n
	if s.out >= debugRingSize {
		s.out = 0
	}
	return n
}
