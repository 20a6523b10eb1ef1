package protocol

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBuildCommandHeader(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		addr uint32
		size uint32
	}{
		{
			name: "erase region",
			cmd:  CmdEraseRegion,
			addr: 0x1A000000,
			size: 0x2000,
		},
		{
			name: "execute",
			cmd:  CmdExecute,
			addr: 0x10000000,
			size: 0,
		},
		{
			name: "set debug quiet",
			cmd:  CmdSetDebug,
			addr: 1,
			size: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BuildCommandHeader(tt.cmd, tt.addr, tt.size)
			if len(b) != HeaderSize {
				t.Fatalf("header length = %d, want %d", len(b), HeaderSize)
			}

			h, err := ParseCommandHeader(b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if h.Cmd != tt.cmd {
				t.Errorf("Cmd = %v, want %v", h.Cmd, tt.cmd)
			}
			if h.Addr != tt.addr {
				t.Errorf("Addr = 0x%08X, want 0x%08X", h.Addr, tt.addr)
			}
			if h.Size != tt.size {
				t.Errorf("Size = %d, want %d", h.Size, tt.size)
			}
			if !h.MagicValid() {
				t.Errorf("Magic = 0x%08X, want 0x%08X", h.Magic, uint32(ValidMagic))
			}
		})
	}
}

func TestParseCommandHeaderTooShort(t *testing.T) {
	_, err := ParseCommandHeader(make([]byte, HeaderSize-1))
	if err == nil {
		t.Fatal("expected error for short header, got nil")
	}
}

func TestCommandHeaderWireOrder(t *testing.T) {
	b := BuildCommandHeader(CmdProgram, 0x14000000, 0x800)

	// The fields must appear in wire order, little-endian.
	if got := binary.LittleEndian.Uint32(b[0:4]); got != uint32(CmdProgram) {
		t.Errorf("word 0 = 0x%08X, want 0x%08X", got, uint32(CmdProgram))
	}
	if got := binary.LittleEndian.Uint32(b[4:8]); got != 0x14000000 {
		t.Errorf("word 1 = 0x%08X, want 0x14000000", got)
	}
	if got := binary.LittleEndian.Uint32(b[8:12]); got != 0x800 {
		t.Errorf("word 2 = 0x%08X, want 0x00000800", got)
	}
	if got := binary.LittleEndian.Uint32(b[12:16]); got != ValidMagic {
		t.Errorf("word 3 = 0x%08X, want 0x%08X", got, uint32(ValidMagic))
	}
}

func TestMagicMismatchDetected(t *testing.T) {
	b := BuildCommandHeader(CmdReset, 0, 0)
	binary.LittleEndian.PutUint32(b[12:16], MagicTag<<16|0x010A)

	h, err := ParseCommandHeader(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.MagicValid() {
		t.Error("MagicValid() = true for mismatched version")
	}
}

func TestStatusHeaderRoundTrip(t *testing.T) {
	b := make([]byte, HeaderSize)
	want := StatusHeader{
		Cmd:        CmdReadBack,
		Status:     StatusReadReady,
		DebugBytes: 12,
		BufferSize: 2048,
	}
	PutStatusHeader(b, want)

	got, err := ParseStatusHeader(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != want {
		t.Errorf("header = %+v, want %+v", *got, want)
	}
}

func TestValidMagicValue(t *testing.T) {
	// The magic combines the family tag with the 1.11 version word.
	if ValidMagic != 0x1843010B {
		t.Errorf("ValidMagic = 0x%08X, want 0x1843010B", uint32(ValidMagic))
	}
}

func TestCommandStrings(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CmdReadIDs, "read-ids"},
		{CmdStartSession, "start-session"},
		{CmdEraseRegion, "erase-region"},
		{CmdExecute, "execute"},
		{Command(99), "unknown command 99"},
	}

	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("Command(%d).String() = %q, want %q", uint32(tt.cmd), got, tt.want)
		}
	}

	if Command(12).Valid() {
		t.Error("Command(12).Valid() = true, want false")
	}
	if !CmdExecute.Valid() {
		t.Error("CmdExecute.Valid() = false, want true")
	}
}

func TestStatusValues(t *testing.T) {
	// The status codes are part of the wire format; spot-check the values
	// that anchor each group of the enum.
	tests := []struct {
		status Status
		value  uint32
		name   string
	}{
		{StatusIdle, 0, "idle"},
		{StatusVersionError, 5, "version-error"},
		{StatusReadReady, 8, "read-ready"},
		{StatusProgramming, 12, "programming"},
		{StatusProgramStream, 14, "programming-stream"},
		{StatusFaultLoop, 17, "fault-loop"},
	}

	for _, tt := range tests {
		if uint32(tt.status) != tt.value {
			t.Errorf("%s = %d, want %d", tt.name, uint32(tt.status), tt.value)
		}
		if got := tt.status.String(); got != tt.name {
			t.Errorf("Status(%d).String() = %q, want %q", tt.value, got, tt.name)
		}
	}

	if !StatusFaultLoop.Terminal() {
		t.Error("StatusFaultLoop.Terminal() = false, want true")
	}
	if StatusIdle.Terminal() {
		t.Error("StatusIdle.Terminal() = true, want false")
	}
}

func TestStatusPacketWithDebugText(t *testing.T) {
	// A status packet with debug text is the header plus a full debug
	// chunk, with meaningful bytes at the front.
	pkt := make([]byte, HeaderSize+DebugChunkSize)
	msg := []byte("FLASHERASE: ok\n")
	copy(pkt[HeaderSize:], msg)
	PutStatusHeader(pkt, StatusHeader{
		Cmd:        CmdEraseRegion,
		Status:     StatusIdle,
		DebugBytes: uint32(len(msg)),
		BufferSize: 512,
	})

	h, err := ParseStatusHeader(pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := pkt[HeaderSize : HeaderSize+int(h.DebugBytes)]
	if !bytes.Equal(text, msg) {
		t.Errorf("debug text = %q, want %q", text, msg)
	}
}
