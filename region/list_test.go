package region

import (
	"errors"
	"strings"
	"testing"
)

// stubAlgo records dispatched calls so tests can verify routing.
type stubAlgo struct {
	name       string
	eraseAddr  uint32
	eraseSize  uint32
	writeAddr  uint32
	writeBytes int
	readAddr   uint32
	closed     bool
	failErase  bool
}

func (a *stubAlgo) EraseRegion(addr, size uint32) (uint32, error) {
	if a.failErase {
		return 0, errors.New("erase failed")
	}
	a.eraseAddr, a.eraseSize = addr, size
	return size, nil
}

func (a *stubAlgo) EraseAll(addr, size uint32) (uint32, error) {
	return a.EraseRegion(addr, size)
}

func (a *stubAlgo) Write(buf []byte, addr uint32) (uint32, error) {
	a.writeAddr, a.writeBytes = addr, len(buf)
	return uint32(len(buf)), nil
}

func (a *stubAlgo) Read(buf []byte, addr uint32) (uint32, error) {
	a.readAddr = addr
	return uint32(len(buf)), nil
}

func (a *stubAlgo) Close(addr uint32) error {
	a.closed = true
	return nil
}

func buildList(t *testing.T, debug DebugFunc, regions ...Region) *List {
	t.Helper()
	l := NewList(0x010B, debug)
	for _, r := range regions {
		if err := l.Add(r); err != nil {
			t.Fatalf("Add(%s): %v", r.Name, err)
		}
	}
	return l
}

func TestResolve(t *testing.T) {
	algo := &stubAlgo{}
	l := buildList(t, nil,
		Region{Addr: 0x1A000000, Size: 0x80000, Name: "FLASH A", Algo: algo, BufferSize: 512},
		Region{Addr: 0x10000000, Size: 0x20000, Name: "SRAM", Algo: algo, BufferSize: 2048},
	)

	tests := []struct {
		name     string
		addr     uint32
		size     uint32
		wantIdx  int
		wantFind bool
	}{
		{"start of first region", 0x1A000000, 0x1000, 0, true},
		{"exact full region", 0x1A000000, 0x80000, 0, true},
		{"end of region exclusive", 0x1A000000, 0x80001, -1, false},
		{"interior span", 0x1A040000, 0x100, 0, true},
		{"second region", 0x10001000, 0x800, 1, true},
		{"zero size probes address", 0x1A07FFFF, 0, 0, true},
		{"zero size at exclusive end resolves", 0x1A080000, 0, 0, true},
		{"unmapped address", 0x30000000, 4, -1, false},
		// addr+size wraps uint32; the ROM's range check accepts this.
		{"wrapped size resolves", 0x80000000, 0x80000000, 0, true},
		{"spans past region end", 0x1A07FF00, 0x200, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := l.Resolve(tt.addr, tt.size)
			if ok != tt.wantFind || idx != tt.wantIdx {
				t.Errorf("Resolve(0x%08X, 0x%X) = (%d, %v), want (%d, %v)",
					tt.addr, tt.size, idx, ok, tt.wantIdx, tt.wantFind)
			}
		})
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	first := &stubAlgo{name: "first"}
	second := &stubAlgo{name: "second"}

	// Deliberately overlapping registration: the registry does not check
	// overlap, registration order decides.
	l := buildList(t, nil,
		Region{Addr: 0x20000000, Size: 0x8000, Name: "first", Algo: first, BufferSize: 2048},
		Region{Addr: 0x20000000, Size: 0x8000, Name: "shadow", Algo: second, BufferSize: 2048},
	)

	if _, err := l.Write([]byte{1, 2, 3, 4}, 0x20000100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.writeBytes != 4 {
		t.Error("write did not route to first-registered region")
	}
	if second.writeBytes != 0 {
		t.Error("write leaked to shadowed region")
	}
}

func TestDispatchFailuresLogged(t *testing.T) {
	var logged strings.Builder
	debug := func(format string, args ...interface{}) {
		logged.WriteString(format)
	}

	algo := &stubAlgo{}
	l := buildList(t, debug,
		Region{Addr: 0x1A000000, Size: 0x80000, Name: "FLASH A", Algo: algo, BufferSize: 512},
	)

	var noRegion *NoRegionError
	if _, err := l.EraseRegion(0x50000000, 0x1000); !errors.As(err, &noRegion) {
		t.Errorf("EraseRegion error = %v, want NoRegionError", err)
	}
	if _, err := l.Write(make([]byte, 16), 0x50000000); !errors.As(err, &noRegion) {
		t.Errorf("Write error = %v, want NoRegionError", err)
	}
	if _, err := l.Read(make([]byte, 16), 0x50000000); !errors.As(err, &noRegion) {
		t.Errorf("Read error = %v, want NoRegionError", err)
	}
	if err := l.Close(0x50000000); !errors.As(err, &noRegion) {
		t.Errorf("Close error = %v, want NoRegionError", err)
	}

	if !strings.Contains(logged.String(), "invalid region") {
		t.Error("resolution failures were not logged")
	}
}

func TestEraseAllUsesFullExtent(t *testing.T) {
	algo := &stubAlgo{}
	l := buildList(t, nil,
		Region{Addr: 0x1A000000, Size: 0x80000, Name: "FLASH A", Algo: algo, BufferSize: 512},
	)

	// Mid-region address; any size the host supplied is ignored.
	n, err := l.EraseAll(0x1A001234)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0x80000 {
		t.Errorf("bytes erased = 0x%X, want 0x80000", n)
	}
	if algo.eraseAddr != 0x1A000000 || algo.eraseSize != 0x80000 {
		t.Errorf("erase range = 0x%08X/0x%X, want region base/full size",
			algo.eraseAddr, algo.eraseSize)
	}
}

func TestCapacity(t *testing.T) {
	l := NewList(0x010B, nil)
	algo := &stubAlgo{}

	for i := 0; i < MaxRegions; i++ {
		r := Region{Addr: uint32(i) * 0x1000, Size: 0x1000, Name: "r", Algo: algo, BufferSize: 64}
		if err := l.Add(r); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}

	var capErr *CapacityError
	err := l.Add(Region{Name: "overflow", Algo: algo})
	if !errors.As(err, &capErr) {
		t.Fatalf("error = %v, want CapacityError", err)
	}
	if l.Len() != MaxRegions {
		t.Errorf("Len = %d, want %d", l.Len(), MaxRegions)
	}
	if l.Avail() != 0 {
		t.Errorf("Avail = %d, want 0", l.Avail())
	}
}
