package algo_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/clarenceliu/lpc1857-dfusec/algo"
	"github.com/clarenceliu/lpc1857-dfusec/region"
	"github.com/clarenceliu/lpc1857-dfusec/sim"
)

func newEEPROM(t *testing.T) (*algo.EEPROM, *sim.EEPROM) {
	t.Helper()
	hw := sim.NewEEPROM()
	drv := algo.NewEEPROM(hw, t.Logf)
	if got := len(drv.Init(region.MaxRegions)); got != 1 {
		t.Fatalf("Init returned %d regions, want 1", got)
	}
	return drv, hw
}

func TestEEPROMInit(t *testing.T) {
	drv, _ := newEEPROM(t)
	regions := drv.Init(region.MaxRegions)
	r := regions[0]
	if r.Addr != 0x20040000 || r.Size != 0x4000 || r.BufferSize != 128 {
		t.Errorf("region 0x%08X/0x%X buffer %d, want 0x20040000/0x4000 buffer 128", r.Addr, r.Size, r.BufferSize)
	}
}

func TestEEPROMInitFailure(t *testing.T) {
	hw := sim.NewEEPROM()
	hw.FailInit = true
	if regions := algo.NewEEPROM(hw, nil).Init(region.MaxRegions); len(regions) != 0 {
		t.Fatalf("got %d regions with failed controller, want 0", len(regions))
	}
}

func TestEEPROMWritePagePadsAndWaits(t *testing.T) {
	drv, hw := newEEPROM(t)

	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	n, err := drv.Write(data, 0x20040000)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != uint32(len(data)) {
		t.Errorf("Write returned 0x%X, want 0x%X", n, len(data))
	}

	// One program wait per word of the full page.
	if hw.Waits != 128/4 {
		t.Errorf("controller saw %d program waits, want %d", hw.Waits, 128/4)
	}

	got := hw.Bytes()[:128]
	if !bytes.Equal(got[:len(data)], data) {
		t.Error("programmed data does not match input")
	}
	for i := len(data); i < 128; i++ {
		if got[i] != 0xFF {
			t.Fatalf("pad byte %d = 0x%02X, want 0xFF", i, got[i])
		}
	}
}

func TestEEPROMWriteTargetsContainingPage(t *testing.T) {
	drv, hw := newEEPROM(t)

	// An address in the middle of the second page programs that whole
	// page from its base.
	data := bytes.Repeat([]byte{0x7E}, 16)
	if _, err := drv.Write(data, 0x20040000+128+32); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(hw.Bytes()[128:128+16], data) {
		t.Error("data did not land at page base")
	}
}

func TestEEPROMEraseZeroFillsPage(t *testing.T) {
	drv, hw := newEEPROM(t)

	if _, err := drv.Write(bytes.Repeat([]byte{0xAA}, 128), 0x20040000); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := drv.EraseRegion(0x20040010, 16); err != nil {
		t.Fatalf("EraseRegion: %v", err)
	}
	for i, b := range hw.Bytes()[:128] {
		if b != 0 {
			t.Fatalf("byte %d = 0x%02X after erase, want 0", i, b)
		}
	}
}

func TestEEPROMValidation(t *testing.T) {
	drv, _ := newEEPROM(t)

	var re *algo.RangeError
	if _, err := drv.Write(make([]byte, 16), 0x20050000); !errors.As(err, &re) {
		t.Errorf("out of range write error %v, want RangeError", err)
	}
	if _, err := drv.Read(make([]byte, 16), 0x20050000); !errors.As(err, &re) {
		t.Errorf("out of range read error %v, want RangeError", err)
	}

	var ae *algo.AlignmentError
	if _, err := drv.Write(make([]byte, 129), 0x20040000); !errors.As(err, &ae) {
		t.Errorf("oversize write error %v, want AlignmentError", err)
	}
}

func TestEEPROMReadBack(t *testing.T) {
	drv, _ := newEEPROM(t)

	want := bytes.Repeat([]byte{0x3C}, 128)
	if _, err := drv.Write(want, 0x20040000); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := make([]byte, 128)
	if _, err := drv.Read(got, 0x20040000); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("read data does not match programmed data")
	}
}
