package sim

import (
	"github.com/clarenceliu/lpc1857-dfusec/algo"
	"github.com/clarenceliu/lpc1857-dfusec/region"
)

// Board bundles one of every simulated unit, wired the way a real part
// presents them.
type Board struct {
	Flash       *Flash
	SerialFlash *SerialFlash
	Memory      *Memory
	EEPROM      *EEPROM
}

// NewBoard returns a board with all units present and blank. The serial
// flash defaults to 4 MiB.
func NewBoard() *Board {
	return &Board{
		Flash:       NewFlash(),
		SerialFlash: NewSerialFlash(4 * 1024 * 1024),
		Memory:      NewMemory(),
		EEPROM:      NewEEPROM(),
	}
}

// Regions discovers every unit in the standard probe order and returns
// the populated registry.
func (b *Board) Regions(version uint32, debug region.DebugFunc) *region.List {
	return algo.Discover(version, debug,
		algo.NewSPIFlash(b.SerialFlash, debug),
		algo.NewIntFlash(b.Flash, debug),
		algo.NewSRAM(b.Memory, debug),
		algo.NewEEPROM(b.EEPROM, debug),
	)
}
