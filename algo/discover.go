package algo

import (
	"github.com/clarenceliu/lpc1857-dfusec/region"
)

// Driver probes one class of hardware and reports the regions it found.
// avail is the number of registry slots still free; a driver returns at
// most that many regions. A probe that finds nothing returns an empty
// slice rather than an error, since absent hardware is a normal
// configuration.
type Driver interface {
	Init(avail int) []region.Region
}

// Discover runs each driver in order and registers everything it reports,
// stopping once the registry is full. Order matters: the host resolves
// overlapping regions first-match-wins, so drivers for preferred hardware
// go first.
func Discover(version uint32, debug region.DebugFunc, drivers ...Driver) *region.List {
	list := region.NewList(version, debug)
	for _, d := range drivers {
		avail := list.Avail()
		if avail == 0 {
			break
		}
		for _, r := range d.Init(avail) {
			if err := list.Add(r); err != nil {
				break
			}
		}
	}
	return list
}
