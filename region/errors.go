package region

import "fmt"

// NoRegionError indicates that an address range does not resolve to any
// registered region.
type NoRegionError struct {
	Addr uint32
	Size uint32
}

func (e *NoRegionError) Error() string {
	return fmt.Sprintf("no region for address 0x%08X size 0x%X", e.Addr, e.Size)
}

// CapacityError indicates that registering a region would exceed the fixed
// registry capacity.
type CapacityError struct {
	Name string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("region list full, cannot add %q (max %d regions)", e.Name, MaxRegions)
}
