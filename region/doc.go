// Package region implements the memory region registry and the root
// dispatcher of the programming engine.
//
// A Region binds an address-bounded span of device memory to the
// programming algorithm that serves it. Regions are discovered once at
// startup by the algorithm drivers and collected into a fixed-capacity
// List; the list is never mutated afterwards. Every erase, write, read and
// close operation first resolves its address range to a region and then
// forwards to that region's Algorithm.
//
// Regions must not overlap. The list does not verify this at registration
// time; it is a documented precondition of the drivers that populate it.
// When regions do overlap, the first match in registration order wins.
package region
