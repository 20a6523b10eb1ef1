package algo

import "fmt"

// AlignmentError indicates an address range that violates a technology's
// alignment or quantum rule. The operation was rejected before touching
// hardware.
type AlignmentError struct {
	Op     string
	Addr   uint32
	Size   uint32
	Reason string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%s: 0x%08X size 0x%X: %s", e.Op, e.Addr, e.Size, e.Reason)
}

// RangeError indicates an address range outside the regions a driver
// serves, or one that crosses a bank boundary.
type RangeError struct {
	Op   string
	Addr uint32
	Size uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: 0x%08X size 0x%X does not map to a programmable range", e.Op, e.Addr, e.Size)
}

// HardwareError wraps a failure reported by a driver primitive.
type HardwareError struct {
	Op   string
	Addr uint32
	Err  error
}

func (e *HardwareError) Error() string {
	return fmt.Sprintf("%s at 0x%08X: %v", e.Op, e.Addr, e.Err)
}

func (e *HardwareError) Unwrap() error {
	return e.Err
}

// VerifyError indicates a byte mismatch found by the post-program
// verification pass. The write is reported failed; there is no retry.
type VerifyError struct {
	Addr uint32
	Want byte
	Got  byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verify mismatch at 0x%08X: is 0x%02X, should be 0x%02X", e.Addr, e.Got, e.Want)
}
