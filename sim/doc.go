// Package sim provides in-memory implementations of the hardware units
// the programming algorithms drive. It exists for testing and for running
// the update engine without a board attached: the simulated units enforce
// the same ordering rules the real controllers do (sector prepare before
// erase or program, a wait after every EEPROM word) and can inject
// faults on demand.
package sim
