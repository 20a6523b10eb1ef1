// Package algo implements the four programming algorithms of the update
// engine: internal flash, external serial (SPIFI) flash, internal RAM and
// EEPROM. Each driver implements region.Algorithm against a narrow
// hardware-primitive interface declared in hal.go, enforcing the alignment,
// sector and padding rules of its memory technology.
//
// Drivers discover their regions at init time (bank sizes from the part ID,
// serial flash size from the attached device) and contribute them to the
// region list through Discover, in the fixed order the board requires:
// serial flash, internal flash, internal RAM, EEPROM.
package algo
