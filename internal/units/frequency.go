// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package units defines the Frequency value type used throughout the HAL
// wherever a clock, baud rate or timer tick rate is passed around.
//
// This is a deliberately narrowed version of periph's conn/physic unit
// system: only Frequency and its derived Duration are needed by this chip's
// clock tree, timers and UART baud computation, so the mass/pressure/
// humidity/distance families that conn/physic carries are not reproduced.
package units

import (
	"fmt"
	"time"
)

// Frequency is a frequency in Hz, stored as a plain integer count of cycles
// per second (unlike physic.Frequency, which stores micro-Hertz; this chip
// never needs sub-Hz precision).
type Frequency uint32

// Frequency constants, mirroring physic.Frequency's Hertz/KiloHertz/
// MegaHertz ladder.
const (
	Hertz     Frequency = 1
	KiloHertz           = 1000 * Hertz
	MegaHertz           = 1000 * KiloHertz
)

// String formats the frequency with an SI suffix, e.g. "48MHz", "32.768kHz".
func (f Frequency) String() string {
	switch {
	case f >= MegaHertz && f%MegaHertz == 0:
		return fmt.Sprintf("%dMHz", f/MegaHertz)
	case f >= MegaHertz:
		return fmt.Sprintf("%.3fMHz", float64(f)/float64(MegaHertz))
	case f >= KiloHertz && f%KiloHertz == 0:
		return fmt.Sprintf("%dkHz", f/KiloHertz)
	case f >= KiloHertz:
		return fmt.Sprintf("%.3fkHz", float64(f)/float64(KiloHertz))
	default:
		return fmt.Sprintf("%dHz", f)
	}
}

// Duration returns the period of one cycle at this frequency.
func (f Frequency) Duration() time.Duration {
	if f == 0 {
		return 0
	}
	return time.Second / time.Duration(f)
}

// MHz returns the frequency as a bare MHz count, rounding to the nearest
// integer. Used by the flash programmer's timing calibration, which is
// specified in terms of an integer CPU-clock-in-MHz parameter.
func (f Frequency) MHz() uint32 {
	return uint32((f + MegaHertz/2) / MegaHertz)
}

// Div returns the frequency produced by dividing f by d, rounding to the
// nearest Hz.
func (f Frequency) Div(d uint32) Frequency {
	if d == 0 {
		return f
	}
	return Frequency((uint64(f) + uint64(d)/2) / uint64(d))
}
