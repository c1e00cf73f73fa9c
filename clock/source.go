// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package clock

import (
	"github.com/go-radio/k5hal/gpio"
	"github.com/go-radio/k5hal/internal/units"
)

// SysSource is the declarative description of where the system clock
// should come from: InternalHigh, InternalHighDiv2, or Divider.
type SysSource interface {
	sysSource()
}

// InternalHigh selects the internal high-speed RC oscillator directly,
// running at 24MHz or 48MHz depending on its configured rate.
type InternalHigh struct {
	// Rate48MHz selects the oscillator's 48MHz setting instead of the
	// default 24MHz.
	Rate48MHz bool
}

func (InternalHigh) sysSource() {}

// InternalHighDiv2 selects the internal high-speed oscillator divided by
// two in hardware ahead of the divider mux.
type InternalHighDiv2 struct{}

func (InternalHighDiv2) sysSource() {}

// Divider selects the system clock from the chip's divider/PLL clock tree:
// Src divided by Div.
type Divider struct {
	Div uint8 // one of 1, 2, 4, 8
	Src DividerSource
}

func (Divider) sysSource() {}

// DividerSource is the input to the divider stage.
type DividerSource interface {
	dividerSource()
}

type (
	// DivSrcInternalHigh and DivSrcInternalHighDiv2 route the internal
	// high-speed oscillator (raw, or pre-divided by 2) into the divider.
	DivSrcInternalHigh     struct{}
	DivSrcInternalHighDiv2 struct{}
	// DivSrcExternalHigh and DivSrcExternalLow route an external crystal in
	// directly (bypassing the PLL).
	DivSrcExternalHigh struct{}
	DivSrcExternalLow  struct{}
	// DivSrcInternalLow routes the internal low-speed RC oscillator in.
	DivSrcInternalLow struct{}
)

func (DivSrcInternalHigh) dividerSource()     {}
func (DivSrcInternalHighDiv2) dividerSource() {}
func (DivSrcExternalHigh) dividerSource()     {}
func (DivSrcExternalLow) dividerSource()      {}
func (DivSrcInternalLow) dividerSource()      {}

// PLL routes a PLLSource through a frequency synthesizer with integer
// multiply factor N and divide factor M before the divider stage.
type PLL struct {
	Src PLLSource
	N   uint8 // one of 2, 4, 6, ... (even multipliers)
	M   uint8 // one of 1, 2, 3, ...
}

func (PLL) dividerSource() {}

// PLLSource is the reference clock fed into the PLL.
type PLLSource interface {
	pllSource()
}

type (
	PLLSrcInternalHigh struct{}
	PLLSrcExternalHigh struct{}
)

func (PLLSrcInternalHigh) pllSource() {}
func (PLLSrcExternalHigh) pllSource() {}

// RTCSource selects the RTC clock's source.
type RTCSource interface {
	rtcSource()
}

type (
	RTCSrcInternalLow struct{}
	// RTCSrcExternalLow requires an ExternalLowCrystal to have been
	// supplied on Config.ExternalLow.
	RTCSrcExternalLow struct{}
)

func (RTCSrcInternalLow) rtcSource() {}
func (RTCSrcExternalLow) rtcSource() {}

// ExternalHighCrystal is proof that the external high-speed crystal
// oscillator circuit (pins A3/A4) has been wired up, carrying its nominal
// frequency. Validity of the physical oscillator is the caller's
// responsibility; this type only records the frequency the caller asserts
// is present.
type ExternalHighCrystal struct {
	nominal units.Frequency
}

// NewExternalHighCrystal records an external high-speed crystal of the
// given nominal frequency as present on pins A3/A4. Consuming the two pins
// already in the crystal's alternate-function mode is what ties the
// caller's intent to the actual board wiring at compile time.
func NewExternalHighCrystal(
	_ gpio.Pin[gpio.PortA, gpio.Idx3, gpio.Alternate[gpio.XtalHigh, gpio.AltIn]],
	_ gpio.Pin[gpio.PortA, gpio.Idx4, gpio.Alternate[gpio.XtalHigh, gpio.AltIn]],
	nominal units.Frequency,
) ExternalHighCrystal {
	return ExternalHighCrystal{nominal: nominal}
}

// ExternalLowCrystal is the RTC-side equivalent of ExternalHighCrystal,
// for pins A1/A2.
type ExternalLowCrystal struct {
	nominal units.Frequency
}

// NewExternalLowCrystal records an external low-speed (typically 32.768kHz
// watch) crystal as present on pins A1/A2.
func NewExternalLowCrystal(
	_ gpio.Pin[gpio.PortA, gpio.Idx1, gpio.Alternate[gpio.XtalLow, gpio.AltIn]],
	_ gpio.Pin[gpio.PortA, gpio.Idx2, gpio.Alternate[gpio.XtalLow, gpio.AltIn]],
	nominal units.Frequency,
) ExternalLowCrystal {
	return ExternalLowCrystal{nominal: nominal}
}
