// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

import (
	"fmt"

	"github.com/go-radio/k5hal/internal/critical"
)

// Pin is a capability token for GPIO pin N on port P in mode M. It is the
// fully typed, zero-sized projection: both port and index live in the type,
// so holding a Pin costs nothing at runtime and a call site that only
// accepts Pin[PortB, Idx15, Alternate[Spi0Clk, AltOut]] rejects any other
// pin at compile time.
type Pin[P PortTag, N PinIndexTag, M ModeTag] struct{}

func (Pin[P, N, M]) String() string {
	var m M
	return fmt.Sprintf("P%s%d<%s>", portNameOf[P](), indexOf[N](), m.String())
}

// port and index registers, modeling the chip's per-pin GPIO control bits.
// In production these fields would overlay memory-mapped registers through
// an unsafe.Pointer the way host/bcm283x.gpioMap does; here they are plain
// package state so the transition algorithm can be exercised in tests
// without a real register file.
type portRegs struct {
	function    [16]uint8
	direction   uint16 // bit set = output
	inputEnable uint16
	pullUp      uint16
	pullDown    uint16
	openDrain   uint16
	outputData  uint16
	level       uint16 // physical pin level; tests drive this to simulate input
}

var ports [3]portRegs

func setBit(reg *uint16, mask uint16, set bool) {
	if set {
		*reg |= mask
	} else {
		*reg &^= mask
	}
}

func modeBitsOf[M ModeTag]() bits {
	var m M
	return m.bits()
}

// transitionRaw performs the six-field mode transition algorithm against
// the register block for (port, idx), writing only fields
// that differ between from and to (or all six if full is set), in the
// fixed order input-enable, pull-down, pull-up, open-drain, function-
// select, direction — function-select always ahead of direction so the
// electrical state is never an output driving into another peripheral's
// input path mid-transition.
func transitionRaw(port, idx uint8, from, to bits, full bool) {
	t := critical.Enter()
	defer critical.Exit(t)
	transitionLocked(port, idx, from, to, full)
}

// IntoMode consumes a pin in mode M1, transitions the hardware to mode M2
// and returns the pin retyped to M2.
func IntoMode[M2 ModeTag, P PortTag, N PinIndexTag, M1 ModeTag](Pin[P, N, M1]) Pin[P, N, M2] {
	transitionRaw(portOf[P](), indexOf[N](), modeBitsOf[M1](), modeBitsOf[M2](), isUnspecified[M1]())
	return Pin[P, N, M2]{}
}

// OutputModeTag is implemented by the two concrete output mode markers.
// IntoModeInState and Write require it so that writing an output level only
// type-checks against a pin that is (or is becoming) an output.
type OutputModeTag interface {
	ModeTag
	outputMarker()
}

func (OutputPushPull) outputMarker()  {}
func (OutputOpenDrain) outputMarker() {}

// InputModeTag is implemented by the three concrete input mode markers.
type InputModeTag interface {
	ModeTag
	inputMarker()
}

func (InputFloating) inputMarker()  {}
func (InputPullUp) inputMarker()    {}
func (InputPullDown) inputMarker()  {}

// IntoModeInState consumes a pin, writes the output data bit for level
// before transitioning to M2, and returns the pin retyped to M2 — so the
// pin never drives the wrong level for even one instant during the
// transition.
func IntoModeInState[M2 OutputModeTag, P PortTag, N PinIndexTag, M1 ModeTag](_ Pin[P, N, M1], level Level) Pin[P, N, M2] {
	port, idx := portOf[P](), indexOf[N]()
	t := critical.Enter()
	setBit(&ports[port].outputData, uint16(1)<<idx, bool(level))
	critical.Exit(t)
	transitionRaw(port, idx, modeBitsOf[M1](), modeBitsOf[M2](), isUnspecified[M1]())
	return Pin[P, N, M2]{}
}

// WithMode temporarily transitions a pin to mode M2 for the duration of f,
// restoring the original mode M1 on every exit path, including a panic
// propagating out of f. If M1 was an output mode, its output-data bit is
// preserved across the round trip; otherwise the output bit after
// restoration is undefined.
func WithMode[M2 ModeTag, P PortTag, N PinIndexTag, M1 ModeTag](p Pin[P, N, M1], f func(Pin[P, N, M2])) Pin[P, N, M1] {
	port, idx := portOf[P](), indexOf[N]()
	wasOutput := modeBitsOf[M1]().direction == DirOut
	var preserved Level
	if wasOutput {
		preserved = Level(ports[port].outputData&(uint16(1)<<idx) != 0)
	}
	entered := IntoMode[M2](p)
	defer func() {
		transitionRaw(port, idx, modeBitsOf[M2](), modeBitsOf[M1](), false)
		if wasOutput {
			t := critical.Enter()
			setBit(&ports[port].outputData, uint16(1)<<idx, bool(preserved))
			critical.Exit(t)
		}
	}()
	f(entered)
	return Pin[P, N, M1]{}
}

// Read returns the pin's current electrical level. Requires the pin be in
// an input mode.
func Read[P PortTag, N PinIndexTag, M InputModeTag](Pin[P, N, M]) Level {
	idx := indexOf[N]()
	return Level(ports[portOf[P]()].level&(uint16(1)<<idx) != 0)
}

// Write sets the pin's output-data bit. Requires the pin be in an output
// mode. Takes effect immediately; it does not itself enter a critical
// section beyond the single register write, since this chip's mode changes
// are infallible at the hardware level.
func Write[P PortTag, N PinIndexTag, M OutputModeTag](_ Pin[P, N, M], level Level) {
	port, idx := portOf[P](), indexOf[N]()
	t := critical.Enter()
	defer critical.Exit(t)
	setBit(&ports[port].outputData, uint16(1)<<idx, bool(level))
	// Loop this chip's push-pull output back into its level register so Read
	// observes what was written, the way a real pin's input buffer samples
	// its own output driver.
	setBit(&ports[port].level, uint16(1)<<idx, bool(level))
}

// setSimulatedInput drives a pin's level register directly, bypassing the
// output path. Exported to tests only via the package-internal test file;
// not part of the public API.
func setSimulatedInput(port, idx uint8, level Level) {
	setBit(&ports[port].level, uint16(1)<<idx, bool(level))
}
