// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

// bits is the six hardware bit-fields every mode assigns:
// input-enable, pull-down, pull-up, open-drain, function-select and
// direction. A mode transition writes only the fields that differ between
// the source and destination bits value.
type bits struct {
	inputEnable bool
	pullDown    bool
	pullUp      bool
	openDrain   bool
	function    uint8 // 0-15; 0 means plain GPIO
	direction   Direction
}

// ModeTag is implemented by every mode marker type: Unspecified,
// InputFloating, InputPullUp, InputPullDown, OutputPushPull,
// OutputOpenDrain and Alternate[F, D].
type ModeTag interface {
	bits() bits
	String() string
}

// isUnspecified reports whether M is the Unspecified marker, which forces a
// full six-field reconfiguration on any transition regardless of the
// computed diff.
func isUnspecified[M ModeTag]() bool {
	var m M
	_, ok := any(m).(Unspecified)
	return ok
}

// Unspecified is the mode of a pin that has never been configured by this
// program (e.g. immediately after reset). Transitioning away from it always
// rewrites all six fields.
type Unspecified struct{}

func (Unspecified) bits() bits      { return bits{} }
func (Unspecified) String() string  { return "Unspecified" }

// InputFloating is an input with no pull resistor engaged.
type InputFloating struct{}

func (InputFloating) bits() bits     { return bits{inputEnable: true, direction: DirIn} }
func (InputFloating) String() string { return "Input<Floating>" }

// InputPullUp is an input with the internal pull-up resistor engaged.
type InputPullUp struct{}

func (InputPullUp) bits() bits     { return bits{inputEnable: true, pullUp: true, direction: DirIn} }
func (InputPullUp) String() string { return "Input<PullUp>" }

// InputPullDown is an input with the internal pull-down resistor engaged.
type InputPullDown struct{}

func (InputPullDown) bits() bits {
	return bits{inputEnable: true, pullDown: true, direction: DirIn}
}
func (InputPullDown) String() string { return "Input<PullDown>" }

// OutputPushPull is a push-pull (actively driven both ways) output.
type OutputPushPull struct{}

func (OutputPushPull) bits() bits     { return bits{direction: DirOut} }
func (OutputPushPull) String() string { return "Output<PushPull>" }

// OutputOpenDrain is an open-drain output: it can only pull low, relying on
// an external or internal pull-up for the high level.
type OutputOpenDrain struct{}

func (OutputOpenDrain) bits() bits     { return bits{openDrain: true, direction: DirOut} }
func (OutputOpenDrain) String() string { return "Output<OpenDrain>" }

// AltFunction is implemented by Fn1..Fn15, naming one of the chip's 15
// non-GPIO pin roles (UART, SPI, …) selected by the 4-bit function-select
// field.
type AltFunction interface {
	function() uint8
	altName() string
}

// InnerDir is implemented by AltIn and AltOut, describing whether an
// alternate function drives the pin (AltOut) or only samples it (AltIn).
type InnerDir interface {
	direction() Direction
}

type AltIn struct{}
type AltOut struct{}

func (AltIn) direction() Direction  { return DirIn }
func (AltOut) direction() Direction { return DirOut }

// Alternate binds a pin to alternate function F with inner direction D. For
// example Alternate[Uart1Tx, AltOut] is the mode a pin must be in before
// uart.Bind1 will accept it as that UART's Tx line.
type Alternate[F AltFunction, D InnerDir] struct{}

func (Alternate[F, D]) bits() bits {
	var f F
	var d D
	return bits{
		function:    f.function(),
		direction:   d.direction(),
		inputEnable: d.direction() == DirIn,
	}
}

func (Alternate[F, D]) String() string {
	var f F
	return "Alternate<" + f.altName() + ">"
}
