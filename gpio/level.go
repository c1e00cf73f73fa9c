// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

// Level is the electrical level of a pin: Low or High.
//
// Mirrors conn/gpio.Level from the periph.io HAL this package is modeled
// on.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l == Low {
		return "Low"
	}
	return "High"
}

// Pull specifies the internal pull resistor for a pin configured as input.
type Pull uint8

const (
	Float Pull = iota
	PullDown
	PullUp
)

func (p Pull) String() string {
	switch p {
	case Float:
		return "Float"
	case PullDown:
		return "PullDown"
	case PullUp:
		return "PullUp"
	default:
		return "Pull(?)"
	}
}

// Drive specifies how a pin configured as output drives its level.
type Drive uint8

const (
	PushPull Drive = iota
	OpenDrain
)

func (d Drive) String() string {
	if d == OpenDrain {
		return "OpenDrain"
	}
	return "PushPull"
}

// Direction is the data direction of a mode: input or output.
type Direction uint8

const (
	DirIn Direction = iota
	DirOut
)
