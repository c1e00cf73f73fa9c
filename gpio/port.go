// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

// PortTag is implemented by the zero-sized marker types PortA, PortB and
// PortC, which stand in for a GPIO port at compile time.
type PortTag interface {
	port() uint8
	name() string
}

// PortA, PortB and PortC name the chip's three GPIO ports. Their method
// sets are unexported: callers only ever need them as type parameters, not
// as values to call methods on.
type (
	PortA struct{}
	PortB struct{}
	PortC struct{}
)

func (PortA) port() uint8 { return 0 }
func (PortB) port() uint8 { return 1 }
func (PortC) port() uint8 { return 2 }

func (PortA) name() string { return "A" }
func (PortB) name() string { return "B" }
func (PortC) name() string { return "C" }

func portOf[P PortTag]() uint8 {
	var p P
	return p.port()
}

func portNameOf[P PortTag]() string {
	var p P
	return p.name()
}

// portNameByID maps a runtime port id (0/1/2) back to its name, used by
// ErasedPin and PartialPin's String methods.
func portNameByID(id uint8) string {
	switch id {
	case 0:
		return "A"
	case 1:
		return "B"
	case 2:
		return "C"
	default:
		return "?"
	}
}
