// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

import "fmt"

// PartialPin is the partially erased projection: the port stays in the
// type, the pin index becomes a one-byte runtime field. Useful for code
// that indexes a fixed-port array of pins at runtime.
type PartialPin[P PortTag, M ModeTag] struct {
	idx uint8
}

func (p PartialPin[P, M]) Index() uint8 { return p.idx }

func (p PartialPin[P, M]) String() string {
	var m M
	return fmt.Sprintf("P%s%d<%s>", portNameOf[P](), p.idx, m.String())
}

// ErasePin erases a fully typed pin's index, producing a PartialPin with
// the same port and mode. This direction is always lossless and infallible.
func ErasePin[P PortTag, N PinIndexTag, M ModeTag](Pin[P, N, M]) PartialPin[P, M] {
	return PartialPin[P, M]{idx: indexOf[N]()}
}

// PartialRestoreError is returned by RestoreIndex when the runtime index of
// a PartialPin does not match the requested type parameter N. It carries
// the original PartialPin so the caller loses nothing on failure.
type PartialRestoreError[P PortTag, M ModeTag] struct {
	Pin PartialPin[P, M]
}

func (e *PartialRestoreError[P, M]) Error() string {
	return fmt.Sprintf("gpio: %s does not match requested index", e.Pin.String())
}

// RestoreIndex restores a PartialPin's index to the type system, checking
// it against N. On mismatch it returns the original PartialPin wrapped in a
// *PartialRestoreError.
func RestoreIndex[N PinIndexTag, P PortTag, M ModeTag](p PartialPin[P, M]) (Pin[P, N, M], error) {
	if p.idx != indexOf[N]() {
		return Pin[P, N, M]{}, &PartialRestoreError[P, M]{Pin: p}
	}
	return Pin[P, N, M]{}, nil
}

// ErasedPin is the fully erased projection: port and index both become a
// single runtime byte, 4 high bits port id (0=A, 1=B, 2=C), 4 low bits
// index (0-15). Mode stays a type parameter: only Port and N are erased,
// never Mode.
type ErasedPin[M ModeTag] struct {
	portIdx uint8
}

// Port returns the runtime port id packed into the erased byte.
func (e ErasedPin[M]) Port() uint8 { return e.portIdx >> 4 }

// Index returns the runtime pin index packed into the erased byte.
func (e ErasedPin[M]) Index() uint8 { return e.portIdx & 0xF }

// Byte returns the packed representation, 4 bits port id then 4 bits index.
func (e ErasedPin[M]) Byte() uint8 { return e.portIdx }

func (e ErasedPin[M]) String() string {
	var m M
	return fmt.Sprintf("P%s%d<%s>", portNameByID(e.Port()), e.Index(), m.String())
}

// EraseFurther erases a PartialPin's port, producing a fully erased pin.
func EraseFurther[P PortTag, M ModeTag](p PartialPin[P, M]) ErasedPin[M] {
	return ErasedPin[M]{portIdx: (portOf[P]() << 4) | p.idx}
}

// Erase erases both port and index of a fully typed pin in one step.
func Erase[P PortTag, N PinIndexTag, M ModeTag](p Pin[P, N, M]) ErasedPin[M] {
	return EraseFurther(ErasePin(p))
}

// RestoreError is returned by Restore when an ErasedPin's packed port/index
// does not match the requested type parameters. It carries the original
// ErasedPin so the caller loses nothing on failure.
type RestoreError[M ModeTag] struct {
	Pin ErasedPin[M]
}

func (e *RestoreError[M]) Error() string {
	return fmt.Sprintf("gpio: %s does not match requested port/index", e.Pin.String())
}

// Restore restores an ErasedPin's port and index to the type system,
// checking both against P and N. On mismatch it returns the original
// ErasedPin wrapped in a *RestoreError.
func Restore[P PortTag, N PinIndexTag, M ModeTag](e ErasedPin[M]) (Pin[P, N, M], error) {
	if e.Port() != portOf[P]() || e.Index() != indexOf[N]() {
		return Pin[P, N, M]{}, &RestoreError[M]{Pin: e}
	}
	return Pin[P, N, M]{}, nil
}
