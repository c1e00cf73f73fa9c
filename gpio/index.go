// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

// PinIndexTag is implemented by the zero-sized marker types Idx0..Idx15,
// which stand in for a pin number (0-15 on each port) at compile time for
// the fully typed Pin projection.
type PinIndexTag interface {
	index() uint8
}

// Idx0 through Idx15 name the sixteen pin positions available on each port.
// Each is a distinct type so that Pin[P, Idx3, M] and Pin[P, Idx4, M] are
// unrelated types and cannot be confused by the compiler.
type (
	Idx0  struct{}
	Idx1  struct{}
	Idx2  struct{}
	Idx3  struct{}
	Idx4  struct{}
	Idx5  struct{}
	Idx6  struct{}
	Idx7  struct{}
	Idx8  struct{}
	Idx9  struct{}
	Idx10 struct{}
	Idx11 struct{}
	Idx12 struct{}
	Idx13 struct{}
	Idx14 struct{}
	Idx15 struct{}
)

func (Idx0) index() uint8  { return 0 }
func (Idx1) index() uint8  { return 1 }
func (Idx2) index() uint8  { return 2 }
func (Idx3) index() uint8  { return 3 }
func (Idx4) index() uint8  { return 4 }
func (Idx5) index() uint8  { return 5 }
func (Idx6) index() uint8  { return 6 }
func (Idx7) index() uint8  { return 7 }
func (Idx8) index() uint8  { return 8 }
func (Idx9) index() uint8  { return 9 }
func (Idx10) index() uint8 { return 10 }
func (Idx11) index() uint8 { return 11 }
func (Idx12) index() uint8 { return 12 }
func (Idx13) index() uint8 { return 13 }
func (Idx14) index() uint8 { return 14 }
func (Idx15) index() uint8 { return 15 }

func indexOf[N PinIndexTag]() uint8 {
	var n N
	return n.index()
}
