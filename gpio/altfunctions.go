// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

// Fn1 through Fn15 name the raw alternate-function codes 1-15 a pin's
// function-select field can hold; code 0 is plain GPIO and has no marker
// type (a pin in that state is an Input or Output mode, not Alternate). The named roles below (Spi0Clk,
// Uart1Tx, ...) reuse a handful of Fn codes, since on this chip's real mux
// table, which role lives behind which 4-bit code is pin-dependent. Rather
// than model a full per-pin mux table (out of proportion to what the three
// worked peripherals need), each role is given one fixed code, and the
// peripheral configurators additionally pin each role to one specific
// (port, index) pair in their Bind signatures, so both the function code
// and the physical pin location are enforced at compile time, just split
// across two files.
type (
	Fn1  struct{}
	Fn2  struct{}
	Fn3  struct{}
	Fn4  struct{}
	Fn5  struct{}
	Fn6  struct{}
	Fn7  struct{}
	Fn8  struct{}
	Fn9  struct{}
	Fn10 struct{}
	Fn11 struct{}
	Fn12 struct{}
	Fn13 struct{}
	Fn14 struct{}
	Fn15 struct{}
)

func (Fn1) function() uint8  { return 1 }
func (Fn2) function() uint8  { return 2 }
func (Fn3) function() uint8  { return 3 }
func (Fn4) function() uint8  { return 4 }
func (Fn5) function() uint8  { return 5 }
func (Fn6) function() uint8  { return 6 }
func (Fn7) function() uint8  { return 7 }
func (Fn8) function() uint8  { return 8 }
func (Fn9) function() uint8  { return 9 }
func (Fn10) function() uint8 { return 10 }
func (Fn11) function() uint8 { return 11 }
func (Fn12) function() uint8 { return 12 }
func (Fn13) function() uint8 { return 13 }
func (Fn14) function() uint8 { return 14 }
func (Fn15) function() uint8 { return 15 }

func (Fn1) altName() string  { return "Fn1" }
func (Fn2) altName() string  { return "Fn2" }
func (Fn3) altName() string  { return "Fn3" }
func (Fn4) altName() string  { return "Fn4" }
func (Fn5) altName() string  { return "Fn5" }
func (Fn6) altName() string  { return "Fn6" }
func (Fn7) altName() string  { return "Fn7" }
func (Fn8) altName() string  { return "Fn8" }
func (Fn9) altName() string  { return "Fn9" }
func (Fn10) altName() string { return "Fn10" }
func (Fn11) altName() string { return "Fn11" }
func (Fn12) altName() string { return "Fn12" }
func (Fn13) altName() string { return "Fn13" }
func (Fn14) altName() string { return "Fn14" }
func (Fn15) altName() string { return "Fn15" }

// Named roles, each an alias for one of the raw Fn codes, so configurator
// Bind signatures read as "Alternate[Spi0Clk, AltOut]" rather than
// "Alternate[Fn1, AltOut]".
type (
	Spi0Clk  = Fn1
	Spi0Miso = Fn1
	Spi0Mosi = Fn1
	Spi0Ssn  = Fn1

	Uart0Tx  = Fn2
	Uart0Rx  = Fn2
	Uart0Rts = Fn2
	Uart0Cts = Fn2

	Uart1Tx  = Fn3
	Uart1Rx  = Fn3
	Uart1Rts = Fn3
	Uart1Cts = Fn3

	Uart2Tx  = Fn4
	Uart2Rx  = Fn4
	Uart2Rts = Fn4
	Uart2Cts = Fn4

	// XtalHigh and XtalLow mark the dedicated external-crystal pins
	// (A3/A4 and A1/A2 respectively). They are not bindable by any
	// peripheral configurator; clock.Config consumes them directly by
	// requiring the caller to hold a pin typed in one of these modes
	// before it will accept an external crystal token.
	XtalHigh = Fn5
	XtalLow  = Fn6
)
