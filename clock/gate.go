// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package clock

import "github.com/go-radio/k5hal/internal/critical"

// DeviceTag is implemented by the zero-sized marker types naming every
// clock-gated peripheral on the chip.
type DeviceTag interface {
	gateBit() uint8
}

type (
	DevGPIOPortA struct{}
	DevGPIOPortB struct{}
	DevGPIOPortC struct{}
	DevSPI0      struct{}
	DevUART0     struct{}
	DevUART1     struct{}
	DevUART2     struct{}
	DevTimer0    struct{}
	DevTimer1    struct{}
	DevTimer2    struct{}
	DevSysTick   struct{}
	DevSARADC    struct{}
	DevFlash     struct{}
)

func (DevGPIOPortA) gateBit() uint8 { return 0 }
func (DevGPIOPortB) gateBit() uint8 { return 1 }
func (DevGPIOPortC) gateBit() uint8 { return 2 }
func (DevSPI0) gateBit() uint8      { return 3 }
func (DevUART0) gateBit() uint8     { return 4 }
func (DevUART1) gateBit() uint8     { return 5 }
func (DevUART2) gateBit() uint8     { return 6 }
func (DevTimer0) gateBit() uint8    { return 7 }
func (DevTimer1) gateBit() uint8    { return 8 }
func (DevTimer2) gateBit() uint8    { return 9 }
func (DevSysTick) gateBit() uint8   { return 10 }
func (DevSARADC) gateBit() uint8    { return 11 }
func (DevFlash) gateBit() uint8     { return 12 }

// gateReg is the device-clock-gate register: one bit per peripheral,
// shared bit-wise among all Gate holders.
var gateReg uint32

// Gate is a capability token proving the holder has the exclusive right to
// toggle device D's clock-gate bit. It is zero-sized and carries no runtime
// state. (*Config).Freeze hands out one of each in Gates; the type itself
// does not stop other code from writing a Gate[D]{} literal, and Freeze
// does not refuse a second call on the same Config.
type Gate[D DeviceTag] struct{}

// Enable sets D's clock-gate bit, inside a critical section so concurrent
// bit-set/bit-clear from other gates can't race.
func (Gate[D]) Enable() {
	var d D
	t := critical.Enter()
	defer critical.Exit(t)
	gateReg |= 1 << d.gateBit()
}

// Disable clears D's clock-gate bit.
func (Gate[D]) Disable() {
	var d D
	t := critical.Enter()
	defer critical.Exit(t)
	gateReg &^= 1 << d.gateBit()
}

// Enabled reports whether D's clock gate is currently open.
func (Gate[D]) Enabled() bool {
	var d D
	return gateReg&(1<<d.gateBit()) != 0
}

// Gates bundles one Gate per clock-gated peripheral, handed out together by
// Freeze.
type Gates struct {
	GPIOPortA Gate[DevGPIOPortA]
	GPIOPortB Gate[DevGPIOPortB]
	GPIOPortC Gate[DevGPIOPortC]
	SPI0      Gate[DevSPI0]
	UART0     Gate[DevUART0]
	UART1     Gate[DevUART1]
	UART2     Gate[DevUART2]
	Timer0    Gate[DevTimer0]
	Timer1    Gate[DevTimer1]
	Timer2    Gate[DevTimer2]
	SysTick   Gate[DevSysTick]
	SARADC    Gate[DevSARADC]
	Flash     Gate[DevFlash]
}
