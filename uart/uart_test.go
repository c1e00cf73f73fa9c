// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uart

import (
	"testing"

	"github.com/go-radio/k5hal/clock"
	"github.com/go-radio/k5hal/gpio"
	"github.com/go-radio/k5hal/internal/units"
)

func resetInstances() {
	instances = map[clock.DeviceTag]*regHandle{}
}

func TestBindComputesRoundedDivider(t *testing.T) {
	resetInstances()
	cfg := New[clock.DevUART0](clock.Gate[clock.DevUART0]{}).WithBaud(9600)
	var tx gpio.Pin[gpio.PortA, gpio.Idx9, gpio.Alternate[gpio.Uart0Tx, gpio.AltOut]]
	var rx gpio.Pin[gpio.PortA, gpio.Idx10, gpio.Alternate[gpio.Uart0Rx, gpio.AltIn]]
	port, err := Bind0[uint8](cfg, 24*units.MegaHertz, tx, rx)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	actual := port.ActualBaud(24 * units.MegaHertz)
	// 24,000,000 / 9600 = 2500 exactly.
	if actual != 9600 {
		t.Fatalf("ActualBaud = %d, want 9600", actual)
	}
}

func TestBindRejectsOutOfRangeBaud(t *testing.T) {
	resetInstances()
	cfg := New[clock.DevUART0](clock.Gate[clock.DevUART0]{}).WithBaud(1)
	var tx gpio.Pin[gpio.PortA, gpio.Idx9, gpio.Alternate[gpio.Uart0Tx, gpio.AltOut]]
	var rx gpio.Pin[gpio.PortA, gpio.Idx10, gpio.Alternate[gpio.Uart0Rx, gpio.AltIn]]
	// sysClk/baud = 48,000,000 overflows a u16 divider.
	_, err := Bind0[uint8](cfg, 48*units.MegaHertz, tx, rx)
	if err != ErrBaudOutOfRange {
		t.Fatalf("err = %v, want ErrBaudOutOfRange", err)
	}
}

func TestNineBitWordSize(t *testing.T) {
	resetInstances()
	cfg := New[clock.DevUART1](clock.Gate[clock.DevUART1]{}).WithBaud(9600)
	var tx gpio.Pin[gpio.PortB, gpio.Idx0, gpio.Alternate[gpio.Uart1Tx, gpio.AltOut]]
	var rx gpio.Pin[gpio.PortB, gpio.Idx1, gpio.Alternate[gpio.Uart1Rx, gpio.AltIn]]
	port, err := Bind1[uint16](cfg, 24*units.MegaHertz, tx, rx)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if port.cfg.regs.wordBits != 9 {
		t.Fatalf("wordBits = %d, want 9", port.cfg.regs.wordBits)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	resetInstances()
	cfg := New[clock.DevUART2](clock.Gate[clock.DevUART2]{}).WithBaud(9600)
	var tx gpio.Pin[gpio.PortC, gpio.Idx0, gpio.Alternate[gpio.Uart2Tx, gpio.AltOut]]
	var rx gpio.Pin[gpio.PortC, gpio.Idx1, gpio.Alternate[gpio.Uart2Rx, gpio.AltIn]]
	port, err := Bind2[uint8](cfg, 24*units.MegaHertz, tx, rx)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := port.Write([]uint8{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	port.injectReceived([]uint8{9, 8})
	dst := make([]uint8, 4)
	n, err := port.Read(dst)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 2 || dst[0] != 9 || dst[1] != 8 {
		t.Fatalf("Read = %d, %v", n, dst[:n])
	}
}
