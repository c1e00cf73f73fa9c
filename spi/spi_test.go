// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spi

import (
	"testing"

	"github.com/go-radio/k5hal/clock"
	"github.com/go-radio/k5hal/gpio"
)

func resetPort0() {
	port0 = port0Regs{}
}

func newTestPort() *Port {
	resetPort0()
	cfg := New(clock.Gate[clock.DevSPI0]{})
	var clk gpio.Pin[gpio.PortB, gpio.Idx15, gpio.Alternate[gpio.Spi0Clk, gpio.AltOut]]
	var miso gpio.Pin[gpio.PortB, gpio.Idx14, gpio.Alternate[gpio.Spi0Miso, gpio.AltIn]]
	var mosi gpio.Pin[gpio.PortB, gpio.Idx13, gpio.Alternate[gpio.Spi0Mosi, gpio.AltOut]]
	return cfg.Bind(clk, miso, mosi)
}

func TestTransferEchoesWrittenBytes(t *testing.T) {
	port := newTestPort()
	tx := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	rx := make([]byte, len(tx))
	if err := port.Transfer(tx, rx); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	for i := range tx {
		if rx[i] != tx[i] {
			t.Fatalf("rx[%d] = %#x, want %#x", i, rx[i], tx[i])
		}
	}
}

func TestTransferSpansMoreThanOneFIFODepth(t *testing.T) {
	port := newTestPort()
	tx := make([]byte, fifoDepth*3+1)
	for i := range tx {
		tx[i] = byte(i)
	}
	rx := make([]byte, len(tx))
	if err := port.Transfer(tx, rx); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	for i := range tx {
		if rx[i] != tx[i] {
			t.Fatalf("rx[%d] = %#x, want %#x", i, rx[i], tx[i])
		}
	}
}

func TestTransferRejectsLengthMismatch(t *testing.T) {
	port := newTestPort()
	err := port.Transfer(make([]byte, 3), make([]byte, 2))
	if err == nil {
		t.Fatal("expected an error on tx/rx length mismatch")
	}
}

func TestTransferRejectsUnboundPort(t *testing.T) {
	resetPort0()
	port := &Port{}
	err := port.Transfer(nil, make([]byte, 1))
	if err != ErrNotEnabled {
		t.Fatalf("err = %v, want ErrNotEnabled", err)
	}
}

func TestReadWritesZerosOnTheWire(t *testing.T) {
	port := newTestPort()
	dst := make([]byte, 4)
	if err := port.Read(dst); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for _, b := range dst {
		if b != 0 {
			t.Fatalf("Read returned non-zero echo byte %#x", b)
		}
	}
}

func TestSpiDeviceAssertsAndDeassertsSelect(t *testing.T) {
	port := newTestPort()
	var ssnPin gpio.Pin[gpio.PortA, gpio.Idx2, gpio.OutputPushPull]
	ssn := gpio.NewSharedPin(ssnPin)
	ssn.Write(gpio.High)

	dev := NewSpiDevice(port, ssn)
	if err := dev.Transfer([]byte{0xAA}, make([]byte, 1)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if ssn.Read() != gpio.High {
		t.Fatalf("select line left asserted after Transfer")
	}
}
