// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spi implements the chip's single SPI master: a typestate
// configurator that only binds pins already in the SPI0 alternate
// function, and a Port exposing blocking transfers arbitrated across two
// 8-byte hardware FIFOs.
package spi

import (
	"errors"
	"fmt"

	"github.com/go-radio/k5hal/clock"
	"github.com/go-radio/k5hal/gpio"
)

// Mode determines the SPI communication parameters: CPOL/CPHA plus two
// extra bits this HAL also supports, mirroring conn/spi.Mode's bit-OR
// convention.
type Mode int

const (
	Mode0 Mode = 0x0
	Mode1 Mode = 0x1
	Mode2 Mode = 0x2
	Mode3 Mode = 0x3

	// HalfDuplex requests that MOSI and MISO share a single wire.
	HalfDuplex Mode = 0x4
	// NoCS requests the driver not drive any chip-select line itself.
	NoCS Mode = 0x8
)

const fifoDepth = 8

// fifo models one direction's 8-byte hardware FIFO as a small ring buffer.
type fifo struct {
	buf   [fifoDepth]byte
	head  int
	count int
}

func (f *fifo) full() bool  { return f.count == fifoDepth }
func (f *fifo) empty() bool { return f.count == 0 }

func (f *fifo) push(b byte) {
	f.buf[(f.head+f.count)%fifoDepth] = b
	f.count++
}

func (f *fifo) pop() byte {
	b := f.buf[f.head]
	f.head = (f.head + 1) % fifoDepth
	f.count--
	return b
}

// port0Regs is the SPI0 peripheral's register-level state.
type port0Regs struct {
	enabled bool
	mode    Mode
	divider uint16
	tx, rx  fifo
}

var port0 port0Regs

// Config is the SPI0 configurator: it holds the raw peripheral handle (its
// Gate) and is the only thing that can choose mode and clock divider,
// before pins are bound.
type Config struct {
	gate    clock.Gate[clock.DevSPI0]
	mode    Mode
	divider uint16
}

// New resets SPI0's registers and enables its clock gate.
func New(gate clock.Gate[clock.DevSPI0]) *Config {
	port0 = port0Regs{divider: 1}
	gate.Enable()
	return &Config{gate: gate, divider: 1}
}

// WithMode sets the clock polarity/phase and duplex/CS options.
func (c *Config) WithMode(m Mode) *Config {
	c.mode = m
	return c
}

// WithDivider sets the SPI clock divider relative to sys_clk.
func (c *Config) WithDivider(d uint16) *Config {
	if d == 0 {
		d = 1
	}
	c.divider = d
	return c
}

// Port is SPI0 after pins have been bound: it exclusively owns the
// peripheral's register block and its Gate.
type Port struct {
	cfg *Config
}

// Bind consumes the configurator and the three SPI0 pins, each already
// typed in SPI0's alternate function, and returns a Port.
func (c *Config) Bind(
	_ gpio.Pin[gpio.PortB, gpio.Idx15, gpio.Alternate[gpio.Spi0Clk, gpio.AltOut]],
	_ gpio.Pin[gpio.PortB, gpio.Idx14, gpio.Alternate[gpio.Spi0Miso, gpio.AltIn]],
	_ gpio.Pin[gpio.PortB, gpio.Idx13, gpio.Alternate[gpio.Spi0Mosi, gpio.AltOut]],
) *Port {
	port0.mode = c.mode
	port0.divider = c.divider
	port0.enabled = true
	return &Port{cfg: c}
}

// Free reverses Bind: it disables the peripheral, closes its gate, and
// returns the configurator plus zero-valued (i.e. freshly reconstructible)
// pin tokens for the caller to repurpose.
func (p *Port) Free() (
	*Config,
	gpio.Pin[gpio.PortB, gpio.Idx15, gpio.Alternate[gpio.Spi0Clk, gpio.AltOut]],
	gpio.Pin[gpio.PortB, gpio.Idx14, gpio.Alternate[gpio.Spi0Miso, gpio.AltIn]],
	gpio.Pin[gpio.PortB, gpio.Idx13, gpio.Alternate[gpio.Spi0Mosi, gpio.AltOut]],
) {
	port0.enabled = false
	p.cfg.gate.Disable()
	return p.cfg,
		gpio.Pin[gpio.PortB, gpio.Idx15, gpio.Alternate[gpio.Spi0Clk, gpio.AltOut]]{},
		gpio.Pin[gpio.PortB, gpio.Idx14, gpio.Alternate[gpio.Spi0Miso, gpio.AltIn]]{},
		gpio.Pin[gpio.PortB, gpio.Idx13, gpio.Alternate[gpio.Spi0Mosi, gpio.AltOut]]{}
}

var ErrNotEnabled = errors.New("k5hal/spi: port not bound")

// Transfer round-trips len(tx) bytes: write writes tx[i] while discarding
// the received echo it doesn't need, read (tx == nil) writes zeros.
// Arbitration matches how the hardware FIFOs drain: push into the tx FIFO
// while it has space and the rx FIFO has space to receive the echo; pull
// from the rx
// FIFO whenever it is non-empty. A transfer ends when every requested byte
// has round-tripped.
func (p *Port) Transfer(tx, rx []byte) error {
	if !port0.enabled {
		return ErrNotEnabled
	}
	n := len(rx)
	if tx != nil && len(tx) != n {
		return fmt.Errorf("k5hal/spi: tx/rx length mismatch: %d vs %d", len(tx), n)
	}
	sent, received := 0, 0
	for received < n {
		for sent < n && !port0.tx.full() && !port0.rx.full() {
			var out byte
			if tx != nil {
				out = tx[sent]
			}
			port0.tx.push(out)
			echo := port0.tx.pop()
			port0.rx.push(echo)
			sent++
		}
		for !port0.rx.empty() {
			rx[received] = port0.rx.pop()
			received++
		}
	}
	return nil
}

// Write writes src, discarding the FIFO's echoed bytes.
func (p *Port) Write(src []byte) error {
	scratch := make([]byte, len(src))
	return p.Transfer(src, scratch)
}

// Read writes zeros and returns the received bytes in dst.
func (p *Port) Read(dst []byte) error {
	return p.Transfer(nil, dst)
}

// SpiDevice wraps a Port with a slave-select pin, asserting it
// low for the duration of a transaction and deasserting it on every exit
// path, including a panic.
type SpiDevice struct {
	port *Port
	ssn  *gpio.SharedPin[gpio.PortA, gpio.Idx2, gpio.OutputPushPull]
}

// NewSpiDevice attaches a slave-select pin to Port p.
func NewSpiDevice(p *Port, ssn *gpio.SharedPin[gpio.PortA, gpio.Idx2, gpio.OutputPushPull]) *SpiDevice {
	return &SpiDevice{port: p, ssn: ssn}
}

// Transfer asserts select, runs the transfer, and deasserts select
// unconditionally afterwards.
func (d *SpiDevice) Transfer(tx, rx []byte) error {
	d.ssn.Write(gpio.Low)
	defer d.ssn.Write(gpio.High)
	return d.port.Transfer(tx, rx)
}
