// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uart implements the chip's UART peripherals. Like spi, each
// instance follows the four-stage life-cycle (New, builder methods, Bind,
// Free), generalized over the device's clock.DeviceTag so the same code
// serves UART0, UART1 and UART2.
package uart

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-radio/k5hal/clock"
	"github.com/go-radio/k5hal/gpio"
	"github.com/go-radio/k5hal/internal/units"
)

// Word is the data-word type a Port moves: uint8 for 8-bit mode, uint16
// for 9-bit mode (only the low 9 bits are significant). Binding chooses
// which with an explicit type argument, so a Port[uint8] and a
// Port[uint16] are distinct types and a caller can never read a 9-bit
// frame's high bit out of an 8-bit Port by mistake.
type Word interface {
	~uint8 | ~uint16
}

var (
	ErrBaudOutOfRange = errors.New("k5hal/uart: baud rate divider does not fit in a u16 register")
	ErrNotBound       = errors.New("k5hal/uart: port not bound")
)

// Config is a UART configurator, parameterized by the clock.DeviceTag of
// the specific UART instance (UART0, UART1 or UART2) it gates.
type Config[D clock.DeviceTag] struct {
	gate clock.Gate[D]

	baud                       uint32
	flowControl                bool
	rtsActiveLow, ctsActiveLow bool
}

// New enables a UART instance's clock gate; its registers are reset when
// the configurator is bound. The default configuration is 9600 baud,
// 8-N-1, no flow control.
func New[D clock.DeviceTag](gate clock.Gate[D]) *Config[D] {
	gate.Enable()
	return &Config[D]{gate: gate, baud: 9600}
}

// WithBaud sets the target baud rate. The actual rate is only known once
// Bind computes the integer divider against the system clock.
func (c *Config[D]) WithBaud(hz uint32) *Config[D] {
	c.baud = hz
	return c
}

// WithFlowControl enables RTS/CTS hardware flow control, with independently
// configurable active-low polarity on each line — the radio's own UART
// driver wires RTS active-low while leaving CTS active-high, so both
// polarities are exposed rather than assumed symmetric.
func (c *Config[D]) WithFlowControl(rtsActiveLow, ctsActiveLow bool) *Config[D] {
	c.flowControl = true
	c.rtsActiveLow = rtsActiveLow
	c.ctsActiveLow = ctsActiveLow
	return c
}

// registers models one UART instance's control/FIFO state.
type registers struct {
	bound       bool
	divider     uint16
	wordBits    uint8
	flowControl bool

	txFIFO, rxFIFO fifo
}

const fifoDepth = 8

type fifo struct {
	buf   [fifoDepth]uint16
	head  int
	count int
}

func (f *fifo) full() bool  { return f.count == fifoDepth }
func (f *fifo) empty() bool { return f.count == 0 }
func (f *fifo) push(v uint16) {
	f.buf[(f.head+f.count)%fifoDepth] = v
	f.count++
}
func (f *fifo) pop() uint16 {
	v := f.buf[f.head]
	f.head = (f.head + 1) % fifoDepth
	f.count--
	return v
}

func computeDivider(sysClk units.Frequency, baud uint32) (uint16, error) {
	if baud == 0 {
		return 0, ErrBaudOutOfRange
	}
	// Integer division rounded to nearest, matching the hardware baud
	// generator's behavior.
	n := uint32(sysClk)
	div := (n + baud/2) / baud
	if div == 0 || div > 0xFFFF {
		return 0, ErrBaudOutOfRange
	}
	return uint16(div), nil
}

// Port is a bound UART instance, parameterized by its word size.
type Port[W Word] struct {
	cfg  *regHandle
	gate interface{ Disable() }
}

// regHandle is the runtime register block a bound Port owns; one per
// device instance, allocated lazily the first time that device is bound.
type regHandle struct {
	regs registers
}

var instances = map[clock.DeviceTag]*regHandle{}

func handleFor[D clock.DeviceTag]() *regHandle {
	var d D
	h, ok := instances[d]
	if !ok {
		h = &regHandle{}
		instances[d] = h
	}
	return h
}

// ActualBaud returns the baud rate the hardware divider actually produces,
// which may differ slightly from the requested rate due to integer
// rounding.
func (p *Port[W]) ActualBaud(sysClk units.Frequency) uint32 {
	if p.cfg.regs.divider == 0 {
		return 0
	}
	return uint32(sysClk) / uint32(p.cfg.regs.divider)
}

// Bind0 consumes a UART0 configurator and UART0's own Tx/Rx pins — PA9 in
// Uart0Tx/AltOut, PA10 in Uart0Rx/AltIn — computes the baud divider against
// sysClk, and returns a bound Port of word size W. A pin typed for any
// other alternate function, or any other port/index, does not type-check
// here: only a pin already configured as this specific UART's Tx or Rx
// line can be bound to it.
func Bind0[W Word](
	c *Config[clock.DevUART0],
	sysClk units.Frequency,
	_ gpio.Pin[gpio.PortA, gpio.Idx9, gpio.Alternate[gpio.Uart0Tx, gpio.AltOut]],
	_ gpio.Pin[gpio.PortA, gpio.Idx10, gpio.Alternate[gpio.Uart0Rx, gpio.AltIn]],
) (*Port[W], error) {
	return bind[W](c, sysClk)
}

// Bind1 is Bind0's UART1 equivalent, pinned to PB0 (Uart1Tx) and PB1
// (Uart1Rx).
func Bind1[W Word](
	c *Config[clock.DevUART1],
	sysClk units.Frequency,
	_ gpio.Pin[gpio.PortB, gpio.Idx0, gpio.Alternate[gpio.Uart1Tx, gpio.AltOut]],
	_ gpio.Pin[gpio.PortB, gpio.Idx1, gpio.Alternate[gpio.Uart1Rx, gpio.AltIn]],
) (*Port[W], error) {
	return bind[W](c, sysClk)
}

// Bind2 is Bind0's UART2 equivalent, pinned to PC0 (Uart2Tx) and PC1
// (Uart2Rx).
func Bind2[W Word](
	c *Config[clock.DevUART2],
	sysClk units.Frequency,
	_ gpio.Pin[gpio.PortC, gpio.Idx0, gpio.Alternate[gpio.Uart2Tx, gpio.AltOut]],
	_ gpio.Pin[gpio.PortC, gpio.Idx1, gpio.Alternate[gpio.Uart2Rx, gpio.AltIn]],
) (*Port[W], error) {
	return bind[W](c, sysClk)
}

// bind is the instance-agnostic second half shared by Bind0/Bind1/Bind2,
// once each has already checked its own Tx/Rx pins at compile time.
func bind[W Word, D clock.DeviceTag](c *Config[D], sysClk units.Frequency) (*Port[W], error) {
	div, err := computeDivider(sysClk, c.baud)
	if err != nil {
		return nil, err
	}
	h := handleFor[D]()
	var w W
	wordBits := uint8(8)
	if unsafe.Sizeof(w) == 2 {
		wordBits = 9
	}
	h.regs = registers{
		bound:       true,
		divider:     div,
		wordBits:    wordBits,
		flowControl: c.flowControl,
	}
	return &Port[W]{cfg: h, gate: c.gate}, nil
}

// Free disables the UART instance and its clock gate, discarding any
// buffered FIFO contents.
func (p *Port[W]) Free() {
	p.cfg.regs = registers{}
	p.gate.Disable()
}

// Write pushes src into the hardware Tx FIFO, draining it to make room
// whenever it fills, and returns once every word has been accepted.
func (p *Port[W]) Write(src []W) error {
	if !p.cfg.regs.bound {
		return ErrNotBound
	}
	for _, w := range src {
		for p.cfg.regs.txFIFO.full() {
			p.cfg.regs.txFIFO.pop()
		}
		p.cfg.regs.txFIFO.push(uint16(w))
	}
	return nil
}

// Read blocks (in this model, returns immediately) pulling up to len(dst)
// words already sitting in the Rx FIFO, returning the count actually read.
func (p *Port[W]) Read(dst []W) (int, error) {
	if !p.cfg.regs.bound {
		return 0, ErrNotBound
	}
	n := 0
	for n < len(dst) && !p.cfg.regs.rxFIFO.empty() {
		dst[n] = W(p.cfg.regs.rxFIFO.pop())
		n++
	}
	return n, nil
}

// injectReceived is a test-only hook simulating bytes having arrived on
// the wire into the Rx FIFO.
func (p *Port[W]) injectReceived(ws []W) {
	for _, w := range ws {
		if p.cfg.regs.rxFIFO.full() {
			p.cfg.regs.rxFIFO.pop()
		}
		p.cfg.regs.rxFIFO.push(uint16(w))
	}
}

func (p *Port[W]) String() string {
	return fmt.Sprintf("uart.Port<%d-bit, div=%d>", p.cfg.regs.wordBits, p.cfg.regs.divider)
}
