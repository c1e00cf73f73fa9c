// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package timer implements the chip's general-purpose timers. Each
// hardware timer has one 16-bit divider shared by two independent halves
// (low, high); the enable and interrupt-flag registers are likewise
// shared and mutated only inside a critical section, while each half's
// load and count registers are private to it.
package timer

import (
	"errors"
	"time"

	"github.com/go-radio/k5hal/clock"
	"github.com/go-radio/k5hal/internal/critical"
	"github.com/go-radio/k5hal/internal/units"
)

var ErrOutOfRange = errors.New("k5hal/timer: duration does not fit in the timer's reload register")

// HZTag names a fixed, non-zero compile-time tick rate for a Native timer.
// There is deliberately no Hz0 marker: a caller cannot name a zero
// frequency using this package's vocabulary, which is this HAL's
// compile-time stand-in for a language that could reject HZ=0 with a
// static assertion.
type HZTag interface {
	hz() uint32
}

type (
	Hz1      struct{}
	Hz10     struct{}
	Hz100    struct{}
	Hz1000   struct{}
	Hz10000  struct{}
	Hz100000 struct{}
)

func (Hz1) hz() uint32      { return 1 }
func (Hz10) hz() uint32     { return 10 }
func (Hz100) hz() uint32    { return 100 }
func (Hz1000) hz() uint32   { return 1000 }
func (Hz10000) hz() uint32  { return 10000 }
func (Hz100000) hz() uint32 { return 100000 }

// shared is the enable/flag register pair both halves of one hardware
// timer mutate together, always inside a critical section.
type shared struct {
	enableLow, enableHigh bool
	flagLow, flagHigh     bool
}

// Half is one independent counter (low or high) of a hardware timer: its
// load and count registers are private, but Start/Stop reach into the
// parent's shared enable/flag registers under a critical section. load and
// count are sized for the widest reload register this package models (the
// system tick's 24 bits); Native and general-purpose ForcedPrecision timers
// only ever use the low 16 bits of them.
type Half struct {
	shared *shared
	isHigh bool
	load   uint32
	count  uint32
}

func (h *Half) setEnable(on bool) {
	t := critical.Enter()
	defer critical.Exit(t)
	if h.isHigh {
		h.shared.enableHigh = on
	} else {
		h.shared.enableLow = on
	}
}

// Enabled reports whether this half is currently counting.
func (h *Half) Enabled() bool {
	if h.isHigh {
		return h.shared.enableHigh
	}
	return h.shared.enableLow
}

// Stop halts this half without clearing its load value.
func (h *Half) Stop() {
	h.setEnable(false)
}

func divideRound(num, den uint64) uint64 {
	return (num + den/2) / den
}

// Native is a timer whose tick rate is fixed at compile time to HZ.hz().
type Native[HZ HZTag, D clock.DeviceTag] struct {
	gate    clock.Gate[D]
	divider uint16
	shared  shared
	Low     Half
	High    Half
}

// NewNative computes the divider needed to bring sysClk down to HZ's
// tick rate and enables the timer's clock gate.
func NewNative[HZ HZTag, D clock.DeviceTag](gate clock.Gate[D], sysClk units.Frequency) (*Native[HZ, D], error) {
	var hz HZ
	div := divideRound(uint64(sysClk), uint64(hz.hz()))
	if div == 0 || div > 0xFFFF {
		return nil, ErrOutOfRange
	}
	gate.Enable()
	n := &Native[HZ, D]{gate: gate, divider: uint16(div)}
	n.Low = Half{shared: &n.shared, isHigh: false}
	n.High = Half{shared: &n.shared, isHigh: true}
	return n, nil
}

// Start loads half h with enough ticks to cover duration d at HZ's rate
// and enables it, failing with ErrOutOfRange if the tick count overflows
// the 16-bit load register.
func (n *Native[HZ, D]) Start(h *Half, d time.Duration) error {
	var hz HZ
	ticks := divideRound(uint64(d)*uint64(hz.hz()), uint64(time.Second))
	if ticks > 0xFFFF {
		return ErrOutOfRange
	}
	h.load = uint32(ticks)
	h.count = h.load
	h.setEnable(true)
	return nil
}

// Free disables both halves and releases the timer's clock gate.
func (n *Native[HZ, D]) Free() {
	n.Low.setEnable(false)
	n.High.setEnable(false)
	n.gate.Disable()
}

// Precision selects the unit ForcedPrecision.Start's amount is expressed
// in.
type Precision int

const (
	Nanoseconds Precision = iota
	Microseconds
	Milliseconds
)

func (p Precision) perSecond() uint64 {
	switch p {
	case Microseconds:
		return 1_000_000
	case Milliseconds:
		return 1_000
	default:
		return 1_000_000_000
	}
}

// ForcedPrecision is a timer whose tick rate is only known at runtime
// (derived from sysClk and a chosen divider), used whenever a caller needs
// to think in ns/us/ms rather than raw ticks. The system-tick timer always
// uses this mode, since the HAL does not fix its rate at compile time.
type ForcedPrecision[D clock.DeviceTag] struct {
	gate       clock.Gate[D]
	divider    uint16
	tickHz     uint32
	precision  Precision
	reloadBits uint8 // 16 for general-purpose timers, 24 for the system tick
	shared     shared
	Low        Half
	High       Half
}

// NewForcedPrecision configures a timer with an explicit runtime divider;
// its tick rate is sysClk divided by divider.
func NewForcedPrecision[D clock.DeviceTag](gate clock.Gate[D], sysClk units.Frequency, divider uint16, precision Precision) (*ForcedPrecision[D], error) {
	if divider == 0 {
		return nil, ErrOutOfRange
	}
	gate.Enable()
	f := &ForcedPrecision[D]{
		gate:       gate,
		divider:    divider,
		tickHz:     uint32(sysClk) / uint32(divider),
		precision:  precision,
		reloadBits: 16,
	}
	f.Low = Half{shared: &f.shared, isHigh: false}
	f.High = Half{shared: &f.shared, isHigh: true}
	return f, nil
}

// NewSysTick configures the always-forced-precision system-tick timer,
// whose reload register is 24 bits rather than 16.
func NewSysTick[D clock.DeviceTag](gate clock.Gate[D], sysClk units.Frequency, divider uint16, precision Precision) (*ForcedPrecision[D], error) {
	f, err := NewForcedPrecision[D](gate, sysClk, divider, precision)
	if err != nil {
		return nil, err
	}
	f.reloadBits = 24
	return f, nil
}

func (f *ForcedPrecision[D]) maxReload() uint64 {
	return (uint64(1) << f.reloadBits) - 1
}

// Start converts amount (expressed in f's Precision unit) to ticks at the
// timer's runtime tick rate, using a rounded multiply-divide, and starts
// half h. Returns the tick count actually loaded. The cap is f's own
// reloadBits width (16 for a general-purpose timer, 24 for the system
// tick) — the system tick genuinely holds a wider reload value than a
// general-purpose half ever does.
func (f *ForcedPrecision[D]) Start(h *Half, amount uint32) (uint32, error) {
	ticks := divideRound(uint64(amount)*uint64(f.tickHz), f.precision.perSecond())
	if ticks > f.maxReload() {
		return 0, ErrOutOfRange
	}
	h.load = uint32(ticks)
	h.count = h.load
	h.setEnable(true)
	return h.load, nil
}

// Free disables both halves and releases the timer's clock gate.
func (f *ForcedPrecision[D]) Free() {
	f.Low.setEnable(false)
	f.High.setEnable(false)
	f.gate.Disable()
}
