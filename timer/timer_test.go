// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package timer

import (
	"testing"
	"time"

	"github.com/go-radio/k5hal/clock"
	"github.com/go-radio/k5hal/internal/units"
)

func TestNativeStartComputesTicks(t *testing.T) {
	tm, err := NewNative[Hz1000, clock.DevTimer0](clock.Gate[clock.DevTimer0]{}, 24*units.MegaHertz)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	if err := tm.Start(&tm.Low, 500*time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tm.Low.load != 500 {
		t.Fatalf("load = %d, want 500", tm.Low.load)
	}
	if !tm.Low.Enabled() {
		t.Fatalf("low half not enabled after Start")
	}
}

func TestNativeStartOutOfRange(t *testing.T) {
	tm, err := NewNative[Hz1000, clock.DevTimer1](clock.Gate[clock.DevTimer1]{}, 24*units.MegaHertz)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	if err := tm.Start(&tm.High, 1*time.Hour); err != ErrOutOfRange {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestForcedPrecisionMicroseconds(t *testing.T) {
	ft, err := NewForcedPrecision[clock.DevTimer2](clock.Gate[clock.DevTimer2]{}, 24*units.MegaHertz, 24, Microseconds)
	if err != nil {
		t.Fatalf("NewForcedPrecision: %v", err)
	}
	ticks, err := ft.Start(&ft.Low, 100)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if ticks != 100 {
		t.Fatalf("ticks = %d, want 100", ticks)
	}
}

func TestSysTickUsesWiderReload(t *testing.T) {
	st, err := NewSysTick[clock.DevSysTick](clock.Gate[clock.DevSysTick]{}, 24*units.MegaHertz, 1, Microseconds)
	if err != nil {
		t.Fatalf("NewSysTick: %v", err)
	}
	if st.reloadBits != 24 {
		t.Fatalf("reloadBits = %d, want 24", st.reloadBits)
	}
}

func TestSysTickAcceptsReloadAbove16Bits(t *testing.T) {
	st, err := NewSysTick[clock.DevSysTick](clock.Gate[clock.DevSysTick]{}, 24*units.MegaHertz, 1, Microseconds)
	if err != nil {
		t.Fatalf("NewSysTick: %v", err)
	}
	// 24MHz tick rate, 10ms: 240,000 ticks, above 0xFFFF but within 24 bits.
	ticks, err := st.Start(&st.Low, 10000)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if ticks != 240000 {
		t.Fatalf("ticks = %d, want 240000", ticks)
	}
	if st.Low.load != 240000 {
		t.Fatalf("Low.load = %d, want 240000", st.Low.load)
	}
}

func TestGeneralPurposeForcedPrecisionStillCapsAt16Bits(t *testing.T) {
	ft, err := NewForcedPrecision[clock.DevTimer2](clock.Gate[clock.DevTimer2]{}, 24*units.MegaHertz, 1, Microseconds)
	if err != nil {
		t.Fatalf("NewForcedPrecision: %v", err)
	}
	// Same 240,000-tick request as the system-tick test, but a
	// general-purpose timer's reload register is only 16 bits wide.
	if _, err := ft.Start(&ft.Low, 10000); err != ErrOutOfRange {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestSharedEnableIsolatedPerHalf(t *testing.T) {
	tm, err := NewNative[Hz1000, clock.DevTimer0](clock.Gate[clock.DevTimer0]{}, 24*units.MegaHertz)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	if err := tm.Start(&tm.Low, 10*time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tm.High.Enabled() {
		t.Fatalf("high half should not be enabled by starting low")
	}
	tm.Low.Stop()
	if tm.Low.Enabled() {
		t.Fatalf("low half still enabled after Stop")
	}
}
