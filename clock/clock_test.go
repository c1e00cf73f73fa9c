// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package clock

import (
	"testing"

	"github.com/go-radio/k5hal/gpio"
	"github.com/go-radio/k5hal/internal/units"
)

func resetRegs() {
	regs = registers{}
}

func TestFreezeInternalHigh24MHz(t *testing.T) {
	resetRegs()
	cfg := &Config{Sys: InternalHigh{}}
	clocks, _, err := cfg.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if clocks.SysClk != 24*units.MegaHertz {
		t.Fatalf("SysClk = %s, want 24MHz", clocks.SysClk)
	}
	if !regs.internalHighEnable {
		t.Fatalf("internal-high oscillator left disabled")
	}
	if regs.sysSel != sysSelIntHigh {
		t.Fatalf("sysSel = %d, want intHigh", regs.sysSel)
	}
}

func TestFreezeDividerPLLFromExternalHigh(t *testing.T) {
	resetRegs()
	var pinA3 gpio.Pin[gpio.PortA, gpio.Idx3, gpio.Alternate[gpio.XtalHigh, gpio.AltIn]]
	var pinA4 gpio.Pin[gpio.PortA, gpio.Idx4, gpio.Alternate[gpio.XtalHigh, gpio.AltIn]]
	xtal := NewExternalHighCrystal(pinA3, pinA4, 12*units.MegaHertz)
	cfg := &Config{
		Sys: Divider{
			Div: 1,
			Src: PLL{Src: PLLSrcExternalHigh{}, N: 8, M: 1},
		},
		ExternalHigh: &xtal,
	}
	clocks, _, err := cfg.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	want := units.Frequency(96 * units.MegaHertz)
	if clocks.SysClk != want {
		t.Fatalf("SysClk = %s, want %s", clocks.SysClk, want)
	}
	if !regs.pllLocked {
		t.Fatalf("PLL not marked locked after Freeze")
	}
	if !regs.dividerGateEnable {
		t.Fatalf("divider gate not enabled")
	}
	if regs.sysSel != sysSelDivider {
		t.Fatalf("sysSel = %d, want divider", regs.sysSel)
	}
	if regs.internalHighEnable {
		t.Fatalf("internal-high should have been disabled: target never uses it")
	}
}

func TestFreezeRequiresExternalHighWhenTargeted(t *testing.T) {
	cfg := &Config{
		Sys: Divider{Div: 1, Src: DivSrcExternalHigh{}},
	}
	if _, _, err := cfg.Freeze(); err != ErrMissingExternalHigh {
		t.Fatalf("err = %v, want ErrMissingExternalHigh", err)
	}
}

func TestFreezeRejectsBadDivider(t *testing.T) {
	cfg := &Config{Sys: Divider{Div: 3, Src: DivSrcInternalHigh{}}}
	if _, _, err := cfg.Freeze(); err != ErrBadDivider {
		t.Fatalf("err = %v, want ErrBadDivider", err)
	}
}

func TestFreezeRTCExternalLowRequiresCrystal(t *testing.T) {
	cfg := &Config{Sys: InternalHigh{}, RTC: RTCSrcExternalLow{}}
	if _, _, err := cfg.Freeze(); err != ErrMissingExternalLow {
		t.Fatalf("err = %v, want ErrMissingExternalLow", err)
	}
}

// TestChipID exercises Clocks.ChipID against a fake NVR reader.
func TestChipID(t *testing.T) {
	var c Clocks
	id, err := c.ChipID(func(dst []byte) error {
		copy(dst, []byte{0x11, 0x22, 0x33, 0x44})
		return nil
	})
	if err != nil {
		t.Fatalf("ChipID: %v", err)
	}
	if id != [4]byte{0x11, 0x22, 0x33, 0x44} {
		t.Fatalf("ChipID = %v", id)
	}
}
