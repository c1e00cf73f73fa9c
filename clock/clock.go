// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package clock implements the chip's clock and power sequencer: a
// declarative configuration that computes and atomically transitions the
// system between clock trees without ever passing through an unlocked PLL
// output or a gated divider.
package clock

import (
	"errors"
	"fmt"

	"github.com/go-radio/k5hal/internal/critical"
	"github.com/go-radio/k5hal/internal/units"
)

const internalHighNominal = 24 * units.MegaHertz
const internalHigh48Nominal = 48 * units.MegaHertz
const internalLowNominal = 32 * units.KiloHertz

// Calibration supplies the factory trim deltas applied to the nominal
// internal oscillator frequencies. Implemented in production by a read of
// the flash NVR page; faked in tests.
type Calibration interface {
	// TrimDeltaHz returns the signed correction, in Hz, to add to the
	// nominal frequency of the internal high-speed and low-speed
	// oscillators respectively.
	TrimDeltaHz() (highDelta, lowDelta int32)
}

// ZeroCalibration is a Calibration that applies no correction, useful for
// tests and for targets that ship without per-unit trim data.
type ZeroCalibration struct{}

func (ZeroCalibration) TrimDeltaHz() (int32, int32) { return 0, 0 }

// Clocks is the frozen, immutable snapshot of the derived clock tree,
// produced once by (*Config).Freeze and never mutated thereafter.
type Clocks struct {
	SysClk           units.Frequency
	SARADCSampleClk  units.Frequency
	RTCClk           units.Frequency
	IWDTClk          units.Frequency
}

// ChipID reads the chip's factory-programmed identifier. read is normally
// flash.Blob.ReadNVR bound to the NVR offset the chip ID lives at; Clocks
// takes it as a plain function value rather than importing package flash,
// so the two packages don't depend on each other.
func (Clocks) ChipID(read func(dst []byte) error) ([4]byte, error) {
	var id [4]byte
	if err := read(id[:]); err != nil {
		return id, fmt.Errorf("k5hal/clock: read chip id: %w", err)
	}
	return id, nil
}

// Config is the mutable, declarative description of the desired clock
// tree. The zero value is not valid; at minimum Sys must be set before
// calling Freeze.
type Config struct {
	Sys          SysSource
	RTC          RTCSource
	SARADCSample uint8 // divider: 1, 2, 4 or 8
	ExternalHigh *ExternalHighCrystal
	ExternalLow  *ExternalLowCrystal
	Calibration  Calibration
}

var (
	ErrNoSysSource         = errors.New("k5hal/clock: Config.Sys is nil")
	ErrBadDivider          = errors.New("k5hal/clock: divider must be 1, 2, 4 or 8")
	ErrMissingExternalHigh = errors.New("k5hal/clock: target requires an external high-speed crystal but Config.ExternalHigh is nil")
	ErrMissingExternalLow  = errors.New("k5hal/clock: target requires an external low-speed crystal but Config.ExternalLow is nil")
)

func validDivider(d uint8) bool {
	return d == 1 || d == 2 || d == 4 || d == 8
}

// registers models the clock and power-management register block this
// package exclusively owns until Freeze consumes it.
type registers struct {
	internalHighEnable bool
	internalHigh48MHz  bool
	externalHighEnable bool
	externalLowEnable  bool
	rtcSelExternal     bool

	pllEnable      bool
	pllLocked      bool
	pllNumerator   uint8
	pllDenominator uint8

	dividerGateEnable bool

	divSel    uint8 // 1,2,4,8
	srcSel    uint8 // 0=intHigh 1=intHighDiv2 2=extHigh 3=extLow 4=intLow 5=PLL
	pllSrcSel uint8 // 0=intHigh 1=extHigh
	adcDiv    uint8

	sysSel uint8 // 0=intHigh(intermediate or final) 1=divider output
}

var regs registers

// sysSelIntHigh and sysSelDivider are the two legal values of sysSel.
const (
	sysSelIntHigh uint8 = 0
	sysSelDivider uint8 = 1
)

func srcSelFor(src DividerSource) uint8 {
	switch src.(type) {
	case DivSrcInternalHigh:
		return 0
	case DivSrcInternalHighDiv2:
		return 1
	case DivSrcExternalHigh:
		return 2
	case DivSrcExternalLow:
		return 3
	case DivSrcInternalLow:
		return 4
	case PLL:
		return 5
	default:
		return 0
	}
}

// Freeze performs the glitch-free ten-step clock transition and returns
// the resulting frozen Clocks plus the
// per-peripheral Gates. It consumes the Config: call it at most once.
func (c *Config) Freeze() (Clocks, Gates, error) {
	if c.Sys == nil {
		return Clocks{}, Gates{}, ErrNoSysSource
	}
	if c.SARADCSample != 0 && !validDivider(c.SARADCSample) {
		return Clocks{}, Gates{}, ErrBadDivider
	}
	if div, ok := c.Sys.(Divider); ok {
		if !validDivider(div.Div) {
			return Clocks{}, Gates{}, ErrBadDivider
		}
		if pll, ok := div.Src.(PLL); ok {
			if _, isExtHigh := pll.Src.(PLLSrcExternalHigh); isExtHigh && c.ExternalHigh == nil {
				return Clocks{}, Gates{}, ErrMissingExternalHigh
			}
		}
		if _, isExtHigh := div.Src.(DivSrcExternalHigh); isExtHigh && c.ExternalHigh == nil {
			return Clocks{}, Gates{}, ErrMissingExternalHigh
		}
		if _, isExtLow := div.Src.(DivSrcExternalLow); isExtLow && c.ExternalLow == nil {
			return Clocks{}, Gates{}, ErrMissingExternalLow
		}
	}
	if _, wantsExtLow := c.RTC.(RTCSrcExternalLow); wantsExtLow && c.ExternalLow == nil {
		return Clocks{}, Gates{}, ErrMissingExternalLow
	}

	t := critical.Enter()
	defer critical.Exit(t)

	// Step 1: force the intermediate 24MHz internal-high clock.
	regs.internalHighEnable = true
	regs.internalHigh48MHz = false
	regs.sysSel = sysSelIntHigh
	critical.Barrier()

	// Step 2: disable PLL and divider gate unconditionally.
	regs.pllEnable = false
	regs.pllLocked = false
	regs.dividerGateEnable = false
	critical.Barrier()

	usesDivider, div := targetDivider(c.Sys)
	usesPLL, pll := usesDivider && isPLL(div.Src), pllOf(div.Src)
	needs48 := false
	if ih, ok := c.Sys.(InternalHigh); ok && ih.Rate48MHz {
		needs48 = true
	}
	needsExtHigh := usesDivider && sourceUsesExternalHigh(div.Src)
	needsExtLow := usesDivider && sourceUsesExternalLow(div.Src)

	// Step 3: write the target source-config register.
	regs.internalHigh48MHz = needs48
	regs.externalHighEnable = needsExtHigh
	regs.externalLowEnable = needsExtLow || c.RTC == (RTCSrcExternalLow{})
	regs.rtcSelExternal = c.RTC == (RTCSrcExternalLow{})

	// Step 4: program PLL numerator/denominator if used; keep disabled.
	if usesPLL {
		regs.pllNumerator = pll.N
		regs.pllDenominator = pll.M
	}

	// Step 5: program divider/source/PLL-source/ADC divider selects; sysSel
	// still points at internal-high.
	if usesDivider {
		regs.divSel = div.Div
		regs.srcSel = srcSelFor(div.Src)
		if usesPLL {
			if _, ok := pll.Src.(PLLSrcExternalHigh); ok {
				regs.pllSrcSel = 1
			} else {
				regs.pllSrcSel = 0
			}
		}
	}
	if c.SARADCSample != 0 {
		regs.adcDiv = c.SARADCSample
	} else {
		regs.adcDiv = 1
	}
	regs.sysSel = sysSelIntHigh

	// Step 6: enable and wait for PLL lock, if required.
	if usesPLL {
		critical.Barrier()
		regs.pllEnable = true
		critical.Barrier()
		spinUntilPLLLocked()
	}

	// Step 7: enable the divider-clock gate, if the target uses it.
	if usesDivider {
		critical.Barrier()
		regs.dividerGateEnable = true
	}

	// Step 8: switch to the real target.
	critical.Barrier()
	if usesDivider {
		regs.sysSel = sysSelDivider
	} else {
		regs.sysSel = sysSelIntHigh
	}

	// Step 9: disable internal-high if the target doesn't use it at all.
	if !sysUsesInternalHigh(c.Sys) {
		critical.Barrier()
		regs.internalHighEnable = false
	}

	// Step 10: compute and return Clocks using trim deltas.
	cal := c.Calibration
	if cal == nil {
		cal = ZeroCalibration{}
	}
	highDelta, lowDelta := cal.TrimDeltaHz()
	sysClk := c.computeSysClk(highDelta, lowDelta)
	rtcClk := c.computeRTCClk(lowDelta)
	adcClk := sysClk.Div(uint32(regs.adcDiv))

	clocks := Clocks{
		SysClk:          sysClk,
		SARADCSampleClk: adcClk,
		RTCClk:          rtcClk,
		IWDTClk:         trimmed(internalLowNominal, lowDelta),
	}
	return clocks, Gates{}, nil
}

func trimmed(nominal units.Frequency, deltaHz int32) units.Frequency {
	v := int64(nominal) + int64(deltaHz)
	if v < 0 {
		v = 0
	}
	return units.Frequency(v)
}

func targetDivider(src SysSource) (bool, Divider) {
	d, ok := src.(Divider)
	return ok, d
}

func isPLL(src DividerSource) bool {
	_, ok := src.(PLL)
	return ok
}

func pllOf(src DividerSource) PLL {
	p, _ := src.(PLL)
	return p
}

func sourceUsesExternalHigh(src DividerSource) bool {
	switch s := src.(type) {
	case DivSrcExternalHigh:
		return true
	case PLL:
		_, ok := s.Src.(PLLSrcExternalHigh)
		return ok
	default:
		return false
	}
}

func sourceUsesExternalLow(src DividerSource) bool {
	_, ok := src.(DivSrcExternalLow)
	return ok
}

func sysUsesInternalHigh(src SysSource) bool {
	switch s := src.(type) {
	case InternalHigh:
		return true
	case InternalHighDiv2:
		return true
	case Divider:
		switch ds := s.Src.(type) {
		case DivSrcInternalHigh, DivSrcInternalHighDiv2:
			return true
		case PLL:
			_, ok := ds.Src.(PLLSrcInternalHigh)
			return ok
		default:
			return false
		}
	default:
		return false
	}
}

// spinUntilPLLLocked busy-waits on the PLL-locked status bit. On real
// silicon this takes on the order of 30µs; this model has no physical PLL
// to settle, so it locks the instant it is enabled, and the spin
// degenerates to the single check below. It remains a real loop, not a
// no-op, so the control-flow shape matches the hardware sequencing.
func spinUntilPLLLocked() {
	for !regs.pllLocked {
		regs.pllLocked = regs.pllEnable
	}
}

func (c *Config) computeSysClk(highDelta, lowDelta int32) units.Frequency {
	switch s := c.Sys.(type) {
	case InternalHigh:
		if s.Rate48MHz {
			return trimmed(internalHigh48Nominal, highDelta*2)
		}
		return trimmed(internalHighNominal, highDelta)
	case InternalHighDiv2:
		return trimmed(internalHighNominal, highDelta).Div(2)
	case Divider:
		in := c.dividerInputFreq(s.Src, highDelta, lowDelta)
		return in.Div(uint32(s.Div))
	default:
		return 0
	}
}

func (c *Config) dividerInputFreq(src DividerSource, highDelta, lowDelta int32) units.Frequency {
	switch s := src.(type) {
	case DivSrcInternalHigh:
		return trimmed(internalHighNominal, highDelta)
	case DivSrcInternalHighDiv2:
		return trimmed(internalHighNominal, highDelta).Div(2)
	case DivSrcExternalHigh:
		if c.ExternalHigh != nil {
			return c.ExternalHigh.nominal
		}
		return 0
	case DivSrcExternalLow:
		if c.ExternalLow != nil {
			return c.ExternalLow.nominal
		}
		return 0
	case DivSrcInternalLow:
		return trimmed(internalLowNominal, lowDelta)
	case PLL:
		var ref units.Frequency
		if _, ok := s.Src.(PLLSrcExternalHigh); ok && c.ExternalHigh != nil {
			ref = c.ExternalHigh.nominal
		} else {
			ref = trimmed(internalHighNominal, highDelta)
		}
		if s.M == 0 {
			s.M = 1
		}
		return ref.Div(uint32(s.M)) * units.Frequency(s.N)
	default:
		return 0
	}
}

func (c *Config) computeRTCClk(lowDelta int32) units.Frequency {
	switch c.RTC.(type) {
	case RTCSrcExternalLow:
		if c.ExternalLow != nil {
			return c.ExternalLow.nominal
		}
		return 0
	default:
		return trimmed(internalLowNominal, lowDelta)
	}
}
