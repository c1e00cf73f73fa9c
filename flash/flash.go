// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package flash loads and drives the relocatable, RAM-resident flash
// programming blob. The flash controller cannot service reads from flash
// while it is busy erasing or programming, so the code that drives it
// must itself run from RAM; this package owns that blob, parses its
// header dispatch table, and exposes the six entry points it names as
// typed methods.
package flash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-radio/k5hal/internal/critical"
)

const (
	headerEntries   = 6
	headerSize      = headerEntries * 4
	minFunctionSize = 2

	halfSectorSize = 256
	sectorSize     = 512

	// ramStart and ramEnd bound this chip's 16KiB SRAM; Program refuses a
	// source address outside this window, since the blob cannot read its
	// own source words from flash while it is busy reprogramming flash.
	ramStart uintptr = 0x20000000
	ramEnd   uintptr = ramStart + 16*1024
)

var (
	ErrTruncatedHeader = errors.New("k5hal/flash: blob shorter than the six-entry header")
	ErrBadOffset       = errors.New("k5hal/flash: header offset out of range")
	ErrMisaligned      = errors.New("k5hal/flash: blob base address is not 4-byte aligned")
)

// header is the parsed six-entry offset table occupying the first 24
// bytes of the blob, each entry naming one exported function's byte
// offset from the blob's base.
type header struct {
	initOff        uint32
	readNVROff     uint32
	eraseOff       uint32
	programWordOff uint32
	programOff     uint32
	readNVRAPBOff  uint32
}

func parseHeader(raw []byte) (header, error) {
	if len(raw) < headerSize {
		return header{}, ErrTruncatedHeader
	}
	offs := make([]uint32, headerEntries)
	for i := range offs {
		offs[i] = binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		if offs[i] < headerSize || offs[i] > uint32(len(raw))-minFunctionSize {
			return header{}, fmt.Errorf("%w: entry %d = %d", ErrBadOffset, i, offs[i])
		}
	}
	return header{
		initOff:        offs[0],
		readNVROff:     offs[1],
		eraseOff:       offs[2],
		programWordOff: offs[3],
		programOff:     offs[4],
		readNVRAPBOff:  offs[5],
	}, nil
}

// caller is the pluggable mechanism that turns one header offset into an
// actual invocation. unsafeCaller is the production implementation,
// forming a real function pointer from the blob's base address; fakeCaller
// (test-only) simulates the controller's flash array directly, without
// ever materializing a function pointer, so the dispatch and precondition
// logic above it can be exercised without real position-independent code.
type caller interface {
	init(t critical.Token, base uintptr, off uint32, clockMHz uint8)
	readNVR(t critical.Token, base uintptr, off uint32, nvrAddr uint32, dst []byte)
	erase(t critical.Token, base uintptr, off uint32, sectorAddr uint32)
	programWord(t critical.Token, base uintptr, off uint32, word uint32, dstAddr uint32)
	program(t critical.Token, base uintptr, off uint32, srcWords []uint32, dstAddr uint32) bool
	readNVRAPB(t critical.Token, base uintptr, off uint32, nvrAddr uint32, dst []byte)
}

// unsafeCaller forms a callable Go func value directly from a code
// address: base+off, cast through unsafe.Pointer into the function type
// the blob's ABI promises at that offset. This is the one place in the
// HAL where a runtime indirect call is required by the design; everywhere
// else peripheral selection happens at type-binding time.
type unsafeCaller struct{}

func codeAt[F any](base uintptr, off uint32) F {
	addr := base + uintptr(off)
	var fn F
	*(*uintptr)(unsafe.Pointer(&fn)) = addr
	return fn
}

func (unsafeCaller) init(t critical.Token, base uintptr, off uint32, clockMHz uint8) {
	fn := codeAt[func(critical.Token, uint8)](base, off)
	fn(t, clockMHz)
}

func (unsafeCaller) readNVR(t critical.Token, base uintptr, off uint32, nvrAddr uint32, dst []byte) {
	fn := codeAt[func(critical.Token, uint32, []byte)](base, off)
	fn(t, nvrAddr, dst)
}

func (unsafeCaller) erase(t critical.Token, base uintptr, off uint32, sectorAddr uint32) {
	fn := codeAt[func(critical.Token, uint32)](base, off)
	fn(t, sectorAddr)
}

func (unsafeCaller) programWord(t critical.Token, base uintptr, off uint32, word uint32, dstAddr uint32) {
	fn := codeAt[func(critical.Token, uint32, uint32)](base, off)
	fn(t, word, dstAddr)
}

func (unsafeCaller) program(t critical.Token, base uintptr, off uint32, srcWords []uint32, dstAddr uint32) bool {
	fn := codeAt[func(critical.Token, []uint32, uint32) bool](base, off)
	return fn(t, srcWords, dstAddr)
}

func (unsafeCaller) readNVRAPB(t critical.Token, base uintptr, off uint32, nvrAddr uint32, dst []byte) {
	fn := codeAt[func(critical.Token, uint32, []byte)](base, off)
	fn(t, nvrAddr, dst)
}

// Timing holds the controller timing parameters Init derives from the CPU
// clock frequency, in cycles.
type Timing struct {
	EraseCycles         uint32
	EraseRecoveryCycles uint32
	ProgramCycles       uint32
	ProgramGapCycles    uint32
	WaitStates          uint8
}

// ComputeTiming derives flash controller timing from the CPU clock, in
// MHz: erase takes 3600 cycles/MHz (3.6ms), erase-recovery 52 cycles/MHz
// (52ns), program 18 cycles/MHz (18ns), program-gap 22 cycles/MHz (22ns).
// Read wait-states are 1 below 56MHz, 2 at or above.
func ComputeTiming(clockMHz uint8) Timing {
	f := uint32(clockMHz)
	waitStates := uint8(1)
	if clockMHz >= 56 {
		waitStates = 2
	}
	return Timing{
		EraseCycles:         3600 * f,
		EraseRecoveryCycles: 52 * f,
		ProgramCycles:       18 * f,
		ProgramGapCycles:    22 * f,
		WaitStates:          waitStates,
	}
}

// Blob owns the loaded RAM-resident programming code and its parsed
// header. It is exclusively owned for the duration of any single flash
// operation, enforced by the critical section each method enters.
type Blob struct {
	raw    []byte
	base   uintptr
	hdr    header
	caller caller
}

// NewBlob parses raw's six-entry header and records base, the address raw
// is (or will be) loaded at. base must be 4-byte aligned, matching the
// blob's position-independent-code requirement.
func NewBlob(raw []byte, base uintptr) (*Blob, error) {
	if base%4 != 0 {
		return nil, ErrMisaligned
	}
	hdr, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}
	return &Blob{raw: raw, base: base, hdr: hdr, caller: unsafeCaller{}}, nil
}

// Init brings the flash controller out of low-power and programs its
// erase/program timings for the given CPU clock frequency in MHz.
func (b *Blob) Init(clockMHz uint8) {
	t := critical.Enter()
	defer critical.Exit(t)
	b.caller.init(t, b.base, b.hdr.initOff, clockMHz)
}

// ReadNVR reads len(dst) bytes from the non-volatile register page at
// nvrAddr into dst.
func (b *Blob) ReadNVR(nvrAddr uint32, dst []byte) {
	t := critical.Enter()
	defer critical.Exit(t)
	b.caller.readNVR(t, b.base, b.hdr.readNVROff, nvrAddr, dst)
}

// Erase erases the 512-byte sector containing sectorAddr, setting every
// bit to 1.
func (b *Blob) Erase(sectorAddr uint32) {
	t := critical.Enter()
	defer critical.Exit(t)
	b.caller.erase(t, b.base, b.hdr.eraseOff, sectorAddr)
}

// ProgramWord writes one 32-bit word at dstAddr. Flash can only clear
// bits, so the effect is *dst &= word.
func (b *Blob) ProgramWord(word uint32, dstAddr uint32) {
	t := critical.Enter()
	defer critical.Exit(t)
	b.caller.programWord(t, b.base, b.hdr.programWordOff, word, dstAddr)
}

// Program writes a run of 32-bit words at dstAddr. The run must not cross
// a 256-byte half-sector boundary and srcAddr (the address backing
// srcWords) must be in RAM, not flash — violating either leaves flash
// unchanged and reports false rather than erroring loudly, matching the
// blob's own failure semantics. Callers verify success with a subsequent
// read.
func (b *Blob) Program(srcAddr uintptr, srcWords []uint32, dstAddr uint32) bool {
	runBytes := uint32(len(srcWords)) * 4
	startOffsetInHalfSector := dstAddr % halfSectorSize
	if startOffsetInHalfSector+runBytes > halfSectorSize {
		return false
	}
	if srcAddr < ramStart || srcAddr >= ramEnd {
		return false
	}
	t := critical.Enter()
	defer critical.Exit(t)
	return b.caller.program(t, b.base, b.hdr.programOff, srcWords, dstAddr)
}

// ReadNVRAPB reads the non-volatile register page through the chip's
// secondary (APB-bus) addressing mode.
func (b *Blob) ReadNVRAPB(nvrAddr uint32, dst []byte) {
	t := critical.Enter()
	defer critical.Exit(t)
	b.caller.readNVRAPB(t, b.base, b.hdr.readNVRAPBOff, nvrAddr, dst)
}
