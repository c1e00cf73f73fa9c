// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package flash

import (
	"encoding/binary"
	"testing"
)

// buildTestBlob returns a header-only blob (no real code, since fakeCaller
// never dereferences the offsets) with six distinct, valid offsets.
func buildTestBlob() []byte {
	raw := make([]byte, headerSize+64)
	offs := []uint32{24, 26, 28, 30, 32, 34}
	for i, off := range offs {
		binary.LittleEndian.PutUint32(raw[i*4:], off)
	}
	return raw
}

func newTestBlob(t *testing.T) (*Blob, *fakeCaller) {
	t.Helper()
	raw := buildTestBlob()
	b, err := NewBlob(raw, 0x20000100)
	if err != nil {
		t.Fatalf("NewBlob: %v", err)
	}
	fc := newFakeCaller()
	b.caller = fc
	return b, fc
}

func TestNewBlobRejectsBadOffset(t *testing.T) {
	raw := buildTestBlob()
	binary.LittleEndian.PutUint32(raw[0:4], 4) // below headerSize
	if _, err := NewBlob(raw, 0x20000100); err == nil {
		t.Fatalf("expected error for offset below header size")
	}
}

func TestNewBlobRejectsMisalignedBase(t *testing.T) {
	raw := buildTestBlob()
	if _, err := NewBlob(raw, 0x20000101); err != ErrMisaligned {
		t.Fatalf("err = %v, want ErrMisaligned", err)
	}
}

func TestInitRecordsClockAndTiming(t *testing.T) {
	b, fc := newTestBlob(t)
	b.Init(24)
	if fc.clockMHz != 24 {
		t.Fatalf("clockMHz = %d, want 24", fc.clockMHz)
	}
	timing := ComputeTiming(24)
	if timing.EraseCycles != 3600*24 {
		t.Fatalf("EraseCycles = %d", timing.EraseCycles)
	}
	if timing.WaitStates != 1 {
		t.Fatalf("WaitStates = %d, want 1 below 56MHz", timing.WaitStates)
	}
	if ComputeTiming(56).WaitStates != 2 {
		t.Fatalf("WaitStates at 56MHz should be 2")
	}
}

func TestEraseLeavesSectorAllOnes(t *testing.T) {
	b, fc := newTestBlob(t)
	b.Erase(0x1000)
	data := fc.readFlash(0x1000, 16)
	for i, by := range data {
		if by != 0xFF {
			t.Fatalf("byte %d = %#x after erase, want 0xFF", i, by)
		}
	}
}

func TestProgramWordThenReadBack(t *testing.T) {
	b, fc := newTestBlob(t)
	b.Erase(0x1000)
	b.ProgramWord(0xdeadbeef, 0x1000)
	data := fc.readFlash(0x1000, 4)
	want := []byte{0xef, 0xbe, 0xad, 0xde}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, data[i], want[i])
		}
	}
}

func TestProgramRejectsHalfSectorCrossing(t *testing.T) {
	b, _ := newTestBlob(t)
	src := make([]uint32, 65) // 260 bytes, crosses the 256-byte boundary
	srcAddr := uintptr(ramStart) + 4
	if ok := b.Program(srcAddr, src, 0x1000); ok {
		t.Fatalf("expected Program to reject a half-sector-crossing run")
	}
}

func TestProgramRejectsSourceOutsideRAM(t *testing.T) {
	b, _ := newTestBlob(t)
	src := make([]uint32, 4)
	flashAddr := uintptr(0x08000000) // outside the RAM window
	if ok := b.Program(flashAddr, src, 0x1000); ok {
		t.Fatalf("expected Program to reject a source address outside RAM")
	}
}

func TestProgramAcceptsValidRun(t *testing.T) {
	b, fc := newTestBlob(t)
	b.Erase(0x1000)
	src := []uint32{0xdeadbeef, 0xcafef00d}
	srcAddr := uintptr(ramStart) + 8
	if ok := b.Program(srcAddr, src, 0x1000); !ok {
		t.Fatalf("expected Program to succeed")
	}
	data := fc.readFlash(0x1000, 8)
	if binary.LittleEndian.Uint32(data[0:4]) != 0xdeadbeef {
		t.Fatalf("word 0 = %#x", binary.LittleEndian.Uint32(data[0:4]))
	}
}
