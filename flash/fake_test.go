// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package flash

import (
	"encoding/binary"

	"github.com/go-radio/k5hal/internal/critical"
)

// fakeCaller simulates the controller's flash and NVR arrays directly,
// ignoring base/off entirely, so Blob's precondition and dispatch logic
// can be exercised without ever forming a real function pointer.
type fakeCaller struct {
	flash     map[uint32][]byte // byte runs keyed by their start address
	nvr       []byte
	clockMHz  uint8
	initCount int
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{flash: map[uint32][]byte{}, nvr: make([]byte, 64)}
}

func (f *fakeCaller) readFlash(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = 0xFF
	}
	for base, data := range f.flash {
		for i, b := range data {
			a := base + uint32(i)
			if a >= addr && a < addr+uint32(n) {
				out[a-addr] = b
			}
		}
	}
	return out
}

func (f *fakeCaller) writeFlash(addr uint32, data []byte) {
	existing := f.readFlash(addr, len(data))
	merged := make([]byte, len(data))
	for i := range merged {
		merged[i] = existing[i] & data[i] // flash can only clear bits
	}
	f.flash[addr] = merged
}

func (f *fakeCaller) init(t critical.Token, base uintptr, off uint32, clockMHz uint8) {
	f.clockMHz = clockMHz
	f.initCount++
}

func (f *fakeCaller) readNVR(t critical.Token, base uintptr, off uint32, nvrAddr uint32, dst []byte) {
	copy(dst, f.nvr[nvrAddr:])
}

func (f *fakeCaller) erase(t critical.Token, base uintptr, off uint32, sectorAddr uint32) {
	sectorBase := sectorAddr - sectorAddr%sectorSize
	for start := range f.flash {
		if start >= sectorBase && start < sectorBase+sectorSize {
			delete(f.flash, start)
		}
	}
}

func (f *fakeCaller) programWord(t critical.Token, base uintptr, off uint32, word uint32, dstAddr uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], word)
	f.writeFlash(dstAddr, buf[:])
}

func (f *fakeCaller) program(t critical.Token, base uintptr, off uint32, srcWords []uint32, dstAddr uint32) bool {
	buf := make([]byte, len(srcWords)*4)
	for i, w := range srcWords {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	f.writeFlash(dstAddr, buf)
	return true
}

func (f *fakeCaller) readNVRAPB(t critical.Token, base uintptr, off uint32, nvrAddr uint32, dst []byte) {
	copy(dst, f.nvr[nvrAddr:])
}
