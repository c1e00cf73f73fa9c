// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package firmware

import (
	"bytes"
	"testing"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	program := make([]byte, versionOffset+512)
	for i := range program {
		program[i] = byte(i * 7)
	}
	var version [versionSize]byte
	copy(version[:], "2.00.06")

	packed := Pack(Image{Program: program, Version: version})
	got, err := Unpack(packed)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !bytes.Equal(got.Program, program) {
		t.Fatalf("Program mismatch after round trip")
	}
	if got.Version != version {
		t.Fatalf("Version mismatch after round trip")
	}
}

func TestUnpackRejectsBadCRC(t *testing.T) {
	program := make([]byte, versionOffset+64)
	packed := Pack(Image{Program: program})
	packed[0] ^= 0xFF
	if _, err := Unpack(packed); err != ErrBadCRC {
		t.Fatalf("err = %v, want ErrBadCRC", err)
	}
}

func TestUnpackRejectsTooSmall(t *testing.T) {
	if _, err := Unpack(make([]byte, 4)); err != ErrTooSmall {
		t.Fatalf("err = %v, want ErrTooSmall", err)
	}
}

func TestPackPadsShortProgram(t *testing.T) {
	packed := Pack(Image{Program: []byte{1, 2, 3}})
	if len(packed) != versionOffset+versionSize+crcSize {
		t.Fatalf("len(packed) = %d, want %d", len(packed), versionOffset+versionSize+crcSize)
	}
}
