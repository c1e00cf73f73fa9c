// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package wire implements the host/radio serial protocol: framing,
// byte-wise obfuscation, CRC-16/XMODEM validation, and a typed message
// codec, sitting above an arbitrary byte stream (UART on the radio side,
// OS serial on the host side).
package wire

import "github.com/go-radio/k5hal/internal/units"

const (
	startMarkerByte0 byte = 0xAB
	startMarkerByte1 byte = 0xCD
	endMarkerByte0   byte = 0xDC
	endMarkerByte1   byte = 0xBA

	// maxFrameBody is the implementation-defined cap on a frame's body
	// length; a length field beyond this is treated as a false start
	// rather than an oversized frame.
	maxFrameBody = 512
)

// obfuscationKey is XORed byte-by-byte, starting at index 0, against the
// region between the length field and the end marker (body plus CRC).
var obfuscationKey = [16]byte{
	0x16, 0x6C, 0x14, 0xE6, 0x2E, 0x91, 0x0D, 0x40,
	0x21, 0x35, 0xD5, 0x40, 0x13, 0x03, 0xE9, 0x80,
}

func obfuscate(dst []byte) {
	for i := range dst {
		dst[i] ^= obfuscationKey[i%len(obfuscationKey)]
	}
}

// CanonicalBaud is the protocol's default serial baud rate.
const CanonicalBaud units.Frequency = 38400 * units.Hertz

// Known-good session identifiers used by the bootloader flashing sequence.
const (
	HostSessionID  uint32 = 0x6457396a
	FlashSessionID uint32 = 0x1d9f8d8a
)

// CRCStyle distinguishes a direction's CRC convention: one side always
// transmits the fixed placeholder 0xFFFF and ignores what it receives, the
// other computes and checks real CRC-16/XMODEM.
type CRCStyle int

const (
	// CRCReal computes and verifies CRC-16/XMODEM over the body.
	CRCReal CRCStyle = iota
	// CRCFixed always emits 0xFFFF and does not validate the received CRC.
	CRCFixed
)
