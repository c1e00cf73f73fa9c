// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package firmware packs and unpacks the radio's firmware image format: a
// flat program image with a 16-byte version string embedded partway
// through, obfuscated with a rotating key distinct from the wire
// protocol's, and trailed by a CRC-16/XMODEM checksum.
package firmware

import (
	"encoding/binary"
	"errors"
)

const (
	versionOffset = 0x2000
	versionSize   = 16
	crcSize       = 2
	minPackedSize = versionOffset + versionSize + crcSize
)

// obfuscationKey is the 128-byte rotating key XORed against the whole
// packed image (program bytes and embedded version alike), distinct from
// wire.obfuscationKey. Not a secret — its only job is to keep a packed
// image from being trivially readable with a hex editor.
var obfuscationKey = [128]byte{
	0x47, 0x22, 0xC0, 0x52, 0x5D, 0x57, 0x48, 0x94, 0xB1, 0x60, 0x60, 0xDB, 0x6F, 0xE3, 0x4C, 0x7C,
	0xD8, 0x4A, 0xD6, 0x8B, 0x30, 0xEC, 0x25, 0xE0, 0x4C, 0xD9, 0x00, 0x7F, 0xBF, 0xE3, 0x54, 0x05,
	0xE9, 0x3A, 0x97, 0x6B, 0xB0, 0x6E, 0x0C, 0xFB, 0xB1, 0x1A, 0xE2, 0xC9, 0xC1, 0x56, 0x47, 0xE9,
	0xBA, 0xF1, 0x42, 0xB6, 0x67, 0x5F, 0x0F, 0x96, 0xF7, 0xC9, 0x3C, 0x84, 0x1B, 0x26, 0xE1, 0x4E,
	0x3B, 0x6F, 0x66, 0xE6, 0xA0, 0x6A, 0xB0, 0xBF, 0xC6, 0xA5, 0x70, 0x3A, 0xBA, 0x18, 0x9E, 0x27,
	0x1A, 0x53, 0x5B, 0x71, 0xB1, 0x94, 0x1E, 0x18, 0xF2, 0xD6, 0x81, 0x02, 0x22, 0xFD, 0x5A, 0x28,
	0x91, 0xDB, 0xBA, 0x5D, 0x64, 0xC6, 0xFE, 0x86, 0x83, 0x9C, 0x50, 0x1C, 0x73, 0x03, 0x11, 0xD6,
	0xAF, 0x30, 0xF4, 0x2C, 0x77, 0xB2, 0x7D, 0xBB, 0x3F, 0x29, 0x28, 0x57, 0x22, 0xD6, 0x92, 0x8B,
}

func obfuscate(dst []byte) {
	for i := range dst {
		dst[i] ^= obfuscationKey[i%len(obfuscationKey)]
	}
}

var (
	ErrTooSmall = errors.New("k5hal/firmware: packed image smaller than the minimum header+version+crc size")
	ErrBadCRC   = errors.New("k5hal/firmware: packed image CRC-16/XMODEM mismatch")
)

// crc16XModem computes CRC-16/XMODEM (poly 0x1021, init 0, no reflection,
// no final XOR). Duplicated from wire's identical algorithm rather than
// imported, since firmware and wire are independent codecs over
// differently-shaped byte layouts and neither should import the other
// for one small, self-contained function.
func crc16XModem(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Image is an unpacked firmware image: the program bytes with the version
// region excised, plus the version string that was embedded alongside it.
type Image struct {
	Program []byte
	Version [versionSize]byte
}

// Pack assembles a packed image: bytes [0, 0x2000) and [0x2010, end-2) hold
// the program (obfuscated), bytes [0x2000, 0x2010) hold the obfuscated
// version, and the last two bytes are the little-endian CRC-16/XMODEM of
// everything preceding them.
func Pack(img Image) []byte {
	if len(img.Program) < versionOffset {
		padded := make([]byte, versionOffset)
		copy(padded, img.Program)
		img.Program = padded
	}
	total := len(img.Program) + versionSize
	plain := make([]byte, total)
	copy(plain[:versionOffset], img.Program[:versionOffset])
	copy(plain[versionOffset:versionOffset+versionSize], img.Version[:])
	copy(plain[versionOffset+versionSize:], img.Program[versionOffset:])

	packed := make([]byte, total+crcSize)
	copy(packed, plain)
	obfuscate(packed[:total])

	crc := crc16XModem(packed[:total])
	binary.LittleEndian.PutUint16(packed[total:], crc)
	return packed
}

// Unpack reverses Pack: it validates the trailing CRC, deobfuscates, and
// splits the version bytes back out of the program image.
func Unpack(packed []byte) (Image, error) {
	if len(packed) < minPackedSize {
		return Image{}, ErrTooSmall
	}
	total := len(packed) - crcSize
	gotCRC := binary.LittleEndian.Uint16(packed[total:])
	wantCRC := crc16XModem(packed[:total])
	if gotCRC != wantCRC {
		return Image{}, ErrBadCRC
	}

	plain := append([]byte(nil), packed[:total]...)
	obfuscate(plain)

	var img Image
	copy(img.Version[:], plain[versionOffset:versionOffset+versionSize])
	img.Program = make([]byte, len(plain)-versionSize)
	copy(img.Program[:versionOffset], plain[:versionOffset])
	copy(img.Program[versionOffset:], plain[versionOffset+versionSize:])
	return img, nil
}
