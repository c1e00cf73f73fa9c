// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wire

import "encoding/binary"

// Frame encodes msg as a complete wire frame: start marker, length,
// obfuscated body+CRC, end marker. style selects whether a real
// CRC-16/XMODEM is computed or the fixed 0xFFFF placeholder is emitted.
func Frame(msg Message, style CRCStyle) []byte {
	body := EncodeBody(msg)

	var crcVal uint16
	if style == CRCReal {
		crcVal = crc16XModem(body)
	} else {
		crcVal = 0xFFFF
	}

	payload := make([]byte, len(body)+2)
	copy(payload, body)
	binary.LittleEndian.PutUint16(payload[len(body):], crcVal)
	obfuscate(payload)

	out := make([]byte, 0, 2+2+len(payload)+2)
	out = append(out, startMarkerByte0, startMarkerByte1)
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(body)))
	out = append(out, lenBuf[:]...)
	out = append(out, payload...)
	out = append(out, endMarkerByte0, endMarkerByte1)
	return out
}

// ScanStatus classifies the outcome of one Scan call.
type ScanStatus int

const (
	// NeedMoreData means no complete frame was found; the caller should
	// append more bytes after the consumed prefix and scan again.
	NeedMoreData ScanStatus = iota
	// FrameCRCFailed means a complete frame was found but its CRC did not
	// validate. The frame's bytes are still consumed.
	FrameCRCFailed
	// FrameParseFailed means a complete, CRC-valid frame did not parse as
	// any known shape for its type code. The frame's bytes are still
	// consumed.
	FrameParseFailed
	// FrameOK means a complete, CRC-valid frame was parsed. Message is
	// nil and Recognized is false if the type code is unknown — this is
	// not an error, just traffic the caller can ignore.
	FrameOK
)

// ScanResult is what one Scan call found.
type ScanResult struct {
	Status     ScanStatus
	Message    Message
	Recognized bool
}

// Scan searches buf for one complete frame, implementing the receive
// algorithm: find the start marker, read its length, treat an
// over-large length or a misplaced end marker as a false start, then
// deobfuscate, validate the CRC and parse the typed body. It always makes
// progress: on NeedMoreData it reports how many leading bytes (up to the
// next start-marker candidate) can be discarded; on every other status it
// reports the full frame consumed, so a caller scanning in a loop can
// never stall on a malformed stream.
func Scan(buf []byte, style CRCStyle) (consumed int, result ScanResult) {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] != startMarkerByte0 || buf[i+1] != startMarkerByte1 {
			continue
		}
		rest := buf[i+2:]
		if len(rest) < 2 {
			return i, ScanResult{Status: NeedMoreData}
		}
		length := int(binary.LittleEndian.Uint16(rest[0:2]))
		if length > maxFrameBody {
			continue // false start: retry from the next marker occurrence
		}
		if len(rest) < 2+length+2+2 {
			return i, ScanResult{Status: NeedMoreData}
		}
		endOff := 2 + length + 2
		if rest[endOff] != endMarkerByte0 || rest[endOff+1] != endMarkerByte1 {
			continue // false start
		}

		payload := append([]byte(nil), rest[2:2+length+2]...)
		obfuscate(payload) // XOR is self-inverse
		body := payload[:length]
		crcGot := binary.LittleEndian.Uint16(payload[length : length+2])
		consumed := i + 2 + 2 + length + 2 + 2

		if style == CRCReal {
			if want := crc16XModem(body); want != crcGot {
				return consumed, ScanResult{Status: FrameCRCFailed}
			}
		}
		if len(body) < 4 {
			return consumed, ScanResult{Status: FrameParseFailed}
		}
		typeCode := binary.LittleEndian.Uint16(body[0:2])
		bodyLen := int(binary.LittleEndian.Uint16(body[2:4]))
		if bodyLen > len(body)-4 {
			return consumed, ScanResult{Status: FrameParseFailed}
		}
		msg, recognized, err := ParseBody(typeCode, body[4:4+bodyLen])
		if err != nil {
			return consumed, ScanResult{Status: FrameParseFailed}
		}
		return consumed, ScanResult{Status: FrameOK, Message: msg, Recognized: recognized}
	}
	if len(buf) > 0 && buf[len(buf)-1] == startMarkerByte0 {
		// Keep a trailing first marker byte: its second byte may be next.
		return len(buf) - 1, ScanResult{Status: NeedMoreData}
	}
	return len(buf), ScanResult{Status: NeedMoreData}
}
