// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wire

import "testing"

func TestFrameScanRoundTrip(t *testing.T) {
	msg := Hello{SessionID: HostSessionID}
	frame := Frame(msg, CRCReal)
	consumed, res := Scan(frame, CRCReal)
	if consumed != len(frame) {
		t.Fatalf("consumed = %d, want %d", consumed, len(frame))
	}
	if res.Status != FrameOK {
		t.Fatalf("status = %v, want FrameOK", res.Status)
	}
	got, ok := res.Message.(Hello)
	if !ok {
		t.Fatalf("message type = %T, want Hello", res.Message)
	}
	if got.SessionID != HostSessionID {
		t.Fatalf("SessionID = %#x, want %#x", got.SessionID, HostSessionID)
	}
}

func TestScanFixedCRCIgnoresPayload(t *testing.T) {
	msg := WriteFlashReply{SessionID: FlashSessionID, Page: 3, Error: 0}
	frame := Frame(msg, CRCFixed)
	// Corrupt a body byte; CRCFixed style must not reject it.
	frame[8] ^= 0xFF
	_, res := Scan(frame, CRCFixed)
	if res.Status != FrameOK {
		t.Fatalf("status = %v, want FrameOK under CRCFixed", res.Status)
	}
}

func TestScanDetectsCRCFailure(t *testing.T) {
	msg := Hello{SessionID: 1}
	frame := Frame(msg, CRCReal)
	frame[8] ^= 0xFF // corrupt an obfuscated body byte
	consumed, res := Scan(frame, CRCReal)
	if res.Status != FrameCRCFailed {
		t.Fatalf("status = %v, want FrameCRCFailed", res.Status)
	}
	if consumed != len(frame) {
		t.Fatalf("consumed = %d, want full frame consumed on CRC failure", consumed)
	}
}

func TestScanNeedsMoreData(t *testing.T) {
	msg := Hello{SessionID: 1}
	frame := Frame(msg, CRCReal)
	partial := frame[:len(frame)-3]
	consumed, res := Scan(partial, CRCReal)
	if res.Status != NeedMoreData {
		t.Fatalf("status = %v, want NeedMoreData", res.Status)
	}
	if consumed != 0 {
		t.Fatalf("consumed = %d, want 0 (start marker at buffer head)", consumed)
	}
}

func TestScanFalseStartOverlongLength(t *testing.T) {
	buf := []byte{startMarkerByte0, startMarkerByte1, 0xFF, 0xFF} // len = 0xFFFF, way over cap
	// Append a real, valid frame right after the bogus one.
	real := Frame(Hello{SessionID: 7}, CRCReal)
	buf = append(buf, real...)
	consumed, res := Scan(buf, CRCReal)
	if res.Status != FrameOK {
		t.Fatalf("status = %v, want FrameOK (false start skipped)", res.Status)
	}
	if consumed != 4+len(real) {
		t.Fatalf("consumed = %d, want %d", consumed, 4+len(real))
	}
}

func TestScanUnknownTypeCodeIsNotAnError(t *testing.T) {
	// Hand-build a frame with an unrecognized type code but otherwise
	// well-formed body/CRC.
	fields := []byte{1, 2, 3, 4}
	body := make([]byte, 4+len(fields))
	body[0], body[1] = 0x00, 0x10 // type 0x1000, unknown
	body[2], body[3] = byte(len(fields)), 0
	copy(body[4:], fields)

	crc := crc16XModem(body)
	payload := make([]byte, len(body)+2)
	copy(payload, body)
	payload[len(body)] = byte(crc)
	payload[len(body)+1] = byte(crc >> 8)
	obfuscate(payload)

	frame := []byte{startMarkerByte0, startMarkerByte1, byte(len(body)), byte(len(body) >> 8)}
	frame = append(frame, payload...)
	frame = append(frame, endMarkerByte0, endMarkerByte1)

	_, res := Scan(frame, CRCReal)
	if res.Status != FrameOK {
		t.Fatalf("status = %v, want FrameOK", res.Status)
	}
	if res.Recognized {
		t.Fatalf("expected an unrecognized type code")
	}
	if res.Message != nil {
		t.Fatalf("expected nil Message for unrecognized type code")
	}
}

func TestCRC16XModemKnownVector(t *testing.T) {
	// "123456789" is the standard CRC check string; CRC-16/XMODEM's
	// published check value for it is 0x31C3.
	if got := crc16XModem([]byte("123456789")); got != 0x31C3 {
		t.Fatalf("crc16XModem = %#04x, want 0x31c3", got)
	}
}

func TestWriteFlashRoundTrip(t *testing.T) {
	var data [256]byte
	for i := range data {
		data[i] = byte(i)
	}
	msg := WriteFlash{SessionID: FlashSessionID, Page: 2, MaxPage: 8, Len: 256, Data: data}
	frame := Frame(msg, CRCFixed)
	_, res := Scan(frame, CRCFixed)
	if res.Status != FrameOK {
		t.Fatalf("status = %v, want FrameOK", res.Status)
	}
	got, ok := res.Message.(WriteFlash)
	if !ok {
		t.Fatalf("message type = %T, want WriteFlash", res.Message)
	}
	if got.Data != data {
		t.Fatalf("Data mismatch after round trip")
	}
}
