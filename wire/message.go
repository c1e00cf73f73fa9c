// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"errors"
)

// Message type codes.
const (
	TypeHello                 uint16 = 0x0514
	TypeHelloReply            uint16 = 0x0515
	TypeBootloaderReady       uint16 = 0x0518
	TypeWriteFlash            uint16 = 0x0519
	TypeWriteFlashReply       uint16 = 0x051a
	TypeReadEeprom            uint16 = 0x051b
	TypeReadEepromReply       uint16 = 0x051c
	TypeBootloaderReadyReply  uint16 = 0x0530
	TypeDebugInput            uint16 = 0x8500
	TypeDebugOutput           uint16 = 0x8501
)

// Message is implemented by every known message type, host-origin and
// radio-origin alike. The set is closed: callers type-switch on the
// concrete type after ParseBody dispatches on the wire type code.
type Message interface {
	TypeCode() uint16
	marshalFields() []byte
	message()
}

var errShortBody = errors.New("k5hal/wire: message body too short for its type")

// Hello is sent host→radio to begin a session.
type Hello struct {
	SessionID uint32
}

func (Hello) TypeCode() uint16 { return TypeHello }
func (Hello) message()         {}
func (h Hello) marshalFields() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, h.SessionID)
	return buf
}
func unmarshalHello(b []byte) (Message, error) {
	if len(b) < 4 {
		return nil, errShortBody
	}
	return Hello{SessionID: binary.LittleEndian.Uint32(b)}, nil
}

// HelloReply answers Hello, radio→host.
type HelloReply struct {
	Version        [16]byte
	HasCustomKey   bool
	InLockscreen   bool
	Challenge      [4]uint32
}

func (HelloReply) TypeCode() uint16 { return TypeHelloReply }
func (HelloReply) message()         {}
func (h HelloReply) marshalFields() []byte {
	buf := make([]byte, 16+1+1+16)
	copy(buf[0:16], h.Version[:])
	if h.HasCustomKey {
		buf[16] = 1
	}
	if h.InLockscreen {
		buf[17] = 1
	}
	for i, c := range h.Challenge {
		binary.LittleEndian.PutUint32(buf[18+i*4:], c)
	}
	return buf
}
func unmarshalHelloReply(b []byte) (Message, error) {
	if len(b) < 34 {
		return nil, errShortBody
	}
	var h HelloReply
	copy(h.Version[:], b[0:16])
	h.HasCustomKey = b[16] != 0
	h.InLockscreen = b[17] != 0
	for i := range h.Challenge {
		h.Challenge[i] = binary.LittleEndian.Uint32(b[18+i*4:])
	}
	return h, nil
}

// BootloaderReady is sent radio→host when the bootloader is waiting for a
// firmware image.
type BootloaderReady struct {
	ChipID  [4]uint32
	Version [16]byte
}

func (BootloaderReady) TypeCode() uint16 { return TypeBootloaderReady }
func (BootloaderReady) message()         {}
func (m BootloaderReady) marshalFields() []byte {
	buf := make([]byte, 16+16)
	for i, c := range m.ChipID {
		binary.LittleEndian.PutUint32(buf[i*4:], c)
	}
	copy(buf[16:], m.Version[:])
	return buf
}
func unmarshalBootloaderReady(b []byte) (Message, error) {
	if len(b) < 32 {
		return nil, errShortBody
	}
	var m BootloaderReady
	for i := range m.ChipID {
		m.ChipID[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	copy(m.Version[:], b[16:32])
	return m, nil
}

// BootloaderReadyReply answers BootloaderReady, host→radio, naming the
// incoming firmware's version.
type BootloaderReadyReply struct {
	Version [16]byte
}

func (BootloaderReadyReply) TypeCode() uint16 { return TypeBootloaderReadyReply }
func (BootloaderReadyReply) message()         {}
func (m BootloaderReadyReply) marshalFields() []byte {
	buf := make([]byte, 16)
	copy(buf, m.Version[:])
	return buf
}
func unmarshalBootloaderReadyReply(b []byte) (Message, error) {
	if len(b) < 16 {
		return nil, errShortBody
	}
	var m BootloaderReadyReply
	copy(m.Version[:], b[0:16])
	return m, nil
}

// WriteFlash carries one 256-byte page of firmware, host→radio.
type WriteFlash struct {
	SessionID uint32
	Page      uint16
	MaxPage   uint16
	Len       uint16
	Data      [256]byte
}

func (WriteFlash) TypeCode() uint16 { return TypeWriteFlash }
func (WriteFlash) message()         {}
func (m WriteFlash) marshalFields() []byte {
	buf := make([]byte, 4+2+2+2+256)
	binary.LittleEndian.PutUint32(buf[0:], m.SessionID)
	binary.LittleEndian.PutUint16(buf[4:], m.Page)
	binary.LittleEndian.PutUint16(buf[6:], m.MaxPage)
	binary.LittleEndian.PutUint16(buf[8:], m.Len)
	copy(buf[10:], m.Data[:])
	return buf
}
func unmarshalWriteFlash(b []byte) (Message, error) {
	if len(b) < 10+256 {
		return nil, errShortBody
	}
	var m WriteFlash
	m.SessionID = binary.LittleEndian.Uint32(b[0:])
	m.Page = binary.LittleEndian.Uint16(b[4:])
	m.MaxPage = binary.LittleEndian.Uint16(b[6:])
	m.Len = binary.LittleEndian.Uint16(b[8:])
	copy(m.Data[:], b[10:10+256])
	return m, nil
}

// WriteFlashReply answers WriteFlash, radio→host. Error == 0 means success.
type WriteFlashReply struct {
	SessionID uint32
	Page      uint16
	Error     uint16
}

func (WriteFlashReply) TypeCode() uint16 { return TypeWriteFlashReply }
func (WriteFlashReply) message()         {}
func (m WriteFlashReply) marshalFields() []byte {
	buf := make([]byte, 4+2+2)
	binary.LittleEndian.PutUint32(buf[0:], m.SessionID)
	binary.LittleEndian.PutUint16(buf[4:], m.Page)
	binary.LittleEndian.PutUint16(buf[6:], m.Error)
	return buf
}
func unmarshalWriteFlashReply(b []byte) (Message, error) {
	if len(b) < 8 {
		return nil, errShortBody
	}
	var m WriteFlashReply
	m.SessionID = binary.LittleEndian.Uint32(b[0:])
	m.Page = binary.LittleEndian.Uint16(b[4:])
	m.Error = binary.LittleEndian.Uint16(b[6:])
	return m, nil
}

// ReadEeprom requests a region of the radio's EEPROM, host→radio.
type ReadEeprom struct {
	Address   uint32
	Len       uint16
	SessionID uint32
}

func (ReadEeprom) TypeCode() uint16 { return TypeReadEeprom }
func (ReadEeprom) message()         {}
func (m ReadEeprom) marshalFields() []byte {
	buf := make([]byte, 4+2+4)
	binary.LittleEndian.PutUint32(buf[0:], m.Address)
	binary.LittleEndian.PutUint16(buf[4:], m.Len)
	binary.LittleEndian.PutUint32(buf[6:], m.SessionID)
	return buf
}
func unmarshalReadEeprom(b []byte) (Message, error) {
	if len(b) < 10 {
		return nil, errShortBody
	}
	var m ReadEeprom
	m.Address = binary.LittleEndian.Uint32(b[0:])
	m.Len = binary.LittleEndian.Uint16(b[4:])
	m.SessionID = binary.LittleEndian.Uint32(b[6:])
	return m, nil
}

// ReadEepromReply answers ReadEeprom, radio→host, with Len bytes of data.
type ReadEepromReply struct {
	Address uint32
	Len     uint16
	Data    []byte
}

func (ReadEepromReply) TypeCode() uint16 { return TypeReadEepromReply }
func (ReadEepromReply) message()         {}
func (m ReadEepromReply) marshalFields() []byte {
	buf := make([]byte, 4+2+len(m.Data))
	binary.LittleEndian.PutUint32(buf[0:], m.Address)
	binary.LittleEndian.PutUint16(buf[4:], m.Len)
	copy(buf[6:], m.Data)
	return buf
}
func unmarshalReadEepromReply(b []byte) (Message, error) {
	if len(b) < 6 {
		return nil, errShortBody
	}
	var m ReadEepromReply
	m.Address = binary.LittleEndian.Uint32(b[0:])
	m.Len = binary.LittleEndian.Uint16(b[4:])
	if len(b) < 6+int(m.Len) {
		return nil, errShortBody
	}
	m.Data = append([]byte(nil), b[6:6+int(m.Len)]...)
	return m, nil
}

// DebugInput and DebugOutput are an undocumented console channel observed
// in the original firmware but not exercised by any specified sequence;
// carried here parse-only as an opaque payload.
type DebugInput struct{ Data []byte }
type DebugOutput struct{ Data []byte }

func (DebugInput) TypeCode() uint16          { return TypeDebugInput }
func (DebugInput) message()                  {}
func (m DebugInput) marshalFields() []byte   { return append([]byte(nil), m.Data...) }
func (DebugOutput) TypeCode() uint16         { return TypeDebugOutput }
func (DebugOutput) message()                 {}
func (m DebugOutput) marshalFields() []byte  { return append([]byte(nil), m.Data...) }

func unmarshalDebugInput(b []byte) (Message, error) {
	return DebugInput{Data: append([]byte(nil), b...)}, nil
}
func unmarshalDebugOutput(b []byte) (Message, error) {
	return DebugOutput{Data: append([]byte(nil), b...)}, nil
}

// ParseBody dispatches on typeCode, parsing fields (the body with its own
// 4-byte type+length sub-header already stripped). An unrecognized type
// code is not an error: it parses as "no recognized message," so callers
// can ignore traffic they don't care about.
func ParseBody(typeCode uint16, fields []byte) (Message, bool, error) {
	var (
		msg Message
		err error
	)
	switch typeCode {
	case TypeHello:
		msg, err = unmarshalHello(fields)
	case TypeHelloReply:
		msg, err = unmarshalHelloReply(fields)
	case TypeBootloaderReady:
		msg, err = unmarshalBootloaderReady(fields)
	case TypeBootloaderReadyReply:
		msg, err = unmarshalBootloaderReadyReply(fields)
	case TypeWriteFlash:
		msg, err = unmarshalWriteFlash(fields)
	case TypeWriteFlashReply:
		msg, err = unmarshalWriteFlashReply(fields)
	case TypeReadEeprom:
		msg, err = unmarshalReadEeprom(fields)
	case TypeReadEepromReply:
		msg, err = unmarshalReadEepromReply(fields)
	case TypeDebugInput:
		msg, err = unmarshalDebugInput(fields)
	case TypeDebugOutput:
		msg, err = unmarshalDebugOutput(fields)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return msg, true, nil
}

// EncodeBody serializes msg's 4-byte type+length sub-header followed by
// its fields, ready to be wrapped into a Frame.
func EncodeBody(msg Message) []byte {
	fields := msg.marshalFields()
	buf := make([]byte, 4+len(fields))
	binary.LittleEndian.PutUint16(buf[0:], msg.TypeCode())
	binary.LittleEndian.PutUint16(buf[2:], uint16(len(fields)))
	copy(buf[4:], fields)
	return buf
}
