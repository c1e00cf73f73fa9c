// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bootloader drives the host side of the four-step bootloader
// flashing choreography over any byte stream: wait for BootloaderReady,
// reply with BootloaderReadyReply, write each 256-byte page and wait for
// its WriteFlashReply, and expect the device to reboot once the final
// page lands.
package bootloader

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-radio/k5hal/wire"
)

const pageSize = 256

var (
	ErrUnexpectedMessage = errors.New("k5hal/bootloader: unexpected message while flashing")
	ErrPageRejected      = errors.New("k5hal/bootloader: device reported a non-zero WriteFlashReply error")
)

// Flasher drives the flashing sequence against conn, reading and writing
// wire frames directly; conn is typically a serial port on the host or an
// in-memory pipe in tests.
type Flasher struct {
	conn io.ReadWriter
	buf  []byte
}

// NewFlasher wraps conn.
func NewFlasher(conn io.ReadWriter) *Flasher {
	return &Flasher{conn: conn}
}

// readMessage blocks on conn until one recognized frame arrives, feeding
// wire.Scan from a growing buffer and discarding consumed bytes as it
// goes, matching wire.Scan's "always makes progress" contract.
func (f *Flasher) readMessage(style wire.CRCStyle) (wire.Message, error) {
	chunk := make([]byte, 512)
	for {
		for {
			consumed, res := wire.Scan(f.buf, style)
			f.buf = f.buf[consumed:]
			switch res.Status {
			case wire.FrameOK:
				if res.Recognized {
					return res.Message, nil
				}
				// Unrecognized traffic; keep waiting for something useful.
			case wire.FrameCRCFailed, wire.FrameParseFailed:
				// Malformed frame; already consumed, keep waiting.
			case wire.NeedMoreData:
				goto readMore
			}
		}
	readMore:
		n, err := f.conn.Read(chunk)
		if err != nil {
			return nil, fmt.Errorf("k5hal/bootloader: read: %w", err)
		}
		f.buf = append(f.buf, chunk[:n]...)
	}
}

func (f *Flasher) send(msg wire.Message, style wire.CRCStyle) error {
	frame := wire.Frame(msg, style)
	_, err := f.conn.Write(frame)
	if err != nil {
		return fmt.Errorf("k5hal/bootloader: write: %w", err)
	}
	return nil
}

// Flash runs the full four-step choreography for the given unpacked
// program image and firmware version string, reporting progress to
// onPage after each successfully acknowledged page (may be nil).
func (f *Flasher) Flash(program []byte, version [16]byte, onPage func(page, maxPage int)) error {
	ready, err := f.readMessage(wire.CRCReal)
	if err != nil {
		return err
	}
	if _, ok := ready.(wire.BootloaderReady); !ok {
		return fmt.Errorf("%w: got %T, want BootloaderReady", ErrUnexpectedMessage, ready)
	}

	if err := f.send(wire.BootloaderReadyReply{Version: version}, wire.CRCFixed); err != nil {
		return err
	}

	maxPage := (len(program) + pageSize - 1) / pageSize
	for page := 0; page < maxPage; page++ {
		var data [pageSize]byte
		start := page * pageSize
		end := start + pageSize
		if end > len(program) {
			end = len(program)
		}
		n := copy(data[:], program[start:end])

		wf := wire.WriteFlash{
			SessionID: wire.FlashSessionID,
			Page:      uint16(page),
			MaxPage:   uint16(maxPage),
			Len:       uint16(n),
			Data:      data,
		}
		if err := f.send(wf, wire.CRCFixed); err != nil {
			return err
		}

		reply, err := f.readMessage(wire.CRCReal)
		if err != nil {
			return err
		}
		wfr, ok := reply.(wire.WriteFlashReply)
		if !ok {
			return fmt.Errorf("%w: got %T, want WriteFlashReply", ErrUnexpectedMessage, reply)
		}
		if wfr.SessionID != wire.FlashSessionID || int(wfr.Page) != page {
			return fmt.Errorf("%w: page/session mismatch on page %d", ErrUnexpectedMessage, page)
		}
		if wfr.Error != 0 {
			return fmt.Errorf("%w: page %d", ErrPageRejected, page)
		}
		if onPage != nil {
			onPage(page, maxPage)
		}
	}
	return nil
}
