// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serialport opens a host serial device in raw mode at a fixed
// baud rate, wrapping github.com/daedaluz/goserial's termios plumbing so
// the rest of the tree only needs an io.ReadWriteCloser.
package serialport

import (
	"fmt"
	"time"

	serial "github.com/daedaluz/goserial"
)

// Open opens name (e.g. "/dev/ttyUSB0"), puts it in raw mode, and fixes
// its line speed to baud. readTimeout bounds each Read call so a host
// tool never blocks forever waiting on a radio that has gone away.
func Open(name string, baud uint32, readTimeout time.Duration) (*serial.Port, error) {
	opts := serial.NewOptions().SetReadTimeout(readTimeout)
	port, err := serial.Open(name, opts)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", name, err)
	}

	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("serialport: get attrs: %w", err)
	}
	attrs.MakeRaw()

	speed, ok := cflagForBaud(baud)
	if !ok {
		port.Close()
		return nil, fmt.Errorf("serialport: unsupported baud rate %d", baud)
	}
	attrs.SetSpeed(speed)

	if err := port.SetAttr(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("serialport: set attrs: %w", err)
	}
	return port, nil
}

// cflagForBaud maps the handful of line speeds this tree ever dials to
// the POSIX termios CBAUD encoding. The bootloader and stock firmware
// only ever speak at 38400; others are accepted for a --baud override.
func cflagForBaud(baud uint32) (serial.CFlag, bool) {
	switch baud {
	case 9600:
		return serial.B9600, true
	case 19200:
		return serial.B19200, true
	case 38400:
		return serial.B38400, true
	default:
		return 0, false
	}
}
