// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/go-radio/k5hal/wire"
)

// scanningReader buffers bytes off conn and hands them to wire.Scan,
// mirroring the read loop bootloader.Flasher uses internally; the CLI
// needs its own copy since that one isn't exported for reuse outside the
// four-step flashing choreography.
type scanningReader struct {
	conn io.ReadWriter
	buf  []byte
}

func (s *scanningReader) send(msg wire.Message, style wire.CRCStyle) error {
	_, err := s.conn.Write(wire.Frame(msg, style))
	return err
}

// readUntil blocks until a recognized message satisfying keep arrives,
// discarding anything else (including malformed frames) along the way.
func (s *scanningReader) readUntil(style wire.CRCStyle, keep func(wire.Message) bool) (wire.Message, error) {
	chunk := make([]byte, 512)
	for {
		for {
			consumed, res := wire.Scan(s.buf, style)
			s.buf = s.buf[consumed:]
			if res.Status == wire.FrameOK && res.Recognized && keep(res.Message) {
				return res.Message, nil
			}
			if res.Status == wire.NeedMoreData {
				break
			}
		}
		n, err := s.conn.Read(chunk)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		s.buf = append(s.buf, chunk[:n]...)
	}
}
