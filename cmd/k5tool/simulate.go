// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-radio/k5hal/internal/serialport"
	"github.com/go-radio/k5hal/wire"
)

type simulateCmd struct{}

func (*simulateCmd) Name() string { return "simulate" }
func (*simulateCmd) Description() string {
	return "pretend to be a radio over a serial port, for testing another host tool"
}

func (*simulateCmd) Run(fs *flag.FlagSet, args []string) error {
	initialEEPROM := fs.String("initial-eeprom", "", "file to preload the simulated EEPROM from")
	emptySize := fs.Uint("empty-eeprom-size", 0x2000, "size of the simulated EEPROM when no initial file is given")
	baud := fs.Uint("baud", uint(wire.CanonicalBaud), "serial baud rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: simulate [flags] <port>")
	}

	var eeprom []byte
	if *initialEEPROM != "" {
		var err error
		eeprom, err = os.ReadFile(*initialEEPROM)
		if err != nil {
			return err
		}
	} else {
		eeprom = make([]byte, *emptySize)
	}

	port, err := serialport.Open(fs.Arg(0), uint32(*baud), time.Second)
	if err != nil {
		return err
	}
	defer port.Close()

	sim := &simulator{conn: &scanningReader{conn: port}, eeprom: eeprom}
	return sim.run()
}

// simulator answers the host-origin messages a real radio would, so a
// second invocation of k5tool (or any other host tool) can be exercised
// against it without real hardware.
type simulator struct {
	conn      *scanningReader
	sessionID uint32
	eeprom    []byte
}

func (s *simulator) run() error {
	for {
		msg, err := s.conn.readUntil(wire.CRCFixed, func(wire.Message) bool { return true })
		if err != nil {
			return err
		}
		if err := s.handle(msg); err != nil {
			return err
		}
	}
}

func (s *simulator) handle(msg wire.Message) error {
	switch m := msg.(type) {
	case wire.Hello:
		s.sessionID = m.SessionID
		var version [16]byte
		copy(version[:], "k5sim")
		return s.conn.send(wire.HelloReply{Version: version}, wire.CRCReal)
	case wire.ReadEeprom:
		if m.SessionID != s.sessionID {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
		start := int(m.Address)
		if start > len(s.eeprom) {
			start = len(s.eeprom)
		}
		end := start + int(m.Len)
		if end > len(s.eeprom) {
			end = len(s.eeprom)
		}
		data := append([]byte(nil), s.eeprom[start:end]...)
		return s.conn.send(wire.ReadEepromReply{Address: m.Address, Len: uint16(len(data)), Data: data}, wire.CRCReal)
	}
	return nil
}
