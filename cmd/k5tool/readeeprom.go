// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-radio/k5hal/internal/serialport"
	"github.com/go-radio/k5hal/wire"
)

const eepromChunkSize = 0x80

type readEepromCmd struct{}

func (*readEepromCmd) Name() string        { return "read-eeprom" }
func (*readEepromCmd) Description() string { return "read the radio's EEPROM over a live session" }

func (*readEepromCmd) Run(fs *flag.FlagSet, args []string) error {
	output := fs.String("output", "", "file to write the EEPROM dump to (default: stdout)")
	size := fs.Uint("size", 0x2000, "number of bytes to read")
	baud := fs.Uint("baud", uint(wire.CanonicalBaud), "serial baud rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: read-eeprom [flags] <port>")
	}

	port, err := serialport.Open(fs.Arg(0), uint32(*baud), time.Second)
	if err != nil {
		return err
	}
	defer port.Close()

	conn := &scanningReader{conn: port}

	if err := conn.send(wire.Hello{SessionID: wire.HostSessionID}, wire.CRCFixed); err != nil {
		return err
	}
	helloReplyMsg, err := conn.readUntil(wire.CRCReal, func(m wire.Message) bool {
		_, ok := m.(wire.HelloReply)
		return ok
	})
	if err != nil {
		return err
	}
	helloReply := helloReplyMsg.(wire.HelloReply)
	fmt.Fprintf(os.Stderr, "connected to version: %s\n", trimVersion(helloReply.Version))

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	var address uint32
	for uint(address) < *size {
		if err := conn.send(wire.ReadEeprom{Address: address, Len: eepromChunkSize, SessionID: wire.HostSessionID}, wire.CRCFixed); err != nil {
			return err
		}
		replyMsg, err := conn.readUntil(wire.CRCReal, func(m wire.Message) bool {
			_, ok := m.(wire.ReadEepromReply)
			return ok
		})
		if err != nil {
			return err
		}
		reply := replyMsg.(wire.ReadEepromReply)
		if reply.Address != address {
			return fmt.Errorf("read-eeprom: reply had address %#x, wanted %#x", reply.Address, address)
		}
		if _, err := out.Write(reply.Data); err != nil {
			return err
		}
		address += uint32(reply.Len)
		if reply.Len < eepromChunkSize {
			break
		}
	}
	fmt.Fprintf(os.Stderr, "read %d bytes\n", address)
	return nil
}

func trimVersion(v [16]byte) string {
	n := 0
	for n < len(v) && v[n] != 0 {
		n++
	}
	return string(v[:n])
}
