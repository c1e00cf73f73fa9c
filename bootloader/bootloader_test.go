// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bootloader

import (
	"io"
	"testing"
	"time"

	"github.com/go-radio/k5hal/wire"
)

// duplex glues two unidirectional pipes into one io.ReadWriter, one end
// for the host-side Flasher under test, the other for a simulated radio
// goroutine.
type duplex struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (d *duplex) Read(p []byte) (int, error)  { return d.r.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.w.Write(p) }

func newLink() (host, radio *duplex) {
	r1, w1 := io.Pipe() // host -> radio
	r2, w2 := io.Pipe() // radio -> host
	host = &duplex{r: r2, w: w1}
	radio = &duplex{r: r1, w: w2}
	return host, radio
}

// fakeRadio simulates the device side of the four-step choreography for
// a program of maxPage pages, replying with success on every page except
// failPage, which gets a non-zero error and ends the exchange.
func fakeRadio(t *testing.T, conn *duplex, maxPage int, failPage int) {
	t.Helper()
	buf := []byte{}
	readMsg := func(style wire.CRCStyle) wire.Message {
		chunk := make([]byte, 512)
		for {
			consumed, res := wire.Scan(buf, style)
			buf = buf[consumed:]
			if res.Status == wire.FrameOK && res.Recognized {
				return res.Message
			}
			if res.Status == wire.NeedMoreData {
				n, err := conn.Read(chunk)
				if err != nil {
					return nil
				}
				buf = append(buf, chunk[:n]...)
				continue
			}
		}
	}
	send := func(msg wire.Message, style wire.CRCStyle) {
		conn.Write(wire.Frame(msg, style))
	}

	send(wire.BootloaderReady{ChipID: [4]uint32{1, 2, 3, 4}, Version: [16]byte{'2', '.', '0', '0'}}, wire.CRCReal)

	reply := readMsg(wire.CRCFixed)
	if _, ok := reply.(wire.BootloaderReadyReply); !ok {
		t.Errorf("fakeRadio: expected BootloaderReadyReply, got %T", reply)
		return
	}

	for page := 0; page < maxPage; page++ {
		msg := readMsg(wire.CRCFixed)
		wf, ok := msg.(wire.WriteFlash)
		if !ok {
			t.Errorf("fakeRadio: expected WriteFlash, got %T", msg)
			return
		}
		errCode := uint16(0)
		if page == failPage {
			errCode = 1
		}
		send(wire.WriteFlashReply{SessionID: wf.SessionID, Page: wf.Page, Error: errCode}, wire.CRCReal)
		if page == failPage {
			return
		}
	}
}

func TestFlashHappyPath(t *testing.T) {
	host, radio := newLink()
	go fakeRadio(t, radio, 2, -1)

	program := make([]byte, 2*pageSize)
	for i := range program {
		program[i] = byte(i)
	}

	var pagesSeen []int
	f := NewFlasher(host)
	done := make(chan error, 1)
	go func() {
		done <- f.Flash(program, [16]byte{'k', '5', '-', 'n', 'e', 'w'}, func(page, maxPage int) {
			pagesSeen = append(pagesSeen, page)
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Flash: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Flash did not complete in time")
	}
	if len(pagesSeen) != 2 || pagesSeen[0] != 0 || pagesSeen[1] != 1 {
		t.Fatalf("pagesSeen = %v", pagesSeen)
	}
}

func TestFlashRejectedPageStopsEarly(t *testing.T) {
	host, radio := newLink()
	go fakeRadio(t, radio, 3, 1)

	program := make([]byte, 3*pageSize)
	f := NewFlasher(host)
	done := make(chan error, 1)
	go func() {
		done <- f.Flash(program, [16]byte{}, nil)
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error when a page is rejected")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Flash did not complete in time")
	}
}
