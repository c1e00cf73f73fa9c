// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-radio/k5hal/bootloader"
	"github.com/go-radio/k5hal/firmware"
	"github.com/go-radio/k5hal/internal/serialport"
	"github.com/go-radio/k5hal/wire"
)

// Layout constants for the radio this tool targets: a 16KiB SRAM window
// starting at ramStart, 61440 bytes (240 pages of 256) of flash available
// to application code before the resident bootloader begins.
const (
	ramStart         uint32 = 0x20000000
	ramSize          uint32 = 16 * 1024
	bootloaderStartPage     = 0xf0
	flashMax         uint32 = bootloaderStartPage * 256
)

type flashCmd struct{}

func (*flashCmd) Name() string        { return "flash" }
func (*flashCmd) Description() string { return "flash a firmware image to the radio's bootloader" }

func (*flashCmd) Run(fs *flag.FlagSet, args []string) error {
	version := fs.String("version", "", "version string to report to the bootloader; defaults to the packed image's own version")
	packedFlag := fs.Bool("packed", false, "treat the input as a packed image instead of raw program bytes")
	ignoreStack := fs.Bool("ignore-stack", false, "skip the initial-stack-pointer-in-RAM sanity check")
	ignoreEntry := fs.Bool("ignore-entry", false, "skip the reset-handler-in-flash sanity check")
	ignoreSize := fs.Bool("ignore-size", false, "skip the image-fits-before-the-bootloader sanity check")
	yes := fs.Bool("y", false, "don't ask for confirmation before flashing")
	baud := fs.Uint("baud", uint(wire.CanonicalBaud), "serial baud rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: flash [flags] <firmware> <port>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	var embeddedVersion [16]byte
	if *packedFlag {
		img, err := firmware.Unpack(data)
		if err != nil {
			return fmt.Errorf("unpack: %w", err)
		}
		data = img.Program
		embeddedVersion = img.Version
	}
	if *version != "" {
		if len(*version) > 16 {
			return fmt.Errorf("version string longer than 16 bytes")
		}
		embeddedVersion = [16]byte{}
		copy(embeddedVersion[:], *version)
	}

	if err := lintImage(data, *ignoreStack, *ignoreEntry, *ignoreSize); err != nil {
		return err
	}

	if !*yes {
		if err := confirm("Continue flashing?"); err != nil {
			return err
		}
	}

	port, err := serialport.Open(fs.Arg(1), uint32(*baud), time.Second)
	if err != nil {
		return err
	}
	defer port.Close()

	flasher := bootloader.NewFlasher(port)
	maxPage := (len(data) + 255) / 256
	return flasher.Flash(data, embeddedVersion, func(page, total int) {
		fmt.Printf("\rpage %d/%d", page+1, total)
		if page+1 == maxPage {
			fmt.Println()
		}
	})
}

// lintImage reads the reset vector (initial stack pointer, then reset
// handler address) off the front of a raw Cortex-M0+ image and checks it
// against this radio's RAM/flash layout before anything is sent to the
// device.
func lintImage(data []byte, ignoreStack, ignoreEntry, ignoreSize bool) error {
	if len(data) < 8 {
		return errors.New("image too small to contain a reset vector")
	}
	stackTop := binary.LittleEndian.Uint32(data[0:4])
	entryPoint := binary.LittleEndian.Uint32(data[4:8])

	var failed []string
	if !ignoreStack && (stackTop <= ramStart || stackTop > ramStart+ramSize) {
		failed = append(failed, "initial stack pointer is not inside RAM")
	}
	if !ignoreEntry && entryPoint >= flashMax {
		failed = append(failed, "reset handler is not inside the application's flash region")
	}
	if !ignoreSize && uint32(len(data)) > flashMax {
		failed = append(failed, "image is larger than the flash available before the bootloader")
	}
	if len(failed) > 0 {
		return fmt.Errorf("image failed sanity checks: %s", strings.Join(failed, "; "))
	}
	return nil
}

func confirm(prompt string) error {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	line = strings.TrimSpace(strings.ToLower(line))
	if line != "y" && line != "yes" {
		return errors.New("aborted")
	}
	return nil
}
