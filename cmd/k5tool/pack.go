// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-radio/k5hal/firmware"
)

type packCmd struct{}

func (*packCmd) Name() string        { return "pack" }
func (*packCmd) Description() string { return "pack a raw firmware image with a version and CRC" }

func (*packCmd) Run(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: pack <unpacked> <version> <packed>")
	}
	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	version := fs.Arg(1)
	if len(version) > 16 {
		return fmt.Errorf("version string longer than 16 bytes")
	}
	var v [16]byte
	copy(v[:], version)

	packed := firmware.Pack(firmware.Image{Program: raw, Version: v})
	return os.WriteFile(fs.Arg(2), packed, 0o644)
}
