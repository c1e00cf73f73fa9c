// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/go-radio/k5hal/firmware"
)

type unpackCmd struct{}

func (*unpackCmd) Name() string { return "unpack" }
func (*unpackCmd) Description() string {
	return "unpack a packed firmware image, printing its version"
}

func (*unpackCmd) Run(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: unpack <packed> <raw>")
	}
	packed, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	img, err := firmware.Unpack(packed)
	if err != nil {
		return fmt.Errorf("unpack: %w", err)
	}
	version := bytes.TrimRight(img.Version[:], "\x00")
	fmt.Printf("version: %s\n", version)
	return os.WriteFile(fs.Arg(1), img.Program, 0o644)
}
