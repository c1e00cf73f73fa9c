// Copyright 2026 The k5hal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// k5tool is the host-side companion to the k5hal firmware tree: it packs
// and unpacks firmware images, drives the bootloader flashing sequence
// over a serial port, reads EEPROM contents, and simulates a radio for
// testing another host tool against.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

// Command is implemented by every k5tool subcommand.
type Command interface {
	// Name is the subcommand word typed on the command line.
	Name() string
	// Description is a one-line summary printed in the usage list.
	Description() string
	// Run parses its own flags from fs and args and executes the command.
	Run(fs *flag.FlagSet, args []string) error
}

var commands = []Command{
	&packCmd{},
	&unpackCmd{},
	&flashCmd{},
	&readEepromCmd{},
	&simulateCmd{},
}

func usage(fs *flag.FlagSet) {
	io.WriteString(os.Stderr, "Usage: k5tool <command> [flags] ...\n\n")
	fs.PrintDefaults()
	io.WriteString(os.Stderr, "\nCommands available:\n")
	names := make([]string, len(commands))
	desc := make(map[string]string, len(commands))
	l := 0
	for i, c := range commands {
		if len(c.Name()) > l {
			l = len(c.Name())
		}
		names[i] = c.Name()
		desc[c.Name()] = c.Description()
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-*s %s\n", l, name, desc[name])
	}
}

func mainImpl() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(os.Args[1:]); err == flag.ErrHelp {
		return nil
	} else if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("please specify a command, or use -help")
	}
	name := fs.Arg(0)
	for _, c := range commands {
		if c.Name() == name {
			sub := flag.NewFlagSet("k5tool "+name, flag.ExitOnError)
			return c.Run(sub, fs.Args()[1:])
		}
	}
	return fmt.Errorf("unknown command %q", name)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "k5tool: %s.\n", err)
		os.Exit(1)
	}
}
