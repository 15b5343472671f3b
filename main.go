// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/beevik/core6502/cpu"
	"github.com/beevik/core6502/host"
	"github.com/beevik/term"
	"github.com/pkg/errors"
)

var (
	memSize   int
	strict    bool
	pageCross bool
	load      string
)

func init() {
	flag.IntVar(&memSize, "mem", 65536, "memory size in bytes")
	flag.BoolVar(&strict, "strict", false, "stop on unknown opcodes")
	flag.BoolVar(&pageCross, "pagecross", false, "charge page-crossing cycles")
	flag.StringVar(&load, "load", "", "load a binary file at an address (file@addr)")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: core6502 [options] [script] ..\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	h := host.New(memSize,
		cpu.WithStrictOpcodes(strict),
		cpu.WithPageCrossPenalty(pageCross))

	// Load a binary file if requested.
	if load != "" {
		filename, addr, err := parseLoad(load)
		if err != nil {
			exitOnError(err)
		}
		n, err := h.LoadFile(filename, addr)
		if err != nil {
			exitOnError(err)
		}
		fmt.Printf("Loaded %d bytes to $%04X.\n", n, addr)
	}

	// Run commands contained in command-line files.
	for _, filename := range flag.Args() {
		file, err := os.Open(filename)
		if err != nil {
			exitOnError(err)
		}
		quit := h.RunCommands(file, os.Stdout, false)
		file.Close()
		if quit {
			return
		}
	}

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	// Run commands from stdin, interactively if it is a terminal.
	h.RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}

// Split a "file@addr" load argument. The address may be decimal or
// hexadecimal with a '$' or '0x' prefix.
func parseLoad(s string) (filename string, addr uint16, err error) {
	i := strings.LastIndexByte(s, '@')
	if i < 0 {
		return "", 0, errors.Errorf("load argument '%s' must have the form file@addr", s)
	}

	filename, a := s[:i], s[i+1:]
	if strings.HasPrefix(a, "$") {
		a = "0x" + a[1:]
	}
	v, err := strconv.ParseUint(a, 0, 16)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid load address '%s'", s[i+1:])
	}
	return filename, uint16(v), nil
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
