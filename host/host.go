// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host allows you to create a "host" that wraps a 6502 CPU core in
// an interactive command interpreter.
//
// Within the host it is possible to load machine code into memory, run the
// CPU for a budget of cycles, step through machine code, set address and
// data breakpoints, dump and disassemble the contents of memory, and
// manipulate CPU registers and memory.
package host

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/beevik/cmd"
	"github.com/beevik/core6502/cpu"
	"github.com/beevik/core6502/disasm"
	"github.com/pkg/errors"
)

type displayFlags uint8

const (
	displayRegisters displayFlags = 1 << iota
	displayCycles

	displayAll = displayRegisters | displayCycles
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
)

var errQuit = errors.New("exiting program")

// A Host represents an emulated 6502 CPU with its memory and a debugger,
// driven by text commands.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	cpu         *cpu.CPU
	debugger    *cpu.Debugger
	lastCmd     *selection
	state       state
	settings    *settings
	interrupted atomic.Bool // set by Break, consumed by run and step
}

// New creates a new host environment around a CPU with 'memSize' bytes of
// memory. The CPU is reset before New returns.
func New(memSize int, opts ...cpu.Option) *Host {
	h := &Host{
		output:   bufio.NewWriter(io.Discard),
		state:    stateProcessingCommands,
		settings: newSettings(),
	}

	h.cpu = cpu.NewCPU(memSize, opts...)
	h.cpu.Reset()
	h.settings.StrictOpcodes = h.cpu.StrictOpcodes()
	h.settings.PageCrossPenalty = h.cpu.PageCrossPenalty()

	// Create a CPU debugger and attach it to the CPU.
	h.debugger = cpu.NewDebugger(newDebugHandler(h))
	h.cpu.AttachDebugger(h.debugger)

	return h
}

// CPU returns the host's emulated CPU.
func (h *Host) CPU() *cpu.CPU {
	return h.cpu
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered, and an empty line
// repeats the previous command. RunCommands returns true if the quit
// command was processed.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) (quit bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	if interactive {
		h.println()
	}

	h.displayPC()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			return false
		}
		line = strings.TrimSpace(line)

		var c selection
		if line != "" {
			c, err = lookup(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				h.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.interactive && h.lastCmd != nil {
			c = *h.lastCmd
		}

		// A line naming a group of commands lists the group.
		if c.group != nil {
			c.group.DisplayHelp(h.output)
			h.flush()
			continue
		}
		if c.command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.command.Data.(func(*Host, selection) error)
		if err := handler(h, c); err != nil {
			return true
		}
	}
}

// Break interrupts a running CPU. It may be called from any goroutine. The
// run or step command in progress stops before its next instruction; a
// break with no command in progress is ignored.
func (h *Host) Break() {
	h.interrupted.Store(true)
}

// Report whether Break was called since the flag was last consumed.
func (h *Host) breakRequested() bool {
	if h.interrupted.Swap(false) {
		h.println("Interrupted.")
		return true
	}
	return false
}

// LoadFile loads the raw contents of a binary file into memory at 'addr'
// and moves the program counter there. It returns the number of bytes
// loaded.
func (h *Host) LoadFile(filename string, addr uint16) (int, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load '%s'", filepath.Base(filename))
	}
	if int(addr)+len(b) > h.cpu.Mem.Size() {
		return 0, errors.Errorf("'%s' ($%04X bytes) does not fit in memory at $%04X",
			filepath.Base(filename), len(b), addr)
	}

	h.cpu.Mem.StoreBytes(addr, b)
	h.cpu.SetPC(addr)
	h.settings.NextDisasmAddr = addr
	return len(b), nil
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.print("* ")
		h.flush()
	}
}

func (h *Host) displayPC() {
	if h.interactive {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
	}
}

func (h *Host) cmdBreakpointList(c selection) error {
	h.println("Addr  Enabled  Hits")
	h.println("----- -------  ----")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%04X %-5v    %d\n", b.Address, !b.Disabled, b.Hits)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c selection) error {
	b := h.selectBreakpoint(c)
	if b == nil {
		return nil
	}

	h.debugger.RemoveBreakpoint(b.Address)
	h.printf("Breakpoint at $%04X removed.\n", b.Address)
	return nil
}

func (h *Host) cmdBreakpointEnable(c selection) error {
	b := h.selectBreakpoint(c)
	if b == nil {
		return nil
	}

	b.Disabled = false
	h.printf("Breakpoint at $%04X enabled.\n", b.Address)
	return nil
}

func (h *Host) cmdBreakpointDisable(c selection) error {
	b := h.selectBreakpoint(c)
	if b == nil {
		return nil
	}

	b.Disabled = true
	h.printf("Breakpoint at $%04X disabled.\n", b.Address)
	return nil
}

// Find the breakpoint addressed by the command's first argument, reporting
// any problem to the user.
func (h *Host) selectBreakpoint(c selection) *cpu.Breakpoint {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
	}
	return b
}

func (h *Host) cmdDataBreakpointList(c selection) error {
	h.println("Addr  Enabled  Value   Hits")
	h.println("----- -------  ------  ----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		value := "<none>"
		if b.Conditional {
			value = fmt.Sprintf("$%02X", b.Value)
		}
		h.printf("$%04X %-5v    %-6s  %d\n", b.Address, !b.Disabled, value, b.Hits)
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if len(c.args) > 1 {
		value, err := h.parseByte(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, value)
		h.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, value)
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%04X.\n", addr)
	}
	return nil
}

func (h *Host) cmdDataBreakpointRemove(c selection) error {
	b := h.selectDataBreakpoint(c)
	if b == nil {
		return nil
	}

	h.debugger.RemoveDataBreakpoint(b.Address)
	h.printf("Data breakpoint at $%04X removed.\n", b.Address)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c selection) error {
	b := h.selectDataBreakpoint(c)
	if b == nil {
		return nil
	}

	b.Disabled = false
	h.printf("Data breakpoint at $%04X enabled.\n", b.Address)
	return nil
}

func (h *Host) cmdDataBreakpointDisable(c selection) error {
	b := h.selectDataBreakpoint(c)
	if b == nil {
		return nil
	}

	b.Disabled = true
	h.printf("Data breakpoint at $%04X disabled.\n", b.Address)
	return nil
}

func (h *Host) selectDataBreakpoint(c selection) *cpu.DataBreakpoint {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
	}
	return b
}

func (h *Host) cmdDisassemble(c selection) error {
	if len(c.args) == 0 {
		c.args = []string{"$"}
	}

	var addr uint16
	switch c.args[0] {
	case "$":
		addr = h.settings.NextDisasmAddr
	case ".":
		addr = h.cpu.Reg.PC
	default:
		a, err := h.parseAddr(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(c.args) > 1 {
		l, err := h.parseNumber(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(l)
	}

	for i := 0; i < lines; i++ {
		d, next := h.disassemble(addr, 0)
		h.println(d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastCmd.args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdHelp(c selection) error {
	err := cmds.GetHelp(h.output, c.args)
	switch {
	case errors.Is(err, cmd.ErrAmbiguous):
		h.printf("Help topic '%s' is ambiguous.\n", strings.Join(c.args, " "))
	case err != nil:
		h.printf("Help topic '%s' not found.\n", strings.Join(c.args, " "))
	default:
		h.flush()
	}
	return nil
}

func (h *Host) cmdMemoryDump(c selection) error {
	if len(c.args) == 0 {
		c.args = []string{"$"}
	}

	var addr uint16
	switch c.args[0] {
	case "$":
		addr = h.settings.NextMemDumpAddr
	case ".":
		addr = h.cpu.Reg.PC
	default:
		a, err := h.parseAddr(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := h.settings.MemDumpBytes
	if len(c.args) >= 2 {
		n, err := h.parseNumber(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		bytes = int(n)
	}

	if int(addr) >= h.cpu.Mem.Size() {
		h.printf("Address $%04X is beyond the end of memory.\n", addr)
		return nil
	}
	bytes = min(bytes, h.cpu.Mem.Size()-int(addr))
	if bytes <= 0 {
		return nil
	}

	h.dumpMemory(addr, uint16(bytes-1))

	h.settings.NextMemDumpAddr = addr + uint16(bytes)
	h.lastCmd.args = []string{"$", fmt.Sprintf("%d", bytes)}
	return nil
}

func (h *Host) cmdMemorySet(c selection) error {
	if len(c.args) < 2 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := make([]byte, 0, len(c.args)-1)
	for _, arg := range c.args[1:] {
		v, err := h.parseByte(arg)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		b = append(b, v)
	}

	if int(addr)+len(b) > h.cpu.Mem.Size() {
		h.printf("Memory ends at $%04X.\n", h.cpu.Mem.Size()-1)
		return nil
	}

	h.cpu.Mem.StoreBytes(addr, b)
	h.printf("Memory set at $%04X..$%04X.\n", addr, int(addr)+len(b)-1)
	return nil
}

func (h *Host) cmdMemoryLoad(c selection) error {
	if len(c.args) < 2 {
		h.displayUsage(c)
		return nil
	}

	addr, err := h.parseAddr(c.args[1])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	n, err := h.LoadFile(c.args[0], addr)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("Loaded '%s' to $%04X..$%04X.\n", filepath.Base(c.args[0]), addr, int(addr)+n-1)
	return nil
}

func (h *Host) cmdQuit(c selection) error {
	return errQuit
}

func (h *Host) cmdRegister(c selection) error {
	switch len(c.args) {
	case 0:
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)

	case 1:
		h.displayUsage(c)

	default:
		r, err := lookupRegister(c.args[0])
		if err != nil {
			h.printf("Register '%s' not found.\n", c.args[0])
			return nil
		}

		var v int64
		if r.size == 0 {
			var b bool
			b, err = stringToBool(c.args[1])
			if b {
				v = 1
			}
		} else {
			v, err = h.parseNumber(c.args[1])
		}
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}

		r.set(&h.cpu.Reg, v)
		switch r.size {
		case 0:
			h.printf("Flag %s set to %v.\n", r.name, r.get(&h.cpu.Reg) != 0)
		case 1:
			h.printf("Register %s set to $%02X.\n", r.name, r.get(&h.cpu.Reg))
		default:
			h.printf("Register %s set to $%04X.\n", r.name, r.get(&h.cpu.Reg))
		}
	}
	return nil
}

func (h *Host) cmdReset(c selection) error {
	h.cpu.Reset()
	h.settings.NextDisasmAddr = 0
	h.settings.NextMemDumpAddr = 0
	h.println("CPU reset.")
	return nil
}

func (h *Host) cmdRun(c selection) error {
	if len(c.args) < 1 {
		h.displayUsage(c)
		return nil
	}

	budget, err := h.parseNumber(c.args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if len(c.args) > 1 {
		pc, err := h.parseAddr(c.args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.cpu.SetPC(pc)
	}

	h.printf("Running from $%04X for %d cycles. Press ctrl-C to break.\n", h.cpu.Reg.PC, budget)

	// Run one instruction at a time so breakpoints can stop the run. A
	// single-cycle budget executes exactly one instruction, or consumes one
	// unknown opcode and reports zero cycles for it.
	h.interrupted.Store(false)
	h.state = stateRunning
	remaining, completed := int(budget), 0
	for remaining > 0 && h.state == stateRunning && !h.breakRequested() {
		n, err := h.execute(h.cpu.Run, 1)
		if err != nil {
			h.printf("%v\n", err)
			break
		}
		if n == 0 {
			remaining--
			continue
		}
		completed += n
		remaining -= n
	}
	h.state = stateProcessingCommands

	h.printf("Executed %d cycles.\n", completed)
	h.displayPC()

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdSet(c selection) error {
	switch len(c.args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c)

	default:
		key, value := c.args[0], strings.Join(c.args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = errors.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int64
			v, err = h.parseNumber(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err != nil {
			h.printf("%v\n", err)
			return nil
		}

		h.println("Setting updated.")
		h.onSettingsUpdate()
	}
	return nil
}

func (h *Host) cmdStep(c selection) error {
	// Parse the number of steps.
	count := 1
	if len(c.args) > 0 {
		n, err := h.parseNumber(c.args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		count = int(n)
	}

	// Step the CPU count times.
	h.interrupted.Store(false)
	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning && !h.breakRequested(); i-- {
		if _, err := h.execute(func(int) (int, error) { return h.cpu.Step() }, 1); err != nil {
			h.printf("%v\n", err)
			break
		}
		switch {
		case i == h.settings.MaxStepLines:
			h.println("...")
		case i < h.settings.MaxStepLines:
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

// Execute CPU instructions with the run function, converting a memory
// access fault into an error.
func (h *Host) execute(run func(budget int) (int, error), budget int) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, errors.Errorf("fault executing instruction at $%04X: %v", h.cpu.LastPC, r)
		}
	}()
	return run(budget)
}

func (h *Host) onSettingsUpdate() {
	h.cpu.SetStrictOpcodes(h.settings.StrictOpcodes)
	h.cpu.SetPageCrossPenalty(h.settings.PageCrossPenalty)
}

func (h *Host) parseNumber(s string) (int64, error) {
	if s == "." {
		return int64(h.cpu.Reg.PC), nil
	}
	return parseNumber(s, h.settings.HexMode)
}

func (h *Host) parseAddr(s string) (uint16, error) {
	v, err := h.parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 0xffff {
		return 0, errors.Errorf("address '%s' out of range", s)
	}
	return uint16(v), nil
}

func (h *Host) parseByte(s string) (byte, error) {
	v, err := h.parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v < -128 || v > 0xff {
		return 0, errors.Errorf("byte value '%s' out of range", s)
	}
	return byte(v), nil
}

func (h *Host) disassemble(addr uint16, flags displayFlags) (str string, next uint16) {
	var line string
	line, next = disasm.Disassemble(h.cpu.Mem, addr)
	b := disasm.Bytes(h.cpu.Mem, addr)

	str = fmt.Sprintf("%04X-   %-8s    %-15s", addr, codeString(b), line)

	if (flags & displayRegisters) != 0 {
		str += " " + disasm.RegisterString(&h.cpu.Reg)
	}

	if (flags & displayCycles) != 0 {
		str += fmt.Sprintf(" C=%d", h.cpu.Cycles)
	}

	return str, next
}

// Dump memory from 'addr0' through 'addr0+span', 8 bytes to a line.
func (h *Host) dumpMemory(addr0, span uint16) {
	addr1 := addr0 + span
	if addr1 < addr0 {
		addr1 = 0xffff
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := uint32(addr0), 6, 32; a <= uint32(addr1); a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.cpu.Mem.LoadByte(uint16(a))
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(strings.TrimRight(string(buf), " "))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := uint32(addr0) & 0xfff8
	stop := (uint32(addr1) + 8) & 0x1fff8

	a := start
	for r := start; r < stop; r += 8 {
		addrToBuf(uint16(a), buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= uint32(addr0) && a <= uint32(addr1) {
				m := h.cpu.Mem.LoadByte(uint16(a))
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(strings.TrimRight(string(buf), " "))
	}
}

func (h *Host) displayUsage(c selection) {
	c.command.DisplayUsage(h.output)
	h.flush()
}

func (h *Host) onBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	h.state = stateBreakpoint
	h.printf("Breakpoint hit at $%04X.\n", b.Address)
	h.displayPC()
}

func (h *Host) onDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint, s cpu.Store) {
	h.printf("Data breakpoint hit on address $%04X.\n", b.Address)
	h.printf("Stored $%02X by the %s instruction at $%04X.\n", s.Value, s.Mode, s.PC)

	h.state = stateBreakpoint

	d, _ := h.disassemble(s.PC, displayAll)
	h.println(d)
}
