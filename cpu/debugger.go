// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "slices"

// A Debugger observes an attached CPU. The CPU reports to it once for every
// opcode it fetches, including unknown opcodes skipped as idle cycles, and
// once for every byte an instruction stores. The debugger only notifies its
// handler; it never interrupts a run.
type Debugger struct {
	handler         BreakpointHandler
	breakpoints     map[uint16]*Breakpoint
	dataBreakpoints map[uint16]*DataBreakpoint
}

// The BreakpointHandler interface should be implemented by any object that
// wishes to receive debugger breakpoint notifications.
type BreakpointHandler interface {
	OnBreakpoint(cpu *CPU, b *Breakpoint)
	OnDataBreakpoint(cpu *CPU, b *DataBreakpoint, s Store)
}

// A Breakpoint is triggered when the program counter settles on its address
// after an opcode is consumed.
type Breakpoint struct {
	Address  uint16 // address of execution breakpoint
	Disabled bool   // this breakpoint is currently disabled
	Hits     int    // number of times the breakpoint has triggered
}

// A DataBreakpoint is triggered when an instruction stores a byte to its
// address.
type DataBreakpoint struct {
	Address     uint16 // breakpoint triggered by stores to this address
	Disabled    bool   // this breakpoint is currently disabled
	Conditional bool   // only trigger when Value is stored
	Value       byte   // the value a conditional breakpoint waits for
	Hits        int    // number of times the breakpoint has triggered
}

// A Store describes one byte written by an instruction.
type Store struct {
	PC    uint16 // address of the storing instruction's opcode
	Addr  uint16 // effective address resolved by the addressing mode
	Mode  Mode   // addressing mode that resolved Addr
	Value byte   // byte written
}

// NewDebugger creates a new CPU debugger that reports to 'handler'.
func NewDebugger(handler BreakpointHandler) *Debugger {
	return &Debugger{
		handler:         handler,
		breakpoints:     make(map[uint16]*Breakpoint),
		dataBreakpoints: make(map[uint16]*DataBreakpoint),
	}
}

// GetBreakpoint returns the breakpoint on 'addr', or nil.
func (d *Debugger) GetBreakpoint(addr uint16) *Breakpoint {
	return d.breakpoints[addr]
}

// GetBreakpoints returns all breakpoints ordered by address.
func (d *Debugger) GetBreakpoints() []*Breakpoint {
	return byAddress(d.breakpoints)
}

// AddBreakpoint sets a breakpoint on 'addr', replacing any breakpoint
// already there.
func (d *Debugger) AddBreakpoint(addr uint16) *Breakpoint {
	b := &Breakpoint{Address: addr}
	d.breakpoints[addr] = b
	return b
}

// RemoveBreakpoint removes the breakpoint on 'addr'.
func (d *Debugger) RemoveBreakpoint(addr uint16) {
	delete(d.breakpoints, addr)
}

// GetDataBreakpoint returns the data breakpoint on 'addr', or nil.
func (d *Debugger) GetDataBreakpoint(addr uint16) *DataBreakpoint {
	return d.dataBreakpoints[addr]
}

// GetDataBreakpoints returns all data breakpoints ordered by address.
func (d *Debugger) GetDataBreakpoints() []*DataBreakpoint {
	return byAddress(d.dataBreakpoints)
}

// AddDataBreakpoint sets a data breakpoint that triggers on any store to
// 'addr'.
func (d *Debugger) AddDataBreakpoint(addr uint16) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr}
	d.dataBreakpoints[addr] = b
	return b
}

// AddConditionalDataBreakpoint sets a data breakpoint that triggers only
// when 'value' is stored to 'addr'.
func (d *Debugger) AddConditionalDataBreakpoint(addr uint16, value byte) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr, Conditional: true, Value: value}
	d.dataBreakpoints[addr] = b
	return b
}

// RemoveDataBreakpoint removes the data breakpoint on 'addr'.
func (d *Debugger) RemoveDataBreakpoint(addr uint16) {
	delete(d.dataBreakpoints, addr)
}

// Called after every consumed opcode, known or not, with the program
// counter already advanced.
func (d *Debugger) onStep(cpu *CPU) {
	b := d.breakpoints[cpu.Reg.PC]
	if b == nil || b.Disabled {
		return
	}
	b.Hits++
	if d.handler != nil {
		d.handler.OnBreakpoint(cpu, b)
	}
}

// Called before a store reaches memory.
func (d *Debugger) onStore(cpu *CPU, s Store) {
	b := d.dataBreakpoints[s.Addr]
	if b == nil || b.Disabled || (b.Conditional && b.Value != s.Value) {
		return
	}
	b.Hits++
	if d.handler != nil {
		d.handler.OnDataBreakpoint(cpu, b, s)
	}
}

func byAddress[T any](m map[uint16]*T) []*T {
	addrs := make([]uint16, 0, len(m))
	for addr := range m {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)

	list := make([]*T, len(addrs))
	for i, addr := range addrs {
		list[i] = m[addr]
	}
	return list
}
