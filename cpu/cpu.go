// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements the execution core of a 6502 CPU: a flat memory
// image, the processor registers and status flags, the addressing-mode
// resolver, and a cycle-budgeted fetch-decode-execute loop.
package cpu

import "github.com/pkg/errors"

// State describes where a CPU is in its lifecycle.
type State byte

// CPU lifecycle states
const (
	Uninitialized State = iota // created, not yet reset
	Reset                      // registers and memory zeroed, ready to run
	Running                    // executing instructions
	Halted                     // the last run exhausted its cycle budget
	Destroyed                  // memory released
)

var stateNames = [...]string{
	Uninitialized: "uninitialized",
	Reset:         "reset",
	Running:       "running",
	Halted:        "halted",
	Destroyed:     "destroyed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// CPU represents a single 6502 CPU. It exclusively owns the memory it
// executes against.
type CPU struct {
	Reg              Registers       // CPU registers
	Mem              *Memory         // memory owned by the CPU
	Cycles           uint64          // total executed CPU cycles
	LastPC           uint16          // address of the last fetched opcode
	InstSet          *InstructionSet // instruction set used by the CPU
	state            State
	strictOpcodes    bool
	pageCrossPenalty bool
	pageCrossed      bool
	debugger         *Debugger
}

// NewCPU creates an emulated 6502 CPU with 'memSize' bytes of memory.
// Registers, flags and memory are not defined until Reset is called.
func NewCPU(memSize int, opts ...Option) *CPU {
	cpu := &CPU{
		Mem:     NewMemory(memSize),
		InstSet: GetInstructionSet(),
		state:   Uninitialized,
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// State returns the CPU's lifecycle state.
func (cpu *CPU) State() State {
	return cpu.state
}

// Reset zeroes all registers, flags and memory. The program counter is
// set to 0.
func (cpu *CPU) Reset() {
	if cpu.state == Destroyed {
		return
	}
	cpu.Reg.Init()
	cpu.Mem.Clear()
	cpu.Cycles = 0
	cpu.LastPC = 0
	cpu.state = Reset
}

// Destroy releases the CPU's memory. A destroyed CPU refuses to run.
func (cpu *CPU) Destroy() {
	cpu.Mem = nil
	cpu.debugger = nil
	cpu.state = Destroyed
}

// SetPC updates the CPU program counter to 'addr'.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
}

// SetStrictOpcodes changes the unknown-opcode policy. See
// WithStrictOpcodes.
func (cpu *CPU) SetStrictOpcodes(strict bool) {
	cpu.strictOpcodes = strict
}

// SetPageCrossPenalty changes the page-crossing cycle policy. See
// WithPageCrossPenalty.
func (cpu *CPU) SetPageCrossPenalty(penalty bool) {
	cpu.pageCrossPenalty = penalty
}

// StrictOpcodes reports whether unknown opcodes are treated as errors.
func (cpu *CPU) StrictOpcodes() bool {
	return cpu.strictOpcodes
}

// PageCrossPenalty reports whether page-crossing loads cost an extra cycle.
func (cpu *CPU) PageCrossPenalty() bool {
	return cpu.pageCrossPenalty
}

// FetchByte loads the byte at the program counter and advances the program
// counter by one.
func (cpu *CPU) FetchByte() byte {
	v := cpu.Mem.LoadByte(cpu.Reg.PC)
	cpu.Reg.PC++
	return v
}

// FetchWord loads the little-endian word at the program counter and
// advances the program counter by two.
func (cpu *CPU) FetchWord() uint16 {
	lo := cpu.FetchByte()
	hi := cpu.FetchByte()
	return uint16(hi)<<8 | uint16(lo)
}

// GetInstruction returns the instruction whose opcode is at the requested
// address.
func (cpu *CPU) GetInstruction(addr uint16) *Instruction {
	opcode := cpu.Mem.LoadByte(addr)
	return cpu.InstSet.Lookup(opcode)
}

// Fetch and execute one instruction. 'cycles' is the cost of the
// instruction. An unknown opcode returns 'ok' as false and costs nothing;
// the caller decides what it is worth. The attached debugger sees the new
// program counter in both cases.
func (cpu *CPU) execute() (cycles int, ok bool, err error) {
	cpu.LastPC = cpu.Reg.PC
	opcode := cpu.FetchByte()

	inst := cpu.InstSet.Lookup(opcode)
	if inst.fn != nil {
		cpu.pageCrossed = false
		cycles, ok = inst.fn(cpu, inst), true
		cpu.Cycles += uint64(cycles)
	} else if cpu.strictOpcodes {
		return 0, false, errors.WithStack(&OpcodeError{Opcode: opcode, Addr: cpu.LastPC})
	}

	if cpu.debugger != nil {
		cpu.debugger.onStep(cpu)
	}
	return cycles, ok, nil
}

// Run executes instructions until the cycle budget is spent and returns the
// number of cycles consumed by the instructions it executed.
//
// An instruction that has started always completes, even when it costs more
// than the remaining budget, so the returned count may exceed 'budget' by
// up to one instruction. A budget of zero or less executes nothing.
//
// An unknown opcode spends one cycle of the budget and changes no register
// other than the program counter. It is not counted in the returned total.
// With strict opcodes Run stops at the unknown opcode and returns an error
// along with the cycles completed before it.
func (cpu *CPU) Run(budget int) (int, error) {
	if cpu.state == Destroyed {
		return 0, ErrDestroyed
	}

	cpu.state = Running
	remaining, completed := budget, 0
	for remaining > 0 {
		cycles, ok, err := cpu.execute()
		if err != nil {
			cpu.state = Halted
			return completed, err
		}
		if !ok {
			remaining--
			continue
		}
		completed += cycles
		remaining -= cycles
	}
	cpu.state = Halted
	return completed, nil
}

// Step executes a single instruction and returns its cycle cost. An unknown
// opcode is reported as one idle cycle.
func (cpu *CPU) Step() (int, error) {
	if cpu.state == Destroyed {
		return 0, ErrDestroyed
	}

	cycles, ok, err := cpu.execute()
	switch {
	case err != nil:
		return 0, err
	case !ok:
		return 1, nil
	default:
		return cycles, nil
	}
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU executes an instruction or stores a byte
// to memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
}

// DetachDebugger detaches the currently attached debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
}
