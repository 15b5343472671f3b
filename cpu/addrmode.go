// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Mode describes a memory addressing mode.
type Mode byte

// All supported memory addressing modes
const (
	IMM Mode = iota // Immediate
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
)

var modeNames = [...]string{
	IMM: "IMM",
	ZPG: "ZPG",
	ZPX: "ZPX",
	ZPY: "ZPY",
	ABS: "ABS",
	ABX: "ABX",
	ABY: "ABY",
	IDX: "IDX",
	IDY: "IDY",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "???"
}

// OperandLength returns the number of operand bytes that follow the
// opcode for this addressing mode.
func (m Mode) OperandLength() int {
	switch m {
	case ABS, ABX, ABY:
		return 2
	default:
		return 1
	}
}

// Resolve the effective address of the current instruction's operand
// using the requested addressing mode. Exactly OperandLength() bytes are
// fetched from the instruction stream, whatever their values.
//
// For IMM the effective address is the address of the operand byte
// itself.
//
// IDX does not dereference a 16-bit pointer. The byte found at the
// zero-page pointer slot is used directly as an 8-bit effective address.
// This deviates from the 6502, which would read a little-endian pointer
// from the slot and its successor.
func (cpu *CPU) resolve(mode Mode) uint16 {
	switch mode {
	case IMM:
		addr := cpu.Reg.PC
		cpu.FetchByte()
		return addr
	case ZPG:
		return uint16(cpu.FetchByte())
	case ZPX:
		return offsetZeroPage(cpu.FetchByte(), cpu.Reg.X)
	case ZPY:
		return offsetZeroPage(cpu.FetchByte(), cpu.Reg.Y)
	case ABS:
		return cpu.FetchWord()
	case ABX:
		var addr uint16
		addr, cpu.pageCrossed = offsetAddress(cpu.FetchWord(), cpu.Reg.X)
		return addr
	case ABY:
		var addr uint16
		addr, cpu.pageCrossed = offsetAddress(cpu.FetchWord(), cpu.Reg.Y)
		return addr
	case IDX:
		zpaddr := offsetZeroPage(cpu.FetchByte(), cpu.Reg.X)
		return uint16(cpu.Mem.LoadByte(zpaddr))
	case IDY:
		zpaddr := uint16(cpu.FetchByte())
		var addr uint16
		addr, cpu.pageCrossed = offsetAddress(uint16(cpu.Mem.LoadByte(zpaddr)), cpu.Reg.Y)
		return addr
	default:
		panic("Invalid addressing mode")
	}
}

// Load a byte value using the requested addressing mode.
func (cpu *CPU) load(mode Mode) byte {
	if mode == IMM {
		return cpu.FetchByte()
	}
	return cpu.Mem.LoadByte(cpu.resolve(mode))
}

// Store the value 'v' using the requested addressing mode.
func (cpu *CPU) store(mode Mode, v byte) {
	addr := cpu.resolve(mode)
	if cpu.debugger != nil {
		cpu.debugger.onStore(cpu, Store{PC: cpu.LastPC, Addr: addr, Mode: mode, Value: v})
	}
	cpu.Mem.StoreByte(addr, v)
}
