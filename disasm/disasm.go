// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a disassembler for the instructions executed
// by the cpu package.
package disasm

import (
	"fmt"

	"github.com/beevik/core6502/cpu"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	cpu.IMM: "#$%s",
	cpu.ZPG: "$%s",
	cpu.ZPX: "$%s,X",
	cpu.ZPY: "$%s,Y",
	cpu.ABS: "$%s",
	cpu.ABX: "$%s,X",
	cpu.ABY: "$%s,Y",
	cpu.IDX: "($%s,X)",
	cpu.IDY: "($%s),Y",
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the little-endian byte
// slice, most significant byte first.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Read 'n' bytes starting at 'addr' the way the CPU fetches them: the
// address wraps from $FFFF to $0000, and bytes lying beyond the end of a
// smaller memory read as zero.
func fetch(m *cpu.Memory, addr uint16, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		if a := addr + uint16(i); int(a) < m.Size() {
			b[i] = m.LoadByte(a)
		}
	}
	return b
}

// Disassemble the machine code in memory 'm' at address 'addr'. Return a
// 'line' string representing the disassembled instruction and a 'next'
// address that starts the following line of machine code.
//
// Opcodes the CPU does not implement are rendered as a single data byte.
// Operands are read with the CPU's program counter wraparound.
func Disassemble(m *cpu.Memory, addr uint16) (line string, next uint16) {
	code := Bytes(m, addr)
	inst := cpu.GetInstructionSet().Lookup(code[0])
	if !inst.Defined() {
		return fmt.Sprintf(".DB $%02X", code[0]), addr + 1
	}

	format := "%s " + modeFormat[inst.Mode]
	line = fmt.Sprintf(format, inst.Name, hexString(code[1:]))
	next = addr + uint16(inst.Length)
	return
}

// Bytes returns the machine code of the instruction at 'addr', as it would
// be consumed by the CPU.
func Bytes(m *cpu.Memory, addr uint16) []byte {
	opcode := fetch(m, addr, 1)[0]
	inst := cpu.GetInstructionSet().Lookup(opcode)
	return fetch(m, addr, int(inst.Length))
}

// RegisterString returns a string describing the contents of the 6502
// registers and status flags.
func RegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=[%s] SP=%02X PC=%04X",
		r.A, r.X, r.Y, r.Flags, r.SP, r.PC)
}
