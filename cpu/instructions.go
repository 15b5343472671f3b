// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "strings"

// An opsym is an internal symbol used to associate an opcode's data
// with its instructions.
type opsym byte

const (
	symLDA opsym = iota
	symLDX
	symLDY
	symSTA
	symSTX
	symSTY
)

// An instfunc executes an instruction whose opcode has already been
// fetched and returns the number of cycles it cost.
type instfunc func(c *CPU, inst *Instruction) int

// Emulator implementation for each opcode
type opcodeImpl struct {
	sym  opsym
	name string
	fn   instfunc
}

var impl = []opcodeImpl{
	{symLDA, "LDA", (*CPU).lda},
	{symLDX, "LDX", (*CPU).ldx},
	{symLDY, "LDY", (*CPU).ldy},
	{symSTA, "STA", (*CPU).sta},
	{symSTX, "STX", (*CPU).stx},
	{symSTY, "STY", (*CPU).sty},
}

// Opcode data for an (opcode, mode) pair
type opcodeData struct {
	sym      opsym // internal opcode symbol
	mode     Mode  // addressing mode
	opcode   byte  // opcode hex value
	length   byte  // length of opcode + operand in bytes
	cycles   byte  // number of CPU cycles to execute command
	bpcycles byte  // additional CPU cycles if command crosses page boundary
}

// All valid (opcode, mode) pairs
var data = []opcodeData{
	{symLDA, IMM, 0xa9, 2, 2, 0},
	{symLDA, ZPG, 0xa5, 2, 3, 0},
	{symLDA, ZPX, 0xb5, 2, 4, 0},
	{symLDA, ABS, 0xad, 3, 4, 0},
	{symLDA, ABX, 0xbd, 3, 4, 1},
	{symLDA, ABY, 0xb9, 3, 4, 1},
	{symLDA, IDX, 0xa1, 2, 6, 0},
	{symLDA, IDY, 0xb1, 2, 5, 1},

	{symLDX, IMM, 0xa2, 2, 2, 0},
	{symLDX, ZPG, 0xa6, 2, 3, 0},
	{symLDX, ZPY, 0xb6, 2, 4, 0},
	{symLDX, ABS, 0xae, 3, 4, 0},
	{symLDX, ABY, 0xbe, 3, 4, 1},

	{symLDY, IMM, 0xa0, 2, 2, 0},
	{symLDY, ZPG, 0xa4, 2, 3, 0},
	{symLDY, ZPX, 0xb4, 2, 4, 0},
	{symLDY, ABS, 0xac, 3, 4, 0},
	{symLDY, ABX, 0xbc, 3, 4, 1},

	{symSTA, ZPG, 0x85, 2, 3, 0},
	{symSTA, ZPX, 0x95, 2, 4, 0},
	{symSTA, ABS, 0x8d, 3, 4, 0},
	{symSTA, ABX, 0x9d, 3, 5, 0},
	{symSTA, ABY, 0x99, 3, 5, 0},
	{symSTA, IDX, 0x81, 2, 6, 0},
	{symSTA, IDY, 0x91, 2, 6, 0},

	{symSTX, ZPG, 0x86, 2, 3, 0},
	{symSTX, ZPY, 0x96, 2, 4, 0},
	{symSTX, ABS, 0x8e, 3, 4, 0},

	{symSTY, ZPG, 0x84, 2, 3, 0},
	{symSTY, ZPX, 0x94, 2, 4, 0},
	{symSTY, ABS, 0x8c, 3, 4, 0},
}

// An Instruction describes a CPU instruction, including its name,
// its addressing mode, its opcode value, its operand size, and its CPU cycle
// cost.
type Instruction struct {
	Name     string   // all-caps name of the instruction
	Mode     Mode     // addressing mode
	Opcode   byte     // hexadecimal opcode value
	Length   byte     // combined size of opcode and operand, in bytes
	Cycles   byte     // number of CPU cycles to execute the instruction
	BPCycles byte     // additional cycles required if a page boundary is crossed
	fn       instfunc // emulator implementation of the function
}

// Defined reports whether the opcode has an implementation.
func (inst *Instruction) Defined() bool {
	return inst.fn != nil
}

// An InstructionSet defines the set of all possible instructions that
// can run on the emulated CPU.
type InstructionSet struct {
	instructions [256]Instruction
	variants     map[string][]*Instruction // variants of each instruction
}

// Lookup retrieves a CPU instruction corresponding to the requested opcode.
// Opcodes without an implementation return an instruction whose Defined
// method reports false.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return &s.instructions[opcode]
}

// Variants returns all addressing-mode variants of the named instruction.
func (s *InstructionSet) Variants(name string) []*Instruction {
	return s.variants[strings.ToUpper(name)]
}

// Create an instruction set from the implementation and data tables.
func newInstructionSet() *InstructionSet {
	set := &InstructionSet{}

	// Create a map from symbol to implementation for fast lookups.
	symToImpl := make(map[opsym]*opcodeImpl, len(impl))
	for i := range impl {
		symToImpl[impl[i].sym] = &impl[i]
	}

	// Create a map from instruction name to the slice of all instruction
	// variants matching that name.
	set.variants = make(map[string][]*Instruction)

	for _, d := range data {
		impl := symToImpl[d.sym]
		if int(d.length) != 1+d.mode.OperandLength() {
			panic("instruction length does not match addressing mode")
		}

		inst := &set.instructions[d.opcode]
		if inst.fn != nil {
			panic("duplicate opcode")
		}
		inst.Name = impl.name
		inst.Mode = d.mode
		inst.Opcode = d.opcode
		inst.Length = d.length
		inst.Cycles = d.cycles
		inst.BPCycles = d.bpcycles
		inst.fn = impl.fn

		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
	}

	// Opcodes without an implementation are consumed by the run loop as a
	// single idle cycle.
	for i := range set.instructions {
		inst := &set.instructions[i]
		if inst.fn == nil {
			inst.Name = "???"
			inst.Opcode = byte(i)
			inst.Length = 1
			inst.Cycles = 1
		}
	}
	return set
}

var instructionSet = newInstructionSet()

// GetInstructionSet returns the instruction set executed by the CPU.
func GetInstructionSet() *InstructionSet {
	return instructionSet
}

// Cost of an instruction whose operand has just been resolved.
func (cpu *CPU) cost(inst *Instruction) int {
	c := int(inst.Cycles)
	if cpu.pageCrossed && cpu.pageCrossPenalty {
		c += int(inst.BPCycles)
	}
	return c
}

// load Accumulator
func (cpu *CPU) lda(inst *Instruction) int {
	cpu.Reg.A = cpu.load(inst.Mode)
	cpu.Reg.UpdateNZ(cpu.Reg.A)
	return cpu.cost(inst)
}

// load the X register
func (cpu *CPU) ldx(inst *Instruction) int {
	cpu.Reg.X = cpu.load(inst.Mode)
	cpu.Reg.UpdateNZ(cpu.Reg.X)
	return cpu.cost(inst)
}

// load the Y register
func (cpu *CPU) ldy(inst *Instruction) int {
	cpu.Reg.Y = cpu.load(inst.Mode)
	cpu.Reg.UpdateNZ(cpu.Reg.Y)
	return cpu.cost(inst)
}

// store Accumulator
func (cpu *CPU) sta(inst *Instruction) int {
	cpu.store(inst.Mode, cpu.Reg.A)
	return cpu.cost(inst)
}

// store X register
func (cpu *CPU) stx(inst *Instruction) int {
	cpu.store(inst.Mode, cpu.Reg.X)
	return cpu.cost(inst)
}

// store Y register
func (cpu *CPU) sty(inst *Instruction) int {
	cpu.store(inst.Mode, cpu.Reg.Y)
	return cpu.cost(inst)
}
