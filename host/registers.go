// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strings"

	"github.com/beevik/core6502/cpu"
	"github.com/beevik/prefixtree/v2"
)

// A register describes a CPU register or status flag that can be viewed
// and changed from the command line.
type register struct {
	name string
	size int // 0 for a status flag, otherwise the register size in bytes
	get  func(r *cpu.Registers) int64
	set  func(r *cpu.Registers, v int64)
}

func flagRegister(name string, flag func(r *cpu.Registers) *bool) *register {
	return &register{
		name: name,
		get: func(r *cpu.Registers) int64 {
			if *flag(r) {
				return 1
			}
			return 0
		},
		set: func(r *cpu.Registers, v int64) { *flag(r) = v != 0 },
	}
}

var registers = []*register{
	{
		name: "A", size: 1,
		get: func(r *cpu.Registers) int64 { return int64(r.A) },
		set: func(r *cpu.Registers, v int64) { r.A = byte(v) },
	},
	{
		name: "X", size: 1,
		get: func(r *cpu.Registers) int64 { return int64(r.X) },
		set: func(r *cpu.Registers, v int64) { r.X = byte(v) },
	},
	{
		name: "Y", size: 1,
		get: func(r *cpu.Registers) int64 { return int64(r.Y) },
		set: func(r *cpu.Registers, v int64) { r.Y = byte(v) },
	},
	{
		name: "SP", size: 1,
		get: func(r *cpu.Registers) int64 { return int64(r.SP) },
		set: func(r *cpu.Registers, v int64) { r.SP = byte(v) },
	},
	{
		name: "PC", size: 2,
		get: func(r *cpu.Registers) int64 { return int64(r.PC) },
		set: func(r *cpu.Registers, v int64) { r.PC = uint16(v) },
	},
	flagRegister("Carry", func(r *cpu.Registers) *bool { return &r.Carry }),
	flagRegister("Zero", func(r *cpu.Registers) *bool { return &r.Zero }),
	flagRegister("Interrupt", func(r *cpu.Registers) *bool { return &r.InterruptDisable }),
	flagRegister("Decimal", func(r *cpu.Registers) *bool { return &r.Decimal }),
	flagRegister("Break", func(r *cpu.Registers) *bool { return &r.Break }),
	flagRegister("Overflow", func(r *cpu.Registers) *bool { return &r.Overflow }),
	flagRegister("Negative", func(r *cpu.Registers) *bool { return &r.Negative }),
}

var registerTree = prefixtree.New[*register]()

func init() {
	for _, r := range registers {
		registerTree.Add(strings.ToLower(r.name), r)
	}
}

// Find the register or status flag whose name has the unique prefix
// 'name'.
func lookupRegister(name string) (*register, error) {
	return registerTree.FindValue(strings.ToLower(name))
}
