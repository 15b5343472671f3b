// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// An Option configures a CPU when it is created.
type Option func(cpu *CPU)

// WithStrictOpcodes makes Run and Step fail with an *OpcodeError when they
// fetch an opcode that has no implementation. By default such an opcode
// is consumed as a single idle cycle.
func WithStrictOpcodes(strict bool) Option {
	return func(cpu *CPU) {
		cpu.strictOpcodes = strict
	}
}

// WithPageCrossPenalty charges the extra cycle a 6502 spends when an
// indexed load's effective address lands on a different page than its base
// address. It applies to the Absolute,X, Absolute,Y and (Indirect),Y
// loads. By default no penalty is charged.
func WithPageCrossPenalty(penalty bool) Option {
	return func(cpu *CPU) {
		cpu.pageCrossPenalty = penalty
	}
}
