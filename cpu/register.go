// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Flags holds the processor status bits. Each bit is addressed on its
// own; no composite status byte is kept.
type Flags struct {
	Carry            bool // C
	Zero             bool // Z
	InterruptDisable bool // I
	Decimal          bool // D
	Break            bool // B
	Overflow         bool // V
	Negative         bool // N
}

// UpdateNZ updates the Zero and Negative flags based on the value of 'v'.
// Every load instruction updates the flags this way.
func (f *Flags) UpdateNZ(v byte) {
	f.Zero = (v == 0)
	f.Negative = ((v & 0x80) != 0)
}

// String returns the flags as a 7-character mask in CZIDBVN order, with
// '-' in place of each clear bit.
func (f Flags) String() string {
	v := func(bit bool, ch byte) byte {
		if bit {
			return ch
		}
		return '-'
	}
	b := []byte{
		v(f.Carry, 'C'),
		v(f.Zero, 'Z'),
		v(f.InterruptDisable, 'I'),
		v(f.Decimal, 'D'),
		v(f.Break, 'B'),
		v(f.Overflow, 'V'),
		v(f.Negative, 'N'),
	}
	return string(b)
}

// Registers contains the state of all 6502 registers.
type Registers struct {
	A     byte   // accumulator
	X     byte   // X indexing register
	Y     byte   // Y indexing register
	SP    byte   // stack pointer
	PC    uint16 // program counter
	Flags        // processor status bits
}

// Init initializes all registers and flags to zero, including SP.
func (r *Registers) Init() {
	*r = Registers{}
}
