package cpu_test

import (
	"errors"
	"testing"

	"github.com/beevik/core6502/cpu"
)

func loadCPU(t *testing.T, memSize int, code []byte, opts ...cpu.Option) *cpu.CPU {
	t.Helper()
	c := cpu.NewCPU(memSize, opts...)
	c.Reset()
	c.Mem.StoreBytes(0, code)
	return c
}

func stepCPU(t *testing.T, c *cpu.CPU, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func expectPC(t *testing.T, c *cpu.CPU, pc uint16) {
	t.Helper()
	if c.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, c.Reg.PC)
	}
}

func expectCycles(t *testing.T, c *cpu.CPU, cycles uint64) {
	t.Helper()
	if c.Cycles != cycles {
		t.Errorf("Cycles incorrect. exp: %d, got: %d", cycles, c.Cycles)
	}
}

func expectRun(t *testing.T, got, exp int, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != exp {
		t.Errorf("Run cycles incorrect. exp: %d, got: %d", exp, got)
	}
}

func expectACC(t *testing.T, c *cpu.CPU, acc byte) {
	t.Helper()
	if c.Reg.A != acc {
		t.Errorf("Accumulator incorrect. exp: $%02X, got: $%02X", acc, c.Reg.A)
	}
}

func expectX(t *testing.T, c *cpu.CPU, x byte) {
	t.Helper()
	if c.Reg.X != x {
		t.Errorf("X register incorrect. exp: $%02X, got: $%02X", x, c.Reg.X)
	}
}

func expectY(t *testing.T, c *cpu.CPU, y byte) {
	t.Helper()
	if c.Reg.Y != y {
		t.Errorf("Y register incorrect. exp: $%02X, got: $%02X", y, c.Reg.Y)
	}
}

func expectNZ(t *testing.T, c *cpu.CPU, zero, negative bool) {
	t.Helper()
	if c.Reg.Zero != zero || c.Reg.Negative != negative {
		t.Errorf("Flags incorrect. exp: Z=%v N=%v, got: Z=%v N=%v",
			zero, negative, c.Reg.Zero, c.Reg.Negative)
	}
}

func expectMem(t *testing.T, c *cpu.CPU, addr uint16, v byte) {
	t.Helper()
	got := c.Mem.LoadByte(addr)
	if got != v {
		t.Errorf("Memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

func TestEndToEnd(t *testing.T) {
	c := cpu.NewCPU(32)
	c.Reset()
	c.Mem.StoreByte(0, 0xa9)
	c.Mem.StoreByte(1, 0x69)

	n, err := c.Run(1)
	expectRun(t, n, 2, err)
	expectACC(t, c, 0x69)
	expectNZ(t, c, false, false)
	expectPC(t, c, 0x0002)
}

func TestReset(t *testing.T) {
	for _, size := range []int{0, 1, 2, 32, 256, 4096, 65536} {
		c := cpu.NewCPU(size)
		if c.State() != cpu.Uninitialized {
			t.Errorf("size %d: state before reset is %v", size, c.State())
		}
		for i := 0; i < size; i++ {
			c.Mem.StoreByte(uint16(i), byte(i)|0x01)
		}
		c.Reg = cpu.Registers{
			A: 1, X: 2, Y: 3, SP: 4, PC: 5,
			Flags: cpu.Flags{
				Carry: true, Zero: true, InterruptDisable: true, Decimal: true,
				Break: true, Overflow: true, Negative: true,
			},
		}

		c.Reset()

		if c.Reg != (cpu.Registers{}) {
			t.Errorf("size %d: registers not zeroed: %+v", size, c.Reg)
		}
		for i := 0; i < size; i++ {
			if v := c.Mem.LoadByte(uint16(i)); v != 0 {
				t.Errorf("size %d: memory at $%04X not zeroed: $%02X", size, i, v)
				break
			}
		}
		if c.State() != cpu.Reset {
			t.Errorf("size %d: state after reset is %v", size, c.State())
		}
	}
}

func TestImmediateLoad(t *testing.T) {
	for _, opcode := range []byte{0xa9, 0xa2, 0xa0} {
		for _, start := range []uint16{0x0000, 0x0010, 0x00fd} {
			c := loadCPU(t, 256, nil)
			c.Mem.StoreBytes(start, []byte{opcode, 0x40})
			c.SetPC(start)

			n, err := c.Run(1)
			expectRun(t, n, 2, err)
			expectPC(t, c, start+2)
		}
	}
}

func TestLoadFlags(t *testing.T) {
	loads := []struct {
		name string
		code []byte
		reg  func(c *cpu.CPU) byte
	}{
		{"LDA #", []byte{0xa9, 0x00}, func(c *cpu.CPU) byte { return c.Reg.A }},
		{"LDX #", []byte{0xa2, 0x00}, func(c *cpu.CPU) byte { return c.Reg.X }},
		{"LDY #", []byte{0xa0, 0x00}, func(c *cpu.CPU) byte { return c.Reg.Y }},
		{"LDA zp", []byte{0xa5, 0x10}, func(c *cpu.CPU) byte { return c.Reg.A }},
		{"LDX abs", []byte{0xae, 0x10, 0x00}, func(c *cpu.CPU) byte { return c.Reg.X }},
	}

	for _, l := range loads {
		t.Run(l.name, func(t *testing.T) {
			for v := 0; v < 256; v++ {
				c := loadCPU(t, 32, l.code)
				if l.code[0] == 0xa9 || l.code[0] == 0xa2 || l.code[0] == 0xa0 {
					c.Mem.StoreByte(1, byte(v))
				} else {
					c.Mem.StoreByte(0x10, byte(v))
				}

				// Start with the opposite of what the load should produce.
				c.Reg.Zero = v != 0
				c.Reg.Negative = int8(v) >= 0

				stepCPU(t, c, 1)

				if got := l.reg(c); got != byte(v) {
					t.Fatalf("value $%02X loaded as $%02X", v, got)
				}
				if c.Reg.Zero != (v == 0) || c.Reg.Negative != (int8(v) < 0) {
					t.Fatalf("value $%02X: Z=%v N=%v", v, c.Reg.Zero, c.Reg.Negative)
				}
				if c.Reg.Zero && c.Reg.Negative {
					t.Fatalf("value $%02X: Z and N both set", v)
				}
			}
		})
	}
}

func TestLoadLeavesOtherFlags(t *testing.T) {
	c := loadCPU(t, 32, []byte{0xa9, 0x80})
	c.Reg.Carry = true
	c.Reg.Overflow = true
	c.Reg.Decimal = true

	stepCPU(t, c, 1)

	if !c.Reg.Carry || !c.Reg.Overflow || !c.Reg.Decimal || c.Reg.InterruptDisable || c.Reg.Break {
		t.Errorf("load changed unrelated flags: %s", c.Reg.Flags)
	}
}

func TestZeroPage(t *testing.T) {
	c := loadCPU(t, 256, []byte{
		0xa5, 0x80, // LDA $80
		0xa6, 0x81, // LDX $81
		0xa4, 0x82, // LDY $82
	})
	c.Mem.StoreBytes(0x80, []byte{0x11, 0x22, 0x33})

	n, err := c.Run(9)
	expectRun(t, n, 9, err)
	expectACC(t, c, 0x11)
	expectX(t, c, 0x22)
	expectY(t, c, 0x33)
	expectPC(t, c, 0x0006)
}

func TestZeroPageXWrap(t *testing.T) {
	c := loadCPU(t, 512, []byte{
		0xa2, 0xe8, // LDX #232
		0xb5, 0x60, // LDA $60,X
	})
	c.Mem.StoreByte(72, 0x5a)
	c.Mem.StoreByte(328, 0xa5)

	n, err := c.Run(6)
	expectRun(t, n, 6, err)
	expectACC(t, c, 0x5a)
	expectPC(t, c, 0x0004)
}

func TestZeroPageYWrap(t *testing.T) {
	c := loadCPU(t, 512, []byte{
		0xa0, 0xf0, // LDY #$F0
		0xb6, 0x20, // LDX $20,Y
	})
	c.Mem.StoreByte(0x10, 0x77)
	c.Mem.StoreByte(0x110, 0x88)

	n, err := c.Run(6)
	expectRun(t, n, 6, err)
	expectX(t, c, 0x77)
}

func TestAbsolute(t *testing.T) {
	c := loadCPU(t, 0x10000, []byte{
		0xad, 0x34, 0x12, // LDA $1234
		0xae, 0x35, 0x12, // LDX $1235
		0xac, 0x36, 0x12, // LDY $1236
	})
	c.Mem.StoreBytes(0x1234, []byte{0x80, 0x00, 0x7f})

	n, err := c.Run(4)
	expectRun(t, n, 4, err)
	expectACC(t, c, 0x80)
	expectNZ(t, c, false, true)
	expectPC(t, c, 0x0003)

	n, err = c.Run(4)
	expectRun(t, n, 4, err)
	expectX(t, c, 0x00)
	expectNZ(t, c, true, false)

	n, err = c.Run(4)
	expectRun(t, n, 4, err)
	expectY(t, c, 0x7f)
	expectNZ(t, c, false, false)
	expectPC(t, c, 0x0009)
	expectCycles(t, c, 12)
}

func TestAbsoluteIndexed(t *testing.T) {
	c := loadCPU(t, 0x10000, []byte{
		0xa2, 0x10, // LDX #$10
		0xbd, 0xf8, 0x20, // LDA $20F8,X
		0xa0, 0x20, // LDY #$20
		0xbe, 0xf0, 0x30, // LDX $30F0,Y
		0xbc, 0x00, 0x40, // LDY $4000,X
	})
	c.Mem.StoreByte(0x2108, 0x42)
	c.Mem.StoreByte(0x3110, 0x05)
	c.Mem.StoreByte(0x4005, 0x99)

	n, err := c.Run(16)
	expectRun(t, n, 16, err)
	expectACC(t, c, 0x42)
	expectX(t, c, 0x05)
	expectY(t, c, 0x99)
}

func TestAbsoluteIndexedWrap(t *testing.T) {
	c := loadCPU(t, 0x10000, []byte{
		0xa0, 0x02, // LDY #$02
		0xb9, 0xff, 0xff, // LDA $FFFF,Y
	})

	n, err := c.Run(6)
	expectRun(t, n, 6, err)

	// $FFFF + 2 wraps to $0001, the LDY operand.
	expectACC(t, c, 0x02)
}

func TestIndirectIndexed(t *testing.T) {
	c := loadCPU(t, 256, []byte{
		0xa0, 0x28, // LDY #40
		0xb1, 0x18, // LDA ($18),Y
	})
	c.Mem.StoreByte(24, 88)
	c.Mem.StoreByte(128, 0x3c)

	n, err := c.Run(7)
	expectRun(t, n, 7, err)
	expectACC(t, c, 0x3c)
	expectPC(t, c, 0x0004)
}

func TestIndexedIndirect(t *testing.T) {
	c := loadCPU(t, 0x10000, []byte{
		0xa2, 0x04, // LDX #$04
		0xa1, 0x10, // LDA ($10,X)
		0xa2, 0x20, // LDX #$20
		0xa1, 0xf0, // LDA ($F0,X)
	})

	// The pointer slot is read as a single byte that is used directly as
	// the effective address. The byte after the slot is ignored.
	c.Mem.StoreBytes(0x14, []byte{0x80, 0x12})
	c.Mem.StoreByte(0x80, 0x3c)
	c.Mem.StoreByte(0x1280, 0xff)

	n, err := c.Run(8)
	expectRun(t, n, 8, err)
	expectACC(t, c, 0x3c)

	// Slot address wraps within the zero page: $F0 + $20 = $10.
	c.Mem.StoreByte(0x10, 0x90)
	c.Mem.StoreByte(0x90, 0x66)
	n, err = c.Run(8)
	expectRun(t, n, 8, err)
	expectACC(t, c, 0x66)
}

func TestBudgetOvershoot(t *testing.T) {
	tests := []struct {
		code   []byte
		cycles int
	}{
		{[]byte{0xa9, 0x01}, 2},
		{[]byte{0xa5, 0x01}, 3},
		{[]byte{0xb5, 0x01}, 4},
		{[]byte{0xad, 0x01, 0x00}, 4},
		{[]byte{0xbd, 0x01, 0x00}, 4},
		{[]byte{0xb9, 0x01, 0x00}, 4},
		{[]byte{0xa1, 0x01}, 6},
		{[]byte{0xb1, 0x01}, 5},
		{[]byte{0xa2, 0x01}, 2},
		{[]byte{0xa6, 0x01}, 3},
		{[]byte{0xb6, 0x01}, 4},
		{[]byte{0xae, 0x01, 0x00}, 4},
		{[]byte{0xbe, 0x01, 0x00}, 4},
		{[]byte{0x8d, 0x10, 0x00}, 4},
		{[]byte{0x81, 0x10}, 6},
	}

	for _, tt := range tests {
		c := loadCPU(t, 32, tt.code)
		n, err := c.Run(1)
		expectRun(t, n, tt.cycles, err)
		expectPC(t, c, uint16(len(tt.code)))
		if c.State() != cpu.Halted {
			t.Errorf("opcode $%02X: state after run is %v", tt.code[0], c.State())
		}
	}
}

func TestRunBudget(t *testing.T) {
	c := loadCPU(t, 32, []byte{
		0xa9, 0x01, // LDA #$01  2 cycles
		0xa5, 0x00, // LDA $00   3 cycles
		0xa9, 0x03, // LDA #$03  2 cycles
	})

	// 2 + 3 = 5 reaches the budget exactly; the third load does not run.
	n, err := c.Run(5)
	expectRun(t, n, 5, err)
	expectACC(t, c, 0xa9)
	expectPC(t, c, 0x0004)

	// A budget of zero or less executes nothing.
	for _, budget := range []int{0, -3} {
		n, err = c.Run(budget)
		expectRun(t, n, 0, err)
		expectPC(t, c, 0x0004)
	}
}

func TestUnknownOpcode(t *testing.T) {
	c := loadCPU(t, 32, []byte{
		0x02,       // unknown
		0xff,       // unknown
		0xa9, 0x07, // LDA #$07
	})

	// Each unknown opcode spends one cycle of the budget but is not
	// counted in the result.
	n, err := c.Run(4)
	expectRun(t, n, 2, err)
	expectACC(t, c, 0x07)
	expectPC(t, c, 0x0004)
	expectCycles(t, c, 2)

	c = loadCPU(t, 32, nil)
	n, err = c.Run(5)
	expectRun(t, n, 0, err)
	expectPC(t, c, 0x0005)
	if c.Reg.A != 0 || c.Reg.X != 0 || c.Reg.Y != 0 || c.Reg.SP != 0 || c.Reg.Flags != (cpu.Flags{}) {
		t.Errorf("unknown opcodes changed registers: %+v", c.Reg)
	}

	n, err = c.Step()
	expectRun(t, n, 1, err)
	expectPC(t, c, 0x0006)
}

func TestStrictOpcodes(t *testing.T) {
	c := loadCPU(t, 32, []byte{
		0xa9, 0x01, // LDA #$01
		0xff, // unknown
		0xa9, 0x02, // LDA #$02
	}, cpu.WithStrictOpcodes(true))

	n, err := c.Run(10)
	if n != 2 {
		t.Errorf("Run cycles incorrect. exp: 2, got: %d", n)
	}
	if !errors.Is(err, cpu.ErrUnknownOpcode) {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
	var oe *cpu.OpcodeError
	if !errors.As(err, &oe) {
		t.Fatalf("expected *OpcodeError, got %T", err)
	}
	if oe.Opcode != 0xff || oe.Addr != 0x0002 {
		t.Errorf("OpcodeError incorrect: %v", oe)
	}
	expectACC(t, c, 0x01)

	// Switching back to the lenient policy continues past the opcode.
	c.SetStrictOpcodes(false)
	n, err = c.Run(2)
	expectRun(t, n, 2, err)
	expectACC(t, c, 0x02)

	c.SetStrictOpcodes(true)
	_, err = c.Step()
	if !errors.Is(err, cpu.ErrUnknownOpcode) {
		t.Errorf("Step: expected ErrUnknownOpcode, got %v", err)
	}
}

func TestPageCrossPenalty(t *testing.T) {
	code := []byte{
		0xa2, 0xff, // LDX #$FF
		0xbd, 0x02, 0x10, // LDA $1002,X  (page crossed)
		0xbd, 0x00, 0x10, // LDA $1000,X  (no page crossed)
	}

	c := loadCPU(t, 0x10000, code)
	stepCPU(t, c, 3)
	expectCycles(t, c, 10)

	c = loadCPU(t, 0x10000, code, cpu.WithPageCrossPenalty(true))
	stepCPU(t, c, 3)
	expectCycles(t, c, 11)

	// (Indirect),Y crosses when pointer + Y leaves page zero.
	c = loadCPU(t, 0x10000, []byte{
		0xa0, 0x20, // LDY #$20
		0xb1, 0x10, // LDA ($10),Y
	}, cpu.WithPageCrossPenalty(true))
	c.Mem.StoreByte(0x10, 0xf0)
	c.Mem.StoreByte(0x110, 0x6d)
	stepCPU(t, c, 2)
	expectCycles(t, c, 8)
	expectACC(t, c, 0x6d)

	// Stores never pay the penalty.
	c = loadCPU(t, 0x10000, []byte{
		0xa0, 0xff, // LDY #$FF
		0x99, 0x02, 0x10, // STA $1002,Y
	}, cpu.WithPageCrossPenalty(true))
	stepCPU(t, c, 2)
	expectCycles(t, c, 7)
}

func TestStore(t *testing.T) {
	c := loadCPU(t, 0x10000, []byte{
		0xa9, 0x5e, // LDA #$5E
		0x85, 0x15, // STA $15
		0x8d, 0x00, 0x15, // STA $1500
		0xa2, 0x21, // LDX #$21
		0x86, 0x16, // STX $16
		0xa0, 0x00, // LDY #$00
		0x8c, 0x01, 0x15, // STY $1501
	})
	c.Mem.StoreByte(0x1501, 0xff)

	stepCPU(t, c, 7)
	expectPC(t, c, 0x0010)
	expectCycles(t, c, 2+3+4+2+3+2+4)
	expectMem(t, c, 0x15, 0x5e)
	expectMem(t, c, 0x1500, 0x5e)
	expectMem(t, c, 0x16, 0x21)
	expectMem(t, c, 0x1501, 0x00)

	// Stores leave the flags set by the last load.
	expectNZ(t, c, true, false)
}

func TestStoreIndexed(t *testing.T) {
	c := loadCPU(t, 0x10000, []byte{
		0xa2, 0x80, // LDX #$80
		0xa0, 0x40, // LDY #$40
		0xa9, 0xee, // LDA #$EE
		0x9d, 0x00, 0x20, // STA $2000,X
		0x99, 0x00, 0x20, // STA $2000,Y
		0x95, 0xa0, // STA $A0,X
		0x96, 0xf0, // STX $F0,Y
		0x94, 0x20, // STY $20,X
		0x81, 0x00, // STA ($00,X)
		0x91, 0x81, // STA ($81),Y
	})
	c.Mem.StoreByte(0x80, 0x60)
	c.Mem.StoreByte(0x81, 0x50)

	stepCPU(t, c, 10)
	expectMem(t, c, 0x2080, 0xee)
	expectMem(t, c, 0x2040, 0xee)
	expectMem(t, c, 0x20, 0xee)
	expectMem(t, c, 0x30, 0x80)
	expectMem(t, c, 0xa0, 0x40)
	expectMem(t, c, 0x60, 0xee)
	expectMem(t, c, 0x90, 0xee)
	expectCycles(t, c, 2+2+2+5+5+4+4+4+6+6)
}

func TestOperandLength(t *testing.T) {
	set := cpu.GetInstructionSet()
	for op := 0; op < 256; op++ {
		inst := set.Lookup(byte(op))
		if !inst.Defined() {
			continue
		}

		// Fill memory so every pointer and operand is $FF.
		c := cpu.NewCPU(0x10000)
		c.Reset()
		for a := 0; a < 0x10000; a++ {
			c.Mem.StoreByte(uint16(a), 0xff)
		}
		c.Mem.StoreByte(0x1000, byte(op))
		c.SetPC(0x1000)
		c.Reg.X, c.Reg.Y = 0xff, 0xff

		n, err := c.Step()
		expectRun(t, n, int(inst.Cycles), err)
		expectPC(t, c, 0x1000+uint16(inst.Length))
	}
}

func TestInstructionSet(t *testing.T) {
	set := cpu.GetInstructionSet()

	variants := map[string]int{"LDA": 8, "LDX": 5, "LDY": 5, "STA": 7, "STX": 3, "STY": 3}
	for name, count := range variants {
		if got := len(set.Variants(name)); got != count {
			t.Errorf("%s variants incorrect. exp: %d, got: %d", name, count, got)
		}
	}
	if got := len(set.Variants("lda")); got != 8 {
		t.Errorf("lowercase lookup returned %d variants", got)
	}

	inst := set.Lookup(0xa9)
	if inst.Name != "LDA" || inst.Mode != cpu.IMM || inst.Length != 2 || inst.Cycles != 2 {
		t.Errorf("LDA immediate incorrect: %+v", *inst)
	}
	if inst := set.Lookup(0x02); inst.Defined() || inst.Length != 1 {
		t.Errorf("opcode $02 should be undefined with length 1: %+v", *inst)
	}
}

func TestDestroy(t *testing.T) {
	c := loadCPU(t, 32, []byte{0xa9, 0x01})
	c.Destroy()

	if c.State() != cpu.Destroyed {
		t.Errorf("state after destroy is %v", c.State())
	}
	if _, err := c.Run(10); !errors.Is(err, cpu.ErrDestroyed) {
		t.Errorf("Run after destroy: expected ErrDestroyed, got %v", err)
	}
	if _, err := c.Step(); !errors.Is(err, cpu.ErrDestroyed) {
		t.Errorf("Step after destroy: expected ErrDestroyed, got %v", err)
	}
}

func TestFetch(t *testing.T) {
	c := loadCPU(t, 32, []byte{0x34, 0x12, 0x56})
	if w := c.FetchWord(); w != 0x1234 {
		t.Errorf("FetchWord incorrect. exp: $1234, got: $%04X", w)
	}
	if b := c.FetchByte(); b != 0x56 {
		t.Errorf("FetchByte incorrect. exp: $56, got: $%02X", b)
	}
	expectPC(t, c, 0x0003)
}

func TestFlagsString(t *testing.T) {
	f := cpu.Flags{Carry: true, Zero: true, Negative: true}
	if s := f.String(); s != "CZ----N" {
		t.Errorf("flags string incorrect: %q", s)
	}
	if s := (cpu.Flags{}).String(); s != "-------" {
		t.Errorf("flags string incorrect: %q", s)
	}
}

type recorder struct {
	pcs    []uint16
	datas  []uint16
	stores []cpu.Store
}

func (r *recorder) OnBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	r.pcs = append(r.pcs, b.Address)
}

func (r *recorder) OnDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint, s cpu.Store) {
	r.datas = append(r.datas, b.Address)
	r.stores = append(r.stores, s)
}

func TestDebugger(t *testing.T) {
	c := loadCPU(t, 256, []byte{
		0xa9, 0x01, // LDA #$01
		0x85, 0x40, // STA $40
		0xa9, 0x02, // LDA #$02
		0x85, 0x41, // STA $41
		0x85, 0x40, // STA $40
	})

	r := &recorder{}
	d := cpu.NewDebugger(r)
	d.AddBreakpoint(0x0004)
	d.AddBreakpoint(0x0008).Disabled = true
	d.AddDataBreakpoint(0x0040)
	d.AddConditionalDataBreakpoint(0x0041, 0x05)
	c.AttachDebugger(d)

	n, err := c.Run(13)
	expectRun(t, n, 13, err)

	if len(r.pcs) != 1 || r.pcs[0] != 0x0004 {
		t.Errorf("breakpoints hit incorrect: %v", r.pcs)
	}
	if len(r.datas) != 2 || r.datas[0] != 0x0040 || r.datas[1] != 0x0040 {
		t.Errorf("data breakpoints hit incorrect: %v", r.datas)
	}

	bps := d.GetBreakpoints()
	if len(bps) != 2 || bps[0].Address != 0x0004 || bps[1].Address != 0x0008 {
		t.Errorf("breakpoint list incorrect")
	}
	if bps[0].Hits != 1 || bps[1].Hits != 0 {
		t.Errorf("breakpoint hits incorrect: %d %d", bps[0].Hits, bps[1].Hits)
	}
	if b := d.GetDataBreakpoint(0x0041); b.Hits != 0 {
		t.Errorf("conditional data breakpoint hit for wrong value")
	}
	d.RemoveBreakpoint(0x0004)
	if d.GetBreakpoint(0x0004) != nil {
		t.Errorf("breakpoint not removed")
	}

	c.DetachDebugger()
	c.SetPC(0)
	stepCPU(t, c, 2)
	if len(r.datas) != 2 {
		t.Errorf("detached debugger still notified")
	}
}

func TestDebuggerIdleCycle(t *testing.T) {
	c := loadCPU(t, 256, []byte{
		0x02,       // unknown
		0xa9, 0x01, // LDA #$01
	})

	r := &recorder{}
	d := cpu.NewDebugger(r)
	d.AddBreakpoint(0x0001)
	c.AttachDebugger(d)

	n, err := c.Run(3)
	expectRun(t, n, 2, err)
	expectPC(t, c, 0x0003)

	if len(r.pcs) != 1 || r.pcs[0] != 0x0001 {
		t.Errorf("breakpoint after unknown opcode not hit: %v", r.pcs)
	}

	// Stepping reports the idle cycle the same way.
	c.SetPC(0)
	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if len(r.pcs) != 2 {
		t.Errorf("breakpoint after stepped unknown opcode not hit: %v", r.pcs)
	}

	// A strict CPU fails on the opcode and never reaches the breakpoint.
	c.SetStrictOpcodes(true)
	c.SetPC(0)
	if _, err := c.Run(3); err == nil {
		t.Errorf("expected an unknown opcode error")
	}
	if len(r.pcs) != 2 {
		t.Errorf("breakpoint hit after strict failure: %v", r.pcs)
	}
}

func TestDebuggerStore(t *testing.T) {
	c := loadCPU(t, 0x10000, []byte{
		0xa2, 0x04,       // LDX #$04
		0xa9, 0x77,       // LDA #$77
		0x9d, 0x00, 0x20, // STA $2000,X
		0x85, 0x40,       // STA $40
		0x81, 0x4c,       // STA ($4C,X)
	})
	c.Mem.StoreByte(0x50, 0x40)

	r := &recorder{}
	d := cpu.NewDebugger(r)
	d.AddDataBreakpoint(0x2004)
	d.AddConditionalDataBreakpoint(0x0040, 0x77)
	c.AttachDebugger(d)

	stepCPU(t, c, 5)

	expected := []cpu.Store{
		{PC: 0x0004, Addr: 0x2004, Mode: cpu.ABX, Value: 0x77},
		{PC: 0x0007, Addr: 0x0040, Mode: cpu.ZPG, Value: 0x77},
		{PC: 0x0009, Addr: 0x0040, Mode: cpu.IDX, Value: 0x77},
	}
	if len(r.stores) != len(expected) {
		t.Fatalf("stores incorrect: %+v", r.stores)
	}
	for i, s := range expected {
		if r.stores[i] != s {
			t.Errorf("store %d incorrect. exp: %+v, got: %+v", i, s, r.stores[i])
		}
	}
	if b := d.GetDataBreakpoint(0x0040); b.Hits != 2 {
		t.Errorf("data breakpoint hits incorrect: %d", b.Hits)
	}
}
