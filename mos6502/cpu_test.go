package mos6502

import "testing"

type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read(addr uint16) uint8       { return b.mem[addr] }
func (b *testBus) Write(addr uint16, val uint8) { b.mem[addr] = val }

func newTestBus(resetVector uint16) *testBus {
	b := &testBus{}
	b.mem[RESET_VECTOR] = uint8(resetVector)
	b.mem[RESET_VECTOR+1] = uint8(resetVector >> 8)
	return b
}

func TestResetLoadsVectorAndDefaultStatus(t *testing.T) {
	b := newTestBus(0x8000)
	c := New(b)

	if c.PC != 0x8000 {
		t.Errorf("PC = 0x%04x, want 0x8000", c.PC)
	}
	if c.SP != 0xFD {
		t.Errorf("SP = 0x%02x, want 0xFD", c.SP)
	}
	if !c.getFlag(FLAG_I) || !c.getFlag(FLAG_U) {
		t.Errorf("P = 0x%02x, want I and U set", c.P)
	}
}

func TestLDAImmediateSetsFlags(t *testing.T) {
	tc := []struct {
		name     string
		val      uint8
		wantZ    bool
		wantN    bool
	}{
		{"zero", 0x00, true, false},
		{"positive", 0x42, false, false},
		{"negative", 0x80, false, true},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			b := newTestBus(0x8000)
			b.mem[0x8000] = 0xA9 // LDA #imm
			b.mem[0x8001] = c.val

			cpu := New(b)
			cpu.Step()

			if cpu.A != c.val {
				t.Errorf("A = 0x%02x, want 0x%02x", cpu.A, c.val)
			}
			if cpu.getFlag(FLAG_Z) != c.wantZ {
				t.Errorf("Z = %v, want %v", cpu.getFlag(FLAG_Z), c.wantZ)
			}
			if cpu.getFlag(FLAG_N) != c.wantN {
				t.Errorf("N = %v, want %v", cpu.getFlag(FLAG_N), c.wantN)
			}
		})
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	b := newTestBus(0x8000)
	b.mem[0x8000] = 0x20 // JSR $9000
	b.mem[0x8001] = 0x00
	b.mem[0x8002] = 0x90
	b.mem[0x9000] = 0x60 // RTS

	c := New(b)
	c.Step() // JSR
	if c.PC != 0x9000 {
		t.Fatalf("PC after JSR = 0x%04x, want 0x9000", c.PC)
	}
	c.Step() // RTS
	if c.PC != 0x8003 {
		t.Errorf("PC after RTS = 0x%04x, want 0x8003", c.PC)
	}
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	b := newTestBus(0x8000)
	b.mem[0x8000] = 0x6C // JMP ($30FF)
	b.mem[0x8001] = 0xFF
	b.mem[0x8002] = 0x30
	b.mem[0x30FF] = 0x00
	b.mem[0x3000] = 0x40 // wrong high byte fetch target: same page, not 0x3100
	b.mem[0x3100] = 0x80 // would be correct per spec if the bug weren't emulated

	c := New(b)
	c.Step()

	if c.PC != 0x4000 {
		t.Errorf("PC = 0x%04x, want 0x4000 (page-wrap bug)", c.PC)
	}
}

func TestStackWrapsWithinPage1(t *testing.T) {
	b := newTestBus(0x8000)
	c := New(b)
	c.SP = 0x00
	c.push(0x42)
	if c.SP != 0xFF {
		t.Errorf("SP = 0x%02x, want 0xFF after wrapping push", c.SP)
	}
	if b.mem[0x0100] != 0x42 {
		t.Errorf("stack byte at 0x0100 = 0x%02x, want 0x42", b.mem[0x0100])
	}
}

func TestADCSBCAreInverses(t *testing.T) {
	b := newTestBus(0x8000)
	c := New(b)
	c.A = 0x50
	c.setFlag(FLAG_C, true)
	c.adc(0x10)
	gained := c.A
	c.sbc(0x10)
	if c.A != 0x50 {
		t.Errorf("A after ADC/SBC round trip = 0x%02x (gained 0x%02x along the way), want 0x50", c.A, gained)
	}
}

func TestUndocumentedOpcodeIsFatal(t *testing.T) {
	b := newTestBus(0x8000)
	b.mem[0x8000] = 0x02 // never assigned in the official opcode table

	c := New(b)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Step() to panic on an undocumented opcode")
		}
		if _, ok := r.(*ErrInvalidOpcode); !ok {
			t.Errorf("recovered %T, want *ErrInvalidOpcode", r)
		}
	}()
	c.Step()
}
